// Copyright 2020 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

/*
Package yamltree implements helpers for working with yaml.Node trees as
parsed netplan configuration documents.

A netplan document is a tree of nested mappings, sequences and scalars.
Mapping key order is significant for round-tripping, so all helpers operate
on *yaml.Node values, which preserve it, rather than on map[string]any.

Netplan itself treats every scalar as a string, but administrators write
numbers and booleans unquoted. Marshal therefore re-tags digit-only and
boolean-looking string scalars at serialization time so that a round-trip
does not surround them with quotes. The retagging is applied to a copy of
the tree and never alters the in-memory document.
*/
package yamltree

import (
	"bytes"
	"fmt"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

// Copy returns a deep copy of a node tree.
func Copy(n *yaml.Node) *yaml.Node {
	if n == nil {
		return nil
	}
	c := *n
	if n.Alias != nil {
		c.Alias = Copy(n.Alias)
	}
	if n.Content != nil {
		c.Content = make([]*yaml.Node, len(n.Content))
		for i, ch := range n.Content {
			c.Content[i] = Copy(ch)
		}
	}
	return &c
}

// Equal reports whether two node trees are structurally equal.
// It compares kinds, resolved tags, scalar values and children, and ignores
// styles, comments and source positions, so that a document compares equal
// to its own baseline snapshot until a value actually changes.
func Equal(a, b *yaml.Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind || a.Value != b.Value || a.ShortTag() != b.ShortTag() {
		return false
	}
	if len(a.Content) != len(b.Content) {
		return false
	}
	for i := range a.Content {
		if !Equal(a.Content[i], b.Content[i]) {
			return false
		}
	}
	return true
}

// Marshal serializes a node tree deterministically: two space indentation,
// block style, mapping key order preserved, scalar emit hints applied.
func Marshal(root *yaml.Node) ([]byte, error) {
	c := Copy(root)
	retagStrings(c)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EmitScalar renders a scalar node the way Marshal would emit it in place:
// digit-only and boolean-looking strings stay unquoted, other strings are
// quoted per YAML rules, non-string scalars emit their plain value.
// Multiline strings are rejected; they cannot be rendered out of context.
func EmitScalar(n *yaml.Node) (string, error) {
	if n == nil || n.Kind != yaml.ScalarNode {
		return "", fmt.Errorf("not a scalar node")
	}
	if strings.ContainsRune(n.Value, '\n') {
		return "", fmt.Errorf("cannot emit multiline scalar in place")
	}
	c := Copy(n)
	retagStrings(c)
	if c.ShortTag() != "!!str" {
		return c.Value, nil
	}
	b, err := yaml.Marshal(c.Value)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(string(b), "\n"), nil
}

// String renders a node as a compact single line YAML fragment, suitable
// for logs and command output. Returns the empty string for nil.
func String(n *yaml.Node) string {
	if n == nil {
		return ""
	}
	c := Copy(n)
	retagStrings(c)
	flowStyle(c)
	b, err := yaml.Marshal(c)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

// retagStrings applies the scalar emit hints to every string scalar:
// digit-only strings become !!int, "true"/"false" (any case) become !!bool.
// Values that were decoded from structured input already carry their native
// tags and are left alone.
func retagStrings(n *yaml.Node) {
	if n.Kind == yaml.ScalarNode {
		if n.ShortTag() != "!!str" {
			return
		}
		switch {
		case isDigits(n.Value):
			n.Tag = "!!int"
			n.Style = 0
		case strings.EqualFold(n.Value, "true"), strings.EqualFold(n.Value, "false"):
			n.Tag = "!!bool"
			n.Style = 0
		}
		return
	}
	for _, c := range n.Content {
		retagStrings(c)
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func flowStyle(n *yaml.Node) {
	n.HeadComment, n.LineComment, n.FootComment = "", "", ""
	switch n.Kind {
	case yaml.MappingNode, yaml.SequenceNode:
		n.Style = yaml.FlowStyle
	}
	for _, c := range n.Content {
		flowStyle(c)
	}
}
