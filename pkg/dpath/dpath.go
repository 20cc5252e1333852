// Copyright 2020 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

/*
Package dpath resolves slash delimited path expressions against yaml.Node
trees.

A path is a sequence of segments separated by "/". A literal segment
matches a mapping key exactly, or a sequence index when it is a decimal
number. The "*" segment is a wildcard matching every child present at that
level, whatever the container type. Keys containing "/" or "~" use the
RFC 6901 escapes "~1" and "~0"; a leading "/" is accepted and ignored.

Resolution never fails on absent data: a missing key, an out of range
index or a segment applied to a scalar simply terminates that branch with
no match.
*/
package dpath

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-openapi/jsonpointer"
	yptr "github.com/vmware-labs/yaml-jsonpointer"
	yaml "gopkg.in/yaml.v3"
)

// Wildcard is the path segment matching any single child.
const Wildcard = "*"

// A Match is one node located by FindAll, together with the concrete
// (wildcard free) path that reaches it.
type Match struct {
	Path string
	Node *yaml.Node
}

// Split tokenizes a path into unescaped segments.
func Split(path string) ([]string, error) {
	if strings.TrimPrefix(path, "/") == "" {
		return nil, fmt.Errorf("empty path")
	}
	p, err := jsonpointer.New(Pointer(path))
	if err != nil {
		return nil, err
	}
	return p.DecodedTokens(), nil
}

// Pointer converts a slash path into its RFC 6901 JSONPointer form.
func Pointer(path string) string {
	if strings.HasPrefix(path, "/") {
		return path
	}
	return "/" + path
}

var segEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// Join assembles path segments into a slash path, escaping as needed.
func Join(segs ...string) string {
	escaped := make([]string, len(segs))
	for i, s := range segs {
		escaped[i] = segEscaper.Replace(s)
	}
	return strings.Join(escaped, "/")
}

// Dir returns the path up to but excluding the final segment, or the empty
// string for a single segment path.
func Dir(path string) string {
	p := strings.TrimPrefix(path, "/")
	i := strings.LastIndex(p, "/")
	if i < 0 {
		return ""
	}
	return p[:i]
}

// Base returns the final segment of a path, still in escaped form.
func Base(path string) string {
	p := strings.TrimPrefix(path, "/")
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return p
}

// IsLiteral reports whether a path contains no wildcard segments.
func IsLiteral(path string) bool {
	for _, s := range strings.Split(strings.TrimPrefix(path, "/"), "/") {
		if s == Wildcard {
			return false
		}
	}
	return true
}

// FindAll returns every node reachable from root via path, substituting
// each wildcard with the keys and indices actually present. The order is
// deterministic: mapping insertion order, sequence index order, depth
// first. No match yields an empty result, not an error.
func FindAll(root *yaml.Node, path string) ([]Match, error) {
	toks, err := Split(path)
	if err != nil {
		return nil, err
	}
	var res []Match
	if root != nil {
		find(root, toks, nil, &res)
	}
	return res, nil
}

// Find resolves a wildcard free path to at most one node. Any kind of
// mismatch, including descending into a scalar, reports not found.
func Find(root *yaml.Node, path string) (*yaml.Node, bool) {
	if root == nil || root.Kind == 0 {
		return nil, false
	}
	n, err := yptr.Find(root, Pointer(path))
	if err != nil {
		return nil, false
	}
	return n, true
}

// find recursively matches path tokens against a node, accumulating the
// concrete trail of keys and indices traversed so far.
func find(n *yaml.Node, toks []string, trail []string, res *[]Match) {
	if n.Kind == yaml.DocumentNode {
		if len(n.Content) > 0 {
			find(n.Content[0], toks, trail, res)
		}
		return
	}
	if len(toks) == 0 {
		*res = append(*res, Match{Path: Join(trail...), Node: n})
		return
	}

	tok := toks[0]
	switch n.Kind {
	case yaml.MappingNode:
		c := n.Content
		for i := 0; i+1 < len(c); i += 2 {
			if tok == Wildcard || tok == c[i].Value {
				find(c[i+1], toks[1:], append(trail, c[i].Value), res)
			}
		}
	case yaml.SequenceNode:
		if tok == Wildcard {
			for i, el := range n.Content {
				find(el, toks[1:], append(trail, strconv.Itoa(i)), res)
			}
			return
		}
		i, err := strconv.Atoi(tok)
		if err != nil || i < 0 || i >= len(n.Content) {
			return
		}
		find(n.Content[i], toks[1:], append(trail, tok), res)
	}
}
