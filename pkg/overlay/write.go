// Copyright 2020 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

package overlay

import (
	"fmt"
	"strconv"

	"github.com/vmware-labs/go-yaml-edit/splice"
	yptr "github.com/vmware-labs/yaml-jsonpointer"
	"golang.org/x/text/transform"
	yaml "gopkg.in/yaml.v3"
	"npedit.io/pkg/dpath"
	"npedit.io/pkg/yamltree"
)

// A scalarEdit is one scalar value to splice into the original file bytes.
type scalarEdit struct {
	ptr  string // RFC 6901 pointer to the scalar
	node *yaml.Node
}

// scalarEdits diffs a baseline tree against the current tree. If the two
// have the same shape (same kinds, same mapping keys in the same order,
// same sequence lengths) it returns one edit per scalar whose value or tag
// changed, and true. Any structural difference returns false: such a
// change cannot be expressed as in-place scalar splices.
func scalarEdits(base, cur *yaml.Node, trail []string) ([]scalarEdit, bool) {
	if base == nil || cur == nil {
		return nil, base == cur
	}
	if base.Kind != cur.Kind {
		return nil, false
	}

	switch cur.Kind {
	case yaml.DocumentNode:
		if len(base.Content) != len(cur.Content) {
			return nil, false
		}
		var edits []scalarEdit
		for i := range cur.Content {
			sub, ok := scalarEdits(base.Content[i], cur.Content[i], trail)
			if !ok {
				return nil, false
			}
			edits = append(edits, sub...)
		}
		return edits, true
	case yaml.ScalarNode:
		if base.Value == cur.Value && base.ShortTag() == cur.ShortTag() {
			return nil, true
		}
		if len(trail) == 0 {
			// a bare scalar document; not splicable in place
			return nil, false
		}
		return []scalarEdit{{ptr: dpath.Pointer(dpath.Join(trail...)), node: cur}}, true
	case yaml.MappingNode:
		if len(base.Content) != len(cur.Content) {
			return nil, false
		}
		var edits []scalarEdit
		for i := 0; i+1 < len(cur.Content); i += 2 {
			if base.Content[i].Value != cur.Content[i].Value {
				return nil, false
			}
			sub, ok := scalarEdits(base.Content[i+1], cur.Content[i+1], append(trail, cur.Content[i].Value))
			if !ok {
				return nil, false
			}
			edits = append(edits, sub...)
		}
		return edits, true
	case yaml.SequenceNode:
		if len(base.Content) != len(cur.Content) {
			return nil, false
		}
		var edits []scalarEdit
		for i := range cur.Content {
			sub, ok := scalarEdits(base.Content[i], cur.Content[i], append(trail, strconv.Itoa(i)))
			if !ok {
				return nil, false
			}
			edits = append(edits, sub...)
		}
		return edits, true
	}
	return nil, false
}

// spliceEdits applies scalar edits to the original file bytes by locating
// each scalar in a fresh parse and replacing its source extent.
func spliceEdits(src []byte, edits []scalarEdit) ([]byte, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(src, &root); err != nil {
		return nil, err
	}

	var ops []splice.Op
	for _, e := range edits {
		f, err := yptr.Find(&root, e.ptr)
		if err != nil {
			return nil, err
		}
		txt, err := yamltree.EmitScalar(e.node)
		if err != nil {
			return nil, err
		}
		start, end := extent(f)
		if start >= end {
			return nil, fmt.Errorf("%q: node has no source extent", e.ptr)
		}
		ops = append(ops, splice.Span(start, end).With(txt))
	}

	out, _, err := transform.Bytes(splice.T(ops...), src)
	return out, err
}

// extent returns the rune extent of a node in its source.
// IndexEnd includes the trailing newline for literal and folded scalars.
func extent(n *yaml.Node) (int, int) {
	d := 0
	if n.Style&(yaml.LiteralStyle|yaml.FoldedStyle) != 0 {
		d = 1
	}
	return n.Index, n.IndexEnd - d
}
