// Copyright 2020 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

package dpath

import (
	"fmt"
	"strconv"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

// Remove deletes the entry at a literal path and returns the removed node.
// The second return value is false when the path does not resolve.
func Remove(root *yaml.Node, path string) (*yaml.Node, bool) {
	toks, err := Split(path)
	if err != nil || root == nil {
		return nil, false
	}

	parent := root
	if len(toks) > 1 {
		p, ok := Find(root, Join(toks[:len(toks)-1]...))
		if !ok {
			return nil, false
		}
		parent = p
	}
	return removeChild(parent, toks[len(toks)-1])
}

func removeChild(parent *yaml.Node, key string) (*yaml.Node, bool) {
	switch parent.Kind {
	case yaml.DocumentNode:
		if len(parent.Content) == 0 {
			return nil, false
		}
		return removeChild(parent.Content[0], key)
	case yaml.MappingNode:
		c := parent.Content
		for i := 0; i+1 < len(c); i += 2 {
			if c[i].Value == key {
				removed := c[i+1]
				parent.Content = append(c[:i], c[i+2:]...)
				return removed, true
			}
		}
	case yaml.SequenceNode:
		i, err := strconv.Atoi(key)
		if err != nil || i < 0 || i >= len(parent.Content) {
			return nil, false
		}
		removed := parent.Content[i]
		parent.Content = append(parent.Content[:i], parent.Content[i+1:]...)
		return removed, true
	}
	return nil, false
}

// Create inserts value at a literal path, creating intermediate mapping
// levels as needed. The final segment must not already exist. Creation
// fails when an intermediate segment resolves to a scalar or names a
// sequence index that is absent; sequence elements are never allocated
// implicitly.
func Create(root *yaml.Node, path string, value *yaml.Node) error {
	toks, err := Split(path)
	if err != nil {
		return err
	}

	n := root
	if n.Kind == 0 {
		*n = yaml.Node{Kind: yaml.DocumentNode}
	}
	if n.Kind == yaml.DocumentNode {
		if len(n.Content) == 0 {
			n.Content = []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}
		}
		n = n.Content[0]
		if isNull(n) {
			*n = yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		}
	}

	for i, tok := range toks {
		last := i == len(toks)-1
		switch n.Kind {
		case yaml.MappingNode:
			var next *yaml.Node
			for j := 0; j+1 < len(n.Content); j += 2 {
				if n.Content[j].Value == tok {
					next = n.Content[j+1]
					break
				}
			}
			switch {
			case next == nil:
				child := value
				if !last {
					child = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
				}
				key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: tok}
				n.Content = append(n.Content, key, child)
				next = child
			case last:
				return fmt.Errorf("cannot create %q: %q already exists", path, tok)
			case isNull(next):
				*next = yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			}
			n = next
		case yaml.SequenceNode:
			if last {
				return fmt.Errorf("cannot create %q: cannot append to a sequence", path)
			}
			j, err := strconv.Atoi(tok)
			if err != nil || j < 0 || j >= len(n.Content) {
				return fmt.Errorf("cannot create %q: no sequence element %q", path, tok)
			}
			n = n.Content[j]
		default:
			return fmt.Errorf("cannot create %q: %q is not a collection", path, strings.Join(toks[:i], "/"))
		}
	}
	return nil
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null"
}
