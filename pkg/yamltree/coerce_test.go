// Copyright 2020 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

package yamltree_test

import (
	"fmt"
	"testing"

	yaml "gopkg.in/yaml.v3"
	"npedit.io/pkg/yamltree"
)

func TestDecodeInput(t *testing.T) {
	testCases := []struct {
		raw   string
		kind  yaml.Kind
		tag   string
		value string
	}{
		{"1500", yaml.ScalarNode, "!!int", "1500"},
		{"1.5", yaml.ScalarNode, "!!float", "1.5"},
		{"true", yaml.ScalarNode, "!!bool", "true"},
		{"false", yaml.ScalarNode, "!!bool", "false"},
		{"null", yaml.ScalarNode, "!!null", "null"},
		{`"quoted"`, yaml.ScalarNode, "!!str", "quoted"},
		// not valid JSON: kept verbatim as a string
		{"sub.example.com", yaml.ScalarNode, "!!str", "sub.example.com"},
		{"10.20.30.40/24", yaml.ScalarNode, "!!str", "10.20.30.40/24"},
		{"1500abc", yaml.ScalarNode, "!!str", "1500abc"},
		{"[broken", yaml.ScalarNode, "!!str", "[broken"},
		{"", yaml.ScalarNode, "!!str", ""},
		{`["a.com","b.com"]`, yaml.SequenceNode, "!!seq", ""},
		{`{"search": ["x.com"], "addresses": ["1.1.1.1"]}`, yaml.MappingNode, "!!map", ""},
	}

	for i, tc := range testCases {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			n := yamltree.DecodeInput(tc.raw)
			if n.Kind != tc.kind {
				t.Fatalf("kind: got %v, want %v", n.Kind, tc.kind)
			}
			if got := n.ShortTag(); got != tc.tag {
				t.Errorf("tag: got %q, want %q", got, tc.tag)
			}
			if n.Kind == yaml.ScalarNode && n.Value != tc.value {
				t.Errorf("value: got %q, want %q", n.Value, tc.value)
			}
		})
	}
}

func TestDecodeInputSequence(t *testing.T) {
	n := yamltree.DecodeInput(`["a.com","b.com"]`)
	if len(n.Content) != 2 {
		t.Fatalf("got %d elements, want 2", len(n.Content))
	}
	for i, want := range []string{"a.com", "b.com"} {
		el := n.Content[i]
		if el.ShortTag() != "!!str" || el.Value != want {
			t.Errorf("element %d: got (%s, %q), want (!!str, %q)", i, el.ShortTag(), el.Value, want)
		}
	}
}

func TestDecodeInputKeyOrder(t *testing.T) {
	n := yamltree.DecodeInput(`{"zeta": 1, "alpha": 2}`)
	var keys []string
	for i := 0; i+1 < len(n.Content); i += 2 {
		keys = append(keys, n.Content[i].Value)
	}
	if len(keys) != 2 || keys[0] != "zeta" || keys[1] != "alpha" {
		t.Errorf("keys out of order: %q", keys)
	}
}

func ExampleDecodeInput() {
	n := yamltree.DecodeInput("9000")
	fmt.Println(n.ShortTag(), n.Value)

	n = yamltree.DecodeInput("br0.42")
	fmt.Println(n.ShortTag(), n.Value)
	// Output: !!int 9000
	// !!str br0.42
}
