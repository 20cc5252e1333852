// Copyright 2020 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

package yamltree

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

// DecodeInput converts raw user input into a typed node. It is the only
// boundary where text supplied on the command line becomes part of a
// document. The input is first parsed as strict JSON (objects, arrays,
// numbers, booleans, null, quoted strings); anything that does not parse as
// a complete JSON value is kept verbatim as a string scalar.
func DecodeInput(raw string) *yaml.Node {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	n, err := decodeValue(dec)
	if err != nil {
		return strScalar(raw)
	}
	if _, err := dec.Token(); err != io.EOF {
		// trailing garbage after a valid JSON prefix, e.g. "1500abc"
		return strScalar(raw)
	}
	return n
}

// decodeValue builds a yaml.Node from the next JSON value in the decoder.
// Decoding token by token keeps object key order, which json.Unmarshal
// into a map would lose.
func decodeValue(dec *json.Decoder) (*yaml.Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := kt.(string)
				if !ok {
					return nil, fmt.Errorf("object key is not a string: %v", kt)
				}
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				n.Content = append(n.Content, strScalar(key), val)
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return nil, err
			}
			return n, nil
		case '[':
			n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
			for dec.More() {
				el, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				n.Content = append(n.Content, el)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return nil, err
			}
			return n, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	case string:
		return strScalar(t), nil
	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: fmt.Sprintf("%v", t)}, nil
	case json.Number:
		tag := "!!int"
		if strings.ContainsAny(t.String(), ".eE") {
			tag = "!!float"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: t.String()}, nil
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

func strScalar(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}
