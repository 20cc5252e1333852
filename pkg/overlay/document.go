// Copyright 2020 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

package overlay

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"
	"npedit.io/pkg/atomicfile"
	"npedit.io/pkg/yamltree"
)

// A ParseError reports a malformed config file. It aborts the whole load;
// nothing is retried.
type ParseError struct {
	File string
	Err  error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parsing %q: %v", e.File, e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }

// A Document is one parsed config file plus the baseline snapshot taken
// right after parsing, against which changes are detected.
type Document struct {
	Name string
	Root *yaml.Node

	baseline *yaml.Node
}

// LoadDocument reads and parses one config file.
func LoadDocument(name string) (*Document, error) {
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	return ParseDocument(name, b)
}

// ParseDocument parses config bytes under a given file name.
func ParseDocument(name string, b []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(b, &root); err != nil {
		return nil, &ParseError{File: name, Err: err}
	}
	d := &Document{Name: name, Root: &root}
	d.resetBaseline()
	return d, nil
}

// Changed reports whether the document differs structurally from its
// baseline. Styles and comments do not count as changes.
func (d *Document) Changed() bool {
	return !yamltree.Equal(d.Root, d.baseline)
}

func (d *Document) resetBaseline() {
	d.baseline = yamltree.Copy(d.Root)
}

// Save persists the document if it changed and resets the baseline.
// It reports whether a write actually happened; unchanged documents are
// skipped entirely, so their mtime never churns.
func (d *Document) Save() (bool, error) {
	if !d.Changed() {
		return false, nil
	}
	out, err := d.render()
	if err != nil {
		return false, err
	}
	if err := atomicfile.WriteFile(d.Name, out, 0o644); err != nil {
		return false, err
	}
	d.resetBaseline()
	return true, nil
}

// render produces the bytes to persist. When only scalar values changed it
// splices the new values into the original file bytes, keeping comments
// and formatting intact; structural changes fall back to a full re-encode.
func (d *Document) render() ([]byte, error) {
	if edits, ok := scalarEdits(d.baseline, d.Root, nil); ok && len(edits) > 0 {
		if src, err := os.ReadFile(d.Name); err == nil {
			if out, err := spliceEdits(src, edits); err == nil {
				return out, nil
			}
		}
	}
	return yamltree.Marshal(d.Root)
}
