// Copyright 2020 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

/*
Package overlay merges a set of netplan config files into one logical tree
with filename based precedence.

Files are consulted in ascending lexicographic order of their names.
Lookups and edits of existing values go to the first file that defines the
path; brand new entries go to the file with the greatest name, because
netplan processes files in order and the last one wins at runtime.

Every document tracks its own dirtiness against a baseline snapshot, so
WriteAll only touches files that actually changed.
*/
package overlay

import (
	"fmt"
	"os"
	"sort"

	"github.com/mkmik/multierror"
	yaml "gopkg.in/yaml.v3"
	"npedit.io/pkg/dpath"
	"npedit.io/pkg/yamltree"
)

var (
	// ErrPathNotFound means a mutation target does not exist.
	ErrPathNotFound = fmt.Errorf("path not found")
	// ErrAlreadyExists means a creation target is already present somewhere in the overlay.
	ErrAlreadyExists = fmt.Errorf("entry already exists")
	// ErrFileNotFound means an explicitly requested target file does not exist on disk.
	ErrFileNotFound = fmt.Errorf("file not found")
)

// The interface sections searched by SearchParams, in fixed order.
var interfaceSections = []string{"ethernets", "bridges", "vlans"}

// A Match is one located value: the file that defines it, the concrete
// path that reaches it and the value node itself.
type Match struct {
	File string
	Path string
	Node *yaml.Node
}

// A Change describes one applied mutation, for logging and inspection.
// Old is nil for creations, New is nil for deletions.
type Change struct {
	File string
	Path string
	Old  *yaml.Node
	New  *yaml.Node
}

// An Overlay is the set of loaded documents, keyed by file name.
type Overlay struct {
	docs map[string]*Document
}

// Load parses every named file into a document. Parse failures across
// files are collected and reported together.
func Load(paths []string) (*Overlay, error) {
	o := &Overlay{docs: map[string]*Document{}}
	var errs []error
	for _, p := range paths {
		if _, ok := o.docs[p]; ok {
			continue
		}
		d, err := LoadDocument(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		o.docs[p] = d
	}
	if errs != nil {
		return nil, multierror.Join(errs)
	}
	return o, nil
}

// Files returns the loaded file names in ascending lexicographic order,
// the order that determines precedence.
func (o *Overlay) Files() []string {
	res := make([]string, 0, len(o.docs))
	for n := range o.docs {
		res = append(res, n)
	}
	sort.Strings(res)
	return res
}

// Document returns the document loaded from the named file.
func (o *Overlay) Document(name string) (*Document, bool) {
	d, ok := o.docs[name]
	return d, ok
}

// Changed reports whether the named file has unsaved modifications.
func (o *Overlay) Changed(name string) bool {
	d, ok := o.docs[name]
	return ok && d.Changed()
}

// Search resolves a glob path against every document, ascending file order
// outermost, each document's natural match order within.
func (o *Overlay) Search(glob string) ([]Match, error) {
	var res []Match
	for _, f := range o.Files() {
		ms, err := dpath.FindAll(o.docs[f].Root, glob)
		if err != nil {
			return nil, err
		}
		for _, m := range ms {
			res = append(res, Match{File: f, Path: m.Path, Node: m.Node})
		}
	}
	return res, nil
}

// SearchParams searches the interface sections (ethernets, bridges, vlans)
// of every document for keys matching keyGlob, e.g. "addresses" or
// "nameservers/search".
func (o *Overlay) SearchParams(keyGlob string) ([]Match, error) {
	var res []Match
	for _, f := range o.Files() {
		for _, section := range interfaceSections {
			glob := fmt.Sprintf("network/%s/*/%s", section, keyGlob)
			ms, err := dpath.FindAll(o.docs[f].Root, glob)
			if err != nil {
				return nil, err
			}
			for _, m := range ms {
				res = append(res, Match{File: f, Path: m.Path, Node: m.Node})
			}
		}
	}
	return res, nil
}

// Get returns the value at a literal path from the first document that
// defines it. The boolean distinguishes "not found" from a null value.
func (o *Overlay) Get(path string) (*yaml.Node, bool) {
	for _, f := range o.Files() {
		if n, ok := dpath.Find(o.docs[f].Root, path); ok {
			return n, true
		}
	}
	return nil, false
}

// firstOwningFile returns the first document, in ascending name order,
// whose tree contains the literal path.
func (o *Overlay) firstOwningFile(path string) (*Document, bool) {
	for _, f := range o.Files() {
		if _, ok := dpath.Find(o.docs[f].Root, path); ok {
			return o.docs[f], true
		}
	}
	return nil, false
}

// target resolves an explicitly forced target file. The file must exist on
// disk; if it was not part of the scanned set it is loaded on demand.
func (o *Overlay) target(name string) (*Document, error) {
	if st, err := os.Stat(name); err != nil || st.IsDir() {
		return nil, fmt.Errorf("%q: %w", name, ErrFileNotFound)
	}
	if d, ok := o.docs[name]; ok {
		return d, nil
	}
	d, err := LoadDocument(name)
	if err != nil {
		return nil, err
	}
	o.docs[name] = d
	return d, nil
}

// Set replaces the value at an existing literal path with the decoded raw
// value. It never creates new keys. With no target file, the first file
// defining the path is edited.
func (o *Overlay) Set(path, raw, targetFile string) (Change, error) {
	var doc *Document
	switch {
	case targetFile != "":
		d, err := o.target(targetFile)
		if err != nil {
			return Change{}, err
		}
		doc = d
	default:
		d, ok := o.firstOwningFile(path)
		if !ok {
			return Change{}, fmt.Errorf("%q: %w", path, ErrPathNotFound)
		}
		doc = d
	}

	n, ok := dpath.Find(doc.Root, path)
	if !ok {
		return Change{}, fmt.Errorf("%q in %q: %w", path, doc.Name, ErrPathNotFound)
	}
	old := yamltree.Copy(n)
	*n = *yamltree.DecodeInput(raw)
	return Change{File: doc.Name, Path: path, Old: old, New: n}, nil
}

// SetAll updates every interface parameter matching keyGlob, each in its
// own owning file. All mutations are in memory; nothing is persisted until
// WriteAll, so a single invocation is all-or-nothing.
func (o *Overlay) SetAll(keyGlob, raw string) ([]Change, error) {
	ms, err := o.SearchParams(keyGlob)
	if err != nil {
		return nil, err
	}
	changes := make([]Change, 0, len(ms))
	for _, m := range ms {
		old := yamltree.Copy(m.Node)
		*m.Node = *yamltree.DecodeInput(raw)
		changes = append(changes, Change{File: m.File, Path: m.Path, Old: old, New: m.Node})
	}
	return changes, nil
}

// Add creates a new entry at a literal path that must not exist yet
// anywhere in the overlay: the final segment is checked under every match
// of the parent path across all files, preventing the same interface
// parameter from being defined twice in different files.
//
// File selection without a forced target: the greatest named file whose
// tree contains the parent path, else the greatest named file overall.
// Missing intermediate mapping levels are created.
func (o *Overlay) Add(newPath, raw, targetFile string) (Change, error) {
	dir, base := dpath.Dir(newPath), dpath.Base(newPath)

	parents, err := o.parentMatches(dir)
	if err != nil {
		return Change{}, err
	}
	for _, p := range parents {
		if _, ok := dpath.Find(p.Node, base); ok {
			return Change{}, fmt.Errorf("%q in %q: %w", newPath, p.File, ErrAlreadyExists)
		}
	}

	var doc *Document
	switch {
	case targetFile != "":
		d, err := o.target(targetFile)
		if err != nil {
			return Change{}, err
		}
		doc = d
	case len(parents) > 0:
		// parents come back in ascending file order; the last one wins
		doc = o.docs[parents[len(parents)-1].File]
	default:
		fs := o.Files()
		doc = o.docs[fs[len(fs)-1]]
	}

	val := yamltree.DecodeInput(raw)
	if err := dpath.Create(doc.Root, newPath, val); err != nil {
		return Change{}, err
	}
	return Change{File: doc.Name, Path: newPath, New: val}, nil
}

// parentMatches resolves the parent path across the overlay. The empty
// parent denotes the document root of every file.
func (o *Overlay) parentMatches(dir string) ([]Match, error) {
	if dir == "" {
		var res []Match
		for _, f := range o.Files() {
			res = append(res, Match{File: f, Node: o.docs[f].Root})
		}
		return res, nil
	}
	return o.Search(dir)
}

// Delete removes the entry at an existing literal path and returns the
// removed value. With no target file, the first file defining the path is
// edited.
func (o *Overlay) Delete(path, targetFile string) (Change, error) {
	var doc *Document
	switch {
	case targetFile != "":
		d, err := o.target(targetFile)
		if err != nil {
			return Change{}, err
		}
		doc = d
	default:
		d, ok := o.firstOwningFile(path)
		if !ok {
			return Change{}, fmt.Errorf("%q: %w", path, ErrPathNotFound)
		}
		doc = d
	}

	removed, ok := dpath.Remove(doc.Root, path)
	if !ok {
		return Change{}, fmt.Errorf("%q in %q: %w", path, doc.Name, ErrPathNotFound)
	}
	return Change{File: doc.Name, Path: path, Old: removed}, nil
}

// WriteAll persists every changed document and returns the names of the
// files actually written. Unchanged documents are skipped.
func (o *Overlay) WriteAll() ([]string, error) {
	var (
		written []string
		errs    []error
	)
	for _, f := range o.Files() {
		ok, err := o.docs[f].Save()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			written = append(written, f)
		}
	}
	if errs != nil {
		return written, multierror.Join(errs)
	}
	return written, nil
}
