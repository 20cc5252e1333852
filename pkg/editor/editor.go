// Copyright 2020 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

/*
Package editor is the high level facade over the netplan config overlay:
it discovers the config files, loads them, and exposes the supported
operations (search, get, set, set-all, add, delete, save).

The facade validates arguments and logs mutations through an injected
zerolog logger (no-op by default); all precedence and mutation semantics
live in the overlay package.
*/
package editor

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	yaml "gopkg.in/yaml.v3"
	"npedit.io/pkg/dpath"
	"npedit.io/pkg/overlay"
	"npedit.io/pkg/yamltree"
)

// DefaultDir is the directory scanned for config files when no explicit
// file is given.
const DefaultDir = "/etc/netplan"

// An Editor owns the loaded overlay for the duration of one invocation.
type Editor struct {
	overlay *overlay.Overlay
	dir     string
	conf    []string
	log     zerolog.Logger
}

// An Option configures an Editor at construction.
type Option func(*Editor)

// WithDir sets the netplan directory to scan. Default: /etc/netplan.
func WithDir(dir string) Option {
	return func(e *Editor) { e.dir = dir }
}

// WithConfFile restricts the editor to a single config file instead of
// scanning the directory. Multiple names are treated as fallback
// candidates: the first one existing on disk is used. Relative names are
// resolved against the netplan directory.
func WithConfFile(names ...string) Option {
	return func(e *Editor) { e.conf = names }
}

// WithLogger injects the logger mutations are reported to.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Editor) { e.log = l }
}

// New discovers and loads the config files and returns a ready Editor.
// Finding no config at all is an error.
func New(opts ...Option) (*Editor, error) {
	e := &Editor{dir: DefaultDir, log: zerolog.Nop()}
	for _, o := range opts {
		o(e)
	}

	var paths []string
	if len(e.conf) > 0 {
		candidates := make([]string, len(e.conf))
		for i, c := range e.conf {
			if !filepath.IsAbs(c) {
				c = filepath.Join(e.dir, c)
			}
			candidates[i] = c
		}
		p, ok := FirstExisting(candidates...)
		if !ok {
			return nil, fmt.Errorf("none of the config files %q exists: %w", e.conf, overlay.ErrFileNotFound)
		}
		paths = []string{p}
	} else {
		var err error
		if paths, err = ConfigFiles(e.dir); err != nil {
			return nil, err
		}
		if len(paths) == 0 {
			return nil, fmt.Errorf("no netplan config found (searched dir: %q)", e.dir)
		}
	}

	ov, err := overlay.Load(paths)
	if err != nil {
		return nil, err
	}
	e.overlay = ov
	e.log.Debug().Strs("files", ov.Files()).Msg("loaded netplan config")
	return e, nil
}

// Files returns the loaded config file names in precedence order.
func (e *Editor) Files() []string { return e.overlay.Files() }

// Search resolves a glob path against the whole overlay.
func (e *Editor) Search(glob string) ([]overlay.Match, error) {
	if err := checkPath(glob, true); err != nil {
		return nil, err
	}
	return e.overlay.Search(glob)
}

// SearchParams searches all interface sections for keys matching keyGlob.
func (e *Editor) SearchParams(keyGlob string) ([]overlay.Match, error) {
	if err := checkPath(keyGlob, true); err != nil {
		return nil, err
	}
	return e.overlay.SearchParams(keyGlob)
}

// Get returns the value at a literal path, with an explicit found signal.
func (e *Editor) Get(path string) (*yaml.Node, bool, error) {
	if err := checkPath(path, false); err != nil {
		return nil, false, err
	}
	n, ok := e.overlay.Get(path)
	return n, ok, nil
}

// Set changes an existing value. targetFile may be empty.
func (e *Editor) Set(path, value, targetFile string) error {
	if err := checkPath(path, false); err != nil {
		return err
	}
	ch, err := e.overlay.Set(path, value, targetFile)
	if err != nil {
		return err
	}
	e.log.Info().
		Str("file", ch.File).
		Str("path", path).
		Str("from", yamltree.String(ch.Old)).
		Str("to", yamltree.String(ch.New)).
		Msg("changed value")
	return nil
}

// SetAll changes every interface parameter matching keyGlob, each in its
// own owning file, and returns the number of updated occurrences.
func (e *Editor) SetAll(keyGlob, value string) (int, error) {
	if err := checkPath(keyGlob, true); err != nil {
		return 0, err
	}
	changes, err := e.overlay.SetAll(keyGlob, value)
	if err != nil {
		return 0, err
	}
	for _, ch := range changes {
		e.log.Info().
			Str("file", ch.File).
			Str("path", ch.Path).
			Str("from", yamltree.String(ch.Old)).
			Str("to", yamltree.String(ch.New)).
			Msg("changed value")
	}
	return len(changes), nil
}

// Add creates a new entry that must not exist anywhere in the overlay yet.
func (e *Editor) Add(path, value, targetFile string) error {
	if err := checkPath(path, false); err != nil {
		return err
	}
	ch, err := e.overlay.Add(path, value, targetFile)
	if err != nil {
		return err
	}
	e.log.Info().
		Str("file", ch.File).
		Str("path", path).
		Str("value", yamltree.String(ch.New)).
		Msg("created entry")
	return nil
}

// Delete removes an existing entry and returns the removed value.
func (e *Editor) Delete(path, targetFile string) (*yaml.Node, error) {
	if err := checkPath(path, false); err != nil {
		return nil, err
	}
	ch, err := e.overlay.Delete(path, targetFile)
	if err != nil {
		return nil, err
	}
	e.log.Info().
		Str("file", ch.File).
		Str("path", path).
		Str("value", yamltree.String(ch.Old)).
		Msg("deleted entry")
	return ch.Old, nil
}

// Save writes every changed file back to disk.
func (e *Editor) Save() error {
	written, err := e.overlay.WriteAll()
	for _, f := range written {
		e.log.Info().Str("file", f).Msg("wrote config file")
	}
	return err
}

// checkPath validates a path argument. Wildcards are only accepted where
// the operation resolves multiple targets.
func checkPath(p string, allowGlob bool) error {
	if strings.TrimPrefix(p, "/") == "" {
		return fmt.Errorf("empty path")
	}
	if !allowGlob && !dpath.IsLiteral(p) {
		return fmt.Errorf("path %q must not contain wildcards", p)
	}
	return nil
}
