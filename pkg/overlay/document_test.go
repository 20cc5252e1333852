// Copyright 2020 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

package overlay_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"npedit.io/pkg/overlay"
	"npedit.io/pkg/yamltree"
)

func TestDocumentChanged(t *testing.T) {
	d, err := overlay.ParseDocument("10-base.yaml", []byte(baseSrc))
	if err != nil {
		t.Fatal(err)
	}
	if d.Changed() {
		t.Error("freshly parsed document reported dirty")
	}

	// mutate the tree in place
	mtu := d.Root.Content[0].Content[1].Content[3].Content[1].Content[1]
	if mtu.Value != "1500" {
		t.Fatalf("fixture drift: got %q", mtu.Value)
	}
	mtu.Value = "9000"

	if !d.Changed() {
		t.Error("mutated document reported clean")
	}
}

func TestDocumentSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "10-base.yaml")
	if err := os.WriteFile(path, []byte(baseSrc), 0644); err != nil {
		t.Fatal(err)
	}

	d, err := overlay.LoadDocument(path)
	if err != nil {
		t.Fatal(err)
	}

	written, err := d.Save()
	if err != nil {
		t.Fatal(err)
	}
	if written {
		t.Error("clean document was written")
	}

	mtu := d.Root.Content[0].Content[1].Content[3].Content[1].Content[1]
	mtu.Value = "9000"

	written, err = d.Save()
	if err != nil {
		t.Fatal(err)
	}
	if !written {
		t.Error("dirty document was not written")
	}
	if d.Changed() {
		t.Error("document still dirty after save")
	}

	d2, err := overlay.LoadDocument(path)
	if err != nil {
		t.Fatal(err)
	}
	if !yamltree.Equal(d.Root, d2.Root) {
		t.Error("reloaded tree differs from the saved one")
	}
}

func TestParseDocumentError(t *testing.T) {
	_, err := overlay.ParseDocument("bad.yaml", []byte("a: [1,\n"))
	if err == nil {
		t.Fatal("expected a parse error")
	}
	var perr *overlay.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("got %T, want *ParseError", err)
	}
	if perr.File != "bad.yaml" {
		t.Errorf("file: got %q, want %q", perr.File, "bad.yaml")
	}
}
