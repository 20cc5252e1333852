// Copyright 2020 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValueUnmarshal(t *testing.T) {
	var v Value
	if err := v.UnmarshalText([]byte("9000")); err != nil {
		t.Fatal(err)
	}
	if v != "9000" {
		t.Errorf("got %q, want %q", v, "9000")
	}
}

func TestValueFromFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "value.json")
	if err := os.WriteFile(p, []byte(`["a.com","b.com"]`), 0644); err != nil {
		t.Fatal(err)
	}

	var v Value
	if err := v.UnmarshalText([]byte("@" + p)); err != nil {
		t.Fatal(err)
	}
	if v != `["a.com","b.com"]` {
		t.Errorf("got %q", v)
	}

	if err := v.UnmarshalText([]byte("@" + p + ".missing")); err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestValueEscapedAt(t *testing.T) {
	var v Value
	if err := v.UnmarshalText([]byte(`\@literal`)); err != nil {
		t.Fatal(err)
	}
	if v != "@literal" {
		t.Errorf("got %q, want %q", v, "@literal")
	}
}
