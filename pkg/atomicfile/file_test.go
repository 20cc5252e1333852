// Copyright 2020 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

package atomicfile

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestWrite(t *testing.T) {
	const testMode = os.FileMode(0664)

	tmp, err := os.CreateTemp(t.TempDir(), "")
	if err != nil {
		t.Fatal(err)
	}

	fmt.Fprintf(tmp, "abcd")
	tmp.Close()
	if err := os.Chmod(tmp.Name(), testMode); err != nil {
		t.Fatal(err)
	}

	if err := WriteFile(tmp.Name(), []byte("ABCD"), 0); err != nil {
		t.Fatal(err)
	}

	b, err := os.ReadFile(tmp.Name())
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(b), "ABCD"; got != want {
		t.Errorf("got: %q, want: %q", got, want)
	}

	st, err := os.Stat(tmp.Name())
	if err != nil {
		t.Fatal(err)
	}

	if got, want := st.Mode(), testMode; got != want {
		t.Errorf("got: %v, want: %v", got, want)
	}
}

func TestWriteNewFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "50-new.yaml")

	if err := WriteFile(name, []byte("network: {}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	b, err := os.ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(b), "network: {}\n"; got != want {
		t.Errorf("got: %q, want: %q", got, want)
	}
}

func TestNoTempLeftovers(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "cfg.yaml")

	if err := WriteFile(name, []byte("a: 1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := len(entries), 1; got != want {
		t.Errorf("got %d entries in %q, want %d", got, dir, want)
	}
}
