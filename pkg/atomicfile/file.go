// Copyright 2020 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

// Package atomicfile persists files by writing to a temporary file in the
// same directory and renaming it over the destination on Commit, so that
// readers never observe a partially written config.
package atomicfile

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
)

// Writer returns an io.WriteCloser that writes data to a temporary file
// which gets renamed atomically as filename upon Commit.
// If filename already exists its mode is preserved, otherwise perm is used.
func Writer(filename string, perm os.FileMode) (*AtomicWriter, error) {
	out, err := os.CreateTemp(filepath.Dir(filename), ".*~")
	if err != nil {
		return nil, err
	}
	if st, err := os.Stat(filename); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else {
		perm = st.Mode()
	}
	if err := os.Chmod(out.Name(), perm); err != nil {
		return nil, err
	}

	return &AtomicWriter{out, filename}, nil
}

type AtomicWriter struct {
	*os.File
	filename string
}

func (a *AtomicWriter) Close() error {
	defer os.RemoveAll(a.Name())
	return a.File.Close()
}

func (a *AtomicWriter) Commit() error {
	defer a.Close()
	return os.Rename(a.Name(), a.filename)
}

func WriteFrom(filename string, r io.Reader, perm os.FileMode) error {
	w, err := Writer(filename, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, r); err != nil {
		return err
	}
	return w.Commit()
}

// WriteFile is a drop-in replacement for os.WriteFile that writes the file atomically.
func WriteFile(filename string, data []byte, perm os.FileMode) error {
	return WriteFrom(filename, bytes.NewReader(data), perm)
}
