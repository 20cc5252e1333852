// Copyright 2020 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

package editor

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// ConfigFiles returns every *.yaml and *.yml regular file in dir, sorted
// ascending so the result already reflects precedence order.
func ConfigFiles(dir string) ([]string, error) {
	d, err := os.Open(dir)
	if err != nil {
		return nil, err
	}
	defer d.Close()

	names, err := d.Readdirnames(-1)
	if err != nil {
		return nil, err
	}

	var res []string
	for _, n := range names {
		ok, err := matchExts(n, "yaml", "yml")
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		full := filepath.Join(dir, n)
		if st, err := os.Stat(full); err != nil || !st.Mode().IsRegular() {
			continue
		}
		res = append(res, full)
	}
	sort.Strings(res)
	return res, nil
}

// FirstExisting returns the first of the candidate paths that exists on
// disk as a regular file.
func FirstExisting(paths ...string) (string, bool) {
	for _, p := range paths {
		if st, err := os.Stat(p); err == nil && st.Mode().IsRegular() {
			return p, true
		}
	}
	return "", false
}

func matchExts(filename string, exts ...string) (bool, error) {
	for _, e := range exts {
		if ok, err := filepath.Match(fmt.Sprintf("*.%s", e), filename); err != nil {
			return false, err
		} else if ok {
			return true, nil
		}
	}
	return false, nil
}
