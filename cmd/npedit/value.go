// Copyright 2020 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

package main

import (
	"os"
	"strings"
)

// A Value is a raw value argument. A leading @ reads the value from a
// file; a literal @ can be escaped with a backslash.
type Value string

func (v *Value) UnmarshalText(in []byte) error {
	s := string(in)
	if strings.HasPrefix(s, "@") {
		b, err := os.ReadFile(strings.TrimPrefix(s, "@"))
		if err != nil {
			return err
		}
		s = string(b)
	} else if strings.HasPrefix(s, `\@`) {
		s = strings.TrimPrefix(s, `\`)
	}
	*v = Value(s)
	return nil
}
