// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ExpandInputs turns command-line arguments into a list of regular files.
// Directories contribute their direct children in name order, glob
// patterns their matches. Duplicates are dropped and first-seen order is
// kept. An argument that names nothing is an error.
func ExpandInputs(args []string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	add := func(p string) {
		key := filepath.Clean(p)
		if abs, err := filepath.Abs(p); err == nil {
			key = abs
		}
		if !seen[key] {
			seen[key] = true
			out = append(out, p)
		}
	}

	for _, arg := range args {
		if strings.TrimSpace(arg) == "" {
			continue
		}

		info, err := os.Stat(arg)
		switch {
		case err == nil && info.IsDir():
			entries, err := os.ReadDir(arg)
			if err != nil {
				return nil, fmt.Errorf("reading directory %s: %w", arg, err)
			}
			for _, e := range entries {
				if e.Type().IsRegular() && !strings.HasPrefix(e.Name(), ".") {
					add(filepath.Join(arg, e.Name()))
				}
			}
		case err == nil && info.Mode().IsRegular():
			add(arg)
		case err == nil:
			return nil, fmt.Errorf("%s is not a regular file", arg)
		case hasGlobMeta(arg):
			matches, gerr := filepath.Glob(arg)
			if gerr != nil {
				return nil, fmt.Errorf("bad pattern %q: %w", arg, gerr)
			}
			sort.Strings(matches)
			n := 0
			for _, m := range matches {
				if fi, err := os.Stat(m); err == nil && fi.Mode().IsRegular() {
					add(m)
					n++
				}
			}
			if n == 0 {
				return nil, fmt.Errorf("no files match %q", arg)
			}
		default:
			return nil, fmt.Errorf("input %s: %w", arg, err)
		}
	}
	return out, nil
}

func hasGlobMeta(s string) bool {
	return strings.ContainsAny(s, `*?[`)
}
