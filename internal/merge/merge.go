// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package merge combines several tables believed to share a header into one
// file so they can be extracted as a single input.
package merge

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"ipsift/internal/table"
)

// Mode says how a merge was performed.
type Mode string

const (
	// ModeNone means there was nothing to merge.
	ModeNone Mode = "none"
	// ModeSingle means one input was passed through unchanged.
	ModeSingle Mode = "single"
	// ModeIdentical means all headers matched and one header was kept.
	ModeIdentical Mode = "identical"
	// ModeNaive means headers differed and every row of every file was kept.
	ModeNaive Mode = "naive"
)

// LoadFunc reads a file into a table.
type LoadFunc func(path string) (*table.RawTable, error)

// Source is a loaded input.
type Source struct {
	Path  string
	Table *table.RawTable
}

// Outcome describes a merge.
type Outcome struct {
	// Path is the merged file, the single input path, or empty.
	Path    string
	Mode    Mode
	Merged  []string
	Skipped map[string]error
	Rows    int
}

// Merger merges files. The zero value reads files with table.ReadFile and
// logs to slog.Default().
type Merger struct {
	Load   LoadFunc
	Logger *slog.Logger
}

// Merge combines paths into one file inside workDir. An empty list yields
// an empty Path and a single path is returned unchanged. Files that cannot
// be read are logged and skipped; only a failure to write the merged file
// is returned as an error.
func (m *Merger) Merge(ctx context.Context, paths []string, workDir string) (Outcome, error) {
	switch len(paths) {
	case 0:
		return Outcome{Mode: ModeNone}, nil
	case 1:
		return Outcome{Path: paths[0], Mode: ModeSingle, Merged: paths}, nil
	}

	load := m.Load
	if load == nil {
		load = func(path string) (*table.RawTable, error) {
			t, _, err := table.ReadFile(path)
			return t, err
		}
	}
	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}

	out := Outcome{Skipped: make(map[string]error)}
	var sources []Source
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		t, err := load(p)
		if err != nil {
			logger.Warn("skipping unreadable file in merge", "path", p, "error", err)
			out.Skipped[p] = err
			continue
		}
		sources = append(sources, Source{Path: p, Table: t})
		out.Merged = append(out.Merged, p)
	}
	if len(sources) == 0 {
		out.Mode = ModeNone
		return out, nil
	}

	merged, mode := Tables(sources)
	out.Mode = mode
	out.Rows = len(merged.Rows)

	path, err := writeTable(workDir, merged)
	if err != nil {
		return out, fmt.Errorf("writing merged file: %w", err)
	}
	out.Path = path

	logger.Debug("merged files",
		"files", len(sources),
		"skipped", len(out.Skipped),
		"mode", string(mode),
		"rows", out.Rows,
		"path", path)
	return out, nil
}

// Tables merges loaded sources in order. When every header row is equal
// after trimming cells, the result holds the first header verbatim followed
// by every data row. Otherwise the result is every row of every source,
// header rows included, and the caller re-resolves roles from whatever row
// comes first. The result uses the first source's delimiter.
func Tables(sources []Source) (*table.RawTable, Mode) {
	if len(sources) == 0 {
		return &table.RawTable{Delimiter: ','}, ModeNone
	}

	merged := &table.RawTable{Delimiter: sources[0].Table.Delimiter}
	if sameHeaders(sources) {
		merged.Rows = append(merged.Rows, sources[0].Table.Header())
		for _, s := range sources {
			merged.Rows = appendRows(merged.Rows, s.Table.DataRows())
		}
		return merged, ModeIdentical
	}

	for _, s := range sources {
		merged.Rows = appendRows(merged.Rows, s.Table.Rows)
	}
	return merged, ModeNaive
}

func appendRows(dst, rows [][]string) [][]string {
	for _, row := range rows {
		if !table.IsEmptyRow(row) {
			dst = append(dst, row)
		}
	}
	return dst
}

func sameHeaders(sources []Source) bool {
	first := sources[0].Table.Header()
	if first == nil {
		return false
	}
	for _, s := range sources[1:] {
		h := s.Table.Header()
		if len(h) != len(first) {
			return false
		}
		for i := range h {
			if strings.TrimSpace(h[i]) != strings.TrimSpace(first[i]) {
				return false
			}
		}
	}
	return true
}

func writeTable(dir string, t *table.RawTable) (string, error) {
	f, err := os.CreateTemp(dir, "merged-*.csv")
	if err != nil {
		return "", err
	}

	w := csv.NewWriter(f)
	w.Comma = t.Delimiter
	if err := w.WriteAll(t.Rows); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}
