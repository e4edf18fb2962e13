// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package table turns raw delimited text into rows of cells.
//
// Parsing is forgiving: invalid UTF-8 is dropped, quotes are
// parsed lazily and rows may have any number of fields. Nothing in this
// package fails on data shape; only I/O errors are returned.
package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strings"
)

// SampleSize is how many leading bytes SniffDelimiter inspects.
const SampleSize = 1024

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// RawTable is an ordered sequence of rows, each an ordered sequence of cells.
// It is not modified after Parse returns.
type RawTable struct {
	Rows      [][]string
	Delimiter rune
}

// Decode converts raw file bytes to text, dropping a leading UTF-8 BOM and
// any invalid byte sequences.
func Decode(data []byte) string {
	data = bytes.TrimPrefix(data, utf8BOM)
	return strings.ToValidUTF8(string(data), "")
}

// SniffDelimiter picks the field delimiter from the start of the content:
// ';' if the sample has semicolons and no commas, tab if it has a tab,
// otherwise ','. It always returns a delimiter.
func SniffDelimiter(content string) rune {
	sample := content
	if len(sample) > SampleSize {
		sample = strings.ToValidUTF8(sample[:SampleSize], "")
	}

	switch {
	case strings.Contains(sample, ";") && !strings.Contains(sample, ","):
		return ';'
	case strings.Contains(sample, "\t"):
		return '\t'
	default:
		return ','
	}
}

// Parse splits content into rows using delim. Malformed quoting never fails
// the parse: a record the CSV reader rejects is kept as a naive split of
// its line so that later heuristics can still look at it.
func Parse(content string, delim rune) *RawTable {
	r := csv.NewReader(strings.NewReader(content))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	t := &RawTable{Delimiter: delim}
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil && record == nil {
			var perr *csv.ParseError
			if !errors.As(err, &perr) {
				break
			}
			t.Rows = append(t.Rows, naiveSplit(content, perr.StartLine, delim))
			continue
		}
		t.Rows = append(t.Rows, record)
	}
	return t
}

// ReadFile reads and parses a file with a sniffed delimiter.
func ReadFile(path string) (*RawTable, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	content := Decode(data)
	return Parse(content, SniffDelimiter(content)), content, nil
}

// HeaderIndex returns the index of the first non-empty row, or -1.
// Rows before it carry no data and are never treated as records.
func (t *RawTable) HeaderIndex() int {
	for i, row := range t.Rows {
		if !IsEmptyRow(row) {
			return i
		}
	}
	return -1
}

// Header returns the header row, or nil for an empty table.
func (t *RawTable) Header() []string {
	idx := t.HeaderIndex()
	if idx < 0 {
		return nil
	}
	return t.Rows[idx]
}

// DataRows returns the rows after the header row.
func (t *RawTable) DataRows() [][]string {
	idx := t.HeaderIndex()
	if idx < 0 {
		return nil
	}
	return t.Rows[idx+1:]
}

// IsEmptyRow reports whether every cell is blank.
func IsEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// naiveSplit returns the 1-based line of content split on delim.
func naiveSplit(content string, line int, delim rune) []string {
	lines := strings.Split(content, "\n")
	if line < 1 || line > len(lines) {
		return nil
	}
	return strings.Split(strings.TrimRight(lines[line-1], "\r"), string(delim))
}
