// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package textextractpdftextlib extracts plain text lines from PDF documents.
package textextractpdftextlib

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// MaxPages bounds how many pages are read from one document.
const MaxPages = 200

// TextContent represents the extracted text content from a PDF document
type TextContent struct {
	Text        string
	PageCount   int
	FailedPages int
}

// ExtractText reads every page of a PDF and returns its text with one line
// per visual row, pages in order.
func ExtractText(filePath string) (*TextContent, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("error opening PDF: %w", err)
	}
	defer f.Close()

	content := &TextContent{PageCount: min(r.NumPage(), MaxPages)}

	var sb strings.Builder
	for i := 1; i <= content.PageCount; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			content.FailedPages++
			continue
		}
		text, err := pageText(p)
		if err != nil {
			content.FailedPages++
			continue
		}
		sb.WriteString(text)
	}

	content.Text = sb.String()
	return content, nil
}

// pageText rebuilds the rows of a page top to bottom, falling back to the
// library's plain text when row grouping fails.
func pageText(p pdf.Page) (string, error) {
	rows, err := p.GetTextByRow()
	if err != nil {
		return p.GetPlainText(nil)
	}

	kept := make([]*pdf.Row, 0, len(rows))
	for _, row := range rows {
		if row != nil && len(row.Content) > 0 {
			kept = append(kept, row)
		}
	}
	// PDF y grows upwards.
	sort.SliceStable(kept, func(i, j int) bool {
		return averageY(kept[i].Content) > averageY(kept[j].Content)
	})

	var sb strings.Builder
	for _, row := range kept {
		line := rowText(row.Content)
		if strings.TrimSpace(line) != "" {
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}
	return sb.String(), nil
}

func averageY(texts []pdf.Text) float64 {
	if len(texts) == 0 {
		return 0
	}
	var total float64
	for _, t := range texts {
		total += t.Y
	}
	return total / float64(len(texts))
}

// rowText joins the glyph runs of a row left to right, inserting a space
// wherever the horizontal gap exceeds a fifth of the font size.
func rowText(texts []pdf.Text) string {
	sorted := make([]pdf.Text, len(texts))
	copy(sorted, texts)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	var sb strings.Builder
	for i, t := range sorted {
		sb.WriteString(t.S)
		if i == len(sorted)-1 {
			break
		}
		size := t.FontSize
		if size <= 0 {
			size = 12
		}
		if gap := sorted[i+1].X - (t.X + t.W); gap > size*0.2 {
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}
