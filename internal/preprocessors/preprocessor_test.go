// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestGetPreprocessor(t *testing.T) {
	pm := NewDefaultManager(nil)

	tests := []struct {
		path string
		want string
	}{
		{"nodes.csv", "Delimited Text Reader"},
		{"NODES.TSV", "Delimited Text Reader"},
		{"README", "Delimited Text Reader"},
		{"export.xlsx", "Spreadsheet Reader"},
		{"report.PDF", "PDF Text Extractor"},
		{"weird.bin", "Delimited Text Reader"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, pm.GetPreprocessor(tt.path).GetName())
		})
	}
}

func TestManager_NoFallback(t *testing.T) {
	pm := NewPreprocessorManager(nil)
	pm.RegisterPreprocessor(NewPDFPreprocessor())

	_, err := pm.ProcessFile("nodes.csv")
	assert.Error(t, err)
	assert.Equal(t, []string{".pdf"}, pm.SupportedExtensions())
}

func TestPlainText_Process(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nodes.csv")
	require.NoError(t, os.WriteFile(path, []byte("\xEF\xBB\xBFip\tport\n1.2.3.4\t443\n"), 0o644))

	doc, err := NewDefaultManager(nil).ProcessFile(path)
	require.NoError(t, err)
	assert.Equal(t, FormatDelimited, doc.Format)
	assert.True(t, doc.Tabular())
	assert.Equal(t, '\t', doc.Table.Delimiter)
	assert.Equal(t, []string{"ip", "port"}, doc.Table.Header())
	assert.Equal(t, "ip\tport\n1.2.3.4\t443\n", doc.Text)
}

func TestPlainText_Missing(t *testing.T) {
	_, err := NewPlainTextPreprocessor().Process(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

func TestSpreadsheet_Process(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nodes.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"IP", "Port", "Colo"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"1.2.3.4", 443, "HKG"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"5.6.7.8", 80, "SIN"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	doc, err := NewDefaultManager(nil).ProcessFile(path)
	require.NoError(t, err)
	assert.Equal(t, FormatSpreadsheet, doc.Format)
	assert.Equal(t, sheet, doc.Sheet)
	require.Len(t, doc.Table.Rows, 3)
	assert.Equal(t, []string{"1.2.3.4", "443", "HKG"}, doc.Table.Rows[1])
	assert.Contains(t, doc.Text, "5.6.7.8,80,SIN\n")
}

func TestSpreadsheet_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o644))

	_, err := NewSpreadsheetPreprocessor().Process(path)
	assert.Error(t, err)
}

func TestPDF_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 truncated"), 0o644))

	_, err := NewPDFPreprocessor().Process(path)
	assert.Error(t, err)
}
