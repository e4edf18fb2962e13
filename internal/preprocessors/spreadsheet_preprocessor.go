// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"ipsift/internal/observability"
	"ipsift/internal/table"
)

// SpreadsheetPreprocessor reads the first sheet of an Excel workbook.
type SpreadsheetPreprocessor struct {
	observer *observability.StandardObserver
}

// NewSpreadsheetPreprocessor creates a spreadsheet preprocessor
func NewSpreadsheetPreprocessor() *SpreadsheetPreprocessor {
	return &SpreadsheetPreprocessor{}
}

// SetObserver sets the observability component
func (sp *SpreadsheetPreprocessor) SetObserver(observer *observability.StandardObserver) {
	sp.observer = observer
}

// GetName returns the name of this preprocessor
func (sp *SpreadsheetPreprocessor) GetName() string {
	return "Spreadsheet Reader"
}

// GetSupportedExtensions returns the file extensions this preprocessor supports
func (sp *SpreadsheetPreprocessor) GetSupportedExtensions() []string {
	return []string{".xlsx", ".xlsm"}
}

// CanProcess checks if this preprocessor can handle the given file
func (sp *SpreadsheetPreprocessor) CanProcess(filePath string) bool {
	return hasExtension(filePath, sp.GetSupportedExtensions())
}

// Process turns the first sheet into a table. The document text is the
// sheet rendered as comma-separated lines.
func (sp *SpreadsheetPreprocessor) Process(filePath string) (*Document, error) {
	finish := sp.observer.StartTiming("spreadsheet_preprocessor", "process_file", filePath)

	f, err := excelize.OpenFile(filePath)
	if err != nil {
		finish(false, map[string]any{"error": err.Error()})
		return nil, fmt.Errorf("opening workbook %s: %w", filePath, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		finish(false, nil)
		return nil, fmt.Errorf("workbook %s has no sheets", filePath)
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet)
	if err != nil {
		finish(false, map[string]any{"error": err.Error()})
		return nil, fmt.Errorf("reading sheet %q of %s: %w", sheet, filePath, err)
	}

	var sb strings.Builder
	for _, row := range rows {
		sb.WriteString(strings.Join(row, ","))
		sb.WriteByte('\n')
	}

	finish(true, map[string]any{"sheet": sheet, "rows": len(rows)})
	return &Document{
		Path:          filePath,
		Format:        FormatSpreadsheet,
		Table:         &table.RawTable{Rows: rows, Delimiter: ','},
		Text:          sb.String(),
		ProcessorType: sp.GetName(),
		Sheet:         sheet,
	}, nil
}
