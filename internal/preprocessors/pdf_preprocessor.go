// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"fmt"

	"ipsift/internal/observability"
	textextractpdftextlib "ipsift/internal/preprocessors/text-extractors/text-extract-pdftextlib"
)

// PDFPreprocessor extracts the text of PDF documents. PDFs have no table,
// so only the line scanner sees them.
type PDFPreprocessor struct {
	observer *observability.StandardObserver
}

// NewPDFPreprocessor creates a PDF preprocessor
func NewPDFPreprocessor() *PDFPreprocessor {
	return &PDFPreprocessor{}
}

// SetObserver sets the observability component
func (pp *PDFPreprocessor) SetObserver(observer *observability.StandardObserver) {
	pp.observer = observer
}

// GetName returns the name of this preprocessor
func (pp *PDFPreprocessor) GetName() string {
	return "PDF Text Extractor"
}

// GetSupportedExtensions returns the file extensions this preprocessor supports
func (pp *PDFPreprocessor) GetSupportedExtensions() []string {
	return []string{".pdf"}
}

// CanProcess checks if this preprocessor can handle the given file
func (pp *PDFPreprocessor) CanProcess(filePath string) bool {
	return hasExtension(filePath, pp.GetSupportedExtensions())
}

// Process extracts text content from the file
func (pp *PDFPreprocessor) Process(filePath string) (*Document, error) {
	finish := pp.observer.StartTiming("pdf_preprocessor", "process_file", filePath)

	content, err := textextractpdftextlib.ExtractText(filePath)
	if err != nil {
		finish(false, map[string]any{"error": err.Error()})
		return nil, fmt.Errorf("extracting text from %s: %w", filePath, err)
	}

	finish(true, map[string]any{
		"pages":        content.PageCount,
		"failed_pages": content.FailedPages,
	})
	return &Document{
		Path:          filePath,
		Format:        FormatPDF,
		Text:          content.Text,
		ProcessorType: pp.GetName(),
		PageCount:     content.PageCount,
	}, nil
}
