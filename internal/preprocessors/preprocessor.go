// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package preprocessors loads input files of various formats into the
// table and text forms the extractor works on.
package preprocessors

import (
	"fmt"
	"path/filepath"
	"strings"

	"ipsift/internal/observability"
	"ipsift/internal/table"
)

// Document formats.
const (
	FormatDelimited   = "delimited"
	FormatSpreadsheet = "spreadsheet"
	FormatPDF         = "pdf"
)

// Document is the loaded form of one input file.
type Document struct {
	Path   string
	Format string
	// Table is nil for documents without rows and columns.
	Table *table.RawTable
	// Text is the decoded content used by the line scanner.
	Text string

	ProcessorType string
	PageCount     int
	Sheet         string
}

// Tabular reports whether the document has a table.
func (d *Document) Tabular() bool {
	return d != nil && d.Table != nil
}

// Preprocessor interface defines methods for preprocessing files
type Preprocessor interface {
	// CanProcess checks if this preprocessor can handle the given file
	CanProcess(filePath string) bool

	// Process loads the file
	Process(filePath string) (*Document, error)

	// GetName returns the name of this preprocessor
	GetName() string

	// GetSupportedExtensions returns the file extensions this preprocessor supports
	GetSupportedExtensions() []string

	// SetObserver sets the observability component
	SetObserver(observer *observability.StandardObserver)
}

// PreprocessorManager picks a preprocessor per file.
type PreprocessorManager struct {
	preprocessors []Preprocessor
	fallback      Preprocessor
}

// NewPreprocessorManager creates an empty manager. Files no registered
// preprocessor claims are handled by fallback, which may be nil.
func NewPreprocessorManager(fallback Preprocessor) *PreprocessorManager {
	return &PreprocessorManager{fallback: fallback}
}

// NewDefaultManager registers the spreadsheet and PDF preprocessors and
// reads everything else as delimited text.
func NewDefaultManager(observer *observability.StandardObserver) *PreprocessorManager {
	text := NewPlainTextPreprocessor()
	pm := NewPreprocessorManager(text)
	pm.RegisterPreprocessor(NewSpreadsheetPreprocessor())
	pm.RegisterPreprocessor(NewPDFPreprocessor())
	pm.RegisterPreprocessor(text)
	pm.SetObserver(observer)
	return pm
}

// RegisterPreprocessor adds a preprocessor to the manager
func (pm *PreprocessorManager) RegisterPreprocessor(p Preprocessor) {
	pm.preprocessors = append(pm.preprocessors, p)
}

// SetObserver passes observer to every registered preprocessor.
func (pm *PreprocessorManager) SetObserver(observer *observability.StandardObserver) {
	for _, p := range pm.preprocessors {
		p.SetObserver(observer)
	}
	if pm.fallback != nil {
		pm.fallback.SetObserver(observer)
	}
}

// GetPreprocessor returns the preprocessor for a file: the first registered
// one that claims it, else the fallback.
func (pm *PreprocessorManager) GetPreprocessor(filePath string) Preprocessor {
	for _, p := range pm.preprocessors {
		if p.CanProcess(filePath) {
			return p
		}
	}
	return pm.fallback
}

// ProcessFile loads a file with its preprocessor.
func (pm *PreprocessorManager) ProcessFile(filePath string) (*Document, error) {
	p := pm.GetPreprocessor(filePath)
	if p == nil {
		return nil, fmt.Errorf("no preprocessor for %s", filepath.Base(filePath))
	}
	return p.Process(filePath)
}

// SupportedExtensions lists every extension claimed by a registered
// preprocessor.
func (pm *PreprocessorManager) SupportedExtensions() []string {
	var out []string
	for _, p := range pm.preprocessors {
		out = append(out, p.GetSupportedExtensions()...)
	}
	return out
}

func hasExtension(filePath string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(filePath))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
