// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"context"
	"fmt"
	"os"

	"ipsift/internal/observability"
	"ipsift/internal/resilience"
	"ipsift/internal/table"
)

// PlainTextPreprocessor reads delimited text files. The delimiter is
// sniffed from the start of the content.
type PlainTextPreprocessor struct {
	observer *observability.StandardObserver
	retry    resilience.RetryConfig
}

// NewPlainTextPreprocessor creates a new plain text preprocessor
func NewPlainTextPreprocessor() *PlainTextPreprocessor {
	return &PlainTextPreprocessor{retry: resilience.DefaultRetryConfig()}
}

// SetObserver sets the observability component
func (ptp *PlainTextPreprocessor) SetObserver(observer *observability.StandardObserver) {
	ptp.observer = observer
}

// GetName returns the name of this preprocessor
func (ptp *PlainTextPreprocessor) GetName() string {
	return "Delimited Text Reader"
}

// GetSupportedExtensions returns the file extensions this preprocessor supports
func (ptp *PlainTextPreprocessor) GetSupportedExtensions() []string {
	return []string{".csv", ".tsv", ".txt", ".dat", ".log", ""}
}

// CanProcess checks if this preprocessor can handle the given file
func (ptp *PlainTextPreprocessor) CanProcess(filePath string) bool {
	return hasExtension(filePath, ptp.GetSupportedExtensions())
}

// Process reads and parses the file
func (ptp *PlainTextPreprocessor) Process(filePath string) (*Document, error) {
	finish := ptp.observer.StartTiming("plaintext_preprocessor", "process_file", filePath)

	data, err := resilience.RetryWithResult(context.Background(), ptp.retry, func(context.Context) ([]byte, error) {
		return os.ReadFile(filePath)
	})
	if err != nil {
		finish(false, map[string]any{"error": err.Error()})
		return nil, fmt.Errorf("reading %s: %w", filePath, err)
	}

	text := table.Decode(data)
	t := table.Parse(text, table.SniffDelimiter(text))

	finish(true, map[string]any{
		"bytes":     len(data),
		"rows":      len(t.Rows),
		"delimiter": string(t.Delimiter),
	})
	return &Document{
		Path:          filePath,
		Format:        FormatDelimited,
		Table:         t,
		Text:          text,
		ProcessorType: ptp.GetName(),
	}, nil
}
