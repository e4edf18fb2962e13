// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"context"
	"log/slog"
	"time"
)

// StandardObserver times operations and reports them through slog.
type StandardObserver struct {
	logger *slog.Logger
}

// NewStandardObserver creates an observer. A nil logger uses slog.Default().
func NewStandardObserver(logger *slog.Logger) *StandardObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &StandardObserver{logger: logger}
}

// Logger returns the underlying logger.
func (o *StandardObserver) Logger() *slog.Logger {
	if o == nil {
		return slog.Default()
	}
	return o.logger
}

// StartTiming returns a function to complete timing. A nil observer
// returns a no-op.
func (o *StandardObserver) StartTiming(component, operation, filePath string) func(success bool, metadata map[string]any) {
	if o == nil {
		return func(bool, map[string]any) {}
	}
	start := time.Now()

	return func(success bool, metadata map[string]any) {
		o.LogOperation(StandardObservabilityData{
			Component:  component,
			Operation:  operation,
			FilePath:   filePath,
			DurationMs: time.Since(start).Milliseconds(),
			Success:    success,
			Metadata:   metadata,
		})
	}
}

// LogOperation logs operation data at debug level, or at warn level when
// the operation failed.
func (o *StandardObserver) LogOperation(data StandardObservabilityData) {
	level := slog.LevelDebug
	if !data.Success {
		level = slog.LevelWarn
	}
	if !o.logger.Enabled(context.Background(), level) {
		return
	}

	attrs := []any{
		"component", data.Component,
		"operation", data.Operation,
		"duration_ms", data.DurationMs,
		"success", data.Success,
	}
	if data.FilePath != "" {
		attrs = append(attrs, "path", data.FilePath)
	}
	if data.Error != "" {
		attrs = append(attrs, "error", data.Error)
	}
	if len(data.Metadata) > 0 {
		attrs = append(attrs, "metadata", data.Metadata)
	}
	o.logger.Log(context.Background(), level, "operation", attrs...)
}

// StandardObservabilityData for all components
type StandardObservabilityData struct {
	Component  string         `json:"component"`
	Operation  string         `json:"operation"`
	FilePath   string         `json:"file_path,omitempty"`
	DurationMs int64          `json:"duration_ms,omitempty"`
	Success    bool           `json:"success"`
	Error      string         `json:"error,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}
