// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package output writes address lists to disk.
package output

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"ipsift/internal/resilience"
)

// Writer writes one address per line, sorted, LF-terminated, replacing the
// destination atomically. Transient filesystem failures are retried.
type Writer struct {
	Retry    resilience.RetryConfig
	FileMode os.FileMode
	DirMode  os.FileMode
	Logger   *slog.Logger
}

// NewWriter returns a Writer with the default retry policy.
func NewWriter(logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{
		Retry:    resilience.DefaultRetryConfig(),
		FileMode: 0o644,
		DirMode:  0o755,
		Logger:   logger,
	}
}

// Write stores addrs at path. The slice is sorted in place; duplicates are
// the caller's concern. Parent directories are created as needed.
func (w *Writer) Write(ctx context.Context, path string, addrs []string) error {
	sort.Strings(addrs)

	retry := w.Retry
	retry.OnRetry = func(attempt int, err error) {
		w.logger().Warn("retrying output write", "path", path, "attempt", attempt, "error", err)
	}

	return resilience.RetryWithBackoff(ctx, retry, func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return w.writeAtomic(path, addrs)
	})
}

func (w *Writer) writeAtomic(dest string, lines []string) error {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, w.dirMode()); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".ipsift-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	fail := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}

	if err := tmp.Chmod(w.fileMode()); err != nil {
		return fail(fmt.Errorf("setting file mode: %w", err))
	}

	bw := bufio.NewWriter(tmp)
	for _, l := range lines {
		if _, err := bw.WriteString(l + "\n"); err != nil {
			return fail(err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

func (w *Writer) fileMode() os.FileMode {
	if w.FileMode == 0 {
		return 0o644
	}
	return w.FileMode
}

func (w *Writer) dirMode() os.FileMode {
	if w.DirMode == 0 {
		return 0o755
	}
	return w.DirMode
}

func (w *Writer) logger() *slog.Logger {
	if w.Logger == nil {
		return slog.Default()
	}
	return w.Logger
}
