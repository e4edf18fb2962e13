// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package text

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"ipsift/internal/core"
	"ipsift/internal/formatters"

	"github.com/fatih/color"
)

// Formatter implements text-based output formatting
type Formatter struct {
	colors map[string]*color.Color
}

// NewFormatter creates a new text formatter
func NewFormatter() *Formatter {
	return &Formatter{
		colors: map[string]*color.Color{
			"green":   color.New(color.FgGreen),
			"yellow":  color.New(color.FgYellow),
			"red":     color.New(color.FgRed),
			"cyan":    color.New(color.FgCyan),
			"magenta": color.New(color.FgMagenta),
			"blue":    color.New(color.FgBlue),
			"white":   color.New(color.FgWhite, color.Bold),
		},
	}
}

func (f *Formatter) Name() string {
	return "text"
}

func (f *Formatter) Description() string {
	return "Human-readable run summary with colors and tables"
}

func (f *Formatter) FileExtension() string {
	return ".txt"
}

func (f *Formatter) Format(report *formatters.Report, options formatters.FormatterOptions) (string, error) {
	var builder strings.Builder

	f.appendRunHeader(&builder, report, options)

	res := report.Result
	if res == nil || len(res.Files) == 0 {
		builder.WriteString("No input files.\n")
		f.appendOutputs(&builder, report.Writes, options)
		return builder.String(), nil
	}

	f.appendFiles(&builder, res.Files, options)
	if res.Merge != nil {
		f.appendMerge(&builder, res.Merge, options)
	}
	f.appendTotals(&builder, res, options)
	if options.Verbose {
		f.appendAddresses(&builder, res, options)
	}
	f.appendOutputs(&builder, report.Writes, options)

	return builder.String(), nil
}

// paint applies the named color unless colors are disabled
func (f *Formatter) paint(name string, options formatters.FormatterOptions, format string, args ...any) string {
	if options.NoColor {
		return fmt.Sprintf(format, args...)
	}
	return f.colors[name].Sprintf(format, args...)
}

func (f *Formatter) appendRunHeader(builder *strings.Builder, report *formatters.Report, options formatters.FormatterOptions) {
	builder.WriteString(f.paint("white", options, "ipsift run"))
	if report.RunID != "" {
		fmt.Fprintf(builder, " %s", report.RunID)
	}
	fmt.Fprintf(builder, " (port %s", report.TargetPort)
	if report.Duration > 0 {
		fmt.Fprintf(builder, ", %s", report.Duration.Round(time.Millisecond))
	}
	builder.WriteString(")\n\n")
}

// appendFiles adds the per-file table
func (f *Formatter) appendFiles(builder *strings.Builder, files []core.FileReport, options formatters.FormatterOptions) {
	width := nameColumnWidth(files)
	builder.WriteString(f.paint("white", options, "%-8s %-12s %-11s %6s  %-*s\n",
		"BUCKET", "FORMAT", "STRATEGY", "COUNT", width, "FILE"))
	builder.WriteString(f.paint("white", options, "%s\n", strings.Repeat("-", 8+1+12+1+11+1+6+2+width)))

	for _, file := range files {
		bucket := f.paint("cyan", options, "%-8s", file.Bucket)
		strategy := file.Strategy
		if strategy == "" {
			strategy = "-"
		}
		format := file.Format
		if format == "" {
			format = "-"
		}
		count := f.paint("blue", options, "%6d", file.Count)
		fmt.Fprintf(builder, "%s %-12s %-11s %s  %s", bucket, format, strategy, count, file.Path)
		if file.Err != nil {
			builder.WriteString(f.paint("red", options, "  error: %v", file.Err))
		}
		builder.WriteString("\n")
	}
	builder.WriteString("\n")
}

func nameColumnWidth(files []core.FileReport) int {
	width := len("FILE")
	for _, file := range files {
		if n := len([]rune(file.Path)); n > width {
			width = n
		}
	}
	// Cap for readability
	return min(width, 60)
}

func (f *Formatter) appendMerge(builder *strings.Builder, m *core.MergeReport, options formatters.FormatterOptions) {
	fmt.Fprintf(builder, "%s %s of %d file(s), %d row(s), %s found %d\n",
		f.paint("cyan", options, "Merge:"), m.Mode, len(m.Files), m.Rows, m.Strategy, m.Count)
	for _, s := range m.Skipped {
		builder.WriteString(f.paint("yellow", options, "  skipped %s\n", filepath.Base(s)))
	}
	builder.WriteString("\n")
}

func (f *Formatter) appendTotals(builder *strings.Builder, res *core.Result, options formatters.FormatterOptions) {
	countColor := "green"
	if len(res.All) == 0 {
		countColor = "yellow"
	}
	fmt.Fprintf(builder, "%s %s\n", f.paint("cyan", options, "%-8s", core.BucketAll), f.paint(countColor, options, "%d", len(res.All)))
	for _, tag := range res.Regions() {
		fmt.Fprintf(builder, "%s %s\n", f.paint("cyan", options, "%-8s", tag), f.paint("magenta", options, "%d", len(res.ByRegion[tag])))
	}
	if failed := res.Failed(); len(failed) > 0 {
		builder.WriteString(f.paint("red", options, "%d file(s) could not be read\n", len(failed)))
	}
	builder.WriteString("\n")
}

func (f *Formatter) appendAddresses(builder *strings.Builder, res *core.Result, options formatters.FormatterOptions) {
	builder.WriteString(f.paint("white", options, "=== %s ===\n", core.BucketAll))
	for _, a := range res.All.Strings() {
		builder.WriteString(a + "\n")
	}
	for _, tag := range res.Regions() {
		builder.WriteString(f.paint("white", options, "=== %s ===\n", tag))
		for _, a := range res.ByRegion[tag].Strings() {
			builder.WriteString(a + "\n")
		}
	}
	builder.WriteString("\n")
}

// appendOutputs adds one line per destination file
func (f *Formatter) appendOutputs(builder *strings.Builder, writes []core.WriteOutcome, options formatters.FormatterOptions) {
	for _, w := range writes {
		switch {
		case w.Err != nil:
			fmt.Fprintf(builder, "%s %s: %v\n", f.paint("red", options, "[FAILED] "), w.Path, w.Err)
		case w.Skipped:
			fmt.Fprintf(builder, "%s %s (empty)\n", f.paint("yellow", options, "[SKIPPED]"), w.Path)
		default:
			fmt.Fprintf(builder, "%s %s (%d)\n", f.paint("green", options, "[WROTE]  "), w.Path, w.Count)
		}
	}
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
