// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package shared

import (
	"time"

	"ipsift/internal/core"
	"ipsift/internal/formatters"
)

// ReportDocument is the top-level structure for JSON/YAML output
type ReportDocument struct {
	RunID      string              `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Version    string              `json:"version,omitempty" yaml:"version,omitempty"`
	TargetPort string              `json:"target_port" yaml:"target_port"`
	Started    string              `json:"started,omitempty" yaml:"started,omitempty"`
	DurationMS int64               `json:"duration_ms" yaml:"duration_ms"`
	Totals     Totals              `json:"totals" yaml:"totals"`
	Addresses  map[string][]string `json:"addresses,omitempty" yaml:"addresses,omitempty"`
	Files      []FileEntry         `json:"files" yaml:"files"`
	Merge      *core.MergeReport   `json:"merge,omitempty" yaml:"merge,omitempty"`
	Outputs    []OutputEntry       `json:"outputs" yaml:"outputs"`
}

// Totals counts addresses per bucket.
type Totals struct {
	All     int            `json:"all" yaml:"all"`
	Regions map[string]int `json:"regions,omitempty" yaml:"regions,omitempty"`
}

// FileEntry is a core.FileReport with its error rendered.
type FileEntry struct {
	core.FileReport `yaml:",inline"`
	Error           string `json:"error,omitempty" yaml:"error,omitempty"`
}

// OutputEntry is a core.WriteOutcome with its error rendered.
type OutputEntry struct {
	core.WriteOutcome `yaml:",inline"`
	Error             string `json:"error,omitempty" yaml:"error,omitempty"`
}

// ConvertReport flattens a report into its serialisable form. Address
// lists are included only in verbose mode.
func ConvertReport(report *formatters.Report, options formatters.FormatterOptions) ReportDocument {
	doc := ReportDocument{
		RunID:      report.RunID,
		Version:    report.Version,
		TargetPort: report.TargetPort,
		DurationMS: report.Duration.Milliseconds(),
		Files:      []FileEntry{},
		Outputs:    []OutputEntry{},
	}
	if !report.Started.IsZero() {
		doc.Started = report.Started.UTC().Format(time.RFC3339)
	}

	if res := report.Result; res != nil {
		doc.Totals.All = len(res.All)
		doc.Merge = res.Merge
		if options.Verbose {
			doc.Addresses = map[string][]string{core.BucketAll: res.All.Strings()}
		}
		for _, tag := range res.Regions() {
			set := res.ByRegion[tag]
			if doc.Totals.Regions == nil {
				doc.Totals.Regions = make(map[string]int)
			}
			doc.Totals.Regions[string(tag)] = len(set)
			if options.Verbose {
				doc.Addresses[string(tag)] = set.Strings()
			}
		}
		for _, f := range res.Files {
			doc.Files = append(doc.Files, FileEntry{FileReport: f, Error: errString(f.Err)})
		}
	}

	for _, w := range report.Writes {
		doc.Outputs = append(doc.Outputs, OutputEntry{WriteOutcome: w, Error: errString(w.Err)})
	}
	return doc
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
