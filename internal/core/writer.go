// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"ipsift/internal/classify"
	"ipsift/internal/extract"
	"ipsift/internal/output"
)

// BucketAll names the overall output in WriteOutcome.
const BucketAll = "all"

// Destinations maps result buckets to output files. An empty All path
// skips the overall output.
type Destinations struct {
	All      string
	ByRegion map[classify.RegionTag]string
	// SkipEmpty leaves destinations of empty buckets untouched.
	SkipEmpty bool
}

// DestinationsIn places the overall output at all (relative paths are
// joined to dir) and each region's output at its configured name, or at
// "<tag lower-case>.txt" when the region has none.
func DestinationsIn(dir, all string, regions map[classify.RegionTag]string, tags []classify.RegionTag) Destinations {
	join := func(p string) string {
		if p == "" || filepath.IsAbs(p) || dir == "" {
			return p
		}
		return filepath.Join(dir, p)
	}

	d := Destinations{All: join(all), ByRegion: make(map[classify.RegionTag]string, len(tags))}
	for _, tag := range tags {
		name := regions[tag]
		if name == "" {
			name = defaultRegionFile(tag)
		}
		d.ByRegion[tag] = join(name)
	}
	return d
}

func defaultRegionFile(tag classify.RegionTag) string {
	return strings.ToLower(string(tag)) + ".txt"
}

// WriteOutcome reports one destination write.
type WriteOutcome struct {
	Bucket  string `json:"bucket" yaml:"bucket"`
	Path    string `json:"path" yaml:"path"`
	Count   int    `json:"count" yaml:"count"`
	Skipped bool   `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Err     error  `json:"-" yaml:"-"`
}

// WriteResults writes result to dest with the default writer.
func WriteResults(ctx context.Context, result *Result, dest Destinations) []WriteOutcome {
	return WriteResultsWith(ctx, output.NewWriter(slog.Default()), result, dest)
}

// WriteResultsWith writes the overall bucket, then each region in tag
// order. A failed write is recorded in its outcome and the remaining
// writes still run. A region destination with no matching bucket is
// written empty.
func WriteResultsWith(ctx context.Context, w *output.Writer, result *Result, dest Destinations) []WriteOutcome {
	var outcomes []WriteOutcome
	write := func(bucket, path string, set extract.AddressSet) {
		o := WriteOutcome{Bucket: bucket, Path: path, Count: len(set)}
		if o.Count == 0 && dest.SkipEmpty {
			o.Skipped = true
		} else {
			o.Err = w.Write(ctx, path, set.Strings())
		}
		outcomes = append(outcomes, o)
	}

	if result == nil {
		result = &Result{}
	}
	if dest.All != "" {
		write(BucketAll, dest.All, result.All)
	}

	tags := make([]classify.RegionTag, 0, len(dest.ByRegion))
	for tag := range dest.ByRegion {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	for _, tag := range tags {
		if path := dest.ByRegion[tag]; path != "" {
			write(string(tag), path, result.ByRegion[tag])
		}
	}
	return outcomes
}

// HasFailures reports whether any outcome carries an error.
func HasFailures(outcomes []WriteOutcome) bool {
	for _, o := range outcomes {
		if o.Err != nil {
			return true
		}
	}
	return false
}
