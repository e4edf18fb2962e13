// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"log/slog"
	"strings"

	"ipsift/internal/classify"
	"ipsift/internal/extract"
	"ipsift/internal/headers"
)

// Options configures one extraction run. The zero value is usable and
// means the defaults below.
type Options struct {
	// TargetPort is the port records must carry. Default "443".
	TargetPort string
	// Regions are the known regions in priority order. Nil means
	// classify.DefaultRegions(); an empty non-nil slice disables regions.
	Regions []classify.Region
	// RegionFilter restricts which region buckets are computed. Empty
	// means every region.
	RegionFilter []classify.RegionTag
	// HeaderSynonyms adds exact header names per role.
	HeaderSynonyms map[headers.Role][]string
	// DisableFallback turns the line scanner off.
	DisableFallback bool
	// ExcludePorts disqualify a line in the line scanner. Nil means
	// extract.DefaultExcludePorts.
	ExcludePorts []string
	// ExcludeRanges drops matching addresses: "private", "reserved",
	// CIDR blocks, "a-b" ranges or single addresses.
	ExcludeRanges []string
	// Workers bounds concurrent file loading. Values below 1 mean 1.
	Workers int
	// WorkDir receives merged files. Empty means a temporary directory
	// removed when the run ends.
	WorkDir string
	// Logger receives run logs. Nil means slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns options with every default spelled out.
func DefaultOptions() Options {
	return Options{
		TargetPort:   extract.DefaultTargetPort,
		Regions:      classify.DefaultRegions(),
		ExcludePorts: append([]string(nil), extract.DefaultExcludePorts...),
		Workers:      1,
	}
}

// ParseRegionFilter converts region names into a filter. An empty slice
// or ["all"] selects every region.
func ParseRegionFilter(names []string) []classify.RegionTag {
	if len(names) == 0 || (len(names) == 1 && strings.EqualFold(strings.TrimSpace(names[0]), "all")) {
		return nil
	}

	var out []classify.RegionTag
	seen := make(map[classify.RegionTag]bool)
	for _, n := range names {
		for _, part := range strings.Split(n, ",") {
			tag := classify.RegionTag(strings.ToUpper(strings.TrimSpace(part)))
			if tag == classify.NoRegion || seen[tag] {
				continue
			}
			seen[tag] = true
			out = append(out, tag)
		}
	}
	return out
}
