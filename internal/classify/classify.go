// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package classify sorts input files into region buckets by file name.
package classify

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// RegionTag names a region. The empty tag means no region.
type RegionTag string

// NoRegion is the tag of files and rows outside every region.
const NoRegion RegionTag = ""

// Region describes how a region is recognised.
type Region struct {
	Tag RegionTag
	// FilePatterns are regular expressions matched against base file names.
	FilePatterns []string
	// Tokens identify the region inside row or line text.
	Tokens []string
}

// DefaultRegions returns the built-in Hong Kong and Singapore regions.
func DefaultRegions() []Region {
	return []Region{
		{
			Tag:          "HK",
			FilePatterns: []string{`(?i)^hk[-_ ]`},
			Tokens:       []string{"HK", "HKG", "HONG KONG", "香港"},
		},
		{
			Tag:          "SG",
			FilePatterns: []string{`(?i)^sg[-_ ]`},
			Tokens:       []string{"SG", "SIN", "SINGAPORE", "新加坡"},
		},
	}
}

// FileBucket groups files by classification. A file appears in exactly one
// group.
type FileBucket struct {
	Preferred map[RegionTag][]string
	Other     []string
}

// Len returns the number of classified files.
func (b FileBucket) Len() int {
	n := len(b.Other)
	for _, files := range b.Preferred {
		n += len(files)
	}
	return n
}

type compiledRegion struct {
	Region
	patterns []*regexp.Regexp
}

// Classifier assigns files to regions. It is immutable after construction.
type Classifier struct {
	regions []compiledRegion
}

// NewClassifier compiles regions. Tags are upper-cased and must be unique
// and non-empty.
func NewClassifier(regions []Region) (*Classifier, error) {
	c := &Classifier{}
	seen := make(map[RegionTag]bool, len(regions))

	for i, r := range regions {
		r.Tag = RegionTag(strings.ToUpper(strings.TrimSpace(string(r.Tag))))
		if r.Tag == NoRegion {
			return nil, fmt.Errorf("region %d: empty tag", i)
		}
		if seen[r.Tag] {
			return nil, fmt.Errorf("region %s: duplicate tag", r.Tag)
		}
		seen[r.Tag] = true

		cr := compiledRegion{Region: r}
		for _, p := range r.FilePatterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("region %s: file pattern %q: %w", r.Tag, p, err)
			}
			cr.patterns = append(cr.patterns, re)
		}
		c.regions = append(c.regions, cr)
	}
	return c, nil
}

// Regions returns the configured regions in priority order.
func (c *Classifier) Regions() []Region {
	out := make([]Region, len(c.regions))
	for i, r := range c.regions {
		out[i] = r.Region
	}
	return out
}

// Region looks up a region by tag.
func (c *Classifier) Region(tag RegionTag) (Region, bool) {
	for _, r := range c.regions {
		if r.Tag == tag {
			return r.Region, true
		}
	}
	return Region{}, false
}

// Tag returns the first region whose file pattern matches the base name
// of path, or NoRegion.
func (c *Classifier) Tag(path string) RegionTag {
	name := filepath.Base(path)
	for _, r := range c.regions {
		for _, re := range r.patterns {
			if re.MatchString(name) {
				return r.Tag
			}
		}
	}
	return NoRegion
}

// Classify buckets paths by Tag, keeping input order within each group.
// It does not touch the filesystem.
func (c *Classifier) Classify(paths []string) FileBucket {
	b := FileBucket{Preferred: make(map[RegionTag][]string)}
	for _, p := range paths {
		if tag := c.Tag(p); tag != NoRegion {
			b.Preferred[tag] = append(b.Preferred[tag], p)
			continue
		}
		b.Other = append(b.Other, p)
	}
	return b
}
