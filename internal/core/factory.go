// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"fmt"
	"log/slog"

	"ipsift/internal/classify"
	"ipsift/internal/extract"
	"ipsift/internal/headers"
	"ipsift/internal/observability"
	"ipsift/internal/preprocessors"
	"ipsift/internal/validators/ipaddress"
)

// pipeline is everything derived from Options once per run. All of it is
// read-only after newPipeline returns.
type pipeline struct {
	extractor  *extract.Extractor
	classifier *classify.Classifier
	loader     *preprocessors.PreprocessorManager
	chain      []extract.Strategy
	// active holds the region buckets to compute, in priority order.
	active     []classify.Region
	predicates map[classify.RegionTag]*extract.RegionPredicate
	observer   *observability.StandardObserver
	logger     *slog.Logger
	workers    int
	workDir    string
}

// newPipeline validates opts and builds the run's components. Every
// configuration problem surfaces here, before any file is read.
func newPipeline(opts Options) (*pipeline, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	observer := observability.NewStandardObserver(logger)

	filter, err := ipaddress.NewRangeFilter(opts.ExcludeRanges)
	if err != nil {
		return nil, fmt.Errorf("exclude ranges: %w", err)
	}

	excludePorts := opts.ExcludePorts
	if excludePorts == nil {
		excludePorts = extract.DefaultExcludePorts
	}

	ex, err := extract.New(extract.Config{
		TargetPort:   opts.TargetPort,
		Rules:        BuildRuleTable(opts.HeaderSynonyms),
		ExcludePorts: excludePorts,
		Exclude:      filter,
	})
	if err != nil {
		return nil, err
	}

	regions := opts.Regions
	if regions == nil {
		regions = classify.DefaultRegions()
	}
	classifier, err := classify.NewClassifier(regions)
	if err != nil {
		return nil, err
	}

	active, err := selectRegions(classifier, opts.RegionFilter)
	if err != nil {
		return nil, err
	}

	p := &pipeline{
		extractor:  ex,
		classifier: classifier,
		loader:     preprocessors.NewDefaultManager(observer),
		chain:      extract.DefaultChain(),
		active:     active,
		predicates: make(map[classify.RegionTag]*extract.RegionPredicate, len(active)),
		observer:   observer,
		logger:     logger,
		workers:    max(opts.Workers, 1),
		workDir:    opts.WorkDir,
	}
	if opts.DisableFallback {
		p.chain = []extract.Strategy{extract.Structured}
	}
	for _, r := range active {
		p.predicates[r.Tag] = extract.NewRegionPredicate(r.Tokens...)
	}
	return p, nil
}

// BuildRuleTable returns the default header rules extended with synonyms.
func BuildRuleTable(synonyms map[headers.Role][]string) headers.RuleTable {
	rt := headers.DefaultRules()
	for _, role := range headers.Roles {
		if names := synonyms[role]; len(names) > 0 {
			rt = rt.WithExtra(role, names...)
		}
	}
	return rt
}

func selectRegions(c *classify.Classifier, filter []classify.RegionTag) ([]classify.Region, error) {
	if len(filter) == 0 {
		return c.Regions(), nil
	}
	var out []classify.Region
	for _, tag := range filter {
		r, ok := c.Region(tag)
		if !ok {
			return nil, fmt.Errorf("unknown region %q", tag)
		}
		out = append(out, r)
	}
	return out, nil
}

// isActive reports whether tag is one of the computed region buckets.
func (p *pipeline) isActive(tag classify.RegionTag) bool {
	_, ok := p.predicates[tag]
	return ok
}
