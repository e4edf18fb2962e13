// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package core runs the extraction pipeline shared by the CLI and tests:
// classify input files, load them, extract target-port addresses per
// region, and write the results.
package core

import (
	"context"
	"fmt"
	"os"
	"sort"

	"golang.org/x/sync/errgroup"

	"ipsift/internal/classify"
	"ipsift/internal/extract"
	"ipsift/internal/merge"
	"ipsift/internal/preprocessors"
	"ipsift/internal/table"
)

// BucketOther is the FileReport bucket of files without a filename region.
const BucketOther = "other"

// StrategyMerged marks a file whose rows were extracted as part of a merge.
const StrategyMerged = "merged"

// FileReport describes what happened to one input file.
type FileReport struct {
	Path     string `json:"path" yaml:"path"`
	Bucket   string `json:"bucket" yaml:"bucket"`
	Format   string `json:"format,omitempty" yaml:"format,omitempty"`
	Strategy string `json:"strategy,omitempty" yaml:"strategy,omitempty"`
	Count    int    `json:"count" yaml:"count"`
	Err      error  `json:"-" yaml:"-"`
}

// MergeReport describes the merge of the other-bucket files.
type MergeReport struct {
	Mode     merge.Mode `json:"mode" yaml:"mode"`
	Files    []string   `json:"files" yaml:"files"`
	Skipped  []string   `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Rows     int        `json:"rows" yaml:"rows"`
	Strategy string     `json:"strategy" yaml:"strategy"`
	Count    int        `json:"count" yaml:"count"`
}

// Result holds the addresses of one run.
type Result struct {
	All      extract.AddressSet
	ByRegion map[classify.RegionTag]extract.AddressSet
	Files    []FileReport
	Merge    *MergeReport
}

// Regions returns the computed region tags in ascending order.
func (r *Result) Regions() []classify.RegionTag {
	tags := make([]classify.RegionTag, 0, len(r.ByRegion))
	for tag := range r.ByRegion {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// Failed returns the reports of files that could not be read.
func (r *Result) Failed() []FileReport {
	var out []FileReport
	for _, f := range r.Files {
		if f.Err != nil {
			out = append(out, f)
		}
	}
	return out
}

// loaded is the per-file outcome of the parallel stage.
type loaded struct {
	doc      *preprocessors.Document
	err      error
	tag      classify.RegionTag
	found    extract.AddressSet
	strategy string
}

// Extract reads files and returns the addresses found on the target port,
// overall and per region. Files named for a region contribute all their
// matches to that region. Rows of every other file are tagged by their
// content. Unreadable files are reported, never fatal; only invalid
// options or a cancelled context produce an error.
func Extract(ctx context.Context, files []string, opts Options) (*Result, error) {
	p, err := newPipeline(opts)
	if err != nil {
		return nil, err
	}

	finish := p.observer.StartTiming("core", "extract", "")

	res := &Result{
		All:      extract.NewAddressSet(),
		ByRegion: make(map[classify.RegionTag]extract.AddressSet, len(p.active)),
		Files:    make([]FileReport, len(files)),
	}
	for _, r := range p.active {
		res.ByRegion[r.Tag] = extract.NewAddressSet()
	}

	tags := p.preferredTags(files)
	items, err := p.load(ctx, files, tags)
	if err != nil {
		finish(false, map[string]any{"error": err.Error()})
		return nil, err
	}

	var others []int
	for i, it := range items {
		rep := FileReport{Path: files[i], Bucket: BucketOther, Err: it.err}
		if it.doc != nil {
			rep.Format = it.doc.Format
		}
		if it.tag != classify.NoRegion {
			rep.Bucket = string(it.tag)
		}

		switch {
		case it.err != nil:
			p.logger.Warn("skipping unreadable file", "path", files[i], "error", it.err)
		case it.tag != classify.NoRegion:
			rep.Strategy = it.strategy
			rep.Count = len(it.found)
			res.All.Union(it.found)
			res.ByRegion[it.tag].Union(it.found)
		default:
			others = append(others, i)
		}
		res.Files[i] = rep
	}

	if err := p.extractOthers(ctx, files, items, others, res); err != nil {
		finish(false, map[string]any{"error": err.Error()})
		return nil, err
	}

	meta := map[string]any{"files": len(files), "all": len(res.All)}
	for tag, set := range res.ByRegion {
		meta[string(tag)] = len(set)
	}
	finish(true, meta)
	return res, nil
}

// preferredTags classifies files once and returns, per input index, the
// active region its name claims. Files named for an inactive region are
// left untagged so their rows are content-checked like any other file.
func (p *pipeline) preferredTags(files []string) []classify.RegionTag {
	bucket := p.classifier.Classify(files)

	byPath := make(map[string]classify.RegionTag, bucket.Len()-len(bucket.Other))
	for tag, paths := range bucket.Preferred {
		if !p.isActive(tag) {
			continue
		}
		for _, path := range paths {
			byPath[path] = tag
		}
	}

	tags := make([]classify.RegionTag, len(files))
	for i, path := range files {
		tags[i] = byPath[path]
	}
	p.logger.Debug("files classified", "files", bucket.Len(), "preferred", len(byPath), "other", len(files)-len(byPath))
	return tags
}

// load reads every file with up to p.workers in flight. Files tagged with
// an active region are also extracted here since their rows need no
// region check. Results are collected by index and merged by the caller.
func (p *pipeline) load(ctx context.Context, files []string, tags []classify.RegionTag) ([]loaded, error) {
	items := make([]loaded, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			it := loaded{tag: tags[i]}
			it.doc, it.err = p.loader.ProcessFile(path)
			if it.err == nil && it.tag != classify.NoRegion {
				var s extract.Strategy
				it.found, s = p.extractor.RunChain(p.chain, input(it.doc), nil)
				it.strategy = s.Name
			}
			items[i] = it
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}

// extractOthers handles files without a filename region. Tabular files are
// merged into one table first; the merged table and any text-only
// documents are then queried once for the overall set and once per region
// with that region's tokens.
func (p *pipeline) extractOthers(ctx context.Context, files []string, items []loaded, idx []int, res *Result) error {
	var tabular []int
	for _, i := range idx {
		if items[i].doc.Tabular() {
			tabular = append(tabular, i)
			continue
		}
		found, strategy := p.query(input(items[i].doc), res)
		res.Files[i].Strategy = strategy
		res.Files[i].Count = found
	}

	switch len(tabular) {
	case 0:
		return nil
	case 1:
		i := tabular[0]
		found, strategy := p.query(input(items[i].doc), res)
		res.Files[i].Strategy = strategy
		res.Files[i].Count = found
		return nil
	}

	in, report, err := p.mergeTabular(ctx, files, items, tabular)
	if err != nil {
		return err
	}
	report.Count, report.Strategy = p.query(in, res)
	res.Merge = report
	for _, i := range tabular {
		res.Files[i].Strategy = StrategyMerged
	}
	return nil
}

// query extracts in for the overall set, then reruns the strategy that
// produced it with each active region's filter. Reusing that one strategy
// keeps every region set a subset of the overall one. It returns the
// overall count and the strategy name.
func (p *pipeline) query(in extract.Input, res *Result) (int, string) {
	found, strategy := p.extractor.RunChain(p.chain, in, nil)
	res.All.Union(found)
	if len(found) == 0 {
		return 0, strategy.Name
	}

	for _, r := range p.active {
		pred := p.predicates[r.Tag]
		if pred == nil {
			continue
		}
		res.ByRegion[r.Tag].Union(strategy.Run(p.extractor, in, pred))
	}
	return len(found), strategy.Name
}

// mergeTabular merges the loaded tables through a file in the work
// directory and reads the merged file back. If the merged file cannot be
// written the tables are merged in memory instead.
func (p *pipeline) mergeTabular(ctx context.Context, files []string, items []loaded, idx []int) (extract.Input, *MergeReport, error) {
	tables := make(map[string]*table.RawTable, len(idx))
	paths := make([]string, 0, len(idx))
	for _, i := range idx {
		paths = append(paths, files[i])
		tables[files[i]] = items[i].doc.Table
	}

	m := &merge.Merger{
		Logger: p.logger,
		Load: func(path string) (*table.RawTable, error) {
			if t, ok := tables[path]; ok {
				return t, nil
			}
			return nil, fmt.Errorf("%s was not loaded", path)
		},
	}

	dir := p.workDir
	if dir == "" {
		tmp, err := os.MkdirTemp("", "ipsift-merge-*")
		if err == nil {
			defer os.RemoveAll(tmp)
			dir = tmp
		}
	}

	out, err := m.Merge(ctx, paths, dir)
	if err == nil && out.Path != "" {
		var data []byte
		if data, err = os.ReadFile(out.Path); err == nil {
			// Re-parse with the delimiter the merged file was written with.
			text := table.Decode(data)
			t := table.Parse(text, tables[out.Merged[0]].Delimiter)
			report := &MergeReport{Mode: out.Mode, Files: out.Merged, Rows: out.Rows}
			for path := range out.Skipped {
				report.Skipped = append(report.Skipped, path)
			}
			sort.Strings(report.Skipped)
			return extract.Input{Table: t, Text: text}, report, nil
		}
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return extract.Input{}, nil, ctxErr
	}
	if err != nil {
		p.logger.Warn("merged file unavailable, merging in memory", "dir", dir, "error", err)
	}

	sources := make([]merge.Source, 0, len(idx))
	for _, path := range paths {
		sources = append(sources, merge.Source{Path: path, Table: tables[path]})
	}
	t, mode := merge.Tables(sources)
	return extract.Input{Table: t, Text: renderText(t)},
		&MergeReport{Mode: mode, Files: paths, Rows: len(t.Rows)}, nil
}

func input(doc *preprocessors.Document) extract.Input {
	return extract.Input{Table: doc.Table, Text: doc.Text}
}

// renderText rebuilds line text from a table for the line scanner.
func renderText(t *table.RawTable) string {
	var b []byte
	sep := string(t.Delimiter)
	for _, row := range t.Rows {
		for j, cell := range row {
			if j > 0 {
				b = append(b, sep...)
			}
			b = append(b, cell...)
		}
		b = append(b, '\n')
	}
	return string(b)
}
