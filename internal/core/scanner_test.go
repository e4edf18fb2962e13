// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ipsift/internal/classify"
	"ipsift/internal/extract"
	"ipsift/internal/headers"
	"ipsift/internal/merge"
	"ipsift/internal/observability"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func quietOptions() Options {
	opts := DefaultOptions()
	opts.Logger = observability.Discard()
	return opts
}

func TestExtract_SingleFile(t *testing.T) {
	dir := t.TempDir()
	f := writeFile(t, dir, "nodes.csv", "IP,Port\n1.2.3.4,443\n5.6.7.8,80\n999.1.1.1,443")

	res, err := Extract(context.Background(), []string{f}, quietOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"1.2.3.4"}, res.All.Strings())
	require.Len(t, res.Files, 1)
	assert.Equal(t, BucketOther, res.Files[0].Bucket)
	assert.Equal(t, extract.StrategyStructured, res.Files[0].Strategy)
	assert.Equal(t, 1, res.Files[0].Count)
	assert.Nil(t, res.Merge)
}

func TestExtract_RegionColumnScenario(t *testing.T) {
	dir := t.TempDir()
	f := writeFile(t, dir, "export.csv", "ip,port,colo\n1.1.1.1,443,HKG\n2.2.2.2,443,FRA\n3.3.3.3,80,HKG\n")

	res, err := Extract(context.Background(), []string{f}, quietOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"1.1.1.1", "2.2.2.2"}, res.All.Strings())
	assert.Equal(t, []string{"1.1.1.1"}, res.ByRegion["HK"].Strings())
	assert.Empty(t, res.ByRegion["SG"])
	assert.Equal(t, []classify.RegionTag{"HK", "SG"}, res.Regions())
}

func TestExtract_PreferredFilesSkipContentCheck(t *testing.T) {
	dir := t.TempDir()
	hk := writeFile(t, dir, "HK_nodes.csv", "ip,port,colo\n1.1.1.1,443,SIN\n")
	sg := writeFile(t, dir, "sg-nodes.csv", "ip,port\n2.2.2.2,443\n")

	res, err := Extract(context.Background(), []string{hk, sg}, quietOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"1.1.1.1"}, res.ByRegion["HK"].Strings())
	assert.Equal(t, []string{"2.2.2.2"}, res.ByRegion["SG"].Strings())
	assert.Equal(t, []string{"1.1.1.1", "2.2.2.2"}, res.All.Strings())
	assert.Equal(t, "HK", res.Files[0].Bucket)
	assert.Equal(t, "SG", res.Files[1].Bucket)
}

func TestExtract_MergesOtherFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.csv", "ip,port,region\n1.1.1.1,443,Hong Kong\n")
	b := writeFile(t, dir, "b.csv", "ip,port,region\n2.2.2.2,443,Singapore\n3.3.3.3,22,Singapore\n")
	work := t.TempDir()

	opts := quietOptions()
	opts.WorkDir = work
	res, err := Extract(context.Background(), []string{a, b}, opts)
	require.NoError(t, err)

	require.NotNil(t, res.Merge)
	assert.Equal(t, merge.ModeIdentical, res.Merge.Mode)
	assert.Equal(t, 4, res.Merge.Rows)
	assert.Equal(t, 2, res.Merge.Count)
	assert.Equal(t, StrategyMerged, res.Files[0].Strategy)

	assert.Equal(t, []string{"1.1.1.1", "2.2.2.2"}, res.All.Strings())
	assert.Equal(t, []string{"1.1.1.1"}, res.ByRegion["HK"].Strings())
	assert.Equal(t, []string{"2.2.2.2"}, res.ByRegion["SG"].Strings())

	entries, err := os.ReadDir(work)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestExtract_NaiveMergeStillFindsRows(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.csv", "ip,port\n1.1.1.1,443\n")
	b := writeFile(t, dir, "b.csv", "host,ip,port\nx,2.2.2.2,443\n")

	res, err := Extract(context.Background(), []string{a, b}, quietOptions())
	require.NoError(t, err)

	assert.Equal(t, merge.ModeNaive, res.Merge.Mode)
	// roles come from the first row, so the second file's rows are
	// misread and only the line scanner would catch them
	assert.Contains(t, res.All.Strings(), "1.1.1.1")
}

func TestExtract_FallbackBackstop(t *testing.T) {
	dir := t.TempDir()
	f := writeFile(t, dir, "dump.txt", "proxy list\n8.8.8.8:443 ok\n9.9.9.9:8443 ok\n")

	res, err := Extract(context.Background(), []string{f}, quietOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"8.8.8.8"}, res.All.Strings())
	assert.Equal(t, extract.StrategyFallback, res.Files[0].Strategy)

	opts := quietOptions()
	opts.DisableFallback = true
	res, err = Extract(context.Background(), []string{f}, opts)
	require.NoError(t, err)
	assert.Empty(t, res.All)
	assert.Equal(t, extract.StrategyNone, res.Files[0].Strategy)
}

func TestExtract_UnreadableFileReported(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.csv", "ip,port\n1.1.1.1,443\n")
	missing := filepath.Join(dir, "missing.csv")

	res, err := Extract(context.Background(), []string{missing, good}, quietOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"1.1.1.1"}, res.All.Strings())
	failed := res.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, missing, failed[0].Path)
	assert.Error(t, failed[0].Err)
}

func TestExtract_RegionFilter(t *testing.T) {
	dir := t.TempDir()
	hk := writeFile(t, dir, "hk_list.csv", "ip,port,colo\n1.1.1.1,443,SIN\n")

	opts := quietOptions()
	opts.RegionFilter = ParseRegionFilter([]string{"sg"})
	res, err := Extract(context.Background(), []string{hk}, opts)
	require.NoError(t, err)

	// the HK file name is ignored when HK is filtered out, so its rows are
	// tagged by content
	assert.Equal(t, []classify.RegionTag{"SG"}, res.Regions())
	assert.Equal(t, []string{"1.1.1.1"}, res.ByRegion["SG"].Strings())
	assert.Equal(t, BucketOther, res.Files[0].Bucket)
}

func TestExtract_RegionSetsWithinAll(t *testing.T) {
	tests := []struct {
		name         string
		file         string
		content      string
		filter       []string
		wantAll      []string
		wantRegions  map[classify.RegionTag][]string
		wantStrategy string
		wantBucket   string
	}{
		{
			name:    "structured match keeps line scan out of regions",
			file:    "export.csv",
			content: "ip,port,colo\n1.1.1.1,443,SIN\n2.2.2.2,80,HKG note 443\n",
			wantAll: []string{"1.1.1.1"},
			wantRegions: map[classify.RegionTag][]string{
				"HK": nil,
				"SG": {"1.1.1.1"},
			},
			wantStrategy: extract.StrategyStructured,
			wantBucket:   BucketOther,
		},
		{
			name:    "line scan used for every set when structured finds nothing",
			file:    "dump.txt",
			content: "proxy list\n8.8.8.8:443 HKG\n9.9.9.9:443 SIN\n7.7.7.7:80 HKG\n",
			wantAll: []string{"8.8.8.8", "9.9.9.9"},
			wantRegions: map[classify.RegionTag][]string{
				"HK": {"8.8.8.8"},
				"SG": {"9.9.9.9"},
			},
			wantStrategy: extract.StrategyFallback,
			wantBucket:   BucketOther,
		},
		{
			name:    "active filename region takes every row",
			file:    "hk_list.csv",
			content: "ip,port,colo\n1.1.1.1,443,SIN\n",
			filter:  []string{"hk"},
			wantAll: []string{"1.1.1.1"},
			wantRegions: map[classify.RegionTag][]string{
				"HK": {"1.1.1.1"},
			},
			wantStrategy: extract.StrategyStructured,
			wantBucket:   "HK",
		},
		{
			name:    "inactive filename region falls back to content",
			file:    "hk_list.csv",
			content: "ip,port,colo\n1.1.1.1,443,SIN\n3.3.3.3,443,FRA\n",
			filter:  []string{"sg"},
			wantAll: []string{"1.1.1.1", "3.3.3.3"},
			wantRegions: map[classify.RegionTag][]string{
				"SG": {"1.1.1.1"},
			},
			wantStrategy: extract.StrategyStructured,
			wantBucket:   BucketOther,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := writeFile(t, t.TempDir(), tt.file, tt.content)

			opts := quietOptions()
			opts.RegionFilter = ParseRegionFilter(tt.filter)
			res, err := Extract(context.Background(), []string{f}, opts)
			require.NoError(t, err)

			assert.Equal(t, tt.wantAll, res.All.Strings())
			require.Len(t, res.ByRegion, len(tt.wantRegions))
			for tag, want := range tt.wantRegions {
				set, ok := res.ByRegion[tag]
				require.True(t, ok, string(tag))
				if want == nil {
					assert.Empty(t, set, string(tag))
				} else {
					assert.Equal(t, want, set.Strings(), string(tag))
				}
			}
			for tag, set := range res.ByRegion {
				for a := range set {
					assert.True(t, res.All.Contains(a), "%s has %s outside the overall set", tag, a)
				}
			}

			require.Len(t, res.Files, 1)
			assert.Equal(t, tt.wantStrategy, res.Files[0].Strategy)
			assert.Equal(t, tt.wantBucket, res.Files[0].Bucket)
		})
	}
}

func TestExtract_HeaderSynonymsAndExcludes(t *testing.T) {
	dir := t.TempDir()
	f := writeFile(t, dir, "svc.csv", "svc,node\n443,10.0.0.1\n443,1.1.1.1\n")

	opts := quietOptions()
	opts.HeaderSynonyms = map[headers.Role][]string{headers.RolePort: {"svc"}, headers.RoleAddress: {"node"}}
	opts.ExcludeRanges = []string{"private"}
	res, err := Extract(context.Background(), []string{f}, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"1.1.1.1"}, res.All.Strings())
}

func TestExtract_InvalidOptions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"bad port", func(o *Options) { o.TargetPort = "70000" }},
		{"bad pattern", func(o *Options) { o.Regions = []classify.Region{{Tag: "HK", FilePatterns: []string{"("}}} }},
		{"unknown region", func(o *Options) { o.RegionFilter = []classify.RegionTag{"US"} }},
		{"bad range", func(o *Options) { o.ExcludeRanges = []string{"10.0.0.0/40"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := quietOptions()
			tt.mutate(&opts)
			_, err := Extract(context.Background(), nil, opts)
			assert.Error(t, err)
		})
	}
}

func TestExtract_WorkerCountDoesNotChangeOutput(t *testing.T) {
	dir := t.TempDir()
	var files []string
	files = append(files, writeFile(t, dir, "hk_a.csv", "ip,port\n1.0.0.1,443\n1.0.0.2,80\n"))
	files = append(files, writeFile(t, dir, "sg_b.csv", "ip;port\n2.0.0.1;443\n"))
	files = append(files, writeFile(t, dir, "c.csv", "ip,port,zone\n3.0.0.1,443,HKG\n3.0.0.2,443,SIN\n"))
	files = append(files, writeFile(t, dir, "d.csv", "ip,port,zone\n4.0.0.1,443,SG\n"))
	files = append(files, writeFile(t, dir, "e.log", "4.4.4.4:443 HKG\n"))

	run := func(workers int) *Result {
		opts := quietOptions()
		opts.Workers = workers
		res, err := Extract(context.Background(), files, opts)
		require.NoError(t, err)
		return res
	}

	base := run(1)
	for _, w := range []int{2, 8} {
		got := run(w)
		assert.Equal(t, base.All.Strings(), got.All.Strings())
		for _, tag := range base.Regions() {
			assert.Equal(t, base.ByRegion[tag].Strings(), got.ByRegion[tag].Strings(), string(tag))
		}
	}
	// e.log joins the naive merge and the structured rows win, so its
	// line is never scanned
	assert.Equal(t, []string{"1.0.0.1", "3.0.0.1"}, base.ByRegion["HK"].Strings())
	assert.Equal(t, []string{"2.0.0.1", "3.0.0.2", "4.0.0.1"}, base.ByRegion["SG"].Strings())
}

func TestExtract_Cancelled(t *testing.T) {
	dir := t.TempDir()
	f := writeFile(t, dir, "a.csv", "ip,port\n1.1.1.1,443\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Extract(ctx, []string{f}, quietOptions())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseRegionFilter(t *testing.T) {
	assert.Nil(t, ParseRegionFilter(nil))
	assert.Nil(t, ParseRegionFilter([]string{"all"}))
	assert.Equal(t, []classify.RegionTag{"HK", "SG"}, ParseRegionFilter([]string{" hk ", "sg,HK", ""}))
}
