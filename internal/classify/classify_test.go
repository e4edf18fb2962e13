// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_DefaultRegions(t *testing.T) {
	c, err := NewClassifier(DefaultRegions())
	require.NoError(t, err)

	b := c.Classify([]string{
		"/data/HK_nodes.csv",
		"/data/sg-edge.csv",
		"/data/all.csv",
		"/data/hk nodes 2.csv",
		"/data/hkg.csv",
		"/hk_dir/list.csv",
		"/data/sg_more.tsv",
	})

	assert.Equal(t, []string{"/data/HK_nodes.csv", "/data/hk nodes 2.csv"}, b.Preferred["HK"])
	assert.Equal(t, []string{"/data/sg-edge.csv", "/data/sg_more.tsv"}, b.Preferred["SG"])
	assert.Equal(t, []string{"/data/all.csv", "/data/hkg.csv", "/hk_dir/list.csv"}, b.Other)
	assert.Equal(t, 7, b.Len())
}

func TestClassify_FirstRegionWins(t *testing.T) {
	c, err := NewClassifier([]Region{
		{Tag: "a", FilePatterns: []string{`edge`}},
		{Tag: "b", FilePatterns: []string{`edge`, `core`}},
	})
	require.NoError(t, err)

	assert.Equal(t, RegionTag("A"), c.Tag("edge.csv"))
	assert.Equal(t, RegionTag("B"), c.Tag("core.csv"))
	assert.Equal(t, NoRegion, c.Tag("other.csv"))
}

func TestClassify_Empty(t *testing.T) {
	c, err := NewClassifier(nil)
	require.NoError(t, err)

	b := c.Classify([]string{"hk_a.csv"})
	assert.Empty(t, b.Preferred)
	assert.Equal(t, []string{"hk_a.csv"}, b.Other)
}

func TestNewClassifier_Errors(t *testing.T) {
	tests := []struct {
		name    string
		regions []Region
	}{
		{"empty tag", []Region{{Tag: " "}}},
		{"duplicate tag", []Region{{Tag: "hk"}, {Tag: "HK"}}},
		{"bad pattern", []Region{{Tag: "HK", FilePatterns: []string{"("}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClassifier(tt.regions)
			assert.Error(t, err)
		})
	}
}

func TestRegionLookup(t *testing.T) {
	c, err := NewClassifier(DefaultRegions())
	require.NoError(t, err)

	r, ok := c.Region("SG")
	require.True(t, ok)
	assert.Contains(t, r.Tokens, "SINGAPORE")

	_, ok = c.Region("US")
	assert.False(t, ok)
	assert.Len(t, c.Regions(), 2)
}
