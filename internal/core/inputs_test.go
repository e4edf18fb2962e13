// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandInputs(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.csv", "x")
	b := writeFile(t, dir, "b.csv", "x")
	writeFile(t, dir, ".hidden.csv", "x")
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	c := writeFile(t, sub, "c.tsv", "x")

	got, err := ExpandInputs([]string{b, dir, filepath.Join(sub, "*.tsv"), "", a})
	require.NoError(t, err)
	assert.Equal(t, []string{b, a, c}, got)
}

func TestExpandInputs_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := ExpandInputs([]string{filepath.Join(dir, "missing.csv")})
	assert.Error(t, err)

	_, err = ExpandInputs([]string{filepath.Join(dir, "*.nothing")})
	assert.Error(t, err)

	_, err = ExpandInputs([]string{filepath.Join(dir, "[")})
	assert.Error(t, err)
}
