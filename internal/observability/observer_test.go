// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_JSON(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger := Setup(&buf, "debug", "json")
	logger.Debug("hello", "run_id", "abc")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, "abc", rec["run_id"])
	assert.Same(t, logger, slog.Default())
}

func TestSetup_TextFiltersLevel(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger := Setup(&buf, "warn", "")
	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, ValidateLevel(""))
	assert.NoError(t, ValidateLevel("Info"))
	assert.Error(t, ValidateLevel("loud"))
	assert.NoError(t, ValidateFormat("JSON"))
	assert.Error(t, ValidateFormat("xml"))
}

func TestStartTiming(t *testing.T) {
	var buf bytes.Buffer
	obs := NewStandardObserver(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	done := obs.StartTiming("extract", "structured", "nodes.csv")
	done(true, map[string]any{"count": 3})

	out := buf.String()
	assert.Contains(t, out, "component=extract")
	assert.Contains(t, out, "operation=structured")
	assert.Contains(t, out, "path=nodes.csv")
	assert.Contains(t, out, "success=true")
}

func TestStartTiming_FailureAtWarn(t *testing.T) {
	var buf bytes.Buffer
	obs := NewStandardObserver(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})))

	obs.StartTiming("load", "read", "a.csv")(true, nil)
	assert.Empty(t, buf.String())

	obs.StartTiming("load", "read", "b.csv")(false, nil)
	assert.True(t, strings.Contains(buf.String(), "level=WARN"))
}

func TestNilObserver(t *testing.T) {
	var obs *StandardObserver
	assert.NotPanics(t, func() {
		obs.StartTiming("x", "y", "z")(true, nil)
	})
	assert.NotNil(t, obs.Logger())
}
