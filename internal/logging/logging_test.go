// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRules(t *testing.T) {
	rules, err := ParseRules("error;query=debug;*=warn")
	require.NoError(t, err)
	require.Equal(t, []Rule{
		{Level: slog.LevelError},
		{Module: "query", Level: slog.LevelDebug},
		{Level: slog.LevelWarn},
	}, rules)
	require.Equal(t, "error;query=debug;warn", FormatRules(rules))

	_, err = ParseRules("query=loud")
	require.Error(t, err)
}

func TestModuleLevels(t *testing.T) {
	buf := new(bytes.Buffer)
	h, err := NewHandler("json", []Rule{{Level: slog.LevelError}, {Module: "query", Level: slog.LevelDebug}}, buf)
	require.NoError(t, err)
	logger := slog.New(h)

	logger.Info("dropped")
	logger.Info("kept", "module", "query")
	logger.With("module", "Query").Debug("kept too")
	logger.With("module", "throttle").Info("dropped")
	logger.Error("kept")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	for _, l := range lines {
		var v map[string]any
		require.NoError(t, json.Unmarshal([]byte(l), &v))
		require.Contains(t, v[messageKey], "kept")
	}
}

func TestContextAttrs(t *testing.T) {
	buf := new(bytes.Buffer)
	h, err := NewHandler("json", []Rule{{Level: slog.LevelInfo}}, buf)
	require.NoError(t, err)
	logger := slog.New(h)

	ctx := With(context.Background(), "request", "abc")
	logger.InfoContext(ctx, "Hello world")

	var v map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &v))
	require.Equal(t, "Hello world", v[messageKey])
	require.Equal(t, "abc", v["request"])

	// Attributes must not leak between derived contexts
	a := With(ctx, "x", 1)
	b := With(ctx, "y", 2)
	require.Len(t, Attrs(a), 2)
	require.Equal(t, "y", Attrs(b)[1].Key)
}

func TestPlainFormat(t *testing.T) {
	buf := new(bytes.Buffer)
	h, err := NewHandler("plain", []Rule{{Level: slog.LevelInfo}}, buf)
	require.NoError(t, err)
	slog.New(h).Info("Hello world", "foo", "bar")
	require.Contains(t, buf.String(), "INFO Hello world foo=bar")
}

func TestUnsupportedFormat(t *testing.T) {
	_, err := NewHandler("xml", nil, new(bytes.Buffer))
	require.Error(t, err)
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node.log")
	logger, closer, err := New(Options{Format: "json", Output: path, Rules: []Rule{{Level: slog.LevelInfo}}})
	require.NoError(t, err)
	logger.Info("to file")
	require.NoError(t, closer.Close())
	require.FileExists(t, path)
}
