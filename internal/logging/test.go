// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package logging

import (
	"io"
	"log/slog"
	"strings"
	"testing"
)

// TestLogWriter writes each line to the test log.
type TestLogWriter struct {
	Test testing.TB
}

var _ io.Writer = (*TestLogWriter)(nil)

func (l *TestLogWriter) Write(b []byte) (int, error) {
	s := string(b)
	if strings.HasSuffix(s, "\n") {
		s = s[:len(s)-1]
	}
	l.Test.Log(s)
	return len(b), nil
}

// TestLogger returns a logger that writes plain text at debug level to the
// test log.
func TestLogger(t testing.TB) *slog.Logger {
	h, err := NewHandler("plain", []Rule{{Level: slog.LevelDebug}}, &TestLogWriter{Test: t})
	if err != nil {
		t.Fatal(err)
	}
	return slog.New(h)
}
