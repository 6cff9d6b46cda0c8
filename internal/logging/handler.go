// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/hashledger/querynode/pkg/errors"
	"gopkg.in/natefinch/lumberjack.v2"
)

const messageKey = "message"

// Options configures [New].
type Options struct {
	// Format is text (or plain) or json.
	Format string

	Rules []Rule

	// Output is stderr, stdout, or the path of a log file. Log files are
	// rotated.
	Output string

	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// New creates a logger. The returned closer closes the log file, if there
// is one.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	var w io.Writer
	var closer io.Closer = nopCloser{}
	switch strings.ToLower(opts.Output) {
	case "", "stderr":
		w = os.Stderr
	case "stdout":
		w = os.Stdout
	default:
		f := &lumberjack.Logger{
			Filename:   opts.Output,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   opts.Compress,
		}
		w, closer = f, f
	}

	h, err := NewHandler(opts.Format, opts.Rules, w)
	if err != nil {
		_ = closer.Close()
		return nil, nil, err
	}
	return slog.New(h), closer, nil
}

// NewHandler returns a handler that filters records by module and writes
// them in the given format.
func NewHandler(format string, rules []Rule, w io.Writer) (slog.Handler, error) {
	defaultLevel := slog.LevelError
	modules := map[string]slog.Level{}
	for _, r := range rules {
		if r.Module == "" {
			defaultLevel = r.Level
		} else {
			modules[strings.ToLower(r.Module)] = r.Level
		}
	}
	lowestLevel := defaultLevel
	for _, l := range modules {
		if l < lowestLevel {
			lowestLevel = l
		}
	}

	opts := &slog.HandlerOptions{
		Level: lowestLevel,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key != slog.MessageKey || len(groups) > 0 {
				return a
			}
			if a.Value.Kind() == slog.KindString {
				return slog.Any(messageKey, a.Value)
			}
			return slog.String(messageKey, fmt.Sprint(a.Value.Any()))
		},
	}

	var h slog.Handler
	switch strings.ToLower(format) {
	case "", "text", "plain":
		// Use zerolog's console writer to write pretty logs
		h = slog.NewJSONHandler(ConsoleWriter(w, false), opts)
	case "json":
		h = slog.NewJSONHandler(w, opts)
	default:
		return nil, errors.NotSupported.WithFormat("log format %q is not supported", format)
	}

	return &logHandler{
		handler:      h,
		defaultLevel: defaultLevel,
		lowestLevel:  lowestLevel,
		modules:      modules,
	}, nil
}

// ConsoleWriter returns a zerolog console writer that renders JSON log
// lines as plain text.
func ConsoleWriter(w io.Writer, color bool) *zerolog.ConsoleWriter {
	return &zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    !color,
		TimeFormat: time.RFC3339,
		FormatLevel: func(i interface{}) string {
			if ll, ok := i.(string); ok {
				return strings.ToUpper(ll)
			}
			return "????"
		},
		FormatMessage: func(i interface{}) string {
			s, ok := i.(string)
			if ok {
				return s
			}
			return fmt.Sprint(i)
		},
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

type logHandler struct {
	handler      slog.Handler
	defaultLevel slog.Level
	lowestLevel  slog.Level
	modules      map[string]slog.Level
	module       string
}

func (h *logHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	i := *h
	i.handler = h.handler.WithAttrs(attrs)
	if m, ok := moduleOf(attrs); ok {
		i.module = m
	}
	return &i
}

func (h *logHandler) WithGroup(name string) slog.Handler {
	i := *h
	i.handler = h.handler.WithGroup(name)
	return &i
}

func (h *logHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if level < h.lowestLevel {
		return false
	}
	return h.handler.Enabled(ctx, level)
}

func (h *logHandler) Handle(ctx context.Context, record slog.Record) error {
	module := h.module
	if m, ok := moduleOf(Attrs(ctx)); ok {
		module = m
	}
	record.Attrs(func(a slog.Attr) bool {
		if a.Key == "module" {
			module = a.Value.String()
			return false
		}
		return true
	})

	if record.Level < h.levelFor(module) {
		return nil
	}

	if attrs := Attrs(ctx); len(attrs) > 0 {
		record = record.Clone()
		record.AddAttrs(attrs...)
	}
	return h.handler.Handle(ctx, record)
}

func (h *logHandler) levelFor(module string) slog.Level {
	if l, ok := h.modules[strings.ToLower(module)]; ok {
		return l
	}
	return h.defaultLevel
}

func moduleOf(attrs []slog.Attr) (string, bool) {
	for _, a := range attrs {
		if a.Key == "module" {
			return a.Value.String(), true
		}
	}
	return "", false
}
