// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package logging

import (
	"fmt"
	"log/slog"
	"strings"
)

// Rule sets the level of a module. A rule with no module sets the default.
type Rule struct {
	Module string     `toml:"module" mapstructure:"module"`
	Level  slog.Level `toml:"level" mapstructure:"level"`
}

// ParseRules parses rules of the form "info;query=debug;throttle=warn". A
// bare level or "*=level" sets the default.
func ParseRules(s string) ([]Rule, error) {
	var rules []Rule
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == ',' }) {
		part = strings.TrimSpace(part)
		module, level, ok := strings.Cut(part, "=")
		if !ok {
			module, level = "", part
		} else if module == "*" {
			module = ""
		}

		var r Rule
		r.Module = strings.ToLower(strings.TrimSpace(module))
		err := r.Level.UnmarshalText([]byte(strings.TrimSpace(level)))
		if err != nil {
			return nil, fmt.Errorf("invalid log rule %q: %w", part, err)
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// FormatRules is the inverse of [ParseRules].
func FormatRules(rules []Rule) string {
	parts := make([]string, len(rules))
	for i, r := range rules {
		level := strings.ToLower(r.Level.String())
		if r.Module == "" {
			parts[i] = level
		} else {
			parts[i] = r.Module + "=" + level
		}
	}
	return strings.Join(parts, ";")
}
