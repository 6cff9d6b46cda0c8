// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

const tinybarsPerHbar = 100_000_000

// parseAmount parses a number of tinybars. Digit separators are allowed.
func parseAmount(s string) uint64 {
	v, err := strconv.ParseUint(strings.NewReplacer(",", "", "_", "").Replace(s), 10, 64)
	checkf(err, "invalid amount %q", s)
	return v
}

func formatAmount(tinybars uint64) string {
	hbars := float64(tinybars) / tinybarsPerHbar
	return fmt.Sprintf("%s tinybars (%s hbar)", humanize.Comma(int64(tinybars)), humanize.CommafWithDigits(hbars, 8))
}

func printJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	check(err)
	fmt.Fprintln(os.Stdout, string(b))
}
