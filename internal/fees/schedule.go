// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package fees

import (
	_ "embed"
	"fmt"
	"io"
	"os"

	"gitlab.com/hashledger/querynode/pkg/protocol"
	"gopkg.in/yaml.v3"
)

//go:embed schedule.yml
var defaultSchedule []byte

// Price is the price in tinycents of one fee component.
type Price struct {
	Base         uint64 `yaml:"base"`
	PerByte      uint64 `yaml:"per-byte,omitempty"`
	PerSignature uint64 `yaml:"per-signature,omitempty"`
	PerTransfer  uint64 `yaml:"per-transfer,omitempty"`
	PerResult    uint64 `yaml:"per-result,omitempty"`
}

// FeeData prices a functionality.
type FeeData struct {
	Node    Price `yaml:"node"`
	Network Price `yaml:"network"`
	Service Price `yaml:"service"`
}

// Schedule is a fee schedule.
type Schedule struct {
	Functionalities map[string]FeeData `yaml:"functionalities"`

	byFunctionality map[protocol.Functionality]FeeData
}

// Usage is what an operation consumes.
type Usage struct {
	Bytes      uint64
	Signatures uint64
	Transfers  uint64
	Results    uint64
}

// DefaultSchedule returns the built-in schedule.
func DefaultSchedule() *Schedule {
	s, err := parseSchedule(defaultSchedule)
	if err != nil {
		panic(fmt.Errorf("built-in fee schedule: %w", err))
	}
	return s
}

// LoadSchedule reads a schedule from a file.
func LoadSchedule(path string) (*Schedule, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseSchedule(b)
}

// ReadSchedule reads a schedule.
func ReadSchedule(r io.Reader) (*Schedule, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return parseSchedule(b)
}

func parseSchedule(b []byte) (*Schedule, error) {
	s := new(Schedule)
	err := yaml.Unmarshal(b, s)
	if err != nil {
		return nil, fmt.Errorf("decode fee schedule: %w", err)
	}

	s.byFunctionality = make(map[protocol.Functionality]FeeData, len(s.Functionalities))
	for name, data := range s.Functionalities {
		fn, ok := protocol.FunctionalityByName(name)
		if !ok || !fn.IsValid() {
			return nil, fmt.Errorf("fee schedule: unknown functionality %q", name)
		}
		s.byFunctionality[fn] = data
	}
	return s, nil
}

// For returns the fee data of a functionality. Functionalities not in the
// schedule are free.
func (s *Schedule) For(fn protocol.Functionality) (FeeData, bool) {
	d, ok := s.byFunctionality[fn]
	return d, ok
}

func (p Price) tinycents(u Usage) uint64 {
	return p.Base +
		p.PerByte*u.Bytes +
		p.PerSignature*u.Signatures +
		p.PerTransfer*u.Transfers +
		p.PerResult*u.Results
}
