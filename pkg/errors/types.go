// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package errors

// Status is a precheck response code. The zero value is OK.
type Status uint32

// Error is an error with a precheck status code, an optional cause, and
// optionally the fee that would have been required for the rejected request.
type Error struct {
	Code      Status
	Message   string
	Cause     *Error
	CallStack []*CallSite

	// Fee is the fee the caller must offer for the request to succeed. It is
	// only set on balance and fee related failures.
	Fee uint64
}

// CallSite records where an error was created or wrapped.
type CallSite struct {
	FuncName string
	File     string
	Line     int64
}
