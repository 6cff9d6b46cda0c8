// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

var trackLocation bool

// EnableLocationTracking makes every new or wrapped error record its call
// site. It should be called before any goroutines are started.
func EnableLocationTracking() { trackLocation = true }

// Error implements error.
func (s Status) Error() string { return s.String() }

// With returns a new error with the status code and a message built with
// fmt.Sprint.
func (s Status) With(v ...interface{}) *Error {
	e := s.new()
	e.Message = fmt.Sprint(v...)
	return e
}

// WithFormat returns a new error with the status code and a formatted
// message. If the format wraps an error with %w, that error becomes the
// cause.
func (s Status) WithFormat(format string, args ...interface{}) *Error {
	err := fmt.Errorf(format, args...)

	e := s.new()
	e.Message = err.Error()
	if u, ok := err.(interface{ Unwrap() error }); ok {
		e.setCause(convert(u.Unwrap()))
	}
	return e
}

// WithCauseAndFormat returns a new error with the status code, a formatted
// message, and the given cause.
func (s Status) WithCauseAndFormat(cause error, format string, args ...interface{}) *Error {
	e := s.new()
	e.Message = fmt.Sprintf(format, args...)
	e.setCause(convert(cause))
	return e
}

// Wrap wraps err. If err is nil, Wrap returns nil. If the status is Unknown
// the cause's status is inherited.
func (s Status) Wrap(err error) error {
	if err == nil {
		// The return type must be `error` - otherwise this returns statement
		// can cause strange errors
		return nil
	}

	// If err is an Error and we're not going to add anything, return it
	if !trackLocation && !s.IsKnownError() {
		if _, ok := err.(*Error); ok {
			return err
		}
	}

	e := s.new()
	e.setCause(convert(err))
	return e
}

// InsufficientBalance returns an error with the given code that carries the
// fee that would have been required.
func InsufficientBalance(code Status, fee uint64, format string, args ...interface{}) *Error {
	e := code.new()
	e.Message = fmt.Sprintf(format, args...)
	e.Fee = fee
	return e
}

func (s Status) new() *Error {
	e := new(Error)
	e.Code = s
	e.recordCallSite(3)
	return e
}

func convert(err error) *Error {
	if x := (*Error)(nil); errors.As(err, &x) {
		return x
	}
	var msg string
	if err == nil {
		msg = "(nil)"
	} else {
		msg = err.Error()
	}
	if x := Status(0); errors.As(err, &x) {
		return &Error{Code: x, Message: msg}
	}

	e := &Error{
		Code:    Unknown,
		Message: msg,
	}

	if u, ok := err.(interface{ Unwrap() error }); ok {
		if err := u.Unwrap(); err != nil {
			e.setCause(convert(err))
		}
	}

	return e
}

func (e *Error) setCause(f *Error) {
	e.Cause = f
	if f == nil {
		return
	}

	if f.Fee != 0 && e.Fee == 0 {
		e.Fee = f.Fee
	}

	if e.Code.IsKnownError() {
		return
	}

	if e.Message != "" {
		// Copy the code
		e.Code = f.Code
		return
	}

	// Inherit everything
	cs := e.CallStack
	*e = *f
	e.CallStack = append(cs, f.CallStack...)
}

func (e *Error) recordCallSite(depth int) {
	if !trackLocation {
		return
	}

	pc, file, line, ok := runtime.Caller(depth)
	if !ok {
		return
	}

	cs := &CallSite{File: file, Line: int64(line)}
	fn := runtime.FuncForPC(pc)
	if fn != nil {
		cs.FuncName = fn.Name()
	}

	e.CallStack = append(e.CallStack, cs)
}

// WithFee sets the fee that would have been required and returns the error.
func (e *Error) WithFee(fee uint64) *Error {
	e.Fee = fee
	return e
}

func (e *Error) Error() string {
	if e.Message == "" && e.Cause != nil {
		return e.Cause.Error()
	}
	if e.Message == "" {
		return e.Code.String()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	return e.Code
}

func (e *Error) Format(f fmt.State, verb rune) {
	if f.Flag('+') {
		_, _ = f.Write([]byte(e.Print()))
	} else {
		_, _ = f.Write([]byte(e.Error()))
	}
}

// Print prints an error message plus its call stack and causal chain.
func (e *Error) Print() string {
	// If the error has no call stack just return the message
	if e.CallStack == nil {
		return e.Error()
	}

	var str []string
	for e != nil {
		msg := e.Message
		if msg == "" {
			msg = e.Code.String()
		} else if e.Cause != nil {
			msg = strings.TrimSuffix(msg, e.Cause.Message)
		}

		str = append(str, msg+"\n"+e.printCallstack())
		e = e.Cause
	}
	return strings.Join(str, "\n")
}

func (e *Error) printCallstack() string {
	var str string
	for _, cs := range e.CallStack {
		str += fmt.Sprintf("%s\n    %s:%d\n", cs.FuncName, cs.File, cs.Line)
	}
	return str
}

func (e *Error) Is(target error) bool {
	switch f := target.(type) {
	case *Error:
		if e.Code == f.Code {
			return true
		}
	case Status:
		if e.Code == f {
			return true
		}
	}
	if e.Cause != nil {
		return e.Cause.Is(target)
	}
	return false
}
