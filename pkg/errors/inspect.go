// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package errors

import "errors"

// As calls stdlib errors.As.
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Is calls stdlib errors.Is.
func Is(err, target error) bool { return errors.Is(err, target) }

// Unwrap calls stdlib errors.Unwrap.
func Unwrap(err error) error { return errors.Unwrap(err) }

// New calls stdlib errors.New.
func New(text string) error { return errors.New(text) }

// Code returns the status code of err. A nil error is OK; an error that
// carries no status is Unknown.
func Code(err error) Status {
	if err == nil {
		return OK
	}
	var err2 *Error
	if !As(err, &err2) {
		var s Status
		if As(err, &s) {
			return s
		}
		return Unknown
	}
	for err2.Code == Unknown && err2.Cause != nil {
		err2 = err2.Cause
	}
	return err2.Code
}

// Fee returns the required fee carried by err, or zero.
func Fee(err error) uint64 {
	var err2 *Error
	if !As(err, &err2) {
		return 0
	}
	for e := err2; e != nil; e = e.Cause {
		if e.Fee != 0 {
			return e.Fee
		}
	}
	return 0
}
