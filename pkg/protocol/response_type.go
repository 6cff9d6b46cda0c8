// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package protocol

import (
	"fmt"
	"strings"
)

// ResponseType is what the client wants back from a query.
type ResponseType uint8

const (
	// AnswerOnly requests the answer, paying for it.
	AnswerOnly ResponseType = iota

	// AnswerStateProof requests the answer and a state proof. Not supported.
	AnswerStateProof

	// CostAnswer requests only the cost of the answer.
	CostAnswer

	// AnswerOnlyStateProof requests only a state proof. Not supported.
	AnswerOnlyStateProof
)

var responseTypeNames = [...]string{
	AnswerOnly:           "ANSWER_ONLY",
	AnswerStateProof:     "ANSWER_STATE_PROOF",
	CostAnswer:           "COST_ANSWER",
	AnswerOnlyStateProof: "ANSWER_ONLY_STATE_PROOF",
}

// IsStateProof returns true if the response type asks for a state proof.
func (t ResponseType) IsStateProof() bool {
	return t == AnswerStateProof || t == AnswerOnlyStateProof
}

func (t ResponseType) String() string {
	if int(t) < len(responseTypeNames) {
		return responseTypeNames[t]
	}
	return fmt.Sprintf("ResponseType(%d)", uint8(t))
}

func (t ResponseType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *ResponseType) UnmarshalText(b []byte) error {
	for i, n := range responseTypeNames {
		if strings.EqualFold(n, string(b)) {
			*t = ResponseType(i)
			return nil
		}
	}
	return fmt.Errorf("invalid response type %q", b)
}
