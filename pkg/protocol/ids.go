// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package protocol

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gitlab.com/hashledger/querynode/pkg/errors"
)

// EntityID identifies a ledger entity as shard.realm.num.
type EntityID struct {
	Shard int64 `cbor:"1,keyasint,omitempty"`
	Realm int64 `cbor:"2,keyasint,omitempty"`
	Num   int64 `cbor:"3,keyasint,omitempty"`
}

type (
	AccountID  = EntityID
	FileID     = EntityID
	ContractID = EntityID
	TopicID    = EntityID
	TokenID    = EntityID
	ScheduleID = EntityID
)

// AccountNum returns the account 0.0.num.
func AccountNum(num int64) AccountID { return EntityID{Num: num} }

// IsValid returns true if the ID is well-formed. It says nothing about
// whether the entity exists.
func (id EntityID) IsValid() bool {
	return id.Shard >= 0 && id.Realm >= 0 && id.Num > 0
}

// IsZero returns true if the ID is unset.
func (id EntityID) IsZero() bool { return id == EntityID{} }

func (id EntityID) String() string {
	return fmt.Sprintf("%d.%d.%d", id.Shard, id.Realm, id.Num)
}

// MarshalText implements [encoding.TextMarshaler].
func (id EntityID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

// UnmarshalText implements [encoding.TextUnmarshaler].
func (id *EntityID) UnmarshalText(b []byte) error {
	v, err := ParseEntityID(string(b))
	if err != nil {
		return err
	}
	*id = v
	return nil
}

// ParseEntityID parses shard.realm.num. A bare number is read as 0.0.num.
func ParseEntityID(s string) (EntityID, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	switch len(parts) {
	case 1:
		parts = []string{"0", "0", parts[0]}
	case 3:
	default:
		return EntityID{}, errors.InvalidAccountID.WithFormat("invalid entity ID %q", s)
	}

	var v [3]int64
	for i, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil || n < 0 {
			return EntityID{}, errors.InvalidAccountID.WithFormat("invalid entity ID %q", s)
		}
		v[i] = n
	}
	return EntityID{Shard: v[0], Realm: v[1], Num: v[2]}, nil
}

// NftID identifies a single serial of a non-fungible token.
type NftID struct {
	TokenID TokenID `cbor:"1,keyasint"`
	Serial  int64   `cbor:"2,keyasint"`
}

func (id NftID) IsValid() bool { return id.TokenID.IsValid() && id.Serial > 0 }

func (id NftID) String() string { return fmt.Sprintf("%v/%d", id.TokenID, id.Serial) }

// Timestamp is a point in consensus time.
type Timestamp struct {
	Seconds int64 `cbor:"1,keyasint,omitempty"`
	Nanos   int32 `cbor:"2,keyasint,omitempty"`
}

// TimestampOf converts a [time.Time].
func TimestampOf(t time.Time) Timestamp {
	return Timestamp{Seconds: t.Unix(), Nanos: int32(t.Nanosecond())}
}

func (t Timestamp) Time() time.Time { return time.Unix(t.Seconds, int64(t.Nanos)).UTC() }

func (t Timestamp) IsZero() bool { return t.Seconds == 0 && t.Nanos == 0 }

func (t Timestamp) String() string { return fmt.Sprintf("%d.%09d", t.Seconds, t.Nanos) }

// TransactionID identifies a transaction by its payer and the start of its
// validity window.
type TransactionID struct {
	AccountID  AccountID `cbor:"1,keyasint"`
	ValidStart Timestamp `cbor:"2,keyasint"`
	Scheduled  bool      `cbor:"3,keyasint,omitempty"`
	Nonce      int32     `cbor:"4,keyasint,omitempty"`
}

func (id TransactionID) IsValid() bool {
	return id.AccountID.IsValid() && !id.ValidStart.IsZero() && id.Nonce >= 0
}

func (id TransactionID) String() string {
	s := fmt.Sprintf("%v@%v", id.AccountID, id.ValidStart)
	if id.Scheduled {
		s += "?scheduled"
	}
	if id.Nonce != 0 {
		s += fmt.Sprintf("/%d", id.Nonce)
	}
	return s
}

// ParseTransactionID parses the format produced by [TransactionID.String],
// payer@seconds.nanos with an optional ?scheduled and /nonce suffix.
func ParseTransactionID(s string) (TransactionID, error) {
	var id TransactionID
	payer, rest, ok := strings.Cut(strings.TrimSpace(s), "@")
	if !ok {
		return id, errors.InvalidTransactionID.WithFormat("invalid transaction ID %q", s)
	}
	var err error
	id.AccountID, err = ParseEntityID(payer)
	if err != nil {
		return id, errors.InvalidTransactionID.WithFormat("invalid transaction ID %q: %w", s, err)
	}

	rest, nonce, ok := strings.Cut(rest, "/")
	if ok {
		n, err := strconv.ParseInt(nonce, 10, 32)
		if err != nil || n < 0 {
			return id, errors.InvalidTransactionID.WithFormat("invalid transaction ID %q: bad nonce", s)
		}
		id.Nonce = int32(n)
	}
	s, id.Scheduled = strings.CutSuffix(rest, "?scheduled")

	secs, nanos, _ := strings.Cut(s, ".")
	id.ValidStart.Seconds, err = strconv.ParseInt(secs, 10, 64)
	if err != nil {
		return id, errors.InvalidTransactionID.WithFormat("invalid valid start %q", s)
	}
	if nanos != "" {
		n, err := strconv.ParseInt(nanos, 10, 32)
		if err != nil || n < 0 || n >= int64(time.Second) {
			return id, errors.InvalidTransactionID.WithFormat("invalid valid start %q", s)
		}
		id.ValidStart.Nanos = int32(n)
	}
	return id, nil
}
