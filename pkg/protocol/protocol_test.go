// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package protocol

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/hashledger/querynode/pkg/errors"
	"gitlab.com/hashledger/querynode/pkg/types/encoding"
)

func TestParseEntityID(t *testing.T) {
	id, err := ParseEntityID("0.0.1001")
	require.NoError(t, err)
	require.Equal(t, AccountNum(1001), id)
	require.Equal(t, "0.0.1001", id.String())

	id, err = ParseEntityID("98")
	require.NoError(t, err)
	require.Equal(t, AccountNum(98), id)

	for _, s := range []string{"", "0.0", "0.0.x", "1.2.3.4", "0.-1.2"} {
		_, err = ParseEntityID(s)
		require.Errorf(t, err, "%q", s)
		require.Equal(t, errors.InvalidAccountID, errors.Code(err))
	}

	require.False(t, EntityID{}.IsValid())
	require.True(t, AccountNum(2).IsValid())
}

func TestParseTransactionID(t *testing.T) {
	for _, id := range []TransactionID{
		{AccountID: AccountNum(1001), ValidStart: Timestamp{Seconds: 1700000000, Nanos: 5}},
		{AccountID: AccountNum(2), ValidStart: Timestamp{Seconds: 12}, Scheduled: true},
		{AccountID: EntityID{Shard: 1, Realm: 2, Num: 3}, ValidStart: Timestamp{Seconds: 9, Nanos: 999}, Nonce: 4},
	} {
		v, err := ParseTransactionID(id.String())
		require.NoError(t, err, id.String())
		require.Equal(t, id, v)
	}

	for _, s := range []string{"", "0.0.1001", "x@1.0", "0.0.1001@", "0.0.1001@1.x", "0.0.1001@1.0/-1"} {
		_, err := ParseTransactionID(s)
		require.Errorf(t, err, "%q", s)
		require.Equal(t, errors.InvalidTransactionID, errors.Code(err))
	}
}

func TestQueryKind(t *testing.T) {
	q := new(Query)
	_, err := q.Kind()
	require.ErrorIs(t, err, ErrUnrecognizedQuery)

	q.CryptoGetInfo = &AccountQuery{AccountID: AccountNum(5)}
	kind, err := q.Kind()
	require.NoError(t, err)
	require.Equal(t, QueryKindCryptoGetInfo, kind)
	require.Equal(t, FunctionalityCryptoGetInfo, kind.Functionality())

	h, err := q.Header()
	require.NoError(t, err)
	h.ResponseType = CostAnswer
	require.Equal(t, CostAnswer, q.CryptoGetInfo.Header.ResponseType)

	q.FileGetInfo = &FileQuery{}
	_, err = q.Kind()
	require.Error(t, err)
}

func TestEveryKindHasAnArm(t *testing.T) {
	for _, kind := range QueryKinds() {
		require.True(t, kind.Functionality().IsValid(), kind)
		require.NotNil(t, new(Response).slot(kind), kind)

		k, ok := QueryKindByName(kind.String())
		require.True(t, ok)
		require.Equal(t, kind, k)
	}
	require.Len(t, QueryKinds(), 25)
}

func TestQueryWireFormat(t *testing.T) {
	q := &Query{TransactionGetReceipt: &TransactionQuery{
		TransactionID: TransactionID{AccountID: AccountNum(2), ValidStart: Timestamp{Seconds: 10}},
	}}
	b, err := encoding.Marshal(q)
	require.NoError(t, err)

	var q2 Query
	require.NoError(t, encoding.Unmarshal(b, &q2))
	require.Equal(t, q, &q2)

	// A response is not a query
	b, err = encoding.Marshal(&Response{TokenGetInfo: &Answer{}, AccountDetails: &Answer{}})
	require.NoError(t, err)
	var q3 struct {
		GetByKey *KeyQuery `cbor:"1,keyasint,omitempty"`
	}
	require.Error(t, encoding.Unmarshal(b, &q3))
}

func TestResponse(t *testing.T) {
	payload, err := encoding.Marshal(&AccountBalance{AccountID: AccountNum(7), Balance: 42})
	require.NoError(t, err)

	r := NewResponse(QueryKindCryptoGetAccountBalance, &Answer{
		Header:  ResponseHeader{PrecheckCode: errors.OK},
		Payload: payload,
	})
	b, err := encoding.Marshal(r)
	require.NoError(t, err)

	var r2 Response
	require.NoError(t, encoding.Unmarshal(b, &r2))
	kind, answer, err := r2.Answer()
	require.NoError(t, err)
	require.Equal(t, QueryKindCryptoGetAccountBalance, kind)

	var bal AccountBalance
	require.NoError(t, answer.UnmarshalPayload(&bal))
	require.Equal(t, uint64(42), bal.Balance)

	_, _, err = new(Response).Answer()
	require.Error(t, err)
}

func TestTransactionBodyFunctionality(t *testing.T) {
	body := new(TransactionBody)
	require.Equal(t, FunctionalityNone, body.Functionality())
	body.CryptoTransfer = new(CryptoTransferBody)
	require.Equal(t, FunctionalityCryptoTransfer, body.Functionality())
	body.ConsensusSubmitMessage = new(ConsensusSubmitMessageBody)
	require.Equal(t, FunctionalityNone, body.Functionality())
}

func TestSignatureMapFind(t *testing.T) {
	m := SignatureMap{SigPairs: []*SignaturePair{
		{PubKeyPrefix: []byte{1}},
		{PubKeyPrefix: []byte{1, 2}},
		{PubKeyPrefix: []byte{3}},
	}}
	require.Equal(t, []byte{1, 2}, m.Find([]byte{1, 2, 3}).PubKeyPrefix)
	require.Equal(t, []byte{1}, m.Find([]byte{1, 5}).PubKeyPrefix)
	require.Nil(t, m.Find([]byte{9}))
}

func TestKeyList(t *testing.T) {
	k := &Key{KeyList: &KeyList{Keys: []*Key{{Ed25519: []byte{1}}, {KeyList: &KeyList{}}, {ECDSASecp256k1: []byte{2}}}}}
	require.False(t, k.IsEmpty())
	require.Equal(t, 2, k.CountSimpleKeys())
	require.Equal(t, 3, k.KeyList.Required())
	k.KeyList.Threshold = 1
	require.Equal(t, 1, k.KeyList.Required())
	require.True(t, (*Key)(nil).IsEmpty())
}
