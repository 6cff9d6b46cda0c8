// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package state

import (
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"gitlab.com/hashledger/querynode/pkg/protocol"
	"gopkg.in/yaml.v3"
)

// Genesis is the initial state of a node, as read from a YAML document.
type Genesis struct {
	Accounts []GenesisAccount `yaml:"accounts"`
	Files    []GenesisFile    `yaml:"files,omitempty"`
	Topics   []GenesisTopic   `yaml:"topics,omitempty"`
	Tokens   []GenesisToken   `yaml:"tokens,omitempty"`
}

type GenesisAccount struct {
	ID      string `yaml:"id"`
	Balance uint64 `yaml:"balance"`
	Memo    string `yaml:"memo,omitempty"`

	// Ed25519 or Secp256k1 is the hex encoded public key.
	Ed25519   string `yaml:"ed25519,omitempty"`
	Secp256k1 string `yaml:"secp256k1,omitempty"`
}

type GenesisFile struct {
	ID       string `yaml:"id"`
	Contents string `yaml:"contents"`
	Memo     string `yaml:"memo,omitempty"`
}

type GenesisTopic struct {
	ID   string `yaml:"id"`
	Memo string `yaml:"memo,omitempty"`
}

type GenesisToken struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Symbol      string `yaml:"symbol"`
	Decimals    uint32 `yaml:"decimals"`
	TotalSupply uint64 `yaml:"total-supply"`
	Treasury    string `yaml:"treasury"`
}

// ReadGenesis decodes a genesis document.
func ReadGenesis(r io.Reader) (*Genesis, error) {
	g := new(Genesis)
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	err := dec.Decode(g)
	if err != nil {
		return nil, fmt.Errorf("decode genesis: %w", err)
	}
	return g, nil
}

// WriteGenesis encodes a genesis document.
func WriteGenesis(w io.Writer, g *Genesis) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	err := enc.Encode(g)
	if err != nil {
		return err
	}
	return enc.Close()
}

// Apply writes the genesis entities to the store.
func (g *Genesis) Apply(s *Store, now time.Time) error {
	expires := protocol.TimestampOf(now.Add(90 * 24 * time.Hour))
	return s.Update(func(b *Batch) error {
		for _, a := range g.Accounts {
			id, err := protocol.ParseEntityID(a.ID)
			if err != nil {
				return err
			}
			key := new(protocol.Key)
			switch {
			case a.Ed25519 != "":
				key.Ed25519, err = hex.DecodeString(a.Ed25519)
			case a.Secp256k1 != "":
				key.ECDSASecp256k1, err = hex.DecodeString(a.Secp256k1)
			default:
				key = nil
			}
			if err != nil {
				return fmt.Errorf("account %s: invalid key: %w", a.ID, err)
			}
			err = b.PutAccount(&protocol.Account{
				ID:             id,
				Key:            key,
				Balance:        a.Balance,
				Memo:           a.Memo,
				ExpirationTime: expires,
			})
			if err != nil {
				return err
			}
		}

		for _, f := range g.Files {
			id, err := protocol.ParseEntityID(f.ID)
			if err != nil {
				return err
			}
			err = b.PutFile(&protocol.File{ID: id, Contents: []byte(f.Contents), Memo: f.Memo, ExpirationTime: expires})
			if err != nil {
				return err
			}
		}

		for _, t := range g.Topics {
			id, err := protocol.ParseEntityID(t.ID)
			if err != nil {
				return err
			}
			err = b.PutTopic(&protocol.Topic{ID: id, Memo: t.Memo, ExpirationTime: expires})
			if err != nil {
				return err
			}
		}

		for _, t := range g.Tokens {
			id, err := protocol.ParseEntityID(t.ID)
			if err != nil {
				return err
			}
			treasury, err := protocol.ParseEntityID(t.Treasury)
			if err != nil {
				return err
			}
			err = b.PutToken(&protocol.Token{
				ID:          id,
				Name:        t.Name,
				Symbol:      t.Symbol,
				Decimals:    t.Decimals,
				TotalSupply: t.TotalSupply,
				Treasury:    treasury,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}
