// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package node

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLimitedListener(t *testing.T) {
	inner, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	l := newLimitedListener(inner, 1)
	defer l.Close()

	accepted := make(chan net.Conn, 2)
	go func() {
		for {
			c, err := l.Accept()
			if err != nil {
				return
			}
			accepted <- c
		}
	}()

	c1, err := net.Dial("tcp", inner.Addr().String())
	require.NoError(t, err)
	defer c1.Close()
	s1 := <-accepted

	// The second connection is not accepted while the first is open
	c2, err := net.Dial("tcp", inner.Addr().String())
	require.NoError(t, err)
	defer c2.Close()
	select {
	case <-accepted:
		t.Fatal("accepted a connection over the limit")
	case <-time.After(100 * time.Millisecond):
	}

	require.NoError(t, s1.Close())
	select {
	case s2 := <-accepted:
		require.NoError(t, s2.Close())
	case <-time.After(5 * time.Second):
		t.Fatal("connection was not accepted after a slot was released")
	}
}
