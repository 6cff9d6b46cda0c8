// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package node

import (
	"net"
	"sync"
)

// limitedListener blocks Accept while the maximum number of connections are
// open.
type limitedListener struct {
	net.Listener
	slots chan struct{}
}

func newLimitedListener(l net.Listener, limit int) *limitedListener {
	slots := make(chan struct{}, limit)
	for i := 0; i < limit; i++ {
		slots <- struct{}{}
	}
	return &limitedListener{Listener: l, slots: slots}
}

func (l *limitedListener) Accept() (net.Conn, error) {
	<-l.slots

	conn, err := l.Listener.Accept()
	if err != nil {
		l.slots <- struct{}{}
		return nil, err
	}

	return &limitedConn{Conn: conn, slots: l.slots}, nil
}

type limitedConn struct {
	net.Conn
	once  sync.Once
	slots chan<- struct{}
}

func (c *limitedConn) release() {
	c.once.Do(func() {
		c.slots <- struct{}{}
	})
}

func (c *limitedConn) didClose(err error) {
	if err == nil {
		return
	}

	// A timeout leaves the connection usable. Anything else means the peer
	// is gone, even if the server has not closed its end yet.
	netErr, ok := err.(net.Error)
	if !ok || !netErr.Timeout() {
		c.release()
	}
}

func (c *limitedConn) Close() error {
	c.release()
	return c.Conn.Close()
}

func (c *limitedConn) Read(b []byte) (int, error) {
	n, err := c.Conn.Read(b)
	c.didClose(err)
	return n, err
}

func (c *limitedConn) Write(b []byte) (int, error) {
	n, err := c.Conn.Write(b)
	c.didClose(err)
	return n, err
}
