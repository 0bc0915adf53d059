// SPDX-License-Identifier: GPL-3.0-or-later

package dbgp

import (
	"context"
	"log/slog"
	"net"
	"time"
)

// capturingHandler is a minimal [slog.Handler] that records every emitted
// record into a slice the test can inspect afterward.
type capturingHandler struct {
	records *[]slog.Record
}

func (h *capturingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *capturingHandler) Handle(_ context.Context, record slog.Record) error {
	*h.records = append(*h.records, record)
	return nil
}

func (h *capturingHandler) WithAttrs(attrs []slog.Attr) slog.Handler { return h }

func (h *capturingHandler) WithGroup(name string) slog.Handler { return h }

// newCapturingLogger returns a logger that captures all log records into the
// returned slice. The caller can inspect the slice after exercising the code
// under test to verify which events were emitted.
func newCapturingLogger() (*slog.Logger, *[]slog.Record) {
	var records []slog.Record
	return slog.New(&capturingHandler{records: &records}), &records
}

// fakeConn is a [net.Conn] whose behavior is entirely determined by its
// func fields, left nil for methods a test does not exercise.
type fakeConn struct {
	ReadFunc             func(b []byte) (int, error)
	WriteFunc            func(b []byte) (int, error)
	CloseFunc            func() error
	LocalAddrFunc        func() net.Addr
	RemoteAddrFunc       func() net.Addr
	SetDeadlineFunc      func(t time.Time) error
	SetReadDeadlineFunc  func(t time.Time) error
	SetWriteDeadlineFunc func(t time.Time) error
}

var _ net.Conn = &fakeConn{}

func (c *fakeConn) Read(b []byte) (int, error) {
	if c.ReadFunc != nil {
		return c.ReadFunc(b)
	}
	return 0, net.ErrClosed
}

func (c *fakeConn) Write(b []byte) (int, error) {
	if c.WriteFunc != nil {
		return c.WriteFunc(b)
	}
	return 0, net.ErrClosed
}

func (c *fakeConn) Close() error {
	if c.CloseFunc != nil {
		return c.CloseFunc()
	}
	return nil
}

func (c *fakeConn) LocalAddr() net.Addr {
	if c.LocalAddrFunc != nil {
		return c.LocalAddrFunc()
	}
	return &net.TCPAddr{}
}

func (c *fakeConn) RemoteAddr() net.Addr {
	if c.RemoteAddrFunc != nil {
		return c.RemoteAddrFunc()
	}
	return &net.TCPAddr{}
}

func (c *fakeConn) SetDeadline(t time.Time) error {
	if c.SetDeadlineFunc != nil {
		return c.SetDeadlineFunc(t)
	}
	return nil
}

func (c *fakeConn) SetReadDeadline(t time.Time) error {
	if c.SetReadDeadlineFunc != nil {
		return c.SetReadDeadlineFunc(t)
	}
	return nil
}

func (c *fakeConn) SetWriteDeadline(t time.Time) error {
	if c.SetWriteDeadlineFunc != nil {
		return c.SetWriteDeadlineFunc(t)
	}
	return nil
}

// newMinimalConn returns a [*fakeConn] with only LocalAddrFunc and
// RemoteAddrFunc set. This is the minimum needed for code that calls
// [safeconn.LocalAddr], [safeconn.RemoteAddr], and [safeconn.Network]
// during construction.
func newMinimalConn() *fakeConn {
	return &fakeConn{
		LocalAddrFunc:  func() net.Addr { return &net.TCPAddr{} },
		RemoteAddrFunc: func() net.Addr { return &net.TCPAddr{} },
	}
}
