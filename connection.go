// SPDX-License-Identifier: GPL-3.0-or-later

package dbgp

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"sort"
	"sync"
)

func encodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// waiter is the bookkeeping for one in-flight command transaction.
type waiter struct {
	resp chan *Response
}

// Connection owns one accepted engine socket: it decodes frames, parses
// them into [*Response]/[*InitRecord]/[*StreamRecord] values, dispatches
// them through [Events], and lets callers issue commands one at a time.
//
// DBGp allows only a single outstanding command per connection: [Send]
// enforces this with an internal mutex rather than trusting callers to
// serialize themselves.
type Connection struct {
	conn   net.Conn
	log    SLogger
	events Events
	cfg    *Config

	decoder *FrameDecoder
	txAlloc txIDAllocator

	sendMu sync.Mutex // serializes Send calls: one outstanding command at a time

	mu      sync.Mutex // guards pending and closed
	pending map[int]*waiter
	closed  bool
	closeCh chan struct{}

	initOnce sync.Once
	init     *InitRecord
	initCh   chan struct{}
}

// NewConnection wraps an accepted engine socket. cfg and log may be nil,
// in which case [NewConfig] and [DefaultSLogger] are used.
func NewConnection(conn net.Conn, cfg *Config, log SLogger, events Events) *Connection {
	if cfg == nil {
		cfg = NewConfig()
	}
	if log == nil {
		log = DefaultSLogger()
	}
	return &Connection{
		conn:    conn,
		log:     log,
		events:  events,
		cfg:     cfg,
		decoder: NewFrameDecoder(),
		pending: make(map[int]*waiter),
		closeCh: make(chan struct{}),
		initCh:  make(chan struct{}),
	}
}

// Run reads frames off the socket until it closes or ctx is cancelled,
// dispatching each to the appropriate [Events] callback and waking any
// [Send] caller whose transaction id matches. Run returns when the
// connection is done; callers typically invoke it in its own goroutine.
func (c *Connection) Run(ctx context.Context) error {
	c.decoder.OnFrameError = func(err error) {
		c.events.onError(err)
	}

	stop := context.AfterFunc(ctx, func() {
		c.conn.Close()
	})
	defer stop()

	readErr := c.readLoop()
	c.finish(readErr)
	return readErr
}

func (c *Connection) readLoop() error {
	buf := make([]byte, 4096)
	for {
		n, err := c.conn.Read(buf)
		if n > 0 {
			c.decoder.Feed(buf[:n])
			for {
				payload, ok := c.decoder.Next()
				if !ok {
					break
				}
				c.dispatch(payload)
			}
		}
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
	}
}

func (c *Connection) dispatch(payload []byte) {
	node, err := ParseNode(payload)
	if err != nil {
		c.events.onError(fmt.Errorf("dbgp: malformed xml payload: %w", err))
		return
	}
	if node == nil {
		return
	}

	switch node.Name {
	case "init":
		rec := parseInitRecord(node)
		c.initOnce.Do(func() {
			c.init = rec
			close(c.initCh)
		})
		c.events.onInit(rec)

	case "response":
		resp := parseResponse(node)
		c.events.onResponse(resp)
		c.deliver(resp)

	case "stream":
		c.events.onStream(parseStreamRecord(node))

	default:
		c.events.onError(fmt.Errorf("dbgp: unrecognized root element %q", node.Name))
	}
}

func (c *Connection) deliver(resp *Response) {
	c.mu.Lock()
	w, ok := c.pending[resp.TransactionID]
	if ok {
		delete(c.pending, resp.TransactionID)
	}
	c.mu.Unlock()
	if ok {
		w.resp <- resp
	}
}

// WaitInit blocks until the engine's <init> frame has been observed, the
// connection closes, or ctx is cancelled.
func (c *Connection) WaitInit(ctx context.Context) (*InitRecord, error) {
	select {
	case <-c.initCh:
		return c.init, nil
	case <-c.closeCh:
		return nil, ErrConnectionClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Send issues a DBGp command and blocks for its response, up to
// [Config.CommandTimeout] (or ctx's deadline, whichever is sooner). Only
// one Send may be in flight at a time per connection; concurrent callers
// queue on an internal lock, matching the DBGp single-outstanding-command
// rule.
func (c *Connection) Send(ctx context.Context, command string, args map[string]string, data []byte) (*Response, error) {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrConnectionClosed
	}
	txID := c.txAlloc.Next()
	w := &waiter{resp: make(chan *Response, 1)}
	c.pending[txID] = w
	c.mu.Unlock()

	line := encodeCommand(command, txID, args, data)
	if _, err := c.conn.Write(EncodeFrame([]byte(line))); err != nil {
		c.mu.Lock()
		delete(c.pending, txID)
		c.mu.Unlock()
		return nil, err
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, c.cfg.CommandTimeout)
	defer cancel()

	select {
	case resp := <-w.resp:
		if resp.Error != nil {
			return resp, &EngineError{Command: command, Code: resp.Error.Code, Message: resp.Error.Message}
		}
		return resp, nil
	case <-c.closeCh:
		c.mu.Lock()
		delete(c.pending, txID)
		c.mu.Unlock()
		return nil, ErrConnectionClosed
	case <-timeoutCtx.Done():
		c.mu.Lock()
		delete(c.pending, txID)
		c.mu.Unlock()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, ErrTimeout
	}
}

// encodeCommand renders command with its transaction id and arguments in
// DBGp's command-line-like syntax, appending data as a base64-encoded
// trailing argument when present.
func encodeCommand(command string, txID int, args map[string]string, data []byte) string {
	line := fmt.Sprintf("%s -i %d", command, txID)
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		line += fmt.Sprintf(" -%s %s", k, QuoteArg(args[k]))
	}
	if data != nil {
		line += " -- " + encodeBase64(data)
	}
	return line
}

// Close closes the underlying socket and fails every pending [Send] call
// with [ErrConnectionClosed]. Close is safe to call more than once.
func (c *Connection) Close() error {
	err := c.conn.Close()
	c.finish(nil)
	return err
}

func (c *Connection) finish(readErr error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.pending = make(map[int]*waiter)
	close(c.closeCh)
	c.mu.Unlock()

	// Pending waiters are woken via closeCh, not by closing w.resp: a
	// waiter channel is buffered and receiving from a closed one would
	// race with a concurrent deliver() and hand Send a nil *Response.
	c.events.onClose(readErr)
}
