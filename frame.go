// SPDX-License-Identifier: GPL-3.0-or-later

package dbgp

import (
	"bytes"
	"errors"
	"strconv"
)

// ErrFrameDesync is reported through [FrameDecoder.OnFrameError] when the
// decoder discards bytes to resynchronize after a malformed length prefix
// or a missing trailing NUL. It never aborts the underlying connection by
// itself.
var ErrFrameDesync = errors.New("dbgp: malformed frame, resynchronizing")

type frameState int

const (
	awaitingLength frameState = iota
	awaitingBody
)

// FrameDecoder incrementally decodes the DBGp wire framing
// `<ASCII-decimal length>\x00<xml payload>\x00` from an append-only byte
// stream. Feed arriving bytes with [FrameDecoder.Feed], then drain zero
// or more complete payloads with [FrameDecoder.Next].
//
// A FrameDecoder is not safe for concurrent use; [Connection] drives it
// from its single reader goroutine.
type FrameDecoder struct {
	// OnFrameError is called for a recoverable framing error (malformed
	// length, missing trailing NUL). The decoder always resynchronizes
	// and keeps decoding; this hook exists purely for logging.
	//
	// May be nil, in which case framing errors are silently discarded.
	OnFrameError func(error)

	buf         []byte
	state       frameState
	expectedLen int
}

// NewFrameDecoder returns a [*FrameDecoder] ready to decode frames.
func NewFrameDecoder() *FrameDecoder {
	return &FrameDecoder{state: awaitingLength}
}

// Feed appends newly read bytes to the decoder's internal buffer.
func (d *FrameDecoder) Feed(data []byte) {
	d.buf = append(d.buf, data...)
}

// Next drains and returns the next complete XML payload, if any. Callers
// should call Next in a loop until ok is false after every [Feed].
func (d *FrameDecoder) Next() (payload []byte, ok bool) {
	for {
		switch d.state {
		case awaitingLength:
			idx := bytes.IndexByte(d.buf, 0)
			if idx < 0 {
				return nil, false
			}
			n, err := strconv.Atoi(string(d.buf[:idx]))
			if err != nil || n <= 0 {
				d.reportError(ErrFrameDesync)
				d.buf = d.buf[idx+1:]
				continue
			}
			d.expectedLen = n
			d.buf = d.buf[idx+1:]
			d.state = awaitingBody

		case awaitingBody:
			if len(d.buf) < d.expectedLen+1 {
				return nil, false
			}
			body := d.buf[:d.expectedLen]
			if d.buf[d.expectedLen] != 0 {
				d.reportError(ErrFrameDesync)
				d.buf = d.buf[1:]
				d.state = awaitingLength
				continue
			}
			d.buf = d.buf[d.expectedLen+1:]
			d.state = awaitingLength
			out := make([]byte, len(body))
			copy(out, body)
			return out, true
		}
	}
}

func (d *FrameDecoder) reportError(err error) {
	if d.OnFrameError != nil {
		d.OnFrameError(err)
	}
}

// EncodeFrame produces the wire representation of payload: its ASCII
// decimal length, a NUL byte, the payload itself, and a trailing NUL.
func EncodeFrame(payload []byte) []byte {
	lenStr := strconv.Itoa(len(payload))
	out := make([]byte, 0, len(lenStr)+len(payload)+2)
	out = append(out, lenStr...)
	out = append(out, 0)
	out = append(out, payload...)
	out = append(out, 0)
	return out
}
