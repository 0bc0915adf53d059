// SPDX-License-Identifier: GPL-3.0-or-later

package dbgp

// Events groups the callbacks a [Connection] invokes as it reads frames
// off its socket. Every callback is optional; a nil callback is simply
// not invoked. Callbacks run on the connection's single reader goroutine
// and must not block for long, since no further frames are decoded
// until they return.
type Events struct {
	// OnInit fires for each <init> frame the engine sends; an engine sends
	// one when it connects.
	OnInit func(*InitRecord)

	// OnResponse fires for every <response> frame, whether or not it
	// correlates with a transaction a caller is waiting on (an engine
	// may emit a response for a command the caller already gave up on
	// after a local timeout).
	OnResponse func(*Response)

	// OnStream fires for engine-initiated stdout/stderr content.
	OnStream func(*StreamRecord)

	// OnClose fires once, when the underlying socket is closed for any
	// reason (engine disconnect, local close, or read error). err is
	// nil for an orderly close.
	OnClose func(err error)

	// OnError fires for a malformed frame that [FrameDecoder] could not
	// make sense of, or an XML payload [ParseNode] could not parse.
	// The connection attempts to resynchronize and keeps running.
	OnError func(err error)
}

func (e Events) onInit(rec *InitRecord) {
	if e.OnInit != nil {
		e.OnInit(rec)
	}
}

func (e Events) onResponse(r *Response) {
	if e.OnResponse != nil {
		e.OnResponse(r)
	}
}

func (e Events) onStream(s *StreamRecord) {
	if e.OnStream != nil {
		e.OnStream(s)
	}
}

func (e Events) onClose(err error) {
	if e.OnClose != nil {
		e.OnClose(err)
	}
}

func (e Events) onError(err error) {
	if e.OnError != nil {
		e.OnError(err)
	}
}
