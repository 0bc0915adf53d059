// SPDX-License-Identifier: GPL-3.0-or-later

package dbgp

import (
	"errors"
	"fmt"
)

// DBGp error codes, passed through verbatim from the engine's <error
// code="..."> attribute. See the DBGp status/error code tables.
const (
	ErrCodeParse              = 1
	ErrCodeDuplicateArgs      = 2
	ErrCodeInvalidOptions     = 3
	ErrCodeUnimplemented      = 4
	ErrCodeUnavailable        = 5
	ErrCodeFileNotFound       = 100
	ErrCodeBreakpointType     = 200
	ErrCodeBreakpointInvalid  = 201
	ErrCodeBreakpointNoCode   = 202
	ErrCodeBreakpointInvState = 203
	ErrCodeBreakpointNoSuch   = 204
	ErrCodeBreakpointNonExec  = 205
	ErrCodeBreakpointNonExec2 = 206
	ErrCodePropertyNotFound   = 300
	ErrCodeStackDepthInvalid  = 301
	ErrCodeContextInvalid     = 302
	ErrCodeEncodingUnsupp     = 900
	ErrCodeInternal           = 998
	ErrCodeUnknown            = 999
)

// ErrConnectionClosed indicates that an operation was attempted on, or
// aborted by, a closed [Connection].
var ErrConnectionClosed = errors.New("dbgp: connection closed")

// ErrTimeout indicates that a command's [Config.CommandTimeout] elapsed
// before a matching response arrived.
var ErrTimeout = errors.New("dbgp: command timed out")

// ErrNoSession indicates a caller addressed a session id that is not
// live, or asked for the active session when none could be elected.
var ErrNoSession = errors.New("dbgp: no such session")

// EngineError wraps a DBGp <error code="..."> element returned in an
// otherwise well-formed response. It is not a transport failure: the
// command reached the engine and the engine declined it.
type EngineError struct {
	Command string
	Code    int
	Message string
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("dbgp: engine rejected %s: code %d: %s", e.Command, e.Code, e.Message)
}

// EvalError is an [EngineError] raised specifically by the eval command,
// kept as a distinct type so callers can special-case "the expression
// was bad" from "the command was bad".
type EvalError struct {
	*EngineError
}

// UsageError indicates a caller-level mistake, such as naming a session
// that does not exist or asking for an operation the pending-breakpoint
// store cannot perform. It is never fatal to the [Manager].
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return "dbgp: " + e.Message
}
