// SPDX-License-Identifier: GPL-3.0-or-later

package dbgp

import (
	"github.com/bassosimone/runtimex"
	"github.com/google/uuid"
)

// NewSpanID returns a UUIDv7 representing a span.
//
// A span is a sequence of operations that can fail in a single, specific
// way, such as accepting one engine connection or running one command
// transaction to completion. [Manager] uses a span ID as a session id,
// correlating every log event emitted for a session across its lifetime.
//
// We recommend using a span ID for uniquely identifying spans.
//
// The span terminology is borrowed from OTel.
//
// This function panics if the system random number generator fails,
// which should only happen under extraordinary circumstances.
func NewSpanID() string {
	return runtimex.PanicOnError1(uuid.NewV7()).String()
}
