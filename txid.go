// SPDX-License-Identifier: GPL-3.0-or-later

package dbgp

import "github.com/bassosimone/runtimex"

// txIDAllocator hands out strictly increasing transaction ids for one
// connection's commands. Zero is never allocated, matching DBGp engines
// that treat transaction_id 0 as "none".
type txIDAllocator struct {
	counter int
}

// Next returns the next transaction id.
//
// It panics on overflow via [runtimex.Assert], since a connection issuing
// more than MaxInt commands indicates a programmer error (a runaway
// retry loop), not a condition to recover from.
func (a *txIDAllocator) Next() int {
	runtimex.Assert(a.counter >= 0)
	a.counter++
	runtimex.Assert(a.counter > 0)
	return a.counter
}
