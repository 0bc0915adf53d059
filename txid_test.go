// SPDX-License-Identifier: GPL-3.0-or-later

package dbgp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTxIDAllocatorMonotonic(t *testing.T) {
	a := &txIDAllocator{}
	prev := 0
	for range 10 {
		next := a.Next()
		assert.Greater(t, next, prev)
		prev = next
	}
}

func TestTxIDAllocatorStartsAtOne(t *testing.T) {
	a := &txIDAllocator{}
	assert.Equal(t, 1, a.Next())
}
