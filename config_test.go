// SPDX-License-Identifier: GPL-3.0-or-later

package dbgp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()

	require.NotNil(t, cfg)

	assert.Equal(t, "0.0.0.0", cfg.ListenHost)
	assert.Equal(t, 9003, cfg.ListenPort)
	assert.Positive(t, cfg.CommandTimeout)
	assert.Equal(t, 3, cfg.MaxDepth)
	assert.Equal(t, 128, cfg.MaxChildren)
	assert.Equal(t, 2048, cfg.MaxData)
	assert.Equal(t, "info", cfg.LogLevel)

	require.NotNil(t, cfg.ErrClassifier)
	assert.Equal(t, "", cfg.ErrClassifier.Classify(nil))

	now := cfg.TimeNow()
	assert.False(t, now.IsZero())
}
