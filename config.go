// SPDX-License-Identifier: GPL-3.0-or-later

package dbgp

import "time"

// Config holds common configuration for the DBGp listener and the sessions
// it accepts.
//
// Pass this to constructor functions to pre-wire dependencies. All fields
// have sensible defaults set by [NewConfig] and are safe to override before
// the first call to [Manager.Serve].
type Config struct {
	// ListenHost is the address the engine listener binds to.
	//
	// Set by [NewConfig] to "0.0.0.0".
	ListenHost string

	// ListenPort is the TCP port the engine listener binds to.
	//
	// Set by [NewConfig] to 9003, the IANA-registered DBGp default.
	ListenPort int

	// CommandTimeout bounds how long [Connection.Send] waits for an engine
	// to reply to a command before the transaction is abandoned.
	//
	// Set by [NewConfig] to 30 seconds.
	CommandTimeout time.Duration

	// MaxDepth is the max_depth feature value advertised to engines that
	// negotiate it, bounding property nesting depth returned by context_get
	// and property_get.
	//
	// Set by [NewConfig] to 3.
	MaxDepth int

	// MaxChildren is the max_children feature value advertised to engines,
	// bounding how many child properties a single response enumerates.
	//
	// Set by [NewConfig] to 128.
	MaxChildren int

	// MaxData is the max_data feature value advertised to engines, bounding
	// the byte length of a single property's encoded value.
	//
	// Set by [NewConfig] to 2048.
	MaxData int

	// LogLevel names the minimum [log/slog.Level] the CLI's logger
	// emits ("debug", "info", "warn", or "error"). The dbgp package
	// itself only reads this through the CLI layer; [SLogger]
	// implementations are free to ignore it.
	//
	// Set by [NewConfig] to "info".
	LogLevel string

	// ErrClassifier classifies errors for structured logging.
	//
	// Set by [NewConfig] to [DefaultErrClassifier].
	ErrClassifier ErrClassifier

	// TimeNow returns the current time.
	//
	// Set by [NewConfig] to [time.Now].
	TimeNow func() time.Time
}

// NewConfig creates a [*Config] with sensible defaults.
func NewConfig() *Config {
	return &Config{
		ListenHost:     "0.0.0.0",
		ListenPort:     9003,
		CommandTimeout: 30 * time.Second,
		MaxDepth:       3,
		MaxChildren:    128,
		MaxData:        2048,
		LogLevel:       "info",
		ErrClassifier:  DefaultErrClassifier,
		TimeNow:        time.Now,
	}
}
