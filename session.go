// SPDX-License-Identifier: GPL-3.0-or-later

package dbgp

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Status is a session's run state as last reported by the engine.
type Status string

const (
	StatusStarting Status = "starting"
	StatusBreak    Status = "break"
	StatusRunning  Status = "running"
	StatusStopping Status = "stopping"
	StatusStopped  Status = "stopped"
)

// ExecResult is the outcome of an execution command (run, step_into,
// step_over, step_out, stop, detach): the engine's new status and, when
// it stopped at a location, the file and line it stopped at.
type ExecResult struct {
	Status Status
	File   string
	Line   int
}

// Session wraps one [Connection] after its engine has been identified by
// an <init> frame. It performs feature negotiation on attach and exposes
// the debugger command surface with typed results, tracking the engine's
// reported status and current location as responses arrive.
type Session struct {
	ID        string
	conn      *Connection
	cfg       *Config
	log       SLogger
	startTime time.Time

	// OnStateChange, if set, is invoked after every status or location
	// update. It runs on the connection's reader goroutine; it must not
	// block.
	OnStateChange func(*Session)

	mu          sync.Mutex
	status      Status
	currentFile string
	currentLine int
	initRecord  *InitRecord
	breakpoints map[string]Breakpoint
}

// NewSession creates a [*Session] bound to an already-[Connection.Run]ning
// connection. id is the span id the [Manager] assigned on accept.
func NewSession(id string, conn *Connection, cfg *Config, log SLogger) *Session {
	if cfg == nil {
		cfg = NewConfig()
	}
	if log == nil {
		log = DefaultSLogger()
	}
	return &Session{
		ID:          id,
		conn:        conn,
		cfg:         cfg,
		log:         log,
		startTime:   cfg.TimeNow(),
		status:      StatusStarting,
		breakpoints: make(map[string]Breakpoint),
	}
}

// Attach waits for the engine's <init> frame and negotiates max_depth,
// max_children, max_data, and show_hidden via feature_set. A feature
// that the engine rejects is logged and otherwise ignored: negotiation
// failure is never fatal to the session.
func (s *Session) Attach(ctx context.Context) error {
	rec, err := s.conn.WaitInit(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.initRecord = rec
	s.mu.Unlock()

	features := map[string]string{
		"max_depth":    fmt.Sprintf("%d", s.cfg.MaxDepth),
		"max_children": fmt.Sprintf("%d", s.cfg.MaxChildren),
		"max_data":     fmt.Sprintf("%d", s.cfg.MaxData),
		"show_hidden":  "1",
	}
	for name, value := range features {
		_, err := s.conn.Send(ctx, "feature_set", map[string]string{"n": name, "v": value}, nil)
		if err != nil {
			s.log.Info("dbgp: feature_set failed", "session", s.ID, "feature", name, "err", err)
		}
	}
	return nil
}

// InitRecord returns the engine's <init> frame, or nil before Attach
// completes.
func (s *Session) InitRecord() *InitRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initRecord
}

// Status returns the session's most recently reported run state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Location returns the file and line of the most recent response that
// carried one.
func (s *Session) Location() (file string, line int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentFile, s.currentLine
}

// StartTime returns when the session was created.
func (s *Session) StartTime() time.Time {
	return s.startTime
}

// updateFromResponse applies status and location fields carried by r,
// then fires OnStateChange if the status changed or r carried a location. [Manager] calls this from
// the connection's [Events.OnResponse] callback for every response on
// this session's connection.
func (s *Session) updateFromResponse(r *Response) {
	s.mu.Lock()
	changed := false
	if r.Status != "" && Status(r.Status) != s.status {
		s.status = Status(r.Status)
		changed = true
	}
	if r.MessageFile != "" {
		s.currentFile = r.MessageFile
		s.currentLine = r.MessageLine
		changed = true
	}
	s.mu.Unlock()

	if changed && s.OnStateChange != nil {
		s.OnStateChange(s)
	}
}

// markStopped is called on connection close: it forces status to
// stopped and fires OnStateChange once.
func (s *Session) markStopped() {
	s.mu.Lock()
	s.status = StatusStopped
	s.mu.Unlock()
	if s.OnStateChange != nil {
		s.OnStateChange(s)
	}
}

func execResult(r *Response) ExecResult {
	return ExecResult{Status: Status(r.Status), File: r.MessageFile, Line: r.MessageLine}
}

// Run issues the DBGp "run" command, resuming execution until the next
// breakpoint, step, or termination.
func (s *Session) Run(ctx context.Context) (ExecResult, error) {
	r, err := s.conn.Send(ctx, "run", nil, nil)
	if err != nil {
		return ExecResult{}, err
	}
	return execResult(r), nil
}

// StepInto issues "step_into".
func (s *Session) StepInto(ctx context.Context) (ExecResult, error) {
	r, err := s.conn.Send(ctx, "step_into", nil, nil)
	if err != nil {
		return ExecResult{}, err
	}
	return execResult(r), nil
}

// StepOver issues "step_over".
func (s *Session) StepOver(ctx context.Context) (ExecResult, error) {
	r, err := s.conn.Send(ctx, "step_over", nil, nil)
	if err != nil {
		return ExecResult{}, err
	}
	return execResult(r), nil
}

// StepOut issues "step_out".
func (s *Session) StepOut(ctx context.Context) (ExecResult, error) {
	r, err := s.conn.Send(ctx, "step_out", nil, nil)
	if err != nil {
		return ExecResult{}, err
	}
	return execResult(r), nil
}

// Stop issues "stop", ending the debugging session without detaching
// the engine from the script process.
func (s *Session) Stop(ctx context.Context) (ExecResult, error) {
	r, err := s.conn.Send(ctx, "stop", nil, nil)
	if err != nil {
		return ExecResult{}, err
	}
	return execResult(r), nil
}

// Detach issues "detach", letting the script run to completion outside
// debugger control.
func (s *Session) Detach(ctx context.Context) (ExecResult, error) {
	r, err := s.conn.Send(ctx, "detach", nil, nil)
	if err != nil {
		return ExecResult{}, err
	}
	return execResult(r), nil
}

// TypeMap issues "typemap_get", returning the engine's declared language
// type names and their DBGp common type mapping.
func (s *Session) TypeMap(ctx context.Context) ([]TypeMapEntry, error) {
	r, err := s.conn.Send(ctx, "typemap_get", nil, nil)
	if err != nil {
		return nil, err
	}
	return ParseTypeMap(r), nil
}

// RedirectStdin issues "stdin" with the given mode ("0" to disable,
// "1" to copy to the IDE, "2" to redirect and replace).
func (s *Session) RedirectStdin(ctx context.Context, mode string) error {
	_, err := s.conn.Send(ctx, "stdin", map[string]string{"c": mode}, nil)
	return err
}

// RedirectStdout issues "stdout" with the given mode ("0" to disable,
// "1" to copy to the IDE, "2" to redirect and replace).
func (s *Session) RedirectStdout(ctx context.Context, mode string) error {
	_, err := s.conn.Send(ctx, "stdout", map[string]string{"c": mode}, nil)
	return err
}

// RedirectStderr issues "stderr" with the given mode ("0" to disable,
// "1" to copy to the IDE, "2" to redirect and replace).
func (s *Session) RedirectStderr(ctx context.Context, mode string) error {
	_, err := s.conn.Send(ctx, "stderr", map[string]string{"c": mode}, nil)
	return err
}

// Close closes the underlying connection.
func (s *Session) Close() error {
	return s.conn.Close()
}
