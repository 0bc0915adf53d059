// SPDX-License-Identifier: GPL-3.0-or-later

package dbgp

import (
	"context"
	"net"
	"strings"
	"sync"
)

// ManagerEvents lets a caller observe session lifecycle transitions
// without polling. Every callback is optional.
type ManagerEvents struct {
	// OnSessionCreated fires once feature negotiation completes and the
	// session is registered, after pending breakpoints have been
	// applied to it.
	OnSessionCreated func(*Session)

	// OnSessionClosed fires once a session's connection closes and it
	// has been removed from the manager.
	OnSessionClosed func(*Session)

	// OnAcceptError fires for an error accepting a new connection, just
	// before [Manager.Serve] returns that error. It does not fire when
	// the listener closes because Serve's ctx was cancelled.
	OnAcceptError func(error)
}

// Manager accepts engine connections, turns each into a [Session] once
// its <init> frame arrives, and multiplexes client tool calls across the
// resulting set: electing an active session when none is named
// explicitly, routing breakpoint requests to the active session or the
// [PendingStore], and tearing sessions down on connection close.
type Manager struct {
	cfg     *Config
	log     SLogger
	events  ManagerEvents
	pending *PendingStore

	pipeline Func[net.Conn, net.Conn]

	mu       sync.Mutex
	sessions map[string]*Session
	activeID string
}

// NewManager returns a [*Manager] ready to [Manager.Serve]. cfg and log
// may be nil, in which case [NewConfig] and [DefaultSLogger] are used.
func NewManager(cfg *Config, log SLogger, events ManagerEvents) *Manager {
	if cfg == nil {
		cfg = NewConfig()
	}
	if log == nil {
		log = DefaultSLogger()
	}
	return &Manager{
		cfg:      cfg,
		log:      log,
		events:   events,
		pending:  NewPendingStore(),
		pipeline: Compose2[net.Conn, net.Conn, net.Conn](NewObserveConnFunc(cfg, log), NewCancelWatchFunc()),
		sessions: make(map[string]*Session),
	}
}

// Pending returns the manager's pending-breakpoint store, shared with
// whatever tool-invocation layer routes client requests.
func (m *Manager) Pending() *PendingStore {
	return m.pending
}

// Serve accepts connections from ln until ctx is cancelled, returning
// nil, or Accept fails, returning that error. Every accepted socket is wrapped by the manager's
// observe/cancel-watch pipeline, then handed to its own goroutine:
// Serve itself never blocks on a single connection's lifetime.
//
// Shutdown closes every live session before Serve returns.
func (m *Manager) Serve(ctx context.Context, ln net.Listener) error {
	context.AfterFunc(ctx, func() { ln.Close() })

	var wg sync.WaitGroup
	defer func() {
		m.CloseAll()
		wg.Wait()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if m.events.OnAcceptError != nil {
				m.events.OnAcceptError(err)
			}
			return err
		}

		wrapped, err := m.pipeline.Call(ctx, conn)
		if err != nil {
			conn.Close()
			if m.events.OnAcceptError != nil {
				m.events.OnAcceptError(err)
			}
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			m.handleConn(ctx, wrapped)
		}()
	}
}

func (m *Manager) handleConn(ctx context.Context, conn net.Conn) {
	id := NewSpanID()
	dbgConn := NewConnection(conn, m.cfg, m.log, Events{})
	sess := NewSession(id, dbgConn, m.cfg, m.log)

	dbgConn.events.OnResponse = sess.updateFromResponse
	dbgConn.events.OnClose = func(error) { m.removeSession(sess) }

	runErrCh := make(chan error, 1)
	go func() { runErrCh <- dbgConn.Run(ctx) }()

	if err := sess.Attach(ctx); err != nil {
		dbgConn.Close()
		<-runErrCh
		return
	}

	m.registerSession(sess)
	m.pending.ApplyToSession(ctx, sess, m.log)
	if m.events.OnSessionCreated != nil {
		m.events.OnSessionCreated(sess)
	}

	<-runErrCh
}

func (m *Manager) registerSession(sess *Session) {
	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()
}

func (m *Manager) removeSession(sess *Session) {
	sess.markStopped()

	m.mu.Lock()
	_, wasRegistered := m.sessions[sess.ID]
	delete(m.sessions, sess.ID)
	if m.activeID == sess.ID {
		m.activeID = ""
	}
	m.mu.Unlock()

	if !wasRegistered {
		return
	}

	m.pending.ClearSession(sess.ID)

	if m.events.OnSessionClosed != nil {
		m.events.OnSessionClosed(sess)
	}
}

// ByID returns the live session with the given id.
func (m *Manager) ByID(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// ByFilename returns every live session whose init file URI or current
// file contains substr.
func (m *Manager) ByFilename(substr string) []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Session
	for _, s := range m.sessions {
		file, _ := s.Location()
		initFile := ""
		if rec := s.InitRecord(); rec != nil {
			initFile = rec.FileURI
		}
		if strings.Contains(file, substr) || strings.Contains(initFile, substr) {
			out = append(out, s)
		}
	}
	return out
}

// ByIDEKey returns every live session whose init record carries the
// given IDE key.
func (m *Manager) ByIDEKey(ideKey string) []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Session
	for _, s := range m.sessions {
		if rec := s.InitRecord(); rec != nil && rec.IDEKey == ideKey {
			out = append(out, s)
		}
	}
	return out
}

// Active returns the currently elected active session, electing one per
// [Manager]'s three-rule algorithm if none is cached:
//
//  1. If activeID names a live session, return it.
//  2. Otherwise, the lowest-id (earliest-created) session with status
//     break is elected.
//  3. Otherwise, the earliest-created session is elected.
//  4. Otherwise, [ErrNoSession].
func (m *Manager) Active() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.electLocked()
}

func (m *Manager) electLocked() (*Session, error) {
	if s, ok := m.sessions[m.activeID]; ok {
		return s, nil
	}
	m.activeID = ""

	if len(m.sessions) == 0 {
		return nil, ErrNoSession
	}

	var earliest, earliestBreak *Session
	for _, s := range m.sessions {
		if earliest == nil || s.StartTime().Before(earliest.StartTime()) {
			earliest = s
		}
		if s.Status() == StatusBreak {
			if earliestBreak == nil || s.StartTime().Before(earliestBreak.StartTime()) {
				earliestBreak = s
			}
		}
	}

	elected := earliest
	if earliestBreak != nil {
		elected = earliestBreak
	}
	m.activeID = elected.ID
	return elected, nil
}

// SetActive overrides election, pinning the active session to id. It
// fails with [ErrNoSession] if id does not name a live session.
func (m *Manager) SetActive(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrNoSession
	}
	m.activeID = id
	return nil
}

// CloseSession closes the named session's connection. Removal from the
// sessions map happens asynchronously, via the connection's close event.
func (m *Manager) CloseSession(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return ErrNoSession
	}
	return s.Close()
}

// CloseAll closes every live session.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}

// Sessions returns every live session, in no particular order.
func (m *Manager) Sessions() []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}
