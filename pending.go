// SPDX-License-Identifier: GPL-3.0-or-later

package dbgp

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// PendingBreakpoint is a breakpoint request recorded before any session
// existed to apply it to, or kept around to apply to future sessions.
type PendingBreakpoint struct {
	ID         string
	Type       string // line, exception, or call
	Filename   string
	Lineno     int
	Exception  string
	Function   string
	Expression string
	Enabled    bool
	CreatedAt  time.Time
}

// AppliedMapping records that a pending breakpoint was applied to a
// specific session, and what id the engine assigned it.
type AppliedMapping struct {
	PendingID          string
	SessionID          string
	EngineBreakpointID string
}

// PendingStore holds breakpoints requested while no matching session
// existed, or kept for reapplication to sessions created later. Entries
// are applied, in insertion order, to every newly created session.
type PendingStore struct {
	mu      sync.Mutex
	seq     int
	entries []*PendingBreakpoint
	applied map[string][]AppliedMapping // keyed by session id
}

// NewPendingStore returns an empty [*PendingStore].
func NewPendingStore() *PendingStore {
	return &PendingStore{applied: make(map[string][]AppliedMapping)}
}

// nextID returns the next "pending_<seq>" id.
func (p *PendingStore) nextID() string {
	p.seq++
	return fmt.Sprintf("pending_%d", p.seq)
}

// AddLine records a pending line (or conditional) breakpoint.
func (p *PendingStore) AddLine(filename string, lineno int, expression string, now time.Time) *PendingBreakpoint {
	p.mu.Lock()
	defer p.mu.Unlock()
	bp := &PendingBreakpoint{
		ID: p.nextID(), Type: "line", Filename: NormalizeFileURI(filename),
		Lineno: lineno, Expression: expression, Enabled: true, CreatedAt: now,
	}
	p.entries = append(p.entries, bp)
	return bp
}

// AddException records a pending exception breakpoint.
func (p *PendingStore) AddException(exception string, now time.Time) *PendingBreakpoint {
	p.mu.Lock()
	defer p.mu.Unlock()
	bp := &PendingBreakpoint{
		ID: p.nextID(), Type: "exception", Exception: exception,
		Enabled: true, CreatedAt: now,
	}
	p.entries = append(p.entries, bp)
	return bp
}

// AddCall records a pending function-call breakpoint.
func (p *PendingStore) AddCall(function string, now time.Time) *PendingBreakpoint {
	p.mu.Lock()
	defer p.mu.Unlock()
	bp := &PendingBreakpoint{
		ID: p.nextID(), Type: "call", Function: function,
		Enabled: true, CreatedAt: now,
	}
	p.entries = append(p.entries, bp)
	return bp
}

// Get returns the pending breakpoint with the given id, if any.
func (p *PendingStore) Get(id string) (*PendingBreakpoint, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, bp := range p.entries {
		if bp.ID == id {
			return bp, true
		}
	}
	return nil, false
}

// Remove deletes the pending breakpoint with the given id.
func (p *PendingStore) Remove(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, bp := range p.entries {
		if bp.ID == id {
			p.entries = append(p.entries[:i], p.entries[i+1:]...)
			return true
		}
	}
	return false
}

// SetEnabled enables or disables a pending breakpoint. Updating any
// field other than enabled state is rejected: a pending breakpoint has
// not yet been applied to an engine, so hit-count/hit-condition
// updates have nothing to attach to.
func (p *PendingStore) SetEnabled(id string, enabled bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, bp := range p.entries {
		if bp.ID == id {
			bp.Enabled = enabled
			return nil
		}
	}
	return &UsageError{Message: fmt.Sprintf("no such pending breakpoint: %s", id)}
}

// List returns every pending breakpoint, in insertion order.
func (p *PendingStore) List() []*PendingBreakpoint {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*PendingBreakpoint, len(p.entries))
	copy(out, p.entries)
	return out
}

// ApplyToSession issues a breakpoint_set for every enabled pending
// breakpoint against sess, recording each resulting [AppliedMapping]. A
// single engine rejection is logged via log and does not abort the
// remaining applications.
func (p *PendingStore) ApplyToSession(ctx context.Context, sess *Session, log SLogger) {
	if log == nil {
		log = DefaultSLogger()
	}
	p.mu.Lock()
	entries := make([]*PendingBreakpoint, len(p.entries))
	copy(entries, p.entries)
	p.mu.Unlock()

	var mappings []AppliedMapping
	for _, bp := range entries {
		if !bp.Enabled {
			continue
		}
		var res BreakpointSetResult
		var err error
		switch bp.Type {
		case "line":
			res, err = sess.SetLineBreakpoint(ctx, bp.Filename, bp.Lineno, bp.Expression)
		case "exception":
			res, err = sess.SetExceptionBreakpoint(ctx, bp.Exception)
		case "call":
			res, err = sess.SetCallBreakpoint(ctx, bp.Function)
		default:
			continue
		}
		if err != nil {
			log.Info("dbgp: failed to apply pending breakpoint", "pending_id", bp.ID, "session", sess.ID, "err", err)
			continue
		}
		mappings = append(mappings, AppliedMapping{PendingID: bp.ID, SessionID: sess.ID, EngineBreakpointID: res.ID})
	}

	if len(mappings) > 0 {
		p.mu.Lock()
		p.applied[sess.ID] = append(p.applied[sess.ID], mappings...)
		p.mu.Unlock()
	}
}

// AppliedTo returns the applied mappings recorded for the given session.
func (p *PendingStore) AppliedTo(sessionID string) []AppliedMapping {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]AppliedMapping, len(p.applied[sessionID]))
	copy(out, p.applied[sessionID])
	return out
}

// ClearSession drops the applied-mapping record for a session that has
// ended. Pending entries themselves are untouched, so they are
// re-applied to any session created afterward.
func (p *PendingStore) ClearSession(sessionID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.applied, sessionID)
}
