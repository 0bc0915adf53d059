// SPDX-License-Identifier: GPL-3.0-or-later

package tools

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/kpanuragh/xdebug-mcp"
)

// BreakpointInfo describes a breakpoint regardless of whether it is
// pending or already applied to a live session.
type BreakpointInfo struct {
	ID         string `json:"id"`
	Pending    bool   `json:"pending"`
	Type       string `json:"type"`
	File       string `json:"file,omitempty"`
	Line       int    `json:"line,omitempty"`
	Function   string `json:"function,omitempty"`
	Exception  string `json:"exception,omitempty"`
	Expression string `json:"expression,omitempty"`
	Resolved   bool   `json:"resolved"`
}

type breakpointSetParams struct {
	SessionID  string `json:"session_id"`
	Type       string `json:"type"` // line, exception, or call
	File       string `json:"file"`
	Line       int    `json:"line"`
	Function   string `json:"function"`
	Exception  string `json:"exception"`
	Expression string `json:"expression"`
}

// handleBreakpointSet routes a breakpoint request to the active session
// when one exists, or records it in the pending store otherwise.
func handleBreakpointSet(ctx context.Context, d *Dispatcher, params json.RawMessage) (any, error) {
	p, err := decodeParams[breakpointSetParams](params)
	if err != nil {
		return nil, err
	}

	sess, sessErr := d.resolveSession(p.SessionID)
	if sessErr == nil {
		var res dbgp.BreakpointSetResult
		var err error
		switch p.Type {
		case "line":
			res, err = sess.SetLineBreakpoint(ctx, d.Paths.ToContainer(p.File), p.Line, p.Expression)
		case "exception":
			res, err = sess.SetExceptionBreakpoint(ctx, p.Exception)
		case "call":
			res, err = sess.SetCallBreakpoint(ctx, p.Function)
		default:
			return nil, &dbgp.UsageError{Message: "type must be line, exception, or call"}
		}
		if err != nil {
			return nil, err
		}
		return BreakpointInfo{ID: res.ID, Type: p.Type, File: p.File, Line: p.Line,
			Function: p.Function, Exception: p.Exception, Expression: p.Expression, Resolved: res.Resolved}, nil
	}

	store := d.Manager.Pending()
	now := time.Now()
	switch p.Type {
	case "line":
		bp := store.AddLine(d.Paths.ToContainer(p.File), p.Line, p.Expression, now)
		return BreakpointInfo{ID: bp.ID, Pending: true, Type: p.Type, File: p.File, Line: p.Line, Expression: p.Expression}, nil
	case "exception":
		bp := store.AddException(p.Exception, now)
		return BreakpointInfo{ID: bp.ID, Pending: true, Type: p.Type, Exception: p.Exception}, nil
	case "call":
		bp := store.AddCall(p.Function, now)
		return BreakpointInfo{ID: bp.ID, Pending: true, Type: p.Type, Function: p.Function}, nil
	default:
		return nil, &dbgp.UsageError{Message: "type must be line, exception, or call"}
	}
}

type breakpointIDParams struct {
	SessionID    string `json:"session_id"`
	ID           string `json:"id"`
	Enabled      *bool  `json:"enabled,omitempty"`
	HitValue     int    `json:"hit_value,omitempty"`
	HitCondition string `json:"hit_condition,omitempty"`
}

// isPendingID reports whether id names an entry in the pending store
// rather than a breakpoint already applied to an engine.
func isPendingID(id string) bool {
	return strings.HasPrefix(id, "pending_")
}

func handleBreakpointRemove(ctx context.Context, d *Dispatcher, params json.RawMessage) (any, error) {
	p, err := decodeParams[breakpointIDParams](params)
	if err != nil {
		return nil, err
	}
	if isPendingID(p.ID) {
		if !d.Manager.Pending().Remove(p.ID) {
			return nil, &dbgp.UsageError{Message: "no such pending breakpoint: " + p.ID}
		}
		return map[string]string{"removed_id": p.ID}, nil
	}
	sess, err := d.resolveSession(p.SessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.RemoveBreakpoint(ctx, p.ID); err != nil {
		return nil, err
	}
	return map[string]string{"removed_id": p.ID}, nil
}

func handleBreakpointUpdate(ctx context.Context, d *Dispatcher, params json.RawMessage) (any, error) {
	p, err := decodeParams[breakpointIDParams](params)
	if err != nil {
		return nil, err
	}
	if isPendingID(p.ID) {
		if p.Enabled == nil || p.HitValue != 0 || p.HitCondition != "" {
			return nil, &dbgp.UsageError{Message: "pending breakpoints only support enabled updates"}
		}
		if err := d.Manager.Pending().SetEnabled(p.ID, *p.Enabled); err != nil {
			return nil, err
		}
		return map[string]string{"updated_id": p.ID}, nil
	}
	sess, err := d.resolveSession(p.SessionID)
	if err != nil {
		return nil, err
	}
	state := ""
	if p.Enabled != nil {
		if *p.Enabled {
			state = "enabled"
		} else {
			state = "disabled"
		}
	}
	if err := sess.UpdateBreakpoint(ctx, p.ID, state, p.HitValue, p.HitCondition); err != nil {
		return nil, err
	}
	return map[string]string{"updated_id": p.ID}, nil
}

func handleBreakpointList(ctx context.Context, d *Dispatcher, params json.RawMessage) (any, error) {
	p, err := decodeParams[sessionIDParams](params)
	if err != nil {
		return nil, err
	}

	out := []BreakpointInfo{}
	for _, bp := range d.Manager.Pending().List() {
		out = append(out, BreakpointInfo{ID: bp.ID, Pending: true, Type: bp.Type, File: bp.Filename,
			Line: bp.Lineno, Function: bp.Function, Exception: bp.Exception, Expression: bp.Expression})
	}

	sess, err := d.resolveSession(p.SessionID)
	if err != nil {
		return out, nil
	}
	live, err := sess.ListBreakpoints(ctx)
	if err != nil {
		return nil, err
	}
	for _, bp := range live {
		out = append(out, BreakpointInfo{ID: bp.ID, Type: bp.Type, File: bp.Filename, Line: bp.Lineno,
			Function: bp.Function, Exception: bp.Exception, Expression: bp.Expression, Resolved: bp.Resolved})
	}
	return out, nil
}
