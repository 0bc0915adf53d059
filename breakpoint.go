// SPDX-License-Identifier: GPL-3.0-or-later

package dbgp

import (
	"context"
	"strconv"
)

// SetLineBreakpoint issues breakpoint_set for a line breakpoint, or a
// conditional line breakpoint when condition is non-empty. On success
// the result is cached locally under its engine-assigned id.
func (s *Session) SetLineBreakpoint(ctx context.Context, file string, line int, condition string) (BreakpointSetResult, error) {
	args := map[string]string{
		"t": "line",
		"f": NormalizeFileURI(file),
		"n": strconv.Itoa(line),
	}
	var data []byte
	if condition != "" {
		args["t"] = "conditional"
		data = []byte(condition)
	}
	return s.setBreakpoint(ctx, args, data)
}

// SetExceptionBreakpoint issues breakpoint_set for an exception
// breakpoint. name may be "*" to break on every exception.
func (s *Session) SetExceptionBreakpoint(ctx context.Context, name string) (BreakpointSetResult, error) {
	return s.setBreakpoint(ctx, map[string]string{"t": "exception", "x": name}, nil)
}

// SetCallBreakpoint issues breakpoint_set for a function-call
// breakpoint.
func (s *Session) SetCallBreakpoint(ctx context.Context, function string) (BreakpointSetResult, error) {
	return s.setBreakpoint(ctx, map[string]string{"t": "call", "m": function}, nil)
}

func (s *Session) setBreakpoint(ctx context.Context, args map[string]string, data []byte) (BreakpointSetResult, error) {
	r, err := s.conn.Send(ctx, "breakpoint_set", args, data)
	if err != nil {
		return BreakpointSetResult{}, err
	}
	res := ParseBreakpointSetResult(r)

	s.mu.Lock()
	s.breakpoints[res.ID] = Breakpoint{
		ID:         res.ID,
		Type:       args["t"],
		State:      "enabled",
		Resolved:   res.Resolved,
		Filename:   args["f"],
		Function:   args["m"],
		Exception:  args["x"],
		Expression: string(data),
	}
	if v, ok := args["n"]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			bp := s.breakpoints[res.ID]
			bp.Lineno = n
			s.breakpoints[res.ID] = bp
		}
	}
	s.mu.Unlock()

	return res, nil
}

// RemoveBreakpoint issues breakpoint_remove and drops the breakpoint
// from the local cache.
func (s *Session) RemoveBreakpoint(ctx context.Context, id string) error {
	_, err := s.conn.Send(ctx, "breakpoint_remove", map[string]string{"d": id}, nil)
	if err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.breakpoints, id)
	s.mu.Unlock()
	return nil
}

// UpdateBreakpoint issues breakpoint_update, changing a live
// breakpoint's enabled state, hit value, or hit condition. Pass "" for
// state or hitCondition, or 0 for hitValue, to leave it unchanged.
func (s *Session) UpdateBreakpoint(ctx context.Context, id, state string, hitValue int, hitCondition string) error {
	args := map[string]string{"d": id}
	if state != "" {
		args["s"] = state
	}
	if hitValue > 0 {
		args["h"] = strconv.Itoa(hitValue)
	}
	if hitCondition != "" {
		args["o"] = hitCondition
	}
	_, err := s.conn.Send(ctx, "breakpoint_update", args, nil)
	if err != nil {
		return err
	}
	s.mu.Lock()
	if bp, ok := s.breakpoints[id]; ok {
		if state != "" {
			bp.State = state
		}
		if hitValue > 0 {
			bp.HitValue = hitValue
		}
		if hitCondition != "" {
			bp.HitCondition = hitCondition
		}
		s.breakpoints[id] = bp
	}
	s.mu.Unlock()
	return nil
}

// ListBreakpoints issues breakpoint_list and replaces the local cache
// with the engine's authoritative set.
func (s *Session) ListBreakpoints(ctx context.Context) ([]Breakpoint, error) {
	r, err := s.conn.Send(ctx, "breakpoint_list", nil, nil)
	if err != nil {
		return nil, err
	}
	bps := ParseBreakpoints(r)

	s.mu.Lock()
	s.breakpoints = make(map[string]Breakpoint, len(bps))
	for _, bp := range bps {
		s.breakpoints[bp.ID] = bp
	}
	s.mu.Unlock()

	return bps, nil
}

// CachedBreakpoints returns the breakpoints known locally without
// contacting the engine.
func (s *Session) CachedBreakpoints() []Breakpoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Breakpoint, 0, len(s.breakpoints))
	for _, bp := range s.breakpoints {
		out = append(out, bp)
	}
	return out
}
