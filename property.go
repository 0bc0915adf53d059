// SPDX-License-Identifier: GPL-3.0-or-later

package dbgp

import (
	"context"
	"strconv"
)

// StackDepth issues stack_depth, returning how many frames are on the
// call stack.
func (s *Session) StackDepth(ctx context.Context) (int, error) {
	r, err := s.conn.Send(ctx, "stack_depth", nil, nil)
	if err != nil {
		return 0, err
	}
	depth, _ := strconv.Atoi(r.Node.Attribute("depth"))
	return depth, nil
}

// StackGet issues stack_get for the given depth, or the whole stack
// when depth is negative.
func (s *Session) StackGet(ctx context.Context, depth int) ([]StackFrame, error) {
	var args map[string]string
	if depth >= 0 {
		args = map[string]string{"d": strconv.Itoa(depth)}
	}
	r, err := s.conn.Send(ctx, "stack_get", args, nil)
	if err != nil {
		return nil, err
	}
	return ParseStackFrames(r), nil
}

// ContextNames issues context_names for the given stack depth.
func (s *Session) ContextNames(ctx context.Context, depth int) ([]Context, error) {
	r, err := s.conn.Send(ctx, "context_names", map[string]string{"d": strconv.Itoa(depth)}, nil)
	if err != nil {
		return nil, err
	}
	return ParseContexts(r), nil
}

// ContextGet issues context_get, returning every property in the named
// context at the given stack depth.
func (s *Session) ContextGet(ctx context.Context, depth, contextID int) ([]Property, error) {
	args := map[string]string{
		"d": strconv.Itoa(depth),
		"c": strconv.Itoa(contextID),
	}
	r, err := s.conn.Send(ctx, "context_get", args, nil)
	if err != nil {
		return nil, err
	}
	return ParseProperties(r), nil
}

// PropertyGetOptions bounds a property_get request. Zero values are
// omitted from the wire command, letting the engine fall back to its
// negotiated feature defaults.
type PropertyGetOptions struct {
	ContextID int
	Depth     int
	MaxData   int
	Page      int
}

// PropertyGet issues property_get for the named variable (fullname
// syntax, e.g. "$foo->bar[0]").
func (s *Session) PropertyGet(ctx context.Context, name string, opts PropertyGetOptions) (Property, error) {
	args := map[string]string{"n": name}
	if opts.ContextID != 0 {
		args["c"] = strconv.Itoa(opts.ContextID)
	}
	if opts.Depth != 0 {
		args["d"] = strconv.Itoa(opts.Depth)
	}
	if opts.MaxData != 0 {
		args["m"] = strconv.Itoa(opts.MaxData)
	}
	if opts.Page != 0 {
		args["p"] = strconv.Itoa(opts.Page)
	}
	r, err := s.conn.Send(ctx, "property_get", args, nil)
	if err != nil {
		return Property{}, err
	}
	prop, _ := ParseProperty(r)
	return prop, nil
}

// PropertySet issues property_set, assigning value (sent as base64
// command data) to the named variable.
func (s *Session) PropertySet(ctx context.Context, name string, contextID, depth int, value []byte) (bool, error) {
	args := map[string]string{
		"n": name,
		"c": strconv.Itoa(contextID),
		"d": strconv.Itoa(depth),
	}
	r, err := s.conn.Send(ctx, "property_set", args, value)
	if err != nil {
		return false, err
	}
	return r.Success, nil
}

// Eval issues eval at the given stack depth. An engine error is
// reported as an [*EvalError] rather than a plain [*EngineError], so
// callers can distinguish a bad expression from a bad command.
func (s *Session) Eval(ctx context.Context, expression string, depth int) (Property, error) {
	args := map[string]string{"d": strconv.Itoa(depth)}
	r, err := s.conn.Send(ctx, "eval", args, []byte(expression))
	if err != nil {
		var engErr *EngineError
		if asEngineError(err, &engErr) {
			return Property{}, &EvalError{EngineError: engErr}
		}
		return Property{}, err
	}
	prop, _ := ParseProperty(r)
	return prop, nil
}

func asEngineError(err error, target **EngineError) bool {
	if e, ok := err.(*EngineError); ok {
		*target = e
		return true
	}
	return false
}

// Source issues the source command, returning the requested file's
// text, optionally bounded to [beginLine, endLine] (pass 0, 0 for the
// whole file).
func (s *Session) Source(ctx context.Context, file string, beginLine, endLine int) (string, error) {
	args := map[string]string{"f": NormalizeFileURI(file)}
	if beginLine > 0 {
		args["b"] = strconv.Itoa(beginLine)
	}
	if endLine > 0 {
		args["e"] = strconv.Itoa(endLine)
	}
	r, err := s.conn.Send(ctx, "source", args, nil)
	if err != nil {
		return "", err
	}
	return decodeText(r.Node), nil
}
