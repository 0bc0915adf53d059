// SPDX-License-Identifier: GPL-3.0-or-later

package tools

import (
	"context"
	"encoding/json"

	"github.com/kpanuragh/xdebug-mcp"
)

type stackParams struct {
	SessionID string `json:"session_id"`
	Depth     int    `json:"depth"`
}

func handleStack(ctx context.Context, d *Dispatcher, params json.RawMessage) (any, error) {
	p, err := decodeParams[stackParams](params)
	if err != nil {
		return nil, err
	}
	sess, err := d.resolveSession(p.SessionID)
	if err != nil {
		return nil, err
	}
	if !hasField(params, "depth") {
		p.Depth = -1
	}
	frames, err := sess.StackGet(ctx, p.Depth)
	if err != nil {
		return nil, err
	}
	for i := range frames {
		frames[i].Filename = d.Paths.ToHost(frames[i].Filename)
	}
	return frames, nil
}

func hasField(raw json.RawMessage, name string) bool {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return false
	}
	_, ok := m[name]
	return ok
}

type contextsParams struct {
	SessionID string `json:"session_id"`
	Depth     int    `json:"depth"`
}

func handleContexts(ctx context.Context, d *Dispatcher, params json.RawMessage) (any, error) {
	p, err := decodeParams[contextsParams](params)
	if err != nil {
		return nil, err
	}
	sess, err := d.resolveSession(p.SessionID)
	if err != nil {
		return nil, err
	}
	return sess.ContextNames(ctx, p.Depth)
}

type variablesParams struct {
	SessionID string `json:"session_id"`
	Depth     int    `json:"depth"`
	ContextID int    `json:"context_id"`
}

func handleVariables(ctx context.Context, d *Dispatcher, params json.RawMessage) (any, error) {
	p, err := decodeParams[variablesParams](params)
	if err != nil {
		return nil, err
	}
	sess, err := d.resolveSession(p.SessionID)
	if err != nil {
		return nil, err
	}
	return sess.ContextGet(ctx, p.Depth, p.ContextID)
}

type variableParams struct {
	SessionID string `json:"session_id"`
	Name      string `json:"name"`
	Depth     int    `json:"depth"`
	ContextID int    `json:"context_id"`
	Page      int    `json:"page"`
}

func handleVariable(ctx context.Context, d *Dispatcher, params json.RawMessage) (any, error) {
	p, err := decodeParams[variableParams](params)
	if err != nil {
		return nil, err
	}
	if p.Name == "" {
		return nil, &dbgp.UsageError{Message: "name is required"}
	}
	sess, err := d.resolveSession(p.SessionID)
	if err != nil {
		return nil, err
	}
	return sess.PropertyGet(ctx, p.Name, dbgp.PropertyGetOptions{
		ContextID: p.ContextID, Depth: p.Depth, Page: p.Page,
	})
}

type setVariableParams struct {
	SessionID string `json:"session_id"`
	Name      string `json:"name"`
	Value     string `json:"value"`
	Depth     int    `json:"depth"`
	ContextID int    `json:"context_id"`
}

func handleSetVariable(ctx context.Context, d *Dispatcher, params json.RawMessage) (any, error) {
	p, err := decodeParams[setVariableParams](params)
	if err != nil {
		return nil, err
	}
	if p.Name == "" {
		return nil, &dbgp.UsageError{Message: "name is required"}
	}
	sess, err := d.resolveSession(p.SessionID)
	if err != nil {
		return nil, err
	}
	ok, err := sess.PropertySet(ctx, p.Name, p.ContextID, p.Depth, []byte(p.Value))
	if err != nil {
		return nil, err
	}
	return map[string]bool{"success": ok}, nil
}

type evalParams struct {
	SessionID  string `json:"session_id"`
	Expression string `json:"expression"`
	Depth      int    `json:"depth"`
}

func handleEval(ctx context.Context, d *Dispatcher, params json.RawMessage) (any, error) {
	p, err := decodeParams[evalParams](params)
	if err != nil {
		return nil, err
	}
	if p.Expression == "" {
		return nil, &dbgp.UsageError{Message: "expression is required"}
	}
	sess, err := d.resolveSession(p.SessionID)
	if err != nil {
		return nil, err
	}
	return sess.Eval(ctx, p.Expression, p.Depth)
}

type sourceParams struct {
	SessionID string `json:"session_id"`
	File      string `json:"file"`
	BeginLine int    `json:"begin_line"`
	EndLine   int    `json:"end_line"`
}

func handleSource(ctx context.Context, d *Dispatcher, params json.RawMessage) (any, error) {
	p, err := decodeParams[sourceParams](params)
	if err != nil {
		return nil, err
	}
	if p.File == "" {
		return nil, &dbgp.UsageError{Message: "file is required"}
	}
	sess, err := d.resolveSession(p.SessionID)
	if err != nil {
		return nil, err
	}
	text, err := sess.Source(ctx, d.Paths.ToContainer(p.File), p.BeginLine, p.EndLine)
	if err != nil {
		return nil, err
	}
	return map[string]string{"content": text}, nil
}
