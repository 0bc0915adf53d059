// SPDX-License-Identifier: GPL-3.0-or-later

package tools

import (
	"context"
	"encoding/json"
)

func handleTypeMap(ctx context.Context, d *Dispatcher, params json.RawMessage) (any, error) {
	p, err := decodeParams[sessionIDParams](params)
	if err != nil {
		return nil, err
	}
	sess, err := d.resolveSession(p.SessionID)
	if err != nil {
		return nil, err
	}
	return sess.TypeMap(ctx)
}

type redirectStdinParams struct {
	SessionID string `json:"session_id"`
	Mode      string `json:"mode"`
}

func handleRedirectStdin(ctx context.Context, d *Dispatcher, params json.RawMessage) (any, error) {
	p, err := decodeParams[redirectStdinParams](params)
	if err != nil {
		return nil, err
	}
	sess, err := d.resolveSession(p.SessionID)
	if err != nil {
		return nil, err
	}
	if p.Mode == "" {
		p.Mode = "1"
	}
	if err := sess.RedirectStdin(ctx, p.Mode); err != nil {
		return nil, err
	}
	return map[string]bool{"success": true}, nil
}

func handleRedirectStdout(ctx context.Context, d *Dispatcher, params json.RawMessage) (any, error) {
	p, err := decodeParams[redirectStdinParams](params)
	if err != nil {
		return nil, err
	}
	sess, err := d.resolveSession(p.SessionID)
	if err != nil {
		return nil, err
	}
	if p.Mode == "" {
		p.Mode = "1"
	}
	if err := sess.RedirectStdout(ctx, p.Mode); err != nil {
		return nil, err
	}
	return map[string]bool{"success": true}, nil
}

func handleRedirectStderr(ctx context.Context, d *Dispatcher, params json.RawMessage) (any, error) {
	p, err := decodeParams[redirectStdinParams](params)
	if err != nil {
		return nil, err
	}
	sess, err := d.resolveSession(p.SessionID)
	if err != nil {
		return nil, err
	}
	if p.Mode == "" {
		p.Mode = "1"
	}
	if err := sess.RedirectStderr(ctx, p.Mode); err != nil {
		return nil, err
	}
	return map[string]bool{"success": true}, nil
}
