// SPDX-License-Identifier: GPL-3.0-or-later

package tools

import (
	"context"
	"encoding/json"

	"github.com/kpanuragh/xdebug-mcp"
)

// ExecOutcome reports the session's state after an execution command.
type ExecOutcome struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
	File      string `json:"file,omitempty"`
	Line      int    `json:"line,omitempty"`
}

// handleExec returns a handler that issues the named execution command
// (run, step_into, step_over, step_out, stop, or detach) against the
// resolved session.
func handleExec(command string) handlerFunc {
	return func(ctx context.Context, d *Dispatcher, params json.RawMessage) (any, error) {
		p, err := decodeParams[sessionIDParams](params)
		if err != nil {
			return nil, err
		}
		sess, err := d.resolveSession(p.SessionID)
		if err != nil {
			return nil, err
		}

		var res dbgp.ExecResult
		switch command {
		case "run":
			res, err = sess.Run(ctx)
		case "step_into":
			res, err = sess.StepInto(ctx)
		case "step_over":
			res, err = sess.StepOver(ctx)
		case "step_out":
			res, err = sess.StepOut(ctx)
		case "stop":
			res, err = sess.Stop(ctx)
		case "detach":
			res, err = sess.Detach(ctx)
		}
		if err != nil {
			return nil, err
		}
		return ExecOutcome{SessionID: sess.ID, Status: string(res.Status), File: res.File, Line: res.Line}, nil
	}
}
