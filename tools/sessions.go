// SPDX-License-Identifier: GPL-3.0-or-later

package tools

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kpanuragh/xdebug-mcp"
)

// SessionInfo summarizes a [dbgp.Session] for a client.
type SessionInfo struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	File      string    `json:"file,omitempty"`
	Line      int       `json:"line,omitempty"`
	IDEKey    string    `json:"ide_key,omitempty"`
	Language  string    `json:"language,omitempty"`
	StartTime time.Time `json:"start_time"`
}

func describeSession(s *dbgp.Session) SessionInfo {
	file, line := s.Location()
	info := SessionInfo{
		ID:        s.ID,
		Status:    string(s.Status()),
		File:      file,
		Line:      line,
		StartTime: s.StartTime(),
	}
	if rec := s.InitRecord(); rec != nil {
		info.IDEKey = rec.IDEKey
		info.Language = rec.Language
	}
	return info
}

func handleSessionList(_ context.Context, d *Dispatcher, _ json.RawMessage) (any, error) {
	sessions := d.Manager.Sessions()
	out := make([]SessionInfo, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, describeSession(s))
	}
	return out, nil
}

type sessionIDParams struct {
	SessionID string `json:"session_id"`
}

func handleSessionState(_ context.Context, d *Dispatcher, params json.RawMessage) (any, error) {
	p, err := decodeParams[sessionIDParams](params)
	if err != nil {
		return nil, err
	}
	sess, err := d.resolveSession(p.SessionID)
	if err != nil {
		return nil, err
	}
	return describeSession(sess), nil
}

func handleSessionSetActive(_ context.Context, d *Dispatcher, params json.RawMessage) (any, error) {
	p, err := decodeParams[sessionIDParams](params)
	if err != nil {
		return nil, err
	}
	if p.SessionID == "" {
		return nil, &dbgp.UsageError{Message: "session_id is required"}
	}
	if err := d.Manager.SetActive(p.SessionID); err != nil {
		return nil, err
	}
	return map[string]string{"active_session_id": p.SessionID}, nil
}

func handleSessionClose(_ context.Context, d *Dispatcher, params json.RawMessage) (any, error) {
	p, err := decodeParams[sessionIDParams](params)
	if err != nil {
		return nil, err
	}
	sess, err := d.resolveSession(p.SessionID)
	if err != nil {
		return nil, err
	}
	if err := d.Manager.CloseSession(sess.ID); err != nil {
		return nil, err
	}
	return map[string]string{"closed_session_id": sess.ID}, nil
}
