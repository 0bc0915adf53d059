// SPDX-License-Identifier: GPL-3.0-or-later

// Package tools implements the client-facing tool-invocation surface: a
// named operation per DBGp capability, each with a typed JSON input and
// output, dispatched by name from the [rpcio] transport. Breakpoint
// requests are routed to the active session when one exists, or to the
// [dbgp.Manager]'s pending-breakpoint store otherwise.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kpanuragh/xdebug-mcp"
	"github.com/kpanuragh/xdebug-mcp/pathmap"
)

// ErrUnknownTool is returned by [Dispatcher.Dispatch] for a method name
// it does not recognize.
var ErrUnknownTool = errors.New("tools: unknown tool")

// Dispatcher routes named tool invocations to a [dbgp.Manager].
type Dispatcher struct {
	Manager *dbgp.Manager
	Paths   pathmap.Translator
}

// NewDispatcher returns a [*Dispatcher] bound to manager. paths may be
// nil, in which case [pathmap.Default] is used.
func NewDispatcher(manager *dbgp.Manager, paths pathmap.Translator) *Dispatcher {
	if paths == nil {
		paths = pathmap.Default()
	}
	return &Dispatcher{Manager: manager, Paths: paths}
}

// Dispatch decodes params for the named tool, runs it, and returns a
// JSON-marshalable result. An error returned here is always a
// structured failure (a missing session, a bad argument, an engine
// rejection) rather than a panic: callers translate it into a JSON-RPC
// error response instead of crashing the bridge process.
func (d *Dispatcher) Dispatch(ctx context.Context, method string, params json.RawMessage) (any, error) {
	handler, ok := handlers[method]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, method)
	}
	return handler(ctx, d, params)
}

type handlerFunc func(ctx context.Context, d *Dispatcher, params json.RawMessage) (any, error)

var handlers = map[string]handlerFunc{
	"session_list":       handleSessionList,
	"session_state":      handleSessionState,
	"session_set_active": handleSessionSetActive,
	"session_close":      handleSessionClose,

	"breakpoint_set":    handleBreakpointSet,
	"breakpoint_remove": handleBreakpointRemove,
	"breakpoint_update": handleBreakpointUpdate,
	"breakpoint_list":   handleBreakpointList,

	"continue":   handleExec("run"),
	"step_into":  handleExec("step_into"),
	"step_over":  handleExec("step_over"),
	"step_out":   handleExec("step_out"),
	"stop":       handleExec("stop"),
	"detach":     handleExec("detach"),

	"stack":        handleStack,
	"contexts":     handleContexts,
	"variables":    handleVariables,
	"variable":     handleVariable,
	"set_variable": handleSetVariable,
	"eval":         handleEval,
	"source":       handleSource,

	"typemap_get":     handleTypeMap,
	"redirect_stdin":  handleRedirectStdin,
	"redirect_stdout": handleRedirectStdout,
	"redirect_stderr": handleRedirectStderr,
}

func decodeParams[T any](params json.RawMessage) (T, error) {
	var v T
	if len(params) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(params, &v); err != nil {
		var zero T
		return zero, &dbgp.UsageError{Message: fmt.Sprintf("invalid parameters: %s", err)}
	}
	return v, nil
}

// resolveSession returns the named session, or the manager's elected
// active session when sessionID is empty.
func (d *Dispatcher) resolveSession(sessionID string) (*dbgp.Session, error) {
	if sessionID != "" {
		s, ok := d.Manager.ByID(sessionID)
		if !ok {
			return nil, dbgp.ErrNoSession
		}
		return s, nil
	}
	return d.Manager.Active()
}
