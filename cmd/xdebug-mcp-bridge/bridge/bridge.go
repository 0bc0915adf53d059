// SPDX-License-Identifier: GPL-3.0-or-later

// Package bridge wires a [dbgp.Manager] to the client-facing
// tool-invocation transport: the JSON-RPC stdio loop in the common
// case, or the interactive operator console when requested explicitly.
package bridge

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fatih/color"

	"github.com/kpanuragh/xdebug-mcp"
	"github.com/kpanuragh/xdebug-mcp/pathmap"
	"github.com/kpanuragh/xdebug-mcp/rpcio"
	"github.com/kpanuragh/xdebug-mcp/tools"
)

// App bundles everything one invocation of `serve` needs: the session
// manager, the tool dispatcher sitting on top of it, and the logger
// shared across both.
type App struct {
	Manager    *dbgp.Manager
	Dispatcher *tools.Dispatcher
	Log        *slog.Logger
}

// New builds an [*App] around cfg, logging through logger and
// translating paths through paths.
func New(cfg *dbgp.Config, logger *slog.Logger, paths pathmap.Translator) *App {
	manager := dbgp.NewManager(cfg, logger, dbgp.ManagerEvents{
		OnSessionCreated: func(s *dbgp.Session) {
			color.Green("xdebug-mcp-bridge: session %s attached", s.ID)
		},
		OnSessionClosed: func(s *dbgp.Session) {
			color.Yellow("xdebug-mcp-bridge: session %s closed", s.ID)
		},
		OnAcceptError: func(err error) {
			logger.Info("xdebug-mcp-bridge: accept error", "err", err)
		},
	})
	return &App{
		Manager:    manager,
		Dispatcher: tools.NewDispatcher(manager, paths),
		Log:        logger,
	}
}

// RunStdioBridge reads JSON-RPC requests from r, dispatches each to the
// tool surface, and writes the response to w. It returns when r reaches
// EOF or ctx is cancelled.
func (a *App) RunStdioBridge(ctx context.Context, r io.Reader, w io.Writer) error {
	reader := rpcio.NewReader(r)
	writer := rpcio.NewWriter(w)

	for {
		if ctx.Err() != nil {
			return nil
		}

		req, err := reader.ReadRequest()
		if errors.Is(err, rpcio.ErrBlankLine) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			_ = writer.WriteResponse(rpcio.NewError(nil, rpcio.CodeParseError, err.Error()))
			continue
		}

		resp := a.handleRequest(ctx, req)
		if resp == nil {
			continue // notification: no reply expected
		}
		if err := writer.WriteResponse(resp); err != nil {
			return err
		}
	}
}

func (a *App) handleRequest(ctx context.Context, req *rpcio.Request) *rpcio.Response {
	result, err := a.Dispatcher.Dispatch(ctx, req.Method, req.Params)
	if !req.HasID() {
		return nil
	}
	if err != nil {
		return rpcio.NewError(req.ID, toolErrorCode(err), err.Error())
	}
	resp, marshalErr := rpcio.NewResult(req.ID, result)
	if marshalErr != nil {
		return rpcio.NewError(req.ID, rpcio.CodeInternalError, marshalErr.Error())
	}
	return resp
}

// toolErrorCode maps a dbgp error into the closest standard JSON-RPC
// error code: malformed or missing arguments are the caller's fault, an
// unknown tool name is method-not-found, and everything else is reported
// as an internal failure.
func toolErrorCode(err error) int {
	var usageErr *dbgp.UsageError
	if errors.As(err, &usageErr) {
		return rpcio.CodeInvalidParams
	}
	if errors.Is(err, tools.ErrUnknownTool) {
		return rpcio.CodeMethodNotFound
	}
	return rpcio.CodeInternalError
}

// RunInteractiveConsole runs a minimal line-oriented operator console on
// r/w instead of the JSON-RPC bridge: "sessions" lists live sessions,
// "disconnect <id>" force-closes a session, and "quit" or "exit" ends the
// console. No console command changes the logger's level. It blocks
// until ctx is cancelled or r reaches EOF.
func (a *App) RunInteractiveConsole(ctx context.Context, r io.Reader, w io.Writer) {
	fmt.Fprintln(w, "xdebug-mcp-bridge operator console (sessions, disconnect <id>, quit)")

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		fmt.Fprint(w, "(xdebug-mcp) ")
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if a.runConsoleCommand(line, w) {
				return
			}
		}
	}
}

// runConsoleCommand executes one console line, returning true if the
// console should exit.
func (a *App) runConsoleCommand(line string, w io.Writer) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch fields[0] {
	case "quit", "exit":
		return true
	case "sessions":
		for _, s := range a.Manager.Sessions() {
			file, lineno := s.Location()
			fmt.Fprintf(w, "%s\tstatus=%s\t%s:%d\n", s.ID, s.Status(), file, lineno)
		}
	case "disconnect":
		if len(fields) < 2 {
			fmt.Fprintln(w, "usage: disconnect <session-id>")
			return false
		}
		if err := a.Manager.CloseSession(fields[1]); err != nil {
			fmt.Fprintf(w, "disconnect failed: %v\n", err)
		}
	default:
		fmt.Fprintf(w, "unknown command: %s\n", fields[0])
	}
	return false
}
