// SPDX-License-Identifier: GPL-3.0-or-later

// Package dbgp implements a DBGp protocol engine and session multiplexer.
//
// It accepts TCP connections from script-debugger engines speaking the
// DBGp wire protocol (length-prefixed XML over a socket, one outstanding
// command per connection), tracks one [Session] per connection, and lets
// a caller drive many concurrent sessions through a single [Manager].
//
// # Core Abstraction
//
// Small building blocks share a single composition interface:
//
//	type Func[A, B any] interface {
//		Call(ctx context.Context, input A) (B, error)
//	}
//
// [Manager.Serve] uses [Compose2] to build the per-connection accept
// pipeline: an [*ObserveConnFunc] wraps the freshly accepted socket for
// I/O logging, then a [*CancelWatchFunc] binds the connection's lifetime
// to the server's context so shutdown closes every open engine socket
// immediately.
//
// # Available Components
//
// Wire-level:
//   - [FrameDecoder]: decodes the `<length>\x00<xml>\x00` frame stream
//   - [Node]: a generic XML tree produced from a decoded frame
//   - [Connection]: owns an accepted socket, assigns transaction ids,
//     and correlates replies to the single outstanding command
//
// Session-level:
//   - [Session]: one attached engine, feature negotiation, and one
//     method per DBGp operation (breakpoints, stepping, stack and
//     context inspection, property get/set, eval, source)
//   - [PendingStore]: breakpoints requested before any engine has
//     attached, applied to every session as it registers
//
// Multiplexing:
//   - [Manager]: the accept loop, the live session table, and active
//     session election
//
// Observability and lifecycle:
//   - [ObserveConnFunc]: logs every read, write, close, and deadline
//     change on an accepted connection
//   - [CancelWatchFunc]: closes a connection when its context is done
//
// # Connection Lifecycle
//
// [Manager.Serve] accepts a [net.Conn], runs it through the observe and
// cancel-watch pipeline, and hands the result to [NewConnection], which
// owns it from then on. Closing a [Session] closes its [Connection],
// which closes the underlying socket.
//
// # Observability
//
// All components support structured logging via [SLogger] (compatible
// with [log/slog]). By default, logging is disabled; pass a real
// [*slog.Logger] to [NewManager], [NewConnection] or [NewSession] (or set
// the Logger field of [ObserveConnFunc]) to enable it. Error classification is
// configurable via [ErrClassifier]; by default a no-op classifier is
// used, and [DefaultErrClassifier] returns the empty string for every
// error so that wiring one in (e.g. the errclass subpackage's New) is
// opt-in.
//
// Structured log events come from two places:
//
//   - [ObserveConnFunc], which [Manager.Serve] applies to every accepted
//     socket, logs *Start/*Done pairs for read, write, and close, plus
//     deadline changes. These events carry localAddr, remoteAddr,
//     protocol, and t (timestamp); completion events (*Done) additionally
//     include t0 (start time), err, and errClass. Read, write, and
//     deadline events are emitted at [slog.LevelDebug]; close events use
//     [slog.LevelInfo].
//
//   - [Session] logs a feature_set the engine rejects during attach, and
//     [PendingStore] logs a pending breakpoint that fails to apply, both
//     at [slog.LevelInfo].
//
// No log event is emitted per DBGp command or per decoded frame.
//
// Use [NewSpanID] to generate a unique, time-ordered identifier (UUIDv7)
// for each session or command, then attach it to the logger with
// [*slog.Logger.With]. All log entries for that session or command will
// share the same spanID, enabling correlation across log lines.
//
// # Timeout and Context Philosophy
//
// Components are context-transparent: they never modify the context they
// receive. The caller controls timeouts externally via
// [context.WithTimeout] or [context.WithDeadline], and [Config]'s
// CommandTimeout bounds an individual command's wait for a reply.
//
// [CancelWatchFunc] binds a connection's lifetime to a context: when the
// context is done, the connection closes immediately, causing any
// in-progress read to fail. [Manager.Serve] always applies this to
// accepted connections so that cancelling the server's context tears
// down every session without waiting for individual command timeouts.
package dbgp
