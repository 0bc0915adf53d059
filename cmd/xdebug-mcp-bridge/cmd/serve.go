// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kpanuragh/xdebug-mcp/cmd/xdebug-mcp-bridge/bridge"
	"github.com/kpanuragh/xdebug-mcp"
	"github.com/kpanuragh/xdebug-mcp/errclass"
	"github.com/kpanuragh/xdebug-mcp/pathmap"
)

func init() {
	defaults := dbgp.NewConfig()

	RootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen-host", defaults.ListenHost, "address the DBGp engine listener binds to")
	serveCmd.Flags().Int("listen-port", defaults.ListenPort, "TCP port the DBGp engine listener binds to")
	serveCmd.Flags().Duration("command-timeout", defaults.CommandTimeout, "how long to wait for an engine to answer a command")
	serveCmd.Flags().Int("max-depth", defaults.MaxDepth, "max_depth feature value advertised to engines")
	serveCmd.Flags().Int("max-children", defaults.MaxChildren, "max_children feature value advertised to engines")
	serveCmd.Flags().Int("max-data", defaults.MaxData, "max_data feature value advertised to engines")
	serveCmd.Flags().String("log-level", defaults.LogLevel, "minimum log level: debug, info, warn, or error")
	serveCmd.Flags().Bool("interactive", false, "run a line-oriented operator console on stdin/stdout instead of the JSON-RPC tool bridge")
	serveCmd.Flags().String("engine-prefix", "", "engine-side filesystem root to translate (requires --host-prefix)")
	serveCmd.Flags().String("host-prefix", "", "client-side filesystem root corresponding to --engine-prefix")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Listen for DBGp engine connections and bridge tool calls over stdio",
	RunE:  runServe,
}

func runServe(c *cobra.Command, args []string) error {
	cfg := dbgp.NewConfig()
	cfg.ListenHost = viper.GetString("listen-host")
	cfg.ListenPort = viper.GetInt("listen-port")
	if d := viper.GetDuration("command-timeout"); d > 0 {
		cfg.CommandTimeout = d
	}
	cfg.MaxDepth = viper.GetInt("max-depth")
	cfg.MaxChildren = viper.GetInt("max-children")
	cfg.MaxData = viper.GetInt("max-data")
	cfg.LogLevel = viper.GetString("log-level")
	cfg.ErrClassifier = dbgp.ErrClassifierFunc(errclass.New)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)}))

	paths := pathmap.Default()
	enginePrefix := viper.GetString("engine-prefix")
	hostPrefix := viper.GetString("host-prefix")
	if enginePrefix != "" || hostPrefix != "" {
		paths = pathmap.PrefixMapper{EnginePrefix: enginePrefix, HostPrefix: hostPrefix}
	}

	addr := net.JoinHostPort(cfg.ListenHost, strconv.Itoa(cfg.ListenPort))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("xdebug-mcp-bridge: failed to bind %s: %w", addr, err)
	}

	color.Green("xdebug-mcp-bridge: listening for DBGp engines on %s", addr)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app := bridge.New(cfg, logger, paths)

	serveErrCh := make(chan error, 1)
	go func() { serveErrCh <- app.Manager.Serve(ctx, ln) }()

	if viper.GetBool("interactive") {
		app.RunInteractiveConsole(ctx, os.Stdin, os.Stdout)
	} else {
		if err := app.RunStdioBridge(ctx, os.Stdin, os.Stdout); err != nil {
			cancel()
			<-serveErrCh
			return err
		}
	}

	cancel()
	return <-serveErrCh
}

func parseLogLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

