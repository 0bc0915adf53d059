// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// RootCmd is the base command when xdebug-mcp-bridge is called without a
// subcommand.
var RootCmd = &cobra.Command{
	Use:   "xdebug-mcp-bridge",
	Short: "Bridges an AI assistant's tool-invocation protocol to DBGp debugger engines",
}

// Execute runs the root command, exiting the process with status 1 on
// any fatal error. Called once from main.main.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("xdebug-mcp-bridge: %v", err))
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.xdebug-mcp-bridge.yaml)")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	viper.SetConfigName(".xdebug-mcp-bridge")
	viper.AddConfigPath("$HOME")
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	viper.BindPFlag("listen-host", serveCmd.Flags().Lookup("listen-host"))
	viper.BindPFlag("listen-port", serveCmd.Flags().Lookup("listen-port"))
	viper.BindPFlag("command-timeout", serveCmd.Flags().Lookup("command-timeout"))
	viper.BindPFlag("max-depth", serveCmd.Flags().Lookup("max-depth"))
	viper.BindPFlag("max-children", serveCmd.Flags().Lookup("max-children"))
	viper.BindPFlag("max-data", serveCmd.Flags().Lookup("max-data"))
	viper.BindPFlag("log-level", serveCmd.Flags().Lookup("log-level"))
	viper.BindPFlag("interactive", serveCmd.Flags().Lookup("interactive"))
	viper.BindPFlag("engine-prefix", serveCmd.Flags().Lookup("engine-prefix"))
	viper.BindPFlag("host-prefix", serveCmd.Flags().Lookup("host-prefix"))

	viper.RegisterAlias("listen_host", "listen-host")
	viper.RegisterAlias("listen_port", "listen-port")
	viper.RegisterAlias("command_timeout", "command-timeout")
	viper.RegisterAlias("max_depth", "max-depth")
	viper.RegisterAlias("max_children", "max-children")
	viper.RegisterAlias("max_data", "max-data")
	viper.RegisterAlias("log_level", "log-level")
	viper.RegisterAlias("engine_prefix", "engine-prefix")
	viper.RegisterAlias("host_prefix", "host-prefix")

	if err := viper.ReadInConfig(); err == nil {
		color.Yellow("xdebug-mcp-bridge: using config file %v", viper.ConfigFileUsed())
	}
}
