// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Juno Reyes, Kinewave

package cmd

import (
	"time"

	"github.com/spf13/cobra"
)

var (
	// Serial connection flags
	portName string
	baudRate int

	// WebSocket connection flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// Behavior flags
	configPath      string
	logLevel        string
	exchangeTimeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "joltctl",
	Short: "Joltbox Shock Log Retriever",
	Long: `Joltctl - A CLI tool for retrieving shock and vibration logs from Joltbox
data loggers.

A Joltbox records acceleration events to EEPROM when the accelerometer
trips a threshold interrupt. Each log record holds 0.96 seconds of X/Y/Z
samples at 10 ms intervals, along with the interrupt source register and
a timestamp. Joltctl speaks the device's four-command serial protocol to
count, fetch, and erase those records, and to inspect the control
register.

Connection modes:
  Serial:    --port /dev/ttyUSB0 [--baud 115200]
  WebSocket: --url ws://host/path [--username user]

Connection defaults can be kept in a TOML file at ~/.config/joltctl.toml
(see --config). Command-line flags always win over the file.

For WebSocket authentication, the password is read from the JOLTCTL_PASSWORD
environment variable, or prompted interactively if not set. The --password
flag is intentionally not provided to avoid leaking credentials in shell history.`,
	Version:           "1.2.0",
	PersistentPreRunE: loadDefaults,
}

func init() {
	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 115200, "Baud rate (serial only)")

	// WebSocket connection flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	// Behavior flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.config/joltctl.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().DurationVar(&exchangeTimeout, "timeout", 5*time.Second, "Response deadline per command exchange")
}

// loadDefaults fills unset connection flags from the config file and sets
// up logging before any subcommand runs. The flag set must come from the
// running command: naming rootCmd here creates an initialization cycle
// with the PersistentPreRunE field.
func loadDefaults(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	flags := cmd.Root().PersistentFlags()
	applyConfig(flags, cfg)
	initLogging(flags.Changed("log-level"), cfg.Log.Level)
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
