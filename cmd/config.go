// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Juno Reyes, Kinewave

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"
)

// fileConfig mirrors the TOML config file layout:
//
//	[connection]
//	port = "/dev/ttyUSB0"
//	baud = 115200
//	url = "ws://bridge.local/joltbox"
//	username = "ops"
//	no_ssl_verify = false
//
//	[log]
//	level = "info"
type fileConfig struct {
	Connection connectionConfig `toml:"connection"`
	Log        logConfig        `toml:"log"`
}

type connectionConfig struct {
	Port        string `toml:"port"`
	Baud        int    `toml:"baud"`
	URL         string `toml:"url"`
	Username    string `toml:"username"`
	NoSSLVerify bool   `toml:"no_ssl_verify"`
}

type logConfig struct {
	Level string `toml:"level"`
}

// defaultConfigPath returns ~/.config/joltctl.toml, or "" when the home
// directory cannot be determined.
func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "joltctl.toml")
}

// loadConfig reads the TOML config file. A missing file is only an error
// when the path was given explicitly.
func loadConfig(path string) (fileConfig, error) {
	var cfg fileConfig

	explicit := path != ""
	if !explicit {
		path = defaultConfigPath()
	}
	if path == "" {
		return cfg, nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if explicit {
			return cfg, fmt.Errorf("config file not found: %s", path)
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %v", path, err)
	}
	return cfg, nil
}

// applyConfig copies config file values into every connection flag the
// user left unset, so flags keep precedence over the file.
func applyConfig(flags *pflag.FlagSet, cfg fileConfig) {
	if !flags.Changed("port") && cfg.Connection.Port != "" {
		portName = cfg.Connection.Port
	}
	if !flags.Changed("baud") && cfg.Connection.Baud != 0 {
		baudRate = cfg.Connection.Baud
	}
	if !flags.Changed("url") && cfg.Connection.URL != "" {
		wsURL = cfg.Connection.URL
	}
	if !flags.Changed("username") && cfg.Connection.Username != "" {
		wsUsername = cfg.Connection.Username
	}
	if !flags.Changed("no-ssl-verify") && cfg.Connection.NoSSLVerify {
		wsNoSSLVerify = true
	}
}
