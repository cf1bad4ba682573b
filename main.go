// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Juno Reyes, Kinewave
//
// Joltctl - Joltbox Shock Log Retriever
//
// A CLI tool for fetching, decoding, and erasing accelerometer shock
// logs stored in a Joltbox datalogger's EEPROM.

package main

import (
	"os"

	"github.com/kinewave/joltctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
