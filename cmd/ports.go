// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Juno Reyes, Kinewave

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.bug.st/serial"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List serial ports on this machine",
	Long: `List the serial port device names the operating system reports.

Useful for finding the right --port value once the Joltbox is plugged in.

Exit codes:
  0 - At least one port found
  1 - No serial ports found`,
	RunE: runPorts,
}

func init() {
	rootCmd.AddCommand(portsCmd)
}

func runPorts(cmd *cobra.Command, args []string) error {
	ports, err := serial.GetPortsList()
	if err != nil {
		return fmt.Errorf("failed to enumerate serial ports: %v", err)
	}

	if len(ports) == 0 {
		fmt.Println("No serial ports found.")
		os.Exit(1)
	}

	for _, p := range ports {
		fmt.Println(p)
	}
	return nil
}
