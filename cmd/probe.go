// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Juno Reyes, Kinewave

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.bug.st/serial"

	"github.com/kinewave/joltctl/pkg/jolt"
)

var probeTimeout time.Duration

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Probe serial ports for Joltbox devices",
	Long: `Open every serial port on the system and send a log count query.

Ports that answer within the probe timeout are reported as Joltbox devices
along with their stored log count. Ports that cannot be opened (usually held
by another process) are skipped, and silent ports are listed as unanswered.

The probe writes a single query byte to each port. Other serial equipment on
this host will receive that byte; skip this command where a stray byte could
trigger something unrelated.

Examples:
  # Scan with the default per-port timeout
  joltctl probe

  # Slow adapter, give each port more time
  joltctl probe --probe-timeout 3s

Exit codes:
  0 - At least one Joltbox found
  1 - No Joltbox answered
  2 - Port enumeration failed`,
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
	probeCmd.Flags().DurationVar(&probeTimeout, "probe-timeout", time.Second, "Per-port response timeout")
}

func runProbe(cmd *cobra.Command, args []string) error {
	ports, err := serial.GetPortsList()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to enumerate serial ports: %v\n", err)
		os.Exit(2)
	}
	if len(ports) == 0 {
		fmt.Println("No serial ports found.")
		os.Exit(1)
	}

	fmt.Printf("Joltctl - Device Probe\n")
	fmt.Printf("Ports: %d\n", len(ports))
	fmt.Printf("Timeout: %s per port\n\n", probeTimeout)

	found := 0
	for _, name := range ports {
		fmt.Printf("%-24s ", name)

		conn, err := OpenSerialConnection(name, baudRate)
		if err != nil {
			fmt.Printf("skipped: %v\n", err)
			continue
		}

		s := jolt.NewSession(conn)
		s.Timeout = probeTimeout
		s.Logger = logger

		count, err := s.LogCount(cmd.Context())
		s.Close()
		if err != nil {
			fmt.Println("no answer")
			continue
		}

		fmt.Printf("Joltbox: %d log(s) stored\n", count)
		found++
	}

	fmt.Printf("\n--- Probe summary ---\n")
	fmt.Printf("Devices found: %d\n", found)

	if found == 0 {
		fmt.Println("No Joltbox answered. Check cabling and device power.")
		os.Exit(1)
	}
	return nil
}
