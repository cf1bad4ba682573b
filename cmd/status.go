// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Juno Reyes, Kinewave

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the EEPROM control register",
	Long: `Query the Joltbox control register and display its flag bits.

The register packs four state machine flags into the low nibble: whether
an EEPROM reset or a send is pending, whether the device is in config
mode, and the start/stop mode bit.

Exit codes:
  0 - Register retrieved
  1 - Device or protocol error
  2 - Connection error`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	s, connInfo, err := openSession()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer s.Close()

	reg, err := s.ControlRegister(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("Joltctl - Device Status\n")
	fmt.Printf("Connection: %s\n\n", connInfo)
	fmt.Printf("Control register: %s\n", reg)
	fmt.Println(renderControlTable(reg))
	return nil
}
