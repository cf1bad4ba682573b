// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Juno Reyes, Kinewave

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kinewave/joltctl/pkg/jolt"
)

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Show how many log records are stored",
	Long: `Query the Joltbox for the number of log records held in EEPROM.

The EEPROM holds at most 102 records; once full, new shock events are
dropped until the log memory is erased with 'joltctl reset'.

Exit codes:
  0 - Count retrieved
  1 - Device or protocol error
  2 - Connection error`,
	RunE: runCount,
}

func init() {
	rootCmd.AddCommand(countCmd)
}

func runCount(cmd *cobra.Command, args []string) error {
	s, _, err := openSession()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer s.Close()

	count, err := s.LogCount(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("Number of logs stored in the EEPROM: %d\n", count)
	if count == jolt.MaxStoredLogs {
		fmt.Println("Log memory is full. New events are dropped until it is erased.")
	}
	return nil
}
