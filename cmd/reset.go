// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Juno Reyes, Kinewave

package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kinewave/joltctl/pkg/jolt"
)

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Erase the EEPROM log memory",
	Long: `Ask the Joltbox to erase every stored log record.

The device acknowledges a successful erase with 'K'. Any other reply is
reported as a failure. Erasing cannot be undone; pass --yes to skip the
confirmation prompt.

Exit codes:
  0 - EEPROM erased
  1 - Device did not acknowledge the erase
  2 - Connection error`,
	RunE: runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "Skip the confirmation prompt")
}

func runReset(cmd *cobra.Command, args []string) error {
	if !resetYes && !confirmReset() {
		fmt.Println("Aborted.")
		return nil
	}

	s, _, err := openSession()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer s.Close()

	if err := s.Reset(cmd.Context()); err != nil {
		var resetErr *jolt.ResetFailedError
		if errors.As(err, &resetErr) {
			fmt.Println("EEPROM reset failed.")
			fmt.Fprintf(os.Stderr, "%v\n", resetErr)
			os.Exit(1)
		}
		return err
	}

	fmt.Println("EEPROM log memory has been erased.")
	return nil
}

// confirmReset prompts on stderr so the answer does not pollute
// redirected output.
func confirmReset() bool {
	fmt.Fprint(os.Stderr, "This erases every stored log record. Continue? [y/N] ")
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
