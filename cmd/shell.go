// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Juno Reyes, Kinewave

package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/abiosoft/ishell"
	"github.com/spf13/cobra"

	"github.com/kinewave/joltctl/pkg/jolt"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive command shell",
	Long: `Open an interactive shell against a connected Joltbox.

The shell holds one connection for its whole lifetime, so repeated
queries skip the per-command open/close cost. Commands mirror the
single-letter device protocol and are aliased accordingly:

  count  (n)  Number of stored log records
  status (c)  Control register flags
  fetch  (l)  Fetch a record by ID
  reset  (r)  Erase the EEPROM log memory
  stats       Session transfer statistics
  exit        Leave the shell

Exit codes:
  0 - Shell exited normally
  2 - Connection error`,
	RunE: runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

func runShell(cmd *cobra.Command, args []string) error {
	s, connInfo, err := openSession()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer s.Close()

	s.Stats = jolt.NewStatistics()
	ctx := cmd.Context()

	shell := ishell.New()
	shell.Println("Joltctl interactive shell")
	shell.Println("Connection:", connInfo)
	shell.Println("Type 'help' for commands, 'exit' to leave.")
	shell.SetPrompt("joltbox> ")

	shell.AddCmd(&ishell.Cmd{
		Name:    "count",
		Aliases: []string{"n"},
		Help:    "number of stored log records",
		Func: func(c *ishell.Context) {
			count, err := s.LogCount(ctx)
			if err != nil {
				c.Err(err)
				return
			}
			c.Printf("Number of logs stored in the EEPROM: %d\n", count)
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name:    "status",
		Aliases: []string{"c"},
		Help:    "control register flags",
		Func: func(c *ishell.Context) {
			reg, err := s.ControlRegister(ctx)
			if err != nil {
				c.Err(err)
				return
			}
			c.Print(jolt.FormatControlRegister(reg))
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name:    "fetch",
		Aliases: []string{"l"},
		Help:    "fetch a record: fetch LOG_ID",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("LOG_ID required"))
				return
			}
			id, err := strconv.ParseUint(c.Args[0], 10, 8)
			if err != nil {
				c.Err(fmt.Errorf("invalid LOG_ID %q: must be 0-255", c.Args[0]))
				return
			}

			// Pick up records stored since the last count query
			if s.KnownLogCount() <= uint8(id) {
				if _, err := s.LogCount(ctx); err != nil {
					c.Err(err)
					return
				}
			}

			rec, err := s.ReadLog(ctx, uint8(id))
			if err != nil {
				c.Err(err)
				return
			}
			c.Print(jolt.FormatRecord(rec))
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name:    "reset",
		Aliases: []string{"r"},
		Help:    "erase the EEPROM log memory",
		Func: func(c *ishell.Context) {
			c.Print("This erases every stored log record. Continue? [y/N] ")
			answer := c.ReadLine()
			if answer != "y" && answer != "yes" {
				c.Println("Aborted.")
				return
			}
			if err := s.Reset(ctx); err != nil {
				c.Println("EEPROM reset failed.")
				c.Err(err)
				return
			}
			c.Println("EEPROM log memory has been erased.")
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "stats",
		Help: "session transfer statistics",
		Func: func(c *ishell.Context) {
			s.Stats.CalculateRates()
			c.Print(s.Stats.String())
		},
	})

	shell.Run()
	return nil
}
