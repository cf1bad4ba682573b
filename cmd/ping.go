// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Juno Reyes, Kinewave

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var pingCount int

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Test the link by timing log count exchanges",
	Long: `Send log count queries and time each round-trip.

The count query is the cheapest Joltbox exchange (one byte each way), which
makes it a convenient liveness probe. Each round-trip is timed and a summary
is printed at the end.

This is useful for verifying:
  - The serial port or WebSocket bridge is reachable
  - HTTP Basic authentication works (WebSocket)
  - The device is awake and answering
  - Link latency is sane

Exit codes:
  0 - All exchanges answered
  1 - One or more exchanges failed or timed out
  2 - Connection error`,
	RunE: runPing,
}

func init() {
	rootCmd.AddCommand(pingCmd)
	pingCmd.Flags().IntVar(&pingCount, "count", 3, "Number of exchanges to send")
}

func runPing(cmd *cobra.Command, args []string) error {
	s, connInfo, err := openSession()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer s.Close()

	fmt.Printf("Joltctl - Link Test\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Timeout: %s per exchange\n", exchangeTimeout)
	fmt.Printf("Count: %d exchanges\n\n", pingCount)

	ctx := cmd.Context()
	successCount := 0
	failCount := 0

	for i := 1; i <= pingCount; i++ {
		fmt.Printf("Exchange %d/%d: ", i, pingCount)

		start := time.Now()
		count, err := s.LogCount(ctx)
		if err != nil {
			fmt.Printf("FAILED: %v\n", err)
			failCount++
		} else {
			rtt := time.Since(start)
			fmt.Printf("OK, %d log(s) stored, rtt=%v\n", count, rtt.Round(time.Millisecond))
			successCount++
		}

		// Small delay between exchanges
		if i < pingCount {
			time.Sleep(100 * time.Millisecond)
		}
	}

	fmt.Printf("\n--- Link statistics ---\n")
	fmt.Printf("%d exchanges sent, %d answered, %.0f%% loss\n",
		pingCount, successCount, float64(failCount)/float64(pingCount)*100)

	if failCount > 0 {
		os.Exit(1)
	}
	return nil
}
