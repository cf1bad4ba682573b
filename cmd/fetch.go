// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Juno Reyes, Kinewave

package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kinewave/joltctl/pkg/jolt"
)

var (
	fetchAll    bool
	fetchFormat string
	fetchOutput string
	fetchRaw    bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [log-id]",
	Short: "Retrieve stored log records",
	Long: `Retrieve one log record by ID, or every stored record with --all.

Each record carries 96 samples per axis at 10 ms intervals, the
accelerometer's interrupt source register, and the seconds-since-start
timestamp of the event.

Formats:
  table  Summary grid plus a per-channel breakdown (default)
  json   Indented JSON array
  csv    One row per sample in long form
  cbor   Compact binary with the same schema as json

Examples:
  # Show log 3
  joltctl fetch 3 --port /dev/ttyUSB0

  # Save everything as CSV
  joltctl fetch --all --format csv --output logs.csv

  # Hex dump the raw 320-byte frame of log 0
  joltctl fetch 0 --raw

Exit codes:
  0 - Records retrieved
  1 - No logs stored, bad log ID, or device error
  2 - Connection error`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().BoolVar(&fetchAll, "all", false, "Fetch every stored record")
	fetchCmd.Flags().StringVar(&fetchFormat, "format", "table", "Output format: table, json, csv, cbor")
	fetchCmd.Flags().StringVarP(&fetchOutput, "output", "o", "", "Write to file instead of stdout")
	fetchCmd.Flags().BoolVar(&fetchRaw, "raw", false, "Hex dump raw frames instead of decoding")
}

func runFetch(cmd *cobra.Command, args []string) error {
	if !fetchAll && len(args) == 0 {
		return fmt.Errorf("either a log ID or --all is required")
	}
	if fetchAll && len(args) > 0 {
		return fmt.Errorf("--all does not take a log ID")
	}

	s, _, err := openSession()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer s.Close()

	ctx := cmd.Context()
	count, err := s.LogCount(ctx)
	if err != nil {
		return err
	}

	var ids []uint8
	if fetchAll {
		if count == 0 {
			return jolt.ErrNoLogsStored
		}
		for id := 0; id < int(count); id++ {
			ids = append(ids, uint8(id))
		}
	} else {
		id, err := strconv.ParseUint(args[0], 10, 8)
		if err != nil {
			return fmt.Errorf("invalid log ID %q: must be 0-255", args[0])
		}
		ids = []uint8{uint8(id)}
	}

	records := make([]*jolt.LogRecord, 0, len(ids))
	for _, id := range ids {
		rec, err := s.ReadLog(ctx, id)
		if err != nil {
			return err
		}
		records = append(records, rec)
	}

	var out io.Writer = os.Stdout
	if fetchOutput != "" {
		f, err := os.Create(fetchOutput)
		if err != nil {
			return fmt.Errorf("failed to create %s: %v", fetchOutput, err)
		}
		defer f.Close()
		out = f
	}

	if fetchRaw {
		for _, rec := range records {
			fmt.Fprintf(out, "Log %d raw frame (%d bytes):\n", rec.ID(), len(rec.Raw()))
			fmt.Fprint(out, renderRawFrame(rec))
		}
		return nil
	}

	switch fetchFormat {
	case "table":
		fmt.Fprintln(out, renderRecordGrid(records))
		for _, rec := range records {
			fmt.Fprintln(out)
			fmt.Fprint(out, jolt.FormatRecord(rec))
		}
		return nil
	case "json":
		return jolt.WriteJSON(out, records)
	case "csv":
		return jolt.WriteCSV(out, records)
	case "cbor":
		return jolt.WriteCBOR(out, records)
	default:
		return fmt.Errorf("unknown format %q: use table, json, csv, or cbor", fetchFormat)
	}
}
