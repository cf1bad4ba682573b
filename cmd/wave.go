// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Juno Reyes, Kinewave

package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kinewave/joltctl/pkg/jolt"
)

var (
	waveChannel string
	waveHeight  int
)

var waveCmd = &cobra.Command{
	Use:   "wave <log-id>",
	Short: "Plot a log record's waveform in the terminal",
	Long: `Fetch one log record and plot its acceleration samples as an ASCII
waveform, one chart per channel.

The vertical axis is labeled in mg (16 mg per accelerometer count), the
horizontal axis is the 0.96 second capture window at 10 ms per sample.

Examples:
  # Plot all three axes of log 0
  joltctl wave 0 --port /dev/ttyUSB0

  # Just the Z axis, taller chart
  joltctl wave 0 --channel z --height 21

Exit codes:
  0 - Record plotted
  1 - No logs stored, bad log ID, or device error
  2 - Connection error`,
	Args: cobra.ExactArgs(1),
	RunE: runWave,
}

func init() {
	rootCmd.AddCommand(waveCmd)
	waveCmd.Flags().StringVar(&waveChannel, "channel", "all", "Channel to plot: x, y, z, or all")
	waveCmd.Flags().IntVar(&waveHeight, "height", 11, "Plot height in rows")
}

// waveChannelPick names one channel and how to pull its samples.
type waveChannelPick struct {
	name    string
	samples func(*jolt.LogRecord) []int8
}

func selectChannels(channel string) ([]waveChannelPick, error) {
	x := waveChannelPick{"x", (*jolt.LogRecord).X}
	y := waveChannelPick{"y", (*jolt.LogRecord).Y}
	z := waveChannelPick{"z", (*jolt.LogRecord).Z}

	switch strings.ToLower(strings.TrimSpace(channel)) {
	case "x":
		return []waveChannelPick{x}, nil
	case "y":
		return []waveChannelPick{y}, nil
	case "z":
		return []waveChannelPick{z}, nil
	case "all":
		return []waveChannelPick{x, y, z}, nil
	default:
		return nil, fmt.Errorf("unknown channel %q: use x, y, z, or all", channel)
	}
}

func runWave(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseUint(args[0], 10, 8)
	if err != nil {
		return fmt.Errorf("invalid log ID %q: must be 0-255", args[0])
	}

	channels, err := selectChannels(waveChannel)
	if err != nil {
		return err
	}

	s, _, err := openSession()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer s.Close()

	ctx := cmd.Context()
	if _, err := s.LogCount(ctx); err != nil {
		return err
	}

	rec, err := s.ReadLog(ctx, uint8(id))
	if err != nil {
		return err
	}

	fmt.Printf("Log %d, timestamp %d s, INT1_SRC %s\n\n",
		rec.ID(), rec.Timestamp(), jolt.FormatInterruptRegister(rec.InterruptRegister()))
	for _, ch := range channels {
		fmt.Printf("%s axis:\n", strings.ToUpper(ch.name))
		fmt.Println(renderWaveform(ch.samples(rec), waveHeight))
	}
	return nil
}

// renderWaveform draws samples as an ASCII chart, one column per sample.
// The vertical scale is symmetric about zero and labeled in mg; the zero
// row doubles as the time axis baseline.
func renderWaveform(samples []int8, height int) string {
	if len(samples) == 0 {
		return "(no samples)\n"
	}
	if height < 3 {
		height = 3
	}
	if height%2 == 0 {
		height++
	}

	maxAbs := 1
	for _, s := range samples {
		v := int(s)
		if v < 0 {
			v = -v
		}
		if v > maxAbs {
			maxAbs = v
		}
	}

	mid := height / 2
	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = make([]rune, len(samples))
		for j := range grid[i] {
			if i == mid {
				grid[i][j] = '-'
			} else {
				grid[i][j] = ' '
			}
		}
	}

	for j, s := range samples {
		row := mid - int(s)*mid/maxAbs
		grid[row][j] = '*'
	}

	var b strings.Builder
	for i, row := range grid {
		switch i {
		case 0:
			fmt.Fprintf(&b, "%6d |", maxAbs*jolt.MilligPerLSB)
		case mid:
			fmt.Fprintf(&b, "%6d +", 0)
		case height - 1:
			fmt.Fprintf(&b, "%6d |", -maxAbs*jolt.MilligPerLSB)
		default:
			b.WriteString("       |")
		}
		b.WriteString(string(row))
		b.WriteByte('\n')
	}

	intervalMS := int(jolt.SampleInterval / time.Millisecond)
	endLabel := fmt.Sprintf("%d ms", (len(samples)-1)*intervalMS)
	fmt.Fprintf(&b, "%8s0 ms%*s\n", "", len(samples)-4, endLabel)
	return b.String()
}
