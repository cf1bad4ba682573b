// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Juno Reyes, Kinewave

package cmd

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/kinewave/joltctl/pkg/jolt"
)

var (
	tableBorderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	tableCellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func newGrid(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		}).
		Headers(headers...)
}

// renderControlTable draws the four control register flags, most
// significant bit first.
func renderControlTable(reg jolt.ControlRegister) string {
	bits := reg.Bits()
	row := make([]string, len(bits))
	for i, b := range bits {
		if b {
			row[i] = "1"
		} else {
			row[i] = "0"
		}
	}
	return newGrid(jolt.ControlBitLabels[:]...).Rows(row).Render()
}

// renderRecordGrid draws a one-row-per-record summary table.
func renderRecordGrid(records []*jolt.LogRecord) string {
	grid := newGrid("LOG_ID", "Timestamp (s)", "INT1_SRC", "Peak (mg)")
	for _, r := range records {
		grid.Row(
			strconv.Itoa(int(r.ID())),
			strconv.Itoa(int(r.Timestamp())),
			jolt.FormatInterruptRegister(r.InterruptRegister()),
			strconv.Itoa(peakMilliG(r)),
		)
	}
	return grid.Render()
}

// peakMilliG returns the largest absolute acceleration across all three
// channels of a record.
func peakMilliG(r *jolt.LogRecord) int {
	peak := 0
	for _, ch := range [][]int8{r.X(), r.Y(), r.Z()} {
		for _, s := range ch {
			v := jolt.MilliG(s)
			if v < 0 {
				v = -v
			}
			if v > peak {
				peak = v
			}
		}
	}
	return peak
}

// renderRawFrame hex dumps a record's frame one EEPROM page at a time.
func renderRawFrame(r *jolt.LogRecord) string {
	var b strings.Builder
	raw := r.Raw()
	for page := 0; page < jolt.PagesPerFrame; page++ {
		start := page * jolt.PageSize
		fmt.Fprintf(&b, "Page %d (frame bytes %d-%d):\n", page, start, start+jolt.PageSize-1)
		b.WriteString(hex.Dump(raw[start : start+jolt.PageSize]))
	}
	return b.String()
}
