// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Juno Reyes, Kinewave

package jolt

import (
	"fmt"
	"strings"
)

// ControlBitLabels are the display names for ControlRegister.Bits, index-aligned
var ControlBitLabels = [4]string{"Reset flag", "Send flag", "Config Mode", "Start/Stop mode"}

// FormatRecord formats a log record into a human-readable string
func FormatRecord(r *LogRecord) string {
	timestamp := r.received.Format("15:04:05.000")

	result := fmt.Sprintf("[%s] LOG_RECORD id=%d samples=%d\n", timestamp, r.id, r.SampleCount())
	result += fmt.Sprintf("  Timestamp: %d s\n", r.timestamp)
	result += fmt.Sprintf("  INT1_SRC: %s\n", FormatInterruptRegister(r.interrupt))
	result += formatChannel("X", r.x)
	result += formatChannel("Y", r.y)
	result += formatChannel("Z", r.z)
	result += fmt.Sprintf("  Window: %s at %s per sample\n", r.Duration(), SampleInterval)

	return result
}

// FormatControlRegister formats the control word with labeled bits
func FormatControlRegister(c ControlRegister) string {
	result := fmt.Sprintf("Control register: %s\n", c)
	bits := c.Bits()
	for i, label := range ControlBitLabels {
		v := 0
		if bits[i] {
			v = 1
		}
		result += fmt.Sprintf("  %-16s %d\n", label+":", v)
	}
	return result
}

// FormatInterruptRegister renders the INT1_SRC byte with its set flag names
func FormatInterruptRegister(b byte) string {
	names := int1FlagNames(b)
	if len(names) == 0 {
		return fmt.Sprintf("%#x (none)", b)
	}
	return fmt.Sprintf("%#x (%s)", b, strings.Join(names, ", "))
}

// int1FlagNames returns the set INT1_SRC flag names, most significant first
func int1FlagNames(b byte) []string {
	flags := []struct {
		mask byte
		name string
	}{
		{Int1IA, "IA"},
		{Int1ZH, "ZH"},
		{Int1ZL, "ZL"},
		{Int1YH, "YH"},
		{Int1YL, "YL"},
		{Int1XH, "XH"},
		{Int1XL, "XL"},
	}

	var names []string
	for _, f := range flags {
		if b&f.mask != 0 {
			names = append(names, f.name)
		}
	}
	return names
}

// formatChannel summarizes one axis with raw and milli-g extremes
func formatChannel(name string, samples []int8) string {
	if len(samples) == 0 {
		return fmt.Sprintf("  %s: (no samples)\n", name)
	}

	minV, maxV := int(samples[0]), int(samples[0])
	for _, v := range samples[1:] {
		if int(v) < minV {
			minV = int(v)
		}
		if int(v) > maxV {
			maxV = int(v)
		}
	}
	peak := maxV
	if -minV > peak {
		peak = -minV
	}

	return fmt.Sprintf("  %s: min %d (%d mg), max %d (%d mg), peak %d mg\n",
		name, minV, minV*MilligPerLSB, maxV, maxV*MilligPerLSB, peak*MilligPerLSB)
}
