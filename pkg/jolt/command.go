// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Juno Reyes, Kinewave

package jolt

import "strings"

// ParseCommand maps a command mnemonic to a Command. Mnemonics are the
// single letters understood by the device; matching ignores case and
// surrounding whitespace.
func ParseCommand(input string) (Command, error) {
	switch strings.ToUpper(strings.TrimSpace(input)) {
	case "R":
		return CmdReset, nil
	case "C":
		return CmdQueryControlRegister, nil
	case "L":
		return CmdReadLog, nil
	case "N":
		return CmdQueryLogCount, nil
	}
	return 0, &UnknownCommandError{Input: input}
}

// String returns the human-readable name for a command
func (c Command) String() string {
	switch c {
	case CmdReset:
		return "RESET"
	case CmdQueryControlRegister:
		return "CONTROL_REGISTER"
	case CmdReadLog:
		return "READ_LOG"
	case CmdQueryLogCount:
		return "LOG_COUNT"
	default:
		return "UNKNOWN"
	}
}

// Mnemonic returns the single-letter wire code for a command
func (c Command) Mnemonic() string {
	return string(rune(c))
}

// responseLen is the number of response bytes a successful exchange of this
// command produces. Only ReadLog answers with more than one byte.
func (c Command) responseLen() int {
	if c == CmdReadLog {
		return FrameSize
	}
	return 1
}
