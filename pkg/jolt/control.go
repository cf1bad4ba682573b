// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Juno Reyes, Kinewave

package jolt

import "fmt"

// ControlRegister is the decoded 4-bit EEPROM control word returned by the
// C command. Wire order, most significant bit first: reset flag, send flag,
// config mode, start/stop mode.
type ControlRegister struct {
	Reset      bool
	Send       bool
	ConfigMode bool
	StartStop  bool
}

// DecodeControlRegister decodes the low nibble of a raw register byte.
// The high nibble is unused by the device and ignored here.
func DecodeControlRegister(b byte) ControlRegister {
	return ControlRegister{
		Reset:      b&(1<<ctrlBitReset) != 0,
		Send:       b&(1<<ctrlBitSend) != 0,
		ConfigMode: b&(1<<ctrlBitConfig) != 0,
		StartStop:  b&(1<<ctrlBitStartStop) != 0,
	}
}

// Byte re-packs the named flags into the register's low nibble
func (c ControlRegister) Byte() byte {
	var b byte
	if c.Reset {
		b |= 1 << ctrlBitReset
	}
	if c.Send {
		b |= 1 << ctrlBitSend
	}
	if c.ConfigMode {
		b |= 1 << ctrlBitConfig
	}
	if c.StartStop {
		b |= 1 << ctrlBitStartStop
	}
	return b
}

// Bits returns the flags most significant first, matching the display
// order of the device documentation.
func (c ControlRegister) Bits() [4]bool {
	return [4]bool{c.Reset, c.Send, c.ConfigMode, c.StartStop}
}

// String renders the register as a 4-digit binary string
func (c ControlRegister) String() string {
	return fmt.Sprintf("%04b", c.Byte())
}
