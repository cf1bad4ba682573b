// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Juno Reyes, Kinewave

// Package jolt provides a reference Go implementation of the Joltbox serial protocol.
//
// The Joltbox is a PSoC-based impact logger in the Kinewave ecosystem. It samples
// a LIS3DH accelerometer on wake-up interrupt and stores fixed-size log records
// in an SPI EEPROM. This package provides the host side of the link: command
// encoding, response polling, log-frame decoding, and record formatting.
//
// See the Joltbox protocol notes at origin/documentation/source/protocols/joltbox/
package jolt

import "time"

// Command identifies one of the four requests understood by the device.
type Command byte

// Command codes (single ASCII bytes on the wire)
const (
	CmdReset                Command = 'R'
	CmdQueryControlRegister Command = 'C'
	CmdReadLog              Command = 'L'
	CmdQueryLogCount        Command = 'N'
)

// ResetAck is the acknowledgement byte returned by a successful reset.
const ResetAck byte = 'K'

// Log frame geometry
const (
	PageSize       = 64                        // EEPROM page, bytes
	PagesPerFrame  = 5                         // pages per log record
	FrameSize      = PageSize * PagesPerFrame  // 320 bytes on the wire
	PageHeaderSize = 4                         // unsigned metadata bytes per page
	PageDataSize   = PageSize - PageHeaderSize // signed sample bytes per page
)

// Sample extraction
const (
	SampleStride      = 3                             // interleaved x, y, z
	SamplesPerPage    = PageDataSize / SampleStride   // per channel, per page
	PaddingSamples    = 4                             // trailing padding per channel
	SamplesPerChannel = SamplesPerPage*PagesPerFrame - PaddingSamples
)

// Capture timing and scale. The accelerometer runs at 100 Hz with a ±2g
// full-scale range, so one raw count is 16 milli-g.
const (
	SampleInterval = 10 * time.Millisecond
	RecordWindow   = SamplesPerChannel * SampleInterval // 0.96 s
	MilligPerLSB   = 16
)

// EEPROM geometry (Microchip 25LC256, 32 KB)
const (
	EEPROMPages    = 512
	EEPROMCapacity = EEPROMPages * PageSize
	MaxStoredLogs  = EEPROMPages / PagesPerFrame
)

// Control register bit positions (low nibble of the C response)
const (
	ctrlBitStartStop = 0
	ctrlBitConfig    = 1
	ctrlBitSend      = 2
	ctrlBitReset     = 3
)

// LIS3DH INT1_SRC register flags, as stored in a log record's interrupt byte
const (
	Int1IA = 0x40 // interrupt active
	Int1ZH = 0x20
	Int1ZL = 0x10
	Int1YH = 0x08
	Int1YL = 0x04
	Int1XH = 0x02
	Int1XL = 0x01
)
