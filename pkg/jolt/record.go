// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Juno Reyes, Kinewave

package jolt

import (
	"fmt"
	"time"
)

// LogRecord represents one decoded accelerometer log record
type LogRecord struct {
	id        uint8
	interrupt uint8
	timestamp uint16
	x         []int8
	y         []int8
	z         []int8
	raw       []byte
	received  time.Time
}

// ID returns the EEPROM log slot identifier
func (r *LogRecord) ID() uint8 {
	return r.id
}

// InterruptRegister returns the raw LIS3DH INT1_SRC byte captured at wake-up
func (r *LogRecord) InterruptRegister() uint8 {
	return r.interrupt
}

// InterruptString returns the interrupt register as a short hex string ("0xa")
func (r *LogRecord) InterruptString() string {
	return fmt.Sprintf("%#x", r.interrupt)
}

// Timestamp returns the device uptime in seconds at capture
func (r *LogRecord) Timestamp() uint16 {
	return r.timestamp
}

// X returns the X-axis samples
func (r *LogRecord) X() []int8 {
	return r.x
}

// Y returns the Y-axis samples
func (r *LogRecord) Y() []int8 {
	return r.y
}

// Z returns the Z-axis samples
func (r *LogRecord) Z() []int8 {
	return r.z
}

// Raw returns the 320-byte frame the record was decoded from
func (r *LogRecord) Raw() []byte {
	return r.raw
}

// ReceivedAt returns the host time the frame finished arriving
func (r *LogRecord) ReceivedAt() time.Time {
	return r.received
}

// SampleCount returns the number of samples per channel
func (r *LogRecord) SampleCount() int {
	return len(r.x)
}

// Duration returns the capture window covered by the record
func (r *LogRecord) Duration() time.Duration {
	return time.Duration(r.SampleCount()) * SampleInterval
}

// Headers returns the four unsigned metadata bytes of each page. Page 0's
// header carries the record fields (id, interrupt register, timestamp); the
// remaining pages repeat EEPROM bookkeeping values.
func (r *LogRecord) Headers() [PagesPerFrame][PageHeaderSize]byte {
	var h [PagesPerFrame][PageHeaderSize]byte
	for page := 0; page < PagesPerFrame; page++ {
		copy(h[page][:], r.raw[page*PageSize:page*PageSize+PageHeaderSize])
	}
	return h
}

// MilliG converts a raw acceleration sample to milli-g at the logger's
// ±2g full-scale setting.
func MilliG(sample int8) int {
	return int(sample) * MilligPerLSB
}
