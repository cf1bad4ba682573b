// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Juno Reyes, Kinewave

package jolt

import "time"

// DecodeFrame decodes a complete 320-byte log frame into a LogRecord.
// It is a pure function: any input of exactly FrameSize bytes decodes
// deterministically, anything else fails with a MalformedFrameError.
//
// Frame layout: 5 EEPROM pages of 64 bytes. The first 4 bytes of each page
// are unsigned metadata (the EEPROM fills pages from index 63 down to 0, so
// write positions 0, 63, 62, 61 are the first to arrive). Page 0's metadata
// carries the record fields; the remaining 60 bytes of every page interleave
// signed x, y, z samples at stride 3. The final page is not fully populated,
// leaving 4 padding samples per channel that are dropped.
func DecodeFrame(frame []byte) (*LogRecord, error) {
	if len(frame) != FrameSize {
		return nil, &MalformedFrameError{Size: len(frame)}
	}

	r := &LogRecord{
		id:        frame[0],
		interrupt: frame[1],
		timestamp: uint16(frame[2]) | uint16(frame[3])<<8,
		x:         make([]int8, 0, SamplesPerPage*PagesPerFrame),
		y:         make([]int8, 0, SamplesPerPage*PagesPerFrame),
		z:         make([]int8, 0, SamplesPerPage*PagesPerFrame),
		raw:       append([]byte(nil), frame...),
		received:  time.Now(),
	}

	for page := 0; page < PagesPerFrame; page++ {
		data := frame[PageHeaderSize+page*PageSize : (page+1)*PageSize]
		for i := 0; i+SampleStride <= len(data); i += SampleStride {
			r.x = append(r.x, int8(data[i]))
			r.y = append(r.y, int8(data[i+1]))
			r.z = append(r.z, int8(data[i+2]))
		}
	}

	// Drop the trailing padding of the short last page
	r.x = r.x[:len(r.x)-PaddingSamples]
	r.y = r.y[:len(r.y)-PaddingSamples]
	r.z = r.z[:len(r.z)-PaddingSamples]

	return r, nil
}

// IsHeaderOffset reports whether the byte at a frame offset is unsigned page
// metadata rather than a signed sample.
func IsHeaderOffset(offset int) bool {
	return offset%PageSize < PageHeaderSize
}
