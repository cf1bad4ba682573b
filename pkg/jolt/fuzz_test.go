// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Juno Reyes, Kinewave

package jolt

import (
	"bytes"
	"errors"
	"math/rand"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// getFuzzRounds returns the number of fuzz rounds from FUZZ_ROUNDS env var, default 1000
func getFuzzRounds() int {
	if envRounds := os.Getenv("FUZZ_ROUNDS"); envRounds != "" {
		if rounds, err := strconv.Atoi(envRounds); err == nil && rounds > 0 {
			return rounds
		}
	}
	return 1000
}

// getFuzzSeed returns the seed from FUZZ_SEED env var, or generates one from current time
func getFuzzSeed() int64 {
	if envSeed := os.Getenv("FUZZ_SEED"); envSeed != "" {
		if seed, err := strconv.ParseInt(envSeed, 10, 64); err == nil {
			return seed
		}
	}
	return time.Now().UnixNano()
}

// newFuzzRng creates a new random number generator and logs the seed for reproducibility
func newFuzzRng(t *testing.T) *rand.Rand {
	seed := getFuzzSeed()
	t.Logf("Seed: %d (reproduce with FUZZ_SEED=%d)", seed, seed)
	return rand.New(rand.NewSource(seed))
}

// buildRandomFrame creates a full random log frame for fuzz testing
func buildRandomFrame(rng *rand.Rand) []byte {
	frame := make([]byte, FrameSize)
	rng.Read(frame)
	return frame
}

// ============================================================
// Decoder Fuzz Tests
// ============================================================

// TestFuzzDecoder_RandomFrames feeds random full-size frames to the decoder
// and verifies every one decodes without panicking
func TestFuzzDecoder_RandomFrames(t *testing.T) {
	rounds := getFuzzRounds()
	rng := newFuzzRng(t)
	t.Logf("Running %d fuzz rounds", rounds)

	for i := 0; i < rounds; i++ {
		frame := buildRandomFrame(rng)

		rec, err := DecodeFrame(frame)
		if err != nil {
			t.Errorf("Round %d: unexpected decode error: %v", i, err)
			continue
		}

		if rec.SampleCount() != SamplesPerChannel {
			t.Errorf("Round %d: sample count mismatch: expected %d, got %d", i, SamplesPerChannel, rec.SampleCount())
		}
		if len(rec.X()) != SamplesPerChannel || len(rec.Y()) != SamplesPerChannel || len(rec.Z()) != SamplesPerChannel {
			t.Errorf("Round %d: channel length mismatch: %d/%d/%d", i, len(rec.X()), len(rec.Y()), len(rec.Z()))
		}
		if rec.ID() != frame[0] {
			t.Errorf("Round %d: ID mismatch: expected %d, got %d", i, frame[0], rec.ID())
		}
		if rec.InterruptRegister() != frame[1] {
			t.Errorf("Round %d: interrupt mismatch: expected 0x%02X, got 0x%02X", i, frame[1], rec.InterruptRegister())
		}
		ts := uint16(frame[2]) | uint16(frame[3])<<8
		if rec.Timestamp() != ts {
			t.Errorf("Round %d: timestamp mismatch: expected %d, got %d", i, ts, rec.Timestamp())
		}
		if !bytes.Equal(rec.Raw(), frame) {
			t.Errorf("Round %d: raw frame mismatch", i)
		}
	}
}

// TestFuzzDecoder_RandomSizes feeds frames of every wrong length and verifies
// each is rejected as malformed
func TestFuzzDecoder_RandomSizes(t *testing.T) {
	rounds := getFuzzRounds()
	rng := newFuzzRng(t)
	t.Logf("Running %d fuzz rounds", rounds)

	for i := 0; i < rounds; i++ {
		length := rng.Intn(1024)
		if length == FrameSize {
			length++
		}
		frame := make([]byte, length)
		rng.Read(frame)

		_, err := DecodeFrame(frame)
		if err == nil {
			t.Errorf("Round %d: expected error for %d-byte frame", i, length)
			continue
		}
		var frameErr *MalformedFrameError
		if !errors.As(err, &frameErr) {
			t.Errorf("Round %d: expected MalformedFrameError, got %T", i, err)
			continue
		}
		if frameErr.Size != length {
			t.Errorf("Round %d: size mismatch: expected %d, got %d", i, length, frameErr.Size)
		}
	}
}

// TestFuzzDecoder_SampleOffsets verifies samples land at the exact frame
// offsets the page layout dictates
func TestFuzzDecoder_SampleOffsets(t *testing.T) {
	rounds := getFuzzRounds()
	rng := newFuzzRng(t)
	t.Logf("Running %d fuzz rounds", rounds)

	for i := 0; i < rounds; i++ {
		frame := buildRandomFrame(rng)
		rec, err := DecodeFrame(frame)
		if err != nil {
			t.Fatalf("Round %d: decode error: %v", i, err)
		}

		k := rng.Intn(SamplesPerChannel)
		page := k / SamplesPerPage
		offset := PageHeaderSize + page*PageSize + (k%SamplesPerPage)*SampleStride

		if rec.X()[k] != int8(frame[offset]) {
			t.Errorf("Round %d: X[%d] mismatch: expected %d, got %d", i, k, int8(frame[offset]), rec.X()[k])
		}
		if rec.Y()[k] != int8(frame[offset+1]) {
			t.Errorf("Round %d: Y[%d] mismatch: expected %d, got %d", i, k, int8(frame[offset+1]), rec.Y()[k])
		}
		if rec.Z()[k] != int8(frame[offset+2]) {
			t.Errorf("Round %d: Z[%d] mismatch: expected %d, got %d", i, k, int8(frame[offset+2]), rec.Z()[k])
		}
	}
}

// TestFuzzDecoder_PageHeaders verifies the first four bytes of every page
// survive untouched in the record headers
func TestFuzzDecoder_PageHeaders(t *testing.T) {
	rounds := getFuzzRounds()
	rng := newFuzzRng(t)
	t.Logf("Running %d fuzz rounds", rounds)

	for i := 0; i < rounds; i++ {
		frame := buildRandomFrame(rng)
		rec, err := DecodeFrame(frame)
		if err != nil {
			t.Fatalf("Round %d: decode error: %v", i, err)
		}

		headers := rec.Headers()
		for page := 0; page < PagesPerFrame; page++ {
			for j := 0; j < PageHeaderSize; j++ {
				if headers[page][j] != frame[page*PageSize+j] {
					t.Errorf("Round %d: header [%d][%d] mismatch: expected 0x%02X, got 0x%02X",
						i, page, j, frame[page*PageSize+j], headers[page][j])
				}
			}
		}
	}
}

// ============================================================
// Control Register Fuzz Tests
// ============================================================

// TestFuzzControlRegister_RoundTrip verifies decode and repack agree for
// every input byte, with the high nibble masked off
func TestFuzzControlRegister_RoundTrip(t *testing.T) {
	rounds := getFuzzRounds()
	rng := newFuzzRng(t)
	t.Logf("Running %d fuzz rounds", rounds)

	for i := 0; i < rounds; i++ {
		b := byte(rng.Intn(256))

		reg := DecodeControlRegister(b)
		if reg.Byte() != b&0x0F {
			t.Errorf("Round %d: repack mismatch: expected 0x%02X, got 0x%02X", i, b&0x0F, reg.Byte())
		}
		if DecodeControlRegister(reg.Byte()) != reg {
			t.Errorf("Round %d: decode not stable for 0x%02X", i, b)
		}
	}
}

// ============================================================
// Formatter Fuzz Tests
// ============================================================

// TestFuzzFormatter_RandomRecords tests formatting with random records
func TestFuzzFormatter_RandomRecords(t *testing.T) {
	rounds := getFuzzRounds()
	rng := newFuzzRng(t)
	t.Logf("Running %d fuzz rounds", rounds)

	for i := 0; i < rounds; i++ {
		frame := buildRandomFrame(rng)
		rec, err := DecodeFrame(frame)
		if err != nil {
			t.Fatalf("Round %d: decode error: %v", i, err)
		}

		// Format - should not panic
		if FormatRecord(rec) == "" {
			t.Errorf("Round %d: FormatRecord returned empty string", i)
		}
		if FormatInterruptRegister(byte(rng.Intn(256))) == "" {
			t.Errorf("Round %d: FormatInterruptRegister returned empty string", i)
		}
		reg := DecodeControlRegister(byte(rng.Intn(256)))
		if FormatControlRegister(reg) == "" {
			t.Errorf("Round %d: FormatControlRegister returned empty string", i)
		}
	}
}

// ============================================================
// Export Fuzz Tests
// ============================================================

// TestFuzzExport_CBORRoundTrip verifies random records survive a CBOR
// encode and decode cycle
func TestFuzzExport_CBORRoundTrip(t *testing.T) {
	rounds := getFuzzRounds()
	rng := newFuzzRng(t)
	t.Logf("Running %d fuzz rounds", rounds)

	for i := 0; i < rounds; i++ {
		frame := buildRandomFrame(rng)
		rec, err := DecodeFrame(frame)
		if err != nil {
			t.Fatalf("Round %d: decode error: %v", i, err)
		}

		var buf bytes.Buffer
		if err := WriteCBOR(&buf, []*LogRecord{rec}); err != nil {
			t.Errorf("Round %d: WriteCBOR error: %v", i, err)
			continue
		}

		var decoded []exportRecord
		if err := cbor.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Errorf("Round %d: CBOR unmarshal error: %v", i, err)
			continue
		}
		if len(decoded) != 1 {
			t.Errorf("Round %d: record count mismatch: expected 1, got %d", i, len(decoded))
			continue
		}
		if decoded[0].ID != rec.ID() {
			t.Errorf("Round %d: ID mismatch: expected %d, got %d", i, rec.ID(), decoded[0].ID)
		}
		if decoded[0].Timestamp != rec.Timestamp() {
			t.Errorf("Round %d: timestamp mismatch: expected %d, got %d", i, rec.Timestamp(), decoded[0].Timestamp)
		}
		if len(decoded[0].X) != SamplesPerChannel || len(decoded[0].Y) != SamplesPerChannel || len(decoded[0].Z) != SamplesPerChannel {
			t.Errorf("Round %d: channel length mismatch: %d/%d/%d", i, len(decoded[0].X), len(decoded[0].Y), len(decoded[0].Z))
		}
	}
}
