package jolt

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"
)

func mustDecodeFrame(t *testing.T, frame []byte) *LogRecord {
	t.Helper()
	rec, err := DecodeFrame(frame)
	if err != nil {
		t.Fatalf("DecodeFrame error: %v", err)
	}
	return rec
}

// ============================================================
// JSON Export Tests
// ============================================================

func TestWriteJSON(t *testing.T) {
	rec := mustDecodeFrame(t, buildFrame(2, 0x0A, 7, 1, 0))

	var buf bytes.Buffer
	if err := WriteJSON(&buf, []*LogRecord{rec}); err != nil {
		t.Fatalf("WriteJSON error: %v", err)
	}

	var decoded []exportRecord
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if len(decoded) != 1 {
		t.Fatalf("Record count mismatch: expected 1, got %d", len(decoded))
	}
	out := decoded[0]
	if out.ID != 2 {
		t.Errorf("ID mismatch: expected 2, got %d", out.ID)
	}
	if out.Timestamp != 7 {
		t.Errorf("Timestamp mismatch: expected 7, got %d", out.Timestamp)
	}
	if out.InterruptRegister != "0xa" {
		t.Errorf("Interrupt mismatch: expected 0xa, got %s", out.InterruptRegister)
	}
	if out.SampleIntervalMS != 10 {
		t.Errorf("Interval mismatch: expected 10, got %d", out.SampleIntervalMS)
	}
	if out.MilligPerLSB != 16 {
		t.Errorf("Scale mismatch: expected 16, got %d", out.MilligPerLSB)
	}
	if len(out.X) != SamplesPerChannel || out.X[0] != 1 {
		t.Errorf("Channel mismatch: len %d, first %d", len(out.X), out.X[0])
	}

	if !strings.Contains(buf.String(), "\n  ") {
		t.Error("Output should be indented")
	}
}

func TestWriteJSON_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, nil); err != nil {
		t.Fatalf("WriteJSON error: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("Empty export mismatch: got %q", buf.String())
	}
}

// ============================================================
// CSV Export Tests
// ============================================================

func TestWriteCSV(t *testing.T) {
	rec := mustDecodeFrame(t, buildFrame(2, 0, 7, 1, 0))

	var buf bytes.Buffer
	if err := WriteCSV(&buf, []*LogRecord{rec}); err != nil {
		t.Fatalf("WriteCSV error: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll error: %v", err)
	}
	if len(rows) != 1+SamplesPerChannel {
		t.Fatalf("Row count mismatch: expected %d, got %d", 1+SamplesPerChannel, len(rows))
	}

	header := []string{"log_id", "timestamp_s", "sample", "t_ms", "x", "y", "z"}
	for i, col := range header {
		if rows[0][i] != col {
			t.Errorf("Header column %d mismatch: expected %s, got %s", i, col, rows[0][i])
		}
	}

	first := []string{"2", "7", "0", "0", "1", "1", "1"}
	for i, want := range first {
		if rows[1][i] != want {
			t.Errorf("First row column %d mismatch: expected %s, got %s", i, want, rows[1][i])
		}
	}

	// Sample 5 lands at t = 50 ms
	if rows[6][2] != "5" || rows[6][3] != "50" {
		t.Errorf("Time axis mismatch: sample %s at %s ms", rows[6][2], rows[6][3])
	}
}

func TestWriteCSV_MultipleRecords(t *testing.T) {
	recs := []*LogRecord{
		mustDecodeFrame(t, buildFrame(0, 0, 1, 1, 0)),
		mustDecodeFrame(t, buildFrame(1, 0, 2, 2, 0)),
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, recs); err != nil {
		t.Fatalf("WriteCSV error: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll error: %v", err)
	}
	if len(rows) != 1+2*SamplesPerChannel {
		t.Fatalf("Row count mismatch: expected %d, got %d", 1+2*SamplesPerChannel, len(rows))
	}
	if rows[1][0] != "0" || rows[1+SamplesPerChannel][0] != "1" {
		t.Errorf("Record ordering mismatch: %s then %s", rows[1][0], rows[1+SamplesPerChannel][0])
	}
}

// ============================================================
// CBOR Export Tests
// ============================================================

func TestWriteCBOR(t *testing.T) {
	rec := mustDecodeFrame(t, buildFrame(4, 0x40, 30, 0xFE, 0))

	var buf bytes.Buffer
	if err := WriteCBOR(&buf, []*LogRecord{rec}); err != nil {
		t.Fatalf("WriteCBOR error: %v", err)
	}

	var decoded []exportRecord
	if err := cbor.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if len(decoded) != 1 {
		t.Fatalf("Record count mismatch: expected 1, got %d", len(decoded))
	}
	if decoded[0].ID != 4 {
		t.Errorf("ID mismatch: expected 4, got %d", decoded[0].ID)
	}
	if decoded[0].InterruptRegister != "0x40" {
		t.Errorf("Interrupt mismatch: expected 0x40, got %s", decoded[0].InterruptRegister)
	}
	if decoded[0].X[0] != -2 {
		t.Errorf("Sample mismatch: expected -2, got %d", decoded[0].X[0])
	}
}
