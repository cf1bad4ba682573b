// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Juno Reyes, Kinewave

package cmd

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kinewave/joltctl/pkg/jolt"
)

func watchTestRecord(t *testing.T, id uint8) *jolt.LogRecord {
	t.Helper()
	frame := make([]byte, jolt.FrameSize)
	frame[0] = id
	rec, err := jolt.DecodeFrame(frame)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	return rec
}

func applyWatchMsg(t *testing.T, m watchModel, msg tea.Msg) watchModel {
	t.Helper()
	updated, _ := m.Update(msg)
	next, ok := updated.(watchModel)
	if !ok {
		t.Fatalf("Update returned %T", updated)
	}
	return next
}

func TestWatchModel_ReconnectClearsRecords(t *testing.T) {
	m := initialWatchModel("Serial: /dev/ttyTEST", time.Second)

	m = applyWatchMsg(t, m, watchRecordMsg{record: watchTestRecord(t, 0)})
	if len(m.table.Rows()) != 1 {
		t.Fatalf("Row count mismatch: expected 1, got %d", len(m.table.Rows()))
	}

	// After a link drop the poll loop fetches ids 0..count-1 from scratch
	m = applyWatchMsg(t, m, watchConnLostMsg{})
	m = applyWatchMsg(t, m, watchReconnectedMsg{connInfo: "Serial: /dev/ttyTEST"})

	if len(m.records) != 0 || len(m.table.Rows()) != 0 {
		t.Fatalf("Reconnect should drop stale rows: %d records, %d rows",
			len(m.records), len(m.table.Rows()))
	}
	if m.connectionLost {
		t.Error("Reconnect should clear the lost flag")
	}

	m = applyWatchMsg(t, m, watchRecordMsg{record: watchTestRecord(t, 0)})
	if len(m.records) != 1 || len(m.table.Rows()) != 1 {
		t.Errorf("Refetched record should appear exactly once: %d records, %d rows",
			len(m.records), len(m.table.Rows()))
	}
}

func TestWatchModel_EraseClearsRecords(t *testing.T) {
	m := initialWatchModel("Serial: /dev/ttyTEST", time.Second)

	m = applyWatchMsg(t, m, watchRecordMsg{record: watchTestRecord(t, 0)})
	m = applyWatchMsg(t, m, watchRecordMsg{record: watchTestRecord(t, 1)})
	m = applyWatchMsg(t, m, watchResetMsg{})

	if len(m.records) != 0 || len(m.table.Rows()) != 0 {
		t.Errorf("Erase should clear the table: %d records, %d rows",
			len(m.records), len(m.table.Rows()))
	}
}
