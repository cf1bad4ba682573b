// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Juno Reyes, Kinewave

package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kinewave/joltctl/pkg/jolt"
)

//////////////////////////////////////////////////////////////
// Constants
//////////////////////////////////////////////////////////////

const watchMaxLogEntries = 100

//////////////////////////////////////////////////////////////
// Types
//////////////////////////////////////////////////////////////

// watchLogEntry is one line in the event log pane
type watchLogEntry struct {
	timestamp time.Time
	message   string
	isError   bool
}

// watchModel is the Bubble Tea model for the watch TUI
type watchModel struct {
	connInfo string
	interval time.Duration

	// Record tracking
	records []*jolt.LogRecord
	table   table.Model

	// Poll state
	count          uint8
	reg            jolt.ControlRegister
	hasReg         bool
	lastPoll       time.Time
	stats          jolt.Statistics
	hasStats       bool
	connectionLost bool

	// Event log
	eventLog []watchLogEntry

	// UI state
	width    int
	height   int
	quitting bool
}

//////////////////////////////////////////////////////////////
// Messages
//////////////////////////////////////////////////////////////

type watchTickMsg time.Time

// watchPollMsg reports a completed poll round: log count, control
// register, and a statistics snapshot
type watchPollMsg struct {
	count uint8
	reg   jolt.ControlRegister
	regOK bool
	stats jolt.Statistics
}

// watchRecordMsg delivers one newly fetched record
type watchRecordMsg struct {
	record *jolt.LogRecord
}

// watchResetMsg signals that the device log memory was erased
type watchResetMsg struct{}

type watchErrMsg struct {
	err error
}

type watchConnLostMsg struct{}

type watchReconnectedMsg struct {
	connInfo string
}

//////////////////////////////////////////////////////////////
// Model Initialization
//////////////////////////////////////////////////////////////

func initialWatchModel(connInfo string, interval time.Duration) watchModel {
	columns := []table.Column{
		{Title: "LOG_ID", Width: 6},
		{Title: "TS (s)", Width: 8},
		{Title: "INT1_SRC", Width: 20},
		{Title: "PEAK (mg)", Width: 9},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows([]table.Row{}),
		table.WithFocused(true),
		table.WithHeight(8),
	)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Bold(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57"))
	t.SetStyles(styles)

	return watchModel{
		connInfo: connInfo,
		interval: interval,
		records:  make([]*jolt.LogRecord, 0),
		table:    t,
		eventLog: make([]watchLogEntry, 0),
		width:    80,
		height:   24,
	}
}

//////////////////////////////////////////////////////////////
// Bubble Tea Interface
//////////////////////////////////////////////////////////////

func (m watchModel) Init() tea.Cmd {
	return watchTickCmd()
}

func watchTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return watchTickMsg(t)
	})
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeTable()

	case watchTickMsg:
		return m, watchTickCmd()

	case watchPollMsg:
		m.count = msg.count
		if msg.regOK {
			m.reg = msg.reg
			m.hasReg = true
		}
		m.stats = msg.stats
		m.hasStats = true
		m.lastPoll = time.Now()

	case watchRecordMsg:
		m.records = append(m.records, msg.record)
		m.table.SetRows(append(m.table.Rows(), watchRow(msg.record)))
		m.addLogEntry(fmt.Sprintf("Fetched log %d (%s)",
			msg.record.ID(), jolt.FormatInterruptRegister(msg.record.InterruptRegister())), false)

	case watchResetMsg:
		m.records = m.records[:0]
		m.table.SetRows([]table.Row{})
		m.addLogEntry("Log memory erased, list cleared", false)

	case watchErrMsg:
		m.addLogEntry(msg.err.Error(), true)

	case watchConnLostMsg:
		m.connectionLost = true
		m.addLogEntry("Connection lost - reconnecting...", true)

	case watchReconnectedMsg:
		m.connectionLost = false
		m.connInfo = msg.connInfo
		// The poll loop re-fetches every stored record after a reconnect,
		// so stale rows would come back doubled.
		m.records = m.records[:0]
		m.table.SetRows([]table.Row{})
		m.addLogEntry("Reconnected, refreshing records", false)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func watchRow(r *jolt.LogRecord) table.Row {
	return table.Row{
		strconv.Itoa(int(r.ID())),
		strconv.Itoa(int(r.Timestamp())),
		jolt.FormatInterruptRegister(r.InterruptRegister()),
		strconv.Itoa(peakMilliG(r)),
	}
}

func (m *watchModel) addLogEntry(message string, isError bool) {
	m.eventLog = append(m.eventLog, watchLogEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	})
	if len(m.eventLog) > watchMaxLogEntries {
		m.eventLog = m.eventLog[len(m.eventLog)-watchMaxLogEntries:]
	}
}

func (m *watchModel) resizeTable() {
	h := m.height / 3
	if h < 4 {
		h = 4
	}
	m.table.SetHeight(h)
}

func bitDigit(b bool) int {
	if b {
		return 1
	}
	return 0
}

var sparkGlyphs = []rune("▁▂▃▄▅▆▇█")

// sparkline compresses one channel into a row of block glyphs, one per
// sample, scaled to the channel's own magnitude peak.
func sparkline(samples []int8) string {
	maxAbs := 1
	for _, s := range samples {
		v := int(s)
		if v < 0 {
			v = -v
		}
		if v > maxAbs {
			maxAbs = v
		}
	}

	var b strings.Builder
	for _, s := range samples {
		v := int(s)
		if v < 0 {
			v = -v
		}
		b.WriteRune(sparkGlyphs[v*(len(sparkGlyphs)-1)/maxAbs])
	}
	return b.String()
}

//////////////////////////////////////////////////////////////
// View
//////////////////////////////////////////////////////////////

func (m watchModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	// Styles
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	// Header
	var s strings.Builder
	s.WriteString(titleStyle.Render("JOLTCTL - SHOCK LOG WATCH"))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("%s | Poll every %s | Press 'q' to quit",
		m.connInfo, m.interval)))
	s.WriteString("\n\n")

	// Connection state
	if m.connectionLost {
		s.WriteString(errorStyle.Render("✗ Connection lost, reconnecting..."))
		s.WriteString("\n\n")
	} else if m.lastPoll.IsZero() {
		s.WriteString(warningStyle.Render("⏳ Waiting for first poll..."))
		s.WriteString("\n\n")
	} else {
		s.WriteString(valueStyle.Render(fmt.Sprintf("✓ %d record(s) on device", m.count)))
		s.WriteString(headerStyle.Render(fmt.Sprintf(" (last poll %s ago)",
			time.Since(m.lastPoll).Round(time.Second))))
		s.WriteString("\n")
		if m.hasReg {
			bits := m.reg.Bits()
			s.WriteString(labelStyle.Render("Control register: "))
			s.WriteString(valueStyle.Render(m.reg.String()))
			s.WriteString(headerStyle.Render(fmt.Sprintf("  Reset %d | Send %d | Config %d | Start/Stop %d",
				bitDigit(bits[0]), bitDigit(bits[1]), bitDigit(bits[2]), bitDigit(bits[3]))))
			s.WriteString("\n")
		}
		s.WriteString("\n")
	}

	// Statistics
	if m.hasStats {
		statsContent := strings.Builder{}
		statsContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
			labelStyle.Render("Exchanges:"), valueStyle.Render(fmt.Sprintf("%d", m.stats.TotalExchanges)),
			labelStyle.Render("Log reads:"), valueStyle.Render(fmt.Sprintf("%d", m.stats.LogReads)),
			labelStyle.Render("Bytes RX:"), valueStyle.Render(fmt.Sprintf("%d", m.stats.BytesRead)),
		))

		if m.stats.Retries > 0 || m.stats.TransportErrors > 0 {
			statsContent.WriteString(fmt.Sprintf("%s %s   %s %s\n",
				labelStyle.Render("Retries:"), warningStyle.Render(fmt.Sprintf("%d", m.stats.Retries)),
				labelStyle.Render("Transport errors:"), errorStyle.Render(fmt.Sprintf("%d", m.stats.TransportErrors)),
			))
		}

		statsContent.WriteString(fmt.Sprintf("%s %s   %s %s",
			labelStyle.Render("Rate:"), valueStyle.Render(fmt.Sprintf("%.1f xchg/s", m.stats.ExchangeRate)),
			labelStyle.Render("Error rate:"), func() string {
				if m.stats.ErrorRate > 0 {
					return errorStyle.Render(fmt.Sprintf("%.1f err/s", m.stats.ErrorRate))
				}
				return valueStyle.Render(fmt.Sprintf("%.1f err/s", m.stats.ErrorRate))
			}(),
		))

		s.WriteString(boxStyle.Render(statsContent.String()))
		s.WriteString("\n\n")
	}

	// Record table
	s.WriteString(labelStyle.Render("Records:"))
	s.WriteString("\n")
	s.WriteString(boxStyle.Render(m.table.View()))
	s.WriteString("\n\n")

	// Detail pane for the selected record
	if len(m.records) > 0 {
		idx := m.table.Cursor()
		if idx >= 0 && idx < len(m.records) {
			rec := m.records[idx]
			detail := strings.TrimRight(jolt.FormatRecord(rec), "\n")
			detail += "\n" + headerStyle.Render("X ") + sparkline(rec.X())
			detail += "\n" + headerStyle.Render("Y ") + sparkline(rec.Y())
			detail += "\n" + headerStyle.Render("Z ") + sparkline(rec.Z())
			s.WriteString(labelStyle.Render("Selected record:"))
			s.WriteString("\n")
			s.WriteString(boxStyle.Render(detail))
			s.WriteString("\n\n")
		}
	}

	// Event log
	s.WriteString(labelStyle.Render("Recent Events:"))
	s.WriteString("\n")

	logHeight := m.height - 24
	if logHeight < 3 {
		logHeight = 3
	}

	logContent := strings.Builder{}
	startIdx := len(m.eventLog) - logHeight
	if startIdx < 0 {
		startIdx = 0
	}

	if len(m.eventLog) == 0 {
		logContent.WriteString(headerStyle.Render("  (no events yet)"))
	} else {
		for i := startIdx; i < len(m.eventLog); i++ {
			entry := m.eventLog[i]
			timestamp := entry.timestamp.Format("15:04:05.000")
			if entry.isError {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					errorStyle.Render("✗ "+entry.message),
				))
			} else {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					warningStyle.Render("ℹ "+entry.message),
				))
			}
		}
	}

	s.WriteString(boxStyle.Width(m.width - 4).Render(strings.TrimRight(logContent.String(), "\n")))

	return s.String()
}
