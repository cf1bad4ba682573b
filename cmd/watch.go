// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Juno Reyes, Kinewave

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kinewave/joltctl/pkg/jolt"
)

var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live TUI that tails new log records",
	Long: `Watch a Joltbox for new shock events in a terminal UI.

The log count is polled on a fixed interval; whenever it grows, the new
records are fetched and appended to the table. Arrow keys select a
record, the detail pane shows its channel breakdown. Transfer statistics
update live. The connection is reopened automatically with backoff if
the link drops.

Press 'q' to quit.

Exit codes:
  0 - Watch exited normally
  1 - TUI error
  2 - Connection error`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 2*time.Second, "Poll interval for the log count")
}

// sessionManager owns the protocol session for the watch poller and
// handles reconnection. The session is only ever touched from the
// poller goroutine; the TUI sees immutable snapshots.
type sessionManager struct {
	mu       sync.RWMutex
	sess     *jolt.Session
	connInfo string

	stats *jolt.Statistics
	p     *tea.Program
	done  chan struct{}
}

func (sm *sessionManager) session() *jolt.Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.sess
}

func (sm *sessionManager) setSession(s *jolt.Session, connInfo string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.sess = s
	sm.connInfo = connInfo
}

func runWatch(cmd *cobra.Command, args []string) error {
	s, connInfo, err := openSession()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}

	stats := jolt.NewStatistics()
	s.Stats = stats

	sm := &sessionManager{
		sess:     s,
		connInfo: connInfo,
		stats:    stats,
		done:     make(chan struct{}),
	}

	m := initialWatchModel(connInfo, watchInterval)
	p := tea.NewProgram(m, tea.WithAltScreen())
	sm.p = p

	go sm.pollLoop(cmd.Context())

	if _, err := p.Run(); err != nil {
		close(sm.done)
		sm.session().Close()
		return fmt.Errorf("TUI error: %v", err)
	}

	close(sm.done)
	sm.session().Close()
	return nil
}

// pollLoop queries the log count on each tick and fetches any records
// stored since the last poll.
func (sm *sessionManager) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	var fetched uint8

	for {
		select {
		case <-sm.done:
			return
		case <-ticker.C:
		}

		s := sm.session()
		count, err := s.LogCount(ctx)
		if err != nil {
			sm.reportError(err)
			if shouldReconnect(err) {
				if !sm.reconnect() {
					return
				}
				fetched = 0
			}
			continue
		}

		// The device renumbers from zero after an erase
		if count < fetched {
			fetched = 0
			sm.p.Send(watchResetMsg{})
		}

		for id := fetched; id < count; id++ {
			rec, err := s.ReadLog(ctx, id)
			if err != nil {
				sm.reportError(err)
				break
			}
			fetched = id + 1
			sm.p.Send(watchRecordMsg{record: rec})
		}

		// Register failures are only reported here; if the link is
		// really gone the next count poll drives the reconnect.
		reg, regErr := s.ControlRegister(ctx)
		if regErr != nil {
			sm.reportError(regErr)
		}

		sm.stats.CalculateRates()
		sm.p.Send(watchPollMsg{count: count, reg: reg, regOK: regErr == nil, stats: *sm.stats})
	}
}

func (sm *sessionManager) reportError(err error) {
	select {
	case <-sm.done:
	default:
		sm.p.Send(watchErrMsg{err: err})
	}
}

// shouldReconnect reports whether an exchange error means the link is
// gone. A timeout just means the device kept quiet; the link stays up.
func shouldReconnect(err error) bool {
	var transportErr *jolt.TransportError
	if !errors.As(err, &transportErr) {
		return false
	}
	return !transportErr.Timeout()
}

// reconnect reopens the connection with exponential backoff.
// Returns false if shutdown was requested during reconnection.
func (sm *sessionManager) reconnect() bool {
	sm.session().Close()
	sm.p.Send(watchConnLostMsg{})

	backoff := 1 * time.Second
	maxBackoff := 30 * time.Second

	for {
		select {
		case <-sm.done:
			return false
		case <-time.After(backoff):
		}

		s, connInfo, err := openSession()
		if err == nil {
			s.Stats = sm.stats
			sm.setSession(s, connInfo)
			sm.p.Send(watchReconnectedMsg{connInfo: connInfo})
			return true
		}

		// Exponential backoff
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}
