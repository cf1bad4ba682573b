// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Juno Reyes, Kinewave

package jolt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/rs/zerolog"
	"go.bug.st/serial"
)

// Session default tuning
const (
	DefaultTimeout      = 5 * time.Second
	DefaultPollInterval = 5 * time.Millisecond
	DefaultRetryLimit   = 32
)

// InputDrainer is implemented by transports that can discard buffered
// input. The session drains stale bytes before each request so a leftover
// response from an aborted exchange cannot be misread as the current one.
type InputDrainer interface {
	DrainInput() error
}

// Session drives the command protocol over a single transport. Exchanges
// are strictly half-duplex: one command is written and its full response
// consumed before the next may begin. The session owns the transport for
// its lifetime; no other reader or writer may touch it.
//
// A Session is not safe for concurrent use.
type Session struct {
	// Timeout bounds each exchange when the context carries no deadline
	// of its own. Zero disables the fallback deadline.
	Timeout time.Duration

	// PollInterval is the delay between empty polls while the device
	// prepares a response. Values at or below zero fall back to
	// DefaultPollInterval.
	PollInterval time.Duration

	// RetryLimit is the number of consecutive transient read errors
	// tolerated per response byte before the exchange fails.
	RetryLimit int

	// Logger receives exchange-level debug logging. Defaults to a no-op.
	Logger zerolog.Logger

	// Stats, when set, accumulates exchange and byte counters.
	Stats *Statistics

	conn          io.ReadWriteCloser
	knownLogCount uint8
}

// NewSession wraps a transport in a protocol session. The transport's Read
// must return (0, nil) when no byte is available yet; the session treats an
// empty read as "response not ready" and keeps polling.
func NewSession(conn io.ReadWriteCloser) *Session {
	return &Session{
		Timeout:      DefaultTimeout,
		PollInterval: DefaultPollInterval,
		RetryLimit:   DefaultRetryLimit,
		Logger:       zerolog.Nop(),
		conn:         conn,
	}
}

// Reset asks the device to erase the EEPROM log memory. The device replies
// with a single acknowledgement byte; anything other than 'K' is reported
// as a ResetFailedError.
func (s *Session) Reset(ctx context.Context) error {
	start := time.Now()
	err := s.reset(ctx)
	s.finish(CmdReset, start, err)
	return err
}

func (s *Session) reset(ctx context.Context) error {
	deadline := s.exchangeDeadline(ctx)
	if err := s.request(CmdReset, nil); err != nil {
		return err
	}
	ack, err := s.readByte(ctx, CmdReset, deadline, 0)
	if err != nil {
		return err
	}
	if ack != ResetAck {
		return &ResetFailedError{Ack: ack}
	}
	return nil
}

// ControlRegister queries the EEPROM control word.
func (s *Session) ControlRegister(ctx context.Context) (ControlRegister, error) {
	start := time.Now()
	reg, err := s.controlRegister(ctx)
	s.finish(CmdQueryControlRegister, start, err)
	return reg, err
}

func (s *Session) controlRegister(ctx context.Context) (ControlRegister, error) {
	deadline := s.exchangeDeadline(ctx)
	if err := s.request(CmdQueryControlRegister, nil); err != nil {
		return ControlRegister{}, err
	}
	b, err := s.readByte(ctx, CmdQueryControlRegister, deadline, 0)
	if err != nil {
		return ControlRegister{}, err
	}
	return DecodeControlRegister(b), nil
}

// LogCount asks the device how many log records the EEPROM holds. A
// successful reply updates the session's cached count, which ReadLog
// validates against.
func (s *Session) LogCount(ctx context.Context) (uint8, error) {
	start := time.Now()
	count, err := s.logCount(ctx)
	s.finish(CmdQueryLogCount, start, err)
	return count, err
}

func (s *Session) logCount(ctx context.Context) (uint8, error) {
	deadline := s.exchangeDeadline(ctx)
	if err := s.request(CmdQueryLogCount, nil); err != nil {
		return 0, err
	}
	count, err := s.readByte(ctx, CmdQueryLogCount, deadline, 0)
	if err != nil {
		return 0, err
	}
	s.knownLogCount = count
	return count, nil
}

// ReadLog retrieves and decodes one stored log record. The ID is validated
// against the count cached by the most recent LogCount call before anything
// is written to the transport: with no known logs the result is
// ErrNoLogsStored, and an ID at or past the cached count is an
// InvalidLogIDError.
func (s *Session) ReadLog(ctx context.Context, id uint8) (*LogRecord, error) {
	start := time.Now()
	rec, err := s.readLog(ctx, id)
	s.finish(CmdReadLog, start, err)
	return rec, err
}

func (s *Session) readLog(ctx context.Context, id uint8) (*LogRecord, error) {
	if s.knownLogCount == 0 {
		return nil, ErrNoLogsStored
	}
	if id >= s.knownLogCount {
		return nil, &InvalidLogIDError{ID: id, Count: s.knownLogCount}
	}

	deadline := s.exchangeDeadline(ctx)
	if err := s.request(CmdReadLog, []byte{id}); err != nil {
		return nil, err
	}

	frame := make([]byte, 0, FrameSize)
	for len(frame) < FrameSize {
		b, err := s.readByte(ctx, CmdReadLog, deadline, len(frame))
		if err != nil {
			return nil, err
		}
		frame = append(frame, b)
	}

	rec, err := DecodeFrame(frame)
	if err != nil {
		return nil, err
	}
	s.Logger.Debug().Uint8("id", rec.ID()).Uint16("ts", rec.Timestamp()).
		Str("int1", rec.InterruptString()).Msg("log record decoded")
	return rec, nil
}

// Outcome carries the typed result of a dispatched exchange. Only the
// field matching the command is populated.
type Outcome struct {
	Command Command
	Control ControlRegister
	Count   uint8
	Record  *LogRecord
}

// Dispatch parses a raw command string and performs the matching exchange.
// ReadLog takes its log ID from the first argument byte. Unknown commands
// fail before anything touches the transport.
func (s *Session) Dispatch(ctx context.Context, input string, args ...uint8) (*Outcome, error) {
	cmd, err := ParseCommand(input)
	if err != nil {
		return nil, err
	}
	out := &Outcome{Command: cmd}
	switch cmd {
	case CmdReset:
		err = s.Reset(ctx)
	case CmdQueryControlRegister:
		out.Control, err = s.ControlRegister(ctx)
	case CmdQueryLogCount:
		out.Count, err = s.LogCount(ctx)
	case CmdReadLog:
		if len(args) == 0 {
			return nil, fmt.Errorf("%s requires a log ID", cmd)
		}
		out.Record, err = s.ReadLog(ctx, args[0])
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// KnownLogCount returns the log count cached by the last successful
// LogCount exchange. The cache starts at zero and is never refreshed
// behind the caller's back, so it can go stale if the device state changes
// between exchanges; ReadLog validates only against this cached value.
func (s *Session) KnownLogCount() uint8 {
	return s.knownLogCount
}

// Close closes the underlying transport.
func (s *Session) Close() error {
	return s.conn.Close()
}

// request drains stale input and writes the command byte, followed by any
// argument bytes as a second write (the device parser consumes the command
// before its argument).
func (s *Session) request(cmd Command, args []byte) error {
	if d, ok := s.conn.(InputDrainer); ok {
		if err := d.DrainInput(); err != nil {
			return &TransportError{Command: cmd, Op: "drain", Err: err}
		}
	}
	if err := s.writeAll(cmd, []byte{byte(cmd)}); err != nil {
		return err
	}
	if len(args) > 0 {
		return s.writeAll(cmd, args)
	}
	return nil
}

func (s *Session) writeAll(cmd Command, p []byte) error {
	n, err := s.conn.Write(p)
	if s.Stats != nil {
		s.Stats.AddBytesWritten(n)
	}
	if err != nil {
		return &TransportError{Command: cmd, Op: "write", Err: err}
	}
	if n < len(p) {
		return &TransportError{Command: cmd, Op: "write", Err: io.ErrShortWrite}
	}
	return nil
}

// readByte polls the transport for the next response byte. Empty reads are
// the polling contract while the device prepares its reply and are retried
// after PollInterval. Transient read errors are retried up to RetryLimit
// consecutive failures; fatal transport errors, context cancellation, and
// the exchange deadline end the poll immediately.
func (s *Session) readByte(ctx context.Context, cmd Command, deadline time.Time, received int) (byte, error) {
	var buf [1]byte
	retries := 0
	for {
		if err := ctx.Err(); err != nil {
			return 0, &TransportError{Command: cmd, Op: "read", Received: received, Err: err}
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			return 0, &TransportError{Command: cmd, Op: "read", Received: received, Err: context.DeadlineExceeded}
		}
		n, err := s.conn.Read(buf[:])
		if n > 0 {
			if s.Stats != nil {
				s.Stats.AddBytesRead(n)
			}
			return buf[0], nil
		}
		if err != nil {
			if isFatalReadError(err) {
				return 0, &TransportError{Command: cmd, Op: "read", Received: received, Err: err}
			}
			retries++
			if s.Stats != nil {
				s.Stats.AddRetry()
			}
			if retries > s.RetryLimit {
				return 0, &TransportError{Command: cmd, Op: "read", Received: received, Err: fmt.Errorf("retry limit exceeded: %w", err)}
			}
			continue
		}
		s.idle(ctx)
	}
}

// exchangeDeadline derives the deadline for one exchange: the context's own
// deadline when present, otherwise now plus the session timeout.
func (s *Session) exchangeDeadline(ctx context.Context) time.Time {
	if d, ok := ctx.Deadline(); ok {
		return d
	}
	if s.Timeout <= 0 {
		return time.Time{}
	}
	return time.Now().Add(s.Timeout)
}

// idle sleeps one poll interval, waking early on context cancellation.
func (s *Session) idle(ctx context.Context) {
	d := s.PollInterval
	if d <= 0 {
		d = DefaultPollInterval
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (s *Session) finish(cmd Command, start time.Time, err error) {
	if s.Stats != nil {
		s.Stats.Update(cmd, err)
	}
	if err != nil {
		ev := s.Logger.Warn().Err(err).Stringer("cmd", cmd)
		var transportErr *TransportError
		if errors.As(err, &transportErr) {
			ev = ev.Int("bytes", transportErr.Received)
		}
		ev.Dur("elapsed", time.Since(start)).Msg("exchange failed")
		return
	}
	s.Logger.Debug().Stringer("cmd", cmd).Int("bytes", cmd.responseLen()).
		Dur("elapsed", time.Since(start)).Msg("exchange complete")
}

// isFatalReadError reports whether a read error means the transport is gone
// rather than momentarily glitching. Serial disconnects surface as PortError
// codes; websocket and pipe transports report closure directly.
func isFatalReadError(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) || errors.Is(err, net.ErrClosed) {
		return true
	}
	var portErr *serial.PortError
	if errors.As(err, &portErr) {
		switch portErr.Code() {
		case serial.PortClosed, serial.PortNotFound, serial.InvalidSerialPort:
			return true
		}
	}
	return false
}
