// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Juno Reyes, Kinewave

package jolt

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoLogsStored is returned by ReadLog when the last count reported by
// the device was zero.
var ErrNoLogsStored = errors.New("no logs stored in the EEPROM")

// UnknownCommandError reports user input outside the command set. No bytes
// are written to the transport for an unknown command.
type UnknownCommandError struct {
	Input string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command %q", e.Input)
}

// InvalidLogIDError reports a log ID at or beyond the cached log count.
type InvalidLogIDError struct {
	ID    uint8
	Count uint8
}

func (e *InvalidLogIDError) Error() string {
	return fmt.Sprintf("invalid log ID %d: device reports %d stored logs", e.ID, e.Count)
}

// MalformedFrameError reports a log frame of the wrong size. The session
// always accumulates exactly FrameSize bytes, so seeing this outside direct
// decoder use means the exchange desynchronized.
type MalformedFrameError struct {
	Size int
}

func (e *MalformedFrameError) Error() string {
	return fmt.Sprintf("malformed log frame: %d bytes, want %d", e.Size, FrameSize)
}

// ResetFailedError reports a reset acknowledgement other than 'K'.
type ResetFailedError struct {
	Ack byte
}

func (e *ResetFailedError) Error() string {
	return fmt.Sprintf("EEPROM reset failed: acknowledgement 0x%02X, want 0x%02X", e.Ack, ResetAck)
}

// TransportError reports a failed exchange: a physical I/O failure, a
// cancelled or expired context, or an exhausted retry budget. Received is
// the number of response bytes accumulated before the failure.
type TransportError struct {
	Command  Command
	Op       string
	Received int
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport %s failed after %d bytes: %v", e.Command, e.Op, e.Received, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the exchange failed by deadline or cancellation
func (e *TransportError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded) || errors.Is(e.Err, context.Canceled)
}
