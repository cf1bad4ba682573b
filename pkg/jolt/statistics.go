// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Juno Reyes, Kinewave

package jolt

import (
	"errors"
	"fmt"
	"time"
)

// Statistics tracks exchange counters and error rates for a session
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	TotalExchanges  uint64
	Resets          uint64
	ControlReads    uint64
	CountReads      uint64
	LogReads        uint64
	BytesRead       uint64
	BytesWritten    uint64
	Retries         uint64
	TransportErrors uint64
	ResetFailures   uint64
	MalformedFrames uint64
	RejectedReads   uint64

	// Rates (calculated)
	ExchangeRate float64 // exchanges/sec
	ErrorRate    float64 // errors/sec
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// Update records one completed exchange and classifies its outcome.
// Rejected ReadLog preconditions count as exchanges even though they never
// reach the transport. MalformedFrames only moves for callers that decode
// frames themselves: a session read always hands the decoder a full frame.
func (s *Statistics) Update(cmd Command, err error) {
	s.TotalExchanges++

	switch cmd {
	case CmdReset:
		s.Resets++
	case CmdQueryControlRegister:
		s.ControlReads++
	case CmdQueryLogCount:
		s.CountReads++
	case CmdReadLog:
		s.LogReads++
	}

	if err != nil {
		var transportErr *TransportError
		var malformedErr *MalformedFrameError
		var resetErr *ResetFailedError
		var invalidID *InvalidLogIDError
		switch {
		case errors.As(err, &transportErr):
			s.TransportErrors++
		case errors.As(err, &malformedErr):
			s.MalformedFrames++
		case errors.As(err, &resetErr):
			s.ResetFailures++
		case errors.Is(err, ErrNoLogsStored), errors.As(err, &invalidID):
			s.RejectedReads++
		}
	}

	s.LastUpdateTime = time.Now()
}

// AddBytesRead counts response bytes received from the device
func (s *Statistics) AddBytesRead(n int) {
	s.BytesRead += uint64(n)
}

// AddBytesWritten counts request bytes sent to the device
func (s *Statistics) AddBytesWritten(n int) {
	s.BytesWritten += uint64(n)
}

// AddRetry counts one transient per-byte read failure
func (s *Statistics) AddRetry() {
	s.Retries++
}

// CalculateRates calculates exchange and error rates
func (s *Statistics) CalculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed > 0 {
		s.ExchangeRate = float64(s.TotalExchanges) / elapsed
		errorCount := s.TransportErrors + s.ResetFailures + s.MalformedFrames + s.RejectedReads
		s.ErrorRate = float64(errorCount) / elapsed
	}
}

// String returns a formatted statistics summary
func (s *Statistics) String() string {
	s.CalculateRates()

	elapsed := time.Since(s.StartTime)

	result := fmt.Sprintf("=== Session statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Exchanges:       %8d\n", s.TotalExchanges)
	if s.Resets > 0 {
		result += fmt.Sprintf("  Resets:           %5d\n", s.Resets)
	}
	if s.ControlReads > 0 {
		result += fmt.Sprintf("  Control reads:    %5d\n", s.ControlReads)
	}
	if s.CountReads > 0 {
		result += fmt.Sprintf("  Count reads:      %5d\n", s.CountReads)
	}
	if s.LogReads > 0 {
		result += fmt.Sprintf("  Log reads:        %5d\n", s.LogReads)
	}
	result += fmt.Sprintf("Bytes read:      %8d\n", s.BytesRead)
	result += fmt.Sprintf("Bytes written:   %8d\n", s.BytesWritten)

	if s.Retries > 0 {
		result += fmt.Sprintf("Read retries:    %8d\n", s.Retries)
	}
	if s.TransportErrors > 0 {
		result += fmt.Sprintf("Transport errors:%8d\n", s.TransportErrors)
	}
	if s.ResetFailures > 0 {
		result += fmt.Sprintf("Reset failures:  %8d\n", s.ResetFailures)
	}
	if s.MalformedFrames > 0 {
		result += fmt.Sprintf("Malformed frames:%8d\n", s.MalformedFrames)
	}
	if s.RejectedReads > 0 {
		result += fmt.Sprintf("Rejected reads:  %8d\n", s.RejectedReads)
	}

	result += fmt.Sprintf("Exchange rate:   %8.1f /sec\n", s.ExchangeRate)
	result += fmt.Sprintf("Error rate:      %8.1f /sec\n", s.ErrorRate)
	result += "=======================================\n"

	return result
}

// Reset resets all statistics counters
func (s *Statistics) Reset() {
	now := time.Now()
	s.StartTime = now
	s.LastUpdateTime = now
	s.TotalExchanges = 0
	s.Resets = 0
	s.ControlReads = 0
	s.CountReads = 0
	s.LogReads = 0
	s.BytesRead = 0
	s.BytesWritten = 0
	s.Retries = 0
	s.TransportErrors = 0
	s.ResetFailures = 0
	s.MalformedFrames = 0
	s.RejectedReads = 0
	s.ExchangeRate = 0
	s.ErrorRate = 0
}
