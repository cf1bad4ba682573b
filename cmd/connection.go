// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Juno Reyes, Kinewave

package cmd

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"go.bug.st/serial"
	"golang.org/x/term"

	"github.com/kinewave/joltctl/pkg/jolt"
)

// serialReadTimeout makes port reads return (0, nil) when no byte arrives
// in time, which is the polling contract the protocol session expects.
const serialReadTimeout = 100 * time.Millisecond

// Connection provides a common interface for reading/writing bytes from serial or WebSocket
type Connection interface {
	io.Reader
	io.Writer
	io.Closer
}

// SerialConnection wraps a serial port
type SerialConnection struct {
	port serial.Port
}

func (s *SerialConnection) Read(p []byte) (int, error) {
	return s.port.Read(p)
}

func (s *SerialConnection) Write(p []byte) (int, error) {
	return s.port.Write(p)
}

// DrainInput discards bytes buffered by the OS driver so a stale response
// from an aborted exchange cannot be read back as the next answer.
func (s *SerialConnection) DrainInput() error {
	return s.port.ResetInputBuffer()
}

func (s *SerialConnection) Close() error {
	return s.port.Close()
}

// ErrConnectionClosed is returned when reading from a closed WebSocket
// connection. It wraps net.ErrClosed so the session treats it as fatal.
var ErrConnectionClosed = fmt.Errorf("websocket connection closed: %w", net.ErrClosed)

// wsPollInterval bounds how long a read waits on the message pump before
// reporting "nothing available yet", mirroring the serial read timeout.
const wsPollInterval = 100 * time.Millisecond

// WebSocketConnection adapts a WebSocket to the byte-polling transport
// contract. gorilla's ReadMessage blocks with no deadline, so a pump
// goroutine forwards incoming binary messages to a channel and Read polls
// that channel, returning (0, nil) while the bridge is quiet.
type WebSocketConnection struct {
	conn      *websocket.Conn
	messages  chan []byte
	done      chan struct{} // closed when the pump exits
	quit      chan struct{} // closed by Close to release a blocked pump
	closeOnce sync.Once
	buf       []byte
	bufOffset int
	closed    bool // sticky read-side failure
}

func newWebSocketConnection(conn *websocket.Conn) *WebSocketConnection {
	w := &WebSocketConnection{
		conn:     conn,
		messages: make(chan []byte, 8),
		done:     make(chan struct{}),
		quit:     make(chan struct{}),
	}
	go w.pump()
	return w
}

// pump forwards messages until the connection dies. Device responses travel
// as binary messages; everything else is dropped.
func (w *WebSocketConnection) pump() {
	defer close(w.done)
	for {
		messageType, data, err := w.conn.ReadMessage()
		if err != nil {
			return
		}
		if messageType != websocket.BinaryMessage {
			continue
		}
		select {
		case w.messages <- data:
		case <-w.quit:
			return
		}
	}
}

func (w *WebSocketConnection) Read(p []byte) (int, error) {
	if w.closed {
		return 0, ErrConnectionClosed
	}

	// Serve buffered bytes from the last message first
	if w.bufOffset < len(w.buf) {
		n := copy(p, w.buf[w.bufOffset:])
		w.bufOffset += n
		return n, nil
	}

	timer := time.NewTimer(wsPollInterval)
	defer timer.Stop()

	select {
	case data := <-w.messages:
		return w.deliver(p, data), nil
	case <-w.done:
		// The pump may have parked a final message before exiting
		select {
		case data := <-w.messages:
			return w.deliver(p, data), nil
		default:
		}
		w.closed = true
		return 0, ErrConnectionClosed
	case <-timer.C:
		// Nothing available yet; the session polls again
		return 0, nil
	}
}

func (w *WebSocketConnection) deliver(p, data []byte) int {
	w.buf = data
	w.bufOffset = copy(p, data)
	return w.bufOffset
}

func (w *WebSocketConnection) Write(p []byte) (int, error) {
	err := w.conn.WriteMessage(websocket.BinaryMessage, p)
	if err != nil {
		return 0, err
	}
	return len(p), nil
}

// DrainInput discards buffered responses so a stale answer from an aborted
// exchange cannot be read back as the next one.
func (w *WebSocketConnection) DrainInput() error {
	w.buf = nil
	w.bufOffset = 0
	for {
		select {
		case <-w.messages:
		default:
			return nil
		}
	}
}

func (w *WebSocketConnection) Close() error {
	w.closeOnce.Do(func() { close(w.quit) })
	return w.conn.Close()
}

// OpenSerialConnection opens a serial port connection
func OpenSerialConnection(portName string, baudRate int) (Connection, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %v", portName, err)
	}

	if err := port.SetReadTimeout(serialReadTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to set read timeout on %s: %v", portName, err)
	}

	return &SerialConnection{port: port}, nil
}

// OpenWebSocketConnection opens a WebSocket connection with HTTP Basic auth
func OpenWebSocketConnection(wsURL, username, password string, skipSSLVerify bool) (Connection, error) {
	// Parse and validate URL
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %v", err)
	}

	// Validate scheme
	switch u.Scheme {
	case "ws", "wss":
		// OK
	default:
		return nil, fmt.Errorf("unsupported URL scheme: %s (use ws:// or wss://)", u.Scheme)
	}

	// Create dialer with timeout
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	// Configure TLS for wss://
	if u.Scheme == "wss" {
		dialer.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: skipSSLVerify,
		}
	}

	// Build HTTP headers with Basic auth
	headers := http.Header{}
	if username != "" && password != "" {
		credentials := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
		headers.Set("Authorization", "Basic "+credentials)
	}

	// Connect
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	conn, resp, err := dialer.DialContext(ctx, wsURL, headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("WebSocket connection failed (HTTP %d): %v", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("WebSocket connection failed: %v", err)
	}

	return newWebSocketConnection(conn), nil
}

// GetPassword retrieves password from environment or prompts user
func GetPassword() (string, error) {
	// First check environment variable
	if pw := os.Getenv("JOLTCTL_PASSWORD"); pw != "" {
		return pw, nil
	}

	// Prompt user for password (hide input)
	fmt.Fprint(os.Stderr, "Password: ")

	// Read password without echo
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		// Fallback to regular input if terminal functions fail
		reader := bufio.NewReader(os.Stdin)
		password, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read password: %v", err)
		}
		fmt.Fprintln(os.Stderr) // newline after password
		return strings.TrimSpace(password), nil
	}

	fmt.Fprintln(os.Stderr) // newline after password
	return string(passwordBytes), nil
}

// OpenConnection opens either a serial or WebSocket connection based on flags
func OpenConnection() (Connection, string, error) {
	if wsURL != "" {
		// WebSocket mode
		password := ""
		if wsUsername != "" {
			var err error
			password, err = GetPassword()
			if err != nil {
				return nil, "", err
			}
		}

		conn, err := OpenWebSocketConnection(wsURL, wsUsername, password, wsNoSSLVerify)
		if err != nil {
			return nil, "", err
		}

		return conn, fmt.Sprintf("WebSocket: %s", wsURL), nil
	}

	if portName != "" {
		// Serial mode
		conn, err := OpenSerialConnection(portName, baudRate)
		if err != nil {
			return nil, "", err
		}

		return conn, fmt.Sprintf("Serial: %s @ %d baud", portName, baudRate), nil
	}

	return nil, "", fmt.Errorf("either --port or --url must be specified")
}

// openSession opens the configured transport and wraps it in a protocol
// session carrying the shared logger and timeout.
func openSession() (*jolt.Session, string, error) {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return nil, "", err
	}

	s := jolt.NewSession(conn)
	s.Timeout = exchangeTimeout
	s.Logger = logger
	return s, connInfo, nil
}
