//go:build !wasm
// +build !wasm

// Package tcp implements transport.Transport over a plain net.Conn.
package tcp

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Faldon/DB4D/transport"
)

// Options configures the TCP transport.
type Options struct {
	// Address is the server address (host:port).
	Address string

	// Timeout bounds the initial dial and, absent a context deadline,
	// each Send/Receive call.
	Timeout time.Duration
}

// TCPTransport implements transport.Transport over a single net.Conn.
// Connection pooling is a Non-goal of this driver (SPEC_FULL.md §5): one
// TCPTransport owns exactly one connection, and the driver above it
// serialises all calls.
type TCPTransport struct {
	opts    Options
	conn    net.Conn
	reader  *bufio.Reader
	metrics tcpMetrics
	mu      sync.Mutex
	closed  bool
}

type tcpMetrics struct {
	totalRequests      atomic.Int64
	totalErrors        atomic.Int64
	bytesSent          atomic.Int64
	bytesReceived      atomic.Int64
	connectionsCreated atomic.Int64
	latencySum         atomic.Int64 // nanoseconds
	mu                 sync.RWMutex
	lastError          error
	lastErrorTime      time.Time
}

// NewTCPTransport dials addr and returns a ready transport.Transport.
func NewTCPTransport(ctx context.Context, opts Options) (transport.Transport, error) {
	if opts.Address == "" {
		return nil, fmt.Errorf("tcp: address is required")
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}

	dialer := net.Dialer{Timeout: opts.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", opts.Address)
	if err != nil {
		return nil, fmt.Errorf("tcp: dial %s: %w", opts.Address, err)
	}

	t := &TCPTransport{
		opts:   opts,
		conn:   conn,
		reader: bufio.NewReader(conn),
	}
	t.metrics.connectionsCreated.Add(1)
	return t, nil
}

func (t *TCPTransport) deadline(ctx context.Context) time.Time {
	if dl, ok := ctx.Deadline(); ok {
		return dl
	}
	return time.Now().Add(t.opts.Timeout)
}

// Send implements transport.Transport.
func (t *TCPTransport) Send(ctx context.Context, data []byte) error {
	start := time.Now()
	t.metrics.totalRequests.Add(1)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		err := fmt.Errorf("tcp: transport closed")
		t.recordError(err)
		return err
	}

	if err := t.conn.SetWriteDeadline(t.deadline(ctx)); err != nil {
		t.recordError(err)
		return err
	}

	n, err := t.conn.Write(data)
	if err != nil {
		t.markDead()
		t.recordError(err)
		return err
	}

	t.metrics.bytesSent.Add(int64(n))
	t.recordLatency(time.Since(start))
	return nil
}

// Receive implements transport.Transport, reading exactly n bytes.
func (t *TCPTransport) Receive(ctx context.Context, n int) ([]byte, error) {
	start := time.Now()

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		err := fmt.Errorf("tcp: transport closed")
		t.recordError(err)
		return nil, err
	}

	if err := t.conn.SetReadDeadline(t.deadline(ctx)); err != nil {
		t.recordError(err)
		return nil, err
	}

	buf := make([]byte, n)
	if _, err := io.ReadFull(t.reader, buf); err != nil {
		t.markDead()
		t.recordError(err)
		return nil, err
	}

	t.metrics.bytesReceived.Add(int64(n))
	t.recordLatency(time.Since(start))
	return buf, nil
}

// ReceiveLine implements transport.Transport, reading through the next LF
// byte inclusive (the final byte of a CRLF-terminated header line).
func (t *TCPTransport) ReceiveLine(ctx context.Context) ([]byte, error) {
	start := time.Now()

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		err := fmt.Errorf("tcp: transport closed")
		t.recordError(err)
		return nil, err
	}

	if err := t.conn.SetReadDeadline(t.deadline(ctx)); err != nil {
		t.recordError(err)
		return nil, err
	}

	line, err := t.reader.ReadBytes('\n')
	if err != nil {
		t.markDead()
		t.recordError(err)
		return nil, err
	}

	t.metrics.bytesReceived.Add(int64(len(line)))
	t.recordLatency(time.Since(start))
	return line, nil
}

// Close implements transport.Transport.
func (t *TCPTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	if tc, ok := t.conn.(*net.TCPConn); ok {
		_ = tc.CloseWrite()
	}
	return t.conn.Close()
}

// IsHealthy implements transport.Transport.
func (t *TCPTransport) IsHealthy() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.closed
}

// GetMetrics implements transport.Transport.
func (t *TCPTransport) GetMetrics() transport.TransportMetrics {
	t.metrics.mu.RLock()
	lastErr := t.metrics.lastError
	lastErrTime := t.metrics.lastErrorTime
	t.metrics.mu.RUnlock()

	totalReqs := t.metrics.totalRequests.Load()
	avgLatency := time.Duration(0)
	if totalReqs > 0 {
		avgLatency = time.Duration(t.metrics.latencySum.Load() / totalReqs)
	}

	return transport.TransportMetrics{
		TotalRequests:      totalReqs,
		TotalErrors:        t.metrics.totalErrors.Load(),
		AverageLatency:     avgLatency,
		LastError:          lastErr,
		LastErrorTime:      lastErrTime,
		BytesSent:          t.metrics.bytesSent.Load(),
		BytesReceived:      t.metrics.bytesReceived.Load(),
		ConnectionsCreated: t.metrics.connectionsCreated.Load(),
	}
}

func (t *TCPTransport) markDead() {
	t.closed = true
	_ = t.conn.Close()
}

func (t *TCPTransport) recordError(err error) {
	t.metrics.totalErrors.Add(1)
	t.metrics.mu.Lock()
	t.metrics.lastError = err
	t.metrics.lastErrorTime = time.Now()
	t.metrics.mu.Unlock()
}

func (t *TCPTransport) recordLatency(latency time.Duration) {
	t.metrics.latencySum.Add(int64(latency))
}
