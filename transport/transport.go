// Package transport defines the transport layer abstraction this driver
// speaks its wire protocol over.
package transport

import (
	"context"
	"time"
)

// Transport sends and receives raw protocol bytes over a single connection.
// A Transport is not safe for concurrent use: the driver serialises all
// calls to one Transport instance (SPEC_FULL.md §5).
type Transport interface {
	// Send transmits data to the server.
	Send(ctx context.Context, data []byte) error

	// Receive reads exactly n bytes from the server, or returns an error.
	Receive(ctx context.Context, n int) ([]byte, error)

	// ReceiveLine reads bytes through the next LF byte, inclusive; for a
	// CRLF-terminated header line that is the whole line with its CRLF.
	ReceiveLine(ctx context.Context) ([]byte, error)

	// Close closes the transport connection.
	Close() error

	// IsHealthy returns whether the transport is usable.
	IsHealthy() bool

	// GetMetrics returns transport performance metrics.
	GetMetrics() TransportMetrics
}

// TransportMetrics contains performance and health metrics for one
// transport instance.
type TransportMetrics struct {
	TotalRequests      int64
	TotalErrors        int64
	AverageLatency     time.Duration
	LastError          error
	LastErrorTime      time.Time
	BytesSent          int64
	BytesReceived      int64
	ConnectionsCreated int64
}

// Factory creates a new transport instance bound to address.
type Factory func(ctx context.Context, address string) (Transport, error)
