package client

import "time"

// DriverOptions configures the driver's behavior.
type DriverOptions struct {
	// DialTimeout bounds the initial TCP connect in Dial. Default: 10s
	DialTimeout time.Duration

	// RequestTimeout, when non-zero, is applied as a context.Context
	// deadline around each LOGIN/EXECUTE-STATEMENT/CLOSE-STATEMENT
	// request/response exchange (§5 Suspension points), surfaced as a
	// *TransportError on expiry. A caller-supplied context deadline that
	// expires sooner still wins. Default: 10s
	RequestTimeout time.Duration

	// DebugMode enables verbose error serialization with stack traces and
	// full cause chains. Default: false
	DebugMode bool

	// MaxRetries is the maximum number of dial attempts in Dial.
	// Default: 3
	MaxRetries int

	// Logger is the logger implementation to use. If nil, a default
	// logger is used.
	Logger Logger

	// LogLevel sets the minimum log level (DEBUG, INFO, WARN, ERROR).
	// Default: "INFO"
	LogLevel string

	// OnConnected is called when LOGIN succeeds.
	OnConnected func(StateTransition)

	// OnDisconnected is called when the connection is closed.
	OnDisconnected func(StateTransition)

	// StatementCacheSize is the maximum number of prepared statement
	// frames to cache (§4.6, invariant 8). Default: 100
	StatementCacheSize int

	// TransactionTimeout bounds how long a transaction may remain open
	// before Commit/Rollback is required. Default: 5 minutes
	TransactionTimeout time.Duration
}

// DefaultOptions returns DriverOptions with default values.
func DefaultOptions() DriverOptions {
	return DriverOptions{
		DialTimeout:        10 * time.Second,
		RequestTimeout:     10 * time.Second,
		DebugMode:          false,
		MaxRetries:         3,
		LogLevel:           "INFO",
		StatementCacheSize: 100,
		TransactionTimeout: 5 * time.Minute,
	}
}
