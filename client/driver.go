package client

import (
	"context"
	"encoding/base64"
	"sync"
	"time"

	"github.com/Faldon/DB4D/protocol"
	"github.com/Faldon/DB4D/transport"
	"github.com/Faldon/DB4D/transport/tcp"
)

// Driver owns exactly one connection to the server and serialises every
// request/reply exchange issued through it (SPEC_FULL.md §5). A Driver is
// not safe for concurrent use; callers needing concurrency run multiple
// Driver instances.
type Driver struct {
	opts      DriverOptions
	transport transport.Transport
	state     *StateManager
	logger    Logger
	cache     *StatementCache

	mu        sync.Mutex
	commandID int
}

// Dial opens a TCP connection to address and performs the LOGIN exchange
// (§4.6), making up to opts.MaxRetries dial attempts in total (at least
// one), with exponential backoff between them, before giving up. On a
// LOGIN error the underlying socket is closed and a *LoginError is returned without further retries,
// since a bad credential won't fix itself on a second attempt.
func Dial(ctx context.Context, address, user, password string, opts DriverOptions) (*Driver, error) {
	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}

	var lastErr error
	backoff := 100 * time.Millisecond
	for attempt := 1; attempt <= maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		t, err := tcp.NewTCPTransport(ctx, tcp.Options{Address: address, Timeout: opts.DialTimeout})
		if err != nil {
			lastErr = err
			if attempt < maxRetries {
				time.Sleep(backoff)
				backoff *= 2
			}
			continue
		}
		return NewDriver(t, opts, user, password, ctx)
	}

	return nil, ErrTransportConnect(address, lastErr)
}

// NewDriver wraps an already-dialed transport and performs LOGIN over it.
// Exposed separately from Dial so tests can inject a net.Pipe-backed
// transport.Transport instead of a real TCP socket.
func NewDriver(t transport.Transport, opts DriverOptions, user, password string, ctx context.Context) (*Driver, error) {
	if opts.Logger == nil {
		opts.Logger = NewLogger(opts.LogLevel, nil)
	}
	if opts.StatementCacheSize <= 0 {
		opts.StatementCacheSize = DefaultOptions().StatementCacheSize
	}

	d := &Driver{
		opts:      opts,
		transport: t,
		state:     NewStateManager(),
		logger:    opts.Logger,
		cache:     NewStatementCache(opts.StatementCacheSize),
		commandID: 1,
	}

	if err := d.login(ctx, user, password); err != nil {
		_ = t.Close()
		return nil, err
	}
	return d, nil
}

func (d *Driver) login(ctx context.Context, user, password string) error {
	if err := d.state.TransitionTo(StateConnecting, nil, nil); err != nil {
		return &StateError{Code: "E_INVALID_STATE", Message: err.Error()}
	}

	userB64 := base64.StdEncoding.EncodeToString([]byte(user))
	passB64 := base64.StdEncoding.EncodeToString([]byte(password))
	req := protocol.NewLoginRequest(d.commandID, userB64, passB64)

	d.logger.Debug("sending LOGIN", Int("commandId", d.commandID))

	meta, err := d.roundTrip(ctx, req)
	if err != nil {
		_ = d.state.TransitionTo(StateFresh, err, nil)
		return ErrTransportIO("login", err)
	}
	if meta.Error {
		loginErr := &LoginError{
			Code:    meta.ErrorCode,
			Message: meta.ErrorDescription,
			Details: map[string]interface{}{
				"componentCode": meta.ErrorComponentCode,
			},
			StackTrace: captureStackTrace(),
		}
		_ = d.state.TransitionTo(StateFresh, loginErr, nil)
		d.logger.Error("LOGIN rejected", String("code", meta.ErrorCode), String("description", meta.ErrorDescription))
		return loginErr
	}

	d.commandID += 2
	if err := d.state.TransitionTo(StateConnected, nil, nil); err != nil {
		return &StateError{Code: "E_INVALID_STATE", Message: err.Error()}
	}
	if d.opts.OnConnected != nil {
		d.opts.OnConnected(d.state.GetLastTransition())
	}
	d.logger.Info("LOGIN succeeded")
	return nil
}

// roundTrip sends req and parses the reply's header block. It does not read
// any row payload; callers that expect a Result-Set are responsible for
// calling protocol.DecodeRows afterward.
//
// When opts.RequestTimeout is non-zero, it bounds the entire exchange as a
// context.Context deadline (§5 Suspension points): every blocking
// ReadExact/ReadUntilCRLF call inside ParseBlock shares ctx, so a server
// that never finishes its header block surfaces as a TransportError instead
// of hanging forever.
//
// If ctx doesn't already carry a trace id, one is minted here via
// WithTraceID so every log line this call emits (including ones further down
// the call stack, since the stamped ctx is what's threaded through) carries
// the same RequestIDField.
func (d *Driver) roundTrip(ctx context.Context, req *protocol.Request) (*protocol.ResponseMetadata, error) {
	if TraceID(ctx) == "" {
		ctx = WithTraceID(ctx)
	}
	ctx, cancel := d.withRequestDeadline(ctx)
	defer cancel()

	d.logger.Debug("round trip", RequestIDField(ctx), Int("commandId", req.CommandID), String("verb", string(req.Verb)))

	if err := d.transport.Send(ctx, req.Bytes()); err != nil {
		d.logger.Error("send failed", RequestIDField(ctx), Error("cause", err))
		return nil, err
	}
	br := protocol.NewByteReader(newTransportSource(ctx, d.transport))
	meta, err := protocol.NewHeaderParser().ParseBlock(br)
	if err != nil {
		d.logger.Error("header parse failed", RequestIDField(ctx), Error("cause", err))
	}
	return meta, err
}

// withRequestDeadline bounds ctx by opts.RequestTimeout, when set, matching
// the round trip's deadline over any row payload read that follows it
// outside of roundTrip itself (e.g. Statement.Execute's DecodeRows calls).
func (d *Driver) withRequestDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.opts.RequestTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d.opts.RequestTimeout)
}

// allocatePrepareID returns the command id for a Prepare's phase-1 request
// and reserves the following odd id for that statement's phase-2 full
// fetch (§4.6: +4 per Prepare).
func (d *Driver) allocatePrepareID() int {
	id := d.commandID
	d.commandID += 4
	return id
}

// allocateRoundTripID returns the command id for a single-round-trip
// request, such as CLOSE-STATEMENT, that has no phase-2 follow-up (§4.6:
// +2 per round trip).
func (d *Driver) allocateRoundTripID() int {
	id := d.commandID
	d.commandID += 2
	return id
}

// requireConnected checks the driver is logged in before an operation that
// needs an active connection (§4.8).
func (d *Driver) requireConnected(operation string) error {
	if st := d.state.GetState(); st != StateConnected {
		return ErrInvalidState(operation, StateConnected, st)
	}
	return nil
}

// Prepare formats an EXECUTE-STATEMENT request for sql, consulting the
// statement cache first (§4.6). The returned Statement is not yet executed.
func (d *Driver) Prepare(ctx context.Context, sql string) (*Statement, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.requireConnected("Prepare"); err != nil {
		return nil, err
	}

	var req *protocol.Request
	if cached, ok := d.cache.Get(sql); ok {
		d.logger.Debug("statement cache hit", String("sql", sql))
		req = cached
	} else {
		d.logger.Debug("statement cache miss", String("sql", sql))
		req = protocol.NewExecuteStatementRequest(0, sql)
		d.cache.Add(sql, req)
		req = req.Clone()
	}
	req.CommandID = d.allocatePrepareID()

	return &Statement{driver: d, sql: sql, req: req}, nil
}

// Query prepares sql and immediately executes it with no bound arguments
// (§4.6). The returned Statement has already been executed.
func (d *Driver) Query(ctx context.Context, sql string) (*Statement, error) {
	stmt, err := d.Prepare(ctx, sql)
	if err != nil {
		return nil, err
	}
	if _, err := stmt.Execute(ctx); err != nil {
		return nil, err
	}
	return stmt, nil
}

// BeginTransaction starts a transaction via Query("START") (§4.6).
func (d *Driver) BeginTransaction(ctx context.Context) (*Transaction, error) {
	if _, err := d.Query(ctx, "START"); err != nil {
		return nil, err
	}
	return &Transaction{driver: d, startedAt: time.Now()}, nil
}

// GetState returns the driver's current connection state.
func (d *Driver) GetState() ConnectionState {
	return d.state.GetState()
}

// OnStateChange registers a handler invoked on every state transition.
func (d *Driver) OnStateChange(handler StateChangeHandler) {
	d.state.OnStateChange(handler)
}

// Close shuts down the underlying transport. Idempotent.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	st := d.state.GetState()
	if st == StateClosed {
		return nil
	}
	err := d.transport.Close()
	_ = d.state.TransitionTo(StateClosed, nil, nil)
	if d.opts.OnDisconnected != nil {
		d.opts.OnDisconnected(d.state.GetLastTransition())
	}
	return err
}
