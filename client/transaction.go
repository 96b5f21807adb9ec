package client

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"
)

// Transaction is a START/COMMIT/ROLLBACK bracket over a Driver's single
// connection (§4.6). It does not bind its own connection — the Driver it
// was opened from must not be used by another Transaction until this one
// commits or rolls back.
//
// A single Driver has at most one open Transaction at a time, so abandoned
// transactions are caught lazily on the next operation against startedAt
// rather than by a background sweep over a table of concurrent
// transactions, as a connection-pooled client would need.
type Transaction struct {
	driver     *Driver
	startedAt  time.Time
	committed  bool
	rolledBack bool
	mu         sync.Mutex
}

// Query runs sql within the transaction via Driver.Query (§4.6).
func (tx *Transaction) Query(ctx context.Context, sql string) (*Statement, error) {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if err := tx.checkOpen("Query"); err != nil {
		return nil, err
	}
	return tx.driver.Query(ctx, sql)
}

// Prepare prepares sql within the transaction via Driver.Prepare (§4.6).
func (tx *Transaction) Prepare(ctx context.Context, sql string) (*Statement, error) {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if err := tx.checkOpen("Prepare"); err != nil {
		return nil, err
	}
	return tx.driver.Prepare(ctx, sql)
}

func (tx *Transaction) checkOpen(operation string) error {
	if tx.committed {
		return txClosedError(operation, "committed")
	}
	if tx.rolledBack {
		return txClosedError(operation, "rolledback")
	}
	if timeout := tx.driver.opts.TransactionTimeout; timeout > 0 {
		if age := time.Since(tx.startedAt); age > timeout {
			return &TransactionError{
				Code:    "E_TX_TIMEOUT",
				Message: fmt.Sprintf("transaction exceeded timeout after %s (limit %s)", age, timeout),
				State:   "active",
			}
		}
	}
	return nil
}

func txClosedError(operation, state string) *TransactionError {
	return &TransactionError{
		Code:       "E_TX_CLOSED",
		Message:    fmt.Sprintf("%s attempted on a %s transaction", operation, state),
		State:      state,
		StackTrace: captureStackTrace(),
	}
}

// Commit sends Query("COMMIT") (§4.6).
func (tx *Transaction) Commit(ctx context.Context) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if err := tx.checkOpen("Commit"); err != nil {
		return err
	}

	if _, err := tx.driver.Query(ctx, "COMMIT"); err != nil {
		return &TransactionError{
			Code:    "E_COMMIT_FAILED",
			Message: "failed to commit transaction",
			State:   "active",
			Cause:   err,
		}
	}
	tx.committed = true
	return nil
}

// Rollback sends Query("ROLLBACK") (§4.6). A second call on an
// already-rolled-back transaction is a no-op.
func (tx *Transaction) Rollback(ctx context.Context) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if tx.committed {
		return txClosedError("Rollback", "committed")
	}
	if tx.rolledBack {
		return nil
	}

	if _, err := tx.driver.Query(ctx, "ROLLBACK"); err != nil {
		return &TransactionError{
			Code:    "E_ROLLBACK_FAILED",
			Message: "failed to roll back transaction",
			State:   "active",
			Cause:   err,
		}
	}
	tx.rolledBack = true
	return nil
}

// getState returns the current transaction state as a string, for logging.
func (tx *Transaction) getState() string {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.committed {
		return "committed"
	}
	if tx.rolledBack {
		return "rolledback"
	}
	return "active"
}

// InTransaction runs fn inside a new transaction on d, committing on
// success and rolling back on error or panic. A panic is recovered just
// long enough to issue the rollback, then re-raised.
func InTransaction(ctx context.Context, d *Driver, fn func(*Transaction) error) error {
	tx, err := d.BeginTransaction(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			rollbackErr := tx.Rollback(ctx)
			d.logger.Warn("transaction rolled back due to panic",
				String("state", tx.getState()),
				Error("panic", fmt.Errorf("%v", r)),
				Error("rollback_error", rollbackErr),
				String("stack", string(debug.Stack())))
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
			d.logger.Error("failed to roll back transaction after error",
				Error("original_error", err),
				Error("rollback_error", rollbackErr))
		}
		return err
	}

	return tx.Commit(ctx)
}
