package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Faldon/DB4D/client"
)

// NewTestDriver dials a live server configured via the DB4D_TEST_ADDR
// environment variable (host:port) using DB4D_TEST_USER/DB4D_TEST_PASSWORD,
// skipping the test if the address is not set.
//
// Example:
//
//	export DB4D_TEST_ADDR="localhost:19812"
//	d, cleanup := testutil.NewTestDriver(t)
//	defer cleanup()
func NewTestDriver(t *testing.T) (*client.Driver, func()) {
	t.Helper()

	addr := os.Getenv("DB4D_TEST_ADDR")
	if addr == "" {
		t.Skip("DB4D_TEST_ADDR not set, skipping integration test")
		return nil, func() {}
	}

	opts := client.DefaultOptions()
	opts.DebugMode = testing.Verbose()

	ctx, cancel := context.WithTimeout(context.Background(), opts.DialTimeout)
	defer cancel()

	d, err := client.Dial(ctx, addr, os.Getenv("DB4D_TEST_USER"), os.Getenv("DB4D_TEST_PASSWORD"), opts)
	if err != nil {
		t.Fatalf("failed to connect to test server: %v", err)
	}

	cleanup := func() {
		if err := d.Close(); err != nil {
			t.Logf("warning: failed to close driver: %v", err)
		}
	}

	return d, cleanup
}

// WithTimeout creates a context with a timeout for tests, cancelled
// automatically on test cleanup. Default timeout is 10 seconds.
func WithTimeout(t *testing.T, timeout ...time.Duration) (context.Context, context.CancelFunc) {
	t.Helper()

	duration := 10 * time.Second
	if len(timeout) > 0 {
		duration = timeout[0]
	}

	ctx, cancel := context.WithTimeout(context.Background(), duration)
	t.Cleanup(cancel)

	return ctx, cancel
}

// RequireNoError fails the test immediately if err is not nil.
func RequireNoError(t *testing.T, err error, msgAndArgs ...interface{}) {
	t.Helper()
	if err != nil {
		if len(msgAndArgs) > 0 {
			t.Fatalf("Unexpected error: %v - %v", err, msgAndArgs)
		} else {
			t.Fatalf("Unexpected error: %v", err)
		}
	}
}

// RequireError fails the test immediately if err is nil.
func RequireError(t *testing.T, err error, msgAndArgs ...interface{}) {
	t.Helper()
	if err == nil {
		if len(msgAndArgs) > 0 {
			t.Fatalf("Expected error but got nil - %v", msgAndArgs)
		} else {
			t.Fatal("Expected error but got nil")
		}
	}
}

// AssertEqual checks that two values are equal.
func AssertEqual(t *testing.T, expected, actual interface{}, msgAndArgs ...interface{}) {
	t.Helper()
	if expected != actual {
		if len(msgAndArgs) > 0 {
			t.Errorf("Not equal: expected=%v, actual=%v - %v", expected, actual, msgAndArgs)
		} else {
			t.Errorf("Not equal: expected=%v, actual=%v", expected, actual)
		}
	}
}

// AssertNotEqual checks that two values are not equal.
func AssertNotEqual(t *testing.T, expected, actual interface{}, msgAndArgs ...interface{}) {
	t.Helper()
	if expected == actual {
		if len(msgAndArgs) > 0 {
			t.Errorf("Should not be equal: value=%v - %v", actual, msgAndArgs)
		} else {
			t.Errorf("Should not be equal: value=%v", actual)
		}
	}
}

// AssertContains checks that str contains substr.
func AssertContains(t *testing.T, str, substr string, msgAndArgs ...interface{}) {
	t.Helper()
	if !containsStr(str, substr) {
		if len(msgAndArgs) > 0 {
			t.Errorf("String does not contain substring: str=%q, substr=%q - %v", str, substr, msgAndArgs)
		} else {
			t.Errorf("String does not contain substring: str=%q, substr=%q", str, substr)
		}
	}
}

// WaitFor polls condition until it returns true or the timeout elapses,
// useful for asserting on eventual state (e.g. a background reconnect).
func WaitFor(t *testing.T, timeout, interval time.Duration, condition func() bool) bool {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(interval)
	}

	t.Errorf("condition not met within timeout %v", timeout)
	return false
}

// Eventually is an alias for WaitFor.
func Eventually(t *testing.T, timeout, interval time.Duration, condition func() bool) bool {
	return WaitFor(t, timeout, interval, condition)
}

// Parallel marks the test to run in parallel and returns the test instance
// for chaining.
func Parallel(t *testing.T) *testing.T {
	t.Parallel()
	return t
}

// SkipIf skips the test when condition is true.
func SkipIf(t *testing.T, condition bool, reason string) {
	t.Helper()
	if condition {
		t.Skip(reason)
	}
}

// SkipUnless skips the test unless condition is true.
func SkipUnless(t *testing.T, condition bool, reason string) {
	t.Helper()
	if !condition {
		t.Skip(reason)
	}
}

func containsStr(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
