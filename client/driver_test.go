package client_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Faldon/DB4D/client"
	"github.com/Faldon/DB4D/testutil"
)

func TestDriverLoginSuccess(t *testing.T) {
	transport, server := testutil.NewPipePair()
	defer server.Close()

	go func() {
		lines, err := server.ReadRequest()
		if err != nil {
			t.Errorf("server.ReadRequest() error = %v", err)
			return
		}
		if len(lines) == 0 || lines[0] != "001 LOGIN" {
			t.Errorf("server read lines = %v, want first line 001 LOGIN", lines)
		}
		server.WriteResponse([]byte("001 OK\r\n\r\n"))
	}()

	ctx := context.Background()
	d, err := client.NewDriver(transport, client.DefaultOptions(), "user", "pass", ctx)
	if err != nil {
		t.Fatalf("NewDriver() error = %v", err)
	}
	if d.GetState() != client.StateConnected {
		t.Errorf("GetState() = %v, want StateConnected", d.GetState())
	}
}

func TestDriverLoginError(t *testing.T) {
	transport, server := testutil.NewPipePair()
	defer server.Close()

	go func() {
		server.ReadRequest()
		server.WriteResponse([]byte(
			"001 ERROR\r\n" +
				"Error-Code : 99\r\n" +
				"Error-Description : bad credentials\r\n" +
				"\r\n"))
	}()

	ctx := context.Background()
	d, err := client.NewDriver(transport, client.DefaultOptions(), "user", "wrong", ctx)
	if err == nil {
		t.Fatal("NewDriver() error = nil, want LoginError")
	}
	loginErr, ok := err.(*client.LoginError)
	if !ok {
		t.Fatalf("NewDriver() error type = %T, want *client.LoginError", err)
	}
	if loginErr.Code != "99" {
		t.Errorf("LoginError.Code = %q, want %q", loginErr.Code, "99")
	}
	if d != nil {
		t.Error("NewDriver() returned a non-nil driver on login failure")
	}
	if transport.IsHealthy() {
		t.Error("transport still healthy after a failed login")
	}
}

// TestDriverRequestTimeout confirms RequestTimeout bounds a round trip as a
// context.Context deadline (§5 Suspension points): a server that never
// replies must surface as a *TransportError instead of hanging forever.
func TestDriverRequestTimeout(t *testing.T) {
	transport, server := testutil.NewPipePair()
	defer server.Close()

	go func() {
		server.ReadRequest()
		server.WriteResponse([]byte("001 OK\r\n\r\n"))

		// Read the EXECUTE-STATEMENT request but never reply, forcing the
		// client's RequestTimeout to fire.
		server.ReadRequest()
	}()

	ctx := context.Background()
	opts := client.DefaultOptions()
	opts.RequestTimeout = 20 * time.Millisecond
	d, err := client.NewDriver(transport, opts, "user", "pass", ctx)
	if err != nil {
		t.Fatalf("NewDriver() error = %v", err)
	}

	stmt, err := d.Prepare(ctx, "SELECT 1")
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	_, err = stmt.Execute(ctx)
	if err == nil {
		t.Fatal("Execute() error = nil, want a TransportError on deadline expiry")
	}
	var transportErr *client.TransportError
	if !errors.As(err, &transportErr) {
		t.Errorf("Execute() error type = %T, want *client.TransportError", err)
	}
}

func TestDriverPrepareUpdateCount(t *testing.T) {
	transport, server := testutil.NewPipePair()
	defer server.Close()

	go func() {
		server.ReadRequest()
		server.WriteResponse([]byte("001 OK\r\n\r\n"))

		lines, _ := server.ReadRequest()
		if len(lines) == 0 || lines[0] != "003 EXECUTE-STATEMENT" {
			t.Errorf("server read lines = %v, want first line 003 EXECUTE-STATEMENT", lines)
		}
		server.WriteResponse([]byte(
			"003 OK\r\n" +
				"Result-Type : Update-Count\r\n" +
				"Row-Count : 7\r\n" +
				"\r\n"))
	}()

	ctx := context.Background()
	d, err := client.NewDriver(transport, client.DefaultOptions(), "user", "pass", ctx)
	if err != nil {
		t.Fatalf("NewDriver() error = %v", err)
	}

	stmt, err := d.Prepare(ctx, "UPDATE T SET x = 1")
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	result, err := stmt.Execute(ctx)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.IsResultSet {
		t.Error("Execute() result.IsResultSet = true, want false")
	}
	if result.RowCount != 7 {
		t.Errorf("Execute() result.RowCount = %d, want 7", result.RowCount)
	}
}
