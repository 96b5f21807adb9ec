package testutil_test

import (
	"context"
	"testing"

	"github.com/Faldon/DB4D/testutil"
)

func TestPipeTransportSendReceive(t *testing.T) {
	clientSide, server := testutil.NewPipePair()
	defer clientSide.Close()
	defer server.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		lines, err := server.ReadRequest()
		if err != nil {
			t.Errorf("server.ReadRequest() error = %v", err)
			return
		}
		if len(lines) != 1 || lines[0] != "001 LOGIN" {
			t.Errorf("server read lines = %v, want [001 LOGIN]", lines)
		}
		if err := server.WriteResponse([]byte("001 OK\r\n\r\n")); err != nil {
			t.Errorf("server.WriteResponse() error = %v", err)
		}
	}()

	ctx := context.Background()
	if err := clientSide.Send(ctx, []byte("001 LOGIN\r\n\r\n")); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	line, err := clientSide.ReceiveLine(ctx)
	if err != nil {
		t.Fatalf("ReceiveLine() error = %v", err)
	}
	if string(line) != "001 OK\r\n" {
		t.Errorf("ReceiveLine() = %q, want %q", line, "001 OK\r\n")
	}
	<-done
}

func TestPipeTransportClose(t *testing.T) {
	clientSide, server := testutil.NewPipePair()
	defer server.Close()

	if !clientSide.IsHealthy() {
		t.Fatal("IsHealthy() = false before Close()")
	}
	if err := clientSide.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if clientSide.IsHealthy() {
		t.Error("IsHealthy() = true after Close()")
	}
}
