package tcp

import (
	"bufio"
	"context"
	"io"
	"net"
	"testing"
	"time"
)

// newPipeTransport wires a TCPTransport around one side of a net.Pipe,
// returning the transport and the peer connection for the test to drive.
func newPipeTransport() (*TCPTransport, net.Conn) {
	client, server := net.Pipe()
	t := &TCPTransport{
		opts:   Options{Timeout: time.Second},
		conn:   client,
		reader: bufio.NewReader(client),
	}
	return t, server
}

func TestTCPTransportSendReceive(t *testing.T) {
	tr, peer := newPipeTransport()
	defer tr.Close()
	defer peer.Close()

	go func() {
		buf := make([]byte, 5)
		io.ReadFull(peer, buf)
		peer.Write([]byte("world"))
	}()

	if err := tr.Send(context.Background(), []byte("hello")); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	got, err := tr.Receive(context.Background(), 5)
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	if string(got) != "world" {
		t.Errorf("Receive() = %q, want %q", got, "world")
	}

	metrics := tr.GetMetrics()
	if metrics.TotalRequests != 1 {
		t.Errorf("TotalRequests = %d, want 1", metrics.TotalRequests)
	}
	if metrics.BytesSent != 5 || metrics.BytesReceived != 5 {
		t.Errorf("BytesSent/BytesReceived = %d/%d, want 5/5", metrics.BytesSent, metrics.BytesReceived)
	}
}

func TestTCPTransportReceiveLine(t *testing.T) {
	tr, peer := newPipeTransport()
	defer tr.Close()
	defer peer.Close()

	go peer.Write([]byte("001 OK\r\n"))

	line, err := tr.ReceiveLine(context.Background())
	if err != nil {
		t.Fatalf("ReceiveLine() error = %v", err)
	}
	if string(line) != "001 OK\r\n" {
		t.Errorf("ReceiveLine() = %q, want %q", line, "001 OK\r\n")
	}
}

func TestTCPTransportCloseMarksUnhealthy(t *testing.T) {
	tr, peer := newPipeTransport()
	defer peer.Close()

	if !tr.IsHealthy() {
		t.Fatal("IsHealthy() = false before Close, want true")
	}
	if err := tr.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if tr.IsHealthy() {
		t.Error("IsHealthy() = true after Close, want false")
	}

	if err := tr.Send(context.Background(), []byte("x")); err == nil {
		t.Error("Send() after Close() error = nil, want error")
	}
}

func TestTCPTransportSendDeadlineExceeded(t *testing.T) {
	tr, peer := newPipeTransport()
	defer tr.Close()
	defer peer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	time.Sleep(2 * time.Millisecond)

	// Nobody reads the other end, and the deadline has already elapsed, so
	// the write must fail rather than block forever.
	if err := tr.Send(ctx, []byte("hello")); err == nil {
		t.Error("Send() with expired deadline error = nil, want error")
	}
}
