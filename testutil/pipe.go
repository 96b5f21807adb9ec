package testutil

import (
	"bufio"
	"context"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/Faldon/DB4D/transport"
)

// PipeTransport implements transport.Transport over one half of a net.Pipe,
// for driver/statement integration tests that exercise a fake server goroutine
// on the other half without touching a real socket.
type PipeTransport struct {
	conn   net.Conn
	reader *bufio.Reader
	mu     sync.Mutex
	closed bool
}

// NewPipeTransport wraps conn (one side of a net.Pipe) as a transport.Transport.
func NewPipeTransport(conn net.Conn) *PipeTransport {
	return &PipeTransport{conn: conn, reader: bufio.NewReader(conn)}
}

func (p *PipeTransport) Send(ctx context.Context, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := p.conn.Write(data)
	return err
}

func (p *PipeTransport) Receive(ctx context.Context, n int) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.applyDeadline(ctx); err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if n == 0 {
		return buf, nil
	}
	read := 0
	for read < n {
		m, err := p.reader.Read(buf[read:])
		if err != nil {
			return nil, err
		}
		read += m
	}
	return buf, nil
}

func (p *PipeTransport) ReceiveLine(ctx context.Context) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.applyDeadline(ctx); err != nil {
		return nil, err
	}
	return p.reader.ReadBytes('\n')
}

// applyDeadline carries ctx's deadline, if any, onto the underlying
// net.Pipe conn, matching tcp.TCPTransport's SetReadDeadline use (§5
// Suspension points) so RequestTimeout tests can run against a pipe
// instead of a real socket.
func (p *PipeTransport) applyDeadline(ctx context.Context) error {
	dl, ok := ctx.Deadline()
	if !ok {
		return p.conn.SetReadDeadline(time.Time{})
	}
	return p.conn.SetReadDeadline(dl)
}

func (p *PipeTransport) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.conn.Close()
}

func (p *PipeTransport) IsHealthy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.closed
}

func (p *PipeTransport) GetMetrics() transport.TransportMetrics {
	return transport.TransportMetrics{}
}

// FakeServer drives the other half of a net.Pipe as a hand-scripted stand-in
// for a 4D server: read the request header block, then write back whatever
// raw response bytes the test has prepared.
type FakeServer struct {
	conn   net.Conn
	reader *bufio.Reader
}

// NewPipePair creates a net.Pipe and returns a client-side transport.Transport
// and the FakeServer driving the other end.
func NewPipePair() (transport.Transport, *FakeServer) {
	clientConn, serverConn := net.Pipe()
	return NewPipeTransport(clientConn), &FakeServer{conn: serverConn, reader: bufio.NewReader(serverConn)}
}

// ReadRequest reads one request frame (first line plus header lines up to
// the terminating blank line) and returns its lines with CRLF stripped, for
// tests that want to assert on the command id, verb, or field values sent.
func (s *FakeServer) ReadRequest() ([]string, error) {
	var lines []string
	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			return lines, err
		}
		trimmed := strings.TrimRight(line, "\r\n")
		if trimmed == "" {
			return lines, nil
		}
		lines = append(lines, trimmed)
	}
}

// ReadExact reads n raw bytes from the request stream, for tests that send
// a follow-up binary payload (none of this protocol's current requests do,
// but bound parameter text could in principle include raw bytes).
func (s *FakeServer) ReadExact(n int) ([]byte, error) {
	buf := make([]byte, n)
	read := 0
	for read < n {
		m, err := s.reader.Read(buf[read:])
		if err != nil {
			return nil, err
		}
		read += m
	}
	return buf, nil
}

// WriteResponse writes raw bytes back to the client side of the pipe.
func (s *FakeServer) WriteResponse(raw []byte) error {
	_, err := s.conn.Write(raw)
	return err
}

// Close closes the server side of the pipe.
func (s *FakeServer) Close() error {
	return s.conn.Close()
}

// Serve runs handler in a goroutine for every request frame read from the
// pipe until ReadRequest returns an error (the client closed the connection).
// Tests typically call this once, after scripting the expected exchange
// into handler, then drive the client-side Driver/Statement calls.
func (s *FakeServer) Serve(handler func(lines []string) []byte) {
	go func() {
		for {
			lines, err := s.ReadRequest()
			if err != nil {
				return
			}
			resp := handler(lines)
			if resp == nil {
				return
			}
			if err := s.WriteResponse(resp); err != nil {
				return
			}
		}
	}()
}
