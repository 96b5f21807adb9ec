package client

import (
	"context"

	"github.com/Faldon/DB4D/transport"
)

// transportSource adapts a transport.Transport into the io.Reader shape
// protocol.ByteReader expects, so the header parser and row decoder — both
// written against plain io.Reader fixtures in the protocol package's own
// tests — can run directly against a live connection here.
type transportSource struct {
	ctx context.Context
	t   transport.Transport
}

func newTransportSource(ctx context.Context, t transport.Transport) *transportSource {
	return &transportSource{ctx: ctx, t: t}
}

// Read fills p entirely from one Receive call, relying on transport.Transport
// implementations reading exactly len(p) bytes or failing (§6).
func (s *transportSource) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	data, err := s.t.Receive(s.ctx, len(p))
	if err != nil {
		return 0, err
	}
	copy(p, data)
	return len(data), nil
}

// ReadLine satisfies protocol.lineReader, letting HeaderParser read each
// CRLF-terminated header line with one ReceiveLine call against the
// transport's own buffered reader instead of one byte at a time.
func (s *transportSource) ReadLine() ([]byte, error) {
	return s.t.ReceiveLine(s.ctx)
}
