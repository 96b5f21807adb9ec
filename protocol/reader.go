package protocol

import "io"

// ByteReader reads exact byte counts and CRLF-terminated lines from a
// transport stream. It never returns a short read as success: a partial
// read before the underlying stream is exhausted is surfaced as an error.
type ByteReader struct {
	r io.Reader
}

// NewByteReader wraps r for protocol-level reads.
func NewByteReader(r io.Reader) *ByteReader {
	return &ByteReader{r: r}
}

// ReadExact blocks until exactly n bytes have been read, or returns an error.
func (br *ByteReader) ReadExact(n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	read, err := io.ReadFull(br.r, buf)
	if err != nil {
		return nil, ShortReadError(n, read)
	}
	return buf, nil
}

// ReadByte reads a single byte.
func (br *ByteReader) ReadByte() (byte, error) {
	b, err := br.ReadExact(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// lineReader is implemented by sources that can read a whole CRLF-terminated
// line in one call (e.g. a transport.Transport's ReceiveLine, which reads
// straight off the socket's buffered reader instead of one byte at a time).
// ReadUntilCRLF prefers this when br.r offers it.
type lineReader interface {
	ReadLine() ([]byte, error)
}

// ReadUntilCRLF reads a line ending in the two-byte sequence "\r\n",
// inclusive of the terminator. If br.r implements lineReader, that single
// call is used; otherwise the line is accumulated one byte at a time.
func (br *ByteReader) ReadUntilCRLF() ([]byte, error) {
	if lr, ok := br.r.(lineReader); ok {
		return lr.ReadLine()
	}

	var line []byte
	for {
		b, err := br.ReadByte()
		if err != nil {
			return nil, err
		}
		line = append(line, b)
		n := len(line)
		if n >= 2 && line[n-2] == '\r' && line[n-1] == '\n' {
			return line, nil
		}
	}
}
