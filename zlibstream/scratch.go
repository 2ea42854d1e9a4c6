package zlibstream

import (
	"io"

	"github.com/spacemeshos/bitio/backend"
	"github.com/spacemeshos/bitio/shared"
)

// scratchReader stages engine input. Each refill is a single upstream read of
// at most shared.ZlibBufferSize bytes. It implements io.ByteReader so the
// engine consumes from it directly instead of adding its own buffer, and
// never reads upstream past what the compressed stream needs.
type scratchReader struct {
	upstream backend.Reader
	buf      [shared.ZlibBufferSize]byte
	next     int
	avail    int

	// eof is set once upstream returned zero bytes.
	eof   bool
	err   error
	total uint64
}

func (s *scratchReader) fill() error {
	if s.eof {
		return io.EOF
	}
	if s.err != nil {
		return s.err
	}

	n, err := s.upstream.Read(s.buf[:])
	s.next, s.avail = 0, n
	s.total += uint64(n)
	switch {
	case n > 0:
		// An error that came with data is reported by the next refill.
		if err == io.EOF {
			s.eof = true
		} else if err != nil {
			s.err = err
		}
		return nil
	case err == nil || err == io.EOF:
		s.eof = true
		return io.EOF
	default:
		s.err = err
		return err
	}
}

func (s *scratchReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if s.avail == 0 {
		if err := s.fill(); err != nil {
			return 0, err
		}
	}

	n := copy(p, s.buf[s.next:s.next+s.avail])
	s.next += n
	s.avail -= n
	return n, nil
}

func (s *scratchReader) ReadByte() (byte, error) {
	if s.avail == 0 {
		if err := s.fill(); err != nil {
			return 0, err
		}
	}

	b := s.buf[s.next]
	s.next++
	s.avail--
	return b, nil
}

// scratchWriter stages engine output. forward hands exactly the staged bytes
// to the downstream writer and rearms the buffer; it also happens whenever the
// buffer fills up in the middle of an engine step.
type scratchWriter struct {
	downstream backend.Writer
	buf        [shared.ZlibBufferSize]byte
	n          int

	err   error
	total uint64
}

func (s *scratchWriter) Write(p []byte) (int, error) {
	if s.err != nil {
		return 0, s.err
	}

	written := 0
	for len(p) > 0 {
		c := copy(s.buf[s.n:], p)
		s.n += c
		written += c
		p = p[c:]

		if s.n == len(s.buf) {
			if err := s.forward(); err != nil {
				return written, err
			}
		}
	}

	return written, nil
}

func (s *scratchWriter) forward() error {
	if s.err != nil {
		return s.err
	}
	if s.n == 0 {
		return nil
	}

	n, err := s.downstream.Write(s.buf[:s.n])
	s.total += uint64(n)
	if err == nil && n != s.n {
		err = io.ErrShortWrite
	}
	s.n = 0
	if err != nil {
		s.err = err
		return err
	}

	return nil
}
