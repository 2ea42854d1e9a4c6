// Package backend provides the byte-oriented sources and sinks that the bit
// layer and the compression adapters are built on.
package backend

import "io"

// Reader is a byte source. A short count is not a failure; (0, io.EOF)
// signals end of data.
type Reader interface {
	io.Reader
}

// Writer is a byte sink. Finish must be called exactly once when the caller is
// done writing; it flushes whatever the sink buffers and propagates to any
// sink it wraps.
type Writer interface {
	io.Writer
	Finish() error
}
