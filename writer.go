package bitio

import (
	"io"

	"go.uber.org/zap"

	"github.com/spacemeshos/bitio/backend"
	"github.com/spacemeshos/bitio/bitstream"
	"github.com/spacemeshos/bitio/shared"
	"github.com/spacemeshos/bitio/zlibstream"
)

// Writer is a bit-addressable byte sink. It is not safe for concurrent use.
// Finish must be called once writing is done.
type Writer struct {
	backend  Backend
	sink     backend.Writer
	bits     *bitstream.BitWriter
	logger   *zap.Logger
	finished bool
}

// A compile time check to ensure that Writer can itself be wrapped by NewDeflateWriter.
var _ backend.Writer = (*Writer)(nil)

func newWriter(kind Backend, sink backend.Writer, options *option) *Writer {
	options.logger.Debug("writer initialized", zap.Stringer("backend", kind))
	return &Writer{
		backend: kind,
		sink:    sink,
		bits:    bitstream.NewWriter(sink),
		logger:  options.logger,
	}
}

// NewFileWriter returns a Writer that writes straight to handle. The handle
// stays owned by the caller; Finish does not close it.
func NewFileWriter(handle io.Writer, opts ...OptionFunc) (*Writer, error) {
	options, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	return newWriter(BackendFile, backend.NewFileWriter(handle), options), nil
}

// NewMemoryWriter returns a Writer into the first length bytes of buf. Writes
// beyond that capacity are truncated and report the short count.
func NewMemoryWriter(buf []byte, length int, opts ...OptionFunc) (*Writer, error) {
	options, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	sink, err := backend.NewMemoryWriter(buf, length)
	if err != nil {
		return nil, err
	}
	return newWriter(BackendMemory, sink, options), nil
}

// NewDeflateWriter returns a Writer that zlib-compresses everything written to
// it into downstream. downstream is borrowed, not owned: it must outlive the
// returned Writer, and Finish on the returned Writer finishes it.
func NewDeflateWriter(downstream backend.Writer, opts ...OptionFunc) (*Writer, error) {
	options, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	sink, err := zlibstream.NewDeflateWriter(downstream, options.zlibOptions()...)
	if err != nil {
		return nil, err
	}
	return newWriter(BackendZlib, sink, options), nil
}

func (w *Writer) Backend() Backend {
	return w.backend
}

// Write writes a block of bytes to the backend, bypassing the bit cursor.
// Writing to a finished Writer returns shared.ErrFinished.
func (w *Writer) Write(p []byte) (int, error) {
	if w.finished {
		return 0, shared.ErrFinished
	}
	return w.sink.Write(p)
}

func (w *Writer) WriteBit(bit Bit) error {
	if w.finished {
		return shared.ErrFinished
	}
	return w.bits.WriteBit(bit)
}

// WriteBits writes the numBits low bits of val, 0 <= numBits <= 64.
func (w *Writer) WriteBits(val uint64, numBits int) error {
	if w.finished {
		return shared.ErrFinished
	}
	return w.bits.WriteBits(val, numBits)
}

// ResetBits writes out a partially filled byte, zero padded, and byte-aligns
// the stream.
func (w *Writer) ResetBits() error {
	return w.bits.ResetBits()
}

func (w *Writer) BitPosition() int {
	return w.bits.BitPosition()
}

// Finish flushes the pending bits, then finishes the backend, which for a
// zlib Writer drains the engine and finishes the downstream Writer. Calling
// it again is a no-op.
func (w *Writer) Finish() error {
	if w.finished {
		return nil
	}
	if err := w.bits.ResetBits(); err != nil {
		return err
	}
	if err := w.sink.Finish(); err != nil {
		return err
	}

	w.finished = true
	w.logger.Debug("writer finished", zap.Stringer("backend", w.backend))
	return nil
}
