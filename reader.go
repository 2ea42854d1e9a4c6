package bitio

import (
	"io"

	"go.uber.org/zap"

	"github.com/spacemeshos/bitio/backend"
	"github.com/spacemeshos/bitio/bitstream"
	"github.com/spacemeshos/bitio/zlibstream"
)

// Reader is a bit-addressable byte source. It is not safe for concurrent use.
type Reader struct {
	backend Backend
	source  backend.Reader
	bits    *bitstream.BitReader
	logger  *zap.Logger
}

// A compile time check to ensure that Reader can itself be wrapped by NewInflateReader.
var _ backend.Reader = (*Reader)(nil)

func newReader(kind Backend, source backend.Reader, options *option) *Reader {
	options.logger.Debug("reader initialized", zap.Stringer("backend", kind))
	return &Reader{
		backend: kind,
		source:  source,
		bits:    bitstream.NewReader(source),
		logger:  options.logger,
	}
}

// NewFileReader returns a Reader that reads straight from handle. The handle
// stays owned by the caller.
func NewFileReader(handle io.Reader, opts ...OptionFunc) (*Reader, error) {
	options, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	return newReader(BackendFile, backend.NewFileReader(handle), options), nil
}

// NewMemoryReader returns a Reader over the first length bytes of buf.
func NewMemoryReader(buf []byte, length int, opts ...OptionFunc) (*Reader, error) {
	options, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	source, err := backend.NewMemoryReader(buf, length)
	if err != nil {
		return nil, err
	}
	return newReader(BackendMemory, source, options), nil
}

// NewInflateReader returns a Reader producing the decompressed contents of the
// zlib stream read from upstream. upstream is borrowed, not owned: it must
// outlive the returned Reader and must not be read by anyone else meanwhile.
func NewInflateReader(upstream backend.Reader, opts ...OptionFunc) (*Reader, error) {
	options, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	source, err := zlibstream.NewInflateReader(upstream, options.zlibOptions()...)
	if err != nil {
		return nil, err
	}
	return newReader(BackendZlib, source, options), nil
}

func (r *Reader) Backend() Backend {
	return r.backend
}

// Read reads a block of up to len(p) bytes from the backend, bypassing the
// bit cursor. A short count is not an error; (0, io.EOF) means end of data.
func (r *Reader) Read(p []byte) (int, error) {
	return r.source.Read(p)
}

// ReadBlock reads up to maxLen bytes with a single backend read.
func (r *Reader) ReadBlock(maxLen int) ([]byte, error) {
	p := make([]byte, maxLen)
	n, err := r.source.Read(p)
	return p[:n], err
}

func (r *Reader) ReadBit() (Bit, error) {
	return r.bits.ReadBit()
}

// ReadBits reads a numBits wide unsigned field, 0 <= numBits <= 64.
func (r *Reader) ReadBits(numBits int) (uint64, error) {
	return r.bits.ReadBits(numBits)
}

// ResetBits drops the remaining bits of a partially read byte.
func (r *Reader) ResetBits() {
	r.bits.ResetBits()
}

func (r *Reader) BitPosition() int {
	return r.bits.BitPosition()
}

// Close releases the decompression engine of a zlib Reader that is abandoned
// before the end of its stream. Other backends hold nothing to release, and a
// zlib Reader read to the end has already released its engine.
func (r *Reader) Close() error {
	if c, ok := r.source.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
