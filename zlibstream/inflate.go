package zlibstream

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
	"go.uber.org/zap"

	"github.com/spacemeshos/bitio/backend"
	"github.com/spacemeshos/bitio/shared"
)

// InflateReader decompresses the zlib stream read from an upstream reader.
// The upstream reader is borrowed: the caller keeps it, and must keep it
// usable for as long as the InflateReader is read from. No one else may read
// from it meanwhile.
type InflateReader struct {
	input  *scratchReader
	engine io.ReadCloser
	logger *zap.Logger

	// done is set once the engine was released; reads then report io.EOF,
	// or err if the stream failed.
	done     bool
	err      error
	produced uint64
}

// A compile time check to ensure that InflateReader fully implements the Reader interface.
var _ backend.Reader = (*InflateReader)(nil)

func NewInflateReader(upstream backend.Reader, opts ...OptionFunc) (*InflateReader, error) {
	options, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}

	return &InflateReader{
		input:  &scratchReader{upstream: upstream},
		logger: options.logger,
	}, nil
}

// Read fills p with decompressed bytes. It only returns fewer than len(p)
// bytes when the compressed stream ended; the bytes produced before the end
// are returned with a nil error and the next call returns (0, io.EOF).
// Engine failures are returned as *shared.EngineError.
func (r *InflateReader) Read(p []byte) (int, error) {
	if r.done {
		if r.err != nil {
			return 0, r.err
		}
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}

	// The engine parses the zlib header as soon as it is created, so it is
	// started by the first read rather than by the constructor.
	if r.engine == nil {
		engine, err := zlib.NewReader(r.input)
		if err != nil {
			return 0, r.fail("bitio:inflate_init", err)
		}
		r.engine = engine
		r.logger.Debug("inflate engine started", zap.Int("buffer_size", shared.ZlibBufferSize))
	}

	var n int
	for n < len(p) {
		m, err := r.engine.Read(p[n:])
		n += m
		r.produced += uint64(m)

		if err == io.EOF {
			if err := r.release(); err != nil {
				return n, err
			}
			if n == 0 {
				return 0, io.EOF
			}
			return n, nil
		}
		if err != nil {
			return n, r.fail("bitio:inflate_inflate", err)
		}
	}

	return n, nil
}

// Close releases the engine of a stream that was not read to its end. It is
// a no-op once the stream ended or was already closed.
func (r *InflateReader) Close() error {
	if r.done {
		return nil
	}
	r.done = true
	if r.engine == nil {
		return nil
	}

	err := r.engine.Close()
	r.engine = nil
	r.logger.Debug("inflate engine released before stream end",
		zap.Uint64("compressed_bytes", r.input.total),
		zap.Uint64("decompressed_bytes", r.produced),
	)
	if err != nil {
		return &shared.EngineError{Op: "bitio:inflate_end", Err: err}
	}
	return nil
}

func (r *InflateReader) release() error {
	err := r.engine.Close()
	r.engine = nil
	r.done = true
	if err != nil {
		r.err = &shared.EngineError{Op: "bitio:inflate_end", Err: err}
		return r.err
	}

	r.logger.Debug("inflate stream end",
		zap.Uint64("compressed_bytes", r.input.total),
		zap.Uint64("decompressed_bytes", r.produced),
	)
	return nil
}

// fail releases the engine and records the error every later read returns.
// Upstream read errors are reported as such; anything else is an engine
// failure.
func (r *InflateReader) fail(op string, err error) error {
	if r.input.err != nil {
		r.err = fmt.Errorf("reading compressed input: %w", r.input.err)
	} else {
		r.err = &shared.EngineError{Op: op, Err: err}
	}

	if r.engine != nil {
		_ = r.engine.Close()
		r.engine = nil
	}
	r.done = true

	r.logger.Error("inflate failed", zap.String("op", op), zap.Error(r.err))
	return r.err
}
