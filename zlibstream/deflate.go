package zlibstream

import (
	"fmt"

	"github.com/klauspost/compress/zlib"
	"go.uber.org/zap"

	"github.com/spacemeshos/bitio/backend"
	"github.com/spacemeshos/bitio/shared"
)

// DeflateWriter compresses everything written to it into a zlib stream that
// goes to a downstream writer. The downstream writer is borrowed: the caller
// keeps it and must not write to it until the DeflateWriter is finished.
//
// Finish must be called once writing is done, otherwise the end of the
// compressed stream never reaches the downstream writer.
type DeflateWriter struct {
	output *scratchWriter
	engine *zlib.Writer
	logger *zap.Logger

	consumed uint64
	err      error
}

// A compile time check to ensure that DeflateWriter fully implements the Writer interface.
var _ backend.Writer = (*DeflateWriter)(nil)

func NewDeflateWriter(downstream backend.Writer, opts ...OptionFunc) (*DeflateWriter, error) {
	options, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}

	output := &scratchWriter{downstream: downstream}
	engine, err := zlib.NewWriterLevel(output, options.level)
	if err != nil {
		return nil, &shared.EngineError{Op: "bitio:deflate_init", Err: err}
	}

	options.logger.Debug("deflate engine started",
		zap.Int("level", options.level),
		zap.Int("buffer_size", shared.ZlibBufferSize),
	)

	return &DeflateWriter{
		output: output,
		engine: engine,
		logger: options.logger,
	}, nil
}

// Write feeds all of p to the engine and forwards whatever compressed output
// it produced. It reports len(p) on success.
func (w *DeflateWriter) Write(p []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	if w.engine == nil {
		return 0, shared.ErrFinished
	}

	n, err := w.engine.Write(p)
	w.consumed += uint64(n)
	if err != nil {
		return n, w.fail("bitio:deflate_deflate", err)
	}

	if err := w.output.forward(); err != nil {
		return n, w.fail("bitio:deflate_deflate", err)
	}

	return n, nil
}

// Finish drives the engine to the end of the stream, forwards all remaining
// compressed bytes, releases the engine and finally finishes the downstream
// writer. Calling it again is a no-op.
func (w *DeflateWriter) Finish() error {
	if w.err != nil {
		return w.err
	}
	if w.engine == nil {
		return nil
	}

	if err := w.engine.Close(); err != nil {
		return w.fail("bitio:deflate_finish", err)
	}
	if err := w.output.forward(); err != nil {
		return w.fail("bitio:deflate_finish", err)
	}

	downstream := w.output.downstream
	w.logger.Debug("deflate stream end",
		zap.Uint64("decompressed_bytes", w.consumed),
		zap.Uint64("compressed_bytes", w.output.total),
	)
	w.engine = nil
	w.output = nil

	if err := downstream.Finish(); err != nil {
		w.err = fmt.Errorf("finishing downstream writer: %w", err)
		w.logger.Error("deflate failed", zap.String("op", "bitio:deflate_finish"), zap.Error(w.err))
		return w.err
	}

	return nil
}

// fail releases the writer and records the error every later call returns.
// Downstream write errors are reported as such; anything else is an engine
// failure.
func (w *DeflateWriter) fail(op string, err error) error {
	if w.output.err != nil {
		w.err = fmt.Errorf("writing compressed output: %w", w.output.err)
	} else {
		w.err = &shared.EngineError{Op: op, Err: err}
	}
	w.engine = nil

	w.logger.Error("deflate failed", zap.String("op", op), zap.Error(w.err))
	return w.err
}
