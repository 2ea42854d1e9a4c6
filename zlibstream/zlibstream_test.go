package zlibstream

import (
	"bytes"
	"compress/zlib"
	"errors"
	"io"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/spacemeshos/bitio/backend"
	"github.com/spacemeshos/bitio/shared"
)

// recordingWriter is a growable downstream that records every call it gets.
type recordingWriter struct {
	buf        bytes.Buffer
	writes     []int
	finishes   int
	failWith   error
	finishWith error
}

func (w *recordingWriter) Write(p []byte) (int, error) {
	if w.failWith != nil {
		return 0, w.failWith
	}
	w.writes = append(w.writes, len(p))
	return w.buf.Write(p)
}

func (w *recordingWriter) Finish() error {
	w.finishes++
	return w.finishWith
}

// recordingReader records the size of every read request it serves.
type recordingReader struct {
	r        io.Reader
	requests []int
	failWith error

	// failAfter, when set, fails the read that reaches it, returning the
	// bytes before it along with failWith, and reads normally afterwards.
	failAfter int
	read      int
}

func (r *recordingReader) Read(p []byte) (int, error) {
	r.requests = append(r.requests, len(p))
	if r.failWith != nil && r.failAfter == 0 {
		return 0, r.failWith
	}
	n, err := r.r.Read(p)
	if r.failWith != nil && r.read < r.failAfter && r.read+n >= r.failAfter {
		r.read += n
		return n, r.failWith
	}
	r.read += n
	return n, err
}

func testData(size int) []byte {
	rng := rand.New(rand.NewSource(int64(size)))
	data := make([]byte, size)
	for i := range data {
		// Mix incompressible and repetitive runs.
		if (i/4096)%2 == 0 {
			data[i] = byte(rng.Intn(256))
		} else {
			data[i] = byte(i % 17)
		}
	}
	return data
}

func compress(t *testing.T, data []byte, opts ...OptionFunc) []byte {
	req := require.New(t)

	out := make([]byte, len(data)+len(data)/10+1024)
	mw, err := backend.NewMemoryWriter(out, len(out))
	req.NoError(err)

	dw, err := NewDeflateWriter(mw, append(opts, WithLogger(zaptest.NewLogger(t)))...)
	req.NoError(err)
	n, err := dw.Write(data)
	req.NoError(err)
	req.Equal(len(data), n)

	req.NoError(dw.Finish())
	return out[:mw.Position()]
}

func decompress(t *testing.T, compressed []byte, chunk int) []byte {
	req := require.New(t)

	mr, err := backend.NewMemoryReader(compressed, len(compressed))
	req.NoError(err)
	ir, err := NewInflateReader(mr, WithLogger(zaptest.NewLogger(t)))
	req.NoError(err)

	var out []byte
	p := make([]byte, chunk)
	for {
		n, err := ir.Read(p)
		out = append(out, p[:n]...)
		if err == io.EOF {
			req.Zero(n)
			break
		}
		req.NoError(err)
		if n < len(p) {
			// A short read means the stream ended; the next read confirms it.
			n, err = ir.Read(p)
			req.Equal(io.EOF, err)
			req.Zero(n)
			break
		}
	}
	return out
}

func TestRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		name  string
		size  int
		chunk int
	}{
		{"empty", 0, 100},
		{"one byte", 1, 1},
		{"small", 1000, 7},
		{"exact scratch", shared.ZlibBufferSize, shared.ZlibBufferSize},
		{"large", 300 << 10, 4096},
		{"large single read", 100 << 10, 200 << 10},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			data := testData(tc.size)
			compressed := compress(t, data)
			got := decompress(t, compressed, tc.chunk)
			require.Equal(t, len(data), len(got))
			require.True(t, bytes.Equal(data, got))
		})
	}
}

func TestLevels(t *testing.T) {
	data := testData(50 << 10)
	for _, level := range []int{zlib.HuffmanOnly, zlib.NoCompression, zlib.BestSpeed, zlib.DefaultCompression, zlib.BestCompression} {
		compressed := compress(t, data, WithLevel(level))
		require.Equal(t, data, decompress(t, compressed, 1000), "level %d", level)
	}

	_, err := NewDeflateWriter(&recordingWriter{}, WithLevel(10))
	require.Error(t, err)
	_, err = NewDeflateWriter(&recordingWriter{}, WithLogger(nil))
	require.Error(t, err)
}

func TestDeflateWriter_StandardStream(t *testing.T) {
	req := require.New(t)
	data := testData(70 << 10)

	// Our output must be readable by any conforming zlib reader.
	down := &recordingWriter{}
	dw, err := NewDeflateWriter(down)
	req.NoError(err)
	for i := 0; i < len(data); i += 333 {
		end := i + 333
		if end > len(data) {
			end = len(data)
		}
		_, err := dw.Write(data[i:end])
		req.NoError(err)
	}
	req.NoError(dw.Finish())

	zr, err := zlib.NewReader(bytes.NewReader(down.buf.Bytes()))
	req.NoError(err)
	got, err := io.ReadAll(zr)
	req.NoError(err)
	req.Equal(data, got)

	for _, size := range down.writes {
		req.LessOrEqual(size, shared.ZlibBufferSize)
		req.Positive(size)
	}
}

func TestInflateReader_StandardStream(t *testing.T) {
	req := require.New(t)
	data := testData(90 << 10)

	var compressed bytes.Buffer
	zw, err := zlib.NewWriterLevel(&compressed, zlib.BestSpeed)
	req.NoError(err)
	_, err = zw.Write(data)
	req.NoError(err)
	req.NoError(zw.Close())

	up := &recordingReader{r: bytes.NewReader(compressed.Bytes())}
	ir, err := NewInflateReader(up)
	req.NoError(err)
	got, err := io.ReadAll(ir)
	req.NoError(err)
	req.Equal(data, got)

	for _, size := range up.requests {
		req.Equal(shared.ZlibBufferSize, size)
	}
}

func TestDeflateWriter_IdempotentFinish(t *testing.T) {
	req := require.New(t)

	down := &recordingWriter{}
	dw, err := NewDeflateWriter(down, WithLogger(zaptest.NewLogger(t, zaptest.Level(zap.DebugLevel))))
	req.NoError(err)
	_, err = dw.Write([]byte("finish me once"))
	req.NoError(err)

	req.NoError(dw.Finish())
	req.Equal(1, down.finishes)
	written := down.buf.Len()
	writes := len(down.writes)

	req.NoError(dw.Finish())
	req.Equal(1, down.finishes)
	req.Equal(written, down.buf.Len())
	req.Len(down.writes, writes)

	n, err := dw.Write([]byte("late"))
	req.ErrorIs(err, shared.ErrFinished)
	req.Zero(n)
}

func TestDeflateWriter_FinishCascade(t *testing.T) {
	req := require.New(t)

	// deflate(deflate(sink)): finishing the outer writer finishes the inner
	// one, which finishes the sink, each exactly once.
	sink := &recordingWriter{}
	inner, err := NewDeflateWriter(sink)
	req.NoError(err)
	outer, err := NewDeflateWriter(inner)
	req.NoError(err)

	data := testData(40 << 10)
	_, err = outer.Write(data)
	req.NoError(err)
	req.NoError(outer.Finish())
	req.Equal(1, sink.finishes)
	req.NoError(inner.Finish())
	req.Equal(1, sink.finishes)

	ir1, err := NewInflateReader(bytes.NewReader(sink.buf.Bytes()))
	req.NoError(err)
	ir2, err := NewInflateReader(ir1)
	req.NoError(err)
	got, err := io.ReadAll(ir2)
	req.NoError(err)
	req.Equal(data, got)
}

func TestDeflateWriter_DownstreamFailure(t *testing.T) {
	req := require.New(t)

	errDown := errors.New("disk full")
	down := &recordingWriter{failWith: errDown}
	dw, err := NewDeflateWriter(down, WithLevel(zlib.NoCompression))
	req.NoError(err)

	// More than one stored block, so output reaches the downstream on Write.
	_, err = dw.Write(testData(5 * shared.ZlibBufferSize))
	req.ErrorIs(err, errDown)
	req.False(shared.IsFatal(err))

	req.ErrorIs(dw.Finish(), errDown)
	req.Zero(down.finishes)
}

func TestDeflateWriter_MemorySinkTooSmall(t *testing.T) {
	req := require.New(t)

	out := make([]byte, 16)
	mw, err := backend.NewMemoryWriter(out, len(out))
	req.NoError(err)
	dw, err := NewDeflateWriter(mw)
	req.NoError(err)
	// Depending on when the engine emits output the truncation surfaces
	// on Write or on Finish; Finish reports it either way.
	_, _ = dw.Write(testData(10 << 10))

	err = dw.Finish()
	req.ErrorIs(err, io.ErrShortWrite)
	req.Equal(len(out), mw.Position())
}

func TestInflateReader_ShortReadAtStreamEnd(t *testing.T) {
	req := require.New(t)

	data := []byte("twelve bytes")
	ir, err := NewInflateReader(bytes.NewReader(compress(t, data)))
	req.NoError(err)

	p := make([]byte, 100)
	n, err := ir.Read(p)
	req.NoError(err)
	req.Equal(len(data), n)
	req.Equal(data, p[:n])

	for i := 0; i < 3; i++ {
		n, err = ir.Read(p)
		req.Equal(io.EOF, err)
		req.Zero(n)
	}
	req.NoError(ir.Close())
}

func TestInflateReader_Close(t *testing.T) {
	req := require.New(t)

	data := testData(64 << 10)
	ir, err := NewInflateReader(bytes.NewReader(compress(t, data)), WithLogger(zaptest.NewLogger(t)))
	req.NoError(err)

	// Closing before the first read has nothing to release.
	req.NoError(ir.Close())
	n, err := ir.Read(make([]byte, 10))
	req.Equal(io.EOF, err)
	req.Zero(n)

	ir, err = NewInflateReader(bytes.NewReader(compress(t, data)))
	req.NoError(err)
	p := make([]byte, 100)
	_, err = io.ReadFull(ir, p)
	req.NoError(err)
	req.Equal(data[:100], p)

	req.NoError(ir.Close())
	req.NoError(ir.Close())
	n, err = ir.Read(p)
	req.Equal(io.EOF, err)
	req.Zero(n)
}

func TestInflateReader_Corrupt(t *testing.T) {
	req := require.New(t)

	compressed := compress(t, testData(20<<10))
	compressed[len(compressed)/2] ^= 0xFF
	compressed[len(compressed)/2+1] ^= 0x5A

	ir, err := NewInflateReader(bytes.NewReader(compressed), WithLogger(zaptest.NewLogger(t)))
	req.NoError(err)
	_, err = io.ReadAll(ir)
	req.True(shared.IsFatal(err))

	// The failure sticks.
	_, err2 := ir.Read(make([]byte, 1))
	req.Equal(err, err2)
}

func TestInflateReader_Truncated(t *testing.T) {
	req := require.New(t)

	compressed := compress(t, testData(20<<10))
	ir, err := NewInflateReader(bytes.NewReader(compressed[:len(compressed)-10]))
	req.NoError(err)
	_, err = io.ReadAll(ir)

	var engineErr *shared.EngineError
	req.ErrorAs(err, &engineErr)
	req.Equal("bitio:inflate_inflate", engineErr.Op)
	req.ErrorIs(err, io.ErrUnexpectedEOF)
}

func TestInflateReader_EmptyUpstream(t *testing.T) {
	req := require.New(t)

	ir, err := NewInflateReader(bytes.NewReader(nil))
	req.NoError(err)
	_, err = ir.Read(make([]byte, 1))

	var engineErr *shared.EngineError
	req.ErrorAs(err, &engineErr)
	req.Equal("bitio:inflate_init", engineErr.Op)
}

func TestInflateReader_UpstreamFailure(t *testing.T) {
	req := require.New(t)

	errUp := errors.New("connection reset")
	ir, err := NewInflateReader(&recordingReader{failWith: errUp})
	req.NoError(err)

	_, err = ir.Read(make([]byte, 1))
	req.ErrorIs(err, errUp)
	req.False(shared.IsFatal(err))
}

func TestDeflateWriter_DownstreamFinishFailure(t *testing.T) {
	req := require.New(t)

	errFinish := errors.New("sink finish failed")
	down := &recordingWriter{finishWith: errFinish}
	dw, err := NewDeflateWriter(down, WithLogger(zaptest.NewLogger(t)))
	req.NoError(err)

	_, err = dw.Write(testData(1 << 10))
	req.NoError(err)

	req.ErrorIs(dw.Finish(), errFinish)
	req.ErrorIs(dw.Finish(), errFinish)
	_, err = dw.Write([]byte{1})
	req.ErrorIs(err, errFinish)
	req.Equal(1, down.finishes)
}

func TestInflateReader_UpstreamFailureWithData(t *testing.T) {
	req := require.New(t)

	data := testData(200 << 10)
	compressed := compress(t, data, WithLevel(zlib.NoCompression))

	// The failure comes once, together with the first bytes; later reads
	// would succeed.
	errUp := errors.New("connection reset")
	up := &recordingReader{r: bytes.NewReader(compressed), failWith: errUp, failAfter: 1}
	ir, err := NewInflateReader(up, WithLogger(zaptest.NewLogger(t)))
	req.NoError(err)

	_, err = io.ReadAll(ir)
	req.ErrorIs(err, errUp)
	req.False(shared.IsFatal(err))

	_, err = ir.Read(make([]byte, 1))
	req.ErrorIs(err, errUp)
}
