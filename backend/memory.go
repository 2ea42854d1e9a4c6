package backend

import (
	"fmt"
	"io"

	"github.com/spacemeshos/bitio/shared"
)

type memoryState struct {
	data   []byte
	pos    int
	length int
}

func newMemoryState(buf []byte, length int) (*memoryState, error) {
	if length < 0 || length > len(buf) {
		return nil, fmt.Errorf("%w; expected: 0 <= length <= %d, given: %d", shared.ErrInvalidLength, len(buf), length)
	}
	return &memoryState{data: buf, length: length}, nil
}

// transfer returns the region of the buffer the next n bytes map to, clamped
// to the remaining capacity, and advances the position past it.
func (s *memoryState) transfer(n int) []byte {
	if remaining := s.length - s.pos; n > remaining {
		n = remaining
	}
	region := s.data[s.pos : s.pos+n]
	s.pos += n
	return region
}

// MemoryReader reads from the first length bytes of a caller supplied buffer.
type MemoryReader struct {
	state *memoryState
}

// A compile time check to ensure that MemoryReader fully implements the Reader interface.
var _ Reader = (*MemoryReader)(nil)

func NewMemoryReader(buf []byte, length int) (*MemoryReader, error) {
	state, err := newMemoryState(buf, length)
	if err != nil {
		return nil, err
	}
	return &MemoryReader{state: state}, nil
}

// Read copies min(len(p), remaining) bytes and returns exactly that count.
func (r *MemoryReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if r.state.pos == r.state.length {
		return 0, io.EOF
	}
	return copy(p, r.state.transfer(len(p))), nil
}

func (r *MemoryReader) Position() int {
	return r.state.pos
}

func (r *MemoryReader) Len() int {
	return r.state.length
}

// MemoryWriter writes into the first length bytes of a caller supplied buffer.
// It is a fixed-capacity sink: writes past the capacity are truncated.
type MemoryWriter struct {
	state    *memoryState
	finished bool
}

// A compile time check to ensure that MemoryWriter fully implements the Writer interface.
var _ Writer = (*MemoryWriter)(nil)

func NewMemoryWriter(buf []byte, length int) (*MemoryWriter, error) {
	state, err := newMemoryState(buf, length)
	if err != nil {
		return nil, err
	}
	return &MemoryWriter{state: state}, nil
}

// Write copies min(len(p), remaining) bytes and returns exactly that count.
// A truncated write also returns io.ErrShortWrite; the count tells how much
// made it into the buffer.
func (w *MemoryWriter) Write(p []byte) (int, error) {
	if w.finished {
		return 0, shared.ErrFinished
	}
	n := copy(w.state.transfer(len(p)), p)
	if n < len(p) {
		return n, io.ErrShortWrite
	}
	return n, nil
}

// Finish drops the writer's reference to the buffer, which stays with the
// caller. Later writes return shared.ErrFinished.
func (w *MemoryWriter) Finish() error {
	w.state.data = nil
	w.finished = true
	return nil
}

func (w *MemoryWriter) Position() int {
	return w.state.pos
}

func (w *MemoryWriter) Len() int {
	return w.state.length
}

// Bytes returns the written part of the buffer, or nil once finished.
func (w *MemoryWriter) Bytes() []byte {
	if w.finished {
		return nil
	}
	return w.state.data[:w.state.pos]
}
