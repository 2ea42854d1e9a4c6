package bitstream

import (
	"io"

	"github.com/spacemeshos/bitio/backend"
)

// BitWriter writes bits to a backend.Writer.
type BitWriter struct {
	stream  backend.Writer
	pending [1]byte

	// alignment is the number of bits already placed into pending.
	alignment uint8
}

// NewWriter returns a new instance of BitWriter.
func NewWriter(w backend.Writer) *BitWriter {
	return &BitWriter{stream: w}
}

// WriteBit writes a single bit to the stream, MSB first. A full pending byte
// is only written out once the next bit arrives or on ResetBits.
func (bw *BitWriter) WriteBit(bit Bit) error {
	if bw.alignment == 8 {
		if err := bw.flush(); err != nil {
			return err
		}
	}

	if bit {
		bw.pending[0] |= 1 << (7 - bw.alignment)
	}
	bw.alignment++

	return nil
}

// WriteBits writes the numBits low bits of val, most significant first.
// Writing zero bits is a no-op.
func (bw *BitWriter) WriteBits(val uint64, numBits int) error {
	if err := validateWidth(numBits); err != nil {
		return err
	}

	for t := 0; t < numBits; t++ {
		if err := bw.WriteBit((val>>(numBits-t-1))&1 == 1); err != nil {
			return err
		}
	}

	return nil
}

// ResetBits writes out the pending byte if it holds any bits, unset low bits
// as zero, and clears the cursor. It byte-aligns the stream.
func (bw *BitWriter) ResetBits() error {
	if bw.alignment > 0 {
		if err := bw.flush(); err != nil {
			return err
		}
	}

	return nil
}

// BitPosition returns the number of bits placed into the pending byte,
// in [0,8]; 0 means nothing is pending.
func (bw *BitWriter) BitPosition() int {
	return int(bw.alignment)
}

func (bw *BitWriter) flush() error {
	n, err := bw.stream.Write(bw.pending[:])
	if err != nil {
		return err
	}
	if n != 1 {
		return io.ErrShortWrite
	}

	bw.pending[0] = 0
	bw.alignment = 0

	return nil
}
