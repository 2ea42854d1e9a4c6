package bitstream

import (
	"io"

	"github.com/spacemeshos/bitio/backend"
)

// BitReader reads bits from a backend.Reader.
type BitReader struct {
	stream  backend.Reader
	pending [1]byte

	// alignment is the number of bits of pending already consumed;
	// 8 means nothing is buffered.
	alignment uint8
}

// NewReader returns a new instance of BitReader.
func NewReader(r backend.Reader) *BitReader {
	return &BitReader{
		stream:    r,
		alignment: 8,
	}
}

// ReadBit reads the next single bit from the stream, MSB first. When a fresh
// byte is needed and the stream is exhausted, io.EOF is returned and the
// cursor stays empty.
func (br *BitReader) ReadBit() (Bit, error) {
	if br.alignment == 8 {
		if _, err := io.ReadFull(br.stream, br.pending[:]); err != nil {
			br.pending[0] = 0
			return Zero, err
		}
		br.alignment = 0
	}

	bit := Bit((br.pending[0]>>(7-br.alignment))&1 == 1)
	br.alignment++

	return bit, nil
}

// ReadBits reads the next numBits from the stream as an unsigned value, the
// first bit read being the most significant one. Reading zero bits is a no-op.
// Running out of input after the first bit yields io.ErrUnexpectedEOF.
func (br *BitReader) ReadBits(numBits int) (uint64, error) {
	if err := validateWidth(numBits); err != nil {
		return 0, err
	}

	var val uint64
	for t := 0; t < numBits; t++ {
		bit, err := br.ReadBit()
		if err != nil {
			if err == io.EOF && t > 0 {
				err = io.ErrUnexpectedEOF
			}
			return 0, err
		}
		val = val<<1 | bit.Uint()
	}

	return val, nil
}

// ResetBits discards the partially consumed byte, if any, without reading
// from the stream. The next bit read starts on a fresh byte.
func (br *BitReader) ResetBits() {
	br.pending[0] = 0
	br.alignment = 8
}

// BitPosition returns the number of bits consumed from the pending byte,
// in [0,8]; 8 means no bits are buffered.
func (br *BitReader) BitPosition() int {
	return int(br.alignment)
}
