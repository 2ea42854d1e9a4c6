// Package bitstream provides bit-granularity access on top of a backend
// Reader or Writer. Bits are packed most-significant-bit first within each
// byte, and consecutive multi-bit fields are continuous across byte
// boundaries, with no padding.
//
//	byte   0               1
//	      +---------------+---------------+-
//	      |7 6 5 4 3 2 1 0|7 6 5 4 3 2 1 0|
//	      +---------------+---------------+-
//	bit    0 1 2 3 4 5 6 7 8 9 ...
package bitstream

import (
	"fmt"

	"github.com/spacemeshos/bitio/shared"
)

type Bit bool

const (
	Zero Bit = false
	One  Bit = true
)

// Uint returns the bit as 0 or 1.
func (b Bit) Uint() uint64 {
	if b {
		return 1
	}
	return 0
}

func validateWidth(numBits int) error {
	if numBits < 0 || numBits > shared.MaxBitWidth {
		return fmt.Errorf("%w; expected: 0 <= width <= %d, given: %d", shared.ErrWidthOutOfRange, shared.MaxBitWidth, numBits)
	}
	return nil
}
