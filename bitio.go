// Package bitio reads and writes bit-granular binary data through an
// interchangeable byte backend: a file handle, a fixed-size memory buffer, or a
// zlib stream layered over another Reader or Writer.
//
// Bits are packed most-significant-bit first. Byte block reads and writes go
// straight to the backend and do not look at the bit cursor; callers mixing
// both call ResetBits at byte boundaries.
package bitio

import (
	"github.com/spacemeshos/bitio/bitstream"
)

type (
	Bit = bitstream.Bit
)

const (
	Zero = bitstream.Zero
	One  = bitstream.One
)

type Backend int

var backends = []string{
	"FILE",
	"MEMORY",
	"ZLIB",
}

const (
	BackendFile Backend = 1 + iota
	BackendMemory
	BackendZlib
)

func (b Backend) String() string {
	return backends[b-1]
}
