package shared

const (
	// ZlibBufferSize is the size of the scratch buffer staging engine input
	// (inflate) or engine output (deflate).
	ZlibBufferSize = 16384

	// MaxBitWidth is the widest field ReadBits and WriteBits accept.
	MaxBitWidth = 64
)
