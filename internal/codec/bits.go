package codec

// BitDepth is the number of payload bits carried by one pixel sample
type BitDepth uint8

// Supported bit depths
const (
	Depth1 BitDepth = 1
	Depth2 BitDepth = 2
	Depth4 BitDepth = 4
	Depth8 BitDepth = 8
)

// DefaultDepth is the depth used when the caller does not pick one
const DefaultDepth = Depth2

// Valid reports whether d evenly divides 8
func (d BitDepth) Valid() bool {
	switch d {
	case Depth1, Depth2, Depth4, Depth8:
		return true
	default:
		return false
	}
}

// ByteRatio is the number of spread units produced per source byte.
// Only meaningful for a valid depth.
func (d BitDepth) ByteRatio() int {
	return 8 / int(d)
}

// mask selects the low d bits of a byte
func (d BitDepth) mask() byte {
	return byte(0xFF >> (8 - uint(d)))
}

// ParseBitDepth converts an integer flag or config value to a BitDepth
func ParseBitDepth(v int) (BitDepth, error) {
	if v < 1 || v > 8 || !BitDepth(v).Valid() {
		return 0, newError(ErrTypeInvalidBitDepth, "bit depth %d does not divide 8", v)
	}
	return BitDepth(v), nil
}

// SpreadLen returns the spread stream length for n source bytes
func SpreadLen(n int, depth BitDepth) int {
	return depth.ByteRatio()*n + 1
}

// Spread re-expresses src as depth-bit units, least significant chunk first,
// preceded by a single marker unit equal to depth.
func Spread(src []byte, depth BitDepth) ([]byte, error) {
	if !depth.Valid() {
		return nil, newError(ErrTypeInvalidBitDepth, "bit depth %d does not divide 8", depth)
	}

	ratio := depth.ByteRatio()
	mask := depth.mask()
	out := make([]byte, SpreadLen(len(src), depth))
	out[0] = byte(depth)

	for i, b := range src {
		base := 1 + i*ratio
		for j := 0; j < ratio; j++ {
			out[base+j] = (b >> (uint(j) * uint(depth))) & mask
		}
	}
	return out, nil
}

// Compact is the inverse of Spread. The bit depth is read from unit 0.
func Compact(stream []byte) ([]byte, error) {
	if len(stream) == 0 {
		return nil, newError(ErrTypeMalformedStream, "empty stream")
	}

	depth := BitDepth(stream[0])
	if !depth.Valid() {
		return nil, newError(ErrTypeMalformedStream, "invalid bit depth marker %d", stream[0])
	}

	ratio := depth.ByteRatio()
	if (len(stream)-1)%ratio != 0 {
		return nil, newError(ErrTypeMalformedStream,
			"stream length %d is not 1 + a multiple of %d", len(stream), ratio)
	}

	mask := depth.mask()
	out := make([]byte, (len(stream)-1)/ratio)
	for i := range out {
		base := 1 + i*ratio
		var b byte
		for j := 0; j < ratio; j++ {
			unit := stream[base+j]
			if unit&^mask != 0 {
				return nil, newError(ErrTypeMalformedStream,
					"unit %d has value %d, out of range for bit depth %d", base+j, unit, depth)
			}
			b |= unit << (uint(j) * uint(depth))
		}
		out[i] = b
	}
	return out, nil
}
