package codec

import (
	"encoding/hex"
	"fmt"
)

// Header layout constants
const (
	HeaderSize        = 20      // frame_count + last_frame_length + checksum
	ChecksumSize      = 16      // cover file digest
	MaxFrameCount     = 0xFF    // frame_count is a single byte
	MaxLastFrameUnits = 1 << 24 // last_frame_length is three bytes, exclusive bound
)

// Checksum is a 16-byte digest of the complete original cover file
type Checksum [ChecksumSize]byte

// String returns the digest as lowercase hex
func (c Checksum) String() string {
	return hex.EncodeToString(c[:])
}

// Header is the metadata block embedded ahead of the payload
type Header struct {
	FrameCount      uint8    // Number of frames carrying spread data
	LastFrameLength uint32   // Samples used in the final used frame
	Checksum        Checksum // Digest of the original cover file
}

// String returns a debug representation of the header
func (h Header) String() string {
	return fmt.Sprintf("Header{frames=%d, last_frame_length=%d, checksum=%s}",
		h.FrameCount, h.LastFrameLength, h.Checksum)
}

// EncodeHeader packs h into its fixed 20-byte form
func EncodeHeader(h Header) ([]byte, error) {
	if h.FrameCount == 0 {
		return nil, newError(ErrTypeMalformedHeader, "frame count must be at least 1")
	}
	if h.LastFrameLength >= MaxLastFrameUnits {
		return nil, newError(ErrTypeMalformedHeader,
			"last frame length %d does not fit in 3 bytes", h.LastFrameLength)
	}

	buf := make([]byte, HeaderSize)
	buf[0] = h.FrameCount
	buf[1] = byte(h.LastFrameLength)
	buf[2] = byte(h.LastFrameLength >> 8)
	buf[3] = byte(h.LastFrameLength >> 16)
	copy(buf[4:], h.Checksum[:])
	return buf, nil
}

// DecodeHeader parses a 20-byte header produced by EncodeHeader
func DecodeHeader(data []byte) (Header, error) {
	if len(data) != HeaderSize {
		return Header{}, newError(ErrTypeMalformedHeader,
			"header must be exactly %d bytes, got %d", HeaderSize, len(data))
	}

	h := Header{
		FrameCount:      data[0],
		LastFrameLength: uint32(data[1]) | uint32(data[2])<<8 | uint32(data[3])<<16,
	}
	copy(h.Checksum[:], data[4:])

	if h.FrameCount == 0 {
		return Header{}, newError(ErrTypeMalformedHeader, "frame count is zero")
	}
	return h, nil
}

// HeaderRegionEnd is the number of frame 0 samples written directly:
// the depth marker plus the spread header.
func HeaderRegionEnd(depth BitDepth) int {
	return SpreadLen(HeaderSize, depth)
}
