package codec

import (
	"fmt"

	"go.uber.org/zap"
)

// Layout describes how an embedded stream is laid out across frames
type Layout struct {
	Depth              BitDepth // Bits per sample
	FrameSize          int      // Samples per frame
	ContainerFrames    int      // Frames available in the container
	PayloadLength      int      // Payload bytes (excluding header)
	UsedUnits          int      // Marker + spread header + spread payload
	HeaderRegionEnd    int      // Frame 0 samples written directly
	FramesNeeded       int      // Frames carrying spread data
	LastFrameLength    int      // Samples used in the final used frame
	LastUsedFrameIndex int      // FramesNeeded - 1
}

// FrameSpan returns the number of stream units carried by frame i
func (l Layout) FrameSpan(i int) int {
	switch {
	case i < l.LastUsedFrameIndex:
		return l.FrameSize
	case i == l.LastUsedFrameIndex:
		return l.LastFrameLength
	default:
		return 0
	}
}

// Header returns the header describing this layout
func (l Layout) Header(checksum Checksum) Header {
	return Header{
		FrameCount:      uint8(l.FramesNeeded),
		LastFrameLength: uint32(l.LastFrameLength),
		Checksum:        checksum,
	}
}

// Fields returns the layout as structured log fields
func (l Layout) Fields() []zap.Field {
	return []zap.Field{
		zap.Uint8("bit_depth", uint8(l.Depth)),
		zap.Int("frame_size", l.FrameSize),
		zap.Int("container_frames", l.ContainerFrames),
		zap.Int("payload_length", l.PayloadLength),
		zap.Int("used_units", l.UsedUnits),
		zap.Int("frames_needed", l.FramesNeeded),
		zap.Int("last_frame_length", l.LastFrameLength),
	}
}

// String returns a debug representation of the layout
func (l Layout) String() string {
	return fmt.Sprintf("Layout{depth=%d, frames=%d/%d, last_frame_length=%d, used_units=%d}",
		l.Depth, l.FramesNeeded, l.ContainerFrames, l.LastFrameLength, l.UsedUnits)
}

// Plan computes how many frames a payload of payloadLen bytes needs at the
// given depth and how many samples of the last frame it uses.
func Plan(payloadLen int, depth BitDepth, frameSize, containerFrames int) (Layout, error) {
	if !depth.Valid() {
		return Layout{}, newError(ErrTypeInvalidBitDepth, "bit depth %d does not divide 8", depth)
	}
	if payloadLen < 0 {
		return Layout{}, newError(ErrTypeInvalidContainer, "negative payload length %d", payloadLen)
	}
	if frameSize <= 0 {
		return Layout{}, newError(ErrTypeInvalidContainer, "frame size must be positive, got %d", frameSize)
	}
	if containerFrames <= 0 {
		return Layout{}, newError(ErrTypeInvalidContainer, "container has no frames")
	}

	headerEnd := HeaderRegionEnd(depth)
	if frameSize < headerEnd {
		return Layout{}, newError(ErrTypeCapacityExceeded,
			"frame size %d cannot hold the %d-sample header region at bit depth %d",
			frameSize, headerEnd, depth)
	}

	used := SpreadLen(payloadLen+HeaderSize, depth)
	framesNeeded := (used + frameSize - 1) / frameSize
	lastLen := used - (framesNeeded-1)*frameSize

	if framesNeeded > containerFrames {
		return Layout{}, newError(ErrTypeCapacityExceeded,
			"payload needs %d frames, container has %d", framesNeeded, containerFrames)
	}
	if framesNeeded > MaxFrameCount {
		return Layout{}, newError(ErrTypeCapacityExceeded,
			"payload needs %d frames, header can describe at most %d", framesNeeded, MaxFrameCount)
	}
	if lastLen >= MaxLastFrameUnits {
		return Layout{}, newError(ErrTypeCapacityExceeded,
			"last frame length %d does not fit in 3 bytes", lastLen)
	}

	return Layout{
		Depth:              depth,
		FrameSize:          frameSize,
		ContainerFrames:    containerFrames,
		PayloadLength:      payloadLen,
		UsedUnits:          used,
		HeaderRegionEnd:    headerEnd,
		FramesNeeded:       framesNeeded,
		LastFrameLength:    lastLen,
		LastUsedFrameIndex: framesNeeded - 1,
	}, nil
}

// MaxPayload returns the largest payload length Plan accepts for the
// given container.
func MaxPayload(depth BitDepth, frameSize, containerFrames int) (int, error) {
	if _, err := Plan(0, depth, frameSize, containerFrames); err != nil {
		return 0, err
	}

	frames := containerFrames
	if frames > MaxFrameCount {
		frames = MaxFrameCount
	}
	lastCap := frameSize
	if lastCap > MaxLastFrameUnits-1 {
		lastCap = MaxLastFrameUnits - 1
	}
	units := (frames-1)*frameSize + lastCap

	return (units-1)/depth.ByteRatio() - HeaderSize, nil
}
