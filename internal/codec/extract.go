package codec

import (
	"go.uber.org/zap"
)

// ExtractOptions configures Extract
type ExtractOptions struct {
	// Force proceeds past a checksum mismatch without consulting OnMismatch
	Force bool
	// OnMismatch is consulted on a checksum mismatch when Force is false.
	// Nil aborts with a ChecksumMismatch error.
	OnMismatch MismatchFunc
	Workers    int         // Frame workers (default runtime.NumCPU())
	Logger     *zap.Logger // Optional logger (default silent)
}

// Extraction is the result of a successful Extract
type Extraction struct {
	Payload   []byte    // Recovered payload
	Header    Header    // Header read from frame 0
	Depth     BitDepth  // Bit depth read from frame 0
	Integrity Integrity // Checksum comparison outcome
}

// ReadHeader reads the bit depth marker and the directly written header
// region of frame 0. It needs no original cover.
func ReadHeader(frame0 Frame) (BitDepth, Header, error) {
	if len(frame0) == 0 {
		return 0, Header{}, newError(ErrTypeMalformedStream, "frame 0 is empty")
	}

	depth := BitDepth(frame0[0])
	if !depth.Valid() {
		return 0, Header{}, newError(ErrTypeMalformedStream, "invalid bit depth marker %d", frame0[0])
	}

	end := HeaderRegionEnd(depth)
	if len(frame0) < end {
		return 0, Header{}, newError(ErrTypeMalformedHeader,
			"frame 0 has %d samples, header region needs %d", len(frame0), end)
	}

	packed, err := Compact(frame0[:end])
	if err != nil {
		return 0, Header{}, err
	}
	header, err := DecodeHeader(packed)
	if err != nil {
		return 0, Header{}, err
	}
	return depth, header, nil
}

// Extract recovers the payload from modified frames using the original
// cover frames as XOR key material.
func Extract(original Cover, modified []Frame, opts ExtractOptions) (*Extraction, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := original.Validate(); err != nil {
		return nil, err
	}
	if len(modified) == 0 {
		return nil, newError(ErrTypeInvalidContainer, "encoded container has no frames")
	}
	if err := checkFrames(modified, original.FrameSize, "encoded"); err != nil {
		return nil, err
	}

	depth, header, err := ReadHeader(modified[0])
	if err != nil {
		return nil, err
	}
	logger.Debug("Header recovered",
		zap.Uint8("bit_depth", uint8(depth)),
		zap.Uint8("frame_count", header.FrameCount),
		zap.Uint32("last_frame_length", header.LastFrameLength),
		zap.String("checksum", header.Checksum.String()),
	)

	integrity, err := Gate(header.Checksum, original.Checksum, opts.Force, opts.OnMismatch)
	if err != nil {
		return nil, err
	}
	if integrity == IntegrityMismatch {
		logger.Warn("Proceeding despite checksum mismatch",
			zap.String("expected", header.Checksum.String()),
			zap.String("actual", original.Checksum.String()),
		)
	}

	layout, err := layoutFromHeader(header, depth, original.FrameSize, len(original.Frames), len(modified))
	if err != nil {
		return nil, err
	}

	stream := make([]byte, layout.UsedUnits)
	err = forEachFrame(layout.FramesNeeded, opts.Workers, func(i int) error {
		offset := i * layout.FrameSize
		dst := stream[offset : offset+layout.FrameSpan(i)]
		extractFrame(dst, modified[i], original.Frames[i], layout.HeaderRegionEnd, i == 0)
		return nil
	})
	if err != nil {
		return nil, err
	}

	data, err := Compact(stream)
	if err != nil {
		return nil, err
	}
	if len(data) < HeaderSize {
		return nil, newError(ErrTypeMalformedStream, "recovered %d bytes, shorter than the header", len(data))
	}

	return &Extraction{
		Payload:   data[HeaderSize:],
		Header:    header,
		Depth:     depth,
		Integrity: integrity,
	}, nil
}

// LayoutFromHeader rebuilds the embed-time layout of a container whose
// frame 0 carried h, for inspection without an original cover.
func LayoutFromHeader(h Header, depth BitDepth, frameSize, containerFrames int) (Layout, error) {
	if !depth.Valid() {
		return Layout{}, newError(ErrTypeInvalidBitDepth, "bit depth %d does not divide 8", depth)
	}
	return layoutFromHeader(h, depth, frameSize, containerFrames, containerFrames)
}

// layoutFromHeader rebuilds the embed-time layout and checks that the
// header is consistent with both containers.
func layoutFromHeader(h Header, depth BitDepth, frameSize, originalFrames, modifiedFrames int) (Layout, error) {
	frames := int(h.FrameCount)
	last := int(h.LastFrameLength)
	headerEnd := HeaderRegionEnd(depth)

	if frames > originalFrames || frames > modifiedFrames {
		return Layout{}, newError(ErrTypeMalformedHeader,
			"header claims %d frames, containers have %d (original) and %d (encoded)",
			frames, originalFrames, modifiedFrames)
	}
	if last == 0 || last > frameSize {
		return Layout{}, newError(ErrTypeMalformedHeader,
			"last frame length %d out of range for frame size %d", last, frameSize)
	}

	used := (frames-1)*frameSize + last
	if used < headerEnd {
		return Layout{}, newError(ErrTypeMalformedHeader,
			"stream of %d units is shorter than the %d-unit header region", used, headerEnd)
	}
	if (used-1)%depth.ByteRatio() != 0 {
		return Layout{}, newError(ErrTypeMalformedStream,
			"stream of %d units is not 1 + a multiple of %d", used, depth.ByteRatio())
	}

	return Layout{
		Depth:              depth,
		FrameSize:          frameSize,
		ContainerFrames:    originalFrames,
		PayloadLength:      (used-1)/depth.ByteRatio() - HeaderSize,
		UsedUnits:          used,
		HeaderRegionEnd:    headerEnd,
		FramesNeeded:       frames,
		LastFrameLength:    last,
		LastUsedFrameIndex: frames - 1,
	}, nil
}

// extractFrame recovers len(dst) stream units from one frame pair
func extractFrame(dst []byte, modified, original Frame, headerEnd int, first bool) {
	start := 0
	if first {
		start = copy(dst[:headerEnd], modified[:headerEnd])
	}
	xorInto(dst[start:], modified[start:len(dst)], original[start:len(dst)])
}
