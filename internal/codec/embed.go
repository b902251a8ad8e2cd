package codec

import (
	"go.uber.org/zap"
)

// EmbedOptions configures Embed
type EmbedOptions struct {
	Depth   BitDepth    // Bits per sample (default DefaultDepth)
	Workers int         // Frame workers (default runtime.NumCPU())
	Logger  *zap.Logger // Optional logger (default silent)
}

// EmbedResult holds the frames ready for container serialization
type EmbedResult struct {
	Frames []Frame // One output frame per cover frame, in order
	Layout Layout  // Layout used for embedding
	Header Header  // Header written into frame 0
}

// Embed lays header+payload out across copies of the cover frames.
// The cover is not modified.
func Embed(cover Cover, payload []byte, opts EmbedOptions) (*EmbedResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	depth := opts.Depth
	if depth == 0 {
		depth = DefaultDepth
	}

	if err := cover.Validate(); err != nil {
		return nil, err
	}

	layout, err := Plan(len(payload), depth, cover.FrameSize, len(cover.Frames))
	if err != nil {
		return nil, err
	}
	logger.Debug("Capacity planned", layout.Fields()...)

	header := layout.Header(cover.Checksum)
	packed, err := EncodeHeader(header)
	if err != nil {
		return nil, err
	}

	src := make([]byte, 0, len(packed)+len(payload))
	src = append(src, packed...)
	src = append(src, payload...)

	stream, err := Spread(src, depth)
	if err != nil {
		return nil, err
	}
	if len(stream) != layout.UsedUnits {
		return nil, newError(ErrTypeMalformedStream,
			"spread stream has %d units, layout expects %d", len(stream), layout.UsedUnits)
	}

	out := make([]Frame, len(cover.Frames))
	err = forEachFrame(len(cover.Frames), opts.Workers, func(i int) error {
		out[i] = embedFrame(cover.Frames[i], stream, layout, i)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("Payload embedded",
		zap.Int("frames_modified", layout.FramesNeeded),
		zap.Int("frames_copied", len(cover.Frames)-layout.FramesNeeded),
		zap.String("checksum", cover.Checksum.String()),
	)

	return &EmbedResult{
		Frames: out,
		Layout: layout,
		Header: header,
	}, nil
}

// embedFrame produces output frame i from its cover frame
func embedFrame(cover Frame, stream []byte, layout Layout, i int) Frame {
	out := cover.Clone()

	span := layout.FrameSpan(i)
	if span == 0 {
		return out
	}

	offset := i * layout.FrameSize
	chunk := stream[offset : offset+span]

	start := 0
	if i == 0 {
		start = copy(out[:layout.HeaderRegionEnd], chunk[:layout.HeaderRegionEnd])
	}
	xorInto(out[start:span], cover[start:span], chunk[start:span])
	return out
}
