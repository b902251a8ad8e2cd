package codec

import (
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Frame is one image frame flattened to one sample per pixel,
// row-major, length width*height.
type Frame []byte

// Clone returns a copy of f backed by a new buffer
func (f Frame) Clone() Frame {
	out := make(Frame, len(f))
	copy(out, f)
	return out
}

// Cover is an original container as seen by the codec
type Cover struct {
	Frames    []Frame  // All container frames, in display order
	FrameSize int      // Samples per frame (width * height)
	Checksum  Checksum // Digest of the complete cover file
}

// Validate checks that the cover has frames of a consistent size
func (c Cover) Validate() error {
	if len(c.Frames) == 0 {
		return newError(ErrTypeInvalidContainer, "cover has no frames")
	}
	if c.FrameSize <= 0 {
		return newError(ErrTypeInvalidContainer, "frame size must be positive, got %d", c.FrameSize)
	}
	return checkFrames(c.Frames, c.FrameSize, "cover")
}

// String returns a debug representation of the cover
func (c Cover) String() string {
	return fmt.Sprintf("Cover{frames=%d, frame_size=%d, checksum=%s}",
		len(c.Frames), c.FrameSize, c.Checksum)
}

func checkFrames(frames []Frame, frameSize int, label string) error {
	for i, f := range frames {
		if len(f) != frameSize {
			return newError(ErrTypeInvalidContainer,
				"%s frame %d has %d samples, expected %d", label, i, len(f), frameSize)
		}
	}
	return nil
}

// xorInto writes a[i] ^ b[i] into dst for every i in dst
func xorInto(dst, a, b []byte) {
	for i := range dst {
		dst[i] = a[i] ^ b[i]
	}
}

// forEachFrame runs fn for frame indices [0, n) on at most workers goroutines
func forEachFrame(n, workers int, fn func(i int) error) error {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		i := i // per-iteration copy (pre-Go 1.22 loop semantics)
		g.Go(func() error {
			return fn(i)
		})
	}
	return g.Wait()
}
