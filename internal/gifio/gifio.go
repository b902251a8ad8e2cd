// Package gifio converts between GIF files and the flattened frames the
// codec works on.
//
// Every frame is flattened to one palette index per canvas pixel. Frames
// that cover only part of the canvas are placed on a canvas filled with
// the frame's transparent index (or 0), so every frame has the same size.
// Written GIFs always carry 256-entry palettes: XORing indices can produce
// any byte value and the decoder rejects indices beyond the palette.
package gifio

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/gifveil/gifveil/internal/checksum"
	"github.com/gifveil/gifveil/internal/codec"
	"github.com/gifveil/gifveil/internal/logging"
)

// PaletteSize is the palette length of every written frame
const PaletteSize = 256

// Animation is a decoded GIF with canvas-sized flattened frames
type Animation struct {
	Width    int
	Height   int
	Frames   []codec.Frame
	Checksum codec.Checksum // Digest of the source file bytes

	src *gif.GIF
}

// FrameSize returns the number of samples in each frame
func (a *Animation) FrameSize() int {
	return a.Width * a.Height
}

// LoopCount returns the loop count of the source GIF
func (a *Animation) LoopCount() int {
	return a.src.LoopCount
}

// Cover returns the animation as a codec cover
func (a *Animation) Cover() codec.Cover {
	return codec.Cover{
		Frames:    a.Frames,
		FrameSize: a.FrameSize(),
		Checksum:  a.Checksum,
	}
}

// String returns a debug representation of the animation
func (a *Animation) String() string {
	return fmt.Sprintf("Animation{%dx%d, frames=%d, checksum=%s}",
		a.Width, a.Height, len(a.Frames), a.Checksum)
}

// Load reads and decodes the GIF at path
func Load(path string) (*Animation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	logging.LogFileEvent("read", path, len(data))

	anim, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return anim, nil
}

// Decode decodes a GIF held in memory
func Decode(data []byte) (*Animation, error) {
	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode GIF: %w", err)
	}
	if len(g.Image) == 0 {
		return nil, fmt.Errorf("GIF has no frames")
	}

	width, height := g.Config.Width, g.Config.Height
	if width == 0 || height == 0 {
		b := g.Image[0].Bounds()
		width, height = b.Max.X, b.Max.Y
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("GIF has an empty canvas")
	}

	frames := make([]codec.Frame, len(g.Image))
	for i, img := range g.Image {
		frames[i] = flatten(img, width, height)
	}

	logging.Debug("GIF decoded",
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Int("frames", len(frames)),
		zap.Int("loop_count", g.LoopCount),
	)

	return &Animation{
		Width:    width,
		Height:   height,
		Frames:   frames,
		Checksum: checksum.Sum(data),
		src:      g,
	}, nil
}

// flatten places img on a width*height canvas of palette indices
func flatten(img *image.Paletted, width, height int) codec.Frame {
	canvas := image.Rect(0, 0, width, height)
	r := img.Rect.Intersect(canvas)

	if r == canvas && img.Stride == width {
		out := make(codec.Frame, width*height)
		copy(out, img.Pix[img.PixOffset(0, 0):])
		return out
	}

	fill := transparentIndex(img.Palette)
	out := bytes.Repeat([]byte{fill}, width*height)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		src := img.Pix[img.PixOffset(r.Min.X, y) : img.PixOffset(r.Max.X-1, y)+1]
		copy(out[y*width+r.Min.X:], src)
	}
	return out
}

func transparentIndex(p color.Palette) byte {
	for i, c := range p {
		if _, _, _, a := c.RGBA(); a == 0 {
			return byte(i)
		}
	}
	return 0
}

// padPalette returns a PaletteSize copy of p, filling new entries with
// opaque black
func padPalette(p color.Palette) color.Palette {
	out := make(color.Palette, PaletteSize)
	n := copy(out, p)
	for i := n; i < PaletteSize; i++ {
		out[i] = color.RGBA{A: 0xff}
	}
	return out
}

// WithFrames builds a GIF that keeps the animation's timing and palettes
// but carries the given frames. frames must match the animation's frame
// count and size.
func (a *Animation) WithFrames(frames []codec.Frame) (*gif.GIF, error) {
	if len(frames) != len(a.Frames) {
		return nil, fmt.Errorf("got %d frames, animation has %d", len(frames), len(a.Frames))
	}

	src := a.src
	canvas := image.Rect(0, 0, a.Width, a.Height)
	out := &gif.GIF{
		Image:           make([]*image.Paletted, len(frames)),
		LoopCount:       src.LoopCount,
		BackgroundIndex: src.BackgroundIndex,
		Config: image.Config{
			Width:  a.Width,
			Height: a.Height,
		},
	}

	if global, ok := src.Config.ColorModel.(color.Palette); ok && len(global) > 0 {
		out.Config.ColorModel = padPalette(global)
	}
	if len(src.Delay) == len(frames) {
		out.Delay = append([]int(nil), src.Delay...)
	}
	if len(src.Disposal) == len(frames) {
		out.Disposal = append([]byte(nil), src.Disposal...)
	}

	for i, f := range frames {
		if len(f) != a.FrameSize() {
			return nil, fmt.Errorf("frame %d has %d samples, expected %d", i, len(f), a.FrameSize())
		}
		img := image.NewPaletted(canvas, padPalette(src.Image[i].Palette))
		copy(img.Pix, f)
		out.Image[i] = img
	}

	return out, nil
}

// Encode serializes g
func Encode(g *gif.GIF) ([]byte, error) {
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, g); err != nil {
		return nil, fmt.Errorf("failed to encode GIF: %w", err)
	}
	return buf.Bytes(), nil
}

// Save encodes g and writes it to path atomically
func Save(path string, g *gif.GIF) error {
	data, err := Encode(g)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	logging.LogFileEvent("write", path, len(data))
	return nil
}
