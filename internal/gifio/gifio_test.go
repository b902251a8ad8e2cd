package gifio

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"os"
	"path/filepath"
	"testing"

	"github.com/gifveil/gifveil/internal/codec"
)

var testPalette = color.Palette{
	color.RGBA{0, 0, 0, 0},
	color.RGBA{255, 0, 0, 255},
	color.RGBA{0, 255, 0, 255},
	color.RGBA{0, 0, 255, 255},
}

// buildGIF returns an encoded animation of n full-canvas frames plus one
// sub-rectangle frame at the end
func buildGIF(t *testing.T, w, h, n int) []byte {
	t.Helper()
	g := &gif.GIF{LoopCount: 3}
	for i := 0; i < n; i++ {
		img := image.NewPaletted(image.Rect(0, 0, w, h), testPalette)
		for p := range img.Pix {
			img.Pix[p] = byte((p + i) % len(testPalette))
		}
		g.Image = append(g.Image, img)
		g.Delay = append(g.Delay, 10*(i+1))
		g.Disposal = append(g.Disposal, gif.DisposalNone)
	}

	sub := image.NewPaletted(image.Rect(2, 1, 4, 3), testPalette)
	for p := range sub.Pix {
		sub.Pix[p] = 3
	}
	g.Image = append(g.Image, sub)
	g.Delay = append(g.Delay, 50)
	g.Disposal = append(g.Disposal, gif.DisposalBackground)

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, g); err != nil {
		t.Fatalf("EncodeAll() error = %v", err)
	}
	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	data := buildGIF(t, 8, 6, 2)

	anim, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if anim.Width != 8 || anim.Height != 6 {
		t.Errorf("canvas = %dx%d, want 8x6", anim.Width, anim.Height)
	}
	if len(anim.Frames) != 3 {
		t.Fatalf("frames = %d, want 3", len(anim.Frames))
	}
	for i, f := range anim.Frames {
		if len(f) != anim.FrameSize() {
			t.Errorf("frame %d has %d samples, want %d", i, len(f), anim.FrameSize())
		}
	}
	if anim.Frames[1][0] != 1 || anim.Frames[1][5] != 2 {
		t.Errorf("frame 1 starts %v, want indices shifted by one", anim.Frames[1][:6])
	}
	if anim.LoopCount() != 3 {
		t.Errorf("LoopCount() = %d, want 3", anim.LoopCount())
	}

	// sub-rectangle frame sits on a transparent-filled canvas
	sub := anim.Frames[2]
	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			want := byte(0)
			if x >= 2 && x < 4 && y >= 1 && y < 3 {
				want = 3
			}
			if got := sub[y*8+x]; got != want {
				t.Errorf("sub frame (%d,%d) = %d, want %d", x, y, got, want)
			}
		}
	}
}

func TestDecode_Invalid(t *testing.T) {
	if _, err := Decode([]byte("not a gif")); err == nil {
		t.Error("Decode() of garbage returned nil error")
	}
}

func TestWithFrames_FullByteRange(t *testing.T) {
	anim, err := Decode(buildGIF(t, 16, 16, 2))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	frames := make([]codec.Frame, len(anim.Frames))
	for i := range frames {
		frames[i] = make(codec.Frame, anim.FrameSize())
		for p := range frames[i] {
			frames[i][p] = byte(p + i)
		}
	}

	g, err := anim.WithFrames(frames)
	if err != nil {
		t.Fatalf("WithFrames() error = %v", err)
	}
	if len(g.Delay) != 3 || g.Delay[2] != 50 {
		t.Errorf("Delay = %v, want timing preserved", g.Delay)
	}
	if g.Disposal[2] != gif.DisposalBackground {
		t.Errorf("Disposal = %v, want preserved", g.Disposal)
	}
	for i, img := range g.Image {
		if len(img.Palette) != PaletteSize {
			t.Errorf("frame %d palette has %d entries, want %d", i, len(img.Palette), PaletteSize)
		}
	}

	data, err := Encode(g)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	back, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() of written GIF error = %v", err)
	}
	for i := range frames {
		if !bytes.Equal(back.Frames[i], frames[i]) {
			t.Errorf("frame %d changed through encode/decode", i)
		}
	}
}

func TestWithFrames_Mismatch(t *testing.T) {
	anim, err := Decode(buildGIF(t, 8, 6, 1))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if _, err := anim.WithFrames(anim.Frames[:1]); err == nil {
		t.Error("WithFrames() with too few frames returned nil error")
	}
	bad := []codec.Frame{anim.Frames[0], make(codec.Frame, 3)}
	if _, err := anim.WithFrames(bad); err == nil {
		t.Error("WithFrames() with short frame returned nil error")
	}
}

func TestEmbedThroughGIF(t *testing.T) {
	dir := t.TempDir()
	coverPath := filepath.Join(dir, "cover.gif")
	if err := os.WriteFile(coverPath, buildGIF(t, 20, 20, 3), 0o600); err != nil {
		t.Fatal(err)
	}

	cover, err := Load(coverPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	payload := bytes.Repeat([]byte("sealed envelope bytes "), 10)
	res, err := codec.Embed(cover.Cover(), payload, codec.EmbedOptions{Depth: codec.Depth4})
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	g, err := cover.WithFrames(res.Frames)
	if err != nil {
		t.Fatalf("WithFrames() error = %v", err)
	}

	outPath := filepath.Join(dir, "out", "cipher.gif")
	if err := Save(outPath, g); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := os.Stat(outPath + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind")
	}

	encoded, err := Load(outPath)
	if err != nil {
		t.Fatalf("Load(encoded) error = %v", err)
	}
	original, err := Load(coverPath)
	if err != nil {
		t.Fatalf("Load(original) error = %v", err)
	}

	got, err := codec.Extract(original.Cover(), encoded.Frames, codec.ExtractOptions{})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !bytes.Equal(got.Payload, payload) {
		t.Error("payload changed through GIF round trip")
	}
	if got.Header.Checksum != original.Checksum {
		t.Errorf("embedded checksum = %s, want %s", got.Header.Checksum, original.Checksum)
	}
}
