package codec

import (
	"bytes"
	"math/rand"
	"testing"
)

func randomCover(t *testing.T, frames, frameSize int, seed int64) Cover {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	out := make([]Frame, frames)
	for i := range out {
		out[i] = make(Frame, frameSize)
		rng.Read(out[i])
	}
	var sum Checksum
	rng.Read(sum[:])
	return Cover{Frames: out, FrameSize: frameSize, Checksum: sum}
}

func uniformCover(frames, frameSize int, value byte) Cover {
	out := make([]Frame, frames)
	for i := range out {
		out[i] = bytes.Repeat([]byte{value}, frameSize)
	}
	return Cover{Frames: out, FrameSize: frameSize, Checksum: testChecksum()}
}

func cloneFrames(frames []Frame) []Frame {
	out := make([]Frame, len(frames))
	for i, f := range frames {
		out[i] = f.Clone()
	}
	return out
}

func TestEmbed_ConcreteUnits(t *testing.T) {
	cover := uniformCover(1, 100, 0x10)

	res, err := Embed(cover, []byte{0xAB, 0xCD}, EmbedOptions{Depth: Depth2})
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	out := res.Frames[0]

	if out[0] != 2 {
		t.Errorf("marker = %d, want 2", out[0])
	}

	// Header region is written directly, independent of the cover
	packed, _ := EncodeHeader(res.Header)
	spread, _ := Spread(packed, Depth2)
	if !bytes.Equal(out[1:81], spread[1:]) {
		t.Errorf("header region = %v, want %v", out[1:81], spread[1:])
	}

	// Payload units are XORed with the cover
	want := []byte{3, 2, 2, 2, 1, 3, 0, 3}
	for i, u := range want {
		if got := out[81+i]; got != 0x10^u {
			t.Errorf("out[%d] = %#x, want %#x", 81+i, got, 0x10^u)
		}
	}

	for i := 89; i < 100; i++ {
		if out[i] != 0x10 {
			t.Errorf("out[%d] = %#x, want untouched cover sample 0x10", i, out[i])
		}
	}

	if res.Header.FrameCount != 1 || res.Header.LastFrameLength != 89 {
		t.Errorf("header = %v, want 1 frame, last length 89", res.Header)
	}
	if res.Header.Checksum != cover.Checksum {
		t.Errorf("header checksum = %s, want %s", res.Header.Checksum, cover.Checksum)
	}
}

func TestEmbed_HeaderRegionIgnoresCover(t *testing.T) {
	payload := []byte("payload")
	a, err := Embed(uniformCover(2, 200, 0x00), payload, EmbedOptions{Depth: Depth4})
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	b, err := Embed(uniformCover(2, 200, 0xEE), payload, EmbedOptions{Depth: Depth4})
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}

	end := HeaderRegionEnd(Depth4)
	if !bytes.Equal(a.Frames[0][:end], b.Frames[0][:end]) {
		t.Error("header region differs between covers")
	}
}

func TestEmbed_UnusedFramesCopied(t *testing.T) {
	cover := randomCover(t, 6, 256, 7)
	before := cloneFrames(cover.Frames)

	res, err := Embed(cover, []byte("short"), EmbedOptions{Depth: Depth8, Workers: 2})
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(res.Frames) != len(cover.Frames) {
		t.Fatalf("output frames = %d, want %d", len(res.Frames), len(cover.Frames))
	}
	if res.Layout.FramesNeeded != 1 {
		t.Fatalf("FramesNeeded = %d, want 1", res.Layout.FramesNeeded)
	}

	for i := 1; i < len(cover.Frames); i++ {
		if !bytes.Equal(res.Frames[i], cover.Frames[i]) {
			t.Errorf("frame %d changed, want identical to cover", i)
		}
		if &res.Frames[i][0] == &cover.Frames[i][0] {
			t.Errorf("frame %d shares storage with the cover", i)
		}
	}

	for i := range before {
		if !bytes.Equal(before[i], cover.Frames[i]) {
			t.Errorf("cover frame %d was mutated", i)
		}
	}
}

func TestEmbed_DefaultDepth(t *testing.T) {
	res, err := Embed(uniformCover(1, 200, 0), []byte{1}, EmbedOptions{})
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if res.Layout.Depth != DefaultDepth {
		t.Errorf("Depth = %d, want %d", res.Layout.Depth, DefaultDepth)
	}
	if res.Frames[0][0] != byte(DefaultDepth) {
		t.Errorf("marker = %d, want %d", res.Frames[0][0], DefaultDepth)
	}
}

func TestEmbed_Errors(t *testing.T) {
	tests := []struct {
		name    string
		cover   Cover
		payload []byte
		depth   BitDepth
		check   func(error) bool
	}{
		{
			name:    "capacity",
			cover:   uniformCover(1, 100, 0),
			payload: make([]byte, 5),
			depth:   Depth2,
			check:   IsCapacityExceeded,
		},
		{
			name:    "bad depth",
			cover:   uniformCover(1, 100, 0),
			payload: []byte{1},
			depth:   3,
			check:   IsInvalidBitDepth,
		},
		{
			name:    "empty cover",
			cover:   Cover{FrameSize: 100},
			payload: []byte{1},
			depth:   Depth2,
			check:   IsInvalidContainer,
		},
		{
			name: "ragged frames",
			cover: Cover{
				Frames:    []Frame{make(Frame, 100), make(Frame, 99)},
				FrameSize: 100,
			},
			payload: []byte{1},
			depth:   Depth2,
			check:   IsInvalidContainer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Embed(tt.cover, tt.payload, EmbedOptions{Depth: tt.depth})
			if res != nil {
				t.Errorf("Embed() returned a result alongside error")
			}
			if !tt.check(err) {
				t.Errorf("Embed() error = %v", err)
			}
		})
	}
}
