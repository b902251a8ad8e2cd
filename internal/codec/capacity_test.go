package codec

import "testing"

func TestPlan_ConcreteScenario(t *testing.T) {
	layout, err := Plan(2, Depth2, 100, 1)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if layout.UsedUnits != 89 {
		t.Errorf("UsedUnits = %d, want 89", layout.UsedUnits)
	}
	if layout.FramesNeeded != 1 {
		t.Errorf("FramesNeeded = %d, want 1", layout.FramesNeeded)
	}
	if layout.LastFrameLength != 89 {
		t.Errorf("LastFrameLength = %d, want 89", layout.LastFrameLength)
	}
	if layout.LastUsedFrameIndex != 0 {
		t.Errorf("LastUsedFrameIndex = %d, want 0", layout.LastUsedFrameIndex)
	}
	if layout.HeaderRegionEnd != 81 {
		t.Errorf("HeaderRegionEnd = %d, want 81", layout.HeaderRegionEnd)
	}
}

func TestPlan_Boundary(t *testing.T) {
	// depth 8: used = 1 + payload + 20; pick payload so used == k*frameSize
	const frameSize = 64
	for k := 1; k <= 4; k++ {
		payload := k*frameSize - 21
		layout, err := Plan(payload, Depth8, frameSize, 4)
		if err != nil {
			t.Fatalf("k=%d: Plan() error = %v", k, err)
		}
		if layout.UsedUnits != k*frameSize {
			t.Fatalf("k=%d: UsedUnits = %d, want %d", k, layout.UsedUnits, k*frameSize)
		}
		if layout.FramesNeeded != k {
			t.Errorf("k=%d: FramesNeeded = %d, want %d", k, layout.FramesNeeded, k)
		}
		if layout.LastFrameLength != frameSize {
			t.Errorf("k=%d: LastFrameLength = %d, want %d", k, layout.LastFrameLength, frameSize)
		}
	}

	// one more byte spills into the next frame
	layout, err := Plan(2*frameSize-21+1, Depth8, frameSize, 4)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if layout.FramesNeeded != 3 || layout.LastFrameLength != 1 {
		t.Errorf("spill = %d frames, last %d; want 3 frames, last 1", layout.FramesNeeded, layout.LastFrameLength)
	}
}

func TestPlan_Monotonic(t *testing.T) {
	depths := []BitDepth{Depth1, Depth2, Depth4, Depth8}
	for _, payload := range []int{0, 1, 17, 500, 4096, 20000} {
		prev := -1
		for _, d := range depths {
			layout, err := Plan(payload, d, 1000, 255)
			if err != nil {
				t.Fatalf("Plan(%d, %d) error = %v", payload, d, err)
			}
			if prev >= 0 && layout.FramesNeeded > prev {
				t.Errorf("payload %d: depth %d needs %d frames, more than %d at lower depth",
					payload, d, layout.FramesNeeded, prev)
			}
			prev = layout.FramesNeeded
		}
	}
}

func TestPlan_Errors(t *testing.T) {
	tests := []struct {
		name      string
		payload   int
		depth     BitDepth
		frameSize int
		frames    int
		wantType  ErrorType
	}{
		{"invalid depth", 10, 3, 100, 1, ErrTypeInvalidBitDepth},
		{"too many frames needed", 100, Depth2, 100, 2, ErrTypeCapacityExceeded},
		{"frame too small for header", 0, Depth1, 160, 10, ErrTypeCapacityExceeded},
		{"beyond frame count field", 300 * 100, Depth8, 100, 1000, ErrTypeCapacityExceeded},
		{"zero frame size", 1, Depth2, 0, 1, ErrTypeInvalidContainer},
		{"no frames", 1, Depth2, 100, 0, ErrTypeInvalidContainer},
		{"negative payload", -1, Depth2, 100, 1, ErrTypeInvalidContainer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Plan(tt.payload, tt.depth, tt.frameSize, tt.frames)
			ce, ok := AsCodecError(err)
			if !ok {
				t.Fatalf("Plan() error = %v, want CodecError", err)
			}
			if ce.Type != tt.wantType {
				t.Errorf("Plan() error type = %v, want %v", ce.Type, tt.wantType)
			}
		})
	}
}

func TestPlan_LastFrameFieldLimit(t *testing.T) {
	frameSize := MaxLastFrameUnits + 10
	payload := MaxLastFrameUnits - 21 // used == MaxLastFrameUnits at depth 8
	_, err := Plan(payload, Depth8, frameSize, 1)
	if !IsCapacityExceeded(err) {
		t.Errorf("Plan() error = %v, want CapacityExceeded", err)
	}
	if _, err := Plan(payload-1, Depth8, frameSize, 1); err != nil {
		t.Errorf("Plan() one byte smaller error = %v", err)
	}
}

func TestMaxPayload(t *testing.T) {
	tests := []struct {
		depth     BitDepth
		frameSize int
		frames    int
	}{
		{Depth1, 400, 3},
		{Depth2, 100, 1},
		{Depth2, 1000, 10},
		{Depth4, 333, 7},
		{Depth8, 64, 300},
	}

	for _, tt := range tests {
		max, err := MaxPayload(tt.depth, tt.frameSize, tt.frames)
		if err != nil {
			t.Fatalf("MaxPayload(%d, %d, %d) error = %v", tt.depth, tt.frameSize, tt.frames, err)
		}
		if _, err := Plan(max, tt.depth, tt.frameSize, tt.frames); err != nil {
			t.Errorf("Plan(max=%d) error = %v", max, err)
		}
		if _, err := Plan(max+1, tt.depth, tt.frameSize, tt.frames); !IsCapacityExceeded(err) {
			t.Errorf("Plan(max+1=%d) error = %v, want CapacityExceeded", max+1, err)
		}
	}
}

func TestMaxPayload_HeaderDoesNotFit(t *testing.T) {
	if _, err := MaxPayload(Depth1, 100, 5); !IsCapacityExceeded(err) {
		t.Errorf("MaxPayload() error = %v, want CapacityExceeded", err)
	}
}

func TestLayoutFrameSpan(t *testing.T) {
	layout, err := Plan(250, Depth8, 100, 5)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	// used = 271 -> 3 frames, last 71
	want := []int{100, 100, 71, 0, 0}
	for i, w := range want {
		if got := layout.FrameSpan(i); got != w {
			t.Errorf("FrameSpan(%d) = %d, want %d", i, got, w)
		}
	}
}
