package codec

import (
	"bytes"
	"math/rand"
	"testing"
)

func TestSpread_Layout(t *testing.T) {
	tests := []struct {
		name  string
		src   []byte
		depth BitDepth
		want  []byte
	}{
		{
			name:  "depth 2 splits LSB first",
			src:   []byte{0xAB, 0xCD},
			depth: Depth2,
			want:  []byte{2, 3, 2, 2, 2, 1, 3, 0, 3},
		},
		{
			name:  "depth 4 nibbles",
			src:   []byte{0x5A},
			depth: Depth4,
			want:  []byte{4, 0xA, 0x5},
		},
		{
			name:  "depth 8 is identity after marker",
			src:   []byte{0x00, 0xFF, 0x7F},
			depth: Depth8,
			want:  []byte{8, 0x00, 0xFF, 0x7F},
		},
		{
			name:  "depth 1 bits",
			src:   []byte{0x81},
			depth: Depth1,
			want:  []byte{1, 1, 0, 0, 0, 0, 0, 0, 1},
		},
		{
			name:  "empty input is marker only",
			src:   nil,
			depth: Depth2,
			want:  []byte{2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Spread(tt.src, tt.depth)
			if err != nil {
				t.Fatalf("Spread() error = %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Spread() = %v, want %v", got, tt.want)
			}
			if len(got) != SpreadLen(len(tt.src), tt.depth) {
				t.Errorf("len = %d, want SpreadLen %d", len(got), SpreadLen(len(tt.src), tt.depth))
			}
		})
	}
}

func TestSpread_InvalidDepth(t *testing.T) {
	for _, d := range []BitDepth{0, 3, 5, 6, 7, 9, 16} {
		_, err := Spread([]byte{1}, d)
		if !IsInvalidBitDepth(err) {
			t.Errorf("Spread(depth=%d) error = %v, want InvalidBitDepth", d, err)
		}
	}
}

func TestSpreadCompact_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	inputs := [][]byte{
		{},
		{0x00},
		{0xFF},
		[]byte("the quick brown fox"),
	}
	random := make([]byte, 4096)
	rng.Read(random)
	inputs = append(inputs, random)

	all := make([]byte, 256)
	for i := range all {
		all[i] = byte(i)
	}
	inputs = append(inputs, all)

	for _, depth := range []BitDepth{Depth1, Depth2, Depth4, Depth8} {
		for _, in := range inputs {
			stream, err := Spread(in, depth)
			if err != nil {
				t.Fatalf("Spread(depth=%d) error = %v", depth, err)
			}
			for i, unit := range stream[1:] {
				if int(unit) >= 1<<depth {
					t.Fatalf("depth %d: unit %d = %d exceeds %d bits", depth, i+1, unit, depth)
				}
			}
			out, err := Compact(stream)
			if err != nil {
				t.Fatalf("Compact(depth=%d) error = %v", depth, err)
			}
			if !bytes.Equal(out, in) {
				t.Errorf("depth %d: round trip of %d bytes changed data", depth, len(in))
			}
		}
	}
}

func TestCompact_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		stream []byte
	}{
		{"empty", nil},
		{"invalid marker", []byte{3, 0, 0, 0}},
		{"zero marker", []byte{0}},
		{"length not aligned", []byte{2, 1, 1, 1}},
		{"unit out of range", []byte{2, 0, 0, 4, 0}},
		{"depth 1 unit out of range", []byte{1, 0, 0, 0, 0, 0, 0, 0, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Compact(tt.stream)
			if err == nil {
				t.Fatalf("Compact() = %v, want error", out)
			}
			if out != nil {
				t.Errorf("Compact() returned data alongside error: %v", out)
			}
			ce, ok := AsCodecError(err)
			if !ok || ce.Type != ErrTypeMalformedStream {
				t.Errorf("Compact() error = %v, want MalformedStream", err)
			}
		})
	}
}

func TestParseBitDepth(t *testing.T) {
	for _, v := range []int{1, 2, 4, 8} {
		d, err := ParseBitDepth(v)
		if err != nil {
			t.Errorf("ParseBitDepth(%d) error = %v", v, err)
		}
		if int(d) != v {
			t.Errorf("ParseBitDepth(%d) = %d", v, d)
		}
	}
	for _, v := range []int{-1, 0, 3, 6, 9, 256, 258} {
		if _, err := ParseBitDepth(v); !IsInvalidBitDepth(err) {
			t.Errorf("ParseBitDepth(%d) error = %v, want InvalidBitDepth", v, err)
		}
	}
}
