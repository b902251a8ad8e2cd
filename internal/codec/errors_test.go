package codec

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorTypeString(t *testing.T) {
	tests := []struct {
		et   ErrorType
		want string
	}{
		{ErrTypeInvalidBitDepth, "Invalid Bit Depth"},
		{ErrTypeCapacityExceeded, "Capacity Exceeded"},
		{ErrTypeMalformedStream, "Malformed Stream"},
		{ErrTypeMalformedHeader, "Malformed Header"},
		{ErrTypeChecksumMismatch, "Checksum Mismatch"},
		{ErrTypeInvalidContainer, "Invalid Container"},
		{ErrorType(99), "ErrorType(99)"},
	}

	for _, tt := range tests {
		if got := tt.et.String(); got != tt.want {
			t.Errorf("ErrorType(%d).String() = %q, want %q", tt.et, got, tt.want)
		}
	}
}

func TestCodecError_Wrapping(t *testing.T) {
	base := errors.New("short read")
	err := &CodecError{Type: ErrTypeMalformedStream, Message: "bad stream", Err: base}

	if !errors.Is(err, base) {
		t.Error("errors.Is() did not find the wrapped error")
	}
	if !strings.Contains(err.Error(), "caused by: short read") {
		t.Errorf("Error() = %q, want cause included", err.Error())
	}

	wrapped := fmt.Errorf("decode: %w", err)
	if !IsMalformed(wrapped) {
		t.Error("IsMalformed() = false for wrapped codec error")
	}
	if IsCapacityExceeded(wrapped) {
		t.Error("IsCapacityExceeded() = true for malformed stream error")
	}
}

func TestGetTroubleshootingHint(t *testing.T) {
	if hints := GetTroubleshootingHint(errors.New("plain")); hints != nil {
		t.Errorf("hints for non-codec error = %v, want nil", hints)
	}

	for _, et := range []ErrorType{
		ErrTypeInvalidBitDepth,
		ErrTypeCapacityExceeded,
		ErrTypeMalformedStream,
		ErrTypeMalformedHeader,
		ErrTypeChecksumMismatch,
		ErrTypeInvalidContainer,
	} {
		if hints := GetTroubleshootingHint(newError(et, "x")); len(hints) == 0 {
			t.Errorf("no hints for %v", et)
		}
	}
}
