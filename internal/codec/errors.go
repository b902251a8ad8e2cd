package codec

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents the category of codec failure
type ErrorType int

const (
	// ErrTypeInvalidBitDepth indicates a bit depth that does not divide 8
	ErrTypeInvalidBitDepth ErrorType = iota
	// ErrTypeCapacityExceeded indicates the payload cannot fit the container
	ErrTypeCapacityExceeded
	// ErrTypeMalformedStream indicates a spread stream that Spread could not have produced
	ErrTypeMalformedStream
	// ErrTypeMalformedHeader indicates a header that is truncated or inconsistent
	ErrTypeMalformedHeader
	// ErrTypeChecksumMismatch indicates the supplied original is not the encode-time cover
	ErrTypeChecksumMismatch
	// ErrTypeInvalidContainer indicates frames that do not form a usable container
	ErrTypeInvalidContainer
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeInvalidBitDepth:
		return "Invalid Bit Depth"
	case ErrTypeCapacityExceeded:
		return "Capacity Exceeded"
	case ErrTypeMalformedStream:
		return "Malformed Stream"
	case ErrTypeMalformedHeader:
		return "Malformed Header"
	case ErrTypeChecksumMismatch:
		return "Checksum Mismatch"
	case ErrTypeInvalidContainer:
		return "Invalid Container"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// CodecError is returned by every failing codec operation
type CodecError struct {
	Type    ErrorType // Category of error
	Message string    // Human-readable error message
	Err     error     // Underlying error (if any)

	// Expected and Actual are set for ErrTypeChecksumMismatch only
	Expected Checksum
	Actual   Checksum
}

// Error implements the error interface
func (e *CodecError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *CodecError) Unwrap() error {
	return e.Err
}

func newError(t ErrorType, format string, args ...any) *CodecError {
	return &CodecError{
		Type:    t,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewChecksumMismatchError creates a checksum mismatch error carrying both digests
func NewChecksumMismatchError(expected, actual Checksum) *CodecError {
	return &CodecError{
		Type:     ErrTypeChecksumMismatch,
		Message:  fmt.Sprintf("original cover checksum %s does not match embedded %s", actual, expected),
		Expected: expected,
		Actual:   actual,
	}
}

// AsCodecError unwraps err down to a *CodecError
func AsCodecError(err error) (*CodecError, bool) {
	var ce *CodecError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

func isType(err error, t ErrorType) bool {
	ce, ok := AsCodecError(err)
	return ok && ce.Type == t
}

// IsInvalidBitDepth checks if an error is an invalid bit depth error
func IsInvalidBitDepth(err error) bool {
	return isType(err, ErrTypeInvalidBitDepth)
}

// IsCapacityExceeded checks if an error is a capacity error
func IsCapacityExceeded(err error) bool {
	return isType(err, ErrTypeCapacityExceeded)
}

// IsMalformed checks if an error is a malformed stream or header error
func IsMalformed(err error) bool {
	return isType(err, ErrTypeMalformedStream) || isType(err, ErrTypeMalformedHeader)
}

// IsChecksumMismatch checks if an error is a checksum mismatch
func IsChecksumMismatch(err error) bool {
	return isType(err, ErrTypeChecksumMismatch)
}

// IsInvalidContainer checks if an error is an invalid container error
func IsInvalidContainer(err error) bool {
	return isType(err, ErrTypeInvalidContainer)
}

// GetTroubleshootingHint returns user-facing advice for a codec error.
// Returns nil for errors that did not come from the codec.
func GetTroubleshootingHint(err error) []string {
	ce, ok := AsCodecError(err)
	if !ok {
		return nil
	}

	switch ce.Type {
	case ErrTypeInvalidBitDepth:
		return []string{
			"Bit depth must be one of 1, 2, 4 or 8",
		}
	case ErrTypeCapacityExceeded:
		return []string{
			"Use a cover GIF with more frames or larger dimensions",
			"Increase --bit-depth to pack more bits per pixel",
			"Check limits with: gifveil capacity <cover.gif>",
		}
	case ErrTypeMalformedStream, ErrTypeMalformedHeader:
		return []string{
			"The encoded GIF may have been re-encoded or edited after embedding",
			"Verify the encoded file was produced by gifveil",
			"Verify the original GIF is the exact file used when encoding",
		}
	case ErrTypeChecksumMismatch:
		return []string{
			"The original GIF differs from the cover used when encoding",
			"Locate the exact original file (same bytes, not a re-save)",
			"Use --force only if the pixel data is known to be identical",
		}
	case ErrTypeInvalidContainer:
		return []string{
			"All frames must share the canvas dimensions",
			"Original and encoded GIFs must have the same dimensions",
		}
	default:
		return []string{strings.TrimSpace(ce.Message)}
	}
}
