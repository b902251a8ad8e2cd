package codec

// Integrity is the outcome of comparing the embedded cover checksum with
// the checksum of the supplied original.
type Integrity int

const (
	IntegrityMatch Integrity = iota
	IntegrityMismatch
)

// String returns a human-readable name for the outcome
func (i Integrity) String() string {
	if i == IntegrityMatch {
		return "match"
	}
	return "mismatch"
}

// MismatchFunc decides whether extraction proceeds after a checksum
// mismatch. Returning true proceeds.
type MismatchFunc func(err *CodecError) bool

// Verify compares the checksum embedded at encode time with the checksum
// of the original cover supplied at decode time.
func Verify(expected, actual Checksum) Integrity {
	if expected == actual {
		return IntegrityMatch
	}
	return IntegrityMismatch
}

// Gate runs Verify and turns a mismatch into a ChecksumMismatch error unless
// force is set or decide approves it. The returned Integrity reflects the
// comparison even when the mismatch was overridden.
func Gate(expected, actual Checksum, force bool, decide MismatchFunc) (Integrity, error) {
	result := Verify(expected, actual)
	if result == IntegrityMatch || force {
		return result, nil
	}

	err := NewChecksumMismatchError(expected, actual)
	if decide != nil && decide(err) {
		return result, nil
	}
	return result, err
}
