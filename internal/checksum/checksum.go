// Package checksum computes the cover file digest embedded in every
// encoded GIF header.
//
// The digest is MD5 over the complete file bytes. It identifies the cover,
// it does not authenticate it: the payload envelope carries its own
// authentication.
package checksum

import (
	"crypto/md5"
	"fmt"
	"io"
	"os"

	"github.com/gifveil/gifveil/internal/codec"
)

// Sum returns the digest of data
func Sum(data []byte) codec.Checksum {
	return codec.Checksum(md5.Sum(data))
}

// File returns the digest of the file at path
func File(path string) (codec.Checksum, error) {
	f, err := os.Open(path)
	if err != nil {
		return codec.Checksum{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return Reader(f)
}

// Reader returns the digest of everything read from r
func Reader(r io.Reader) (codec.Checksum, error) {
	h := md5.New()
	if _, err := io.Copy(h, r); err != nil {
		return codec.Checksum{}, fmt.Errorf("failed to hash: %w", err)
	}

	var sum codec.Checksum
	copy(sum[:], h.Sum(nil))
	return sum, nil
}
