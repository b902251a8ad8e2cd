// Package codec hides an opaque byte payload in the palette indices of an
// animated image and recovers it again.
//
// The codec never touches container bytes. It works on frames that an image
// collaborator has already flattened into one sample per pixel, and on a
// 16-byte checksum of the original cover file supplied by the caller.
//
// # Embedded Layout
//
// The payload is prefixed with a 20-byte header and spread into low
// bit-depth units, one unit per pixel sample:
//
//	unit 0                    bit depth marker (1, 2, 4 or 8)
//	units [1, 1+ratio*20)     spread header
//	                            frame_count        1 byte
//	                            last_frame_length  3 bytes, little-endian
//	                            cover checksum     16 bytes
//	remaining units           spread payload
//
// where ratio = 8 / bit depth. Each source byte becomes ratio units, least
// significant chunk first.
//
// # Embedding
//
// The header region of frame 0 is written directly so it can be read before
// the caller has located the original cover. Every other used sample is the
// XOR of the spread unit and the original sample. Frames past the last used
// frame are copied unchanged.
//
//	layout, err := codec.Plan(len(payload), codec.Depth2, frameSize, len(frames))
//	res, err := codec.Embed(cover, payload, codec.EmbedOptions{Depth: codec.Depth2})
//
// # Extraction
//
// Extraction reads the header region directly, checks the embedded cover
// checksum against the supplied original, then XORs the modified frames
// against the original frames:
//
//	ex, err := codec.Extract(original, modified, codec.ExtractOptions{})
//	if codec.IsChecksumMismatch(err) {
//	    // ask the user, then retry with Force: true
//	}
//
// # Thread Safety
//
// All functions are stateless. Embed and Extract fan frames out to a bounded
// set of goroutines; input frames are never mutated.
package codec
