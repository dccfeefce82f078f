package storage

import (
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NewTextReader wraps r so that raw exports decode cleanly:
//
//   - a leading UTF-8 byte order mark (added by Windows tools) is dropped
//   - invalid UTF-8 sequences become U+FFFD
//   - text is normalized to NFC, so composed and decomposed accents compare
//     equal during de-duplication
//
// Decoding streams through fixed buffers.
func NewTextReader(r io.Reader) io.Reader {
	return transform.NewReader(r, transform.Chain(unicode.UTF8BOM.NewDecoder(), norm.NFC))
}
