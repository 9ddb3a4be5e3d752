package core

import (
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// newTextReader wraps r so that a leading byte order mark is dropped and
// invalid UTF-8 sequences are replaced with U+FFFD. UTF-16 input with a BOM
// is decoded to UTF-8 first.
//
// Spreadsheet exports from Windows commonly carry a BOM and stray
// Windows-1252 bytes; both would otherwise leak into header names and cells.
// After a UTF-8 BOM, BOMOverride passes bytes through unrepaired, so the
// UTF-8 decoder is chained after it.
func newTextReader(r io.Reader) io.Reader {
	return transform.NewReader(r, transform.Chain(
		unicode.BOMOverride(transform.Nop),
		unicode.UTF8.NewDecoder(),
	))
}
