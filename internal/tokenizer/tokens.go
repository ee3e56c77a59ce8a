// Package tokenizer splits a single line of delimited text into fields.
package tokenizer

import "unicode"

// Comma is the only field delimiter understood by the tokenizer.
//
// Quote characters carry no meaning: a comma between double quotes still
// separates two fields.
const Comma = ','

// byteOrderMark is trimmed along with ordinary white space so that a UTF-8 BOM
// at the start of a file never leaks into the first field.
const byteOrderMark = '\uFEFF'

// IsSpace reports whether r is trimmed from the edges of a field.
func IsSpace(r rune) bool {
	return unicode.IsSpace(r) || r == byteOrderMark
}
