package utils

import (
	"bytes"
	"unicode/utf8"
)

// IsBinary reports whether the provided byte slice cannot be treated as UTF-8 text.
// Invalid UTF-8 sequences and NUL bytes both mark the data as binary.
func IsBinary(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	if !utf8.Valid(data) {
		return true
	}
	return bytes.IndexByte(data, 0) >= 0
}
