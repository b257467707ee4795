package csv

import "bytes"

const utf8BOM = "\uFEFF"

// stripBOM removes a leading UTF-8 byte order mark.
func stripBOM(b []byte) []byte {
	return bytes.TrimPrefix(b, []byte(utf8BOM))
}
