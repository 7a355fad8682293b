package netutil

import "encoding/base64"

// Base64Encode returns the standard, padded base64 encoding of b.
func Base64Encode(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}
