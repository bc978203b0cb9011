// Package shared holds helpers for handling secrets in memory.
package shared

// WipeByteArray overwrites the contents of b with zeros. The CLI reads
// passwords into byte slices and wipes them once the request is sent.
//
// If the slice is nil, the function does nothing.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// WithSecret passes b to fn as a string and wipes b afterwards.
func WithSecret(b []byte, fn func(string) error) error {
	defer WipeByteArray(b)
	return fn(string(b))
}
