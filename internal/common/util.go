package common

// WipeByteArray overwrites the contents of the provided byte slice with
// zeros. Used to remove private-key material and passphrases from memory
// after use.
//
// If the slice is nil, the function does nothing.
func WipeByteArray(b []byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
}
