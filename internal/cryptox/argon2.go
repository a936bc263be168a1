package cryptox

import "golang.org/x/crypto/argon2"

// argon2idKey derives a 32-byte key. Parameters (1 pass, 64 MiB, 4 lanes)
// follow the library's recommended interactive profile.
func argon2idKey(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}
