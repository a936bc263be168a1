// Package cryptox holds the cryptographic primitives used by the publisher:
// passphrase key derivation, the AES-GCM framing for the local key cache,
// and the truncated content hash used for asset deduplication.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// gcmNonceSize is the IV length prepended to every ciphertext. AES-GCM's
// standard nonce is 96 bits; Decrypt relies on this when splitting.
const gcmNonceSize = 12

// cacheKeySalt is the fixed-purpose salt for deriving the key-cache
// encryption key. It is not a secret; it only binds derived keys to this
// one purpose so the same passphrase used elsewhere yields a different key.
var cacheKeySalt = []byte("pagekeeper/key-cache/v1")

// DeriveCacheKey derives a 256-bit AES key from a user passphrase using
// Argon2id with the fixed key-cache salt.
func DeriveCacheKey(passphrase []byte) []byte {
	return argon2idKey(passphrase, cacheKeySalt)
}

// Encrypt seals plaintext with AES-256-GCM under key. A fresh random
// 12-byte IV is generated per call; the result is base64(IV‖ciphertext).
//
// The key must be 32 bytes (use DeriveCacheKey).
func Encrypt(plaintext, key []byte) (string, error) {
	nonce := make([]byte, gcmNonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	aesgcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	ciphertext := aesgcm.Seal(nil, nonce, plaintext, nil)

	return base64.StdEncoding.EncodeToString(append(nonce, ciphertext...)), nil
}

// Decrypt reverses Encrypt: it splits the first 12 bytes as the IV and opens
// the remainder with AES-256-GCM. Tampered input or a wrong key fails the
// authentication tag check and returns an error, never corrupted plaintext.
func Decrypt(encoded string, key []byte) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decoding ciphertext: %w", err)
	}
	if len(raw) < gcmNonceSize {
		return nil, fmt.Errorf("ciphertext too short: %d bytes", len(raw))
	}

	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	plaintext, err := aesgcm.Open(nil, raw[:gcmNonceSize], raw[gcmNonceSize:], nil)
	if err != nil {
		return nil, fmt.Errorf("opening ciphertext: %w", err)
	}
	return plaintext, nil
}

// LocalHash computes the client-side dedup hash of raw asset bytes: the
// first 8 bytes of SHA-256, hex-encoded (16 characters).
//
// The truncation to 64 bits is deliberate: published asset paths embed this
// value, so its length must stay stable even though a longer digest would
// shrink the birthday-collision risk.
func LocalHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
