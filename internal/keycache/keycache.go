// Package keycache implements the opt-in encrypted cache of the user's RSA
// private key, so re-authentication survives a restart without re-importing
// the key file.
//
// The cache stores a credential capable of writing to the content
// repository, so it is never written unless the user has explicitly
// acknowledged that risk first.
package keycache

import (
	"context"
	"fmt"

	"github.com/mlevkov/pagekeeper/internal/common"
	"github.com/mlevkov/pagekeeper/internal/cryptox"
	"github.com/mlevkov/pagekeeper/internal/repositories/metadata"
)

const (
	keyEncryptedPEM = "encrypted_private_key"
	keyRiskAck      = "key_cache_risk_ack"
)

type KeyCache struct {
	repo metadata.Repository
}

func New(repo metadata.Repository) *KeyCache {
	return &KeyCache{repo: repo}
}

// Acknowledged reports whether the user has opted in to key caching.
func (k *KeyCache) Acknowledged(ctx context.Context) (bool, error) {
	v, err := k.repo.Get(ctx, keyRiskAck)
	if err != nil {
		return false, err
	}
	return string(v) == "1", nil
}

// Acknowledge records the explicit opt-in.
func (k *KeyCache) Acknowledge(ctx context.Context) error {
	return k.repo.Set(ctx, keyRiskAck, []byte("1"))
}

// Store encrypts pemKey under a key derived from passphrase and persists
// the result. Fails with common.ErrValidation unless the risk has been
// acknowledged.
func (k *KeyCache) Store(ctx context.Context, pemKey, passphrase []byte) error {
	ok, err := k.Acknowledged(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: key caching requires explicit opt-in", common.ErrValidation)
	}

	cacheKey := cryptox.DeriveCacheKey(passphrase)
	defer common.WipeByteArray(cacheKey)

	encrypted, err := cryptox.Encrypt(pemKey, cacheKey)
	if err != nil {
		return fmt.Errorf("encrypting private key: %w", err)
	}

	return k.repo.Set(ctx, keyEncryptedPEM, []byte(encrypted))
}

// Load decrypts and returns the cached private key. Returns
// common.ErrLocalDataNotAvailable when nothing is cached; a wrong
// passphrase or tampered ciphertext fails the GCM tag check and surfaces
// as common.ErrAuth.
func (k *KeyCache) Load(ctx context.Context, passphrase []byte) ([]byte, error) {
	encrypted, err := k.repo.Get(ctx, keyEncryptedPEM)
	if err != nil {
		return nil, err
	}
	if encrypted == nil {
		return nil, common.ErrLocalDataNotAvailable
	}

	cacheKey := cryptox.DeriveCacheKey(passphrase)
	defer common.WipeByteArray(cacheKey)

	pemKey, err := cryptox.Decrypt(string(encrypted), cacheKey)
	if err != nil {
		return nil, fmt.Errorf("%w: decrypting cached key: %w", common.ErrAuth, err)
	}
	return pemKey, nil
}

// Clear removes the cached key and the opt-in flag.
func (k *KeyCache) Clear(ctx context.Context) error {
	if err := k.repo.Delete(ctx, keyEncryptedPEM); err != nil {
		return err
	}
	return k.repo.Delete(ctx, keyRiskAck)
}
