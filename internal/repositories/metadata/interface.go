// Package metadata persists small key/value state on the local machine:
// the encrypted private-key cache, the acknowledged-risk flag, and other
// per-user settings that must survive a restart.
package metadata

import "context"

type Repository interface {
	// Get returns the value for key, or nil when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
