package services

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mlevkov/pagekeeper/internal/auth"
	"github.com/mlevkov/pagekeeper/internal/common"
	"github.com/mlevkov/pagekeeper/internal/githost"
	"github.com/mlevkov/pagekeeper/internal/keycache"
	"github.com/mlevkov/pagekeeper/internal/logging"
)

// AuthService manages the session credential and token lifecycle.
//
// Contract:
//   - LoginWithKey / LoginWithKeyFile: install the App credential and run
//     the sign → exchange chain once, eagerly, so a bad key fails at login
//     rather than mid-publish.
//   - LoginFromCache: restore the private key from the encrypted local
//     cache using a passphrase, then log in.
//   - CacheKey: opt-in persistence of the key (requires a prior
//     AcknowledgeRisk in the same or an earlier session).
//   - Logout: drop the token and credential; optionally wipe the cache.
type AuthService interface {
	LoginWithKey(ctx context.Context, pemKey []byte) error
	LoginWithKeyFile(ctx context.Context, path string) error
	LoginFromCache(ctx context.Context, passphrase []byte) error
	CacheKey(ctx context.Context, passphrase []byte) error
	AcknowledgeRisk(ctx context.Context) error
	RiskAcknowledged(ctx context.Context) (bool, error)
	Logout(ctx context.Context, wipeCache bool) error
}

type authService struct {
	appID  string
	client githost.Client
	tokens *auth.TokenCache
	keys   *keycache.KeyCache
	log    logging.Logger

	// retained for an optional CacheKey call after login; wiped on logout
	pemKey []byte
}

func NewAuthService(appID string, client githost.Client, tokens *auth.TokenCache, keys *keycache.KeyCache, log logging.Logger) AuthService {
	return &authService{appID: appID, client: client, tokens: tokens, keys: keys, log: log}
}

func (a *authService) LoginWithKey(ctx context.Context, pemKey []byte) error {
	// validate the key shape before touching the network
	if _, err := auth.SignAppAssertion(a.appID, pemKey, time.Now()); err != nil {
		return err
	}

	a.tokens.SetCredential(a.appID, pemKey)
	token, err := a.tokens.Get(ctx)
	if err != nil {
		a.tokens.Reset()
		return err
	}
	a.client.SetToken(token)

	a.pemKey = append([]byte(nil), pemKey...)
	a.log.Info(ctx, "logged in", "app_id", a.appID)
	return nil
}

func (a *authService) LoginWithKeyFile(ctx context.Context, path string) error {
	pemKey, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: reading key file: %w", common.ErrValidation, err)
	}
	defer common.WipeByteArray(pemKey)
	return a.LoginWithKey(ctx, pemKey)
}

func (a *authService) LoginFromCache(ctx context.Context, passphrase []byte) error {
	pemKey, err := a.keys.Load(ctx, passphrase)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pemKey)
	return a.LoginWithKey(ctx, pemKey)
}

func (a *authService) CacheKey(ctx context.Context, passphrase []byte) error {
	if a.pemKey == nil {
		return fmt.Errorf("%w: no key in session, log in first", common.ErrValidation)
	}
	return a.keys.Store(ctx, a.pemKey, passphrase)
}

func (a *authService) AcknowledgeRisk(ctx context.Context) error {
	return a.keys.Acknowledge(ctx)
}

func (a *authService) RiskAcknowledged(ctx context.Context) (bool, error) {
	return a.keys.Acknowledged(ctx)
}

func (a *authService) Logout(ctx context.Context, wipeCache bool) error {
	a.tokens.Reset()
	a.client.SetToken("")
	common.WipeByteArray(a.pemKey)
	a.pemKey = nil

	if wipeCache {
		if err := a.keys.Clear(ctx); err != nil {
			return err
		}
	}
	a.log.Info(ctx, "logged out", "cache_wiped", wipeCache)
	return nil
}
