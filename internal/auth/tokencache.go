package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/mlevkov/pagekeeper/internal/common"
	"github.com/mlevkov/pagekeeper/internal/githost"
)

// TokenCache holds the session-scoped installation access token. The first
// Get after a credential is set runs the full sign → installation lookup →
// token exchange chain and caches the result; later calls return the
// cached value.
//
// There is deliberately no freshness pre-flight and no automatic
// re-authentication: a token that expired mid-session surfaces as an
// auth-class failure on whatever provider call hits it, and the user must
// log in and re-trigger the action. The cache is used from the single
// publishing goroutine; two near-simultaneous first calls would both run
// the chain, which is wasteful but yields two individually valid tokens.
type TokenCache struct {
	client githost.Client
	now    func() time.Time

	appID  string
	pemKey []byte
	token  string
}

func NewTokenCache(client githost.Client) *TokenCache {
	return &TokenCache{client: client, now: time.Now}
}

// SetCredential installs the App credential supplied by the user. Any
// previously cached token is dropped.
func (c *TokenCache) SetCredential(appID string, pemKey []byte) {
	c.appID = appID
	c.pemKey = append([]byte(nil), pemKey...)
	c.token = ""
}

// Get returns the cached installation token, running the authentication
// chain first if the session has none yet.
func (c *TokenCache) Get(ctx context.Context) (string, error) {
	if c.token != "" {
		return c.token, nil
	}
	if c.pemKey == nil {
		return "", fmt.Errorf("%w: no credential in session", common.ErrAuth)
	}

	assertion, err := SignAppAssertion(c.appID, c.pemKey, c.now())
	if err != nil {
		return "", err
	}

	id, err := c.client.GetInstallationID(ctx, assertion)
	if err != nil {
		return "", err
	}

	token, err := c.client.CreateInstallationToken(ctx, assertion, id)
	if err != nil {
		return "", err
	}

	c.token = token
	return token, nil
}

// Clear drops the cached token but keeps the credential; the next Get
// re-runs the chain.
func (c *TokenCache) Clear() {
	c.token = ""
}

// Reset wipes both the token and the credential. Invoked on logout.
func (c *TokenCache) Reset() {
	c.token = ""
	common.WipeByteArray(c.pemKey)
	c.pemKey = nil
	c.appID = ""
}
