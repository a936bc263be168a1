// Package auth implements the App-installation authentication chain: a
// short-lived signed assertion built from the App identifier and the user's
// RSA private key, exchanged for an opaque installation access token.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mlevkov/pagekeeper/internal/common"
)

// assertionBackdate absorbs clock skew between the client and the provider;
// assertionTTL is the provider's maximum accepted assertion lifetime.
const (
	assertionBackdate = 60 * time.Second
	assertionTTL      = 10 * time.Minute
)

// SignAppAssertion builds and signs the provider App assertion: an RS256
// JWT with iss = appID, iat = now−60s and exp = now+600s.
//
// Returns common.ErrAuth if pemKey cannot be parsed as an RSA private key.
func SignAppAssertion(appID string, pemKey []byte, now time.Time) (string, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM(pemKey)
	if err != nil {
		return "", fmt.Errorf("%w: parsing private key: %w", common.ErrAuth, err)
	}

	claims := jwt.RegisteredClaims{
		Issuer:    appID,
		IssuedAt:  jwt.NewNumericDate(now.Add(-assertionBackdate)),
		ExpiresAt: jwt.NewNumericDate(now.Add(assertionTTL)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("%w: signing assertion: %w", common.ErrAuth, err)
	}
	return signed, nil
}
