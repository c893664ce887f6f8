package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

// Claims is the subset of access token claims the client reads. The token is
// parsed without verification: the server is the only party that validates it.
type Claims struct {
	Subject   string
	ExpiresAt *time.Time
}

// ParseClaims reads the subject and expiry of a JWT access token.
func ParseClaims(rawToken string) (*Claims, error) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(rawToken, &claims); err != nil {
		return nil, errors.Wrap(err, "[token.ParseClaims] ParseUnverified")
	}

	c := &Claims{Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time
		c.ExpiresAt = &exp
	}
	return c, nil
}

type storeSource struct {
	store Store
}

// TokenSource adapts a Store to oauth2.TokenSource. The expiry is the stored
// expiry when present, otherwise the token's exp claim when it is a JWT.
func TokenSource(store Store) oauth2.TokenSource {
	return storeSource{store: store}
}

func (s storeSource) Token() (*oauth2.Token, error) {
	raw, expires, err := s.store.Token()
	if err != nil {
		return nil, err
	}

	tok := &oauth2.Token{AccessToken: raw, TokenType: "Bearer"}
	switch {
	case expires != nil:
		tok.Expiry = *expires
	default:
		if claims, err := ParseClaims(raw); err == nil && claims.ExpiresAt != nil {
			tok.Expiry = *claims.ExpiresAt
		}
	}
	return tok, nil
}
