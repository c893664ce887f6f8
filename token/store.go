package token

import (
	"time"

	"github.com/jrsteele09/go-auth-session-client/cookies"
	internalerrors "github.com/jrsteele09/go-auth-session-client/internal/errors"
)

// ErrNoToken is returned when no access token is stored.
var ErrNoToken = internalerrors.ErrNoToken

// Store holds the bearer access token used for authenticated API calls.
type Store interface {
	// Set stores the token. A nil expiry keeps it for the current session only.
	Set(accessToken string, expires *time.Time)

	// Token returns the stored token and its expiry, or ErrNoToken.
	Token() (string, *time.Time, error)

	// Clear removes the stored token
	Clear()
}

var _ Store = (*CookieStore)(nil)

// CookieStore keeps the access token in a cookie, the way the browser client does.
type CookieStore struct {
	cookies cookies.Store
	name    string
	path    string
}

func NewCookieStore(store cookies.Store, cookieName, cookiePath string) *CookieStore {
	return &CookieStore{
		cookies: store,
		name:    cookieName,
		path:    cookiePath,
	}
}

func (s *CookieStore) Set(accessToken string, expires *time.Time) {
	s.cookies.Set(s.name, accessToken, expires, s.path)
}

func (s *CookieStore) Token() (string, *time.Time, error) {
	c, ok := s.cookies.Get(s.name)
	if !ok || c.Value == "" {
		return "", nil, ErrNoToken
	}
	return c.Value, c.Expires, nil
}

func (s *CookieStore) Clear() {
	s.cookies.Delete(s.name, s.path)
}
