package auth

import "context"

// Credentials is a single login form submission.
type Credentials struct {
	UserNameOrEmailAddress string `json:"userNameOrEmailAddress"`
	Password               string `json:"password"`
	RememberClient         bool   `json:"rememberClient"` // Keep the token beyond the current session
}

// Result is the remote authenticator's answer. A missing AccessToken means the login failed.
type Result struct {
	AccessToken          string `json:"accessToken,omitempty"`
	EncryptedAccessToken string `json:"encryptedAccessToken,omitempty"` // Cookie transport form of AccessToken
	ExpireInSeconds      int    `json:"expireInSeconds,omitempty"`
	UserID               int64  `json:"userId,omitempty"`
}

// State tracks where the authenticator is in the login flow.
type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticating
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	}
	return "unauthenticated"
}

// TokenAuthenticator submits credentials to the remote token endpoint.
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, credentials Credentials) (*Result, error)
}

// LoginStateUpdater records a user's login state on the server for auditing.
type LoginStateUpdater interface {
	UpdateLoginState(ctx context.Context, userID *int64) error
}

// FingerprintChecker compares the live browser with the one recorded at last login.
type FingerprintChecker interface {
	Check(ctx context.Context, userNameOrEmail string) error
}

// SessionUser exposes the id of the user of the current session, if any.
type SessionUser interface {
	UserID() *int64
}

// Logouter is the shared logout effect.
type Logouter interface {
	Logout(ctx context.Context, userID *int64, reload bool)
}
