package session

import (
	"context"
	"time"

	"github.com/jrsteele09/go-auth-session-client/tenants"
	"github.com/jrsteele09/go-auth-session-client/users"
)

// ApplicationInfo describes the server application the session belongs to.
type ApplicationInfo struct {
	Version     string          `json:"version,omitempty"`
	ReleaseDate *time.Time      `json:"releaseDate,omitempty"`
	Features    map[string]bool `json:"features,omitempty"`
}

// Info is the hydrated session context. A non-nil User implies a non-nil Application.
type Info struct {
	Application *ApplicationInfo   `json:"application"`
	User        *users.LoginInfo   `json:"user"`
	Tenant      *tenants.LoginInfo `json:"tenant"` // At most one tenant is active
}

func (i Info) UserID() *int64 {
	if i.User == nil {
		return nil
	}
	id := i.User.ID
	return &id
}

func (i Info) TenantID() *int64 {
	if i.Tenant == nil {
		return nil
	}
	id := i.Tenant.ID
	return &id
}

// Fetcher fetches the current login information from the server.
type Fetcher interface {
	GetCurrentLoginInformations(ctx context.Context) (*Info, error)
}

// FingerprintChecker compares the live browser with the one recorded at last login.
type FingerprintChecker interface {
	Check(ctx context.Context, userNameOrEmail string) error
}

// Logouter is the shared logout effect.
type Logouter interface {
	Logout(ctx context.Context, userID *int64, reload bool)
}
