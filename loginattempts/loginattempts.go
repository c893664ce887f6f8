package loginattempts

import (
	"context"
	"time"
)

// Info is the server's record of a user's last successful login.
type Info struct {
	UserNameOrEmailAddress string     `json:"userNameOrEmailAddress,omitempty"`
	BrowserInfo            string     `json:"browserInfo,omitempty"` // User agent of the recorded login
	ClientIPAddress        string     `json:"clientIpAddress,omitempty"`
	ClientName             string     `json:"clientName,omitempty"`
	Result                 int        `json:"result,omitempty"`
	CreationTime           *time.Time `json:"creationTime,omitempty"`
}

// Fetcher looks up the last login attempt of a user. A nil Info means no record.
type Fetcher interface {
	GetUserLoginAttempt(ctx context.Context, userNameOrEmail string) (*Info, error)
}

// UserAgentSource provides the live browser user agent.
type UserAgentSource interface {
	UserAgent() string
}

// Mismatch reports whether a recorded fingerprint exists and differs from userAgent.
func Mismatch(info *Info, userAgent string) bool {
	return info != nil && info.BrowserInfo != "" && info.BrowserInfo != userAgent
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, userNameOrEmail string) (*Info, error)

func (f FetcherFunc) GetUserLoginAttempt(ctx context.Context, userNameOrEmail string) (*Info, error) {
	return f(ctx, userNameOrEmail)
}
