package loginattempts

import (
	"context"
	"time"

	internalerrors "github.com/jrsteele09/go-auth-session-client/internal/errors"
	"github.com/rs/zerolog/log"
)

// ErrFingerprintMismatch is returned when the browser differs from the one recorded at last login.
var ErrFingerprintMismatch = internalerrors.ErrFingerprintMismatch

// Checker compares the live user agent with the fingerprint recorded at last login.
type Checker struct {
	fetcher   Fetcher
	userAgent UserAgentSource
	timeout   time.Duration
}

func NewChecker(fetcher Fetcher, userAgent UserAgentSource, timeout time.Duration) *Checker {
	return &Checker{
		fetcher:   fetcher,
		userAgent: userAgent,
		timeout:   timeout,
	}
}

// Check returns ErrFingerprintMismatch on a mismatch. The check is best-effort:
// a failed lookup is logged and passes.
func (c *Checker) Check(ctx context.Context, userNameOrEmail string) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	info, err := c.fetcher.GetUserLoginAttempt(ctx, userNameOrEmail)
	if err != nil {
		log.Warn().Err(err).Str("user", userNameOrEmail).Msg("login attempt lookup failed, skipping fingerprint check")
		return nil
	}

	if Mismatch(info, c.userAgent.UserAgent()) {
		log.Warn().
			Str("user", userNameOrEmail).
			Str("recorded", info.BrowserInfo).
			Str("current", c.userAgent.UserAgent()).
			Msg("browser fingerprint mismatch")
		return ErrFingerprintMismatch
	}
	return nil
}
