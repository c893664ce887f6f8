package logout

import (
	"context"
	"time"

	"github.com/jrsteele09/go-auth-session-client/cookies"
	"github.com/jrsteele09/go-auth-session-client/internal/config"
	"github.com/jrsteele09/go-auth-session-client/navigation"
	"github.com/jrsteele09/go-auth-session-client/token"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// LoginStateUpdater records a user's login state on the server for auditing.
type LoginStateUpdater interface {
	UpdateLoginState(ctx context.Context, userID *int64) error
}

// Handler is the logout effect shared by the authenticator and the session manager.
type Handler struct {
	loginState LoginStateUpdater
	tokens     token.Store
	cookies    cookies.Store
	navigator  navigation.Navigator

	authCookieName string
	cookiePath     string
	appBaseURL     string
	timeout        time.Duration
}

func New(loginState LoginStateUpdater, tokens token.Store, cookieStore cookies.Store, navigator navigation.Navigator, cfg config.Config) (*Handler, error) {
	if loginState == nil {
		return nil, errors.New("[logout.New] LoginState is required")
	}
	if tokens == nil {
		return nil, errors.New("[logout.New] Tokens is required")
	}
	if cookieStore == nil {
		return nil, errors.New("[logout.New] Cookies is required")
	}
	if navigator == nil {
		return nil, errors.New("[logout.New] Navigator is required")
	}

	return &Handler{
		loginState:     loginState,
		tokens:         tokens,
		cookies:        cookieStore,
		navigator:      navigator,
		authCookieName: cfg.GetEncryptedAuthTokenCookieName(),
		cookiePath:     cfg.GetCookiePath(),
		appBaseURL:     cfg.GetAppBaseURL(),
		timeout:        cfg.GetRequestTimeout(),
	}, nil
}

// Logout records the logout on the server, then clears the token and the
// encrypted token cookie and, when reload is set, returns to the app base URL.
// The server call is best-effort: its failure is logged and never stops the rest.
func (h *Handler) Logout(ctx context.Context, userID *int64, reload bool) {
	if userID != nil {
		callCtx, cancel := context.WithTimeout(ctx, h.timeout)
		if err := h.loginState.UpdateLoginState(callCtx, userID); err != nil {
			log.Warn().Err(err).Int64("userId", *userID).Msg("update login state failed during logout")
		}
		cancel()
	}

	h.tokens.Clear()
	h.cookies.Delete(h.authCookieName, h.cookiePath)

	if reload {
		h.navigator.Redirect(h.appBaseURL)
	}
}
