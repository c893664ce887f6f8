package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jrsteele09/go-auth-session-client/cookies"
	"github.com/jrsteele09/go-auth-session-client/internal/config"
	internalerrors "github.com/jrsteele09/go-auth-session-client/internal/errors"
	"github.com/jrsteele09/go-auth-session-client/loginattempts"
	"github.com/jrsteele09/go-auth-session-client/navigation"
	"github.com/jrsteele09/go-auth-session-client/token"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// ErrNoAccessToken is returned when the server answered without an access token.
var ErrNoAccessToken = internalerrors.ErrNoAccessToken

// Deps holds the collaborators of the Authenticator
type Deps struct {
	Proxy       TokenAuthenticator   // Remote token endpoint
	LoginState  LoginStateUpdater    // Audit call after a successful login
	Fingerprint FingerprintChecker   // Browser fingerprint pre-check
	Session     SessionUser          // Current session, for logout
	Logout      Logouter             // Shared logout effect
	Tokens      token.Store          // Access token storage
	Cookies     cookies.Store        // Encrypted token cookie storage
	Navigator   navigation.Navigator // Redirects and in-app navigation
}

// Authenticator submits logins and applies their client-side effects.
type Authenticator struct {
	deps Deps

	authCookieName string
	cookiePath     string
	appBaseURL     string
	loginRoute     string
	timeout        time.Duration
	policy         loginattempts.Policy
	nowTime        func() time.Time

	lock   sync.RWMutex
	state  State
	result *Result

	background sync.WaitGroup
}

// Option defines a function type to modify the Authenticator instance.
type Option func(*Authenticator)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(a *Authenticator) {
		a.nowTime = nowFunc
	}
}

// WithFingerprintPolicy overrides the configured fingerprint ordering.
func WithFingerprintPolicy(policy loginattempts.Policy) Option {
	return func(a *Authenticator) {
		a.policy = policy
	}
}

func NewAuthenticator(deps Deps, cfg config.Config, options ...Option) (*Authenticator, error) {
	if deps.Proxy == nil {
		return nil, errors.New("[NewAuthenticator] Proxy is required")
	}
	if deps.LoginState == nil {
		return nil, errors.New("[NewAuthenticator] LoginState is required")
	}
	if deps.Fingerprint == nil {
		return nil, errors.New("[NewAuthenticator] Fingerprint is required")
	}
	if deps.Session == nil {
		return nil, errors.New("[NewAuthenticator] Session is required")
	}
	if deps.Logout == nil {
		return nil, errors.New("[NewAuthenticator] Logout is required")
	}
	if deps.Tokens == nil || deps.Cookies == nil {
		return nil, errors.New("[NewAuthenticator] Tokens and Cookies are required")
	}
	if deps.Navigator == nil {
		return nil, errors.New("[NewAuthenticator] Navigator is required")
	}

	policy, err := loginattempts.ParsePolicy(cfg.GetFingerprintPolicy())
	if err != nil {
		return nil, errors.Wrap(err, "[NewAuthenticator] fingerprint policy")
	}

	a := &Authenticator{
		deps:           deps,
		authCookieName: cfg.GetEncryptedAuthTokenCookieName(),
		cookiePath:     cfg.GetCookiePath(),
		appBaseURL:     cfg.GetAppBaseURL(),
		loginRoute:     cfg.GetLoginRoute(),
		timeout:        cfg.GetRequestTimeout(),
		policy:         policy,
		nowTime:        time.Now,
		state:          StateUnauthenticated,
	}

	for _, opt := range options {
		opt(a)
	}

	return a, nil
}

// Authenticate submits credentials and applies the outcome: on success the token
// and encrypted token cookie are written and the browser is sent to the pre-login
// URL; without an access token the browser goes to the login route.
// onComplete, when given, runs exactly once whatever the outcome.
//
// Concurrent calls are not serialised; the last response to arrive wins.
func (a *Authenticator) Authenticate(ctx context.Context, credentials Credentials, onComplete func()) error {
	if onComplete != nil {
		defer onComplete()
	}
	a.setState(StateAuthenticating)

	userName := credentials.UserNameOrEmailAddress
	switch a.policy {
	case loginattempts.PolicyBlocking:
		if err := a.deps.Fingerprint.Check(ctx, userName); err != nil {
			a.deps.Logout.Logout(ctx, a.deps.Session.UserID(), true)
			a.setState(StateUnauthenticated)
			return errors.Wrap(err, "[Authenticator.Authenticate] fingerprint check")
		}
	default:
		// Not joined with the login below: a mismatch tears the existing session
		// down while the login continues.
		a.goBackground(ctx, func(ctx context.Context) {
			if err := a.deps.Fingerprint.Check(ctx, userName); err != nil {
				a.deps.Logout.Logout(ctx, a.deps.Session.UserID(), true)
				a.reset()
			}
		})
	}

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	result, err := a.deps.Proxy.Authenticate(callCtx, credentials)
	cancel()
	if err != nil {
		a.setState(StateUnauthenticated)
		return errors.Wrap(err, "[Authenticator.Authenticate] proxy.Authenticate")
	}

	return a.processResult(ctx, result, credentials.RememberClient)
}

func (a *Authenticator) processResult(ctx context.Context, result *Result, rememberMe bool) error {
	a.lock.Lock()
	a.result = result
	a.lock.Unlock()

	if result == nil || result.AccessToken == "" {
		log.Warn().Msg("Unexpected authenticate result")
		a.setState(StateUnauthenticated)
		a.deps.Navigator.Navigate(a.loginRoute)
		return ErrNoAccessToken
	}

	a.login(result, rememberMe)
	a.setState(StateAuthenticated)

	userID := result.UserID
	a.goBackground(ctx, func(ctx context.Context) {
		if err := a.deps.LoginState.UpdateLoginState(ctx, &userID); err != nil {
			log.Warn().Err(err).Int64("userId", userID).Msg("update login state failed after login")
			return
		}
		log.Debug().Int64("userId", userID).Msg("login state updated")
	})

	a.deps.Navigator.Redirect(a.redirectTarget())
	return nil
}

// login persists the token and its cookie together, with the same expiry.
func (a *Authenticator) login(result *Result, rememberMe bool) {
	var expires *time.Time
	if rememberMe {
		exp := a.nowTime().Add(time.Duration(result.ExpireInSeconds) * time.Second)
		expires = &exp
	}

	a.deps.Tokens.Set(result.AccessToken, expires)
	a.deps.Cookies.Set(a.authCookieName, result.EncryptedAccessToken, expires, a.cookiePath)
}

// redirectTarget never returns to a login page, which would loop.
func (a *Authenticator) redirectTarget() string {
	initialURL := a.deps.Navigator.InitialURL()
	if initialURL == "" || strings.Index(initialURL, "/login") > 0 {
		return a.appBaseURL
	}
	return initialURL
}

// Logout runs the shared logout effect for the current session user.
func (a *Authenticator) Logout(ctx context.Context, reload bool) {
	a.deps.Logout.Logout(ctx, a.deps.Session.UserID(), reload)
	a.reset()
}

// Result returns the last authenticate result received, or nil.
func (a *Authenticator) Result() *Result {
	a.lock.RLock()
	defer a.lock.RUnlock()
	return a.result
}

// State reports StateUnauthenticated once the stored token is gone, whoever
// cleared it.
func (a *Authenticator) State() State {
	a.lock.RLock()
	state := a.state
	a.lock.RUnlock()

	if state == StateAuthenticated {
		if _, _, err := a.deps.Tokens.Token(); err != nil {
			return StateUnauthenticated
		}
	}
	return state
}

// Wait blocks until background calls (fingerprint checks, audit calls) finish.
func (a *Authenticator) Wait() {
	a.background.Wait()
}

func (a *Authenticator) reset() {
	a.lock.Lock()
	defer a.lock.Unlock()
	a.result = nil
	a.state = StateUnauthenticated
}

func (a *Authenticator) setState(state State) {
	a.lock.Lock()
	defer a.lock.Unlock()
	a.state = state
}

// goBackground runs fn detached from the caller's cancellation, bounded by the request timeout.
func (a *Authenticator) goBackground(ctx context.Context, fn func(context.Context)) {
	ctx = context.WithoutCancel(ctx)
	a.background.Add(1)
	go func() {
		defer a.background.Done()
		callCtx, cancel := context.WithTimeout(ctx, a.timeout)
		defer cancel()
		fn(callCtx)
	}()
}
