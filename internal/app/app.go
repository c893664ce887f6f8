package app

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-auth-session-client/apiclient"
	"github.com/jrsteele09/go-auth-session-client/auth"
	"github.com/jrsteele09/go-auth-session-client/cookies"
	"github.com/jrsteele09/go-auth-session-client/internal/config"
	"github.com/jrsteele09/go-auth-session-client/loginattempts"
	"github.com/jrsteele09/go-auth-session-client/logout"
	"github.com/jrsteele09/go-auth-session-client/navigation"
	"github.com/jrsteele09/go-auth-session-client/session"
	"github.com/jrsteele09/go-auth-session-client/token"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// App is the fully wired session client: one cookie jar, one API client and the
// components that share them.
type App struct {
	jar           *cookies.Jar
	jarFile       string
	Navigator     *navigation.Headless
	Tokens        *token.CookieStore
	API           *apiclient.Client
	Session       *session.Manager
	Authenticator *auth.Authenticator
}

type options struct {
	httpClient *http.Client
	initialURL string
}

type Option func(*options)

// WithHTTPClient replaces the HTTP client used for API calls (primarily for testing)
func WithHTTPClient(httpClient *http.Client) Option {
	return func(o *options) {
		o.httpClient = httpClient
	}
}

// WithInitialURL sets the URL the user asked for before being sent to login.
func WithInitialURL(initialURL string) Option {
	return func(o *options) {
		o.initialURL = initialURL
	}
}

func New(cfg config.Config, opts ...Option) (*App, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{
		jar:     cookies.NewJar(),
		jarFile: cfg.GetCookieJarFile(),
	}
	if a.jarFile != "" {
		if err := a.jar.Load(a.jarFile); err != nil {
			return nil, errors.Wrap(err, "[app.New] loading cookie jar")
		}
	}

	a.Navigator = navigation.NewHeadless(cfg.GetUserAgent(), o.initialURL)
	a.Tokens = token.NewCookieStore(a.jar, cfg.GetAuthTokenCookieName(), cfg.GetCookiePath())

	apiOptions := []apiclient.Option{
		apiclient.WithCookies(a.jar),
		apiclient.WithTokenSource(token.TokenSource(a.Tokens)),
		apiclient.WithUserAgent(a.Navigator),
	}
	if o.httpClient != nil {
		apiOptions = append(apiOptions, apiclient.WithHTTPClient(o.httpClient))
	}
	a.API = apiclient.New(cfg, apiOptions...)

	checker := loginattempts.NewChecker(a.API, a.Navigator, cfg.GetRequestTimeout())
	logoutHandler, err := logout.New(a.API, a.Tokens, a.jar, a.Navigator, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "[app.New] logout handler")
	}

	a.Session, err = session.NewManager(session.Deps{
		Proxy:       a.API,
		Fingerprint: checker,
		Logout:      logoutHandler,
		Cookies:     a.jar,
		Navigator:   a.Navigator,
	}, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "[app.New] session manager")
	}

	a.Authenticator, err = auth.NewAuthenticator(auth.Deps{
		Proxy:       a.API,
		LoginState:  a.API,
		Fingerprint: checker,
		Session:     a.Session,
		Logout:      logoutHandler,
		Tokens:      a.Tokens,
		Cookies:     a.jar,
		Navigator:   a.Navigator,
	}, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "[app.New] authenticator")
	}

	return a, nil
}

// Login authenticates and then hydrates the session with the new token.
func (a *App) Login(ctx context.Context, credentials auth.Credentials) (session.Info, error) {
	if err := a.Authenticator.Authenticate(ctx, credentials, nil); err != nil {
		return session.Info{}, err
	}
	ok, err := a.Session.Init(ctx)
	if err != nil {
		return session.Info{}, err
	}
	if !ok {
		return session.Info{}, errors.New("[App.Login] session was logged out after login")
	}
	return a.Session.Info(), nil
}

// Logout logs the current session user out and forgets the token. When loading
// the session already forced a logout, that logout is the only one performed.
func (a *App) Logout(ctx context.Context) {
	ok, err := a.Session.Init(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("could not load session before logout")
	}
	if err == nil && !ok {
		log.Debug().Msg("session already logged out")
		return
	}
	a.Authenticator.Logout(ctx, true)
}

// Jar returns the cookie store shared by every component.
func (a *App) Jar() *cookies.Jar {
	return a.jar
}

// Close waits for background calls and persists the cookie jar.
func (a *App) Close() error {
	a.Authenticator.Wait()
	a.Session.Wait()
	if a.jarFile == "" {
		return nil
	}
	if err := a.jar.Save(a.jarFile); err != nil {
		return errors.Wrap(err, "[App.Close] saving cookie jar")
	}
	return nil
}
