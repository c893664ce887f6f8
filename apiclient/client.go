package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-auth-session-client/auth"
	"github.com/jrsteele09/go-auth-session-client/cookies"
	"github.com/jrsteele09/go-auth-session-client/internal/config"
	"github.com/jrsteele09/go-auth-session-client/loginattempts"
	"github.com/jrsteele09/go-auth-session-client/session"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const (
	RouteAuthenticate         = "/api/TokenAuth/Authenticate"
	RouteCurrentLoginInfo     = "/api/services/app/Session/GetCurrentLoginInformations"
	RouteUserLoginAttempt     = "/api/services/app/UserLoginAttempts/GetUserLoginAttempt"
	RouteUpdateLoginState     = "/api/services/app/User/UpdateLoginState"
	requestIDHeader           = "X-Request-Id"
	maxResponseBytes    int64 = 1 << 20
)

var (
	_ auth.TokenAuthenticator = (*Client)(nil)
	_ auth.LoginStateUpdater  = (*Client)(nil)
	_ session.Fetcher         = (*Client)(nil)
	_ loginattempts.Fetcher   = (*Client)(nil)
)

// UserAgentSource provides the user agent sent with every request.
type UserAgentSource interface {
	UserAgent() string
}

// Client is the HTTP proxy for the remote authentication and session API.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	tokens       oauth2.TokenSource
	cookies      cookies.Store
	tenantCookie string
	tenantHeader string
	userAgent    UserAgentSource
	newRequestID func() string
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithTokenSource attaches the bearer token to every request that has one available.
func WithTokenSource(tokens oauth2.TokenSource) Option {
	return func(c *Client) {
		c.tokens = tokens
	}
}

// WithCookies sends the tenant cookie as the tenant header. When the store is
// also an http.CookieJar it becomes the HTTP client's jar.
func WithCookies(store cookies.Store) Option {
	return func(c *Client) {
		c.cookies = store
	}
}

func WithUserAgent(userAgent UserAgentSource) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

func WithRequestIDs(newID func() string) Option {
	return func(c *Client) {
		c.newRequestID = newID
	}
}

func New(cfg config.Config, options ...Option) *Client {
	c := &Client{
		baseURL:      cfg.GetAPIBaseURL(),
		tenantCookie: cfg.GetTenantIDCookieName(),
		tenantHeader: cfg.GetTenantIDHeader(),
		newRequestID: func() string { return uuid.New().String() },
	}

	for _, opt := range options {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if jar, ok := c.cookies.(http.CookieJar); ok && c.httpClient.Jar == nil {
		c.httpClient.Jar = jar
	}
	return c
}

// Authenticate posts credentials to the token endpoint.
func (c *Client) Authenticate(ctx context.Context, credentials auth.Credentials) (*auth.Result, error) {
	return do[*auth.Result](ctx, c, "Authenticate", http.MethodPost, RouteAuthenticate, nil, credentials)
}

// GetCurrentLoginInformations returns the application, user and tenant of the current session.
func (c *Client) GetCurrentLoginInformations(ctx context.Context) (*session.Info, error) {
	return do[*session.Info](ctx, c, "GetCurrentLoginInformations", http.MethodGet, RouteCurrentLoginInfo, nil, nil)
}

// GetUserLoginAttempt returns the last recorded login of a user, or nil.
func (c *Client) GetUserLoginAttempt(ctx context.Context, userNameOrEmail string) (*loginattempts.Info, error) {
	query := url.Values{"userNameOrEmailAddress": {userNameOrEmail}}
	return do[*loginattempts.Info](ctx, c, "GetUserLoginAttempt", http.MethodGet, RouteUserLoginAttempt, query, nil)
}

// UpdateLoginState records the user's login state for auditing.
func (c *Client) UpdateLoginState(ctx context.Context, userID *int64) error {
	query := url.Values{}
	if userID != nil {
		query.Set("userId", strconv.FormatInt(*userID, 10))
	}
	_, err := do[json.RawMessage](ctx, c, "UpdateLoginState", http.MethodPost, RouteUpdateLoginState, query, nil)
	return err
}

// envelope is the wrapper every API response is returned in.
type envelope[T any] struct {
	Result              T          `json:"result"`
	TargetURL           string     `json:"targetUrl,omitempty"`
	Success             bool       `json:"success"`
	Error               *ErrorInfo `json:"error,omitempty"`
	UnAuthorizedRequest bool       `json:"unAuthorizedRequest"`
}

func do[T any](ctx context.Context, c *Client, op, method, route string, query url.Values, body any) (T, error) {
	var zero T

	target := c.baseURL + route
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return zero, &RemoteError{Op: op, Message: "encoding request", Err: err}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return zero, &RemoteError{Op: op, Message: "building request", Err: err}
	}
	requestID := c.decorate(req, body != nil)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return zero, &RemoteError{Op: op, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return zero, &RemoteError{Op: op, StatusCode: resp.StatusCode, Message: "reading response", Err: err}
	}

	log.Debug().
		Str("op", op).
		Str("requestId", requestID).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("api call")

	var env envelope[T]
	var decodeErr error
	if len(bytes.TrimSpace(data)) > 0 {
		decodeErr = json.Unmarshal(data, &env)
	} else if resp.StatusCode/100 == 2 {
		return zero, nil
	}

	if resp.StatusCode/100 != 2 {
		return zero, newRemoteError(op, resp.StatusCode, env.Error, env.UnAuthorizedRequest)
	}
	if decodeErr != nil {
		return zero, &RemoteError{Op: op, StatusCode: resp.StatusCode, Message: "decoding response", Err: decodeErr}
	}
	if !env.Success {
		return zero, newRemoteError(op, resp.StatusCode, env.Error, env.UnAuthorizedRequest)
	}
	return env.Result, nil
}

// decorate sets the headers every request carries and returns its request id.
func (c *Client) decorate(req *http.Request, hasBody bool) string {
	requestID := c.newRequestID()
	req.Header.Set(requestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != nil {
		req.Header.Set("User-Agent", c.userAgent.UserAgent())
	}
	if c.cookies != nil {
		if tenant, ok := c.cookies.Get(c.tenantCookie); ok && tenant.Value != "" {
			req.Header.Set(c.tenantHeader, tenant.Value)
		}
	}
	if c.tokens != nil {
		tok, err := c.tokens.Token()
		switch {
		case err != nil:
			log.Debug().Err(err).Str("requestId", requestID).Msg("sending request without bearer token")
		case tok.Valid():
			tok.SetAuthHeader(req)
		}
	}
	return requestID
}

func newRemoteError(op string, status int, info *ErrorInfo, unauthorized bool) *RemoteError {
	re := &RemoteError{Op: op, StatusCode: status, UnauthorizedRequest: unauthorized}
	if info != nil {
		re.Code = info.Code
		re.Message = info.Message
		re.Details = info.Details
	}
	if re.Message == "" {
		re.Message = fmt.Sprintf("unexpected response: %s", http.StatusText(status))
	}
	return re
}
