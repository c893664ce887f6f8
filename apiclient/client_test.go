package apiclient_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/go-auth-session-client/apiclient"
	"github.com/jrsteele09/go-auth-session-client/auth"
	"github.com/jrsteele09/go-auth-session-client/cookies"
	"github.com/jrsteele09/go-auth-session-client/internal/config"
	"github.com/jrsteele09/go-auth-session-client/internal/utils"
	"github.com/jrsteele09/go-auth-session-client/navigation"
	"github.com/jrsteele09/go-auth-session-client/token"
	"github.com/stretchr/testify/require"
)

const testUserAgent = "Mozilla/5.0 (X11; Linux x86_64) Firefox/130.0"

type recordedRequest struct {
	method string
	path   string
	query  map[string][]string
	header http.Header
	body   []byte
}

// newTestServer answers every request with status and body, recording the request.
func newTestServer(t *testing.T, status int, body string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var requests []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		requests = append(requests, recordedRequest{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.Query(),
			header: r.Header.Clone(),
			body:   data,
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func newClient(srv *httptest.Server, options ...apiclient.Option) *apiclient.Client {
	options = append([]apiclient.Option{apiclient.WithBaseURL(srv.URL)}, options...)
	return apiclient.New(config.New(), options...)
}

func TestAuthenticateDecodesEnvelope(t *testing.T) {
	srv, requests := newTestServer(t, http.StatusOK, `{
		"result": {"accessToken": "tok", "encryptedAccessToken": "enc", "expireInSeconds": 86400, "userId": 42},
		"success": true,
		"error": null,
		"unAuthorizedRequest": false
	}`)

	client := newClient(srv, apiclient.WithRequestIDs(func() string { return "req-1" }))
	result, err := client.Authenticate(context.Background(), auth.Credentials{
		UserNameOrEmailAddress: "alice",
		Password:               "secret",
		RememberClient:         true,
	})
	require.NoError(t, err)
	require.Equal(t, &auth.Result{AccessToken: "tok", EncryptedAccessToken: "enc", ExpireInSeconds: 86400, UserID: 42}, result)

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	require.Equal(t, http.MethodPost, req.method)
	require.Equal(t, apiclient.RouteAuthenticate, req.path)
	require.Equal(t, "application/json", req.header.Get("Content-Type"))
	require.Equal(t, "req-1", req.header.Get("X-Request-Id"))
	require.Empty(t, req.header.Get("Authorization"))

	var sent map[string]any
	require.NoError(t, json.Unmarshal(req.body, &sent))
	require.Equal(t, map[string]any{
		"userNameOrEmailAddress": "alice",
		"password":               "secret",
		"rememberClient":         true,
	}, sent)
}

func TestErrorEnvelopeBecomesRemoteError(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusInternalServerError, `{
		"result": null,
		"success": false,
		"error": {"code": 0, "message": "Login failed!", "details": "Invalid user name or password"},
		"unAuthorizedRequest": false
	}`)

	_, err := newClient(srv).Authenticate(context.Background(), auth.Credentials{UserNameOrEmailAddress: "alice"})
	require.ErrorIs(t, err, apiclient.ErrRemote)

	var remote *apiclient.RemoteError
	require.ErrorAs(t, err, &remote)
	require.Equal(t, "Authenticate", remote.Op)
	require.Equal(t, http.StatusInternalServerError, remote.StatusCode)
	require.Equal(t, "Login failed!", remote.Message)
	require.Equal(t, "Invalid user name or password", remote.Details)
}

func TestUnsuccessfulEnvelopeWithOKStatus(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{
		"success": false,
		"error": {"message": "Current user did not login to the application!"},
		"unAuthorizedRequest": true
	}`)

	_, err := newClient(srv).GetCurrentLoginInformations(context.Background())
	var remote *apiclient.RemoteError
	require.ErrorAs(t, err, &remote)
	require.True(t, remote.UnauthorizedRequest)
	require.Equal(t, "Current user did not login to the application!", remote.Message)
}

func TestNonJSONErrorResponse(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusBadGateway, `<html>bad gateway</html>`)

	_, err := newClient(srv).GetCurrentLoginInformations(context.Background())
	var remote *apiclient.RemoteError
	require.ErrorAs(t, err, &remote)
	require.Equal(t, http.StatusBadGateway, remote.StatusCode)
	require.Contains(t, remote.Message, "Bad Gateway")
}

func TestUndecodableSuccessResponse(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `not json`)

	_, err := newClient(srv).GetCurrentLoginInformations(context.Background())
	var remote *apiclient.RemoteError
	require.ErrorAs(t, err, &remote)
	require.Equal(t, "decoding response", remote.Message)
	require.Error(t, remote.Unwrap())
}

func TestTransportError(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{}`)
	client := newClient(srv)
	srv.Close()

	err := client.UpdateLoginState(context.Background(), utils.Ptr(int64(1)))
	require.ErrorIs(t, err, apiclient.ErrRemote)
}

func TestGetCurrentLoginInformations(t *testing.T) {
	srv, requests := newTestServer(t, http.StatusOK, `{
		"result": {
			"application": {"version": "9.1.0", "releaseDate": "2026-01-02T00:00:00Z", "features": {"SignalR": true}},
			"user": {"id": 7, "name": "Alice", "surname": "Smith", "userName": "alice", "emailAddress": "alice@example.com", "securityStamp": "stamp-1"},
			"tenant": {"id": 5, "tenancyName": "acme", "name": "Acme Ltd"}
		},
		"success": true
	}`)

	jar := cookies.NewJar()
	jar.Set("Abp.TenantId", "5", nil, "/")
	tokens := token.NewCookieStore(jar, "Abp.AuthToken", "/")
	tokens.Set("bearer-value", utils.Ptr(time.Now().Add(time.Hour)))

	client := newClient(srv,
		apiclient.WithCookies(jar),
		apiclient.WithTokenSource(token.TokenSource(tokens)),
		apiclient.WithUserAgent(navigation.NewHeadless(testUserAgent, "")),
	)

	info, err := client.GetCurrentLoginInformations(context.Background())
	require.NoError(t, err)
	require.Equal(t, "9.1.0", info.Application.Version)
	require.True(t, info.Application.Features["SignalR"])
	require.Equal(t, "Alice Smith", info.User.FullName())
	require.Equal(t, "stamp-1", info.User.SecurityStamp)
	require.Equal(t, int64(5), utils.Value(info.TenantID()))

	req := (*requests)[0]
	require.Equal(t, http.MethodGet, req.method)
	require.Equal(t, "Bearer bearer-value", req.header.Get("Authorization"))
	require.Equal(t, "5", req.header.Get("Abp.TenantId"))
	require.Equal(t, testUserAgent, req.header.Get("User-Agent"))
	require.NotEmpty(t, req.header.Get("X-Request-Id"))
	require.Contains(t, req.header.Get("Cookie"), "Abp.TenantId=5")
}

func TestExpiredTokenIsNotSent(t *testing.T) {
	srv, requests := newTestServer(t, http.StatusOK, `{"result": {}, "success": true}`)

	jar := cookies.NewJar()
	tokens := token.NewCookieStore(jar, "Abp.AuthToken", "/")
	tokens.Set("stale", utils.Ptr(time.Now().Add(-time.Minute)))

	_, err := newClient(srv, apiclient.WithTokenSource(token.TokenSource(tokens))).
		GetCurrentLoginInformations(context.Background())
	require.NoError(t, err)
	require.Empty(t, (*requests)[0].header.Get("Authorization"))
}

func TestGetUserLoginAttempt(t *testing.T) {
	srv, requests := newTestServer(t, http.StatusOK, `{
		"result": {"userNameOrEmailAddress": "alice", "browserInfo": "curl/8.0", "clientIpAddress": "10.0.0.1"},
		"success": true
	}`)

	info, err := newClient(srv).GetUserLoginAttempt(context.Background(), "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, "curl/8.0", info.BrowserInfo)
	require.Equal(t, apiclient.RouteUserLoginAttempt, (*requests)[0].path)
	require.Equal(t, []string{"alice@example.com"}, (*requests)[0].query["userNameOrEmailAddress"])
}

func TestGetUserLoginAttemptWithoutRecord(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{"result": null, "success": true}`)

	info, err := newClient(srv).GetUserLoginAttempt(context.Background(), "bob")
	require.NoError(t, err)
	require.Nil(t, info)
}

func TestUpdateLoginState(t *testing.T) {
	srv, requests := newTestServer(t, http.StatusOK, ``)

	err := newClient(srv).UpdateLoginState(context.Background(), utils.Ptr(int64(42)))
	require.NoError(t, err)
	require.Equal(t, http.MethodPost, (*requests)[0].method)
	require.Equal(t, apiclient.RouteUpdateLoginState, (*requests)[0].path)
	require.Equal(t, []string{"42"}, (*requests)[0].query["userId"])
}

func TestServerCookiesAreKept(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "XSRF-TOKEN", Value: "xsrf", Path: "/", MaxAge: 3600})
		_, _ = w.Write([]byte(`{"result": {}, "success": true}`))
	}))
	t.Cleanup(srv.Close)

	jar := cookies.NewJar()
	_, err := newClient(srv, apiclient.WithCookies(jar)).GetCurrentLoginInformations(context.Background())
	require.NoError(t, err)

	c, ok := jar.Get("XSRF-TOKEN")
	require.True(t, ok)
	require.Equal(t, "xsrf", c.Value)
}

func TestCallHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newClient(srv).GetCurrentLoginInformations(ctx)
	require.ErrorIs(t, err, apiclient.ErrRemote)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
