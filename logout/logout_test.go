package logout_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jrsteele09/go-auth-session-client/cookies/cookiefake"
	"github.com/jrsteele09/go-auth-session-client/internal/config"
	"github.com/jrsteele09/go-auth-session-client/internal/utils"
	"github.com/jrsteele09/go-auth-session-client/logout"
	"github.com/jrsteele09/go-auth-session-client/navigation"
	"github.com/jrsteele09/go-auth-session-client/token/tokenfake"
	"github.com/stretchr/testify/require"
)

type fakeLoginState struct {
	err   error
	calls []int64
}

func (f *fakeLoginState) UpdateLoginState(ctx context.Context, userID *int64) error {
	f.calls = append(f.calls, utils.Value(userID))
	return f.err
}

type fixture struct {
	loginState *fakeLoginState
	tokens     *tokenfake.FakeTokenStore
	cookies    *cookiefake.Recorder
	nav        *navigation.Headless
	cfg        config.Config
	handler    *logout.Handler
}

func setup(t *testing.T, auditErr error) *fixture {
	t.Helper()
	t.Setenv("APP_BASE_URL", "http://app.example.com/")

	f := &fixture{
		loginState: &fakeLoginState{err: auditErr},
		tokens:     tokenfake.NewFakeTokenStore(),
		cookies:    cookiefake.NewRecorder(),
		nav:        navigation.NewHeadless("agent", "http://app.example.com/home"),
		cfg:        config.New(),
	}
	handler, err := logout.New(f.loginState, f.tokens, f.cookies, f.nav, f.cfg)
	require.NoError(t, err)
	f.handler = handler

	exp := time.Now().Add(time.Hour)
	f.tokens.Set("tok", &exp)
	f.cookies.Set(f.cfg.GetEncryptedAuthTokenCookieName(), "enc", &exp, "/")
	return f
}

func TestLogout(t *testing.T) {
	for _, auditErr := range []error{nil, errors.New("audit down")} {
		f := setup(t, auditErr)

		f.handler.Logout(context.Background(), utils.Ptr(int64(7)), true)

		require.Equal(t, []int64{7}, f.loginState.calls)
		require.Equal(t, 1, f.tokens.Clears())
		require.Equal(t, 1, f.cookies.Deletes(f.cfg.GetEncryptedAuthTokenCookieName()))
		_, ok := f.cookies.Get(f.cfg.GetEncryptedAuthTokenCookieName())
		require.False(t, ok)
		require.Equal(t, []string{"http://app.example.com/"}, f.nav.History())
	}
}

func TestLogoutWithoutReload(t *testing.T) {
	f := setup(t, nil)

	f.handler.Logout(context.Background(), utils.Ptr(int64(7)), false)

	require.Equal(t, 1, f.tokens.Clears())
	require.Empty(t, f.nav.History())
}

func TestLogoutWithoutUserSkipsAudit(t *testing.T) {
	f := setup(t, nil)

	f.handler.Logout(context.Background(), nil, true)

	require.Empty(t, f.loginState.calls)
	require.Equal(t, 1, f.tokens.Clears())
	require.Equal(t, 1, f.cookies.Deletes(f.cfg.GetEncryptedAuthTokenCookieName()))
}

func TestNewRequiresCollaborators(t *testing.T) {
	cfg := config.New()
	loginState := &fakeLoginState{}
	tokens := tokenfake.NewFakeTokenStore()
	cookies := cookiefake.NewRecorder()
	nav := navigation.NewHeadless("agent", "")

	tests := []struct {
		name    string
		build   func() (*logout.Handler, error)
		wantErr string
	}{
		{"login state", func() (*logout.Handler, error) { return logout.New(nil, tokens, cookies, nav, cfg) }, "LoginState is required"},
		{"tokens", func() (*logout.Handler, error) { return logout.New(loginState, nil, cookies, nav, cfg) }, "Tokens is required"},
		{"cookies", func() (*logout.Handler, error) { return logout.New(loginState, tokens, nil, nav, cfg) }, "Cookies is required"},
		{"navigator", func() (*logout.Handler, error) { return logout.New(loginState, tokens, cookies, nil, cfg) }, "Navigator is required"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			handler, err := tc.build()
			require.ErrorContains(t, err, tc.wantErr)
			require.Nil(t, handler)
		})
	}
}
