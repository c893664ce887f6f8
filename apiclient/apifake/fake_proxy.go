package apifake

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-auth-session-client/auth"
	"github.com/jrsteele09/go-auth-session-client/internal/utils"
	"github.com/jrsteele09/go-auth-session-client/loginattempts"
	"github.com/jrsteele09/go-auth-session-client/session"
)

var (
	_ auth.TokenAuthenticator = (*FakeProxy)(nil)
	_ auth.LoginStateUpdater  = (*FakeProxy)(nil)
	_ session.Fetcher         = (*FakeProxy)(nil)
	_ loginattempts.Fetcher   = (*FakeProxy)(nil)
)

// FakeProxy is an in-memory stand-in for the remote API. Configure the exported
// fields before use; calls are recorded for assertions.
type FakeProxy struct {
	AuthResult       *auth.Result
	AuthErr          error
	SessionInfo      *session.Info
	SessionErr       error
	Attempts         map[string]*loginattempts.Info
	AttemptErr       error
	LoginStateErr    error
	AttemptGate      chan struct{} // When set, GetUserLoginAttempt waits for it to close
	AuthenticateHook func(auth.Credentials)

	lock            sync.Mutex
	credentials     []auth.Credentials
	attemptLookups  []string
	loginStateCalls []int64
	sessionFetches  int
}

func NewFakeProxy() *FakeProxy {
	return &FakeProxy{
		Attempts: make(map[string]*loginattempts.Info),
	}
}

func (p *FakeProxy) Authenticate(ctx context.Context, credentials auth.Credentials) (*auth.Result, error) {
	p.lock.Lock()
	p.credentials = append(p.credentials, credentials)
	hook := p.AuthenticateHook
	p.lock.Unlock()

	if hook != nil {
		hook(credentials)
	}
	if p.AuthErr != nil {
		return nil, p.AuthErr
	}
	return p.AuthResult, nil
}

func (p *FakeProxy) GetCurrentLoginInformations(ctx context.Context) (*session.Info, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.sessionFetches++
	if p.SessionErr != nil {
		return nil, p.SessionErr
	}
	return p.SessionInfo, nil
}

func (p *FakeProxy) GetUserLoginAttempt(ctx context.Context, userNameOrEmail string) (*loginattempts.Info, error) {
	if p.AttemptGate != nil {
		select {
		case <-p.AttemptGate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	p.lock.Lock()
	defer p.lock.Unlock()
	p.attemptLookups = append(p.attemptLookups, userNameOrEmail)
	if p.AttemptErr != nil {
		return nil, p.AttemptErr
	}
	return p.Attempts[userNameOrEmail], nil
}

func (p *FakeProxy) UpdateLoginState(ctx context.Context, userID *int64) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.loginStateCalls = append(p.loginStateCalls, utils.Value(userID))
	return p.LoginStateErr
}

func (p *FakeProxy) Credentials() []auth.Credentials {
	p.lock.Lock()
	defer p.lock.Unlock()
	return append([]auth.Credentials(nil), p.credentials...)
}

func (p *FakeProxy) AttemptLookups() []string {
	p.lock.Lock()
	defer p.lock.Unlock()
	return append([]string(nil), p.attemptLookups...)
}

func (p *FakeProxy) LoginStateCalls() []int64 {
	p.lock.Lock()
	defer p.lock.Unlock()
	return append([]int64(nil), p.loginStateCalls...)
}

func (p *FakeProxy) SessionFetches() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.sessionFetches
}
