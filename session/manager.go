package session

import (
	"context"
	"sync"
	"time"

	"github.com/jrsteele09/go-auth-session-client/cookies"
	"github.com/jrsteele09/go-auth-session-client/internal/config"
	internalerrors "github.com/jrsteele09/go-auth-session-client/internal/errors"
	"github.com/jrsteele09/go-auth-session-client/internal/utils"
	"github.com/jrsteele09/go-auth-session-client/loginattempts"
	"github.com/jrsteele09/go-auth-session-client/navigation"
	"github.com/jrsteele09/go-auth-session-client/tenants"
	"github.com/jrsteele09/go-auth-session-client/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// Deps holds the collaborators of the Manager
type Deps struct {
	Proxy       Fetcher              // Remote session endpoint
	Fingerprint FingerprintChecker   // Browser fingerprint check
	Logout      Logouter             // Shared logout effect
	Cookies     cookies.Store        // Security stamp and tenant cookies
	Navigator   navigation.Navigator // Page reloads on tenant switch
}

// Manager owns the hydrated session context and exposes it read-only.
type Manager struct {
	deps Deps

	stampCookieName  string
	stampLifetime    time.Duration
	tenantCookieName string
	tenantLifetime   time.Duration
	cookiePath       string
	multiTenancy     bool
	timeout          time.Duration
	policy           loginattempts.Policy
	nowTime          func() time.Time

	lock sync.RWMutex
	info Info

	subscriberLock sync.Mutex
	subscribers    map[int]func(Info)
	nextSubscriber int

	background sync.WaitGroup
}

// Option defines a function type to modify the Manager instance.
type Option func(*Manager)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(m *Manager) {
		m.nowTime = nowFunc
	}
}

// WithFingerprintPolicy overrides the configured fingerprint ordering.
func WithFingerprintPolicy(policy loginattempts.Policy) Option {
	return func(m *Manager) {
		m.policy = policy
	}
}

func NewManager(deps Deps, cfg config.Config, options ...Option) (*Manager, error) {
	if deps.Proxy == nil {
		return nil, errors.New("[NewManager] Proxy is required")
	}
	if deps.Fingerprint == nil {
		return nil, errors.New("[NewManager] Fingerprint is required")
	}
	if deps.Logout == nil {
		return nil, errors.New("[NewManager] Logout is required")
	}
	if deps.Cookies == nil {
		return nil, errors.New("[NewManager] Cookies is required")
	}
	if deps.Navigator == nil {
		return nil, errors.New("[NewManager] Navigator is required")
	}

	policy, err := loginattempts.ParsePolicy(cfg.GetFingerprintPolicy())
	if err != nil {
		return nil, errors.Wrap(err, "[NewManager] fingerprint policy")
	}

	m := &Manager{
		deps:             deps,
		stampCookieName:  cfg.GetSecurityStampCookieName(),
		stampLifetime:    cfg.GetSecurityStampLifetime(),
		tenantCookieName: cfg.GetTenantIDCookieName(),
		tenantLifetime:   cfg.GetTenantCookieLifetime(),
		cookiePath:       cfg.GetCookiePath(),
		multiTenancy:     cfg.IsMultiTenancyEnabled(),
		timeout:          cfg.GetRequestTimeout(),
		policy:           policy,
		nowTime:          time.Now,
		subscribers:      make(map[int]func(Info)),
	}

	for _, opt := range options {
		opt(m)
	}

	return m, nil
}

// Init hydrates the session from the server and checks it against the cached
// security stamp and the browser fingerprint. It returns false, without error,
// when an integrity check forced a logout; the caller must then ask for a new login.
// Remote failures are returned as errors.
func (m *Manager) Init(ctx context.Context) (bool, error) {
	callCtx, cancel := context.WithTimeout(ctx, m.timeout)
	info, err := m.deps.Proxy.GetCurrentLoginInformations(callCtx)
	cancel()
	if err != nil {
		return false, errors.Wrap(err, "[Manager.Init] GetCurrentLoginInformations")
	}
	if info == nil {
		return false, errors.Wrap(internalerrors.ErrInvalidResponse, "[Manager.Init] empty login information")
	}
	if info.User != nil && info.Application == nil {
		return false, errors.Wrap(internalerrors.ErrInvalidResponse, "[Manager.Init] user without application")
	}

	m.lock.Lock()
	m.info = Info{Application: info.Application, User: info.User, Tenant: info.Tenant}
	snapshot := m.info
	m.lock.Unlock()
	m.notify(snapshot)

	user := snapshot.User
	if user == nil {
		return true, nil
	}

	if stamp, ok := m.deps.Cookies.Get(m.stampCookieName); ok && stamp.Value != "" && stamp.Value != user.SecurityStamp {
		log.Warn().Err(internalerrors.ErrSecurityStampMismatch).Int64("userId", user.ID).Msg("logging out")
		m.logout(ctx)
		return false, nil
	}

	switch m.policy {
	case loginattempts.PolicyBlocking:
		if err := m.deps.Fingerprint.Check(ctx, user.UserName); err != nil {
			m.logout(ctx)
			return false, nil
		}
	default:
		// Not awaited: Init may report success before this check forces a logout.
		m.goBackground(ctx, func(ctx context.Context) {
			if err := m.deps.Fingerprint.Check(ctx, user.UserName); err != nil {
				m.logout(ctx)
			}
		})
	}

	expires := m.nowTime().Add(m.stampLifetime)
	m.deps.Cookies.Set(m.stampCookieName, user.SecurityStamp, &expires, m.cookiePath)

	return true, nil
}

// ChangeTenantIfNeeded switches tenant through the tenant cookie and a full page
// reload. It returns false, doing nothing, when tenantID is already current.
// Tenant id 0 means the host, like nil.
func (m *Manager) ChangeTenantIfNeeded(tenantID *int64) bool {
	if tenantID != nil && *tenantID == 0 {
		tenantID = nil
	}
	if utils.Equal(tenantID, m.TenantID()) {
		return false
	}

	if tenantID == nil {
		m.deps.Cookies.Delete(m.tenantCookieName, m.cookiePath)
	} else {
		expires := m.nowTime().Add(m.tenantLifetime)
		m.deps.Cookies.Set(m.tenantCookieName, tenants.FormatID(*tenantID), &expires, m.cookiePath)
	}
	m.deps.Navigator.Reload()
	return true
}

// Info returns a snapshot of the current session context.
func (m *Manager) Info() Info {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.info
}

func (m *Manager) Application() *ApplicationInfo {
	return m.Info().Application
}

func (m *Manager) User() *users.LoginInfo {
	return m.Info().User
}

func (m *Manager) Tenant() *tenants.LoginInfo {
	return m.Info().Tenant
}

func (m *Manager) UserID() *int64 {
	return m.Info().UserID()
}

func (m *Manager) TenantID() *int64 {
	return m.Info().TenantID()
}

// ShownLoginName returns `tenancyName\userName` when multi-tenancy is enabled
// ("." stands for the host), otherwise the bare user name.
func (m *Manager) ShownLoginName() string {
	info := m.Info()
	if info.User == nil {
		return ""
	}
	if !m.multiTenancy {
		return info.User.UserName
	}

	tenancyName := "."
	if info.Tenant != nil {
		tenancyName = info.Tenant.TenancyName
	}
	return tenancyName + `\` + info.User.UserName
}

// Subscribe registers fn to receive the session context after every hydration.
// The returned function removes the subscription.
func (m *Manager) Subscribe(fn func(Info)) (unsubscribe func()) {
	m.subscriberLock.Lock()
	defer m.subscriberLock.Unlock()

	id := m.nextSubscriber
	m.nextSubscriber++
	m.subscribers[id] = fn

	return func() {
		m.subscriberLock.Lock()
		defer m.subscriberLock.Unlock()
		delete(m.subscribers, id)
	}
}

// Wait blocks until background fingerprint checks finish.
func (m *Manager) Wait() {
	m.background.Wait()
}

func (m *Manager) notify(info Info) {
	m.subscriberLock.Lock()
	fns := lo.Values(m.subscribers)
	m.subscriberLock.Unlock()

	for _, fn := range fns {
		fn(info)
	}
}

func (m *Manager) logout(ctx context.Context) {
	m.deps.Logout.Logout(ctx, m.UserID(), true)
}

func (m *Manager) goBackground(ctx context.Context, fn func(context.Context)) {
	ctx = context.WithoutCancel(ctx)
	m.background.Add(1)
	go func() {
		defer m.background.Done()
		callCtx, cancel := context.WithTimeout(ctx, m.timeout)
		defer cancel()
		fn(callCtx)
	}()
}
