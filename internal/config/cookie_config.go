package config

import "time"

type CookieConfig interface {
	GetAuthTokenCookieName() string
	GetEncryptedAuthTokenCookieName() string
	GetSecurityStampCookieName() string
	GetTenantIDCookieName() string
	GetCookiePath() string
	GetSecurityStampLifetime() time.Duration
	GetTenantCookieLifetime() time.Duration
}

type Cookies struct{}

var _ CookieConfig = Cookies{}

// fiveYears is the horizon used for long-lived marker cookies.
const fiveYears = 5 * 365 * 24 * time.Hour

func (Cookies) GetAuthTokenCookieName() string {
	return "Abp.AuthToken"
}

func (Cookies) GetEncryptedAuthTokenCookieName() string {
	return "enc_auth_token"
}

func (Cookies) GetSecurityStampCookieName() string {
	return "enc_security_stamp"
}

func (Cookies) GetTenantIDCookieName() string {
	return "Abp.TenantId"
}

func (Cookies) GetCookiePath() string {
	return GetEnv("COOKIE_PATH", "/")
}

func (Cookies) GetSecurityStampLifetime() time.Duration {
	return fiveYears
}

func (Cookies) GetTenantCookieLifetime() time.Duration {
	return fiveYears
}
