package config

import (
	"os"
	"strings"

	"github.com/samber/lo"
)

const (
	appNameVar    = "APP_NAME"
	apiBaseURLVar = "API_BASE_URL"
	appBaseURLVar = "APP_BASE_URL"
	loginRouteVar = "LOGIN_ROUTE"
	userAgentVar  = "USER_AGENT"
	jarFileVar    = "COOKIE_JAR_FILE"
	logLevelVar   = "LOG_LEVEL"
)

const defaultUserAgent = "go-auth-session-client/1.0"

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Auth Client")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

// GetAPIBaseURL returns the root of the remote API (e.g., "https://api.example.com").
// Trailing slashes are removed so routes can be appended directly.
func (EnvVars) GetAPIBaseURL() string {
	return strings.TrimRight(GetEnv(apiBaseURLVar, "http://localhost:21021"), "/")
}

// GetAppBaseURL returns the front end's root URL, the target of logout and of
// redirect-loop fallbacks.
func (EnvVars) GetAppBaseURL() string {
	return GetEnv(appBaseURLVar, "http://localhost:4200/")
}

func (EnvVars) GetLoginRoute() string {
	return GetEnv(loginRouteVar, "account/login")
}

func (EnvVars) GetUserAgent() string {
	return GetEnv(userAgentVar, defaultUserAgent)
}

func (EnvVars) GetCookieJarFile() string {
	return GetEnv(jarFileVar, "")
}

func (EnvVars) GetLogLevel() string {
	return GetEnv(logLevelVar, "info")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	return lo.Ternary(value != "", value, defaultValue)
}
