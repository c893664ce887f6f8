package config

type Config interface {
	EnvConfig
	CookieConfig
	TenancyConfig
	ClientConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetAPIBaseURL() string
	GetAppBaseURL() string
	GetLoginRoute() string
	GetUserAgent() string
	GetCookieJarFile() string
	GetLogLevel() string
}

type mainConfig struct {
	EnvVars
	Cookies
	Tenancy
	Client
}

func New() Config {
	return mainConfig{}
}
