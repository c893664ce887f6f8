package config

import "time"

type ClientConfig interface {
	GetRequestTimeout() time.Duration
	GetFingerprintPolicy() string
}

type Client struct{}

var _ ClientConfig = Client{}

// GetRequestTimeout bounds every remote call. Zero or invalid values fall back to 15s.
func (Client) GetRequestTimeout() time.Duration {
	d, err := time.ParseDuration(GetEnv("REQUEST_TIMEOUT", "15s"))
	if err != nil || d <= 0 {
		return 15 * time.Second
	}
	return d
}

// GetFingerprintPolicy returns "concurrent" (default) or "blocking".
func (Client) GetFingerprintPolicy() string {
	return GetEnv("FINGERPRINT_POLICY", "concurrent")
}
