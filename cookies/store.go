package cookies

import "time"

// Cookie is a named value with an optional expiry. A nil Expires makes a session cookie.
type Cookie struct {
	Name    string     `json:"name"`
	Value   string     `json:"value"`
	Path    string     `json:"path,omitempty"`
	Expires *time.Time `json:"expires,omitempty"`
}

// Store is the browser-like cookie storage the auth and session components write to.
type Store interface {
	// Get returns a live (non-expired) cookie by name
	Get(name string) (Cookie, bool)

	// Set creates or replaces a cookie
	Set(name, value string, expires *time.Time, path string)

	// Delete removes a cookie by name
	Delete(name, path string)
}
