package navigation

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Navigator abstracts the browser effects the auth and session components trigger.
type Navigator interface {
	// Redirect loads an absolute URL, leaving the current page
	Redirect(url string)

	// Navigate moves to an in-app route without a full page load
	Navigate(route string)

	// Reload reloads the current page
	Reload()

	// UserAgent returns the browser's user-agent string
	UserAgent() string

	// InitialURL returns the URL the user first requested, before being sent to login
	InitialURL() string
}

var _ Navigator = (*Headless)(nil)

// Headless is a Navigator for hosts without a browser. It records every effect
// so the host (a CLI, a test) can act on or inspect it.
type Headless struct {
	userAgent  string
	initialURL string

	lock     sync.RWMutex
	location string
	history  []string
	reloads  int
}

func NewHeadless(userAgent, initialURL string) *Headless {
	return &Headless{
		userAgent:  userAgent,
		initialURL: initialURL,
		location:   initialURL,
	}
}

func (h *Headless) Redirect(url string) {
	log.Debug().Str("url", url).Msg("redirect")
	h.visit(url)
}

func (h *Headless) Navigate(route string) {
	log.Debug().Str("route", route).Msg("navigate")
	h.visit(route)
}

func (h *Headless) Reload() {
	h.lock.Lock()
	defer h.lock.Unlock()
	log.Debug().Str("url", h.location).Msg("reload")
	h.reloads++
}

func (h *Headless) UserAgent() string {
	return h.userAgent
}

func (h *Headless) InitialURL() string {
	return h.initialURL
}

// Location returns the last redirect or navigation target.
func (h *Headless) Location() string {
	h.lock.RLock()
	defer h.lock.RUnlock()
	return h.location
}

// History returns every redirect and navigation target in order.
func (h *Headless) History() []string {
	h.lock.RLock()
	defer h.lock.RUnlock()
	return append([]string(nil), h.history...)
}

func (h *Headless) Reloads() int {
	h.lock.RLock()
	defer h.lock.RUnlock()
	return h.reloads
}

func (h *Headless) visit(target string) {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.location = target
	h.history = append(h.history, target)
}
