package cookies

import (
	"encoding/json"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

var (
	_ Store          = (*Jar)(nil)
	_ http.CookieJar = (*Jar)(nil)
)

// Jar is an in-memory cookie store for a single origin. It doubles as the
// http.CookieJar of the API client so cookies set by the server are kept.
type Jar struct {
	cookies map[string]Cookie
	lock    sync.RWMutex
	nowTime func() time.Time
}

type JarOption func(*Jar)

// WithNowTime sets the clock used for expiry checks (primarily for testing)
func WithNowTime(nowFunc func() time.Time) JarOption {
	return func(j *Jar) {
		j.nowTime = nowFunc
	}
}

func NewJar(options ...JarOption) *Jar {
	j := &Jar{
		cookies: make(map[string]Cookie),
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(j)
	}
	return j
}

func (j *Jar) Get(name string) (Cookie, bool) {
	j.lock.RLock()
	defer j.lock.RUnlock()

	c, ok := j.cookies[name]
	if !ok || j.expired(c) {
		return Cookie{}, false
	}
	return c, true
}

func (j *Jar) Set(name, value string, expires *time.Time, path string) {
	j.lock.Lock()
	defer j.lock.Unlock()

	c := Cookie{Name: name, Value: value, Path: path}
	if expires != nil {
		e := *expires
		c.Expires = &e
	}
	j.cookies[name] = c
}

func (j *Jar) Delete(name, path string) {
	j.lock.Lock()
	defer j.lock.Unlock()
	delete(j.cookies, name)
}

// SetCookies implements http.CookieJar.
func (j *Jar) SetCookies(_ *url.URL, cookies []*http.Cookie) {
	j.lock.Lock()
	defer j.lock.Unlock()

	now := j.nowTime()
	for _, hc := range cookies {
		if hc.MaxAge < 0 || (!hc.Expires.IsZero() && !hc.Expires.After(now)) {
			delete(j.cookies, hc.Name)
			continue
		}
		c := Cookie{Name: hc.Name, Value: hc.Value, Path: hc.Path}
		switch {
		case hc.MaxAge > 0:
			exp := now.Add(time.Duration(hc.MaxAge) * time.Second)
			c.Expires = &exp
		case !hc.Expires.IsZero():
			exp := hc.Expires
			c.Expires = &exp
		}
		j.cookies[hc.Name] = c
	}
}

// Cookies implements http.CookieJar.
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	j.lock.RLock()
	defer j.lock.RUnlock()

	requestPath := u.Path
	if requestPath == "" {
		requestPath = "/"
	}

	out := make([]*http.Cookie, 0, len(j.cookies))
	for _, c := range j.sorted() {
		if j.expired(c) || !pathMatches(c.Path, requestPath) {
			continue
		}
		out = append(out, &http.Cookie{Name: c.Name, Value: c.Value})
	}
	return out
}

// Save writes the live cookies to a JSON file.
func (j *Jar) Save(filename string) error {
	j.lock.RLock()
	live := make([]Cookie, 0, len(j.cookies))
	for _, c := range j.sorted() {
		if !j.expired(c) {
			live = append(live, c)
		}
	}
	j.lock.RUnlock()

	data, err := json.MarshalIndent(live, "", "  ")
	if err != nil {
		return errors.Wrap(err, "[Jar.Save] json.MarshalIndent")
	}
	if err := os.WriteFile(filename, data, 0o600); err != nil {
		return errors.Wrap(err, "[Jar.Save] os.WriteFile")
	}
	return nil
}

// Load replaces the jar's content with the cookies stored in filename.
// A missing file leaves the jar empty.
func (j *Jar) Load(filename string) error {
	data, err := os.ReadFile(filename)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "[Jar.Load] os.ReadFile")
	}

	var stored []Cookie
	if err := json.Unmarshal(data, &stored); err != nil {
		return errors.Wrap(err, "[Jar.Load] json.Unmarshal")
	}

	j.lock.Lock()
	defer j.lock.Unlock()
	j.cookies = make(map[string]Cookie, len(stored))
	for _, c := range stored {
		if !j.expired(c) {
			j.cookies[c.Name] = c
		}
	}
	return nil
}

func (j *Jar) expired(c Cookie) bool {
	return c.Expires != nil && !c.Expires.After(j.nowTime())
}

func (j *Jar) sorted() []Cookie {
	list := lo.Values(j.cookies)
	sort.Slice(list, func(a, b int) bool {
		return list[a].Name < list[b].Name
	})
	return list
}

func pathMatches(cookiePath, requestPath string) bool {
	if cookiePath == "" || cookiePath == "/" {
		return true
	}
	if requestPath == cookiePath {
		return true
	}
	return strings.HasPrefix(requestPath, strings.TrimRight(cookiePath, "/")+"/")
}
