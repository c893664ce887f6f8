package cookiefake

import (
	"sync"
	"time"

	"github.com/jrsteele09/go-auth-session-client/cookies"
	"github.com/samber/lo"
)

var _ cookies.Store = (*Recorder)(nil)

// Recorder is a cookie jar that remembers every write made to it.
type Recorder struct {
	*cookies.Jar
	sets    []cookies.Cookie
	deletes []string
	lock    sync.Mutex
}

func NewRecorder(options ...cookies.JarOption) *Recorder {
	return &Recorder{Jar: cookies.NewJar(options...)}
}

func (r *Recorder) Set(name, value string, expires *time.Time, path string) {
	r.lock.Lock()
	r.sets = append(r.sets, cookies.Cookie{Name: name, Value: value, Path: path, Expires: expires})
	r.lock.Unlock()
	r.Jar.Set(name, value, expires, path)
}

func (r *Recorder) Delete(name, path string) {
	r.lock.Lock()
	r.deletes = append(r.deletes, name)
	r.lock.Unlock()
	r.Jar.Delete(name, path)
}

// Sets returns the writes made to the named cookie, in order.
func (r *Recorder) Sets(name string) []cookies.Cookie {
	r.lock.Lock()
	defer r.lock.Unlock()
	return lo.Filter(r.sets, func(c cookies.Cookie, _ int) bool {
		return c.Name == name
	})
}

// Deletes counts the deletions of the named cookie.
func (r *Recorder) Deletes(name string) int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return lo.Count(r.deletes, name)
}
