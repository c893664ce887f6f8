package tokenfake

import (
	"sync"
	"time"

	"github.com/jrsteele09/go-auth-session-client/token"
)

var _ token.Store = (*FakeTokenStore)(nil)

type FakeTokenStore struct {
	accessToken string
	expires     *time.Time
	sets        int
	clears      int
	lock        sync.RWMutex
}

func NewFakeTokenStore() *FakeTokenStore {
	return &FakeTokenStore{}
}

func (s *FakeTokenStore) Set(accessToken string, expires *time.Time) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.accessToken = accessToken
	s.expires = expires
	s.sets++
}

func (s *FakeTokenStore) Token() (string, *time.Time, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.accessToken == "" {
		return "", nil, token.ErrNoToken
	}
	return s.accessToken, s.expires, nil
}

func (s *FakeTokenStore) Clear() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.accessToken = ""
	s.expires = nil
	s.clears++
}

func (s *FakeTokenStore) Sets() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.sets
}

func (s *FakeTokenStore) Clears() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.clears
}
