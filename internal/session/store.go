// Package session keeps the signed-in user's token and id, and derives the
// logged-in state every view observes.
package session

import (
	"errors"
	"sync"
)

const (
	KeyToken = "token"
	KeyID    = "id"
)

// Backend is one place session values are persisted.
type Backend interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Del(key string) error
}

type Session struct {
	Token  string
	UserID string
}

func (s Session) Valid() bool { return s.Token != "" }

// Store writes the session to a primary backend and a mirror so that it
// survives either one being cleared.
type Store struct {
	primary Backend
	mirror  Backend
}

func NewStore(primary, mirror Backend) *Store {
	return &Store{primary: primary, mirror: mirror}
}

func (s *Store) get(key string) string {
	if v, ok := s.primary.Get(key); ok && v != "" {
		return v
	}
	if s.mirror != nil {
		if v, ok := s.mirror.Get(key); ok {
			return v
		}
	}
	return ""
}

// Load reads the session, each value falling back to the mirror.
func (s *Store) Load() Session {
	return Session{Token: s.get(KeyToken), UserID: s.get(KeyID)}
}

func (s *Store) Token() string {
	return s.get(KeyToken)
}

func (s *Store) Save(sess Session) error {
	var errs []error
	for _, b := range s.backends() {
		if err := b.Set(KeyToken, sess.Token); err != nil {
			errs = append(errs, err)
		}
		if err := b.Set(KeyID, sess.UserID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Clear removes the session from both backends, even when one of them fails.
func (s *Store) Clear() error {
	var errs []error
	for _, b := range s.backends() {
		if err := b.Del(KeyToken); err != nil {
			errs = append(errs, err)
		}
		if err := b.Del(KeyID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Store) backends() []Backend {
	if s.mirror == nil {
		return []Backend{s.primary}
	}
	return []Backend{s.primary, s.mirror}
}

type MemoryBackend struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: make(map[string]string)}
}

func (m *MemoryBackend) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *MemoryBackend) Set(key, value string) error {
	m.mu.Lock()
	m.values[key] = value
	m.mu.Unlock()
	return nil
}

func (m *MemoryBackend) Del(key string) error {
	m.mu.Lock()
	delete(m.values, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryBackend) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.values)
}
