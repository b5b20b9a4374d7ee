package session

import (
	"context"
	"sync"

	"github.com/sundowners/taskhub/internal/model"
	"github.com/sundowners/taskhub/internal/notify"
	"github.com/sundowners/taskhub/internal/rest"
	"github.com/sundowners/taskhub/internal/validate"
)

// API is the part of the REST client the manager needs.
type API interface {
	Register(ctx context.Context, reg rest.Registration) (string, error)
	Login(ctx context.Context, creds rest.Credentials) (rest.LoginResult, error)
	Logout(ctx context.Context) (string, error)
	CurrentUser(ctx context.Context) (*model.User, error)
	DeleteUser(ctx context.Context, id string) (string, error)
}

// State is what views observe. User may be nil while the profile is loading
// or after a failed fetch.
type State struct {
	LoggedIn bool
	UserID   string
	User     *model.User
}

const (
	MsgFetchUserFailed = "Failed to fetch user data"
	MsgLogoutFailed    = "Logout failed. Please try again."
	MsgDeleteFailed    = "Failed to delete account"
)

// Manager owns the session for one application instance.
type Manager struct {
	store  *Store
	api    API
	notify notify.Notifier
	async  func(func())

	mu        sync.Mutex
	state     State
	next      int
	observers map[int]func(State)
	closed    bool
}

type Option func(*Manager)

// WithAsync replaces the goroutine used for background profile fetches.
func WithAsync(fn func(func())) Option {
	return func(m *Manager) { m.async = fn }
}

func NewManager(store *Store, api API, n notify.Notifier, opts ...Option) *Manager {
	m := &Manager{
		store:     store,
		api:       api,
		notify:    n,
		async:     func(f func()) { go f() },
		observers: make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Initialize derives the logged-in state from the persisted session and
// fetches the profile in the background.
func (m *Manager) Initialize(ctx context.Context) {
	sess := m.store.Load()
	if !sess.Valid() {
		m.set(State{})
		return
	}
	m.set(State{LoggedIn: true, UserID: sess.UserID})
	m.async(func() {
		m.Refresh(ctx)
	})
}

// Refresh fetches the current profile. A failure is reported but the session
// is kept so the user can retry.
func (m *Manager) Refresh(ctx context.Context) error {
	u, err := m.api.CurrentUser(ctx)
	if err != nil {
		m.notify.Error(rest.MessageOr(err, MsgFetchUserFailed))
		return err
	}
	m.update(func(s *State) bool {
		if !s.LoggedIn {
			return false
		}
		s.User = u
		if s.UserID == "" {
			s.UserID = u.ID
		}
		return true
	})
	return nil
}

// Login validates the credentials locally before contacting the server.
func (m *Manager) Login(ctx context.Context, email, password string) (rest.LoginResult, error) {
	if err := validate.Credentials(email, password); err != nil {
		return rest.LoginResult{}, err
	}
	res, err := m.api.Login(ctx, rest.Credentials{Email: email, Password: password})
	if err != nil {
		return rest.LoginResult{}, err
	}
	if err := m.store.Save(Session{Token: res.Token, UserID: res.UserID()}); err != nil {
		m.store.Clear()
		return rest.LoginResult{}, err
	}
	m.set(State{LoggedIn: true, UserID: res.UserID(), User: res.User})
	return res, nil
}

func (m *Manager) Register(ctx context.Context, name, email, password string) (string, error) {
	if err := validate.Name(name); err != nil {
		return "", err
	}
	if err := validate.Credentials(email, password); err != nil {
		return "", err
	}
	return m.api.Register(ctx, rest.Registration{Name: name, Email: email, Password: password})
}

// Logout clears the local session only once the server confirmed it.
func (m *Manager) Logout(ctx context.Context) error {
	if _, err := m.api.Logout(ctx); err != nil {
		return err
	}
	return m.clear()
}

// DeleteAccount deletes the signed-in user and then clears the session.
func (m *Manager) DeleteAccount(ctx context.Context) (string, error) {
	id := m.State().UserID
	if id == "" {
		return "", rest.ErrNoSession
	}
	msg, err := m.api.DeleteUser(ctx, id)
	if err != nil {
		return "", err
	}
	return msg, m.clear()
}

func (m *Manager) clear() error {
	err := m.store.Clear()
	m.set(State{})
	return err
}

// SetUser replaces the cached profile, e.g. after an update.
func (m *Manager) SetUser(u *model.User) {
	m.update(func(s *State) bool {
		if !s.LoggedIn || u == nil {
			return false
		}
		s.User = u
		return true
	})
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// HasSession reports whether a token is persisted.
func (m *Manager) HasSession() bool {
	return m.store.Token() != ""
}

func (m *Manager) Token() string {
	return m.store.Token()
}

// Observe calls fn with the current state and after every change until the
// returned cancel func is called.
func (m *Manager) Observe(fn func(State)) (cancel func()) {
	m.mu.Lock()
	id := m.next
	m.next++
	m.observers[id] = fn
	st := m.state
	m.mu.Unlock()

	fn(st)

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.observers, id)
			m.mu.Unlock()
		})
	}
}

// Close drops every observer.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	m.observers = make(map[int]func(State))
	m.mu.Unlock()
}

func (m *Manager) set(st State) {
	m.update(func(s *State) bool {
		*s = st
		return true
	})
}

func (m *Manager) update(fn func(*State) bool) {
	m.mu.Lock()
	if m.closed || !fn(&m.state) {
		m.mu.Unlock()
		return
	}
	st := m.state
	obs := make([]func(State), 0, len(m.observers))
	for _, o := range m.observers {
		obs = append(obs, o)
	}
	m.mu.Unlock()

	for _, o := range obs {
		o(st)
	}
}
