// Package session owns the client's authentication state: one session per
// process, rehydrated from the token store at startup, exposed to any
// number of subscribers as read-only snapshots.
package session

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"atsea/internal/shop/api"
	"atsea/internal/shop/tokens"
)

// AuthError carries the human-readable reason a login, registration, or
// refresh was rejected.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

var errNoRefreshToken = errors.New("no refresh token available")

// Session is an immutable snapshot. IsAuthenticated is true exactly when
// Username, AccessToken, and RefreshToken are all present.
type Session struct {
	Username        string
	AccessToken     string
	RefreshToken    string
	IsAuthenticated bool
	Loading         bool
}

type Manager struct {
	api    *api.Client
	tokens tokens.Store
	log    *zap.Logger

	mu      sync.Mutex
	cur     Session
	subs    map[int]func(Session)
	nextSub int
}

// NewManager rehydrates synchronously: if all three persisted keys are
// present the session starts authenticated without a network call. The
// optimism is deliberate — an expired access token surfaces as a 401 on
// the next request, and Refresh or Logout resolves it from there.
func NewManager(client *api.Client, store tokens.Store, log *zap.Logger) *Manager {
	m := &Manager{
		api:    client,
		tokens: store,
		log:    log,
		subs:   make(map[int]func(Session)),
	}

	access, okA := store.Get(tokens.KeyAccessToken)
	refresh, okR := store.Get(tokens.KeyRefreshToken)
	username, okU := store.Get(tokens.KeyUsername)

	if okA && okR && okU && access != "" && refresh != "" && username != "" {
		m.cur = Session{
			Username:        username,
			AccessToken:     access,
			RefreshToken:    refresh,
			IsAuthenticated: true,
		}
	}
	return m
}

// Snapshot returns the current session. Every caller sees the same state;
// there is no per-subscriber copy to drift.
func (m *Manager) Snapshot() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cur
}

// Subscribe registers fn for session changes and returns an unsubscribe
// func. fn is called outside the manager's lock.
func (m *Manager) Subscribe(fn func(Session)) func() {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

func (m *Manager) setSession(s Session) {
	m.mu.Lock()
	m.cur = s
	fns := make([]func(Session), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}

func (m *Manager) persist(ar api.AuthResponse) error {
	if err := m.tokens.Set(tokens.KeyAccessToken, ar.AccessToken); err != nil {
		return err
	}
	if err := m.tokens.Set(tokens.KeyRefreshToken, ar.RefreshToken); err != nil {
		return err
	}
	return m.tokens.Set(tokens.KeyUsername, ar.Username)
}

func (m *Manager) establish(ar api.AuthResponse) (Session, error) {
	if err := m.persist(ar); err != nil {
		return Session{}, err
	}
	s := Session{
		Username:        ar.Username,
		AccessToken:     ar.AccessToken,
		RefreshToken:    ar.RefreshToken,
		IsAuthenticated: true,
	}
	m.setSession(s)
	return s, nil
}

func authError(err error) error {
	var httpErr *api.HTTPError
	if errors.As(err, &httpErr) {
		return &AuthError{Message: httpErr.Message()}
	}
	return err
}

// Login establishes a session. On failure the current session is left
// untouched and the server's message is surfaced as *AuthError.
func (m *Manager) Login(ctx context.Context, username, password string) (Session, error) {
	ar, err := m.api.Login(ctx, username, password)
	if err != nil {
		return m.Snapshot(), authError(err)
	}
	return m.establish(ar)
}

// Register creates the account and establishes the session in one round
// trip; no follow-up login is needed.
func (m *Manager) Register(ctx context.Context, req api.RegisterRequest) (Session, error) {
	ar, err := m.api.Register(ctx, req)
	if err != nil {
		return m.Snapshot(), authError(err)
	}
	return m.establish(ar)
}

// Logout asks the server to revoke the refresh token (best effort; a
// failure is logged, not surfaced) and unconditionally clears local state.
func (m *Manager) Logout(ctx context.Context) {
	if refresh, ok := m.tokens.Get(tokens.KeyRefreshToken); ok && refresh != "" {
		if err := m.api.Logout(ctx, refresh); err != nil {
			m.log.Warn("server-side logout failed", zap.Error(err))
		}
	}

	_ = m.tokens.Remove(tokens.KeyAccessToken)
	_ = m.tokens.Remove(tokens.KeyRefreshToken)
	_ = m.tokens.Remove(tokens.KeyUsername)

	m.setSession(Session{})
}

// Refresh exchanges the stored refresh token for a new pair. Failure is
// fatal to the session: it forces a logout and returns the error.
func (m *Manager) Refresh(ctx context.Context) (Session, error) {
	refresh, ok := m.tokens.Get(tokens.KeyRefreshToken)
	if !ok || refresh == "" {
		m.Logout(ctx)
		return Session{}, &AuthError{Message: errNoRefreshToken.Error()}
	}

	ar, err := m.api.RefreshToken(ctx, refresh)
	if err != nil {
		m.Logout(ctx)
		return Session{}, authError(err)
	}

	if ar.Username == "" {
		// Defensive default: keep the known username when the refresh
		// response omits it.
		if u, ok := m.tokens.Get(tokens.KeyUsername); ok {
			ar.Username = u
		}
	}
	return m.establish(ar)
}
