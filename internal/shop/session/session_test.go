package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"go.uber.org/zap"

	"atsea/internal/shop/api"
	"atsea/internal/shop/tokens"
)

// fakeAuth is a minimal auth backend: one valid credential pair, rotating
// refresh tokens numbered refresh-1, refresh-2, ...
type fakeAuth struct {
	refreshCalls int
	logoutCalls  int
	failRefresh  bool
	failLogout   bool
}

func (f *fakeAuth) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var in struct{ Username, Password string }
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in.Username != "alice" || in.Password != "s3cret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid username or password"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(api.AuthResponse{
			AccessToken:  "access-1",
			RefreshToken: "refresh-1",
			Username:     "alice",
		})
	})
	mux.HandleFunc("POST /api/auth/register", func(w http.ResponseWriter, r *http.Request) {
		var in api.RegisterRequest
		_ = json.NewDecoder(r.Body).Decode(&in)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(api.AuthResponse{
			AccessToken:  "access-1",
			RefreshToken: "refresh-1",
			Username:     in.Username,
		})
	})
	mux.HandleFunc("POST /api/auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		f.refreshCalls++
		if f.failRefresh {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid or expired refresh token"}`))
			return
		}
		n := strconv.Itoa(f.refreshCalls + 1)
		_ = json.NewEncoder(w).Encode(api.AuthResponse{
			AccessToken:  "access-" + n,
			RefreshToken: "refresh-" + n,
			Username:     "alice",
		})
	})
	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		f.logoutCalls++
		if f.failLogout {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

func newManager(t *testing.T, f *fakeAuth, store tokens.Store) *Manager {
	t.Helper()
	ts := httptest.NewServer(f.handler())
	t.Cleanup(ts.Close)
	return NewManager(api.NewClient(ts.URL, store), store, zap.NewNop())
}

func TestRehydrate(t *testing.T) {
	store := tokens.NewMemStore()
	_ = store.Set(tokens.KeyAccessToken, "a")
	_ = store.Set(tokens.KeyRefreshToken, "r")
	_ = store.Set(tokens.KeyUsername, "alice")

	m := newManager(t, &fakeAuth{}, store)
	s := m.Snapshot()
	if !s.IsAuthenticated || s.Username != "alice" {
		t.Fatalf("snapshot=%+v", s)
	}
}

func TestRehydrate_RequiresAllThreeKeys(t *testing.T) {
	store := tokens.NewMemStore()
	_ = store.Set(tokens.KeyAccessToken, "a")
	_ = store.Set(tokens.KeyUsername, "alice")
	// refresh token missing

	m := newManager(t, &fakeAuth{}, store)
	if m.Snapshot().IsAuthenticated {
		t.Fatal("authenticated with a missing key")
	}
}

func TestLogin(t *testing.T) {
	store := tokens.NewMemStore()
	m := newManager(t, &fakeAuth{}, store)

	s, err := m.Login(context.Background(), "alice", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !s.IsAuthenticated || s.AccessToken != "access-1" || s.RefreshToken != "refresh-1" {
		t.Fatalf("session=%+v", s)
	}
	if v, _ := store.Get(tokens.KeyUsername); v != "alice" {
		t.Fatalf("username not persisted: %q", v)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	m := newManager(t, &fakeAuth{}, tokens.NewMemStore())

	_, err := m.Login(context.Background(), "alice", "wrong")
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("want *AuthError, got %T: %v", err, err)
	}
	if authErr.Message != "invalid username or password" {
		t.Fatalf("message=%q", authErr.Message)
	}
	if m.Snapshot().IsAuthenticated {
		t.Fatal("failed login mutated session")
	}
}

func TestRegister_EstablishesSession(t *testing.T) {
	m := newManager(t, &fakeAuth{}, tokens.NewMemStore())

	s, err := m.Register(context.Background(), api.RegisterRequest{
		Username: "bob", Password: "hunter22", Email: "bob@example.com",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if !s.IsAuthenticated || s.Username != "bob" {
		t.Fatalf("session=%+v", s)
	}
}

func TestRefresh_Rotates(t *testing.T) {
	store := tokens.NewMemStore()
	_ = store.Set(tokens.KeyAccessToken, "access-1")
	_ = store.Set(tokens.KeyRefreshToken, "refresh-1")
	_ = store.Set(tokens.KeyUsername, "alice")

	m := newManager(t, &fakeAuth{}, store)
	s, err := m.Refresh(context.Background())
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if s.AccessToken == "access-1" || s.RefreshToken == "refresh-1" {
		t.Fatalf("tokens not rotated: %+v", s)
	}
	if v, _ := store.Get(tokens.KeyRefreshToken); v != s.RefreshToken {
		t.Fatalf("store out of sync: %q vs %q", v, s.RefreshToken)
	}
}

func TestRefresh_FailureForcesLogout(t *testing.T) {
	store := tokens.NewMemStore()
	_ = store.Set(tokens.KeyAccessToken, "access-1")
	_ = store.Set(tokens.KeyRefreshToken, "refresh-1")
	_ = store.Set(tokens.KeyUsername, "alice")

	m := newManager(t, &fakeAuth{failRefresh: true}, store)
	_, err := m.Refresh(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if m.Snapshot().IsAuthenticated {
		t.Fatal("still authenticated after failed refresh")
	}
	for _, k := range []string{tokens.KeyAccessToken, tokens.KeyRefreshToken, tokens.KeyUsername} {
		if _, ok := store.Get(k); ok {
			t.Fatalf("key %q survived forced logout", k)
		}
	}
}

func TestLogout_ClearsEvenWhenServerFails(t *testing.T) {
	store := tokens.NewMemStore()
	_ = store.Set(tokens.KeyAccessToken, "access-1")
	_ = store.Set(tokens.KeyRefreshToken, "refresh-1")
	_ = store.Set(tokens.KeyUsername, "alice")

	f := &fakeAuth{failLogout: true}
	m := newManager(t, f, store)
	m.Logout(context.Background())

	if f.logoutCalls != 1 {
		t.Fatalf("logoutCalls=%d", f.logoutCalls)
	}
	if m.Snapshot().IsAuthenticated {
		t.Fatal("still authenticated")
	}
	if _, ok := store.Get(tokens.KeyRefreshToken); ok {
		t.Fatal("refresh token survived logout")
	}
}

func TestSubscribersSeeIdenticalStates(t *testing.T) {
	m := newManager(t, &fakeAuth{}, tokens.NewMemStore())

	var a, b []Session
	unsubA := m.Subscribe(func(s Session) { a = append(a, s) })
	defer unsubA()
	unsubB := m.Subscribe(func(s Session) { b = append(b, s) })

	if _, err := m.Login(context.Background(), "alice", "s3cret"); err != nil {
		t.Fatalf("login: %v", err)
	}
	m.Logout(context.Background())

	if len(a) != 2 || len(b) != 2 {
		t.Fatalf("a=%d b=%d notifications", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("divergent snapshots at %d: %+v vs %+v", i, a[i], b[i])
		}
	}

	unsubB()
	if _, err := m.Login(context.Background(), "alice", "s3cret"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if len(b) != 2 {
		t.Fatal("unsubscribed callback still invoked")
	}
}
