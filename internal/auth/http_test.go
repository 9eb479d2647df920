package auth_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"atsea/internal/auth"
	"atsea/internal/customer"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newAuthTS(t *testing.T) *httptest.Server {
	t.Helper()

	s := &auth.Server{
		Customers:  customer.NewMemStore(),
		Refresh:    auth.NewMemRefreshStore(),
		JWT:        auth.NewTokenMaker(testSecret),
		Log:        zap.NewNop(),
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}

	ts := httptest.NewServer(s.Routes())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body any) (*http.Response, []byte) {
	t.Helper()

	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return resp, raw
}

type authResp struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	Username     string `json:"username"`
	CustomerID   int64  `json:"customerId"`
}

func register(t *testing.T, url, username string) authResp {
	t.Helper()

	resp, raw := postJSON(t, url+"/register", map[string]any{
		"username": username,
		"password": "password123",
		"email":    username + "@example.com",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status=%d body=%s", resp.StatusCode, raw)
	}

	var ar authResp
	if err := json.Unmarshal(raw, &ar); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ar.AccessToken == "" || ar.RefreshToken == "" {
		t.Fatalf("missing tokens: %s", raw)
	}
	return ar
}

func TestRegister_EstablishesSession(t *testing.T) {
	ts := newAuthTS(t)

	ar := register(t, ts.URL, "alice")
	if ar.Username != "alice" {
		t.Fatalf("username=%q", ar.Username)
	}
	if ar.CustomerID == 0 {
		t.Fatal("no customer id")
	}
}

func TestLogin(t *testing.T) {
	ts := newAuthTS(t)
	register(t, ts.URL, "alice")

	resp, raw := postJSON(t, ts.URL+"/login", map[string]any{
		"username": "alice",
		"password": "password123",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status=%d body=%s", resp.StatusCode, raw)
	}

	resp, _ = postJSON(t, ts.URL+"/login", map[string]any{
		"username": "alice",
		"password": "wrong-password",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad login status=%d", resp.StatusCode)
	}
}

func TestRefresh_Rotates(t *testing.T) {
	ts := newAuthTS(t)
	ar := register(t, ts.URL, "alice")

	resp, raw := postJSON(t, ts.URL+"/refresh-token", map[string]any{
		"refreshToken": ar.RefreshToken,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("refresh status=%d body=%s", resp.StatusCode, raw)
	}

	var next authResp
	if err := json.Unmarshal(raw, &next); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if next.RefreshToken == ar.RefreshToken {
		t.Fatal("refresh token was not rotated")
	}

	// The consumed token must be dead.
	resp, _ = postJSON(t, ts.URL+"/refresh-token", map[string]any{
		"refreshToken": ar.RefreshToken,
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("replayed refresh status=%d", resp.StatusCode)
	}
}

func TestLogout_RevokesRefresh(t *testing.T) {
	ts := newAuthTS(t)
	ar := register(t, ts.URL, "alice")

	resp, _ := postJSON(t, ts.URL+"/logout", map[string]any{
		"refreshToken": ar.RefreshToken,
	})
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("logout status=%d", resp.StatusCode)
	}

	resp, _ = postJSON(t, ts.URL+"/refresh-token", map[string]any{
		"refreshToken": ar.RefreshToken,
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("refresh after logout status=%d", resp.StatusCode)
	}
}

func TestRequireAuth_RejectsRefreshTokenAsAccess(t *testing.T) {
	jwt := auth.NewTokenMaker(testSecret)

	refresh, _, err := jwt.NewRefresh(1, "alice", "user", time.Hour)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	h := auth.RequireAuth(jwt)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d, refresh token must not pass as access token", rec.Code)
	}
}
