package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"atsea/internal/shop/tokens"
)

func TestDo_AttachesFreshToken(t *testing.T) {
	var seen []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode([]Product{})
	}))
	defer ts.Close()

	store := tokens.NewMemStore()
	c := NewClient(ts.URL, store)
	ctx := context.Background()

	if _, err := c.ListProducts(ctx); err != nil {
		t.Fatalf("list: %v", err)
	}

	_ = store.Set(tokens.KeyAccessToken, "tok-1")
	if _, err := c.ListProducts(ctx); err != nil {
		t.Fatalf("list: %v", err)
	}

	// The token store changed between calls; the client must not have
	// cached the old header.
	_ = store.Set(tokens.KeyAccessToken, "tok-2")
	if _, err := c.ListProducts(ctx); err != nil {
		t.Fatalf("list: %v", err)
	}

	want := []string{"", "Bearer tok-1", "Bearer tok-2"}
	if len(seen) != len(want) {
		t.Fatalf("seen=%v", seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("call %d: auth=%q want %q", i, seen[i], want[i])
		}
	}
}

func TestDo_ErrorTaxonomy(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid token"}`))
	}))
	store := tokens.NewMemStore()
	c := NewClient(ts.URL, store)
	ctx := context.Background()

	_, err := c.ListProducts(ctx)
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("want *HTTPError, got %T: %v", err, err)
	}
	if httpErr.Status != http.StatusUnauthorized {
		t.Fatalf("status=%d", httpErr.Status)
	}
	if httpErr.Message() != "invalid token" {
		t.Fatalf("message=%q", httpErr.Message())
	}

	// Kill the server: connection-level failures are NetworkError, never
	// HTTPError.
	ts.Close()
	_, err = c.ListProducts(ctx)
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("want *NetworkError, got %T: %v", err, err)
	}
}

func TestCartMutationsSendNoBodyBack(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	c := NewClient(ts.URL, tokens.NewMemStore())
	ctx := context.Background()

	if err := c.AddToCart(ctx, 5, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := c.RemoveFromCart(ctx, 5); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := c.ClearCart(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
}
