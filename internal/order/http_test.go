package order_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"atsea/internal/auth"
	"atsea/internal/catalog"
	"atsea/internal/order"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type capturingPublisher struct {
	events []order.Event
}

func (p *capturingPublisher) PublishOrderCreated(_ context.Context, ev order.Event) error {
	p.events = append(p.events, ev)
	return nil
}

func newOrderTS(t *testing.T) (*httptest.Server, *capturingPublisher, string) {
	t.Helper()

	products := catalog.NewMemStore()
	products.Seed([]catalog.Product{
		{Name: "Anchor", Price: 100},
		{Name: "Compass", Price: 25.5},
	})

	pub := &capturingPublisher{}
	jwt := auth.NewTokenMaker(testSecret)

	s := &order.Server{
		Store:   order.NewMemStore(),
		Catalog: products,
		Events:  pub,
		Log:     zap.NewNop(),
	}

	h := chi.NewMux()
	h.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(jwt))
		r.Mount("/", s.Routes())
	})

	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	access, err := jwt.NewAccess(7, "alice", "user", time.Hour)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	return ts, pub, access
}

func doOrder(t *testing.T, ts *httptest.Server, token string, body any) (*http.Response, []byte) {
	t.Helper()

	b, _ := json.Marshal(body)
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	return resp, raw
}

func TestCreate_AssignsIDAndPublishes(t *testing.T) {
	ts, pub, token := newOrderTS(t)

	resp, raw := doOrder(t, ts, token, map[string]any{
		"orderId":         0,
		"orderDate":       time.Now().UTC().Format(time.RFC3339),
		"customerId":      999,
		"productsOrdered": map[string]int{"1": 2, "2": 1},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status=%d body=%s", resp.StatusCode, raw)
	}

	var created struct {
		OrderID    int64          `json:"orderId"`
		CustomerID int64          `json:"customerId"`
		Products   map[string]int `json:"productsOrdered"`
		Total      float64        `json:"total"`
	}
	if err := json.Unmarshal(raw, &created); err != nil {
		t.Fatalf("decode: %v body=%s", err, raw)
	}

	if created.OrderID == 0 {
		t.Fatal("placeholder orderId not replaced")
	}
	// customerId comes from the token, never from the request body.
	if created.CustomerID != 7 {
		t.Fatalf("customerId=%d", created.CustomerID)
	}
	if created.Total != 225.5 {
		t.Fatalf("total=%v", created.Total)
	}

	if len(pub.events) != 1 {
		t.Fatalf("events=%d", len(pub.events))
	}
	if pub.events[0].OrderID != created.OrderID || pub.events[0].Username != "alice" {
		t.Fatalf("event=%+v", pub.events[0])
	}
}

func TestCreate_RejectsEmptyAndUnknownProducts(t *testing.T) {
	ts, pub, token := newOrderTS(t)

	resp, _ := doOrder(t, ts, token, map[string]any{
		"productsOrdered": map[string]int{},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty order status=%d", resp.StatusCode)
	}

	resp, _ = doOrder(t, ts, token, map[string]any{
		"productsOrdered": map[string]int{"42": 1},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown product status=%d", resp.StatusCode)
	}

	resp, _ = doOrder(t, ts, token, map[string]any{
		"productsOrdered": map[string]int{"1": -1},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("negative quantity status=%d", resp.StatusCode)
	}

	if len(pub.events) != 0 {
		t.Fatalf("rejected orders must not publish events, got %d", len(pub.events))
	}
}

func TestCreate_RequiresAuth(t *testing.T) {
	ts, _, _ := newOrderTS(t)

	resp, _ := doOrder(t, ts, "", map[string]any{
		"productsOrdered": map[string]int{"1": 1},
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status=%d", resp.StatusCode)
	}
}

func TestGet_OwnOrdersOnly(t *testing.T) {
	ts, _, token := newOrderTS(t)

	resp, raw := doOrder(t, ts, token, map[string]any{
		"productsOrdered": map[string]int{"1": 1},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status=%d body=%s", resp.StatusCode, raw)
	}
	var created struct {
		OrderID int64 `json:"orderId"`
	}
	_ = json.Unmarshal(raw, &created)

	jwt := auth.NewTokenMaker(testSecret)
	other, _ := jwt.NewAccess(8, "bob", "user", time.Hour)

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/"+strconv.FormatInt(created.OrderID, 10), nil)
	req.Header.Set("Authorization", "Bearer "+other)
	resp2, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp2.Body.Close()

	if resp2.StatusCode != http.StatusForbidden {
		t.Fatalf("status=%d", resp2.StatusCode)
	}
}
