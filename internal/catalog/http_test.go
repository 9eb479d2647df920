package catalog

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func newTestServer(t *testing.T) (*httptest.Server, *MemStore) {
	t.Helper()

	store := NewMemStore()
	store.Seed([]Product{
		{Name: "Anchor", Description: "Cast iron anchor", Price: 139.99, Image: "anchor.png"},
		{Name: "Compass", Description: "Brass compass", Price: 29.50, Image: "compass.png"},
	})

	s := &Server{Store: store, Log: zap.NewNop()}
	ts := httptest.NewServer(s.Routes())
	t.Cleanup(ts.Close)
	return ts, store
}

func TestList(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}

	var products []Product
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("len=%d", len(products))
	}
	if products[0].ProductID != 1 || products[1].ProductID != 2 {
		t.Fatalf("ids not sorted: %+v", products)
	}
}

func TestGet_NotFound(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/99")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status=%d", resp.StatusCode)
	}
}

func TestCreate(t *testing.T) {
	ts, _ := newTestServer(t)

	body, _ := json.Marshal(Product{Name: "Sextant", Price: 89})
	resp, err := http.Post(ts.URL+"/", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status=%d", resp.StatusCode)
	}

	var created Product
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ProductID == 0 {
		t.Fatal("no product id assigned")
	}
}

func TestCreate_Duplicate(t *testing.T) {
	ts, _ := newTestServer(t)

	body, _ := json.Marshal(Product{Name: "Anchor", Price: 1})
	resp, err := http.Post(ts.URL+"/", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status=%d", resp.StatusCode)
	}
}
