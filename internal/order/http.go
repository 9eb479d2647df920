package order

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"atsea/internal/auth"
	"atsea/internal/catalog"
	"atsea/pkg/kit"
)

const maxBodyBytes = 1 << 20

type Server struct {
	Store   Store
	Catalog catalog.Store
	Events  Publisher
	Log     *zap.Logger
}

// Routes serves /api/order/. The app router wraps it in auth.RequireAuth.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/", s.create)
	r.Get("/{id}", s.get)
	return r
}

// wireOrder keeps productsOrdered as a string-keyed object, matching the
// JSON contract ({"productsOrdered": {"5": 2}}).
type wireOrder struct {
	OrderID         int64          `json:"orderId"`
	OrderDate       time.Time      `json:"orderDate"`
	CustomerID      int64          `json:"customerId"`
	ProductsOrdered map[string]int `json:"productsOrdered"`
	Total           float64        `json:"total,omitempty"`
}

func toWire(o Order) wireOrder {
	products := make(map[string]int, len(o.Products))
	for id, q := range o.Products {
		products[strconv.FormatInt(id, 10)] = q
	}
	return wireOrder{
		OrderID:         o.OrderID,
		OrderDate:       o.OrderDate,
		CustomerID:      o.CustomerID,
		ProductsOrdered: products,
		Total:           o.Total,
	}
}

var (
	errNoProducts     = errors.New("productsOrdered required")
	errBadQuantity    = errors.New("quantity must be positive")
	errInvalidProduct = errors.New("unknown productId")
)

// create accepts the client's order submission. The caller-supplied orderId
// is a placeholder and is discarded; the store allocates the real one.
func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "no user", nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req wireOrder
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	products, total, eventProducts, err := s.priceProducts(r, req.ProductsOrdered)
	if err != nil {
		s.writeCreateError(w, r, err)
		return
	}

	orderDate := req.OrderDate
	if orderDate.IsZero() {
		orderDate = time.Now().UTC()
	}

	created, err := s.Store.Create(r.Context(), Order{
		OrderDate:  orderDate,
		CustomerID: u.CustomerID,
		Products:   products,
		Total:      total,
	})
	if err != nil {
		s.Log.Error("create order failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	// Best-effort: a dead broker must not fail the order.
	ev := Event{
		OrderID:    created.OrderID,
		CustomerID: created.CustomerID,
		Username:   u.Username,
		Products:   eventProducts,
		TotalPrice: created.Total,
	}
	if err := s.Events.PublishOrderCreated(r.Context(), ev); err != nil {
		s.Log.Warn("publish order event failed", zap.Error(err), zap.Int64("order_id", created.OrderID))
	}

	kit.WriteJSON(w, http.StatusCreated, toWire(created))
}

// priceProducts validates the submitted product map against the catalog
// and computes the authoritative total.
func (s *Server) priceProducts(r *http.Request, ordered map[string]int) (map[int64]int, float64, []EventProduct, error) {
	if len(ordered) == 0 {
		return nil, 0, nil, errNoProducts
	}

	products := make(map[int64]int, len(ordered))
	eventProducts := make([]EventProduct, 0, len(ordered))
	var total float64

	for key, qty := range ordered {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil || id <= 0 {
			return nil, 0, nil, errInvalidProduct
		}
		if qty <= 0 {
			return nil, 0, nil, errBadQuantity
		}

		p, found, err := s.Catalog.Get(r.Context(), id)
		if err != nil {
			return nil, 0, nil, err
		}
		if !found {
			return nil, 0, nil, errInvalidProduct
		}

		products[id] = qty
		total += p.Price * float64(qty)
		eventProducts = append(eventProducts, EventProduct{
			ProductID: id,
			Name:      p.Name,
			Quantity:  qty,
			Price:     p.Price,
		})
	}

	return products, total, eventProducts, nil
}

func (s *Server) writeCreateError(w http.ResponseWriter, r *http.Request, err error) {
	switch err {
	case errNoProducts, errBadQuantity, errInvalidProduct:
		kit.WriteError(w, r, http.StatusBadRequest, err.Error(), nil)
	default:
		s.Log.Error("price products failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "no user", nil)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad order id", nil)
		return
	}

	o, found, err := s.Store.Get(r.Context(), id)
	if err != nil {
		s.Log.Error("get order failed", zap.Error(err), zap.Int64("order_id", id))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	if !found {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"orderId": id})
		return
	}
	if o.CustomerID != u.CustomerID {
		kit.WriteError(w, r, http.StatusForbidden, "forbidden", nil)
		return
	}

	kit.WriteJSON(w, http.StatusOK, toWire(o))
}
