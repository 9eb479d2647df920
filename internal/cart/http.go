package cart

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"atsea/internal/auth"
	"atsea/pkg/kit"
)

const maxBodyBytes = 64 << 10

type Server struct {
	Store Store
	Log   *zap.Logger
}

// Routes serves /api/cart/. The app router wraps it in auth.RequireAuth.
// Mutations answer 204 with no body; the client re-fetches the cart to
// resync, so returning the updated cart here would only invite divergence.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", s.get)
	r.Post("/", s.add)
	r.Delete("/", s.clear)
	r.Delete("/{productId}", s.remove)
	return r
}

func owner(r *http.Request) (string, bool) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		return "", false
	}
	return "user:" + u.Username, true
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	o, ok := owner(r)
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "no user", nil)
		return
	}

	lines, err := s.Store.Get(r.Context(), o)
	if err != nil {
		s.Log.Error("get cart failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	if lines == nil {
		lines = []Item{}
	}
	kit.WriteJSON(w, http.StatusOK, lines)
}

func (s *Server) add(w http.ResponseWriter, r *http.Request) {
	o, ok := owner(r)
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "no user", nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var item Item
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&item); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}
	if item.ProductID <= 0 {
		kit.WriteError(w, r, http.StatusBadRequest, "productId required", nil)
		return
	}
	if item.Quantity == 0 {
		item.Quantity = 1
	}

	if err := s.Store.Add(r.Context(), o, item); err != nil {
		s.Log.Error("add to cart failed", zap.Error(err), zap.Int64("product_id", item.ProductID))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	o, ok := owner(r)
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "no user", nil)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "productId"), 10, 64)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad product id", nil)
		return
	}

	if err := s.Store.Remove(r.Context(), o, id); err != nil {
		s.Log.Error("remove from cart failed", zap.Error(err), zap.Int64("product_id", id))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) clear(w http.ResponseWriter, r *http.Request) {
	o, ok := owner(r)
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "no user", nil)
		return
	}

	if err := s.Store.Clear(r.Context(), o); err != nil {
		s.Log.Error("clear cart failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
