package catalog

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"atsea/pkg/kit"
)

const maxBodyBytes = 1 << 20

type Server struct {
	Store Store
	Log   *zap.Logger
}

// Routes serves the /api/product/ resource. Mounted under /api/product by
// the app router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", s.list)
	r.Post("/", s.create)
	r.Get("/{id}", s.get)
	return r
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	products, err := s.Store.ListSortedByID(r.Context())
	if err != nil {
		s.Log.Error("list products failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	kit.WriteJSON(w, http.StatusOK, products)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad product id", nil)
		return
	}

	p, ok, err := s.Store.Get(r.Context(), id)
	if err != nil {
		s.Log.Error("get product failed", zap.Error(err), zap.Int64("product_id", id))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"productId": id})
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var p Product
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		kit.WriteError(w, r, http.StatusBadRequest, "name required", nil)
		return
	}
	if p.Price < 0 {
		kit.WriteError(w, r, http.StatusBadRequest, "price must be non-negative", nil)
		return
	}

	created, err := s.Store.Create(r.Context(), p)
	if err == ErrDuplicateName {
		kit.WriteError(w, r, http.StatusConflict, err.Error(), nil)
		return
	}
	if err != nil {
		s.Log.Error("create product failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	kit.WriteJSON(w, http.StatusCreated, created)
}
