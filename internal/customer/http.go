package customer

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"atsea/pkg/kit"
)

const (
	maxBodyBytes = 1 << 20
	minPasswordLen = 8
)

type Server struct {
	Store Store
	Log   *zap.Logger
}

// wireCustomer is the public representation; the password hash stays inside.
type wireCustomer struct {
	CustomerID int64  `json:"customerId"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	Role       string `json:"role"`
}

func toWire(c Customer) wireCustomer {
	return wireCustomer{
		CustomerID: c.CustomerID,
		Username:   c.Username,
		Email:      c.Email,
		Name:       c.Name,
		Phone:      c.Phone,
		Address:    c.Address,
		Role:       c.Role,
	}
}

// Routes serves /api/customer/. The username lookup keeps the legacy
// /username={u} path shape the storefront client expects.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", s.list)
	r.Post("/", s.create)
	r.Get("/username={username}", s.getByUsername)
	return r
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	customers, err := s.Store.List(r.Context())
	if err != nil {
		s.Log.Error("list customers failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	out := make([]wireCustomer, 0, len(customers))
	for _, c := range customers {
		out = append(out, toWire(c))
	}
	kit.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) getByUsername(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	c, err := s.Store.GetByUsername(r.Context(), username)
	if err == ErrNotFound {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"username": username})
		return
	}
	if err != nil {
		s.Log.Error("get customer failed", zap.Error(err), zap.String("username", username))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	kit.WriteJSON(w, http.StatusOK, toWire(c))
}

type createReq struct {
	CustomerID int64  `json:"customerId"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	Role       string `json:"role"`
	Enabled    string `json:"enabled"`
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req createReq
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	req.Password = strings.TrimSpace(req.Password)

	if req.Username == "" || req.Password == "" || req.Email == "" {
		kit.WriteError(w, r, http.StatusBadRequest, "username/email/password required", nil)
		return
	}
	if len(req.Password) < minPasswordLen {
		kit.WriteError(w, r, http.StatusBadRequest, "password too short", map[string]any{"min_len": minPasswordLen})
		return
	}

	role := req.Role
	if role == "" {
		role = "user"
	}

	// The caller's customerId is a placeholder; the store assigns the real one.
	created, err := s.Store.Create(r.Context(), Customer{
		Username: req.Username,
		Email:    req.Email,
		Name:     req.Name,
		Phone:    req.Phone,
		Address:  req.Address,
		Role:     role,
	}, req.Password)
	if err == ErrUsernameExists || err == ErrEmailExists {
		kit.WriteError(w, r, http.StatusConflict, err.Error(), nil)
		return
	}
	if err != nil {
		s.Log.Error("create customer failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	kit.WriteJSON(w, http.StatusCreated, toWire(created))
}
