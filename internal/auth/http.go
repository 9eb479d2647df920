package auth

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"atsea/internal/customer"
	"atsea/pkg/kit"
)

const (
	maxBodyBytes   = 1 << 20
	minPasswordLen = 8

	loginLimitPerMin    = 5
	registerLimitPerMin = 3
	limitWindow         = time.Minute
)

type Server struct {
	Customers  customer.Store
	Refresh    RefreshStore
	JWT        *TokenMaker
	Log        *zap.Logger
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Routes serves /api/auth/*. Login and register carry per-IP rate limits.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	loginLimiter := kit.NewIPRateLimiter(loginLimitPerMin, limitWindow)
	registerLimiter := kit.NewIPRateLimiter(registerLimitPerMin, limitWindow)

	r.With(loginLimiter.Middleware).Post("/login", s.handleLogin)
	r.With(registerLimiter.Middleware).Post("/register", s.handleRegister)
	r.Post("/logout", s.handleLogout)
	r.Post("/refresh-token", s.handleRefresh)

	return r
}

// authResponse matches what the storefront session manager persists:
// both tokens plus the username.
type authResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
	CustomerID   int64  `json:"customerId"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Role         string `json:"role"`
}

func (s *Server) issueTokens(w http.ResponseWriter, r *http.Request, c customer.Customer, status int) {
	access, err := s.JWT.NewAccess(c.CustomerID, c.Username, c.Role, s.AccessTTL)
	if err != nil {
		s.Log.Error("mint access token", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	refresh, jti, err := s.JWT.NewRefresh(c.CustomerID, c.Username, c.Role, s.RefreshTTL)
	if err != nil {
		s.Log.Error("mint refresh token", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	if err := s.Refresh.Save(r.Context(), jti, c.CustomerID, time.Now().Add(s.RefreshTTL)); err != nil {
		s.Log.Error("save refresh token", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	kit.WriteJSON(w, status, authResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.AccessTTL.Seconds()),
		CustomerID:   c.CustomerID,
		Username:     c.Username,
		Email:        c.Email,
		Role:         c.Role,
	})
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if !decode(w, r, &req) {
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		kit.WriteError(w, r, http.StatusBadRequest, "username/password required", nil)
		return
	}

	c, err := s.Customers.Verify(r.Context(), req.Username, req.Password)
	if err != nil {
		kit.WriteError(w, r, http.StatusUnauthorized, "invalid username or password", nil)
		return
	}

	s.issueTokens(w, r, c, http.StatusOK)
}

type registerReq struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
	Email           string `json:"email"`
	Name            string `json:"name"`
	Phone           string `json:"phone"`
	Address         string `json:"address"`
}

// handleRegister creates the account and immediately establishes a session,
// so the client never needs a follow-up login round trip.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if !decode(w, r, &req) {
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if req.Username == "" || req.Password == "" || req.Email == "" {
		kit.WriteError(w, r, http.StatusBadRequest, "username/email/password required", nil)
		return
	}
	if req.PasswordConfirm != "" && req.Password != req.PasswordConfirm {
		kit.WriteError(w, r, http.StatusBadRequest, "passwords do not match", nil)
		return
	}
	if len(req.Password) < minPasswordLen {
		kit.WriteError(w, r, http.StatusBadRequest, "password too short", map[string]any{"min_len": minPasswordLen})
		return
	}

	c, err := s.Customers.Create(r.Context(), customer.Customer{
		Username: req.Username,
		Email:    req.Email,
		Name:     req.Name,
		Phone:    req.Phone,
		Address:  req.Address,
		Role:     "user",
	}, req.Password)
	if err == customer.ErrUsernameExists || err == customer.ErrEmailExists {
		kit.WriteError(w, r, http.StatusConflict, err.Error(), nil)
		return
	}
	if err != nil {
		s.Log.Error("register failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	s.issueTokens(w, r, c, http.StatusCreated)
}

type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

// handleRefresh rotates the refresh token: the presented token is consumed
// and a fresh pair is issued. A consumed or revoked token is a hard 401.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshReq
	if !decode(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		kit.WriteError(w, r, http.StatusBadRequest, "refreshToken required", nil)
		return
	}

	claims, err := s.JWT.Parse(req.RefreshToken, TokenTypeRefresh)
	if err != nil {
		kit.WriteError(w, r, http.StatusUnauthorized, "invalid refresh token", nil)
		return
	}

	live, err := s.Refresh.Consume(r.Context(), claims.ID)
	if err != nil {
		s.Log.Error("consume refresh token", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	if !live {
		kit.WriteError(w, r, http.StatusUnauthorized, "refresh token revoked", nil)
		return
	}

	c, err := s.Customers.GetByUsername(r.Context(), claims.Username)
	if err != nil {
		kit.WriteError(w, r, http.StatusUnauthorized, "unknown customer", nil)
		return
	}

	s.issueTokens(w, r, c, http.StatusOK)
}

type logoutReq struct {
	RefreshToken string `json:"refreshToken"`
}

// handleLogout revokes every refresh token for the customer named by the
// presented token. Always answers 204; the client clears its own state
// regardless.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req logoutReq
	if !decode(w, r, &req) {
		return
	}

	if req.RefreshToken != "" {
		if claims, err := s.JWT.Parse(req.RefreshToken, TokenTypeRefresh); err == nil {
			if err := s.Refresh.RevokeAll(r.Context(), claims.CustomerID); err != nil {
				s.Log.Warn("revoke refresh tokens", zap.Error(err))
			}
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return false
	}
	return true
}
