package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var ErrInvalidToken = errors.New("invalid token")

type TokenMaker struct {
	secret []byte
	issuer string
}

func NewTokenMaker(secret string) *TokenMaker {
	return &TokenMaker{
		secret: []byte(secret),
		issuer: "atsea-auth",
	}
}

type Claims struct {
	CustomerID int64  `json:"customer_id"`
	Username   string `json:"username"`
	Role       string `json:"role"`
	TokenType  string `json:"token_type"`
	jwt.RegisteredClaims
}

// NewAccess mints a short-lived access token.
func (t *TokenMaker) NewAccess(customerID int64, username, role string, ttl time.Duration) (string, error) {
	tok, _, err := t.mint(customerID, username, role, TokenTypeAccess, ttl)
	return tok, err
}

// NewRefresh mints a refresh token and returns its jti so the server can
// persist and later revoke it.
func (t *TokenMaker) NewRefresh(customerID int64, username, role string, ttl time.Duration) (string, string, error) {
	return t.mint(customerID, username, role, TokenTypeRefresh, ttl)
}

func (t *TokenMaker) mint(customerID int64, username, role, typ string, ttl time.Duration) (string, string, error) {
	now := time.Now()
	jti := uuid.NewString()

	claims := Claims{
		CustomerID: customerID,
		Username:   username,
		Role:       role,
		TokenType:  typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   username,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	return signed, jti, err
}

// Parse validates the signature and the expected token type.
func (t *TokenMaker) Parse(tokenStr, wantType string) (Claims, error) {
	var c Claims

	token, err := jwt.ParseWithClaims(tokenStr, &c, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	})
	if err != nil || token == nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	if c.Issuer != t.issuer || c.TokenType != wantType {
		return Claims{}, ErrInvalidToken
	}
	return c, nil
}
