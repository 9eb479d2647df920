package customer

import (
	"context"
	"errors"
)

var (
	ErrUsernameExists     = errors.New("username already exists")
	ErrEmailExists        = errors.New("email already exists")
	ErrNotFound           = errors.New("customer not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Customer holds the account record. PassHash never leaves the store layer;
// the wire representation strips it.
type Customer struct {
	CustomerID int64
	Username   string
	Email      string
	Name       string
	Phone      string
	Address    string
	Role       string
	Enabled    bool
	PassHash   []byte
}

type Store interface {
	// Create hashes password and inserts the record, assigning CustomerID.
	Create(ctx context.Context, c Customer, password string) (Customer, error)
	GetByUsername(ctx context.Context, username string) (Customer, error)
	List(ctx context.Context) ([]Customer, error)
	// Verify checks username/password and returns the record on success.
	Verify(ctx context.Context, username, password string) (Customer, error)
	Ping(ctx context.Context) error
}
