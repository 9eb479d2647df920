package customer

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
	pgUniqueCode = "23505"
)

const customerCols = `customer_id, username, email, name, phone, address, role, enabled, pass_hash`

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.db.PingContext(ctx)
	})
}

func (s *PostgresStore) Create(ctx context.Context, c Customer, password string) (Customer, error) {
	c.Username = normalize(c.Username)
	c.Email = normalize(c.Email)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Customer{}, err
	}
	c.PassHash = hash
	c.Enabled = true

	err = withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.db.QueryRowContext(ctx, `
			INSERT INTO customers (username, email, name, phone, address, role, enabled, pass_hash)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING customer_id
		`, c.Username, c.Email, c.Name, c.Phone, c.Address, c.Role, c.Enabled, c.PassHash).
			Scan(&c.CustomerID)
	})
	if isUniqueViolation(err, "customers_username_key") {
		return Customer{}, ErrUsernameExists
	}
	if isUniqueViolation(err, "customers_email_key") {
		return Customer{}, ErrEmailExists
	}
	if err != nil {
		return Customer{}, err
	}
	return c, nil
}

func (s *PostgresStore) GetByUsername(ctx context.Context, username string) (Customer, error) {
	var c Customer
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.db.QueryRowContext(ctx, `
			SELECT `+customerCols+`
			FROM customers
			WHERE username = $1
		`, normalize(username)).Scan(
			&c.CustomerID, &c.Username, &c.Email, &c.Name, &c.Phone,
			&c.Address, &c.Role, &c.Enabled, &c.PassHash,
		)
	})
	if err == sql.ErrNoRows {
		return Customer{}, ErrNotFound
	}
	if err != nil {
		return Customer{}, err
	}
	return c, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Customer, error) {
	var out []Customer

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT `+customerCols+`
			FROM customers
			ORDER BY customer_id ASC
		`)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]Customer, 0, 16)
		for rows.Next() {
			var c Customer
			if err := rows.Scan(
				&c.CustomerID, &c.Username, &c.Email, &c.Name, &c.Phone,
				&c.Address, &c.Role, &c.Enabled, &c.PassHash,
			); err != nil {
				return err
			}
			out = append(out, c)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) Verify(ctx context.Context, username, password string) (Customer, error) {
	c, err := s.GetByUsername(ctx, username)
	if err != nil {
		return Customer{}, ErrInvalidCredentials
	}
	if !c.Enabled {
		return Customer{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(c.PassHash, []byte(password)); err != nil {
		return Customer{}, ErrInvalidCredentials
	}
	return c, nil
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueCode && pgErr.ConstraintName == constraint
}
