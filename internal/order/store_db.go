package order

import (
	"context"
	"database/sql"
	"time"
)

const queryTimeout = 5 * time.Second

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Create(ctx context.Context, o Order) (Order, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return Order{}, err
	}
	defer func() { _ = tx.Rollback() }()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (order_date, customer_id, total)
		VALUES ($1, $2, $3)
		RETURNING order_id
	`, o.OrderDate, o.CustomerID, o.Total).Scan(&o.OrderID)
	if err != nil {
		return Order{}, err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO order_items (order_id, product_id, quantity)
		VALUES ($1, $2, $3)
	`)
	if err != nil {
		return Order{}, err
	}
	defer stmt.Close()

	for productID, qty := range o.Products {
		if _, err := stmt.ExecContext(ctx, o.OrderID, productID, qty); err != nil {
			return Order{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Order{}, err
	}
	return o, nil
}

func (s *PostgresStore) Get(ctx context.Context, id int64) (Order, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var o Order
	err := s.db.QueryRowContext(ctx, `
		SELECT order_id, order_date, customer_id, total
		FROM orders
		WHERE order_id = $1
	`, id).Scan(&o.OrderID, &o.OrderDate, &o.CustomerID, &o.Total)
	if err == sql.ErrNoRows {
		return Order{}, false, nil
	}
	if err != nil {
		return Order{}, false, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, quantity
		FROM order_items
		WHERE order_id = $1
	`, id)
	if err != nil {
		return Order{}, false, err
	}
	defer rows.Close()

	o.Products = make(map[int64]int, 8)
	for rows.Next() {
		var (
			productID int64
			qty       int
		)
		if err := rows.Scan(&productID, &qty); err != nil {
			return Order{}, false, err
		}
		o.Products[productID] = qty
	}
	if err := rows.Err(); err != nil {
		return Order{}, false, err
	}

	return o, true, nil
}
