package pgx

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// TaxDBStorage implements the store interfaces on top of a pgx connection
// pool. The pool must have pgvector types registered (see cmd wiring).
type TaxDBStorage struct {
	conn *pgxpool.Pool
}

// NewTaxDBStorage wraps an existing connection pool.
func NewTaxDBStorage(conn *pgxpool.Pool) *TaxDBStorage {
	return &TaxDBStorage{conn: conn}
}
