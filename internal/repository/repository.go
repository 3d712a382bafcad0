package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	custom_error "splitters/pkg/errors"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/lib/pq"
)

type Repository struct {
	DB            *sql.DB
	GoquDBWrapper *goqu.Database
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		DB:            db,
		GoquDBWrapper: goqu.New("postgres", db),
	}
}

// WithTransaction runs fn inside a transaction that is committed when fn returns nil and
// rolled back otherwise.
func WithTransaction(ctx context.Context, db *goqu.Database, fn func(tx *goqu.TxDatabase) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	err = fn(tx)
	return
}

// WrapPQError turns postgres constraint violations into custom_error types and wraps
// everything else with context.
func WrapPQError(err error, message string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505", "23503":
			return custom_error.WrapDBError(message, string(pqErr.Code))
		}
	}

	return fmt.Errorf("%s: %w", message, err)
}

// WithSnapshot runs fn in a read-only repeatable-read transaction so all reads see the same
// committed state.
func WithSnapshot(ctx context.Context, db *goqu.Database, fn func(tx *goqu.TxDatabase) error) error {
	tx, err := db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}
