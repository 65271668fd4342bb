// Package store is the relational unit of work shared by the repositories.
//
// Store wraps a process-wide *gorm.DB pool. Repositories never hold on to a
// session: every call goes through Session or InTx, which derive a fresh
// handle bound to the caller's context.
package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNotFound            = errors.New("record not found")
	ErrNoRowsAffected      = errors.New("no rows affected")
	ErrForeignKeyViolation = errors.New("foreign key violation")
)

// SQLSTATE codes raised by PostgreSQL.
const (
	codeForeignKeyViolation = "23503"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Session returns a request-scoped handle for reads.
func (s *Store) Session(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// InTx runs fn in a single transaction. It commits when fn returns nil and
// rolls back otherwise. The error is passed through Classify.
func (s *Store) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return Classify(s.db.WithContext(ctx).Transaction(fn))
}

// Affected fails with ErrNoRowsAffected when a write reports zero rows.
func Affected(res *gorm.DB) error {
	if res.Error != nil {
		return Classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

// Classify maps driver errors onto the package sentinels while keeping the
// original error in the chain.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrForeignKeyViolation) ||
		errors.Is(err, ErrNoRowsAffected) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.Join(ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == codeForeignKeyViolation {
		return errors.Join(ErrForeignKeyViolation, err)
	}
	return err
}
