package database

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MikeMC777/pos-backoffice/internal/apperr"
)

const (
	// CodeForeignKeyViolation is the SQLSTATE of a missing or still-referenced row.
	CodeForeignKeyViolation = "23503"
	codeUniqueViolation     = "23505"
	codeCheckViolation      = "23514"
)

// Translate classifies err for the operation op on entity. Errors that are
// already classified pass through unchanged.
func Translate(err error, op, entity string) error {
	if err == nil {
		return nil
	}
	if _, ok := apperr.As(err); ok {
		return err
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(entity)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case CodeForeignKeyViolation:
			return apperr.Conflict("%s: %s is still referenced or references a missing record", op, entity)
		case codeUniqueViolation:
			return apperr.Conflict("%s: %s already exists", op, entity)
		case codeCheckViolation:
			return apperr.Conflict("%s: %s violates %s", op, entity, pgErr.ConstraintName)
		}
	}

	// A refused or dropped connection surfaces as *net.OpError under pgconn's wrapping.
	var opErr *net.OpError
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) || errors.As(err, &opErr) {
		return apperr.Unavailable(fmt.Errorf("%s: %w", op, err))
	}
	return fmt.Errorf("%s: %w", op, err)
}

// ForeignKey returns the violated constraint when err is a foreign key violation.
func ForeignKey(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == CodeForeignKeyViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}
