package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
)

const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	return pgCode(err) == pgUniqueViolation
}

// wrapErr traduce códigos de PostgreSQL a errores de dominio y añade contexto al resto.
// 23514 solo puede venir del CHECK (stock >= 0) de products.
func wrapErr(op string, err error) error {
	switch pgCode(err) {
	case pgUniqueViolation:
		return fmt.Errorf("%s: %w", op, domain.ErrDuplicate)
	case pgCheckViolation:
		return fmt.Errorf("%s: %w", op, domain.ErrInsufficientStock)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func fromNullable(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
