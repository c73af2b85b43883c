package postgres

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/inventario-bodegas/internal/domain"
)

const (
	codeUniqueViolation = "23505"
	codeCheckViolation  = "23514"
	codeStringTooLong   = "22001"
	codeOutOfRange      = "22003"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	return pgCode(err) == codeUniqueViolation
}

// isCheckViolation detecta CHECK (stock >= 0) y similares.
func isCheckViolation(err error) bool {
	return pgCode(err) == codeCheckViolation
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isOutOfRange detecta enteros o numéricos que no caben en la columna (22003).
func isOutOfRange(err error) bool {
	return pgCode(err) == codeOutOfRange
}

// wrapWrite traduce errores de escritura: únicos a ErrDuplicate, valores que no caben
// en la columna a ErrInvalidInput, el resto se envuelve con op.
func wrapWrite(op string, err error) error {
	switch pgCode(err) {
	case codeUniqueViolation:
		return fmt.Errorf("%s: %w", op, domain.ErrDuplicate)
	case codeStringTooLong, codeOutOfRange:
		return fmt.Errorf("%s: %w: %v", op, domain.ErrInvalidInput, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// nullIfEmpty para columnas UUID opcionales.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// validUUID evita enviar a PostgreSQL ids mal formados (22P02): se tratan como inexistentes.
func validUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
