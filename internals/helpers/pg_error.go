// internals/helpers/pg_error.go
package helper

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// --- PG error mapping ---

// Matched structurally so both lib/pq and pgx errors (possibly wrapped) fit.
type pgSQLErr interface {
	SQLState() string
	Error() string
}

// PGSQLState returns the SQLSTATE of err, or "" when err is not a PG error.
func PGSQLState(err error) string {
	var pgErr pgSQLErr
	if errors.As(err, &pgErr) {
		return pgErr.SQLState()
	}
	return ""
}

func mapPGError(err error) (int, string) {
	// 23P01 = exclusion_violation
	// 23503 = foreign_key_violation
	// 23505 = unique_violation
	switch PGSQLState(err) {
	case "23P01":
		return http.StatusConflict, "Conflicting rows (exclusion violation)."
	case "23503":
		return http.StatusBadRequest, "Referenced row not found (FK violation)."
	case "23505":
		return http.StatusConflict, "Duplicate data (unique violation)."
	}
	return http.StatusInternalServerError, err.Error()
}

func WritePGError(c *fiber.Ctx, err error) error {
	code, msg := mapPGError(err)
	return JsonError(c, code, msg)
}
