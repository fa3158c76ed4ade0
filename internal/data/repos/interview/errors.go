package interview

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrDuplicate marks an insert that hit the session_id uniqueness
// constraint. Callers treat it as the idempotent already-written case.
var ErrDuplicate = errors.New("record already exists for session")

func isDuplicateErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.TrimSpace(pgErr.Code) == "23505" {
		return true
	}
	msg := strings.ToLower(err.Error())
	// sqlite (tests) and drivers that do not surface a typed pg error.
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint")
}
