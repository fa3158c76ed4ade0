package sessionstore

import (
	"context"
	"errors"
	"time"

	"github.com/yungbote/mockview-backend/internal/domain/interview"
)

var (
	// ErrNotFound is returned for absent or expired session keys.
	ErrNotFound = errors.New("session not found")
	// ErrAlreadyExists is returned when Create hits an existing key.
	ErrAlreadyExists = errors.New("session already exists")
	// ErrMalformed is returned when a stored entry fails to decode or
	// validate. Callers must not act on a half-decoded session.
	ErrMalformed = errors.New("session entry malformed")
)

// Store is the ephemeral, TTL-bound home of live interview sessions. Writes
// are full overwrites; per-session serialization is the orchestrator's job.
type Store interface {
	Create(ctx context.Context, s *interview.Session) error
	Get(ctx context.Context, id string) (*interview.Session, error)
	Put(ctx context.Context, s *interview.Session) error
	Delete(ctx context.Context, id string) error
}

// DefaultTTL matches the historical one-hour session expiry.
const DefaultTTL = time.Hour
