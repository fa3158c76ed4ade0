package sessionstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/yungbote/mockview-backend/internal/domain/interview"
)

type memoryEntry struct {
	raw       []byte
	expiresAt time.Time
}

type memoryStore struct {
	mu  sync.Mutex
	ttl time.Duration
	now func() time.Time
	m   map[string]memoryEntry
}

// NewMemoryStore is a process-local Store with real expiry. Used by tests
// and by local runs without a REDIS_ADDR. Entries round-trip through JSON so
// the decode/validate path matches the Redis store.
func NewMemoryStore(ttl time.Duration) Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &memoryStore{
		ttl: ttl,
		now: time.Now,
		m:   map[string]memoryEntry{},
	}
}

func (s *memoryStore) Create(ctx context.Context, sess *interview.Session) error {
	if err := sess.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	raw, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.m[sess.ID]; ok && s.now().Before(e.expiresAt) {
		return ErrAlreadyExists
	}
	s.m[sess.ID] = memoryEntry{raw: raw, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *memoryStore) Get(ctx context.Context, id string) (*interview.Session, error) {
	s.mu.Lock()
	e, ok := s.m[id]
	if ok && !s.now().Before(e.expiresAt) {
		delete(s.m, id)
		ok = false
	}
	s.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	return decodeSession(e.raw)
}

func (s *memoryStore) Put(ctx context.Context, sess *interview.Session) error {
	if err := sess.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	raw, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.m[sess.ID]
	if !ok || !s.now().Before(e.expiresAt) {
		delete(s.m, sess.ID)
		return ErrNotFound
	}
	// Overwrite keeps the remaining TTL, mirroring SET KEEPTTL.
	s.m[sess.ID] = memoryEntry{raw: raw, expiresAt: e.expiresAt}
	return nil
}

func (s *memoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, id)
	return nil
}

// seedRaw plants an arbitrary payload under a key. Test hook for exercising
// the malformed-entry path.
func (s *memoryStore) seedRaw(id string, raw []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[id] = memoryEntry{raw: raw, expiresAt: s.now().Add(s.ttl)}
}
