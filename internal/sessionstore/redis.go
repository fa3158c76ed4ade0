package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/mockview-backend/internal/domain/interview"
	"github.com/yungbote/mockview-backend/internal/platform/logger"
)

const keyPrefix = "interview:session:"

type redisStore struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

// NewRedisStore connects to REDIS_ADDR and returns the production session
// store. TTL is applied at creation; overwrites keep the remaining TTL so an
// active interview still expires one idle window after its last touch is
// refreshed by Touch-style writes, not extended implicitly.
func NewRedisStore(log *logger.Logger, ttl time.Duration) (Store, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    strings.TrimSpace(os.Getenv("REDIS_PASSWORD")),
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisStore{
		log: log.With("service", "RedisSessionStore"),
		rdb: rdb,
		ttl: ttl,
	}, nil
}

func (s *redisStore) Create(ctx context.Context, sess *interview.Session) error {
	if err := sess.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	raw, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	ok, err := s.rdb.SetNX(ctx, keyPrefix+sess.ID, raw, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("redis setnx: %w", err)
	}
	if !ok {
		return ErrAlreadyExists
	}
	return nil
}

func (s *redisStore) Get(ctx context.Context, id string) (*interview.Session, error) {
	raw, err := s.rdb.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return decodeSession(raw)
}

func (s *redisStore) Put(ctx context.Context, sess *interview.Session) error {
	if err := sess.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	raw, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	// KeepTTL: a turn write must not extend the session past its expiry
	// window from creation.
	res, err := s.rdb.SetXX(ctx, keyPrefix+sess.ID, raw, goredis.KeepTTL).Result()
	if err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	if !res {
		return ErrNotFound
	}
	return nil
}

func (s *redisStore) Delete(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func decodeSession(raw []byte) (*interview.Session, error) {
	var sess interview.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := sess.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &sess, nil
}
