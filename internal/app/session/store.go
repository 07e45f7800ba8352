package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Store keeps server-side login sessions in Redis, mapping a session id to
// the id of the user it belongs to.
type Store struct {
	rdb    *redis.Client
	prefix string
}

func NewStore(rdb *redis.Client, prefix string) *Store {
	return &Store{rdb: rdb, prefix: prefix}
}

func (s *Store) key(sid string) string {
	return s.prefix + "session:" + sid
}

// Create stores a new session for userID that expires after ttl.
func (s *Store) Create(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	sid := uuid.New().String()
	if err := s.rdb.Set(ctx, s.key(sid), userID, ttl).Err(); err != nil {
		return "", err
	}
	return sid, nil
}

// Get returns the user id for a session, or "" if it is unknown or expired.
func (s *Store) Get(ctx context.Context, sid string) (string, error) {
	if sid == "" {
		return "", nil
	}
	val, err := s.rdb.Get(ctx, s.key(sid)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return val, err
}

// Delete revokes a session. Unknown ids are not an error.
func (s *Store) Delete(ctx context.Context, sid string) error {
	if sid == "" {
		return nil
	}
	return s.rdb.Del(ctx, s.key(sid)).Err()
}
