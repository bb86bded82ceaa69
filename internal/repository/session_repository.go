package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/classtrack/rollcall-backend/internal/config"
	"github.com/classtrack/rollcall-backend/internal/model"
)

// SessionRepository stores the single active session snapshot under the
// currentUser key so a restarted process can resume the login.
type SessionRepository struct {
	rdb *redis.Client
}

func NewSessionRepository(rdb *redis.Client) *SessionRepository {
	return &SessionRepository{rdb: rdb}
}

// Get returns the persisted session, or nil when logged out.
func (r *SessionRepository) Get(ctx context.Context) (*model.Session, error) {
	raw, err := r.rdb.Get(ctx, config.StorageKey.CurrentUser()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("read session: %w", err)
	}
	var s model.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}

// Put replaces the persisted session. A newer login overwrites the previous
// one unconditionally.
func (r *SessionRepository) Put(ctx context.Context, s *model.Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return r.rdb.Set(ctx, config.StorageKey.CurrentUser(), raw, 0).Err()
}

// Delete removes the persisted session on logout.
func (r *SessionRepository) Delete(ctx context.Context) error {
	return r.rdb.Del(ctx, config.StorageKey.CurrentUser()).Err()
}
