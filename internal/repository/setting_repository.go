package repository

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/classtrack/rollcall-backend/internal/config"
)

// SettingRepository stores user settings as one hash in the key-value store.
type SettingRepository struct {
	rdb *redis.Client
}

func NewSettingRepository(rdb *redis.Client) *SettingRepository {
	return &SettingRepository{rdb: rdb}
}

// GetAll returns every stored setting. Missing hash yields an empty map.
func (r *SettingRepository) GetAll(ctx context.Context) (map[string]string, error) {
	return r.rdb.HGetAll(ctx, config.StorageKey.Settings()).Result()
}

// Set upserts one setting.
func (r *SettingRepository) Set(ctx context.Context, key, value string) error {
	return r.rdb.HSet(ctx, config.StorageKey.Settings(), key, value).Err()
}
