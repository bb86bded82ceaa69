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

// SnapshotRepository persists the full tracker state as three JSON documents
// in the key-value store. Saves overwrite; there is no merging.
type SnapshotRepository struct {
	rdb *redis.Client
}

func NewSnapshotRepository(rdb *redis.Client) *SnapshotRepository {
	return &SnapshotRepository{rdb: rdb}
}

// Load reads the persisted snapshot. Missing keys yield empty sections, so a
// fresh store loads as an empty tracker.
func (r *SnapshotRepository) Load(ctx context.Context) (*model.Snapshot, error) {
	snap := &model.Snapshot{
		Records: model.Records{},
		Locks:   map[string]bool{},
	}

	if err := r.getJSON(ctx, config.StorageKey.Students(), &snap.Students); err != nil {
		return nil, fmt.Errorf("load students: %w", err)
	}
	if err := r.getJSON(ctx, config.StorageKey.AttendanceRecords(), &snap.Records); err != nil {
		return nil, fmt.Errorf("load attendance records: %w", err)
	}
	if err := r.getJSON(ctx, config.StorageKey.TeacherModifications(), &snap.Locks); err != nil {
		return nil, fmt.Errorf("load teacher modifications: %w", err)
	}
	return snap, nil
}

// Save overwrites the persisted snapshot in a single pipeline.
func (r *SnapshotRepository) Save(ctx context.Context, snap *model.Snapshot) error {
	students, err := json.Marshal(snap.Students)
	if err != nil {
		return fmt.Errorf("marshal students: %w", err)
	}
	records, err := json.Marshal(snap.Records)
	if err != nil {
		return fmt.Errorf("marshal attendance records: %w", err)
	}
	locks, err := json.Marshal(snap.Locks)
	if err != nil {
		return fmt.Errorf("marshal teacher modifications: %w", err)
	}

	pipe := r.rdb.Pipeline()
	pipe.Set(ctx, config.StorageKey.Students(), students, 0)
	pipe.Set(ctx, config.StorageKey.AttendanceRecords(), records, 0)
	pipe.Set(ctx, config.StorageKey.TeacherModifications(), locks, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

func (r *SnapshotRepository) getJSON(ctx context.Context, key string, dst interface{}) error {
	raw, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	}
	return json.Unmarshal(raw, dst)
}
