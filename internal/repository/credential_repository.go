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

// CredentialRepository stores the fixed per-role credential table. One record
// per role, seeded by cmd/seed-credentials; the auth service falls back to
// built-in defaults for unseeded roles.
type CredentialRepository struct {
	rdb *redis.Client
}

func NewCredentialRepository(rdb *redis.Client) *CredentialRepository {
	return &CredentialRepository{rdb: rdb}
}

// Get returns the credential record for a role, or nil when unseeded.
func (r *CredentialRepository) Get(ctx context.Context, role model.Role) (*model.Credential, error) {
	raw, err := r.rdb.Get(ctx, config.StorageKey.Credential(string(role))).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("read credential: %w", err)
	}
	var cred model.Credential
	if err := json.Unmarshal(raw, &cred); err != nil {
		return nil, fmt.Errorf("decode credential: %w", err)
	}
	return &cred, nil
}

// Put writes the credential record for a role.
func (r *CredentialRepository) Put(ctx context.Context, role model.Role, cred model.Credential) error {
	raw, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("encode credential: %w", err)
	}
	return r.rdb.Set(ctx, config.StorageKey.Credential(string(role)), raw, 0).Err()
}
