package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/clubhub/club-gateway/internal/domain"
)

const credentialKeyPrefix = "credential:"

// RedisCredentialRepository stores sealed credential records in Redis.
type RedisCredentialRepository struct {
	client *redis.Client
	sealer *Sealer
}

// NewRedisCredentialRepository constructs the repository.
func NewRedisCredentialRepository(client *redis.Client, sealer *Sealer) *RedisCredentialRepository {
	return &RedisCredentialRepository{client: client, sealer: sealer}
}

func (r *RedisCredentialRepository) Put(ctx context.Context, record domain.CredentialRecord, ttl time.Duration) error {
	plain, err := json.Marshal(record)
	if err != nil {
		return err
	}
	sealed, err := r.sealer.Seal(plain)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, credentialKeyPrefix+record.SessionID, sealed, ttl).Err()
}

func (r *RedisCredentialRepository) Get(ctx context.Context, sessionID string) (*domain.CredentialRecord, error) {
	sealed, err := r.client.Get(ctx, credentialKeyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	plain, err := r.sealer.Open(sealed)
	if err != nil {
		return nil, err
	}

	var record domain.CredentialRecord
	if err := json.Unmarshal(plain, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *RedisCredentialRepository) Delete(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, credentialKeyPrefix+sessionID).Err()
}
