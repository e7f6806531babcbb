package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/typemnm/Mornoningo/internal/models"
)

// RedisStateRepository stores the study state under a single Redis key.
type RedisStateRepository struct {
	client redis.Cmdable
	key    string
}

// NewRedisStateRepository constructs the repository.
func NewRedisStateRepository(client redis.Cmdable, key string) *RedisStateRepository {
	return &RedisStateRepository{client: client, key: key}
}

func (r *RedisStateRepository) Load(ctx context.Context) (*models.StudyState, error) {
	raw, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get %s: %w", r.key, err)
	}
	return DecodeState(raw)
}

func (r *RedisStateRepository) Save(ctx context.Context, state *models.StudyState) error {
	payload, err := EncodeState(state)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key, payload, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.key, err)
	}
	return nil
}
