package gameactors

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/tidewater-games/actioncard-bot/internal/domain/actors"
	errs "github.com/tidewater-games/actioncard-bot/internal/errors"
)

// redisRepo implements the Repository interface using Redis
type redisRepo struct {
	client redis.UniversalClient
}

// NewRedisRepository creates a Redis-backed actor repository
func NewRedisRepository(client redis.UniversalClient) Repository {
	if client == nil {
		panic("redis client is required")
	}
	return &redisRepo{client: client}
}

func actorKey(id string) string {
	return fmt.Sprintf("actor:%s", id)
}

// Create stores a new actor
func (r *redisRepo) Create(ctx context.Context, actor *actors.Actor) error {
	if actor == nil {
		return errs.InvalidArgument("actor cannot be nil")
	}

	exists, err := r.client.Exists(ctx, actorKey(actor.ID)).Result()
	if err != nil {
		return errs.Wrap(err, "failed to check actor existence")
	}
	if exists > 0 {
		return errs.AlreadyExistsf("actor already exists: %s", actor.ID)
	}

	return r.set(ctx, actor)
}

// Get retrieves an actor by ID
func (r *redisRepo) Get(ctx context.Context, id string) (*actors.Actor, error) {
	data, err := r.client.Get(ctx, actorKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, errs.NotFoundf("actor not found: %s", id)
		}
		return nil, errs.Wrapf(err, "failed to get actor '%s'", id)
	}

	var actor actors.Actor
	if err := json.Unmarshal(data, &actor); err != nil {
		return nil, errs.Wrapf(err, "failed to unmarshal actor '%s'", id)
	}

	return &actor, nil
}

// Update modifies an existing actor
func (r *redisRepo) Update(ctx context.Context, actor *actors.Actor) error {
	if actor == nil {
		return errs.InvalidArgument("actor cannot be nil")
	}

	exists, err := r.client.Exists(ctx, actorKey(actor.ID)).Result()
	if err != nil {
		return errs.Wrap(err, "failed to check actor existence")
	}
	if exists == 0 {
		return errs.NotFoundf("actor not found: %s", actor.ID)
	}

	return r.set(ctx, actor)
}

// Delete removes an actor
func (r *redisRepo) Delete(ctx context.Context, id string) error {
	deleted, err := r.client.Del(ctx, actorKey(id)).Result()
	if err != nil {
		return errs.Wrapf(err, "failed to delete actor '%s'", id)
	}
	if deleted == 0 {
		return errs.NotFoundf("actor not found: %s", id)
	}
	return nil
}

func (r *redisRepo) set(ctx context.Context, actor *actors.Actor) error {
	data, err := json.Marshal(actor)
	if err != nil {
		return errs.Wrap(err, "failed to marshal actor")
	}

	if err := r.client.Set(ctx, actorKey(actor.ID), string(data), 0).Err(); err != nil {
		return errs.Wrapf(err, "failed to store actor '%s'", actor.ID)
	}
	return nil
}
