package actioncards

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/tidewater-games/actioncard-bot/internal/domain/cards"
	errs "github.com/tidewater-games/actioncard-bot/internal/errors"
)

// redisRepo implements the Repository interface using Redis
type redisRepo struct {
	client redis.UniversalClient
	now    func() time.Time
}

// RedisRepoConfig holds configuration for the Redis repository
type RedisRepoConfig struct {
	Client redis.UniversalClient

	// Now overrides the timestamp source; defaults to the wall clock
	Now func() time.Time
}

// NewRedisRepository creates a Redis-backed action-card repository
func NewRedisRepository(cfg *RedisRepoConfig) Repository {
	if cfg == nil || cfg.Client == nil {
		panic("redis client is required")
	}
	repo := &redisRepo{client: cfg.Client, now: cfg.Now}
	if repo.now == nil {
		repo.now = func() time.Time { return time.Now().UTC() }
	}
	return repo
}

func cardKey(id string) string {
	return fmt.Sprintf("actioncard:%s", id)
}

func ownerKey(ownerID string) string {
	return fmt.Sprintf("actor:%s:actioncards", ownerID)
}

// Create stores a new action card
func (r *redisRepo) Create(ctx context.Context, card *cards.ActionCard) error {
	if card == nil {
		return errs.InvalidArgument("card cannot be nil")
	}

	exists, err := r.client.Exists(ctx, cardKey(card.ID)).Result()
	if err != nil {
		return errs.Wrap(err, "failed to check card existence")
	}
	if exists > 0 {
		return errs.AlreadyExistsf("action card already exists: %s", card.ID)
	}

	now := r.now()
	card.CreatedAt = now
	card.UpdatedAt = now

	return r.set(ctx, card)
}

// Get retrieves an action card by ID
func (r *redisRepo) Get(ctx context.Context, id string) (*cards.ActionCard, error) {
	data, err := r.client.Get(ctx, cardKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, errs.NotFoundf("action card not found: %s", id)
		}
		return nil, errs.Wrapf(err, "failed to get action card '%s'", id)
	}

	var card cards.ActionCard
	if err := json.Unmarshal(data, &card); err != nil {
		return nil, errs.Wrapf(err, "failed to unmarshal action card '%s'", id)
	}

	return &card, nil
}

// GetBatch retrieves several action cards in parallel, skipping missing IDs
func (r *redisRepo) GetBatch(ctx context.Context, ids []string) ([]*cards.ActionCard, error) {
	out := make([]*cards.ActionCard, 0, len(ids))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			card, err := r.Get(ctx, id)
			if err != nil {
				if errs.IsNotFound(err) {
					return nil
				}
				return err
			}
			mu.Lock()
			out = append(out, card)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update modifies an existing action card
func (r *redisRepo) Update(ctx context.Context, card *cards.ActionCard) error {
	if card == nil {
		return errs.InvalidArgument("card cannot be nil")
	}

	old, err := r.Get(ctx, card.ID)
	if err != nil {
		return err
	}

	card.UpdatedAt = r.now()

	if old.OwnerID != card.OwnerID {
		if err := r.client.SRem(ctx, ownerKey(old.OwnerID), card.ID).Err(); err != nil {
			return errs.Wrap(err, "failed to update owner index")
		}
	}

	return r.set(ctx, card)
}

// Delete removes an action card
func (r *redisRepo) Delete(ctx context.Context, id string) error {
	card, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	pipe := r.client.Pipeline()
	pipe.Del(ctx, cardKey(id))
	pipe.SRem(ctx, ownerKey(card.OwnerID), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return errs.Wrapf(err, "failed to delete action card '%s'", id)
	}

	return nil
}

// ListByOwner retrieves all action cards owned by an actor
func (r *redisRepo) ListByOwner(ctx context.Context, ownerID string) ([]*cards.ActionCard, error) {
	ids, err := r.client.SMembers(ctx, ownerKey(ownerID)).Result()
	if err != nil {
		return nil, errs.Wrapf(err, "failed to list cards for owner '%s'", ownerID)
	}

	return r.GetBatch(ctx, ids)
}

func (r *redisRepo) set(ctx context.Context, card *cards.ActionCard) error {
	data, err := json.Marshal(card)
	if err != nil {
		return errs.Wrap(err, "failed to marshal action card")
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, cardKey(card.ID), string(data), 0)
	pipe.SAdd(ctx, ownerKey(card.OwnerID), card.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return errs.Wrapf(err, "failed to store action card '%s'", card.ID)
	}

	return nil
}
