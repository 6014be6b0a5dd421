package gameactors

import (
	"context"
	"sync"

	"github.com/tidewater-games/actioncard-bot/internal/domain/actors"
	errs "github.com/tidewater-games/actioncard-bot/internal/errors"
)

type inMemoryRepository struct {
	mu     sync.RWMutex
	actors map[string]*actors.Actor
}

// NewInMemoryRepository creates a new in-memory actor repository
func NewInMemoryRepository() Repository {
	return &inMemoryRepository{
		actors: make(map[string]*actors.Actor),
	}
}

// Create stores a new actor
func (r *inMemoryRepository) Create(ctx context.Context, actor *actors.Actor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.actors[actor.ID]; exists {
		return errs.AlreadyExistsf("actor already exists: %s", actor.ID)
	}

	r.actors[actor.ID] = actor.Clone()
	return nil
}

// Get retrieves an actor by ID
func (r *inMemoryRepository) Get(ctx context.Context, id string) (*actors.Actor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	actor, exists := r.actors[id]
	if !exists {
		return nil, errs.NotFoundf("actor not found: %s", id)
	}

	return actor.Clone(), nil
}

// Update modifies an existing actor
func (r *inMemoryRepository) Update(ctx context.Context, actor *actors.Actor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.actors[actor.ID]; !exists {
		return errs.NotFoundf("actor not found: %s", actor.ID)
	}

	r.actors[actor.ID] = actor.Clone()
	return nil
}

// Delete removes an actor
func (r *inMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.actors[id]; !exists {
		return errs.NotFoundf("actor not found: %s", id)
	}

	delete(r.actors, id)
	return nil
}
