package actioncards

import (
	"context"
	"sync"

	"github.com/tidewater-games/actioncard-bot/internal/domain/cards"
	errs "github.com/tidewater-games/actioncard-bot/internal/errors"
)

type inMemoryRepository struct {
	mu      sync.RWMutex
	cards   map[string]*cards.ActionCard
	byOwner map[string][]string // ownerID -> card IDs
}

// NewInMemoryRepository creates a new in-memory action-card repository
func NewInMemoryRepository() Repository {
	return &inMemoryRepository{
		cards:   make(map[string]*cards.ActionCard),
		byOwner: make(map[string][]string),
	}
}

// Create stores a new action card
func (r *inMemoryRepository) Create(ctx context.Context, card *cards.ActionCard) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.cards[card.ID]; exists {
		return errs.AlreadyExistsf("action card already exists: %s", card.ID)
	}

	r.cards[card.ID] = card.Clone()
	r.byOwner[card.OwnerID] = append(r.byOwner[card.OwnerID], card.ID)
	return nil
}

// Get retrieves an action card by ID
func (r *inMemoryRepository) Get(ctx context.Context, id string) (*cards.ActionCard, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	card, exists := r.cards[id]
	if !exists {
		return nil, errs.NotFoundf("action card not found: %s", id)
	}

	return card.Clone(), nil
}

// GetBatch retrieves several action cards, skipping missing IDs
func (r *inMemoryRepository) GetBatch(ctx context.Context, ids []string) ([]*cards.ActionCard, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*cards.ActionCard, 0, len(ids))
	for _, id := range ids {
		if card, exists := r.cards[id]; exists {
			out = append(out, card.Clone())
		}
	}
	return out, nil
}

// Update modifies an existing action card
func (r *inMemoryRepository) Update(ctx context.Context, card *cards.ActionCard) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, exists := r.cards[card.ID]
	if !exists {
		return errs.NotFoundf("action card not found: %s", card.ID)
	}

	if old.OwnerID != card.OwnerID {
		r.removeFromOwner(old.OwnerID, card.ID)
		r.byOwner[card.OwnerID] = append(r.byOwner[card.OwnerID], card.ID)
	}

	r.cards[card.ID] = card.Clone()
	return nil
}

// Delete removes an action card
func (r *inMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	card, exists := r.cards[id]
	if !exists {
		return errs.NotFoundf("action card not found: %s", id)
	}

	delete(r.cards, id)
	r.removeFromOwner(card.OwnerID, id)
	return nil
}

// ListByOwner retrieves all action cards owned by an actor
func (r *inMemoryRepository) ListByOwner(ctx context.Context, ownerID string) ([]*cards.ActionCard, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.byOwner[ownerID]
	out := make([]*cards.ActionCard, 0, len(ids))
	for _, id := range ids {
		if card, exists := r.cards[id]; exists {
			out = append(out, card.Clone())
		}
	}
	return out, nil
}

func (r *inMemoryRepository) removeFromOwner(ownerID, cardID string) {
	ids := r.byOwner[ownerID]
	for i, id := range ids {
		if id == cardID {
			r.byOwner[ownerID] = append(ids[:i], ids[i+1:]...)
			return
		}
	}
}
