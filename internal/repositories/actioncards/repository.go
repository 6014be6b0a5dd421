package actioncards

//go:generate mockgen -destination=mock/mock_repository.go -package=mockcardrepo -source=repository.go

import (
	"context"

	"github.com/tidewater-games/actioncard-bot/internal/domain/cards"
)

// Repository defines the interface for action-card storage operations
type Repository interface {
	// Create stores a new action card
	Create(ctx context.Context, card *cards.ActionCard) error

	// Get retrieves an action card by ID
	Get(ctx context.Context, id string) (*cards.ActionCard, error)

	// GetBatch retrieves several action cards at once, skipping missing IDs
	GetBatch(ctx context.Context, ids []string) ([]*cards.ActionCard, error)

	// Update modifies an existing action card
	Update(ctx context.Context, card *cards.ActionCard) error

	// Delete removes an action card
	Delete(ctx context.Context, id string) error

	// ListByOwner retrieves all action cards owned by an actor
	ListByOwner(ctx context.Context, ownerID string) ([]*cards.ActionCard, error)
}
