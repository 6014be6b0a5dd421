package gameactors

//go:generate mockgen -destination=mock/mock_repository.go -package=mockactorrepo -source=repository.go

import (
	"context"

	"github.com/tidewater-games/actioncard-bot/internal/domain/actors"
)

// Repository defines the interface for actor storage operations
type Repository interface {
	// Create stores a new actor
	Create(ctx context.Context, actor *actors.Actor) error

	// Get retrieves an actor by ID
	Get(ctx context.Context, id string) (*actors.Actor, error)

	// Update modifies an existing actor
	Update(ctx context.Context, actor *actors.Actor) error

	// Delete removes an actor
	Delete(ctx context.Context, id string) error
}
