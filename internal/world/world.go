package world

import (
	"context"

	"github.com/tidewater-games/actioncard-bot/internal/domain/actors"
)

//go:generate mockgen -destination=mock/mock_provider.go -package=mockworld -source=world.go

// Token is a placed representation of an actor on a scene
type Token struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	SceneID  string `json:"scene_id"`
	ActorID  string `json:"actor_id"`
	Img      string `json:"img"`
	IsLinked bool   `json:"is_linked"`
}

// Scene is a collection of placed tokens
type Scene struct {
	ID     string            `json:"id"`
	Name   string            `json:"name"`
	Tokens map[string]*Token `json:"tokens"`
}

// Provider exposes the game-world lookups the engine needs: token and actor
// resolution, the user's current target selection, and user privileges.
// Lookups return nil when the entity no longer exists; deletion is an
// expected condition, not an error.
type Provider interface {
	// Token finds a token by scene and token id
	Token(sceneID, tokenID string) *Token

	// Actor finds a world actor by id
	Actor(actorID string) *actors.Actor

	// ActorByUUID finds a world actor by its document UUID
	ActorByUUID(uuid string) *actors.Actor

	// ActiveToken returns a live token for the actor on any scene, if one exists
	ActiveToken(actorID string) *Token

	// SelectedTargets returns the tokens the user currently has targeted
	SelectedTargets(ctx context.Context, userID string) ([]*Token, error)

	// IsGM reports whether the user has GM privileges
	IsGM(userID string) bool
}
