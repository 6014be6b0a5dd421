package combat

import (
	"github.com/tidewater-games/actioncard-bot/internal/domain/actors"
	"github.com/tidewater-games/actioncard-bot/internal/world"
)

// InvalidReason explains why a locked target failed to resolve
type InvalidReason string

const (
	// ReasonActorOnly marks a target whose token is gone but whose world
	// actor still resolves; it is valid, just token-less
	ReasonActorOnly = "actorOnly"

	// ReasonMissing marks a target that resolves to nothing at all,
	// most likely deleted while an approval round-trip was pending
	ReasonMissing InvalidReason = "missing"
)

// LockedTarget is an immutable snapshot of a target reference, captured once
// when the user confirms an action. Execution re-resolves these rather than
// re-reading live selection, so the confirmed target set survives selection
// changes and deletions.
type LockedTarget struct {
	ActorID   string `json:"actor_id"`
	TokenID   string `json:"token_id"`
	SceneID   string `json:"scene_id"`
	ActorName string `json:"actor_name"`
	TokenName string `json:"token_name"`
	Img       string `json:"img"`
	IsLinked  bool   `json:"is_linked"`
	UUID      string `json:"uuid"`
}

// ResolvedTarget is a locked target successfully re-resolved at execution
// time. Token may be nil when only the world actor survived (Reason is
// ReasonActorOnly in that case).
type ResolvedTarget struct {
	Actor  *actors.Actor
	Token  *world.Token
	Reason string
}

// InvalidTarget is a locked target that no longer resolves to anything
type InvalidTarget struct {
	Locked *LockedTarget
	Reason InvalidReason
}

// ResolutionResult is the outcome of re-resolving a locked target set. Each
// entry resolves independently; a deleted target lands in Invalid without
// affecting the rest.
type ResolutionResult struct {
	Valid    []*ResolvedTarget
	Invalid  []*InvalidTarget
	AllValid bool
}
