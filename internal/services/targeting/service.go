package targeting

//go:generate mockgen -destination=mock/mock_service.go -package=mocktargeting -source=service.go

import (
	"context"
	"fmt"

	"github.com/tidewater-games/actioncard-bot/internal/domain/actors"
	"github.com/tidewater-games/actioncard-bot/internal/domain/combat"
	errs "github.com/tidewater-games/actioncard-bot/internal/errors"
	"github.com/tidewater-games/actioncard-bot/internal/notify"
	"github.com/tidewater-games/actioncard-bot/internal/world"
)

// Service resolves targets for action execution. Locking snapshots the
// confirmed target set once; resolution later tolerates anything that was
// deleted in between.
type Service interface {
	// LockTargets snapshots token references. Pure, no side effects, and it
	// must succeed even for tokens without a backing actor.
	LockTargets(tokens []*world.Token) []*combat.LockedTarget

	// ResolveLockedTargets re-resolves a locked set. Never returns an error;
	// each entry resolves independently.
	ResolveLockedTargets(ctx context.Context, locked []*combat.LockedTarget) *combat.ResolutionResult

	// ResolveTargets is the convenience path for flows that did not pre-lock:
	// live selection retrieval, with self-target substitution when requested.
	ResolveTargets(ctx context.Context, input *ResolveInput) (*ResolveOutput, error)
}

// ResolveInput configures a live target resolution
type ResolveInput struct {
	UserID     string
	Actor      *actors.Actor
	SelfTarget bool
	Locked     []*combat.LockedTarget
}

// ResolveOutput is the outcome of a live target resolution
type ResolveOutput struct {
	Success bool
	Targets []*combat.ResolvedTarget
	Invalid []*combat.InvalidTarget
}

type service struct {
	provider world.Provider
	notifier notify.Notifier
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	Provider world.Provider
	Notifier notify.Notifier
}

// NewService creates a new targeting service
func NewService(cfg *ServiceConfig) Service {
	if cfg.Provider == nil {
		panic("world provider is required")
	}

	svc := &service{
		provider: cfg.Provider,
		notifier: cfg.Notifier,
	}
	if svc.notifier == nil {
		svc.notifier = notify.NewLogNotifier()
	}
	return svc
}

// LockTargets snapshots token references at confirmation time
func (s *service) LockTargets(tokens []*world.Token) []*combat.LockedTarget {
	locked := make([]*combat.LockedTarget, 0, len(tokens))
	for _, token := range tokens {
		lt := &combat.LockedTarget{
			TokenID:   token.ID,
			SceneID:   token.SceneID,
			TokenName: token.Name,
			Img:       token.Img,
			IsLinked:  token.IsLinked,
		}

		if token.ActorID != "" {
			lt.ActorID = token.ActorID
			if actor := s.provider.Actor(token.ActorID); actor != nil {
				lt.ActorName = actor.Name
				lt.UUID = actor.UUID
			}
		}

		locked = append(locked, lt)
	}
	return locked
}

// ResolveLockedTargets re-resolves each locked target in order: token by
// scene+id, then actor by UUID, then actor by id. A target failing all three
// is invalid (likely deleted), not a fatal error.
func (s *service) ResolveLockedTargets(ctx context.Context, locked []*combat.LockedTarget) *combat.ResolutionResult {
	result := &combat.ResolutionResult{}

	for _, lt := range locked {
		if resolved := s.resolveOne(lt); resolved != nil {
			result.Valid = append(result.Valid, resolved)
			continue
		}
		result.Invalid = append(result.Invalid, &combat.InvalidTarget{
			Locked: lt,
			Reason: combat.ReasonMissing,
		})
	}

	result.AllValid = len(result.Invalid) == 0
	return result
}

func (s *service) resolveOne(lt *combat.LockedTarget) *combat.ResolvedTarget {
	// Token still on its scene
	if token := s.provider.Token(lt.SceneID, lt.TokenID); token != nil {
		if actor := s.provider.Actor(token.ActorID); actor != nil {
			return &combat.ResolvedTarget{Actor: actor, Token: token}
		}
	}

	// Token gone, actor still reachable by UUID; pick up a live token if
	// the actor has one anywhere
	if lt.UUID != "" {
		if actor := s.provider.ActorByUUID(lt.UUID); actor != nil {
			if token := s.provider.ActiveToken(actor.ID); token != nil {
				return &combat.ResolvedTarget{Actor: actor, Token: token}
			}
			return &combat.ResolvedTarget{Actor: actor, Reason: combat.ReasonActorOnly}
		}
	}

	// Last resort: plain actor id lookup
	if lt.ActorID != "" {
		if actor := s.provider.Actor(lt.ActorID); actor != nil {
			if token := s.provider.ActiveToken(actor.ID); token != nil {
				return &combat.ResolvedTarget{Actor: actor, Token: token}
			}
			return &combat.ResolvedTarget{Actor: actor, Reason: combat.ReasonActorOnly}
		}
	}

	return nil
}

// ResolveTargets resolves the target set for an execution that did not
// pre-lock, substituting the acting actor's own token when self-targeting
func (s *service) ResolveTargets(ctx context.Context, input *ResolveInput) (*ResolveOutput, error) {
	if input == nil {
		return nil, errs.InvalidArgument("input cannot be nil")
	}

	if input.SelfTarget {
		return s.resolveSelf(input)
	}

	locked := input.Locked
	if len(locked) == 0 {
		tokens, err := s.provider.SelectedTargets(ctx, input.UserID)
		if err != nil {
			return nil, errs.Wrap(err, "failed to read target selection")
		}
		locked = s.LockTargets(tokens)
	}

	resolution := s.ResolveLockedTargets(ctx, locked)
	if len(resolution.Invalid) > 0 {
		s.notifier.Notify(notify.LevelWarning,
			fmt.Sprintf("%d of %d targets no longer exist and were skipped",
				len(resolution.Invalid), len(locked)))
	}

	if len(resolution.Valid) == 0 {
		s.notifier.Notify(notify.LevelWarning, "no valid targets selected")
		return &ResolveOutput{Success: false, Invalid: resolution.Invalid}, nil
	}

	return &ResolveOutput{
		Success: true,
		Targets: resolution.Valid,
		Invalid: resolution.Invalid,
	}, nil
}

// resolveSelf synthesizes a single-target set from the acting actor's own
// token, bypassing selection entirely
func (s *service) resolveSelf(input *ResolveInput) (*ResolveOutput, error) {
	if input.Actor == nil {
		return nil, errs.InvalidArgument("self-targeting requires the acting actor")
	}

	token := s.provider.ActiveToken(input.Actor.ID)
	if token == nil {
		s.notifier.Notify(notify.LevelWarning,
			fmt.Sprintf("%s has no token to self-target", input.Actor.Name))
		return &ResolveOutput{Success: false}, nil
	}

	return &ResolveOutput{
		Success: true,
		Targets: []*combat.ResolvedTarget{{Actor: input.Actor, Token: token}},
	}, nil
}
