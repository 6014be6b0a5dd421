package attackchain

//go:generate mockgen -destination=mock/mock_service.go -package=mockattackchain -source=service.go

import (
	"context"
	"log"

	"github.com/tidewater-games/actioncard-bot/internal/dice"
	"github.com/tidewater-games/actioncard-bot/internal/domain/actors"
	"github.com/tidewater-games/actioncard-bot/internal/domain/cards"
	"github.com/tidewater-games/actioncard-bot/internal/domain/combat"
	errs "github.com/tidewater-games/actioncard-bot/internal/errors"
	"github.com/tidewater-games/actioncard-bot/internal/services/damage"
	"github.com/tidewater-games/actioncard-bot/internal/services/status"
	"github.com/tidewater-games/actioncard-bot/internal/services/targeting"
	"github.com/tidewater-games/actioncard-bot/internal/uuid"
	"github.com/tidewater-games/actioncard-bot/internal/world"
)

// Service drives one pass of the attack chain: target resolution, dual
// threshold hit computation, then the damage, status, and transformation
// phases in that fixed order
type Service interface {
	// CalculateTargetHits derives per-target hit flags from a single roll
	// total. Pure: identical inputs yield identical results.
	CalculateTargetHits(targets []*combat.ResolvedTarget, rollTotal int, item *cards.ItemData, cfg *cards.AttackChainConfig) []*combat.TargetHitResult

	// ExecuteWithRollResult runs one full pass against the locked target set
	ExecuteWithRollResult(ctx context.Context, input *ExecuteInput) (*combat.ExecutionResult, error)
}

// ExecuteInput describes one attack-chain pass
type ExecuteInput struct {
	Card   *cards.ActionCard
	Actor  *actors.Actor
	UserID string

	// Roll is the evaluated embedded-item roll; nil for roll-less items
	Roll *dice.RollResult

	LockedTargets []*combat.LockedTarget

	ApplyDamage bool
	ApplyStatus bool

	// SelectedStatusID narrows the status phase to one chosen effect when
	// the card enforces a single choice
	SelectedStatusID string

	// Transformations maps target actor IDs to the transformation chosen
	// for them
	Transformations map[string]string

	// StatusApplied carries the running application count across
	// repetitions so the card's limit can span the whole run
	StatusApplied int
}

// Delayer is the pacing gate awaited between phases so observers see the
// attack resolve before its consequences appear
type Delayer interface {
	Wait(ctx context.Context) error
}

type service struct {
	targeting     targeting.Service
	damage        damage.Service
	status        status.Service
	provider      world.Provider
	delayer       Delayer
	uuidGenerator uuid.Generator
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	Targeting     targeting.Service
	Damage        damage.Service
	Status        status.Service
	Provider      world.Provider
	Delayer       Delayer
	UUIDGenerator uuid.Generator
}

// NewService creates a new attack-chain service
func NewService(cfg *ServiceConfig) Service {
	if cfg.Targeting == nil {
		panic("targeting service is required")
	}
	if cfg.Damage == nil {
		panic("damage service is required")
	}
	if cfg.Status == nil {
		panic("status service is required")
	}
	if cfg.Provider == nil {
		panic("world provider is required")
	}

	svc := &service{
		targeting: cfg.Targeting,
		damage:    cfg.Damage,
		status:    cfg.Status,
		provider:  cfg.Provider,
		delayer:   cfg.Delayer,
	}
	if svc.delayer == nil {
		svc.delayer = NoDelay()
	}
	if cfg.UUIDGenerator != nil {
		svc.uuidGenerator = cfg.UUIDGenerator
	} else {
		svc.uuidGenerator = uuid.NewGoogleUUIDGenerator()
	}
	return svc
}

// CalculateTargetHits compares the roll total against both configured stat
// thresholds independently. Roll type "none" is the automatic-success
// sentinel and forces every flag on.
func (s *service) CalculateTargetHits(targets []*combat.ResolvedTarget, rollTotal int, item *cards.ItemData, cfg *cards.AttackChainConfig) []*combat.TargetHitResult {
	results := make([]*combat.TargetHitResult, 0, len(targets))

	for _, target := range targets {
		if item != nil && item.RollType == cards.RollTypeNone {
			results = append(results, &combat.TargetHitResult{
				Target:    target.Actor,
				FirstHit:  true,
				SecondHit: true,
				BothHit:   true,
				OneHit:    true,
			})
			continue
		}

		firstHit := rollTotal >= target.Actor.StatAC(cfg.FirstStat)
		secondHit := rollTotal >= target.Actor.StatAC(cfg.SecondStat)

		results = append(results, &combat.TargetHitResult{
			Target:    target.Actor,
			FirstHit:  firstHit,
			SecondHit: secondHit,
			BothHit:   firstHit && secondHit,
			OneHit:    firstHit || secondHit,
		})
	}

	return results
}

// ExecuteWithRollResult runs the state machine for one repetition. Errors
// from a whole phase propagate unmodified; per-target failures are handled
// inside the phase services.
func (s *service) ExecuteWithRollResult(ctx context.Context, input *ExecuteInput) (*combat.ExecutionResult, error) {
	if input == nil || input.Card == nil {
		return nil, errs.InvalidArgument("input and card are required")
	}
	card := input.Card

	targets, dropped, err := s.resolveTargets(ctx, input)
	if err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		return &combat.ExecutionResult{
			Success: false,
			Reason:  combat.ReasonNoTargets,
			Mode:    card.Mode,
		}, nil
	}

	if card.Mode == cards.ModeSavedDamage {
		return s.executeSavedDamage(ctx, input, targets, dropped)
	}

	rollTotal := 0
	if input.Roll != nil {
		rollTotal = input.Roll.Total
	}

	result := &combat.ExecutionResult{
		Success:       true,
		Mode:          cards.ModeAttackChain,
		BaseRoll:      input.Roll,
		StatusApplied: input.StatusApplied,
		Dropped:       dropped,
	}
	result.TargetResults = s.CalculateTargetHits(targets, rollTotal, card.EmbeddedItem, &card.AttackChain)

	// Pacing gate before any side effect lands
	if err := s.delayGate(ctx, input.UserID); err != nil {
		return nil, err
	}

	if input.ApplyDamage && card.AttackChain.DamageFormula != "" {
		result.DamageResults, err = s.damage.ProcessDamageResults(ctx, &damage.ProcessInput{
			HitResults: result.TargetResults,
			RollTotal:  rollTotal,
			Condition:  card.AttackChain.DamageCondition,
			Formula:    card.AttackChain.DamageFormula,
			DamageType: card.AttackChain.DamageType,
			Threshold:  card.AttackChain.DamageThreshold,
			SourceName: card.Name,
		})
		if err != nil {
			return nil, err
		}

		if err := s.delayGate(ctx, input.UserID); err != nil {
			return nil, err
		}
	}

	if input.ApplyStatus && len(card.StatusEffects) > 0 {
		statusOut, err := s.status.ProcessStatusResults(ctx, &status.ProcessInput{
			HitResults: result.TargetResults,
			RollTotal:  rollTotal,
			Condition:  card.AttackChain.StatusCondition,
			Threshold:  card.AttackChain.StatusThreshold,
			Effects:    s.selectEffects(card, input.SelectedStatusID),
			Limit:      card.Repetition.StatusApplicationLimit,
			Applied:    input.StatusApplied,
		})
		if err != nil {
			return nil, err
		}
		result.StatusResults = statusOut.Results
		result.StatusApplied = statusOut.Applied
	}

	// Transformations always run last, never before status
	if len(card.Transformations) > 0 {
		result.TransformationResults = s.processTransformations(card, result.TargetResults, input.Transformations)
	}

	return result, nil
}

func (s *service) resolveTargets(ctx context.Context, input *ExecuteInput) ([]*combat.ResolvedTarget, int, error) {
	if len(input.LockedTargets) > 0 && !input.Card.SelfTarget {
		resolution := s.targeting.ResolveLockedTargets(ctx, input.LockedTargets)
		if len(resolution.Invalid) > 0 {
			log.Printf("attackchain: %d locked targets no longer resolve", len(resolution.Invalid))
		}
		return resolution.Valid, len(resolution.Invalid), nil
	}

	out, err := s.targeting.ResolveTargets(ctx, &targeting.ResolveInput{
		UserID:     input.UserID,
		Actor:      input.Actor,
		SelfTarget: input.Card.SelfTarget,
	})
	if err != nil {
		return nil, 0, err
	}
	if !out.Success {
		return nil, len(out.Invalid), nil
	}
	return out.Targets, len(out.Invalid), nil
}

func (s *service) executeSavedDamage(ctx context.Context, input *ExecuteInput, targets []*combat.ResolvedTarget, dropped int) (*combat.ExecutionResult, error) {
	card := input.Card

	if err := s.delayGate(ctx, input.UserID); err != nil {
		return nil, err
	}

	damageResults, err := s.damage.ProcessSavedDamage(ctx, &damage.SavedDamageInput{
		Targets:    targets,
		Formula:    card.SavedDamage.Formula,
		DamageType: card.SavedDamage.Type,
		SourceName: card.Name,
	})
	if err != nil {
		return nil, err
	}

	return &combat.ExecutionResult{
		Success:       true,
		Mode:          cards.ModeSavedDamage,
		DamageResults: damageResults,
		StatusApplied: input.StatusApplied,
		Dropped:       dropped,
	}, nil
}

// selectEffects narrows the embedded status effects to the user's choice when
// one was made
func (s *service) selectEffects(card *cards.ActionCard, selectedID string) []*cards.ItemData {
	if selectedID == "" {
		return card.StatusEffects
	}
	if effect := card.StatusEffect(selectedID); effect != nil {
		return []*cards.ItemData{effect}
	}
	return nil
}

// processTransformations applies each hit target's chosen transformation.
// Targets without a choice fall back to the card's only transformation, when
// there is exactly one.
func (s *service) processTransformations(card *cards.ActionCard, hits []*combat.TargetHitResult, choices map[string]string) []*combat.TransformationResult {
	results := []*combat.TransformationResult{}

	for _, hit := range hits {
		if !hit.OneHit {
			continue
		}

		var transformation *cards.ItemData
		if id, ok := choices[hit.Target.ID]; ok {
			transformation = card.Transformation(id)
		} else if len(card.Transformations) == 1 {
			transformation = card.Transformations[0]
		}
		if transformation == nil {
			continue
		}

		applied := transformation.Clone()
		applied.ID = s.uuidGenerator.New()
		if err := hit.Target.AddEffect(applied); err != nil {
			log.Printf("attackchain: skipping transformation for '%s': %v", hit.Target.Name, err)
			continue
		}

		results = append(results, &combat.TransformationResult{
			Target:         hit.Target,
			Transformation: applied,
		})
	}

	return results
}

// delayGate pauses only for GM-privileged execution; player-side calls never
// wait
func (s *service) delayGate(ctx context.Context, userID string) error {
	if !s.provider.IsGM(userID) {
		return nil
	}
	return s.delayer.Wait(ctx)
}
