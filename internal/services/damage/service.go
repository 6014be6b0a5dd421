package damage

//go:generate mockgen -destination=mock/mock_service.go -package=mockdamage -source=service.go

import (
	"context"
	"fmt"
	"log"

	"github.com/tidewater-games/actioncard-bot/internal/dice"
	"github.com/tidewater-games/actioncard-bot/internal/domain/actors"
	"github.com/tidewater-games/actioncard-bot/internal/domain/cards"
	"github.com/tidewater-games/actioncard-bot/internal/domain/combat"
	errs "github.com/tidewater-games/actioncard-bot/internal/errors"
)

// DefaultRollThreshold is the rollValue condition threshold assumed when the
// card leaves it unset
const DefaultRollThreshold = 15

// Service owns the damage-application policy: condition evaluation,
// vulnerability formula modification, and the per-target batch loop. Dice
// evaluation and HP mutation belong to the target actor.
type Service interface {
	// ShouldApplyEffect evaluates the shared condition language against one
	// target's hit flags and the attack roll total
	ShouldApplyEffect(condition cards.Condition, oneHit, bothHit bool, rollTotal, threshold int) bool

	// ApplyVulnerabilityModifier appends the target's vulnerability total to
	// the formula. Healing is never modified.
	ApplyVulnerabilityModifier(formula, damageType string, target *actors.Actor) string

	// ResolveDamageForTarget builds the final formula and delegates
	// evaluation and HP application to the target
	ResolveDamageForTarget(ctx context.Context, input *ResolveDamageInput) (*dice.RollResult, error)

	// ProcessDamageResults runs the damage phase over a hit-result batch.
	// One target failing does not abort the rest.
	ProcessDamageResults(ctx context.Context, input *ProcessInput) ([]*combat.DamageResult, error)

	// ProcessSavedDamage applies saved damage to every target
	// unconditionally, with the same per-target resilience
	ProcessSavedDamage(ctx context.Context, input *SavedDamageInput) ([]*combat.DamageResult, error)
}

// ResolveDamageInput describes one damage application
type ResolveDamageInput struct {
	Target     *actors.Actor
	Formula    string
	DamageType string
	SourceName string
}

// ProcessInput describes a damage phase over computed hit results
type ProcessInput struct {
	HitResults []*combat.TargetHitResult
	// RollTotal is the attack roll total; the rollValue condition compares
	// against this, never against a damage roll
	RollTotal  int
	Condition  cards.Condition
	Formula    string
	DamageType string
	Threshold  int
	SourceName string
}

// SavedDamageInput describes a saved-damage phase
type SavedDamageInput struct {
	Targets    []*combat.ResolvedTarget
	Formula    string
	DamageType string
	SourceName string
}

type service struct {
	roller dice.Roller
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	Roller dice.Roller
}

// NewService creates a new damage service
func NewService(cfg *ServiceConfig) Service {
	svc := &service{}
	if cfg != nil && cfg.Roller != nil {
		svc.roller = cfg.Roller
	} else {
		svc.roller = dice.NewRandomRoller()
	}
	return svc
}

// ShouldApplyEffect implements the condition truth table. Unknown conditions
// fail closed.
func ShouldApplyEffect(condition cards.Condition, oneHit, bothHit bool, rollTotal, threshold int) bool {
	switch condition {
	case cards.ConditionNever:
		return false
	case cards.ConditionOneSuccess:
		return oneHit
	case cards.ConditionTwoSuccesses:
		return bothHit
	case cards.ConditionRollValue:
		if threshold <= 0 {
			threshold = DefaultRollThreshold
		}
		return rollTotal >= threshold
	default:
		return false
	}
}

// ShouldApplyEffect implements Service.ShouldApplyEffect
func (s *service) ShouldApplyEffect(condition cards.Condition, oneHit, bothHit bool, rollTotal, threshold int) bool {
	return ShouldApplyEffect(condition, oneHit, bothHit, rollTotal, threshold)
}

// ApplyVulnerabilityModifier appends "+ vulnerability" for damaging formulas
// against vulnerable targets
func (s *service) ApplyVulnerabilityModifier(formula, damageType string, target *actors.Actor) string {
	if damageType == cards.DamageTypeHeal {
		return formula
	}

	vulnerability := target.RollData().Vulnerability
	if vulnerability <= 0 {
		return formula
	}

	return fmt.Sprintf("%s + %d", formula, vulnerability)
}

// ResolveDamageForTarget composes the formula policy and hands evaluation to
// the target's own damage resolution
func (s *service) ResolveDamageForTarget(ctx context.Context, input *ResolveDamageInput) (*dice.RollResult, error) {
	if input == nil || input.Target == nil {
		return nil, errs.InvalidArgument("damage target is required")
	}

	formula := s.ApplyVulnerabilityModifier(input.Formula, input.DamageType, input.Target)

	return input.Target.DamageResolve(s.roller, &actors.DamageOptions{
		Formula:    formula,
		DamageType: input.DamageType,
		SourceName: input.SourceName,
	})
}

// ProcessDamageResults applies damage per target where the condition holds.
// A failing target is logged and skipped; the batch continues.
func (s *service) ProcessDamageResults(ctx context.Context, input *ProcessInput) ([]*combat.DamageResult, error) {
	if input == nil {
		return nil, errs.InvalidArgument("input cannot be nil")
	}

	results := make([]*combat.DamageResult, 0, len(input.HitResults))
	for _, hit := range input.HitResults {
		if !s.ShouldApplyEffect(input.Condition, hit.OneHit, hit.BothHit, input.RollTotal, input.Threshold) {
			continue
		}

		roll, err := s.ResolveDamageForTarget(ctx, &ResolveDamageInput{
			Target:     hit.Target,
			Formula:    input.Formula,
			DamageType: input.DamageType,
			SourceName: input.SourceName,
		})
		if err != nil {
			log.Printf("damage: skipping target '%s': %v", hit.Target.Name, err)
			continue
		}

		results = append(results, &combat.DamageResult{Target: hit.Target, Roll: roll})
	}

	return results, nil
}

// ProcessSavedDamage applies the stored formula to every listed target; there
// is no attack roll and no hit concept in this mode
func (s *service) ProcessSavedDamage(ctx context.Context, input *SavedDamageInput) ([]*combat.DamageResult, error) {
	if input == nil {
		return nil, errs.InvalidArgument("input cannot be nil")
	}

	results := make([]*combat.DamageResult, 0, len(input.Targets))
	for _, target := range input.Targets {
		roll, err := s.ResolveDamageForTarget(ctx, &ResolveDamageInput{
			Target:     target.Actor,
			Formula:    input.Formula,
			DamageType: input.DamageType,
			SourceName: input.SourceName,
		})
		if err != nil {
			log.Printf("damage: skipping target '%s': %v", target.Actor.Name, err)
			continue
		}

		results = append(results, &combat.DamageResult{Target: target.Actor, Roll: roll})
	}

	return results, nil
}
