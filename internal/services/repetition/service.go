package repetition

//go:generate mockgen -destination=mock/mock_service.go -package=mockrepetition -source=service.go

import (
	"context"
	"log"
	"strconv"
	"strings"

	"github.com/tidewater-games/actioncard-bot/internal/dice"
	"github.com/tidewater-games/actioncard-bot/internal/domain/actors"
	"github.com/tidewater-games/actioncard-bot/internal/domain/cards"
	"github.com/tidewater-games/actioncard-bot/internal/domain/combat"
	errs "github.com/tidewater-games/actioncard-bot/internal/errors"
	"github.com/tidewater-games/actioncard-bot/internal/services/attackchain"
)

// StopReason says why a repetition run ended before its configured count.
// Resource depletion is an expected terminal condition for the loop, not an
// error, which is why it travels as a returned status instead of one.
type StopReason string

const (
	StopCompleted        StopReason = "completed"
	StopResourceDepleted StopReason = "resourceDepleted"
	StopFirstMiss        StopReason = "firstMiss"
	StopNoTargets        StopReason = "noTargets"
)

// Outcome is one repetition's verdict on whether the loop should continue
type Outcome struct {
	Continue bool
	Reason   StopReason
}

// Service drives N sequential passes of the attack chain. Repetitions never
// run concurrently; later passes may depend on resources spent by earlier
// ones.
type Service interface {
	Run(ctx context.Context, input *RunInput) (*RunResult, error)
}

// RunInput describes a full repetition run
type RunInput struct {
	Card   *cards.ActionCard
	Actor  *actors.Actor
	UserID string

	LockedTargets []*combat.LockedTarget

	// InitialRoll is the captured embedded-item roll for the first pass
	InitialRoll *dice.RollResult

	ApplyDamage      bool
	ApplyStatus      bool
	SelectedStatusID string
	Transformations  map[string]string
}

// RunResult aggregates every executed pass plus why the loop stopped
type RunResult struct {
	Executions []*combat.ExecutionResult
	Completed  int
	StopReason StopReason
}

type service struct {
	executor attackchain.Service
	roller   dice.Roller
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	Executor attackchain.Service
	Roller   dice.Roller
}

// NewService creates a new repetition service
func NewService(cfg *ServiceConfig) Service {
	if cfg.Executor == nil {
		panic("attack-chain executor is required")
	}

	svc := &service{executor: cfg.Executor}
	if cfg.Roller != nil {
		svc.roller = cfg.Roller
	} else {
		svc.roller = dice.NewRandomRoller()
	}
	return svc
}

// Run executes the configured number of passes, stopping early on resource
// depletion, on a total miss when the card says so, or when every target is
// gone
func (s *service) Run(ctx context.Context, input *RunInput) (*RunResult, error) {
	if input == nil || input.Card == nil {
		return nil, errs.InvalidArgument("input and card are required")
	}
	card := input.Card

	count, err := s.repetitionCount(card)
	if err != nil {
		return nil, err
	}

	result := &RunResult{StopReason: StopCompleted}
	roll := input.InitialRoll
	statusApplied := 0

	for i := 0; i < count; i++ {
		// The first pass's cost was paid when the embedded item was
		// triggered; later passes pay again only when configured to.
		if i > 0 && card.Repetition.CostOnRepetition {
			outcome := s.payRepetitionCost(input.Actor, card.EmbeddedItem)
			if !outcome.Continue {
				result.StopReason = outcome.Reason
				return result, nil
			}
		}

		if i > 0 && card.Repetition.RepeatToHit {
			roll, err = s.rollEmbedded(card.EmbeddedItem)
			if err != nil {
				return nil, errs.Wrap(err, "failed to reroll embedded item")
			}
		}

		exec, err := s.executor.ExecuteWithRollResult(ctx, &attackchain.ExecuteInput{
			Card:             card,
			Actor:            input.Actor,
			UserID:           input.UserID,
			Roll:             roll,
			LockedTargets:    input.LockedTargets,
			ApplyDamage:      input.ApplyDamage,
			ApplyStatus:      input.ApplyStatus,
			SelectedStatusID: input.SelectedStatusID,
			Transformations:  input.Transformations,
			StatusApplied:    statusApplied,
		})
		if err != nil {
			return nil, err
		}

		result.Executions = append(result.Executions, exec)

		if !exec.Success && exec.Reason == combat.ReasonNoTargets {
			result.StopReason = StopNoTargets
			return result, nil
		}

		result.Completed++
		statusApplied = exec.StatusApplied

		if card.Repetition.FailOnFirstMiss && exec.Mode == cards.ModeAttackChain && exec.AllMissed() {
			result.StopReason = StopFirstMiss
			return result, nil
		}
	}

	return result, nil
}

// repetitionCount evaluates the configured count, which may be a plain
// number or a dice formula. Anything below one repetition collapses to one.
func (s *service) repetitionCount(card *cards.ActionCard) (int, error) {
	raw := strings.TrimSpace(card.Repetition.Count)
	if raw == "" {
		return 1, nil
	}

	if n, err := strconv.Atoi(raw); err == nil {
		if n < 1 {
			return 1, nil
		}
		return n, nil
	}

	rolled, err := s.roller.RollFormula(raw)
	if err != nil {
		return 0, errs.InvalidArgumentf("invalid repetition count '%s'", raw)
	}
	if rolled.Total < 1 {
		return 1, nil
	}
	return rolled.Total, nil
}

// payRepetitionCost deducts the embedded item's cost for one more pass.
// Running dry stops the loop cooperatively.
func (s *service) payRepetitionCost(actor *actors.Actor, item *cards.ItemData) Outcome {
	if item == nil {
		return Outcome{Continue: true}
	}

	if item.Cost.Power > 0 {
		if actor == nil || actor.Resources.Power < item.Cost.Power {
			log.Printf("repetition: power depleted, stopping run")
			return Outcome{Reason: StopResourceDepleted}
		}
		if err := actor.Update(map[string]any{
			"resources.power": actor.Resources.Power - item.Cost.Power,
		}); err != nil {
			log.Printf("repetition: failed to deduct power: %v", err)
			return Outcome{Reason: StopResourceDepleted}
		}
	}

	if item.TracksQuantity {
		if item.Quantity <= 0 {
			log.Printf("repetition: '%s' quantity depleted, stopping run", item.Name)
			return Outcome{Reason: StopResourceDepleted}
		}
		item.Quantity--
	}

	return Outcome{Continue: true}
}

// rollEmbedded rerolls the embedded item for repeat-to-hit runs. Roll-less
// items stay roll-less.
func (s *service) rollEmbedded(item *cards.ItemData) (*dice.RollResult, error) {
	if item == nil || item.RollType == cards.RollTypeNone || item.Formula == "" {
		return nil, nil
	}
	return s.roller.RollFormula(item.Formula)
}
