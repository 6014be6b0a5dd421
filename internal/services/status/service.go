package status

//go:generate mockgen -destination=mock/mock_service.go -package=mockstatus -source=service.go

import (
	"context"
	"log"

	"github.com/tidewater-games/actioncard-bot/internal/domain/cards"
	"github.com/tidewater-games/actioncard-bot/internal/domain/combat"
	errs "github.com/tidewater-games/actioncard-bot/internal/errors"
	"github.com/tidewater-games/actioncard-bot/internal/services/damage"
	"github.com/tidewater-games/actioncard-bot/internal/uuid"
)

// Service applies and removes embedded status effects on hit targets, using
// the same condition language as the damage phase
type Service interface {
	// ProcessStatusResults runs the status phase over a hit-result batch.
	// The application limit spans a whole repetition run, which is why the
	// running Applied count travels through input and output.
	ProcessStatusResults(ctx context.Context, input *ProcessInput) (*ProcessOutput, error)
}

// ProcessInput describes a status phase
type ProcessInput struct {
	HitResults []*combat.TargetHitResult
	RollTotal  int
	Condition  cards.Condition
	Threshold  int

	// Effects are the card's embedded status effects, already filtered to
	// the user's choice when the card enforces a single selection
	Effects []*cards.ItemData

	// Limit caps applications across the whole repetition run; 0 means
	// unlimited. Applied is the count carried in from earlier repetitions.
	Limit   int
	Applied int
}

// ProcessOutput is the outcome of a status phase
type ProcessOutput struct {
	Results []*combat.StatusResult
	Applied int
}

type service struct {
	uuidGenerator uuid.Generator
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	UUIDGenerator uuid.Generator
}

// NewService creates a new status service
func NewService(cfg *ServiceConfig) Service {
	svc := &service{}
	if cfg != nil && cfg.UUIDGenerator != nil {
		svc.uuidGenerator = cfg.UUIDGenerator
	} else {
		svc.uuidGenerator = uuid.NewGoogleUUIDGenerator()
	}
	return svc
}

// ProcessStatusResults applies (or removes) each effect on each target that
// passes the condition, honoring the run-wide application limit. One target
// failing is logged and skipped.
func (s *service) ProcessStatusResults(ctx context.Context, input *ProcessInput) (*ProcessOutput, error) {
	if input == nil {
		return nil, errs.InvalidArgument("input cannot be nil")
	}

	out := &ProcessOutput{Applied: input.Applied}

	for _, hit := range input.HitResults {
		if !damage.ShouldApplyEffect(input.Condition, hit.OneHit, hit.BothHit, input.RollTotal, input.Threshold) {
			continue
		}

		for _, effect := range input.Effects {
			if input.Limit > 0 && out.Applied >= input.Limit {
				return out, nil
			}

			if effect.StatusOperation == cards.StatusRemove {
				removed := hit.Target.RemoveEffectsByName(effect.Name)
				if removed == 0 {
					continue
				}
				out.Results = append(out.Results, &combat.StatusResult{
					Target:  hit.Target,
					Effect:  effect,
					Removed: true,
				})
				out.Applied++
				continue
			}

			applied := effect.Clone()
			applied.ID = s.uuidGenerator.New()
			if err := hit.Target.AddEffect(applied); err != nil {
				log.Printf("status: skipping target '%s': %v", hit.Target.Name, err)
				continue
			}

			out.Results = append(out.Results, &combat.StatusResult{
				Target: hit.Target,
				Effect: applied,
			})
			out.Applied++
		}
	}

	return out, nil
}
