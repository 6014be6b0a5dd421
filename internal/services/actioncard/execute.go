package actioncard

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/tidewater-games/actioncard-bot/internal/chat"
	"github.com/tidewater-games/actioncard-bot/internal/dice"
	"github.com/tidewater-games/actioncard-bot/internal/domain/actors"
	"github.com/tidewater-games/actioncard-bot/internal/domain/cards"
	errs "github.com/tidewater-games/actioncard-bot/internal/errors"
	"github.com/tidewater-games/actioncard-bot/internal/notify"
	"github.com/tidewater-games/actioncard-bot/internal/services/repetition"
)

// Execute runs a card end-to-end: validate, lock targets, trigger the
// embedded item with bypass, capture its roll from the chat pipeline, then
// hand everything to the repetition loop and persist the aftermath.
func (s *service) Execute(ctx context.Context, input *ExecuteInput) (*repetition.RunResult, error) {
	if input == nil {
		return nil, errs.InvalidArgument("input cannot be nil")
	}

	card, err := s.repository.Get(ctx, input.CardID)
	if err != nil {
		return nil, err
	}

	actor, err := s.loadActor(ctx, input.ActorID)
	if err != nil {
		return nil, err
	}

	if !card.IsExecutable() {
		s.notifier.Notify(notify.LevelWarning,
			fmt.Sprintf("'%s' has nothing to execute; embed an item first", card.Name))
		return nil, errs.InvalidArgumentf("card '%s' is not executable", card.Name)
	}

	if err := s.validateStatusChoice(card, input); err != nil {
		return nil, err
	}

	locked := input.LockedTargets
	if len(locked) == 0 && !card.SelfTarget {
		tokens, err := s.provider.SelectedTargets(ctx, input.UserID)
		if err != nil {
			return nil, errs.Wrap(err, "failed to read target selection")
		}
		locked = s.targeting.LockTargets(tokens)
	}

	roll, err := s.triggerAndCapture(ctx, card, actor, input.CaptureTimeout)
	if err != nil {
		return nil, err
	}

	runResult, err := s.repetition.Run(ctx, &repetition.RunInput{
		Card:             card,
		Actor:            actor,
		UserID:           input.UserID,
		LockedTargets:    locked,
		InitialRoll:      roll,
		ApplyDamage:      input.ApplyDamage,
		ApplyStatus:      input.ApplyStatus,
		SelectedStatusID: input.SelectedStatusID,
		Transformations:  input.Transformations,
	})
	if err != nil {
		return nil, err
	}

	// Repetition costs mutate the actor and the embedded copy's quantity;
	// both have to land in storage even when the run stopped early.
	s.persistAftermath(ctx, card, actor)
	s.publishSummary(card, actor, runResult)

	return runResult, nil
}

// loadActor fetches the acting actor when a repository is wired, falling
// back to the world provider otherwise
func (s *service) loadActor(ctx context.Context, actorID string) (*actors.Actor, error) {
	if s.actorRepo != nil {
		return s.actorRepo.Get(ctx, actorID)
	}

	actor := s.provider.Actor(actorID)
	if actor == nil {
		return nil, errs.NotFoundf("actor not found: %s", actorID)
	}
	return actor, nil
}

// validateStatusChoice enforces the pick-one rule for cards that carry
// several status effects and demand an explicit choice
func (s *service) validateStatusChoice(card *cards.ActionCard, input *ExecuteInput) error {
	if !card.EnforceStatusChoice || !input.ApplyStatus || len(card.StatusEffects) < 2 {
		return nil
	}
	if input.SelectedStatusID != "" {
		if card.StatusEffect(input.SelectedStatusID) == nil {
			return errs.InvalidArgumentf("status effect not found on card: %s", input.SelectedStatusID)
		}
		return nil
	}
	s.notifier.Notify(notify.LevelWarning,
		fmt.Sprintf("'%s' requires choosing a status effect before executing", card.Name))
	return errs.Validationf("card '%s' requires a status effect choice", card.Name)
}

// triggerAndCapture fires the embedded item with bypass and waits for the
// roll-bearing message it produces. The subscription is live before the
// trigger so a synchronous publish cannot slip past it. A timeout is the
// degraded roll-less path, not a failure.
func (s *service) triggerAndCapture(ctx context.Context, card *cards.ActionCard, actor *actors.Actor, timeout time.Duration) (*dice.RollResult, error) {
	if card.Mode == cards.ModeSavedDamage {
		// Saved damage rolls its own formula per target later; there is
		// no embedded item to trigger.
		return nil, nil
	}

	item := card.EmbeddedItem

	if timeout <= 0 {
		timeout = s.captureTimeout
	}

	capture := chat.NewCapture(s.bus, item.ID)
	defer capture.Cancel()

	if err := s.triggerEmbedded(actor, item); err != nil {
		return nil, err
	}

	msg, err := capture.Wait(ctx, timeout)
	if err != nil {
		if err == chat.ErrCaptureTimeout {
			log.Printf("actioncard: no roll message for '%s', continuing without a roll", item.Name)
			return nil, nil
		}
		return nil, err
	}

	return msg.Roll, nil
}

// triggerEmbedded pays the item's cost and publishes its usage message,
// skipping any confirmation dialogs the item would normally raise
func (s *service) triggerEmbedded(actor *actors.Actor, item *cards.ItemData) error {
	switch item.Kind {
	case cards.KindCombatPower, cards.KindFeature:
		if err := s.payPowerCost(actor, item); err != nil {
			return err
		}
	case cards.KindGear:
		if err := s.payPowerCost(actor, item); err != nil {
			return err
		}
		if item.TracksQuantity {
			if item.Quantity <= 0 {
				return errs.Validationf("'%s' is out of stock", item.Name)
			}
			item.Quantity--
		}
	case cards.KindStatus, cards.KindTransformation, cards.KindActionCard:
		return errs.InvalidArgumentf("item kind '%s' cannot be triggered", item.Kind)
	default:
		return errs.InvalidArgumentf("unknown item kind '%s'", item.Kind)
	}

	msg := &chat.Message{
		ID:           s.uuidGenerator.New(),
		SpeakerID:    actor.ID,
		SourceItemID: item.ID,
		Content:      fmt.Sprintf("%s uses %s", actor.Name, item.Name),
	}

	if item.RollType != cards.RollTypeNone && item.Formula != "" {
		roll, err := s.roller.RollFormula(item.Formula)
		if err != nil {
			return errs.Wrapf(err, "failed to roll '%s'", item.Formula)
		}
		msg.Roll = roll
		msg.Content = fmt.Sprintf("%s uses %s (%s)", actor.Name, item.Name, roll.String())
	}

	s.bus.Publish(msg)
	return nil
}

// payPowerCost deducts the item's power cost from the acting actor
func (s *service) payPowerCost(actor *actors.Actor, item *cards.ItemData) error {
	if item.Cost.Power <= 0 {
		return nil
	}
	if actor.Resources.Power < item.Cost.Power {
		s.notifier.Notify(notify.LevelWarning,
			fmt.Sprintf("%s does not have %d power for %s", actor.Name, item.Cost.Power, item.Name))
		return errs.Validationf("insufficient power for '%s'", item.Name)
	}
	return actor.Update(map[string]any{
		"resources.power": actor.Resources.Power - item.Cost.Power,
	})
}

// persistAftermath writes the post-run actor and card state back. Storage
// failures here are logged, not fatal: the run itself already happened.
func (s *service) persistAftermath(ctx context.Context, card *cards.ActionCard, actor *actors.Actor) {
	if s.actorRepo != nil {
		if err := s.actorRepo.Update(ctx, actor); err != nil {
			log.Printf("actioncard: failed to persist actor '%s': %v", actor.ID, err)
		}
	}
	if err := s.repository.Update(ctx, card); err != nil {
		log.Printf("actioncard: failed to persist card '%s': %v", card.ID, err)
	}
}

// publishSummary posts a one-line run summary to the chat pipeline
func (s *service) publishSummary(card *cards.ActionCard, actor *actors.Actor, result *repetition.RunResult) {
	content := fmt.Sprintf("%s resolved %s (%d of %d passes)",
		actor.Name, card.Name, result.Completed, len(result.Executions))
	switch result.StopReason {
	case repetition.StopResourceDepleted:
		content += ", stopped: resources depleted"
	case repetition.StopFirstMiss:
		content += ", stopped: attack missed"
	case repetition.StopNoTargets:
		content += ", stopped: no valid targets"
	}

	s.bus.Publish(&chat.Message{
		ID:        s.uuidGenerator.New(),
		SpeakerID: actor.ID,
		Content:   content,
	})
}
