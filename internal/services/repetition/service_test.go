package repetition_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidewater-games/actioncard-bot/internal/dice"
	"github.com/tidewater-games/actioncard-bot/internal/domain/cards"
	"github.com/tidewater-games/actioncard-bot/internal/domain/combat"
	"github.com/tidewater-games/actioncard-bot/internal/services/attackchain"
	"github.com/tidewater-games/actioncard-bot/internal/services/damage"
	"github.com/tidewater-games/actioncard-bot/internal/services/repetition"
	"github.com/tidewater-games/actioncard-bot/internal/services/status"
	"github.com/tidewater-games/actioncard-bot/internal/services/targeting"
	"github.com/tidewater-games/actioncard-bot/internal/testutils"
	"github.com/tidewater-games/actioncard-bot/internal/world"
)

type runHarness struct {
	provider *world.InMemoryProvider
	roller   *dice.MockRoller
	service  repetition.Service
}

func newRunHarness() *runHarness {
	provider := world.NewInMemoryProvider()
	roller := dice.NewMockRoller()

	targetingSvc := targeting.NewService(&targeting.ServiceConfig{Provider: provider})
	chainSvc := attackchain.NewService(&attackchain.ServiceConfig{
		Targeting: targetingSvc,
		Damage:    damage.NewService(&damage.ServiceConfig{Roller: roller}),
		Status:    status.NewService(&status.ServiceConfig{}),
		Provider:  provider,
	})

	return &runHarness{
		provider: provider,
		roller:   roller,
		service: repetition.NewService(&repetition.ServiceConfig{
			Executor: chainSvc,
			Roller:   roller,
		}),
	}
}

func (h *runHarness) lock(tokens []*world.Token) []*combat.LockedTarget {
	svc := targeting.NewService(&targeting.ServiceConfig{Provider: h.provider})
	return svc.LockTargets(tokens)
}

func TestRun(t *testing.T) {
	t.Run("runs the configured count", func(t *testing.T) {
		h := newRunHarness()
		attacker := testutils.CreateTestActor("atk", "Attacker", 11)
		target := testutils.CreateTestActor("t1", "Target", 10)
		tokens := testutils.CreateTestScene(h.provider, "scene-1", target)

		card := testutils.CreateTestCard("card-1", "atk")
		card.Repetition.Count = "3"

		result, err := h.service.Run(context.Background(), &repetition.RunInput{
			Card:          card,
			Actor:         attacker,
			UserID:        "user-1",
			LockedTargets: h.lock(tokens),
			InitialRoll:   &dice.RollResult{Total: 15},
		})
		require.NoError(t, err)
		assert.Equal(t, 3, result.Completed)
		assert.Len(t, result.Executions, 3)
		assert.Equal(t, repetition.StopCompleted, result.StopReason)
	})

	t.Run("empty count collapses to one pass", func(t *testing.T) {
		h := newRunHarness()
		attacker := testutils.CreateTestActor("atk", "Attacker", 11)
		target := testutils.CreateTestActor("t1", "Target", 10)
		tokens := testutils.CreateTestScene(h.provider, "scene-1", target)

		card := testutils.CreateTestCard("card-1", "atk")

		result, err := h.service.Run(context.Background(), &repetition.RunInput{
			Card:          card,
			Actor:         attacker,
			UserID:        "user-1",
			LockedTargets: h.lock(tokens),
			InitialRoll:   &dice.RollResult{Total: 15},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, result.Completed)
	})

	t.Run("formula count rolls the repetition total", func(t *testing.T) {
		h := newRunHarness()
		attacker := testutils.CreateTestActor("atk", "Attacker", 11)
		target := testutils.CreateTestActor("t1", "Target", 10)
		tokens := testutils.CreateTestScene(h.provider, "scene-1", target)

		card := testutils.CreateTestCard("card-1", "atk")
		card.Repetition.Count = "1d4"
		h.roller.SetRolls([]int{2}) // the count roll

		result, err := h.service.Run(context.Background(), &repetition.RunInput{
			Card:          card,
			Actor:         attacker,
			UserID:        "user-1",
			LockedTargets: h.lock(tokens),
			InitialRoll:   &dice.RollResult{Total: 15},
		})
		require.NoError(t, err)
		assert.Equal(t, 2, result.Completed)
	})

	t.Run("power depletion stops the run as a status", func(t *testing.T) {
		h := newRunHarness()
		attacker := testutils.CreateTestActor("atk", "Attacker", 11)
		attacker.Resources.Power = 2
		target := testutils.CreateTestActor("t1", "Target", 10)
		tokens := testutils.CreateTestScene(h.provider, "scene-1", target)

		card := testutils.CreateTestCard("card-1", "atk")
		card.Repetition.Count = "5"
		card.Repetition.CostOnRepetition = true
		card.EmbeddedItem.Cost.Power = 2

		result, err := h.service.Run(context.Background(), &repetition.RunInput{
			Card:          card,
			Actor:         attacker,
			UserID:        "user-1",
			LockedTargets: h.lock(tokens),
			InitialRoll:   &dice.RollResult{Total: 15},
		})
		require.NoError(t, err)

		// The first pass is free; the second pays the remaining 2 power;
		// the third cannot pay and stops the loop.
		assert.Equal(t, 2, result.Completed)
		assert.Equal(t, repetition.StopResourceDepleted, result.StopReason)
		assert.Equal(t, 0, attacker.Resources.Power)
	})

	t.Run("gear quantity depletion stops the run", func(t *testing.T) {
		h := newRunHarness()
		attacker := testutils.CreateTestActor("atk", "Attacker", 11)
		target := testutils.CreateTestActor("t1", "Target", 10)
		tokens := testutils.CreateTestScene(h.provider, "scene-1", target)

		card := testutils.CreateTestCard("card-1", "atk")
		card.Repetition.Count = "4"
		card.Repetition.CostOnRepetition = true
		card.EmbeddedItem.Kind = cards.KindGear
		card.EmbeddedItem.TracksQuantity = true
		card.EmbeddedItem.Quantity = 1

		result, err := h.service.Run(context.Background(), &repetition.RunInput{
			Card:          card,
			Actor:         attacker,
			UserID:        "user-1",
			LockedTargets: h.lock(tokens),
			InitialRoll:   &dice.RollResult{Total: 15},
		})
		require.NoError(t, err)
		assert.Equal(t, 2, result.Completed)
		assert.Equal(t, repetition.StopResourceDepleted, result.StopReason)
		assert.Equal(t, 0, card.EmbeddedItem.Quantity)
	})

	t.Run("fail on first miss stops after a total miss", func(t *testing.T) {
		h := newRunHarness()
		attacker := testutils.CreateTestActor("atk", "Attacker", 11)
		fortress := testutils.CreateTestActor("t1", "Fortress", 30)
		tokens := testutils.CreateTestScene(h.provider, "scene-1", fortress)

		card := testutils.CreateTestCard("card-1", "atk")
		card.Repetition.Count = "3"
		card.Repetition.FailOnFirstMiss = true

		result, err := h.service.Run(context.Background(), &repetition.RunInput{
			Card:          card,
			Actor:         attacker,
			UserID:        "user-1",
			LockedTargets: h.lock(tokens),
			InitialRoll:   &dice.RollResult{Total: 5},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, result.Completed)
		assert.Equal(t, repetition.StopFirstMiss, result.StopReason)
	})

	t.Run("repeat to hit rerolls between passes", func(t *testing.T) {
		h := newRunHarness()
		attacker := testutils.CreateTestActor("atk", "Attacker", 11)
		target := testutils.CreateTestActor("t1", "Target", 14)
		tokens := testutils.CreateTestScene(h.provider, "scene-1", target)

		card := testutils.CreateTestCard("card-1", "atk")
		card.Repetition.Count = "2"
		card.Repetition.RepeatToHit = true
		card.EmbeddedItem.Formula = "1d20"

		// The reroll for pass two misses AC 14
		h.roller.SetRolls([]int{3, 3, 10})

		result, err := h.service.Run(context.Background(), &repetition.RunInput{
			Card:          card,
			Actor:         attacker,
			UserID:        "user-1",
			LockedTargets: h.lock(tokens),
			InitialRoll:   &dice.RollResult{Total: 20},
			ApplyDamage:   true,
		})
		require.NoError(t, err)
		require.Len(t, result.Executions, 2)
		assert.True(t, result.Executions[0].TargetResults[0].BothHit)
		assert.False(t, result.Executions[1].TargetResults[0].OneHit)

		// Only the first pass dealt its 2d6
		assert.Equal(t, 14, target.Resources.HP.Value)
	})

	t.Run("no remaining targets stops the run", func(t *testing.T) {
		h := newRunHarness()
		attacker := testutils.CreateTestActor("atk", "Attacker", 11)

		card := testutils.CreateTestCard("card-1", "atk")
		card.Repetition.Count = "3"

		result, err := h.service.Run(context.Background(), &repetition.RunInput{
			Card:        card,
			Actor:       attacker,
			UserID:      "user-1",
			InitialRoll: &dice.RollResult{Total: 15},
		})
		require.NoError(t, err)
		assert.Equal(t, 0, result.Completed)
		assert.Equal(t, repetition.StopNoTargets, result.StopReason)
	})
}
