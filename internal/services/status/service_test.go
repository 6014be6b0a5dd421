package status_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidewater-games/actioncard-bot/internal/domain/cards"
	"github.com/tidewater-games/actioncard-bot/internal/domain/combat"
	"github.com/tidewater-games/actioncard-bot/internal/services/status"
	"github.com/tidewater-games/actioncard-bot/internal/testutils"
)

func TestProcessStatusResults(t *testing.T) {
	svc := status.NewService(&status.ServiceConfig{})

	t.Run("applies an owned copy to passing targets", func(t *testing.T) {
		target := testutils.CreateTestActor("t1", "Target", 11)
		effect := testutils.CreateTestStatusEffect("eff-1", "Burning")

		out, err := svc.ProcessStatusResults(context.Background(), &status.ProcessInput{
			HitResults: []*combat.TargetHitResult{{Target: target, OneHit: true, BothHit: true}},
			Condition:  cards.ConditionTwoSuccesses,
			Effects:    []*cards.ItemData{effect},
		})
		require.NoError(t, err)
		require.Len(t, out.Results, 1)
		assert.Equal(t, 1, out.Applied)
		assert.True(t, target.HasEffect("Burning"))

		// The applied instance is a fresh copy, not the card's
		require.Len(t, target.Effects, 1)
		assert.NotEqual(t, effect.ID, target.Effects[0].ID)
		assert.NotSame(t, effect, target.Effects[0])
	})

	t.Run("applies gear-kind effects the same way", func(t *testing.T) {
		target := testutils.CreateTestActor("t1", "Target", 11)
		gear := &cards.ItemData{
			ID:              "gear-1",
			Name:            "Smoke Bomb",
			Kind:            cards.KindGear,
			StatusOperation: cards.StatusApply,
			Changes:         []cards.EffectChange{{Key: "resources.power", Mode: 2, Value: "-1"}},
		}
		require.NoError(t, gear.Kind.ValidateAsStatusEffect())

		out, err := svc.ProcessStatusResults(context.Background(), &status.ProcessInput{
			HitResults: []*combat.TargetHitResult{{Target: target, OneHit: true}},
			Condition:  cards.ConditionOneSuccess,
			Effects:    []*cards.ItemData{gear},
		})
		require.NoError(t, err)
		require.Len(t, out.Results, 1)
		assert.Equal(t, 1, out.Applied)
		assert.True(t, target.HasEffect("Smoke Bomb"))
		require.Len(t, target.Effects, 1)
		assert.Equal(t, cards.KindGear, target.Effects[0].Kind)
		assert.NotSame(t, gear, target.Effects[0])
	})

	t.Run("skips targets failing the condition", func(t *testing.T) {
		target := testutils.CreateTestActor("t1", "Target", 11)

		out, err := svc.ProcessStatusResults(context.Background(), &status.ProcessInput{
			HitResults: []*combat.TargetHitResult{{Target: target, OneHit: true}},
			Condition:  cards.ConditionTwoSuccesses,
			Effects:    []*cards.ItemData{testutils.CreateTestStatusEffect("eff-1", "Burning")},
		})
		require.NoError(t, err)
		assert.Empty(t, out.Results)
		assert.False(t, target.HasEffect("Burning"))
	})

	t.Run("remove operation strips matching effects", func(t *testing.T) {
		target := testutils.CreateTestActor("t1", "Target", 11)
		require.NoError(t, target.AddEffect(&cards.ItemData{ID: "old", Name: "Burning", Kind: cards.KindStatus}))

		remover := testutils.CreateTestStatusEffect("eff-1", "Burning")
		remover.StatusOperation = cards.StatusRemove

		out, err := svc.ProcessStatusResults(context.Background(), &status.ProcessInput{
			HitResults: []*combat.TargetHitResult{{Target: target, OneHit: true}},
			Condition:  cards.ConditionOneSuccess,
			Effects:    []*cards.ItemData{remover},
		})
		require.NoError(t, err)
		require.Len(t, out.Results, 1)
		assert.True(t, out.Results[0].Removed)
		assert.False(t, target.HasEffect("Burning"))
	})

	t.Run("removal of an absent effect produces no result", func(t *testing.T) {
		target := testutils.CreateTestActor("t1", "Target", 11)

		remover := testutils.CreateTestStatusEffect("eff-1", "Burning")
		remover.StatusOperation = cards.StatusRemove

		out, err := svc.ProcessStatusResults(context.Background(), &status.ProcessInput{
			HitResults: []*combat.TargetHitResult{{Target: target, OneHit: true}},
			Condition:  cards.ConditionOneSuccess,
			Effects:    []*cards.ItemData{remover},
		})
		require.NoError(t, err)
		assert.Empty(t, out.Results)
		assert.Equal(t, 0, out.Applied)
	})

	t.Run("limit caps applications within one call", func(t *testing.T) {
		a := testutils.CreateTestActor("a", "A", 11)
		b := testutils.CreateTestActor("b", "B", 11)
		c := testutils.CreateTestActor("c", "C", 11)

		out, err := svc.ProcessStatusResults(context.Background(), &status.ProcessInput{
			HitResults: []*combat.TargetHitResult{
				{Target: a, OneHit: true},
				{Target: b, OneHit: true},
				{Target: c, OneHit: true},
			},
			Condition: cards.ConditionOneSuccess,
			Effects:   []*cards.ItemData{testutils.CreateTestStatusEffect("eff-1", "Stagger")},
			Limit:     2,
		})
		require.NoError(t, err)
		assert.Equal(t, 2, out.Applied)
		assert.True(t, a.HasEffect("Stagger"))
		assert.True(t, b.HasEffect("Stagger"))
		assert.False(t, c.HasEffect("Stagger"))
	})

	t.Run("limit spans calls through the carried count", func(t *testing.T) {
		target := testutils.CreateTestActor("t1", "Target", 11)

		// A previous repetition already used up the whole limit
		out, err := svc.ProcessStatusResults(context.Background(), &status.ProcessInput{
			HitResults: []*combat.TargetHitResult{{Target: target, OneHit: true}},
			Condition:  cards.ConditionOneSuccess,
			Effects:    []*cards.ItemData{testutils.CreateTestStatusEffect("eff-1", "Stagger")},
			Limit:      2,
			Applied:    2,
		})
		require.NoError(t, err)
		assert.Empty(t, out.Results)
		assert.Equal(t, 2, out.Applied)
		assert.False(t, target.HasEffect("Stagger"))
	})
}
