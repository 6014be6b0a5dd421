package actors_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidewater-games/actioncard-bot/internal/dice"
	"github.com/tidewater-games/actioncard-bot/internal/domain/actors"
	"github.com/tidewater-games/actioncard-bot/internal/domain/cards"
)

func newActor() *actors.Actor {
	return &actors.Actor{
		ID:   "a1",
		Name: "Alice",
		Stats: map[string]*actors.StatBlock{
			"might": {Total: 4, AC: actors.ACBlock{Total: 14}},
			"bare":  {Total: 2},
		},
		Resources: actors.Resources{
			Power: 5,
			HP:    actors.HitPoints{Value: 20, Max: 20},
		},
	}
}

func TestStatAC(t *testing.T) {
	actor := newActor()

	assert.Equal(t, 14, actor.StatAC("might"))
	assert.Equal(t, actors.DefaultAC, actor.StatAC(""))
	assert.Equal(t, actors.DefaultAC, actor.StatAC("missing"))
	// A stat with no AC total falls back too
	assert.Equal(t, actors.DefaultAC, actor.StatAC("bare"))
}

func TestDamageResolve(t *testing.T) {
	t.Run("damage floors at zero", func(t *testing.T) {
		actor := newActor()
		roller := dice.NewMockRoller()
		roller.SetRolls([]int{6, 6, 6, 6})

		roll, err := actor.DamageResolve(roller, &actors.DamageOptions{
			Formula:    "4d6",
			DamageType: "fire",
		})
		require.NoError(t, err)
		assert.Equal(t, 24, roll.Total)
		assert.Equal(t, 0, actor.Resources.HP.Value)
	})

	t.Run("healing caps at max", func(t *testing.T) {
		actor := newActor()
		actor.Resources.HP.Value = 18
		roller := dice.NewMockRoller()
		roller.SetRolls([]int{8})

		_, err := actor.DamageResolve(roller, &actors.DamageOptions{
			Formula:    "1d8",
			DamageType: cards.DamageTypeHeal,
		})
		require.NoError(t, err)
		assert.Equal(t, 20, actor.Resources.HP.Value)
	})

	t.Run("empty formula is rejected", func(t *testing.T) {
		actor := newActor()
		_, err := actor.DamageResolve(dice.NewMockRoller(), &actors.DamageOptions{DamageType: "fire"})
		assert.Error(t, err)
	})
}

func TestUpdate(t *testing.T) {
	t.Run("dotted resource paths", func(t *testing.T) {
		actor := newActor()

		err := actor.Update(map[string]any{
			"resources.power":    2,
			"resources.hp.value": 12,
		})
		require.NoError(t, err)
		assert.Equal(t, 2, actor.Resources.Power)
		assert.Equal(t, 12, actor.Resources.HP.Value)
	})

	t.Run("float values from decoded JSON", func(t *testing.T) {
		actor := newActor()

		err := actor.Update(map[string]any{"resources.power": float64(3)})
		require.NoError(t, err)
		assert.Equal(t, 3, actor.Resources.Power)
	})

	t.Run("unknown path is rejected", func(t *testing.T) {
		actor := newActor()
		assert.Error(t, actor.Update(map[string]any{"resources.mana": 4}))
	})
}

func TestEffects(t *testing.T) {
	actor := newActor()

	require.NoError(t, actor.AddEffect(&cards.ItemData{ID: "e1", Name: "Burning", Kind: cards.KindStatus}))
	require.NoError(t, actor.AddEffect(&cards.ItemData{ID: "e2", Name: "burning", Kind: cards.KindStatus}))
	require.NoError(t, actor.AddEffect(&cards.ItemData{ID: "e3", Name: "Chilled", Kind: cards.KindStatus}))

	assert.True(t, actor.HasEffect("Burning"))

	// Removal matches by name, case-insensitively
	removed := actor.RemoveEffectsByName("BURNING")
	assert.Equal(t, 2, removed)
	assert.False(t, actor.HasEffect("Burning"))
	assert.True(t, actor.HasEffect("Chilled"))

	assert.Error(t, actor.AddEffect(&cards.ItemData{Name: "NoID"}))
}

func TestActorClone(t *testing.T) {
	actor := newActor()
	require.NoError(t, actor.AddEffect(&cards.ItemData{ID: "e1", Name: "Burning", Kind: cards.KindStatus}))

	clone := actor.Clone()
	require.NotSame(t, actor, clone)
	assert.Equal(t, actor, clone)

	clone.Stats["might"].AC.Total = 99
	clone.Effects[0].Name = "Changed"
	clone.Resources.HP.Value = 1

	assert.Equal(t, 14, actor.Stats["might"].AC.Total)
	assert.Equal(t, "Burning", actor.Effects[0].Name)
	assert.Equal(t, 20, actor.Resources.HP.Value)
}
