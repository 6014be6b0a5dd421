package cards_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidewater-games/actioncard-bot/internal/domain/cards"
)

func TestIsExecutable(t *testing.T) {
	t.Run("attack chain needs an embedded item", func(t *testing.T) {
		card := &cards.ActionCard{Mode: cards.ModeAttackChain}
		assert.False(t, card.IsExecutable())

		card.EmbeddedItem = &cards.ItemData{ID: "i1", Kind: cards.KindCombatPower}
		assert.True(t, card.IsExecutable())
	})

	t.Run("saved damage needs a formula, not an item", func(t *testing.T) {
		card := &cards.ActionCard{Mode: cards.ModeSavedDamage}
		assert.False(t, card.IsExecutable())

		card.SavedDamage.Formula = "3d6"
		assert.True(t, card.IsExecutable())
	})
}

func TestCardLookups(t *testing.T) {
	card := &cards.ActionCard{
		StatusEffects: []*cards.ItemData{
			{ID: "eff-1", Name: "Burning", Kind: cards.KindStatus},
			{ID: "eff-2", Name: "Chilled", Kind: cards.KindStatus},
		},
		Transformations: []*cards.ItemData{
			{ID: "tf-1", Name: "Stoneform", Kind: cards.KindTransformation},
		},
	}

	assert.Equal(t, "Chilled", card.StatusEffect("eff-2").Name)
	assert.Nil(t, card.StatusEffect("missing"))
	assert.Equal(t, "Stoneform", card.Transformation("tf-1").Name)
	assert.Nil(t, card.Transformation("eff-1"))
}

func TestActionCardClone(t *testing.T) {
	card := &cards.ActionCard{
		ID:   "card-1",
		Name: "Test",
		Mode: cards.ModeAttackChain,
		EmbeddedItem: &cards.ItemData{
			ID:      "item-1",
			Name:    "Strike",
			Kind:    cards.KindCombatPower,
			Changes: []cards.EffectChange{{Key: "k", Value: "v"}},
		},
		StatusEffects: []*cards.ItemData{
			{ID: "eff-1", Name: "Burning", Kind: cards.KindStatus},
		},
		Transformations: []*cards.ItemData{
			{ID: "tf-1", Name: "Stoneform", Kind: cards.KindTransformation},
		},
	}

	clone := card.Clone()
	require.NotSame(t, card, clone)
	assert.Equal(t, card, clone)

	clone.EmbeddedItem.Name = "Changed"
	clone.StatusEffects[0].Name = "Changed"
	clone.Transformations[0].Name = "Changed"

	assert.Equal(t, "Strike", card.EmbeddedItem.Name)
	assert.Equal(t, "Burning", card.StatusEffects[0].Name)
	assert.Equal(t, "Stoneform", card.Transformations[0].Name)
}
