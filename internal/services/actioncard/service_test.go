package actioncard_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidewater-games/actioncard-bot/internal/chat"
	"github.com/tidewater-games/actioncard-bot/internal/dice"
	"github.com/tidewater-games/actioncard-bot/internal/domain/cards"
	errs "github.com/tidewater-games/actioncard-bot/internal/errors"
	"github.com/tidewater-games/actioncard-bot/internal/repositories/actioncards"
	"github.com/tidewater-games/actioncard-bot/internal/repositories/gameactors"
	"github.com/tidewater-games/actioncard-bot/internal/services/actioncard"
	"github.com/tidewater-games/actioncard-bot/internal/services/attackchain"
	"github.com/tidewater-games/actioncard-bot/internal/services/damage"
	"github.com/tidewater-games/actioncard-bot/internal/services/repetition"
	"github.com/tidewater-games/actioncard-bot/internal/services/status"
	"github.com/tidewater-games/actioncard-bot/internal/services/targeting"
	"github.com/tidewater-games/actioncard-bot/internal/testutils"
	"github.com/tidewater-games/actioncard-bot/internal/world"
)

type harness struct {
	provider *world.InMemoryProvider
	roller   *dice.MockRoller
	cardRepo actioncards.Repository
	actors   gameactors.Repository
	bus      *chat.Bus
	service  actioncard.Service
}

func newHarness() *harness {
	provider := world.NewInMemoryProvider()
	roller := dice.NewMockRoller()
	cardRepo := actioncards.NewInMemoryRepository()
	actorRepo := gameactors.NewInMemoryRepository()
	bus := chat.NewBus()

	targetingSvc := targeting.NewService(&targeting.ServiceConfig{Provider: provider})
	chainSvc := attackchain.NewService(&attackchain.ServiceConfig{
		Targeting: targetingSvc,
		Damage:    damage.NewService(&damage.ServiceConfig{Roller: roller}),
		Status:    status.NewService(&status.ServiceConfig{}),
		Provider:  provider,
	})
	repetitionSvc := repetition.NewService(&repetition.ServiceConfig{
		Executor: chainSvc,
		Roller:   roller,
	})

	return &harness{
		provider: provider,
		roller:   roller,
		cardRepo: cardRepo,
		actors:   actorRepo,
		bus:      bus,
		service: actioncard.NewService(&actioncard.ServiceConfig{
			Repository: cardRepo,
			ActorRepo:  actorRepo,
			Targeting:  targetingSvc,
			Repetition: repetitionSvc,
			Provider:   provider,
			Bus:        bus,
			Roller:     roller,
		}),
	}
}

func (h *harness) storeCard(t *testing.T, card *cards.ActionCard) {
	t.Helper()
	require.NoError(t, h.cardRepo.Create(context.Background(), card))
}

func TestSetEmbeddedItem(t *testing.T) {
	t.Run("stores an independent copy with a fresh ID", func(t *testing.T) {
		h := newHarness()
		h.storeCard(t, &cards.ActionCard{ID: "card-1", Name: "Card"})

		source := testutils.CreateTestItem("src-1", "Strike", "1d20")
		source.Changes = []cards.EffectChange{{Key: "k", Value: "v"}}

		card, err := h.service.SetEmbeddedItem(context.Background(), "card-1", source)
		require.NoError(t, err)
		require.NotNil(t, card.EmbeddedItem)

		assert.NotEqual(t, source.ID, card.EmbeddedItem.ID)
		assert.Equal(t, "Strike", card.EmbeddedItem.Name)

		// Editing the source afterwards never reaches the copy
		source.Name = "Renamed"
		source.Changes[0].Value = "mutated"
		stored, err := h.service.GetCard(context.Background(), "card-1")
		require.NoError(t, err)
		assert.Equal(t, "Strike", stored.EmbeddedItem.Name)
		assert.Equal(t, "v", stored.EmbeddedItem.Changes[0].Value)
	})

	t.Run("rejects non-embeddable kinds", func(t *testing.T) {
		h := newHarness()
		h.storeCard(t, &cards.ActionCard{ID: "card-1", Name: "Card"})

		_, err := h.service.SetEmbeddedItem(context.Background(), "card-1", &cards.ItemData{
			ID:   "src-1",
			Kind: cards.KindStatus,
		})
		require.Error(t, err)
		assert.True(t, errs.IsInvalidArgument(err))
	})

	t.Run("unsupported roll type becomes roll", func(t *testing.T) {
		h := newHarness()
		h.storeCard(t, &cards.ActionCard{ID: "card-1", Name: "Card"})

		source := testutils.CreateTestItem("src-1", "Charge", "1d20")
		source.RollType = cards.RollType("charge")

		card, err := h.service.SetEmbeddedItem(context.Background(), "card-1", source)
		require.NoError(t, err)
		assert.Equal(t, cards.RollTypeRoll, card.EmbeddedItem.RollType)
		// The source keeps its original roll type
		assert.Equal(t, cards.RollType("charge"), source.RollType)
	})

	t.Run("roll type none survives sanitization", func(t *testing.T) {
		h := newHarness()
		h.storeCard(t, &cards.ActionCard{ID: "card-1", Name: "Card"})

		source := testutils.CreateTestItem("src-1", "Aura", "")
		source.RollType = cards.RollTypeNone

		card, err := h.service.SetEmbeddedItem(context.Background(), "card-1", source)
		require.NoError(t, err)
		assert.Equal(t, cards.RollTypeNone, card.EmbeddedItem.RollType)
	})

	t.Run("gear always gets an effect-change container", func(t *testing.T) {
		h := newHarness()
		h.storeCard(t, &cards.ActionCard{ID: "card-1", Name: "Card"})

		source := testutils.CreateTestItem("src-1", "Bomb", "1d20")
		source.Kind = cards.KindGear

		card, err := h.service.SetEmbeddedItem(context.Background(), "card-1", source)
		require.NoError(t, err)
		assert.NotEmpty(t, card.EmbeddedItem.Changes)
	})
}

func TestClearEmbeddedItem(t *testing.T) {
	h := newHarness()
	h.storeCard(t, &cards.ActionCard{ID: "card-1", Name: "Card"})

	source := testutils.CreateTestItem("src-1", "Strike", "1d20")
	_, err := h.service.SetEmbeddedItem(context.Background(), "card-1", source)
	require.NoError(t, err)

	card, err := h.service.ClearEmbeddedItem(context.Background(), "card-1")
	require.NoError(t, err)
	assert.Nil(t, card.EmbeddedItem)

	// The source item is untouched by the clear
	assert.Equal(t, "Strike", source.Name)
	assert.Equal(t, "src-1", source.ID)
}

func TestStatusEffectManagement(t *testing.T) {
	h := newHarness()
	h.storeCard(t, &cards.ActionCard{ID: "card-1", Name: "Card"})

	effect := testutils.CreateTestStatusEffect("src-eff", "Burning")

	card, err := h.service.AddStatusEffect(context.Background(), "card-1", effect)
	require.NoError(t, err)
	require.Len(t, card.StatusEffects, 1)
	assert.NotEqual(t, "src-eff", card.StatusEffects[0].ID)

	_, err = h.service.AddStatusEffect(context.Background(), "card-1", testutils.CreateTestItem("x", "NotStatus", "1d4"))
	assert.Error(t, err)

	card, err = h.service.RemoveStatusEffect(context.Background(), "card-1", card.StatusEffects[0].ID)
	require.NoError(t, err)
	assert.Empty(t, card.StatusEffects)

	_, err = h.service.RemoveStatusEffect(context.Background(), "card-1", "missing")
	assert.True(t, errs.IsNotFound(err))
}

func TestAddTransformation(t *testing.T) {
	h := newHarness()
	h.storeCard(t, &cards.ActionCard{ID: "card-1", Name: "Card"})

	card, err := h.service.AddTransformation(context.Background(), "card-1", &cards.ItemData{
		ID:   "src-tf",
		Name: "Stoneform",
		Kind: cards.KindTransformation,
	})
	require.NoError(t, err)
	require.Len(t, card.Transformations, 1)
	assert.NotEqual(t, "src-tf", card.Transformations[0].ID)

	_, err = h.service.AddTransformation(context.Background(), "card-1", testutils.CreateTestStatusEffect("x", "Status"))
	assert.Error(t, err)
}

func TestUpdateEmbeddedItem(t *testing.T) {
	h := newHarness()
	h.storeCard(t, &cards.ActionCard{ID: "card-1", Name: "Card"})
	_, err := h.service.SetEmbeddedItem(context.Background(), "card-1", testutils.CreateTestItem("src-1", "Strike", "1d20"))
	require.NoError(t, err)

	t.Run("patches embedded fields", func(t *testing.T) {
		out, err := h.service.UpdateEmbeddedItem(context.Background(), &actioncard.UpdateEmbeddedInput{
			CardID: "card-1",
			Patch:  map[string]any{"name": "Heavy Strike", "formula": "2d20"},
		})
		require.NoError(t, err)
		assert.Equal(t, "Heavy Strike", out.Card.EmbeddedItem.Name)
		assert.Equal(t, "2d20", out.Card.EmbeddedItem.Formula)
		assert.False(t, out.SuppressSheetRefresh)
	})

	t.Run("nested-editor writes suppress the sheet refresh", func(t *testing.T) {
		out, err := h.service.UpdateEmbeddedItem(context.Background(), &actioncard.UpdateEmbeddedInput{
			CardID:           "card-1",
			Patch:            map[string]any{"quantity": 4},
			FromEmbeddedItem: true,
		})
		require.NoError(t, err)
		assert.True(t, out.SuppressSheetRefresh)
		assert.Equal(t, 4, out.Card.EmbeddedItem.Quantity)
	})

	t.Run("unknown paths are rejected", func(t *testing.T) {
		_, err := h.service.UpdateEmbeddedItem(context.Background(), &actioncard.UpdateEmbeddedInput{
			CardID: "card-1",
			Patch:  map[string]any{"cost.power": 3},
		})
		assert.True(t, errs.IsInvalidArgument(err))
	})

	t.Run("card without an embedded item", func(t *testing.T) {
		h.storeCard(t, &cards.ActionCard{ID: "card-2", Name: "Empty"})
		_, err := h.service.UpdateEmbeddedItem(context.Background(), &actioncard.UpdateEmbeddedInput{
			CardID: "card-2",
			Patch:  map[string]any{"name": "x"},
		})
		assert.True(t, errs.IsNotFound(err))
	})
}

func TestExecute(t *testing.T) {
	setup := func(t *testing.T) (*harness, *cards.ActionCard) {
		t.Helper()
		h := newHarness()

		attacker := testutils.CreateTestActor("atk", "Attacker", 11)
		require.NoError(t, h.actors.Create(context.Background(), attacker))

		target := testutils.CreateTestActor("t1", "Target", 10)
		tokens := testutils.CreateTestScene(h.provider, "scene-1", target)
		h.provider.SetSelection("user-1", tokens)

		card := testutils.CreateTestCard("card-1", "atk")
		card.EmbeddedItem.Cost.Power = 2
		h.storeCard(t, card)

		return h, card
	}

	t.Run("full pass: roll capture, damage, cost, persistence", func(t *testing.T) {
		h, _ := setup(t)
		// 1d20+5 attack consumes 10 (total 15), 2d6 damage consumes 3+4
		h.roller.SetRolls([]int{10, 3, 4})

		result, err := h.service.Execute(context.Background(), &actioncard.ExecuteInput{
			CardID:      "card-1",
			ActorID:     "atk",
			UserID:      "user-1",
			ApplyDamage: true,
		})
		require.NoError(t, err)
		assert.Equal(t, 1, result.Completed)
		assert.Equal(t, repetition.StopCompleted, result.StopReason)

		exec := result.Executions[0]
		require.NotNil(t, exec.BaseRoll)
		assert.Equal(t, 15, exec.BaseRoll.Total)
		require.Len(t, exec.DamageResults, 1)
		assert.Equal(t, 13, h.provider.Actor("t1").Resources.HP.Value)

		// The power cost was paid and persisted
		stored, err := h.actors.Get(context.Background(), "atk")
		require.NoError(t, err)
		assert.Equal(t, 8, stored.Resources.Power)
	})

	t.Run("insufficient power blocks the execution", func(t *testing.T) {
		h, card := setup(t)
		card.EmbeddedItem.Cost.Power = 99
		require.NoError(t, h.cardRepo.Update(context.Background(), card))

		_, err := h.service.Execute(context.Background(), &actioncard.ExecuteInput{
			CardID:  "card-1",
			ActorID: "atk",
			UserID:  "user-1",
		})
		require.Error(t, err)
		assert.True(t, errs.IsValidation(err))
	})

	t.Run("gear with no stock blocks the execution", func(t *testing.T) {
		h, card := setup(t)
		card.EmbeddedItem.Kind = cards.KindGear
		card.EmbeddedItem.Cost.Power = 0
		card.EmbeddedItem.TracksQuantity = true
		card.EmbeddedItem.Quantity = 0
		require.NoError(t, h.cardRepo.Update(context.Background(), card))

		_, err := h.service.Execute(context.Background(), &actioncard.ExecuteInput{
			CardID:  "card-1",
			ActorID: "atk",
			UserID:  "user-1",
		})
		require.Error(t, err)
		assert.True(t, errs.IsValidation(err))
	})

	t.Run("card without an embedded item is not executable", func(t *testing.T) {
		h, _ := setup(t)
		h.storeCard(t, &cards.ActionCard{ID: "card-2", Name: "Empty", OwnerID: "atk"})

		_, err := h.service.Execute(context.Background(), &actioncard.ExecuteInput{
			CardID:  "card-2",
			ActorID: "atk",
			UserID:  "user-1",
		})
		assert.True(t, errs.IsInvalidArgument(err))
	})

	t.Run("enforced status choice demands a selection", func(t *testing.T) {
		h, card := setup(t)
		card.EmbeddedItem.Cost.Power = 0
		card.EnforceStatusChoice = true
		card.StatusEffects = []*cards.ItemData{
			testutils.CreateTestStatusEffect("eff-1", "Burning"),
			testutils.CreateTestStatusEffect("eff-2", "Chilled"),
		}
		require.NoError(t, h.cardRepo.Update(context.Background(), card))

		_, err := h.service.Execute(context.Background(), &actioncard.ExecuteInput{
			CardID:      "card-1",
			ActorID:     "atk",
			UserID:      "user-1",
			ApplyStatus: true,
		})
		assert.True(t, errs.IsValidation(err))

		// An explicit choice unblocks it
		h.roller.SetRolls([]int{19})
		result, err := h.service.Execute(context.Background(), &actioncard.ExecuteInput{
			CardID:           "card-1",
			ActorID:          "atk",
			UserID:           "user-1",
			ApplyStatus:      true,
			SelectedStatusID: "eff-1",
		})
		require.NoError(t, err)
		require.Len(t, result.Executions, 1)
		require.Len(t, result.Executions[0].StatusResults, 1)
		assert.True(t, h.provider.Actor("t1").HasEffect("Burning"))
		assert.False(t, h.provider.Actor("t1").HasEffect("Chilled"))
	})

	t.Run("usage and summary messages reach the chat pipeline", func(t *testing.T) {
		h, card := setup(t)
		card.EmbeddedItem.Cost.Power = 0
		require.NoError(t, h.cardRepo.Update(context.Background(), card))

		var messages []*chat.Message
		h.bus.Subscribe(func(msg *chat.Message) {
			messages = append(messages, msg)
		})

		h.roller.SetRolls([]int{12})
		_, err := h.service.Execute(context.Background(), &actioncard.ExecuteInput{
			CardID:  "card-1",
			ActorID: "atk",
			UserID:  "user-1",
		})
		require.NoError(t, err)

		require.Len(t, messages, 2)
		assert.NotNil(t, messages[0].Roll)
		assert.Equal(t, card.EmbeddedItem.ID, messages[0].SourceItemID)
		assert.Contains(t, messages[1].Content, "resolved")
	})
}
