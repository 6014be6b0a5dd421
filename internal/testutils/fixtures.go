package testutils

import (
	"fmt"

	"github.com/tidewater-games/actioncard-bot/internal/domain/actors"
	"github.com/tidewater-games/actioncard-bot/internal/domain/cards"
	"github.com/tidewater-games/actioncard-bot/internal/world"
)

// CreateTestActor creates an actor with the given AC on both attack stats
func CreateTestActor(id, name string, ac int) *actors.Actor {
	return &actors.Actor{
		ID:   id,
		UUID: "uuid-" + id,
		Name: name,
		Stats: map[string]*actors.StatBlock{
			"might": {Total: 4, AC: actors.ACBlock{Total: ac}},
			"grace": {Total: 3, AC: actors.ACBlock{Total: ac}},
		},
		Resources: actors.Resources{
			Power: 10,
			HP:    actors.HitPoints{Value: 20, Max: 20},
		},
	}
}

// CreateTestActorWithACs creates an actor with distinct ACs per stat
func CreateTestActorWithACs(id, name string, mightAC, graceAC int) *actors.Actor {
	actor := CreateTestActor(id, name, mightAC)
	actor.Stats["grace"].AC.Total = graceAC
	return actor
}

// CreateTestItem creates a rollable combat-power item
func CreateTestItem(id, name, formula string) *cards.ItemData {
	return &cards.ItemData{
		ID:       id,
		Name:     name,
		Kind:     cards.KindCombatPower,
		RollType: cards.RollTypeRoll,
		Formula:  formula,
	}
}

// CreateTestCard creates an attack-chain card with an embedded item
func CreateTestCard(id, ownerID string) *cards.ActionCard {
	return &cards.ActionCard{
		ID:           id,
		OwnerID:      ownerID,
		Name:         "Test Card " + id,
		Mode:         cards.ModeAttackChain,
		EmbeddedItem: CreateTestItem(id+"-item", "Test Strike", "1d20 + 5"),
		AttackChain: cards.AttackChainConfig{
			FirstStat:       "might",
			SecondStat:      "grace",
			DamageCondition: cards.ConditionOneSuccess,
			DamageFormula:   "2d6",
			DamageType:      "slashing",
			StatusCondition: cards.ConditionTwoSuccesses,
		},
	}
}

// CreateTestStatusEffect creates a status-kind item for embedding
func CreateTestStatusEffect(id, name string) *cards.ItemData {
	return &cards.ItemData{
		ID:              id,
		Name:            name,
		Kind:            cards.KindStatus,
		StatusOperation: cards.StatusApply,
	}
}

// CreateTestScene builds a scene with one token per actor, and registers
// everything with the provider. Token IDs are "tok-<actorID>".
func CreateTestScene(provider *world.InMemoryProvider, sceneID string, actorList ...*actors.Actor) []*world.Token {
	provider.AddScene(&world.Scene{ID: sceneID, Name: "Scene " + sceneID})

	tokens := make([]*world.Token, 0, len(actorList))
	for _, a := range actorList {
		provider.AddActor(a)
		token := &world.Token{
			ID:       fmt.Sprintf("tok-%s", a.ID),
			Name:     a.Name,
			SceneID:  sceneID,
			ActorID:  a.ID,
			IsLinked: true,
		}
		provider.PlaceToken(token)
		tokens = append(tokens, token)
	}
	return tokens
}
