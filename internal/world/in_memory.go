package world

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/tidewater-games/actioncard-bot/internal/domain/actors"
)

// InMemoryProvider is a Provider backed by in-process maps. It doubles as the
// test world and as the fallback when no host connection is configured.
type InMemoryProvider struct {
	mu        sync.RWMutex
	scenes    map[string]*Scene
	actors    map[string]*actors.Actor
	byUUID    map[string]string   // actor UUID -> actor ID
	selection map[string][]string // userID -> "sceneID/tokenID"
	gms       map[string]bool
}

// NewInMemoryProvider creates an empty in-memory world
func NewInMemoryProvider() *InMemoryProvider {
	return &InMemoryProvider{
		scenes:    make(map[string]*Scene),
		actors:    make(map[string]*actors.Actor),
		byUUID:    make(map[string]string),
		selection: make(map[string][]string),
		gms:       make(map[string]bool),
	}
}

// AddScene registers a scene
func (p *InMemoryProvider) AddScene(scene *Scene) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if scene.Tokens == nil {
		scene.Tokens = make(map[string]*Token)
	}
	p.scenes[scene.ID] = scene
}

// AddActor registers an actor in the world
func (p *InMemoryProvider) AddActor(actor *actors.Actor) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.actors[actor.ID] = actor
	if actor.UUID != "" {
		p.byUUID[actor.UUID] = actor.ID
	}
}

// PlaceToken puts a token on its scene
func (p *InMemoryProvider) PlaceToken(token *Token) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	scene, ok := p.scenes[token.SceneID]
	if !ok {
		return fmt.Errorf("scene not found: %s", token.SceneID)
	}
	scene.Tokens[token.ID] = token
	return nil
}

// DeleteToken removes a token from its scene
func (p *InMemoryProvider) DeleteToken(sceneID, tokenID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if scene, ok := p.scenes[sceneID]; ok {
		delete(scene.Tokens, tokenID)
	}
}

// DeleteActor removes an actor from the world
func (p *InMemoryProvider) DeleteActor(actorID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if actor, ok := p.actors[actorID]; ok {
		delete(p.byUUID, actor.UUID)
		delete(p.actors, actorID)
	}
}

// SetSelection records the user's current target selection
func (p *InMemoryProvider) SetSelection(userID string, tokens []*Token) {
	p.mu.Lock()
	defer p.mu.Unlock()

	refs := make([]string, 0, len(tokens))
	for _, t := range tokens {
		refs = append(refs, t.SceneID+"/"+t.ID)
	}
	p.selection[userID] = refs
}

// SetGM marks a user as GM-privileged
func (p *InMemoryProvider) SetGM(userID string, isGM bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gms[userID] = isGM
}

// Token implements Provider.Token
func (p *InMemoryProvider) Token(sceneID, tokenID string) *Token {
	p.mu.RLock()
	defer p.mu.RUnlock()

	scene, ok := p.scenes[sceneID]
	if !ok {
		return nil
	}
	return scene.Tokens[tokenID]
}

// Actor implements Provider.Actor
func (p *InMemoryProvider) Actor(actorID string) *actors.Actor {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.actors[actorID]
}

// ActorByUUID implements Provider.ActorByUUID
func (p *InMemoryProvider) ActorByUUID(uuid string) *actors.Actor {
	p.mu.RLock()
	defer p.mu.RUnlock()

	id, ok := p.byUUID[uuid]
	if !ok {
		return nil
	}
	return p.actors[id]
}

// ActiveToken implements Provider.ActiveToken
func (p *InMemoryProvider) ActiveToken(actorID string) *Token {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, scene := range p.scenes {
		for _, token := range scene.Tokens {
			if token.ActorID == actorID {
				return token
			}
		}
	}
	return nil
}

// SelectedTargets implements Provider.SelectedTargets. Selections pointing at
// tokens that no longer exist are silently dropped.
func (p *InMemoryProvider) SelectedTargets(ctx context.Context, userID string) ([]*Token, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	refs := p.selection[userID]
	tokens := make([]*Token, 0, len(refs))
	for _, ref := range refs {
		sceneID, tokenID, ok := strings.Cut(ref, "/")
		if !ok {
			continue
		}
		scene, exists := p.scenes[sceneID]
		if !exists {
			continue
		}
		if token, live := scene.Tokens[tokenID]; live {
			tokens = append(tokens, token)
		}
	}
	return tokens, nil
}

// IsGM implements Provider.IsGM
func (p *InMemoryProvider) IsGM(userID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.gms[userID]
}
