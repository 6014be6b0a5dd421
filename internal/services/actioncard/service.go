package actioncard

//go:generate mockgen -destination=mock/mock_service.go -package=mockactioncard -source=service.go

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/tidewater-games/actioncard-bot/internal/chat"
	"github.com/tidewater-games/actioncard-bot/internal/dice"
	"github.com/tidewater-games/actioncard-bot/internal/domain/cards"
	"github.com/tidewater-games/actioncard-bot/internal/domain/combat"
	errs "github.com/tidewater-games/actioncard-bot/internal/errors"
	"github.com/tidewater-games/actioncard-bot/internal/notify"
	"github.com/tidewater-games/actioncard-bot/internal/repositories/actioncards"
	"github.com/tidewater-games/actioncard-bot/internal/repositories/gameactors"
	"github.com/tidewater-games/actioncard-bot/internal/services/repetition"
	"github.com/tidewater-games/actioncard-bot/internal/services/targeting"
	"github.com/tidewater-games/actioncard-bot/internal/uuid"
	"github.com/tidewater-games/actioncard-bot/internal/world"
)

// Service manages action cards: CRUD, embedded item management with
// copy-on-embed semantics, and the execution entry point that wires targets,
// the captured roll, and the repetition loop together
type Service interface {
	// CreateCard creates and stores a new action card
	CreateCard(ctx context.Context, input *CreateCardInput) (*cards.ActionCard, error)

	// GetCard retrieves an action card by ID
	GetCard(ctx context.Context, id string) (*cards.ActionCard, error)

	// ListCards retrieves all cards owned by an actor
	ListCards(ctx context.Context, ownerID string) ([]*cards.ActionCard, error)

	// DeleteCard removes an action card
	DeleteCard(ctx context.Context, id string) error

	// SetEmbeddedItem deep-copies the source item into the card; the copy
	// gets a fresh ID and a sanitized roll type, and never references the
	// source again
	SetEmbeddedItem(ctx context.Context, cardID string, source *cards.ItemData) (*cards.ActionCard, error)

	// ClearEmbeddedItem removes the embedded copy without touching the source
	ClearEmbeddedItem(ctx context.Context, cardID string) (*cards.ActionCard, error)

	// AddStatusEffect attaches a status-effect copy to the card
	AddStatusEffect(ctx context.Context, cardID string, source *cards.ItemData) (*cards.ActionCard, error)

	// RemoveStatusEffect detaches an embedded status effect
	RemoveStatusEffect(ctx context.Context, cardID, effectID string) (*cards.ActionCard, error)

	// AddTransformation attaches a transformation copy to the card
	AddTransformation(ctx context.Context, cardID string, source *cards.ItemData) (*cards.ActionCard, error)

	// UpdateEmbeddedItem edits the embedded copy through the card's own
	// update path
	UpdateEmbeddedItem(ctx context.Context, input *UpdateEmbeddedInput) (*UpdateEmbeddedOutput, error)

	// Execute runs the card: lock targets, trigger the embedded item with
	// bypass, capture the roll, then drive the repetition loop
	Execute(ctx context.Context, input *ExecuteInput) (*repetition.RunResult, error)
}

// CreateCardInput contains data for creating an action card
type CreateCardInput struct {
	OwnerID     string
	Name        string
	Description string
	Mode        cards.Mode
}

// UpdateEmbeddedInput edits fields of a card's embedded item copy
type UpdateEmbeddedInput struct {
	CardID string
	Patch  map[string]any

	// FromEmbeddedItem marks writes originating from the nested editor so
	// the UI layer can suppress sheet-closing side effects
	FromEmbeddedItem bool
}

// UpdateEmbeddedOutput is the result of an embedded-item edit
type UpdateEmbeddedOutput struct {
	Card *cards.ActionCard

	// SuppressSheetRefresh mirrors the FromEmbeddedItem flag back to the
	// presentation layer
	SuppressSheetRefresh bool
}

// ExecuteInput contains everything a card execution needs from the caller
type ExecuteInput struct {
	CardID  string
	ActorID string
	UserID  string

	// LockedTargets is the snapshot taken when the user confirmed the
	// action; empty means lock from live selection now
	LockedTargets []*combat.LockedTarget

	ApplyDamage      bool
	ApplyStatus      bool
	SelectedStatusID string
	Transformations  map[string]string

	// CaptureTimeout overrides the roll-capture timeout; zero uses the default
	CaptureTimeout time.Duration
}

type service struct {
	repository     actioncards.Repository
	actorRepo      gameactors.Repository
	targeting      targeting.Service
	repetition     repetition.Service
	provider       world.Provider
	bus            *chat.Bus
	roller         dice.Roller
	uuidGenerator  uuid.Generator
	notifier       notify.Notifier
	captureTimeout time.Duration
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	Repository    actioncards.Repository
	ActorRepo     gameactors.Repository
	Targeting     targeting.Service
	Repetition    repetition.Service
	Provider      world.Provider
	Bus           *chat.Bus
	Roller        dice.Roller
	UUIDGenerator uuid.Generator
	Notifier      notify.Notifier

	// CaptureTimeout bounds the roll-capture wait when the execution input
	// does not override it; zero falls back to the chat package default
	CaptureTimeout time.Duration
}

// NewService creates a new action-card service
func NewService(cfg *ServiceConfig) Service {
	if cfg.Repository == nil {
		panic("card repository is required")
	}
	if cfg.Targeting == nil {
		panic("targeting service is required")
	}
	if cfg.Repetition == nil {
		panic("repetition service is required")
	}
	if cfg.Provider == nil {
		panic("world provider is required")
	}
	if cfg.Bus == nil {
		panic("chat bus is required")
	}

	svc := &service{
		repository:     cfg.Repository,
		actorRepo:      cfg.ActorRepo,
		targeting:      cfg.Targeting,
		repetition:     cfg.Repetition,
		provider:       cfg.Provider,
		bus:            cfg.Bus,
		captureTimeout: cfg.CaptureTimeout,
	}

	if cfg.Roller != nil {
		svc.roller = cfg.Roller
	} else {
		svc.roller = dice.NewRandomRoller()
	}
	if cfg.UUIDGenerator != nil {
		svc.uuidGenerator = cfg.UUIDGenerator
	} else {
		svc.uuidGenerator = uuid.NewGoogleUUIDGenerator()
	}
	if cfg.Notifier != nil {
		svc.notifier = cfg.Notifier
	} else {
		svc.notifier = notify.NewLogNotifier()
	}

	return svc
}

// CreateCard creates and stores a new action card
func (s *service) CreateCard(ctx context.Context, input *CreateCardInput) (*cards.ActionCard, error) {
	if input == nil {
		return nil, errs.InvalidArgument("input cannot be nil")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, errs.InvalidArgument("card name is required")
	}

	mode := input.Mode
	if mode == "" {
		mode = cards.ModeAttackChain
	}

	card := &cards.ActionCard{
		ID:          s.uuidGenerator.New(),
		OwnerID:     input.OwnerID,
		Name:        input.Name,
		Description: input.Description,
		Mode:        mode,
	}

	if err := s.repository.Create(ctx, card); err != nil {
		return nil, errs.Wrap(err, "failed to create action card")
	}

	return card, nil
}

// GetCard retrieves an action card by ID
func (s *service) GetCard(ctx context.Context, id string) (*cards.ActionCard, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errs.InvalidArgument("card ID is required")
	}
	return s.repository.Get(ctx, id)
}

// ListCards retrieves all cards owned by an actor
func (s *service) ListCards(ctx context.Context, ownerID string) ([]*cards.ActionCard, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, errs.InvalidArgument("owner ID is required")
	}
	return s.repository.ListByOwner(ctx, ownerID)
}

// DeleteCard removes an action card
func (s *service) DeleteCard(ctx context.Context, id string) error {
	return s.repository.Delete(ctx, id)
}

// SetEmbeddedItem deep-copies the source item into the card
func (s *service) SetEmbeddedItem(ctx context.Context, cardID string, source *cards.ItemData) (*cards.ActionCard, error) {
	if source == nil {
		return nil, errs.InvalidArgument("source item cannot be nil")
	}
	if err := source.Kind.ValidateForEmbedding(); err != nil {
		return nil, err
	}

	card, err := s.repository.Get(ctx, cardID)
	if err != nil {
		return nil, err
	}

	embedded := source.Clone()
	embedded.ID = s.uuidGenerator.New()
	embedded.RollType = sanitizeRollType(source)

	// Gear always carries at least one effect-change container so the
	// effect-application path need not special-case "no effects"
	if embedded.Kind == cards.KindGear && len(embedded.Changes) == 0 {
		embedded.Changes = []cards.EffectChange{{}}
	}

	card.EmbeddedItem = embedded

	if err := s.repository.Update(ctx, card); err != nil {
		return nil, errs.Wrap(err, "failed to store embedded item")
	}

	return card, nil
}

// ClearEmbeddedItem removes the embedded copy; the source item is untouched
func (s *service) ClearEmbeddedItem(ctx context.Context, cardID string) (*cards.ActionCard, error) {
	card, err := s.repository.Get(ctx, cardID)
	if err != nil {
		return nil, err
	}

	card.EmbeddedItem = nil

	if err := s.repository.Update(ctx, card); err != nil {
		return nil, errs.Wrap(err, "failed to clear embedded item")
	}

	return card, nil
}

// AddStatusEffect attaches a status-effect copy to the card
func (s *service) AddStatusEffect(ctx context.Context, cardID string, source *cards.ItemData) (*cards.ActionCard, error) {
	if source == nil {
		return nil, errs.InvalidArgument("source item cannot be nil")
	}
	if err := source.Kind.ValidateAsStatusEffect(); err != nil {
		return nil, err
	}

	card, err := s.repository.Get(ctx, cardID)
	if err != nil {
		return nil, err
	}

	effect := source.Clone()
	effect.ID = s.uuidGenerator.New()
	if effect.StatusOperation == "" {
		effect.StatusOperation = cards.StatusApply
	}
	card.StatusEffects = append(card.StatusEffects, effect)

	if err := s.repository.Update(ctx, card); err != nil {
		return nil, errs.Wrap(err, "failed to store status effect")
	}

	return card, nil
}

// RemoveStatusEffect detaches an embedded status effect
func (s *service) RemoveStatusEffect(ctx context.Context, cardID, effectID string) (*cards.ActionCard, error) {
	card, err := s.repository.Get(ctx, cardID)
	if err != nil {
		return nil, err
	}

	kept := card.StatusEffects[:0]
	found := false
	for _, e := range card.StatusEffects {
		if e.ID == effectID {
			found = true
			continue
		}
		kept = append(kept, e)
	}
	if !found {
		return nil, errs.NotFoundf("status effect not found: %s", effectID)
	}
	card.StatusEffects = kept

	if err := s.repository.Update(ctx, card); err != nil {
		return nil, errs.Wrap(err, "failed to remove status effect")
	}

	return card, nil
}

// AddTransformation attaches a transformation copy to the card
func (s *service) AddTransformation(ctx context.Context, cardID string, source *cards.ItemData) (*cards.ActionCard, error) {
	if source == nil {
		return nil, errs.InvalidArgument("source item cannot be nil")
	}
	if err := source.Kind.ValidateAsTransformation(); err != nil {
		return nil, err
	}

	card, err := s.repository.Get(ctx, cardID)
	if err != nil {
		return nil, err
	}

	transformation := source.Clone()
	transformation.ID = s.uuidGenerator.New()
	card.Transformations = append(card.Transformations, transformation)

	if err := s.repository.Update(ctx, card); err != nil {
		return nil, errs.Wrap(err, "failed to store transformation")
	}

	return card, nil
}

// UpdateEmbeddedItem edits the embedded copy through the card's update path
func (s *service) UpdateEmbeddedItem(ctx context.Context, input *UpdateEmbeddedInput) (*UpdateEmbeddedOutput, error) {
	if input == nil {
		return nil, errs.InvalidArgument("input cannot be nil")
	}

	card, err := s.repository.Get(ctx, input.CardID)
	if err != nil {
		return nil, err
	}
	if card.EmbeddedItem == nil {
		return nil, errs.NotFound("card has no embedded item")
	}

	if err := applyItemPatch(card.EmbeddedItem, input.Patch); err != nil {
		return nil, err
	}

	if err := s.repository.Update(ctx, card); err != nil {
		return nil, errs.Wrap(err, "failed to update embedded item")
	}

	return &UpdateEmbeddedOutput{
		Card:                 card,
		SuppressSheetRefresh: input.FromEmbeddedItem,
	}, nil
}

// sanitizeRollType clamps the copy's roll type to the three legal values.
// "none" survives: it is the automatic-success sentinel, not a missing value.
func sanitizeRollType(source *cards.ItemData) cards.RollType {
	switch source.RollType {
	case cards.RollTypeRoll, cards.RollTypeFlat, cards.RollTypeNone:
		return source.RollType
	default:
		log.Printf("cards: unsupported roll type '%s' on '%s', defaulting to roll",
			source.RollType, source.Name)
		return cards.RollTypeRoll
	}
}

// applyItemPatch applies a dotted-path edit to an embedded item copy
func applyItemPatch(item *cards.ItemData, patch map[string]any) error {
	for path, raw := range patch {
		switch path {
		case "name":
			s, ok := raw.(string)
			if !ok {
				return errs.InvalidArgumentf("invalid value for '%s'", path)
			}
			item.Name = s
		case "formula":
			s, ok := raw.(string)
			if !ok {
				return errs.InvalidArgumentf("invalid value for '%s'", path)
			}
			item.Formula = s
		case "description":
			s, ok := raw.(string)
			if !ok {
				return errs.InvalidArgumentf("invalid value for '%s'", path)
			}
			item.Description = s
		case "roll_type":
			s, ok := raw.(string)
			if !ok {
				return errs.InvalidArgumentf("invalid value for '%s'", path)
			}
			probe := *item
			probe.RollType = cards.RollType(s)
			item.RollType = sanitizeRollType(&probe)
		case "quantity":
			switch n := raw.(type) {
			case int:
				item.Quantity = n
			case float64:
				item.Quantity = int(n)
			default:
				return errs.InvalidArgumentf("invalid value for '%s'", path)
			}
		default:
			return errs.InvalidArgumentf("unsupported update path '%s'", path)
		}
	}
	return nil
}
