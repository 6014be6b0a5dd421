package services

import (
	"time"

	"github.com/tidewater-games/actioncard-bot/internal/chat"
	"github.com/tidewater-games/actioncard-bot/internal/dice"
	"github.com/tidewater-games/actioncard-bot/internal/notify"
	"github.com/tidewater-games/actioncard-bot/internal/repositories/actioncards"
	"github.com/tidewater-games/actioncard-bot/internal/repositories/gameactors"
	actioncardService "github.com/tidewater-games/actioncard-bot/internal/services/actioncard"
	"github.com/tidewater-games/actioncard-bot/internal/services/attackchain"
	"github.com/tidewater-games/actioncard-bot/internal/services/damage"
	"github.com/tidewater-games/actioncard-bot/internal/services/repetition"
	"github.com/tidewater-games/actioncard-bot/internal/services/status"
	"github.com/tidewater-games/actioncard-bot/internal/services/targeting"
	"github.com/tidewater-games/actioncard-bot/internal/world"
)

// Provider holds all service instances
type Provider struct {
	TargetingService  targeting.Service
	DamageService     damage.Service
	StatusService     status.Service
	AttackChain       attackchain.Service
	RepetitionService repetition.Service
	ActionCardService actioncardService.Service

	Bus *chat.Bus
}

// ProviderConfig holds configuration for creating services
type ProviderConfig struct {
	WorldProvider  world.Provider
	CardRepository actioncards.Repository
	ActorRepo      gameactors.Repository
	Roller         dice.Roller
	Notifier       notify.Notifier
	Bus            *chat.Bus

	// ActionDelay paces GM executions between phases; zero disables it
	ActionDelay time.Duration

	// CaptureTimeout bounds the roll-capture wait during card execution
	CaptureTimeout time.Duration
}

// NewProvider creates a new service provider with all services initialized
func NewProvider(cfg *ProviderConfig) *Provider {
	if cfg.WorldProvider == nil {
		panic("world provider is required")
	}

	// Use in-memory repository if none provided
	cardRepo := cfg.CardRepository
	if cardRepo == nil {
		cardRepo = actioncards.NewInMemoryRepository()
	}

	actorRepo := cfg.ActorRepo
	if actorRepo == nil {
		actorRepo = gameactors.NewInMemoryRepository()
	}

	bus := cfg.Bus
	if bus == nil {
		bus = chat.NewBus()
	}

	targetingSvc := targeting.NewService(&targeting.ServiceConfig{
		Provider: cfg.WorldProvider,
		Notifier: cfg.Notifier,
	})

	damageSvc := damage.NewService(&damage.ServiceConfig{
		Roller: cfg.Roller,
	})

	statusSvc := status.NewService(&status.ServiceConfig{})

	chainSvc := attackchain.NewService(&attackchain.ServiceConfig{
		Targeting: targetingSvc,
		Damage:    damageSvc,
		Status:    statusSvc,
		Provider:  cfg.WorldProvider,
		Delayer:   attackchain.NewSleepDelayer(cfg.ActionDelay),
	})

	repetitionSvc := repetition.NewService(&repetition.ServiceConfig{
		Executor: chainSvc,
		Roller:   cfg.Roller,
	})

	cardSvc := actioncardService.NewService(&actioncardService.ServiceConfig{
		Repository:     cardRepo,
		ActorRepo:      actorRepo,
		Targeting:      targetingSvc,
		Repetition:     repetitionSvc,
		Provider:       cfg.WorldProvider,
		Bus:            bus,
		Roller:         cfg.Roller,
		Notifier:       cfg.Notifier,
		CaptureTimeout: cfg.CaptureTimeout,
	})

	return &Provider{
		TargetingService:  targetingSvc,
		DamageService:     damageSvc,
		StatusService:     statusSvc,
		AttackChain:       chainSvc,
		RepetitionService: repetitionSvc,
		ActionCardService: cardSvc,
		Bus:               bus,
	}
}
