package discord

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/tidewater-games/actioncard-bot/internal/services"
	actioncardService "github.com/tidewater-games/actioncard-bot/internal/services/actioncard"
	"github.com/tidewater-games/actioncard-bot/internal/world"
)

// Handler handles all Discord interactions
type Handler struct {
	ServiceProvider *services.Provider
	worldProvider   world.Provider
	approvals       *approvalStore
}

// HandlerConfig holds configuration for the Discord handler
type HandlerConfig struct {
	ServiceProvider *services.Provider
	WorldProvider   world.Provider
}

// NewHandler creates a new Discord handler
func NewHandler(cfg *HandlerConfig) *Handler {
	if cfg.ServiceProvider == nil {
		panic("service provider is required")
	}
	if cfg.WorldProvider == nil {
		panic("world provider is required")
	}
	return &Handler{
		ServiceProvider: cfg.ServiceProvider,
		worldProvider:   cfg.WorldProvider,
		approvals:       newApprovalStore(),
	}
}

// RegisterCommands registers slash commands with Discord
func (h *Handler) RegisterCommands(s *discordgo.Session, guildID string) error {
	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "card",
			Description: "Action card commands",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "list",
					Description: "List action cards for an actor",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "actor",
							Description: "Actor ID",
							Required:    true,
						},
					},
				},
				{
					Name:        "execute",
					Description: "Execute an action card against your current targets",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "card",
							Description: "Card ID",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "actor",
							Description: "Acting actor ID",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionBoolean,
							Name:        "damage",
							Description: "Apply damage (default true)",
							Required:    false,
						},
						{
							Type:        discordgo.ApplicationCommandOptionBoolean,
							Name:        "status",
							Description: "Apply status effects (default true)",
							Required:    false,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "effect",
							Description: "Status effect ID when the card demands a choice",
							Required:    false,
						},
					},
				},
			},
		},
	}

	for _, cmd := range commands {
		if _, err := s.ApplicationCommandCreate(s.State.User.ID, guildID, cmd); err != nil {
			return fmt.Errorf("failed to register command %s: %w", cmd.Name, err)
		}
	}

	return nil
}

// HandleInteraction routes incoming interactions
func (h *Handler) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		h.handleCommand(s, i)
	case discordgo.InteractionMessageComponent:
		h.handleComponent(s, i)
	}
}

// handleCommand handles slash command interactions
func (h *Handler) handleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	if data.Name != "card" || len(data.Options) == 0 {
		return
	}

	sub := data.Options[0]
	switch sub.Name {
	case "list":
		h.handleList(s, i, sub)
	case "execute":
		h.handleExecute(s, i, sub)
	}
}

// handleComponent handles button interactions
func (h *Handler) handleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	customID := i.MessageComponentData().CustomID
	parts := strings.SplitN(customID, ":", 3)
	if len(parts) != 3 || parts[0] != "card_approval" {
		return
	}
	h.handleApproval(s, i, parts[1], parts[2])
}

func (h *Handler) handleList(s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) {
	actorID := stringOption(sub, "actor")

	cards, err := h.ServiceProvider.ActionCardService.ListCards(context.Background(), actorID)
	if err != nil {
		respondEphemeral(s, i, fmt.Sprintf("Failed to list cards: %v", err))
		return
	}

	if len(cards) == 0 {
		respondEphemeral(s, i, "No action cards found for this actor.")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("**Action cards (%d)**\n", len(cards)))
	for _, c := range cards {
		line := fmt.Sprintf("- `%s` %s (%s)", c.ID, c.Name, c.Mode)
		if c.EmbeddedItem != nil {
			line += fmt.Sprintf(" - %s", c.EmbeddedItem.Name)
		}
		sb.WriteString(line + "\n")
	}

	respondEphemeral(s, i, sb.String())
}

func (h *Handler) handleExecute(s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) {
	userID := interactionUserID(i)

	input := &actioncardService.ExecuteInput{
		CardID:           stringOption(sub, "card"),
		ActorID:          stringOption(sub, "actor"),
		UserID:           userID,
		ApplyDamage:      boolOptionOrDefault(sub, "damage", true),
		ApplyStatus:      boolOptionOrDefault(sub, "status", true),
		SelectedStatusID: stringOption(sub, "effect"),
	}

	// Non-GM executions wait for a GM to sign off; the target snapshot is
	// taken now so reselection while the request is pending changes nothing.
	if !h.worldProvider.IsGM(userID) {
		h.requestApproval(s, i, input)
		return
	}

	h.runExecution(s, i, input)
}

// runExecution runs the card and reports the result on the interaction
func (h *Handler) runExecution(s *discordgo.Session, i *discordgo.InteractionCreate, input *actioncardService.ExecuteInput) {
	// Executions can outlive Discord's 3-second interaction window
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}); err != nil {
		log.Printf("discord: failed to defer interaction: %v", err)
		return
	}

	result, err := h.ServiceProvider.ActionCardService.Execute(context.Background(), input)

	var content string
	if err != nil {
		content = fmt.Sprintf("Execution failed: %v", err)
	} else {
		content = fmt.Sprintf("Executed %d pass(es), stop reason: %s", result.Completed, result.StopReason)
	}

	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content: &content,
	}); err != nil {
		log.Printf("discord: failed to edit interaction response: %v", err)
	}
}

func stringOption(sub *discordgo.ApplicationCommandInteractionDataOption, name string) string {
	for _, opt := range sub.Options {
		if opt.Name == name {
			return opt.StringValue()
		}
	}
	return ""
}

func boolOptionOrDefault(sub *discordgo.ApplicationCommandInteractionDataOption, name string, def bool) bool {
	for _, opt := range sub.Options {
		if opt.Name == name {
			return opt.BoolValue()
		}
	}
	return def
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("discord: failed to respond to interaction: %v", err)
	}
}
