package discord

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/bwmarrin/discordgo"

	actioncardService "github.com/tidewater-games/actioncard-bot/internal/services/actioncard"
	"github.com/tidewater-games/actioncard-bot/internal/uuid"
)

// pendingExecution is a player's execution request waiting on a GM
type pendingExecution struct {
	input       *actioncardService.ExecuteInput
	requesterID string
}

// approvalStore tracks pending executions by approval ID
type approvalStore struct {
	mu      sync.Mutex
	pending map[string]*pendingExecution
	ids     uuid.Generator
}

func newApprovalStore() *approvalStore {
	return &approvalStore{
		pending: make(map[string]*pendingExecution),
		ids:     uuid.NewGoogleUUIDGenerator(),
	}
}

func (a *approvalStore) add(p *pendingExecution) string {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := a.ids.New()
	a.pending[id] = p
	return id
}

func (a *approvalStore) take(id string) *pendingExecution {
	a.mu.Lock()
	defer a.mu.Unlock()

	p := a.pending[id]
	delete(a.pending, id)
	return p
}

// requestApproval parks a player's execution and posts approve/deny buttons.
// Targets are locked immediately so what the GM approves is what runs.
func (h *Handler) requestApproval(s *discordgo.Session, i *discordgo.InteractionCreate, input *actioncardService.ExecuteInput) {
	tokens, err := h.worldProvider.SelectedTargets(context.Background(), input.UserID)
	if err != nil {
		respondEphemeral(s, i, fmt.Sprintf("Failed to read your targets: %v", err))
		return
	}
	input.LockedTargets = h.ServiceProvider.TargetingService.LockTargets(tokens)

	approvalID := h.approvals.add(&pendingExecution{
		input:       input,
		requesterID: input.UserID,
	})

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("<@%s> wants to execute card `%s` against %d target(s). GM approval required.",
				input.UserID, input.CardID, len(input.LockedTargets)),
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.Button{
							Label:    "Approve",
							Style:    discordgo.SuccessButton,
							CustomID: fmt.Sprintf("card_approval:approve:%s", approvalID),
						},
						discordgo.Button{
							Label:    "Deny",
							Style:    discordgo.DangerButton,
							CustomID: fmt.Sprintf("card_approval:deny:%s", approvalID),
						},
					},
				},
			},
		},
	})
	if err != nil {
		log.Printf("discord: failed to post approval request: %v", err)
	}
}

// handleApproval resolves an approve/deny button press. Only GMs may decide.
func (h *Handler) handleApproval(s *discordgo.Session, i *discordgo.InteractionCreate, action, approvalID string) {
	deciderID := interactionUserID(i)
	if !h.worldProvider.IsGM(deciderID) {
		respondEphemeral(s, i, "Only a GM can decide this request.")
		return
	}

	p := h.approvals.take(approvalID)
	if p == nil {
		respondEphemeral(s, i, "This request was already decided.")
		return
	}

	if action == "deny" {
		respond := &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseUpdateMessage,
			Data: &discordgo.InteractionResponseData{
				Content:    fmt.Sprintf("Execution request from <@%s> denied.", p.requesterID),
				Components: []discordgo.MessageComponent{},
			},
		}
		if err := s.InteractionRespond(i.Interaction, respond); err != nil {
			log.Printf("discord: failed to post denial: %v", err)
		}
		return
	}

	h.runExecution(s, i, p.input)
}
