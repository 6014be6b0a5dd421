package discord

import (
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"

	"github.com/tidewater-games/actioncard-bot/internal/notify"
)

// channelNotifier posts user-facing warnings to a Discord channel
type channelNotifier struct {
	session   *discordgo.Session
	channelID string
}

// NewChannelNotifier creates a notifier writing to the given channel
func NewChannelNotifier(session *discordgo.Session, channelID string) notify.Notifier {
	return &channelNotifier{
		session:   session,
		channelID: channelID,
	}
}

func (n *channelNotifier) Notify(level notify.Level, message string) {
	var prefix string
	switch level {
	case notify.LevelWarning:
		prefix = "⚠️ "
	case notify.LevelError:
		prefix = "❌ "
	}

	if _, err := n.session.ChannelMessageSend(n.channelID, fmt.Sprintf("%s%s", prefix, message)); err != nil {
		log.Printf("discord: failed to send notification: %v", err)
	}
}
