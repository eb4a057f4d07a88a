// Package notify posts run summaries to an operator Discord channel. Purely
// observational; notifier failures never affect run outcomes.
package notify

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/pulseworks/pulsebot/src/data"
	"github.com/pulseworks/pulsebot/src/engine"
)

type DiscordNotifier struct {
	session   *discordgo.Session
	channelID string
	logger    zerolog.Logger
}

func NewDiscordNotifier(token, channelID string, logger zerolog.Logger) (*DiscordNotifier, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("notify: discord session: %w", err)
	}
	if err := session.Open(); err != nil {
		return nil, fmt.Errorf("notify: discord open: %w", err)
	}
	return &DiscordNotifier{session: session, channelID: channelID, logger: logger}, nil
}

func (n *DiscordNotifier) Close() {
	if n.session != nil {
		_ = n.session.Close()
	}
}

// RunCompleted posts a compact embed with the run outcome.
func (n *DiscordNotifier) RunCompleted(ctx context.Context, mission *data.Mission, summary *engine.RunSummary, runErr error) {
	embed := &discordgo.MessageEmbed{
		Title: "Mission run: " + mission.Name,
		Color: 0x2ecc71,
	}
	if runErr != nil {
		embed.Color = 0xe74c3c
		embed.Description = "Run failed: " + runErr.Error()
	}
	if summary != nil {
		embed.Fields = []*discordgo.MessageEmbedField{
			{Name: "Replies", Value: fmt.Sprintf("%d", summary.RepliesDone), Inline: true},
			{Name: "Quotes", Value: fmt.Sprintf("%d", summary.QuotesDone), Inline: true},
			{Name: "Total", Value: fmt.Sprintf("%d", summary.EngagementsDone), Inline: true},
			{Name: "Candidates", Value: fmt.Sprintf("%d", summary.CandidatesSeen), Inline: true},
		}
	}

	if _, err := n.session.ChannelMessageSendEmbed(n.channelID, embed); err != nil {
		n.logger.Warn().Err(err).Str("mission_id", mission.ID).Msg("discord notify failed")
	}
}
