package discord

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"

	"riddle-game-service/internal/domain"
)

// AnnounceRiddle posts the daily riddle to the configured channel.
func (b *Bot) AnnounceRiddle(_ context.Context, riddle domain.Riddle) {
	if b.channelID == "" {
		return
	}
	submitter := "the riddle vault"
	if riddle.Submitter != "" {
		submitter = fmt.Sprintf("<@%s>", riddle.Submitter)
	}
	embed := &discordgo.MessageEmbed{
		Title:       "🧠 Riddle of the Day",
		Description: riddle.Question,
		Color:       0xe67e22,
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Answer right here in chat or with /guess. 5 attempts each!",
		},
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Submitted by", Value: submitter},
		},
	}
	if _, err := b.session.ChannelMessageSendEmbed(b.channelID, embed); err != nil {
		log.Printf("[discord] announce riddle: %v", err)
	}
}

// AnnounceReveal posts the answer and the solver honor roll.
func (b *Bot) AnnounceReveal(_ context.Context, summary domain.RevealSummary) {
	if b.channelID == "" {
		return
	}
	var sb strings.Builder
	if len(summary.Solvers) == 0 {
		fmt.Fprintf(&sb, "❌ The correct answer was **%s**. No one got it right today.\n", summary.Answer)
	} else {
		fmt.Fprintf(&sb, "✅ The correct answer was **%s**!\n\nThe following users got it correct:\n", summary.Answer)
		for _, solver := range summary.Solvers {
			fmt.Fprintf(&sb, "• <@%s> (**%d** total, 🔥 %d streak) 🏅 %s\n",
				solver.UserID, solver.Score, solver.Streak, solver.RankLabel)
		}
	}
	sb.WriteString("\n📅 Stay tuned for tomorrow's riddle!")
	if _, err := b.session.ChannelMessageSend(b.channelID, sb.String()); err != nil {
		log.Printf("[discord] announce reveal: %v", err)
	}
}
