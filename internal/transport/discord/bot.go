package discord

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"

	"riddle-game-service/internal/app"
	"riddle-game-service/internal/domain"
)

// Bot is the Discord adapter: it turns slash commands and channel messages
// into engine calls and renders the results. All game rules live in the
// engine; the bot only gates admin commands and formats output.
type Bot struct {
	session   *discordgo.Session
	engine    *app.Engine
	channelID string // channel where riddles post and chat guesses count
	guildID   string // command registration scope, empty for global

	registered []*discordgo.ApplicationCommand
}

func New(token string, engine *app.Engine, channelID, guildID string) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentMessageContent
	return &Bot{
		session:   session,
		engine:    engine,
		channelID: channelID,
		guildID:   guildID,
	}, nil
}

// Start connects the gateway and registers the slash commands.
func (b *Bot) Start() error {
	b.session.AddHandler(b.onInteractionCreate)
	b.session.AddHandler(b.onMessageCreate)

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("discord open: %w", err)
	}
	if err := b.registerCommands(); err != nil {
		b.session.Close()
		return err
	}
	log.Printf("[discord] connected as %s", b.session.State.User.Username)
	return nil
}

// Stop deregisters commands best-effort and closes the gateway.
func (b *Bot) Stop() {
	appID := b.session.State.User.ID
	for _, cmd := range b.registered {
		if err := b.session.ApplicationCommandDelete(appID, b.guildID, cmd.ID); err != nil {
			log.Printf("[discord] delete command %s: %v", cmd.Name, err)
		}
	}
	b.session.Close()
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := i.ApplicationCommandData()
	switch data.Name {
	case "guess":
		b.doGuess(s, i)
	case "submitriddle":
		b.doSubmitRiddle(s, i)
	case "myranks":
		b.doMyRanks(s, i)
	case "ranks":
		b.doRanks(s, i)
	case "leaderboard":
		b.doLeaderboard(s, i)
	case "listriddles":
		b.doListRiddles(s, i)
	case "removeriddle":
		b.doRemoveRiddle(s, i)
	case "addpoints":
		b.doAdjust(s, i, "score", 1)
	case "removepoints":
		b.doAdjust(s, i, "score", -1)
	case "addstreak":
		b.doAdjust(s, i, "streak", 1)
	case "removestreak":
		b.doAdjust(s, i, "streak", -1)
	}
}

// onMessageCreate treats plain chat in the riddle channel as a guess.
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if b.channelID == "" || m.ChannelID != b.channelID {
		return
	}
	text := strings.TrimSpace(m.Content)
	if text == "" || strings.HasPrefix(text, "/") || strings.HasPrefix(text, "!") {
		return
	}

	result, err := b.engine.SubmitGuess(context.Background(), m.Author.ID, text)
	if err != nil {
		if errors.Is(err, domain.ErrNothingActive) {
			return // no round running, let the chatter chat
		}
		log.Printf("[discord] guess from %s failed: %v", m.Author.ID, err)
		return
	}
	reply := guessReply(result)
	if reply == "" {
		return
	}
	if _, err := s.ChannelMessageSendReply(m.ChannelID, reply, m.Reference()); err != nil {
		log.Printf("[discord] reply failed: %v", err)
	}
}

func guessReply(result domain.GuessResult) string {
	switch result.Outcome {
	case domain.GuessCorrect:
		return "✅ Correct! Your point lands at reveal time. 🤫"
	case domain.GuessIncorrect:
		return fmt.Sprintf("❌ Not quite — %d attempt(s) left.", result.RemainingAttempts)
	case domain.GuessAlreadySolved:
		return "✅ You already solved today's riddle. Patience until the reveal!"
	case domain.GuessOutOfAttempts:
		if result.Penalized {
			return "💀 Out of attempts! You lose 1 point and your streak resets."
		}
		return "🚫 You're out of attempts for today's riddle."
	case domain.GuessSelfSubmission:
		return "📌 That's your own riddle — no answering it yourself."
	}
	return ""
}

func isAdmin(i *discordgo.InteractionCreate) bool {
	return i.Member != nil && i.Member.Permissions&discordgo.PermissionManageGuild != 0
}

func respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, msg string) {
	_ = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: msg,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

func respondEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, ephemeral bool) {
	data := &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embed}}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	_ = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
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

func optionMap(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	opts := i.ApplicationCommandData().Options
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, opt := range opts {
		m[opt.Name] = opt
	}
	return m
}
