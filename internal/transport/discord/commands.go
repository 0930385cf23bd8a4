package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"riddle-game-service/internal/domain"
)

func (b *Bot) registerCommands() error {
	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "guess",
			Description: "Guess the answer to today's riddle",
			Options: []*discordgo.ApplicationCommandOption{
				{Name: "answer", Description: "Your answer", Type: discordgo.ApplicationCommandOptionString, Required: true},
			},
		},
		{
			Name:        "submitriddle",
			Description: "Submit a new riddle for the daily contest",
			Options: []*discordgo.ApplicationCommandOption{
				{Name: "question", Description: "The riddle question", Type: discordgo.ApplicationCommandOptionString, Required: true},
				{Name: "answer", Description: "The answer to the riddle", Type: discordgo.ApplicationCommandOptionString, Required: true},
			},
		},
		{Name: "myranks", Description: "Show your riddle score, streak, and rank"},
		{Name: "ranks", Description: "View all rank tiers and how to earn them"},
		{
			Name:        "leaderboard",
			Description: "Show the riddle leaderboard",
			Options: []*discordgo.ApplicationCommandOption{
				{Name: "page", Description: "Page number, starting at 1", Type: discordgo.ApplicationCommandOptionInteger, Required: false},
			},
		},
		{Name: "listriddles", Description: "List all submitted riddles"},
		{
			Name:        "removeriddle",
			Description: "Remove a riddle by its id (moderators)",
			Options: []*discordgo.ApplicationCommandOption{
				{Name: "id", Description: "The riddle id to remove", Type: discordgo.ApplicationCommandOptionString, Required: true},
			},
		},
		adjustCommand("addpoints", "Add points to a user"),
		adjustCommand("removepoints", "Remove points from a user"),
		adjustCommand("addstreak", "Add streak days to a user"),
		adjustCommand("removestreak", "Remove streak days from a user"),
	}

	appID := b.session.State.User.ID
	for _, cmd := range commands {
		created, err := b.session.ApplicationCommandCreate(appID, b.guildID, cmd)
		if err != nil {
			return fmt.Errorf("register command %s: %w", cmd.Name, err)
		}
		b.registered = append(b.registered, created)
	}
	return nil
}

func adjustCommand(name, description string) *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        name,
		Description: description + " (moderators)",
		Options: []*discordgo.ApplicationCommandOption{
			{Name: "user", Description: "The user to adjust", Type: discordgo.ApplicationCommandOptionUser, Required: true},
			{Name: "amount", Description: "Positive amount", Type: discordgo.ApplicationCommandOptionInteger, Required: true},
		},
	}
}

func (b *Bot) doGuess(s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := optionMap(i)
	answer := opts["answer"].StringValue()

	result, err := b.engine.SubmitGuess(context.Background(), interactionUserID(i), answer)
	if err != nil {
		if errors.Is(err, domain.ErrNothingActive) {
			respondEphemeral(s, i, "There's no active riddle right now. Come back after the daily post!")
			return
		}
		respondEphemeral(s, i, "❌ Something went wrong, your guess was not counted.")
		return
	}
	respondEphemeral(s, i, guessReply(result))
}

func (b *Bot) doSubmitRiddle(s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := optionMap(i)
	question := strings.TrimSpace(opts["question"].StringValue())
	answer := strings.TrimSpace(opts["answer"].StringValue())
	if question == "" || answer == "" {
		respondEphemeral(s, i, "❌ Question and answer cannot be empty.")
		return
	}

	_, err := b.engine.SubmitRiddle(context.Background(), question, answer, interactionUserID(i))
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateRiddle) {
			respondEphemeral(s, i, "❌ This riddle has already been submitted. Please try a different one.")
			return
		}
		respondEphemeral(s, i, "❌ Failed to submit your riddle.")
		return
	}
	respondEphemeral(s, i,
		"✅ Your riddle was submitted successfully!\n"+
			"📌 On the day it posts you won't be able to answer it yourself.")
}

func (b *Bot) doMyRanks(s *discordgo.Session, i *discordgo.InteractionCreate) {
	standing := b.engine.GetStanding(context.Background(), interactionUserID(i))
	embed := &discordgo.MessageEmbed{
		Title: "📊 Your Riddle Stats",
		Color: 0x2ecc71,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Score", Value: fmt.Sprintf("%d", standing.Score)},
			{Name: "Streak", Value: fmt.Sprintf("🔥 %d", standing.Streak)},
			{Name: "Rank", Value: standing.RankLabel},
		},
	}
	respondEmbed(s, i, embed, true)
}

func (b *Bot) doRanks(s *discordgo.Session, i *discordgo.InteractionCreate) {
	embed := &discordgo.MessageEmbed{
		Title:       "📊 Riddle Rank Tiers",
		Description: "Earn score and build streaks to level up your riddle mastery!",
		Color:       0x9b59b6,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name: "🎯 Score Ranks",
				Value: "• **Sushi Newbie** — 0-5 points\n" +
					"• **Maki Novice** — 6-15 points\n" +
					"• **Sashimi Skilled** — 16-25 points\n" +
					"• **Brainy Botan** — 26-50 points\n" +
					"• **Sushi Einstein** — 51+ points",
			},
			{
				Name: "🔥 Streak Titles (override score ranks)",
				Value: "• **Streak Samurai** — 3-day streak\n" +
					"• **Tempura Titan** — 5-day streak\n" +
					"• **Nigiri Ninja** — 10-day streak\n" +
					"• **Rollmaster Ronin** — 20-day streak\n" +
					"• **Wasabi Warlord** — 30+ day streak",
			},
			{
				Name:  "👑 Top Solver",
				Value: "Shared by everyone tied at the highest score on the leaderboard.",
			},
		},
	}
	respondEmbed(s, i, embed, true)
}

func (b *Bot) doLeaderboard(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	page := 0
	if opt, ok := optionMap(i)["page"]; ok {
		if p := int(opt.IntValue()); p > 1 {
			page = p - 1
		}
	}

	lb, totalPages := b.engine.Leaderboard(ctx, page, 10)
	if len(lb.Entries) == 0 {
		respondEphemeral(s, i, "No leaderboard data available yet.")
		return
	}
	topScorers := make(map[string]struct{})
	for _, id := range b.engine.TopScorers(ctx) {
		topScorers[id] = struct{}{}
	}

	var lines []string
	for idx, entry := range lb.Entries {
		crown := ""
		if _, ok := topScorers[entry.UserID]; ok {
			crown = " 👑 Top Solver"
		}
		lines = append(lines, fmt.Sprintf("**#%d** <@%s>%s\n• Score: %d, 🔥 Streak: %d\n• Rank: %s",
			page*10+idx+1, entry.UserID, crown, entry.Score, entry.Streak, entry.RankLabel))
	}
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🏆 Riddle Leaderboard (Page %d/%d)", page+1, totalPages),
		Description: strings.Join(lines, "\n\n"),
		Color:       0xf1c40f,
	}
	respondEmbed(s, i, embed, false)
}

func (b *Bot) doListRiddles(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !isAdmin(i) {
		respondEphemeral(s, i, "🚫 You need Manage Server permission for that.")
		return
	}
	riddles := b.engine.ListRiddles(context.Background())
	if len(riddles) == 0 {
		respondEphemeral(s, i, "No riddles have been submitted yet.")
		return
	}
	var lines []string
	for _, r := range riddles {
		// Answers stay hidden from the channel even in the ephemeral view.
		lines = append(lines, fmt.Sprintf("`%s` — %s", r.ID, r.Question))
		if len(lines) >= 25 {
			lines = append(lines, fmt.Sprintf("…and %d more", len(riddles)-25))
			break
		}
	}
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("📜 Submitted Riddles (%d)", len(riddles)),
		Description: strings.Join(lines, "\n"),
		Color:       0x3498db,
	}
	respondEmbed(s, i, embed, true)
}

func (b *Bot) doRemoveRiddle(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !isAdmin(i) {
		respondEphemeral(s, i, "🚫 You need Manage Server permission for that.")
		return
	}
	id := optionMap(i)["id"].StringValue()
	if err := b.engine.RemoveRiddle(context.Background(), id); err != nil {
		if errors.Is(err, domain.ErrRiddleNotFound) {
			respondEphemeral(s, i, fmt.Sprintf("❌ No riddle found with id `%s`.", id))
			return
		}
		respondEphemeral(s, i, "❌ An error occurred while removing the riddle.")
		return
	}
	respondEphemeral(s, i, fmt.Sprintf("✅ Removed riddle `%s`.", id))
}

func (b *Bot) doAdjust(s *discordgo.Session, i *discordgo.InteractionCreate, counter string, sign int) {
	if !isAdmin(i) {
		respondEphemeral(s, i, "🚫 You need Manage Server permission for that.")
		return
	}
	opts := optionMap(i)
	target := opts["user"].UserValue(s)
	amount := int(opts["amount"].IntValue())
	if amount <= 0 {
		respondEphemeral(s, i, "❌ Amount must be a positive integer.")
		return
	}

	var standing domain.StandingView
	if counter == "score" {
		standing = b.engine.AdjustPoints(context.Background(), target.ID, sign*amount)
		respondEphemeral(s, i, fmt.Sprintf("✅ %s now has score %d.", target.Mention(), standing.Score))
		return
	}
	standing = b.engine.AdjustStreak(context.Background(), target.ID, sign*amount)
	respondEphemeral(s, i, fmt.Sprintf("✅ %s now has a %d-day streak.", target.Mention(), standing.Streak))
}
