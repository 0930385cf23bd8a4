package discord

import (
	"strings"
	"testing"

	"riddle-game-service/internal/domain"
)

func TestGuessReplies(t *testing.T) {
	cases := []struct {
		result domain.GuessResult
		want   string
	}{
		{domain.GuessResult{Outcome: domain.GuessCorrect}, "Correct"},
		{domain.GuessResult{Outcome: domain.GuessIncorrect, RemainingAttempts: 3}, "3 attempt(s) left"},
		{domain.GuessResult{Outcome: domain.GuessAlreadySolved}, "already solved"},
		{domain.GuessResult{Outcome: domain.GuessOutOfAttempts}, "out of attempts"},
		{domain.GuessResult{Outcome: domain.GuessOutOfAttempts, Penalized: true}, "streak resets"},
		{domain.GuessResult{Outcome: domain.GuessSelfSubmission}, "your own riddle"},
	}
	for _, c := range cases {
		got := guessReply(c.result)
		if !strings.Contains(got, c.want) {
			t.Fatalf("reply for %v = %q, want substring %q", c.result.Outcome, got, c.want)
		}
	}
}
