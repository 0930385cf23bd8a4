package domain

import "time"

// Riddle is a single submitted question/answer pair. Immutable once created;
// the pool tracks its used marker separately.
type Riddle struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Submitter string    `json:"submitter,omitempty"` // empty for operator seed data
	CreatedAt time.Time `json:"createdAt"`
}

// Standing is the durable per-user account: total score and current streak.
// Both are floored at zero.
type Standing struct {
	UserID string `json:"userId"`
	Score  int    `json:"score"`
	Streak int    `json:"streak"`
}

// StandingView is Standing plus the derived rank label, for display.
type StandingView struct {
	UserID    string `json:"userId"`
	Score     int    `json:"score"`
	Streak    int    `json:"streak"`
	RankLabel string `json:"rankLabel"`
}

// Leaderboard is an ordered scoreboard snapshot: score descending, ties broken
// by streak descending.
type Leaderboard struct {
	Entries   []StandingView `json:"entries"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// GuessOutcome enumerates the results of evaluating a single guess.
type GuessOutcome int

const (
	GuessCorrect GuessOutcome = iota
	GuessIncorrect
	GuessAlreadySolved
	GuessOutOfAttempts
	GuessSelfSubmission
)

func (o GuessOutcome) String() string {
	switch o {
	case GuessCorrect:
		return "correct"
	case GuessIncorrect:
		return "incorrect"
	case GuessAlreadySolved:
		return "already_solved"
	case GuessOutOfAttempts:
		return "out_of_attempts"
	case GuessSelfSubmission:
		return "self_submission"
	}
	return "unknown"
}

// GuessResult reports the outcome of one guess. RemainingAttempts is only
// meaningful for GuessIncorrect. Penalized is set on the guess that exhausted
// the user's attempts and triggered the score penalty.
type GuessResult struct {
	Outcome           GuessOutcome `json:"outcome"`
	RemainingAttempts int          `json:"remainingAttempts"`
	Penalized         bool         `json:"penalized"`
}

// RevealSummary is the frozen result of revealing the active riddle. Solvers
// holds user ids in the order they solved, with their post-award standings.
type RevealSummary struct {
	Riddle  Riddle         `json:"riddle"`
	Answer  string         `json:"answer"`
	Solvers []StandingView `json:"solvers"`
}
