package app

import (
	"strings"

	"riddle-game-service/internal/domain"
)

// maxAttempts is the per-user guess budget for a single riddle. The fifth
// wrong guess is the one that carries the penalty.
const maxAttempts = 5

type roundState int

const (
	roundIdle roundState = iota
	roundActive
	roundRevealed
)

// guessState is scoped to the current round generation and discarded wholesale
// when a new riddle is posted.
type guessState struct {
	attempts  int
	solved    bool
	penalized bool
}

// round is the lifecycle of a single active riddle: Idle -> Active -> Revealed,
// with post() starting a fresh generation from either terminal state.
type round struct {
	state   roundState
	riddle  domain.Riddle
	guesses map[string]*guessState
	solvers []string // solve order
}

func newRound() *round {
	return &round{guesses: make(map[string]*guessState)}
}

// post activates the given riddle, discarding all guess state and solvers from
// the previous generation. Replacing an unrevealed round carries no penalty.
func (r *round) post(riddle domain.Riddle) {
	r.state = roundActive
	r.riddle = riddle
	r.guesses = make(map[string]*guessState)
	r.solvers = nil
}

// guess evaluates one attempt. The caller applies the ledger side effects:
// Penalized on the result means "apply the exhaustion penalty now".
func (r *round) guess(userID, text string) (domain.GuessResult, error) {
	if r.state != roundActive {
		return domain.GuessResult{}, domain.ErrNothingActive
	}
	if r.riddle.Submitter != "" && userID == r.riddle.Submitter {
		// Submitters never get guess state for their own riddle.
		return domain.GuessResult{Outcome: domain.GuessSelfSubmission}, nil
	}

	gs, ok := r.guesses[userID]
	if !ok {
		gs = &guessState{}
		r.guesses[userID] = gs
	}

	if gs.solved {
		return domain.GuessResult{Outcome: domain.GuessAlreadySolved}, nil
	}
	if gs.attempts >= maxAttempts {
		return domain.GuessResult{Outcome: domain.GuessOutOfAttempts}, nil
	}

	// Evaluate before counting, so a failed evaluation never charges an
	// attempt.
	matched := answersMatch(text, r.riddle.Answer)
	gs.attempts++
	if matched {
		gs.solved = true
		r.solvers = append(r.solvers, userID)
		return domain.GuessResult{Outcome: domain.GuessCorrect}, nil
	}

	if gs.attempts >= maxAttempts {
		penalize := !gs.penalized
		gs.penalized = true
		return domain.GuessResult{Outcome: domain.GuessOutOfAttempts, Penalized: penalize}, nil
	}
	return domain.GuessResult{
		Outcome:           domain.GuessIncorrect,
		RemainingAttempts: maxAttempts - gs.attempts,
	}, nil
}

// reveal transitions Active -> Revealed and returns the solver list in solve
// order. Calling it again in the Revealed state is a no-op for state; the
// engine freezes the public summary on the first call.
func (r *round) reveal() ([]string, error) {
	switch r.state {
	case roundIdle:
		return nil, domain.ErrNothingActive
	case roundActive:
		r.state = roundRevealed
	}
	out := make([]string, len(r.solvers))
	copy(out, r.solvers)
	return out, nil
}

// answersMatch applies the game's fixed normalization: trim, lowercase, and
// strip one trailing "s" from each side, so "eggs" matches "egg".
func answersMatch(guess, answer string) bool {
	return normalizeAnswer(guess) == normalizeAnswer(answer)
}

func normalizeAnswer(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.TrimSuffix(s, "s")
}

func (r *round) snapshot() RoundSnapshot {
	snap := RoundSnapshot{
		Active:   r.state == roundActive,
		Revealed: r.state == roundRevealed,
		Guesses:  make(map[string]GuessSnapshot, len(r.guesses)),
	}
	if r.state != roundIdle {
		riddle := r.riddle
		snap.Riddle = &riddle
	}
	for userID, gs := range r.guesses {
		snap.Guesses[userID] = GuessSnapshot{
			Attempts:  gs.attempts,
			Solved:    gs.solved,
			Penalized: gs.penalized,
		}
	}
	snap.Solvers = make([]string, len(r.solvers))
	copy(snap.Solvers, r.solvers)
	return snap
}

func (r *round) restore(snap RoundSnapshot) {
	switch {
	case snap.Active:
		r.state = roundActive
	case snap.Revealed:
		r.state = roundRevealed
	default:
		r.state = roundIdle
	}
	if snap.Riddle != nil {
		r.riddle = *snap.Riddle
	}
	r.guesses = make(map[string]*guessState, len(snap.Guesses))
	for userID, gs := range snap.Guesses {
		r.guesses[userID] = &guessState{
			attempts:  gs.Attempts,
			solved:    gs.Solved,
			penalized: gs.Penalized,
		}
	}
	r.solvers = make([]string, len(snap.Solvers))
	copy(r.solvers, snap.Solvers)
}
