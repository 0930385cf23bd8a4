package app

import (
	"sort"
	"time"

	"riddle-game-service/internal/domain"
)

// ledger is the only place durable score/streak state is mutated. Absent users
// read as score 0, streak 0.
type ledger struct {
	standings map[string]*domain.Standing
}

func newLedger() *ledger {
	return &ledger{standings: make(map[string]*domain.Standing)}
}

func (l *ledger) get(userID string) domain.Standing {
	if s, ok := l.standings[userID]; ok {
		return *s
	}
	return domain.Standing{UserID: userID}
}

func (l *ledger) entry(userID string) *domain.Standing {
	s, ok := l.standings[userID]
	if !ok {
		s = &domain.Standing{UserID: userID}
		l.standings[userID] = s
	}
	return s
}

func (l *ledger) awardCorrect(userID string) domain.Standing {
	s := l.entry(userID)
	s.Score++
	s.Streak++
	return *s
}

func (l *ledger) penalizeExhausted(userID string) domain.Standing {
	s := l.entry(userID)
	if s.Score > 0 {
		s.Score--
	}
	s.Streak = 0
	return *s
}

// adjust is the moderation override. Both counters are floored at zero.
func (l *ledger) adjust(userID string, deltaScore, deltaStreak int) domain.Standing {
	s := l.entry(userID)
	s.Score += deltaScore
	if s.Score < 0 {
		s.Score = 0
	}
	s.Streak += deltaStreak
	if s.Streak < 0 {
		s.Streak = 0
	}
	return *s
}

// topScorers returns every user tied at the maximum score, excluding a zero
// maximum (nobody is crowned for an empty board).
func (l *ledger) topScorers() []string {
	max := 0
	for _, s := range l.standings {
		if s.Score > max {
			max = s.Score
		}
	}
	if max == 0 {
		return nil
	}
	var out []string
	for _, s := range l.standings {
		if s.Score == max {
			out = append(out, s.UserID)
		}
	}
	sort.Strings(out)
	return out
}

// leaderboard snapshots every non-empty standing, score descending with streak
// descending as the tie-breaker, then user id for stability.
func (l *ledger) leaderboard(now time.Time) domain.Leaderboard {
	entries := make([]domain.StandingView, 0, len(l.standings))
	for _, s := range l.standings {
		if s.Score == 0 && s.Streak == 0 {
			continue
		}
		entries = append(entries, domain.StandingView{
			UserID:    s.UserID,
			Score:     s.Score,
			Streak:    s.Streak,
			RankLabel: domain.RankLabel(s.Score, s.Streak),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		if entries[i].Streak != entries[j].Streak {
			return entries[i].Streak > entries[j].Streak
		}
		return entries[i].UserID < entries[j].UserID
	})
	return domain.Leaderboard{Entries: entries, UpdatedAt: now}
}

func (l *ledger) snapshot() []domain.Standing {
	out := make([]domain.Standing, 0, len(l.standings))
	for _, s := range l.standings {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

func (l *ledger) restore(standings []domain.Standing) {
	l.standings = make(map[string]*domain.Standing, len(standings))
	for _, s := range standings {
		copied := s
		l.standings[s.UserID] = &copied
	}
}
