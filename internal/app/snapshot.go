package app

import (
	"context"
	"time"

	"riddle-game-service/internal/domain"
)

// StateRepository persists engine snapshots. Load returns ok=false when no
// snapshot has been written yet. Implementations must write the whole snapshot
// atomically so the pool, standings, and cycle marker never desync.
type StateRepository interface {
	Load(ctx context.Context) (Snapshot, bool, error)
	Save(ctx context.Context, snap Snapshot) error
}

// Snapshot is the full durable state of the engine: the riddle pool with used
// markers, the standings table, the in-flight round, and the daily cycle
// marker.
type Snapshot struct {
	Pool      PoolSnapshot      `json:"pool"`
	Standings []domain.Standing `json:"standings"`
	Round     RoundSnapshot     `json:"round"`
	Cycle     CycleSnapshot     `json:"cycle"`
	SavedAt   time.Time         `json:"savedAt"`
}

type PoolSnapshot struct {
	Riddles        []domain.Riddle `json:"riddles"`
	UsedIDs        []string        `json:"usedIds"`
	LastPicked     string          `json:"lastPicked,omitempty"`
	WrapGeneration int             `json:"wrapGeneration"`
}

type RoundSnapshot struct {
	Active   bool                     `json:"active"`
	Revealed bool                     `json:"revealed"`
	Riddle   *domain.Riddle           `json:"riddle,omitempty"`
	Guesses  map[string]GuessSnapshot `json:"guesses,omitempty"`
	Solvers  []string                 `json:"solvers,omitempty"`
}

type GuessSnapshot struct {
	Attempts  int  `json:"attempts"`
	Solved    bool `json:"solved"`
	Penalized bool `json:"penalized"`
}

// CycleSnapshot records when the scheduler last posted and revealed, so a
// process restart neither double-posts nor double-reveals within one day.
type CycleSnapshot struct {
	LastPostedAt   time.Time `json:"lastPostedAt,omitempty"`
	LastRevealedAt time.Time `json:"lastRevealedAt,omitempty"`
}
