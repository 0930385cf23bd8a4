package app

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"riddle-game-service/internal/domain"
)

// Config tunes engine behavior. Zero value is usable.
type Config struct {
	// StrictDuplicates also strips inner whitespace when comparing submitted
	// questions for duplicates.
	StrictDuplicates bool
	// Rand and Clock are test seams.
	Rand  *rand.Rand
	Clock func() time.Time
}

// Engine owns the riddle pool, the active round, and the score ledger behind a
// single mutex. All mutating operations are serialized here; persistence is
// fire-and-forget through a save queue so gameplay never blocks on I/O, and
// the in-memory state stays authoritative even when a save fails.
type Engine struct {
	mu     sync.Mutex
	pool   *riddlePool
	round  *round
	ledger *ledger
	cycle  CycleSnapshot
	frozen *domain.RevealSummary // reveal summary for the current round

	clock func() time.Time

	repo        StateRepository
	saves       chan Snapshot
	done        chan struct{}
	closeOnce   sync.Once
	subscribers map[chan domain.Leaderboard]struct{}
}

func NewEngine(repo StateRepository, cfg Config) *Engine {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	e := &Engine{
		pool:        newRiddlePool(cfg.StrictDuplicates, cfg.Rand, clock),
		round:       newRound(),
		ledger:      newLedger(),
		clock:       clock,
		repo:        repo,
		saves:       make(chan Snapshot, 1),
		done:        make(chan struct{}),
		subscribers: make(map[chan domain.Leaderboard]struct{}),
	}
	if repo != nil {
		go e.persistLoop()
	}
	return e
}

// Restore hydrates the engine from the repository. Call once before serving.
func (e *Engine) Restore(ctx context.Context) error {
	if e.repo == nil {
		return nil
	}
	snap, ok, err := e.repo.Load(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pool.restore(snap.Pool)
	e.ledger.restore(snap.Standings)
	e.round.restore(snap.Round)
	e.cycle = snap.Cycle
	e.frozen = nil
	return nil
}

// Close stops the persister. Pending saves are flushed best-effort.
func (e *Engine) Close() {
	e.closeOnce.Do(func() { close(e.done) })
}

// SubmitRiddle adds a riddle to the pool. The submitter cannot answer it when
// it eventually posts.
func (e *Engine) SubmitRiddle(_ context.Context, question, answer, submitter string) (domain.Riddle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	riddle, err := e.pool.submit(question, answer, submitter)
	if err != nil {
		return domain.Riddle{}, err
	}
	e.queueSaveLocked()
	return riddle, nil
}

// ImportRiddles merges seed riddles into the pool, keeping their ids and
// skipping anything already present. Returns how many were added.
func (e *Engine) ImportRiddles(_ context.Context, riddles []domain.Riddle) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	added := 0
	for _, r := range riddles {
		if e.pool.addExisting(r) {
			added++
		}
	}
	if added > 0 {
		e.queueSaveLocked()
	}
	return added
}

// PostNextRiddle picks an unused riddle and starts a fresh round, discarding
// any guess state from the previous one.
func (e *Engine) PostNextRiddle(_ context.Context) (domain.Riddle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	riddle, err := e.pool.pickNext()
	if err != nil {
		return domain.Riddle{}, err
	}
	e.round.post(riddle)
	e.frozen = nil
	e.cycle.LastPostedAt = e.clock()
	e.queueSaveLocked()
	return riddle, nil
}

// SubmitGuess evaluates one guess and applies the exhaustion penalty when the
// result calls for it. A panic during evaluation is reported as ErrGuessFailed
// and leaves the round untouched, so the user is not charged an attempt.
func (e *Engine) SubmitGuess(_ context.Context, userID, text string) (result domain.GuessResult, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[engine] guess evaluation panicked for user %s: %v", userID, r)
			result, err = domain.GuessResult{}, domain.ErrGuessFailed
		}
	}()

	result, err = e.round.guess(userID, text)
	if err != nil {
		return domain.GuessResult{}, err
	}
	if result.Penalized {
		e.ledger.penalizeExhausted(userID)
		e.broadcastLocked()
	}
	e.queueSaveLocked()
	return result, nil
}

// RevealCurrent closes the round, awards every solver exactly once, and
// returns the frozen summary. Repeat calls return the same summary without
// touching the ledger again.
func (e *Engine) RevealCurrent(_ context.Context) (domain.RevealSummary, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.round.state == roundRevealed && e.frozen != nil {
		return *e.frozen, nil
	}

	alreadyRevealed := e.round.state == roundRevealed
	solvers, err := e.round.reveal()
	if err != nil {
		return domain.RevealSummary{}, err
	}

	summary := domain.RevealSummary{
		Riddle: e.round.riddle,
		Answer: e.round.riddle.Answer,
	}
	for _, userID := range solvers {
		var s domain.Standing
		if alreadyRevealed {
			// Awards were applied before a restart; report current standings.
			s = e.ledger.get(userID)
		} else {
			s = e.ledger.awardCorrect(userID)
		}
		summary.Solvers = append(summary.Solvers, domain.StandingView{
			UserID:    s.UserID,
			Score:     s.Score,
			Streak:    s.Streak,
			RankLabel: domain.RankLabel(s.Score, s.Streak),
		})
	}
	e.frozen = &summary
	e.cycle.LastRevealedAt = e.clock()
	e.broadcastLocked()
	e.queueSaveLocked()
	return summary, nil
}

// GetStanding reads a user's durable account, initializing absent users to
// zero without persisting anything.
func (e *Engine) GetStanding(_ context.Context, userID string) domain.StandingView {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.ledger.get(userID)
	return domain.StandingView{
		UserID:    s.UserID,
		Score:     s.Score,
		Streak:    s.Streak,
		RankLabel: domain.RankLabel(s.Score, s.Streak),
	}
}

// Leaderboard returns one page of the scoreboard and the total page count.
// Pages are zero-based; a page past the end comes back empty.
func (e *Engine) Leaderboard(_ context.Context, page, pageSize int) (domain.Leaderboard, int) {
	if pageSize <= 0 {
		pageSize = 10
	}
	e.mu.Lock()
	lb := e.ledger.leaderboard(e.clock())
	e.mu.Unlock()

	totalPages := (len(lb.Entries) + pageSize - 1) / pageSize
	if totalPages == 0 {
		totalPages = 1
	}
	start := page * pageSize
	if start >= len(lb.Entries) {
		lb.Entries = nil
		return lb, totalPages
	}
	end := start + pageSize
	if end > len(lb.Entries) {
		end = len(lb.Entries)
	}
	lb.Entries = lb.Entries[start:end]
	return lb, totalPages
}

// TopScorers lists every user tied at the maximum score, excluding zero.
func (e *Engine) TopScorers(_ context.Context) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.topScorers()
}

// ListRiddles returns the pool in stable insertion order.
func (e *Engine) ListRiddles(_ context.Context) []domain.Riddle {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pool.list()
}

// RemoveRiddle permanently deletes a riddle. Moderation only; the adapter
// gates who may call this.
func (e *Engine) RemoveRiddle(_ context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.pool.remove(id); err != nil {
		return err
	}
	e.queueSaveLocked()
	return nil
}

// AdjustPoints applies a moderator score override, clamped at zero.
func (e *Engine) AdjustPoints(_ context.Context, userID string, delta int) domain.StandingView {
	return e.adjust(userID, delta, 0)
}

// AdjustStreak applies a moderator streak override, clamped at zero.
func (e *Engine) AdjustStreak(_ context.Context, userID string, delta int) domain.StandingView {
	return e.adjust(userID, 0, delta)
}

func (e *Engine) adjust(userID string, deltaScore, deltaStreak int) domain.StandingView {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.ledger.adjust(userID, deltaScore, deltaStreak)
	e.broadcastLocked()
	e.queueSaveLocked()
	return domain.StandingView{
		UserID:    s.UserID,
		Score:     s.Score,
		Streak:    s.Streak,
		RankLabel: domain.RankLabel(s.Score, s.Streak),
	}
}

// Status describes the round and cycle state the scheduler needs for its
// idempotency guards.
type Status struct {
	Active         bool
	Revealed       bool
	ActiveRiddleID string
	LastPostedAt   time.Time
	LastRevealedAt time.Time
}

func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := Status{
		Active:         e.round.state == roundActive,
		Revealed:       e.round.state == roundRevealed,
		LastPostedAt:   e.cycle.LastPostedAt,
		LastRevealedAt: e.cycle.LastRevealedAt,
	}
	if e.round.state != roundIdle {
		st.ActiveRiddleID = e.round.riddle.ID
	}
	return st
}

// Subscribe returns a channel receiving leaderboard snapshots after every
// scoring mutation, seeded with the current board. The caller must invoke the
// cancel function to avoid leaks.
func (e *Engine) Subscribe() (<-chan domain.Leaderboard, func()) {
	ch := make(chan domain.Leaderboard, 8)

	e.mu.Lock()
	e.subscribers[ch] = struct{}{}
	initial := e.ledger.leaderboard(e.clock())
	e.mu.Unlock()

	ch <- initial

	cancel := func() {
		e.mu.Lock()
		if _, ok := e.subscribers[ch]; ok {
			delete(e.subscribers, ch)
			close(ch)
		}
		e.mu.Unlock()
	}
	return ch, cancel
}

func (e *Engine) broadcastLocked() {
	lb := e.ledger.leaderboard(e.clock())
	for ch := range e.subscribers {
		select {
		case ch <- lb:
		default:
			// Drop the stale snapshot so a slow client never blocks scoring.
			select {
			case <-ch:
			default:
			}
			ch <- lb
		}
	}
}

// queueSaveLocked hands the current snapshot to the persister, latest wins.
func (e *Engine) queueSaveLocked() {
	if e.repo == nil {
		return
	}
	snap := e.snapshotLocked()
	for {
		select {
		case e.saves <- snap:
			return
		default:
			select {
			case <-e.saves:
			default:
			}
		}
	}
}

func (e *Engine) snapshotLocked() Snapshot {
	return Snapshot{
		Pool:      e.pool.snapshot(),
		Standings: e.ledger.snapshot(),
		Round:     e.round.snapshot(),
		Cycle:     e.cycle,
		SavedAt:   e.clock(),
	}
}

func (e *Engine) persistLoop() {
	for {
		select {
		case snap := <-e.saves:
			e.save(snap)
		case <-e.done:
			// Flush whatever is still queued.
			select {
			case snap := <-e.saves:
				e.save(snap)
			default:
			}
			return
		}
	}
}

func (e *Engine) save(snap Snapshot) {
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = 30 * time.Second
	err := backoff.Retry(func() error {
		return e.repo.Save(context.Background(), snap)
	}, policy)
	if err != nil {
		// Degraded mode: memory stays authoritative, the next mutation queues
		// a fresh snapshot and retries.
		log.Printf("[engine] WARN: snapshot save failed, state held in memory: %v", err)
	}
}
