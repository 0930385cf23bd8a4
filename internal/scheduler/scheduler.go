package scheduler

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"riddle-game-service/internal/app"
	"riddle-game-service/internal/domain"
)

// Broadcaster renders scheduler events to the chat platform. Implemented by
// the Discord adapter; a no-op implementation is fine for headless runs.
type Broadcaster interface {
	AnnounceRiddle(ctx context.Context, riddle domain.Riddle)
	AnnounceReveal(ctx context.Context, summary domain.RevealSummary)
}

// NopBroadcaster drops all announcements.
type NopBroadcaster struct{}

func (NopBroadcaster) AnnounceRiddle(context.Context, domain.Riddle)        {}
func (NopBroadcaster) AnnounceReveal(context.Context, domain.RevealSummary) {}

// Scheduler drives the daily post/reveal cycle. Both ticks are guarded by
// the engine's persisted cycle markers so a restart between ticks neither
// double-posts nor double-reveals, and a reveal never fires before its post.
type Scheduler struct {
	engine      *app.Engine
	broadcaster Broadcaster
	location    *time.Location
	postSpec    string
	revealSpec  string
	clock       func() time.Time

	cron *cron.Cron
}

func New(engine *app.Engine, broadcaster Broadcaster, location *time.Location, postSpec, revealSpec string) *Scheduler {
	if broadcaster == nil {
		broadcaster = NopBroadcaster{}
	}
	if location == nil {
		location = time.UTC
	}
	return &Scheduler{
		engine:      engine,
		broadcaster: broadcaster,
		location:    location,
		postSpec:    postSpec,
		revealSpec:  revealSpec,
		clock:       time.Now,
	}
}

// Start registers the cron entries and begins ticking.
func (s *Scheduler) Start() error {
	c := cron.New(cron.WithLocation(s.location))
	if _, err := c.AddFunc(s.postSpec, func() { s.RunPost(context.Background()) }); err != nil {
		return err
	}
	if _, err := c.AddFunc(s.revealSpec, func() { s.RunReveal(context.Background()) }); err != nil {
		return err
	}
	c.Start()
	s.cron = c
	return nil
}

// Stop halts ticking. Does not wait for an in-flight tick.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// RunPost executes one post tick. Returns true when a riddle was posted.
func (s *Scheduler) RunPost(ctx context.Context) bool {
	status := s.engine.Status()
	today := s.today()
	if s.sameDay(status.LastPostedAt, today) {
		log.Printf("[scheduler] already posted today, skipping")
		return false
	}
	if status.Active {
		// An unrevealed round is still running (e.g. restart after a missed
		// reveal); don't throw away its guesses.
		log.Printf("[scheduler] round %s still active, skipping post", status.ActiveRiddleID)
		return false
	}

	riddle, err := s.engine.PostNextRiddle(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyPool) {
			log.Printf("[scheduler] riddle pool is empty, nothing to post")
		} else {
			log.Printf("[scheduler] post failed: %v", err)
		}
		return false
	}
	log.Printf("[scheduler] posted riddle %s", riddle.ID)
	s.broadcaster.AnnounceRiddle(ctx, riddle)
	return true
}

// RunReveal executes one reveal tick. Returns true when a reveal happened.
func (s *Scheduler) RunReveal(ctx context.Context) bool {
	status := s.engine.Status()
	today := s.today()
	if s.sameDay(status.LastRevealedAt, today) {
		log.Printf("[scheduler] already revealed today, skipping")
		return false
	}
	if !status.Active {
		log.Printf("[scheduler] no active riddle to reveal")
		return false
	}

	summary, err := s.engine.RevealCurrent(ctx)
	if err != nil {
		log.Printf("[scheduler] reveal failed: %v", err)
		return false
	}
	log.Printf("[scheduler] revealed riddle %s with %d solver(s)", summary.Riddle.ID, len(summary.Solvers))
	s.broadcaster.AnnounceReveal(ctx, summary)
	return true
}

func (s *Scheduler) today() time.Time {
	return s.clock().In(s.location)
}

func (s *Scheduler) sameDay(a, b time.Time) bool {
	if a.IsZero() {
		return false
	}
	ay, am, ad := a.In(s.location).Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
