package app_test

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"riddle-game-service/internal/app"
	"riddle-game-service/internal/domain"
	"riddle-game-service/internal/infra/memory"
)

func newTestEngine(t *testing.T) *app.Engine {
	t.Helper()
	engine := app.NewEngine(memory.NewStateRepository(), app.Config{
		Rand: rand.New(rand.NewSource(1)),
	})
	t.Cleanup(engine.Close)
	return engine
}

func mustSubmit(t *testing.T, engine *app.Engine, question, answer, submitter string) domain.Riddle {
	t.Helper()
	riddle, err := engine.SubmitRiddle(context.Background(), question, answer, submitter)
	if err != nil {
		t.Fatalf("submit %q: %v", question, err)
	}
	return riddle
}

func TestPluralGuessMatches(t *testing.T) {
	// Scenario A: "eggs" matches "egg".
	ctx := context.Background()
	engine := newTestEngine(t)
	mustSubmit(t, engine, "What must be broken before you use it?", "egg", "")

	riddle, err := engine.PostNextRiddle(ctx)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if riddle.Answer != "egg" {
		t.Fatalf("expected egg riddle, got %+v", riddle)
	}

	result, err := engine.SubmitGuess(ctx, "u1", "Eggs")
	if err != nil {
		t.Fatalf("guess: %v", err)
	}
	if result.Outcome != domain.GuessCorrect {
		t.Fatalf("expected correct, got %v", result.Outcome)
	}
}

func TestAttemptExhaustionPenalty(t *testing.T) {
	// Scenario B: 5 wrong guesses penalize once; a 6th changes nothing.
	ctx := context.Background()
	engine := newTestEngine(t)
	mustSubmit(t, engine, "q", "egg", "")
	engine.AdjustPoints(ctx, "u1", 3)
	engine.AdjustStreak(ctx, "u1", 2)

	if _, err := engine.PostNextRiddle(ctx); err != nil {
		t.Fatalf("post: %v", err)
	}

	for i := 1; i <= 4; i++ {
		result, err := engine.SubmitGuess(ctx, "u1", "wrong")
		if err != nil {
			t.Fatalf("guess %d: %v", i, err)
		}
		if result.Outcome != domain.GuessIncorrect {
			t.Fatalf("guess %d: expected incorrect, got %v", i, result.Outcome)
		}
		if result.RemainingAttempts != 5-i {
			t.Fatalf("guess %d: expected %d remaining, got %d", i, 5-i, result.RemainingAttempts)
		}
	}

	fifth, err := engine.SubmitGuess(ctx, "u1", "wrong")
	if err != nil {
		t.Fatalf("guess 5: %v", err)
	}
	if fifth.Outcome != domain.GuessOutOfAttempts || !fifth.Penalized {
		t.Fatalf("expected penalizing out-of-attempts, got %+v", fifth)
	}
	standing := engine.GetStanding(ctx, "u1")
	if standing.Score != 2 || standing.Streak != 0 {
		t.Fatalf("expected score 2 streak 0 after penalty, got %+v", standing)
	}

	sixth, err := engine.SubmitGuess(ctx, "u1", "wrong")
	if err != nil {
		t.Fatalf("guess 6: %v", err)
	}
	if sixth.Outcome != domain.GuessOutOfAttempts || sixth.Penalized {
		t.Fatalf("expected silent out-of-attempts, got %+v", sixth)
	}
	standing = engine.GetStanding(ctx, "u1")
	if standing.Score != 2 || standing.Streak != 0 {
		t.Fatalf("expected unchanged standing after 6th guess, got %+v", standing)
	}
}

func TestPenaltyFloorsAtZero(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)
	mustSubmit(t, engine, "q", "egg", "")
	if _, err := engine.PostNextRiddle(ctx); err != nil {
		t.Fatalf("post: %v", err)
	}
	for i := 0; i < 5; i++ {
		if _, err := engine.SubmitGuess(ctx, "u1", "wrong"); err != nil {
			t.Fatalf("guess: %v", err)
		}
	}
	if standing := engine.GetStanding(ctx, "u1"); standing.Score != 0 {
		t.Fatalf("expected score floored at 0, got %d", standing.Score)
	}
}

func TestTopScorersTie(t *testing.T) {
	// Scenario C: two solvers tied at max are both crowned.
	ctx := context.Background()
	engine := newTestEngine(t)
	mustSubmit(t, engine, "q", "egg", "")
	if _, err := engine.PostNextRiddle(ctx); err != nil {
		t.Fatalf("post: %v", err)
	}
	for _, userID := range []string{"u1", "u2"} {
		result, err := engine.SubmitGuess(ctx, userID, "egg")
		if err != nil || result.Outcome != domain.GuessCorrect {
			t.Fatalf("guess by %s: %v %v", userID, result.Outcome, err)
		}
	}
	if _, err := engine.RevealCurrent(ctx); err != nil {
		t.Fatalf("reveal: %v", err)
	}

	top := engine.TopScorers(ctx)
	if len(top) != 2 || top[0] != "u1" || top[1] != "u2" {
		t.Fatalf("expected both solvers on top, got %v", top)
	}
}

func TestTopScorersExcludesZero(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)
	engine.GetStanding(ctx, "u1")
	if top := engine.TopScorers(ctx); top != nil {
		t.Fatalf("expected no top scorers on empty board, got %v", top)
	}
}

func TestRemoveRiddleNotFound(t *testing.T) {
	// Scenario D: removing an unknown id fails and leaves the pool alone.
	ctx := context.Background()
	engine := newTestEngine(t)
	mustSubmit(t, engine, "q", "a", "")

	if err := engine.RemoveRiddle(ctx, "nope"); err != domain.ErrRiddleNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if got := len(engine.ListRiddles(ctx)); got != 1 {
		t.Fatalf("expected pool unchanged, got %d riddles", got)
	}
}

func TestDuplicateSubmissionRejected(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)
	mustSubmit(t, engine, "What has keys but no locks?", "piano", "u1")

	_, err := engine.SubmitRiddle(ctx, "  what has KEYS but no locks?  ", "keyboard", "u2")
	if err != domain.ErrDuplicateRiddle {
		t.Fatalf("expected duplicate rejection, got %v", err)
	}
}

func TestSelfSubmissionBlocked(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)
	mustSubmit(t, engine, "q", "egg", "author")
	if _, err := engine.PostNextRiddle(ctx); err != nil {
		t.Fatalf("post: %v", err)
	}

	// Even a correct guess from the submitter is refused, every time.
	for i := 0; i < 7; i++ {
		result, err := engine.SubmitGuess(ctx, "author", "egg")
		if err != nil {
			t.Fatalf("guess: %v", err)
		}
		if result.Outcome != domain.GuessSelfSubmission {
			t.Fatalf("expected self submission, got %v", result.Outcome)
		}
	}

	// No guess state was created: the submitter never shows up as a solver.
	summary, err := engine.RevealCurrent(ctx)
	if err != nil {
		t.Fatalf("reveal: %v", err)
	}
	if len(summary.Solvers) != 0 {
		t.Fatalf("expected no solvers, got %v", summary.Solvers)
	}
}

func TestRevealIdempotent(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)
	mustSubmit(t, engine, "q", "egg", "")
	if _, err := engine.PostNextRiddle(ctx); err != nil {
		t.Fatalf("post: %v", err)
	}
	if _, err := engine.SubmitGuess(ctx, "u1", "egg"); err != nil {
		t.Fatalf("guess: %v", err)
	}

	first, err := engine.RevealCurrent(ctx)
	if err != nil {
		t.Fatalf("reveal: %v", err)
	}
	second, err := engine.RevealCurrent(ctx)
	if err != nil {
		t.Fatalf("second reveal: %v", err)
	}

	if first.Answer != second.Answer || len(first.Solvers) != len(second.Solvers) {
		t.Fatalf("reveal not idempotent: %+v vs %+v", first, second)
	}
	// The award fired exactly once.
	if standing := engine.GetStanding(ctx, "u1"); standing.Score != 1 || standing.Streak != 1 {
		t.Fatalf("expected single award, got %+v", standing)
	}
}

func TestRevealWithoutPost(t *testing.T) {
	engine := newTestEngine(t)
	if _, err := engine.RevealCurrent(context.Background()); err != domain.ErrNothingActive {
		t.Fatalf("expected nothing active, got %v", err)
	}
}

func TestGuessAfterReveal(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)
	mustSubmit(t, engine, "q", "egg", "")
	if _, err := engine.PostNextRiddle(ctx); err != nil {
		t.Fatalf("post: %v", err)
	}
	if _, err := engine.RevealCurrent(ctx); err != nil {
		t.Fatalf("reveal: %v", err)
	}
	if _, err := engine.SubmitGuess(ctx, "u1", "egg"); err != domain.ErrNothingActive {
		t.Fatalf("expected nothing active after reveal, got %v", err)
	}
}

func TestPostFromEmptyPool(t *testing.T) {
	engine := newTestEngine(t)
	if _, err := engine.PostNextRiddle(context.Background()); err != domain.ErrEmptyPool {
		t.Fatalf("expected empty pool, got %v", err)
	}
}

func TestNoRepeatWithinWrap(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)
	questions := []string{"q1", "q2", "q3", "q4", "q5"}
	for _, q := range questions {
		mustSubmit(t, engine, q, "a", "")
	}

	// Two full passes: within each pass every riddle appears exactly once.
	for pass := 0; pass < 2; pass++ {
		seen := make(map[string]int)
		for range questions {
			riddle, err := engine.PostNextRiddle(ctx)
			if err != nil {
				t.Fatalf("pass %d post: %v", pass, err)
			}
			seen[riddle.ID]++
		}
		for id, count := range seen {
			if count != 1 {
				t.Fatalf("pass %d: riddle %s picked %d times", pass, id, count)
			}
		}
	}
}

func TestWrapNeverImmediatelyRepeats(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)
	mustSubmit(t, engine, "q1", "a", "")
	mustSubmit(t, engine, "q2", "a", "")

	last := ""
	for i := 0; i < 20; i++ {
		riddle, err := engine.PostNextRiddle(ctx)
		if err != nil {
			t.Fatalf("post %d: %v", i, err)
		}
		if riddle.ID == last {
			t.Fatalf("riddle %s repeated back to back on pick %d", riddle.ID, i)
		}
		last = riddle.ID
	}
}

func TestNewRoundClearsGuessState(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)
	mustSubmit(t, engine, "q1", "egg", "")
	mustSubmit(t, engine, "q2", "egg", "")

	if _, err := engine.PostNextRiddle(ctx); err != nil {
		t.Fatalf("post: %v", err)
	}
	for i := 0; i < 5; i++ {
		if _, err := engine.SubmitGuess(ctx, "u1", "wrong"); err != nil {
			t.Fatalf("guess: %v", err)
		}
	}

	if _, err := engine.PostNextRiddle(ctx); err != nil {
		t.Fatalf("second post: %v", err)
	}
	result, err := engine.SubmitGuess(ctx, "u1", "egg")
	if err != nil {
		t.Fatalf("guess on fresh round: %v", err)
	}
	if result.Outcome != domain.GuessCorrect {
		t.Fatalf("expected clean slate on new round, got %v", result.Outcome)
	}
}

func TestLeaderboardOrderAndPaging(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)
	engine.AdjustPoints(ctx, "low", 1)
	engine.AdjustPoints(ctx, "high", 5)
	engine.AdjustPoints(ctx, "tied-short", 3)
	engine.AdjustPoints(ctx, "tied-long", 3)
	engine.AdjustStreak(ctx, "tied-long", 4)

	lb, pages := engine.Leaderboard(ctx, 0, 10)
	if pages != 1 {
		t.Fatalf("expected 1 page, got %d", pages)
	}
	order := []string{"high", "tied-long", "tied-short", "low"}
	if len(lb.Entries) != len(order) {
		t.Fatalf("expected %d entries, got %d", len(order), len(lb.Entries))
	}
	for i, want := range order {
		if lb.Entries[i].UserID != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, lb.Entries[i].UserID)
		}
	}

	paged, pages := engine.Leaderboard(ctx, 1, 3)
	if pages != 2 {
		t.Fatalf("expected 2 pages of 3, got %d", pages)
	}
	if len(paged.Entries) != 1 || paged.Entries[0].UserID != "low" {
		t.Fatalf("expected trailing page with low, got %+v", paged.Entries)
	}
}

func TestAdjustClampsAtZero(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)
	engine.AdjustPoints(ctx, "u1", 2)
	standing := engine.AdjustPoints(ctx, "u1", -10)
	if standing.Score != 0 {
		t.Fatalf("expected score clamped at 0, got %d", standing.Score)
	}
	standing = engine.AdjustStreak(ctx, "u1", -5)
	if standing.Streak != 0 {
		t.Fatalf("expected streak clamped at 0, got %d", standing.Streak)
	}
}

func TestAwardReflectedInRank(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)
	mustSubmit(t, engine, "q", "egg", "")
	if _, err := engine.PostNextRiddle(ctx); err != nil {
		t.Fatalf("post: %v", err)
	}
	if _, err := engine.SubmitGuess(ctx, "u1", "egg"); err != nil {
		t.Fatalf("guess: %v", err)
	}
	summary, err := engine.RevealCurrent(ctx)
	if err != nil {
		t.Fatalf("reveal: %v", err)
	}
	if len(summary.Solvers) != 1 {
		t.Fatalf("expected one solver, got %d", len(summary.Solvers))
	}
	solver := summary.Solvers[0]
	if solver.Score != 1 || solver.Streak != 1 {
		t.Fatalf("expected awarded standing in summary, got %+v", solver)
	}
	if solver.RankLabel != domain.RankLabel(1, 1) {
		t.Fatalf("rank label not derived from awarded standing: %q", solver.RankLabel)
	}
}

func TestSubscribeReceivesScoringUpdates(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)

	ch, cancel := engine.Subscribe()
	defer cancel()
	<-ch // initial snapshot

	engine.AdjustPoints(ctx, "u1", 2)

	select {
	case lb := <-ch:
		if len(lb.Entries) != 1 || lb.Entries[0].Score != 2 {
			t.Fatalf("expected updated board, got %+v", lb.Entries)
		}
	case <-time.After(time.Second):
		t.Fatalf("no leaderboard update received")
	}
}

func TestRestoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStateRepository()

	engine := app.NewEngine(repo, app.Config{Rand: rand.New(rand.NewSource(1))})
	mustSubmit(t, engine, "q1", "egg", "")
	mustSubmit(t, engine, "q2", "fish", "")
	if _, err := engine.PostNextRiddle(ctx); err != nil {
		t.Fatalf("post: %v", err)
	}
	if _, err := engine.SubmitGuess(ctx, "u1", "wrong"); err != nil {
		t.Fatalf("guess: %v", err)
	}
	engine.AdjustPoints(ctx, "u2", 7)
	engine.Close()

	// Saves are async; wait for the repository to observe the final state.
	deadline := time.Now().Add(2 * time.Second)
	for {
		snap, ok, err := repo.Load(ctx)
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if ok && len(snap.Standings) > 0 && snap.Round.Active {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("snapshot never persisted")
		}
		time.Sleep(10 * time.Millisecond)
	}

	restored := app.NewEngine(repo, app.Config{Rand: rand.New(rand.NewSource(2))})
	defer restored.Close()
	if err := restored.Restore(ctx); err != nil {
		t.Fatalf("restore: %v", err)
	}

	if standing := restored.GetStanding(ctx, "u2"); standing.Score != 7 {
		t.Fatalf("expected restored score 7, got %+v", standing)
	}
	status := restored.Status()
	if !status.Active {
		t.Fatalf("expected restored active round, got %+v", status)
	}
	// Attempts survive the restart: u1 has 4 left, not 5.
	result, err := restored.SubmitGuess(ctx, "u1", "wrong")
	if err != nil {
		t.Fatalf("guess after restore: %v", err)
	}
	if result.RemainingAttempts != 3 {
		t.Fatalf("expected 3 remaining after restore, got %d", result.RemainingAttempts)
	}
}
