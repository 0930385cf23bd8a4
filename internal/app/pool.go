package app

import (
	"math/rand"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"riddle-game-service/internal/domain"
)

// riddlePool owns the candidate riddles and their used markers. Fairness rule:
// no riddle repeats until every riddle has been played once (a wrap), and a
// wrap never re-picks the riddle that was just played when more than one
// riddle exists.
type riddlePool struct {
	riddles    []domain.Riddle // insertion order
	used       map[string]struct{}
	lastPicked string
	wrapGen    int

	strictDuplicates bool
	rnd              *rand.Rand
	clock            func() time.Time
}

func newRiddlePool(strictDuplicates bool, rnd *rand.Rand, clock func() time.Time) *riddlePool {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if clock == nil {
		clock = time.Now
	}
	return &riddlePool{
		used:             make(map[string]struct{}),
		strictDuplicates: strictDuplicates,
		rnd:              rnd,
		clock:            clock,
	}
}

func (p *riddlePool) submit(question, answer, submitter string) (domain.Riddle, error) {
	question = strings.TrimSpace(question)
	answer = strings.TrimSpace(answer)

	key := p.duplicateKey(question)
	for _, r := range p.riddles {
		if p.duplicateKey(r.Question) == key {
			return domain.Riddle{}, domain.ErrDuplicateRiddle
		}
	}

	riddle := domain.Riddle{
		ID:        uuid.NewString(),
		Question:  question,
		Answer:    answer,
		Submitter: submitter,
		CreatedAt: p.clock(),
	}
	p.riddles = append(p.riddles, riddle)
	return riddle, nil
}

// addExisting inserts a riddle that already has an id (seed data), skipping
// ids and duplicate questions silently.
func (p *riddlePool) addExisting(riddle domain.Riddle) bool {
	key := p.duplicateKey(riddle.Question)
	for _, r := range p.riddles {
		if r.ID == riddle.ID || p.duplicateKey(r.Question) == key {
			return false
		}
	}
	p.riddles = append(p.riddles, riddle)
	return true
}

func (p *riddlePool) pickNext() (domain.Riddle, error) {
	if len(p.riddles) == 0 {
		return domain.Riddle{}, domain.ErrEmptyPool
	}

	candidates := p.unused()
	if len(candidates) == 0 {
		// Wrap: everyone has been played, start a fresh pass. The riddle that
		// just ran stays off the table for the first pick of the new pass
		// unless it is the only one.
		p.used = make(map[string]struct{})
		p.wrapGen++
		candidates = p.unused()
		if len(p.riddles) > 1 {
			filtered := candidates[:0]
			for _, r := range candidates {
				if r.ID != p.lastPicked {
					filtered = append(filtered, r)
				}
			}
			candidates = filtered
		}
	}

	picked := candidates[p.rnd.Intn(len(candidates))]
	p.used[picked.ID] = struct{}{}
	p.lastPicked = picked.ID
	return picked, nil
}

func (p *riddlePool) remove(id string) error {
	for i, r := range p.riddles {
		if r.ID == id {
			p.riddles = append(p.riddles[:i], p.riddles[i+1:]...)
			delete(p.used, id)
			return nil
		}
	}
	return domain.ErrRiddleNotFound
}

func (p *riddlePool) list() []domain.Riddle {
	out := make([]domain.Riddle, len(p.riddles))
	copy(out, p.riddles)
	return out
}

func (p *riddlePool) unused() []domain.Riddle {
	out := make([]domain.Riddle, 0, len(p.riddles))
	for _, r := range p.riddles {
		if _, ok := p.used[r.ID]; !ok {
			out = append(out, r)
		}
	}
	return out
}

// duplicateKey normalizes a question for duplicate detection: trim + lowercase,
// plus full whitespace removal in strict mode.
func (p *riddlePool) duplicateKey(question string) string {
	key := strings.ToLower(strings.TrimSpace(question))
	if p.strictDuplicates {
		key = strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return -1
			}
			return r
		}, key)
	}
	return key
}

func (p *riddlePool) snapshot() PoolSnapshot {
	usedIDs := make([]string, 0, len(p.used))
	for _, r := range p.riddles {
		if _, ok := p.used[r.ID]; ok {
			usedIDs = append(usedIDs, r.ID)
		}
	}
	return PoolSnapshot{
		Riddles:        p.list(),
		UsedIDs:        usedIDs,
		LastPicked:     p.lastPicked,
		WrapGeneration: p.wrapGen,
	}
}

func (p *riddlePool) restore(snap PoolSnapshot) {
	p.riddles = make([]domain.Riddle, len(snap.Riddles))
	copy(p.riddles, snap.Riddles)
	p.used = make(map[string]struct{}, len(snap.UsedIDs))
	for _, id := range snap.UsedIDs {
		p.used[id] = struct{}{}
	}
	p.lastPicked = snap.LastPicked
	p.wrapGen = snap.WrapGeneration
}
