package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"riddle-game-service/internal/domain"
)

// RiddleLoader reads the operator-seeded riddle pack from Postgres. It is used
// to hydrate an empty pool on first start and by the seed CLI command.
type RiddleLoader struct {
	pool *pgxpool.Pool
}

func NewRiddleLoader(pool *pgxpool.Pool) *RiddleLoader {
	return &RiddleLoader{pool: pool}
}

func (l *RiddleLoader) LoadRiddles(ctx context.Context) ([]domain.Riddle, error) {
	rows, err := l.pool.Query(ctx,
		`SELECT id, question, answer, submitter, created_at FROM riddles ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("load riddles: %w", err)
	}
	defer rows.Close()

	var riddles []domain.Riddle
	for rows.Next() {
		var r domain.Riddle
		if err := rows.Scan(&r.ID, &r.Question, &r.Answer, &r.Submitter, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan riddle: %w", err)
		}
		riddles = append(riddles, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read riddles: %w", err)
	}
	return riddles, nil
}

// InsertRiddles writes a riddle pack, skipping ids that already exist.
func (l *RiddleLoader) InsertRiddles(ctx context.Context, riddles []domain.Riddle) error {
	for _, r := range riddles {
		_, err := l.pool.Exec(ctx,
			`INSERT INTO riddles (id, question, answer, submitter, created_at)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (id) DO NOTHING`,
			r.ID, r.Question, r.Answer, r.Submitter, r.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert riddle %s: %w", r.ID, err)
		}
	}
	return nil
}
