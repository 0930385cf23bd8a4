package cli

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"

	"riddle-game-service/internal/config"
	"riddle-game-service/internal/domain"
	pgstore "riddle-game-service/internal/infra/postgres"
)

// NewSeedCmd inserts the starter riddle pack into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed the riddles table with a starter pack",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return fmt.Errorf("postgres url not configured")
			}
			if err := runMigrationsWithConfig(ctx, cfg); err != nil {
				return err
			}

			pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
			if err != nil {
				return err
			}
			defer pool.Close()

			loader := pgstore.NewRiddleLoader(pool)
			if err := loader.InsertRiddles(ctx, starterRiddles()); err != nil {
				return err
			}
			log.Printf("seeded %d riddles", len(starterRiddles()))
			return nil
		},
	}
}

func starterRiddles() []domain.Riddle {
	now := time.Now().UTC()
	pack := []struct{ question, answer string }{
		{"What must be broken before you can use it?", "egg"},
		{"What has keys but can't open locks?", "piano"},
		{"What has to be broken before you can eat it?", "nut"},
		{"What gets wetter the more it dries?", "towel"},
		{"What has a head and a tail but no body?", "coin"},
		{"What can you catch but not throw?", "cold"},
		{"What has one eye but cannot see?", "needle"},
		{"What goes up but never comes down?", "age"},
		{"What has hands but cannot clap?", "clock"},
		{"What belongs to you but is used more by others?", "name"},
	}
	riddles := make([]domain.Riddle, 0, len(pack))
	for _, p := range pack {
		// Deterministic ids keep re-seeding idempotent.
		riddles = append(riddles, domain.Riddle{
			ID:        uuid.NewSHA1(uuid.NameSpaceOID, []byte(p.question)).String(),
			Question:  p.question,
			Answer:    p.answer,
			CreatedAt: now,
		})
	}
	return riddles
}
