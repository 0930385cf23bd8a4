package cli

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"riddle-game-service/internal/app"
	"riddle-game-service/internal/config"
	"riddle-game-service/internal/infra/memory"
	pgstore "riddle-game-service/internal/infra/postgres"
	redisstore "riddle-game-service/internal/infra/redis"
	"riddle-game-service/internal/scheduler"
	"riddle-game-service/internal/transport/discord"
	transport "riddle-game-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the bot and the HTTP server.
func NewStartCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the riddle game",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath)
		},
	}
}

func runServer(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Server.Port
	}
	if port == "" {
		port = "8080"
	}

	// Durable state: Redis when configured, in-memory otherwise.
	var repo app.StateRepository = memory.NewStateRepository()
	if cfg.Redis.Addr != "" {
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		repo = redisstore.NewStateRepository(client)
	}

	engine := app.NewEngine(repo, app.Config{StrictDuplicates: cfg.Game.StrictDuplicates})
	defer engine.Close()
	if err := engine.Restore(ctx); err != nil {
		return err
	}

	// Hydrate an empty pool from the Postgres seed pack.
	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		seeds, err := pgstore.NewRiddleLoader(pool).LoadRiddles(ctx)
		if err != nil {
			return err
		}
		if added := engine.ImportRiddles(ctx, seeds); added > 0 {
			log.Printf("imported %d seed riddles", added)
		}
	}

	// Discord front end is optional; the engine also serves over HTTP.
	var broadcaster scheduler.Broadcaster = scheduler.NopBroadcaster{}
	var bot *discord.Bot
	if cfg.Discord.Token != "" {
		bot, err = discord.New(cfg.Discord.Token, engine, cfg.Discord.ChannelID, cfg.Discord.GuildID)
		if err != nil {
			return err
		}
		if err := bot.Start(); err != nil {
			return err
		}
		defer bot.Stop()
		broadcaster = bot
	}

	sched := scheduler.New(engine, broadcaster, cfg.Location(), cfg.Game.PostCron, cfg.Game.RevealCron)
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	wsHandler := transport.NewWSHandler(engine)
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", transport.Healthz)
	mux.HandleFunc("/ws/leaderboard", wsHandler.ServeLeaderboard)

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(runCtx)
	group.Go(func() error {
		log.Printf("starting riddle game service on :%s", port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		log.Println("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return group.Wait()
}
