package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"live-quiz-engine/internal/config"
	"live-quiz-engine/internal/domain"
	"live-quiz-engine/internal/engine"
	"live-quiz-engine/internal/infra/memory"
	pgloader "live-quiz-engine/internal/infra/postgres"
	infraredis "live-quiz-engine/internal/infra/redis"
	transport "live-quiz-engine/internal/transport/http"
)

// NewServeCmd builds the CLI subcommand to start the server.
func NewServeCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the quiz engine server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	redisTTL := config.Duration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var loader memory.QuizLoader = memory.NewStaticQuizLoader(sampleQuizzes())
	if pool != nil {
		loader = pgloader.NewQuizLoader(pool)
	}

	quizTTL := config.Duration(cfg.Quiz.TTL, 10*time.Minute)
	var quizRepo transport.QuizRepository
	if redisClient != nil {
		quizRepo = infraredis.NewQuizRepository(redisClient, loader, quizTTL)
	} else {
		quizRepo = memory.NewQuizRepository(loader, quizTTL)
	}

	tick := config.Duration(cfg.Engine.Tick, time.Second)
	var engineOpts []engine.Option
	if seed := seedRoster(cfg.Engine.SeedParticipants); len(seed) > 0 {
		engineOpts = append(engineOpts, engine.WithSeedRoster(seed))
	}
	store := memory.NewEngineStore(tick, engineOpts...)
	if redisClient != nil {
		store.OnCreate(func(quizID string, e *engine.Engine) {
			e.Subscribe("redis-mirror", infraredis.NewLeaderboardMirror(redisClient, quizID, redisTTL))
		})
	}

	wsHandler := transport.NewWSHandler(quizRepo, store)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz engine on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func seedRoster(seeds []config.SeedParticipant) []domain.Participant {
	roster := make([]domain.Participant, 0, len(seeds))
	for _, s := range seeds {
		roster = append(roster, domain.Participant{
			ID:          s.ID,
			DisplayName: s.Name,
			AvatarURL:   s.Avatar,
		})
	}
	return roster
}

// sampleQuizzes is the demo question bank used when no Postgres URL is
// configured.
func sampleQuizzes() map[string]domain.Quiz {
	return map[string]domain.Quiz{
		"quiz-1": {
			ID:         "quiz-1",
			Title:      "Evening Trivia",
			Topic:      "general",
			Difficulty: "easy",
			RewardXP:   100,
			Status:     domain.QuizStatusLive,
			Questions: []domain.Question{
				{
					ID:           "q1",
					Prompt:       "What is 2 + 2?",
					Options:      []string{"3", "4", "5", "6"},
					CorrectIndex: 1,
					Points:       10,
					TimeLimitSec: 15,
					Explanation:  "Basic arithmetic.",
				},
				{
					ID:           "q2",
					Prompt:       "Which planet is known as the Red Planet?",
					Options:      []string{"Venus", "Jupiter", "Mars", "Saturn"},
					CorrectIndex: 2,
					Points:       10,
					TimeLimitSec: 15,
				},
			},
		},
	}
}
