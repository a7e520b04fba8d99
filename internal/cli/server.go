package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"lyric-quiz-service/internal/app"
	"lyric-quiz-service/internal/config"
	"lyric-quiz-service/internal/infra/files"
	"lyric-quiz-service/internal/infra/memory"
	pgstore "lyric-quiz-service/internal/infra/postgres"
	redisstore "lyric-quiz-service/internal/infra/redis"
	transport "lyric-quiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the lyric game server",
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
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	usePostgres := cfg.Corpus.Source == "postgres" || (cfg.Corpus.Source == "" && cfg.Postgres.URL != "")
	if usePostgres {
		if err := runMigrations(ctx, cfg, logger); err != nil {
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
		defer redisClient.Close()
	}

	var loader memory.SongLoader
	if usePostgres {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		loader = pgstore.NewSongLoader(pool)
		logger.Info("serving songs from postgres")
	} else {
		dir := cfg.Corpus.Dir
		if dir == "" {
			dir = "lyrics"
		}
		loader = files.NewSongLoader(dir)
		logger.Info("serving songs from directory", zap.String("dir", dir))
	}

	corpusTTL := config.Duration(cfg.Corpus.TTL, 10*time.Minute)
	var songs app.SongRepository
	if redisClient != nil {
		songs = redisstore.NewSongRepository(redisClient, loader, corpusTTL)
	} else {
		songs = memory.NewSongRepository(loader, corpusTTL)
	}

	defaults := app.DefaultSettings()
	settings := app.Settings{
		IdleTimeout:    config.Duration(cfg.Game.IdleTimeout, defaults.IdleTimeout),
		ReaperInterval: config.Duration(cfg.Game.ReaperInterval, defaults.ReaperInterval),
		RoundWindow:    config.Duration(cfg.Game.RoundWindow, defaults.RoundWindow),
		Intermission:   config.Duration(cfg.Game.Intermission, defaults.Intermission),
	}

	var games app.GameRepository
	if redisClient != nil {
		games = redisstore.NewGameStore(redisClient, config.Duration(cfg.Redis.TTL, settings.IdleTimeout))
	} else {
		games = memory.NewGameStore()
	}

	service := app.NewGameService(games, app.NewCorpus(songs), settings, logger)
	defer service.Close()

	reaper := app.NewReaper(service, settings.ReaperInterval, logger)
	reaper.Start()
	defer reaper.Stop()

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     transport.NewMux(transport.NewWSHandler(service, logger)),
		ReadTimeout: 15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting lyric quiz service", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case <-stop:
		logger.Info("shutting down server")
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	case err := <-errCh:
		logger.Error("server failed", zap.Error(err))
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
