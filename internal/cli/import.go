package cli

import (
	"context"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"lyric-quiz-service/internal/config"
	"lyric-quiz-service/internal/domain"
	"lyric-quiz-service/internal/infra/files"
	"lyric-quiz-service/internal/infra/memory"
	pgstore "lyric-quiz-service/internal/infra/postgres"
)

type songWriter interface {
	Upsert(ctx context.Context, songs ...domain.Song) error
}

// NewImportCmd loads a lyric directory into Postgres.
func NewImportCmd(configPath *string) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a directory of lyric files into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.Corpus.Dir
			}
			if dir == "" {
				return fmt.Errorf("lyric directory not configured")
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer logger.Sync()

			if err := runMigrations(cmd.Context(), cfg, logger); err != nil {
				return err
			}
			db, err := openBun(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := importSongs(cmd.Context(), files.NewSongLoader(dir), pgstore.NewSongWriter(db))
			if err != nil {
				return err
			}
			logger.Info("songs imported", zap.String("dir", dir), zap.Int("count", n))
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "lyric directory (defaults to corpus.dir)")
	return cmd
}

// importSongs parses every song from loader in parallel and upserts them
// in one statement. Any malformed entry fails the whole import.
func importSongs(ctx context.Context, loader memory.SongLoader, writer songWriter) (int, error) {
	keys, err := loader.ListKeys(ctx)
	if err != nil {
		return 0, err
	}

	songs := make([]domain.Song, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, key := range keys {
		g.Go(func() error {
			song, err := loader.LoadSong(gctx, key)
			if err != nil {
				return fmt.Errorf("song %s: %w", key, err)
			}
			songs[i] = song
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	if err := writer.Upsert(ctx, songs...); err != nil {
		return 0, err
	}
	return len(songs), nil
}
