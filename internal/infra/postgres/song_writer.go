package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"lyric-quiz-service/internal/domain"
)

type songRow struct {
	bun.BaseModel `bun:"table:songs"`

	Key       string    `bun:"key,pk"`
	Title     string    `bun:"title,notnull"`
	Artist    string    `bun:"artist,notnull"`
	Lines     []string  `bun:"lines,type:jsonb,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// SongWriter upserts songs into the songs table.
type SongWriter struct {
	db *bun.DB
}

func NewSongWriter(db *bun.DB) *SongWriter {
	return &SongWriter{db: db}
}

// Upsert inserts the songs, replacing any existing row with the same key.
func (w *SongWriter) Upsert(ctx context.Context, songs ...domain.Song) error {
	if len(songs) == 0 {
		return nil
	}
	now := time.Now().UTC()
	rows := make([]songRow, 0, len(songs))
	for _, s := range songs {
		if err := s.Validate(); err != nil {
			return err
		}
		rows = append(rows, songRow{Key: s.Key, Title: s.Title, Artist: s.Artist, Lines: s.Lines, UpdatedAt: now})
	}
	_, err := w.db.NewInsert().
		Model(&rows).
		On("CONFLICT (key) DO UPDATE").
		Set("title = EXCLUDED.title").
		Set("artist = EXCLUDED.artist").
		Set("lines = EXCLUDED.lines").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert songs: %w", err)
	}
	return nil
}
