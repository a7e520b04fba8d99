package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"lyric-quiz-service/internal/domain"
)

// SongLoader loads songs from the songs table.
type SongLoader struct {
	pool *pgxpool.Pool
}

func NewSongLoader(pool *pgxpool.Pool) *SongLoader {
	return &SongLoader{pool: pool}
}

func (l *SongLoader) LoadSong(ctx context.Context, key string) (domain.Song, error) {
	var (
		song domain.Song
		raw  []byte
	)
	err := l.pool.QueryRow(ctx, `SELECT key, title, artist, lines FROM songs WHERE key=$1`, key).
		Scan(&song.Key, &song.Title, &song.Artist, &raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Song{}, domain.ErrSongNotFound
	}
	if err != nil {
		return domain.Song{}, fmt.Errorf("load song: %w", err)
	}
	if err := json.Unmarshal(raw, &song.Lines); err != nil {
		return domain.Song{}, fmt.Errorf("unmarshal lines: %w", err)
	}
	return song, nil
}

func (l *SongLoader) ListKeys(ctx context.Context) ([]string, error) {
	rows, err := l.pool.Query(ctx, `SELECT key FROM songs ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list songs: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan song key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
