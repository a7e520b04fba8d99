package files

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"lyric-quiz-service/internal/domain"
)

const songExt = ".txt"

// SongLoader reads lyric records from a directory of <key>.txt files.
type SongLoader struct {
	dir string
}

func NewSongLoader(dir string) *SongLoader {
	return &SongLoader{dir: dir}
}

func (l *SongLoader) LoadSong(_ context.Context, key string) (domain.Song, error) {
	if key == "" || key != filepath.Base(key) {
		return domain.Song{}, domain.ErrSongNotFound
	}
	f, err := os.Open(filepath.Join(l.dir, key+songExt))
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Song{}, domain.ErrSongNotFound
	}
	if err != nil {
		return domain.Song{}, fmt.Errorf("open song: %w", err)
	}
	defer f.Close()
	return domain.ParseSong(key, f)
}

// ListKeys returns the key of every regular .txt file in the directory.
func (l *SongLoader) ListKeys(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("list songs: %w", err)
	}
	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() || !strings.HasSuffix(name, songExt) {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, songExt))
	}
	sort.Strings(keys)
	return keys, nil
}
