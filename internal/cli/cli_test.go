package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lyric-quiz-service/internal/config"
	"lyric-quiz-service/internal/domain"
	"lyric-quiz-service/internal/infra/files"
)

type recordingWriter struct {
	songs []domain.Song
}

func (w *recordingWriter) Upsert(_ context.Context, songs ...domain.Song) error {
	w.songs = append(w.songs, songs...)
	return nil
}

func writeSong(t *testing.T, dir, key, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, key+".txt"), []byte(body), 0o644); err != nil {
		t.Fatalf("write song: %v", err)
	}
}

func TestImportSongsReadsWholeDirectory(t *testing.T) {
	dir := t.TempDir()
	writeSong(t, dir, "blue", "Blue\nArtist\nfirst line\nsecond line\n")
	writeSong(t, dir, "red", "Red\nOther\n\nup\ndown\nall around\n")

	writer := &recordingWriter{}
	n, err := importSongs(context.Background(), files.NewSongLoader(dir), writer)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if n != 2 || len(writer.songs) != 2 {
		t.Fatalf("expected 2 songs, got %d (%d written)", n, len(writer.songs))
	}
	if writer.songs[0].Key != "blue" || writer.songs[1].Key != "red" || len(writer.songs[1].Lines) != 3 {
		t.Fatalf("unexpected songs %+v", writer.songs)
	}
}

func TestImportSongsRejectsMalformedEntry(t *testing.T) {
	dir := t.TempDir()
	writeSong(t, dir, "blue", "Blue\nArtist\nfirst line\nsecond line\n")
	writeSong(t, dir, "short", "Short\nArtist\nonly line\n")

	writer := &recordingWriter{}
	if _, err := importSongs(context.Background(), files.NewSongLoader(dir), writer); !errors.Is(err, domain.ErrMalformedSong) {
		t.Fatalf("expected malformed song error, got %v", err)
	}
	if len(writer.songs) != 0 {
		t.Fatalf("nothing should be written on failure")
	}
}

func TestScoreCommand(t *testing.T) {
	cmd := NewScoreCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"third line", "Third Line"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("score failed: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "100.00" {
		t.Fatalf("expected 100.00, got %q", got)
	}
}

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	var cfg config.Config
	cfg.Log.Level = "loud"
	if _, err := newLogger(cfg); err == nil {
		t.Fatalf("expected an error for an unknown level")
	}
	cfg.Log.Level = "debug"
	logger, err := newLogger(cfg)
	if err != nil {
		t.Fatalf("debug level rejected: %v", err)
	}
	_ = logger.Sync()
}
