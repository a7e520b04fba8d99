package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestNormalizeKey(t *testing.T) {
	cases := map[string]string{
		"Blue":                 "blue",
		"  Don't Stop Me Now ": "don_t_stop_me_now",
		"--Hello,, World!!":    "hello_world",
		"already_snake":        "already_snake",
	}
	for in, want := range cases {
		if got := NormalizeKey(in); got != want {
			t.Fatalf("NormalizeKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseSongAndQuestionAt(t *testing.T) {
	raw := "Blue\nArtist\n\nfirst line\n  second line  \nthird line\n"
	song, err := ParseSong("blue", strings.NewReader(raw))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if song.Title != "Blue" || song.Artist != "Artist" || len(song.Lines) != 3 {
		t.Fatalf("unexpected song %+v", song)
	}

	q, err := song.QuestionAt(1)
	if err != nil {
		t.Fatalf("question: %v", err)
	}
	if q.LyricLine != "second line" || q.CorrectAnswer != "third line" {
		t.Fatalf("unexpected question %+v", q)
	}

	if _, err := song.QuestionAt(2); !errors.Is(err, ErrMalformedSong) {
		t.Fatalf("last line must not open a question, got %v", err)
	}
}

func TestParseSongRejectsShortEntries(t *testing.T) {
	if _, err := ParseSong("short", strings.NewReader("Title\nArtist\nonly line\n")); !errors.Is(err, ErrMalformedSong) {
		t.Fatalf("expected malformed song, got %v", err)
	}
}

func TestPointPool(t *testing.T) {
	five := 0
	for r := 1; r <= 5; r++ {
		p, err := PointPool(5, r)
		if err != nil {
			t.Fatalf("pool: %v", err)
		}
		five += p
	}
	if five != 100 {
		t.Fatalf("five-round schedule should total 100, got %d", five)
	}
	if p, _ := PointPool(5, 3); p != 20 {
		t.Fatalf("round 3 of 5 should be worth 20, got %d", p)
	}
	if p, _ := PointPool(10, 10); p != 15 {
		t.Fatalf("round 10 of 10 should be worth 15, got %d", p)
	}
	if _, err := PointPool(7, 1); !errors.Is(err, ErrInvalidRounds) {
		t.Fatalf("expected invalid rounds, got %v", err)
	}
}
