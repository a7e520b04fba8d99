package domain

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxGuessRunes caps a guess; scoring cost grows with the product of the
// guess and answer lengths.
const MaxGuessRunes = 500

// CheckGuess rejects guesses over MaxGuessRunes.
func CheckGuess(text string) error {
	if len(text) > MaxGuessRunes*utf8.UTFMax || utf8.RuneCountInString(text) > MaxGuessRunes {
		return ErrGuessTooLong
	}
	return nil
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeKey turns a free-form song name into its canonical corpus key:
// lowercase, runs of non-alphanumerics collapsed to "_", trimmed.
func NormalizeKey(name string) string {
	key := nonAlnum.ReplaceAllString(strings.ToLower(name), "_")
	return strings.Trim(key, "_")
}

// ParseSong reads a line-oriented lyric record: title, artist, then lyric
// lines. Blank lines are ignored and every line is trimmed.
func ParseSong(key string, r io.Reader) (Song, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return Song{}, fmt.Errorf("read song %s: %w", key, err)
	}
	song := Song{Key: key}
	if len(lines) > 0 {
		song.Title = lines[0]
	}
	if len(lines) > 1 {
		song.Artist = lines[1]
	}
	if len(lines) > 2 {
		song.Lines = lines[2:]
	}
	return song, song.Validate()
}

// Validate checks the song can produce at least one question.
func (s Song) Validate() error {
	if s.Title == "" || s.Artist == "" || len(s.Lines) < 2 {
		return fmt.Errorf("%w: %q needs a title, an artist and two lyric lines", ErrMalformedSong, s.Key)
	}
	return nil
}

// QuestionAt pairs lyric line i with line i+1. Valid indexes are
// 0..len(Lines)-2; the last line never opens a question.
func (s Song) QuestionAt(i int) (Question, error) {
	if i < 0 || i > len(s.Lines)-2 {
		return Question{}, fmt.Errorf("%w: line %d out of range for %q", ErrMalformedSong, i, s.Key)
	}
	return Question{
		SongKey:       s.Key,
		SongTitle:     s.Title,
		Artist:        s.Artist,
		LyricLine:     s.Lines[i],
		CorrectAnswer: s.Lines[i+1],
	}, nil
}

var (
	fiveRoundPoints = []int{15, 15, 20, 25, 25}
	tenRoundPoints  = []int{5, 5, 5, 5, 10, 10, 15, 15, 15, 15}
)

// ValidRounds reports whether a tournament length has a point schedule.
func ValidRounds(total int) bool {
	return total == len(fiveRoundPoints) || total == len(tenRoundPoints)
}

// PointPool returns the points at stake in round (1-based) of a tournament.
func PointPool(total, round int) (int, error) {
	var schedule []int
	switch total {
	case len(fiveRoundPoints):
		schedule = fiveRoundPoints
	case len(tenRoundPoints):
		schedule = tenRoundPoints
	default:
		return 0, ErrInvalidRounds
	}
	if round < 1 || round > total {
		return 0, fmt.Errorf("round %d outside 1..%d", round, total)
	}
	return schedule[round-1], nil
}
