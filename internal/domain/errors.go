package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyLocked is returned when a question is already outstanding in the channel.
	ErrAlreadyLocked = errors.New("a question is already in effect")
	// ErrAlreadyRunning is returned when a tournament is already in progress.
	ErrAlreadyRunning = errors.New("a tournament is already running")
	// ErrNoActiveQuestion is returned when guessing or revealing without an open question.
	ErrNoActiveQuestion = errors.New("no active question")
	// ErrDuplicateGuess is returned when an identity guesses twice on the same question.
	ErrDuplicateGuess = errors.New("you already made your guess")
	// ErrNoGuesses is returned when revealing a question nobody has guessed yet.
	ErrNoGuesses = errors.New("no guesses yet")
	// ErrGuessingClosed is returned for tournament guesses outside a round's window.
	ErrGuessingClosed = errors.New("guessing is closed right now")
	// ErrNoActiveTournament is a GuessingClosed variant for channels with no tournament at all.
	ErrNoActiveTournament = fmt.Errorf("no active tournament: %w", ErrGuessingClosed)
	// ErrInvalidRounds indicates a tournament length without a point schedule.
	ErrInvalidRounds = errors.New("tournament must have 5 or 10 rounds")
	// ErrSongNotFound indicates an explicit song identifier has no corpus entry.
	ErrSongNotFound = errors.New("song does not exist in catalog")
	// ErrMalformedSong indicates a corpus entry without title, artist and two lyric lines.
	ErrMalformedSong = errors.New("malformed song entry")
	// ErrEmptyCorpus indicates there is nothing to draw a question from.
	ErrEmptyCorpus = errors.New("corpus has no songs")
	// ErrGuessTooLong is returned for guesses longer than MaxGuessRunes.
	ErrGuessTooLong = fmt.Errorf("guess is longer than %d characters", MaxGuessRunes)
	// ErrNoCheating is returned when lyrics are requested while a game is in progress.
	ErrNoCheating = errors.New("no cheating")
)
