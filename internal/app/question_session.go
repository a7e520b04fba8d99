package app

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"lyric-quiz-service/internal/domain"
	"lyric-quiz-service/internal/scoring"
)

// SessionState is the state of a channel's single-question game.
type SessionState int

const (
	// SessionIdle means no question is outstanding.
	SessionIdle SessionState = iota
	// SessionLocked means a question is open for guesses and no new one may be drawn.
	SessionLocked
)

func (s SessionState) String() string {
	if s == SessionLocked {
		return "locked"
	}
	return "idle"
}

// OpenRequest selects how a question is drawn.
type OpenRequest struct {
	// Song, when set, asks for a specific song. Unknown songs fall back to a random draw.
	Song string
	// Hard withholds the song and artist from the prompt.
	Hard bool
}

// QuestionSession owns the guess ledger for one open question.
type QuestionSession struct {
	channelID   string
	corpus      *Corpus
	logger      *zap.Logger
	now         func() time.Time
	idleTimeout time.Duration

	mu           sync.Mutex
	state        SessionState
	question     *domain.Question
	guesses      map[string]domain.GuessRecord
	lastActivity time.Time
}

func newQuestionSession(channelID string, corpus *Corpus, idleTimeout time.Duration, now func() time.Time, logger *zap.Logger) *QuestionSession {
	return &QuestionSession{
		channelID:   channelID,
		corpus:      corpus,
		logger:      logger,
		now:         now,
		idleTimeout: idleTimeout,
		guesses:     make(map[string]domain.GuessRecord),
	}
}

// Open draws a question and locks the session until it is revealed or expires.
func (s *QuestionSession) Open(ctx context.Context, req OpenRequest) (domain.Prompt, error) {
	if s.Locked() {
		return domain.Prompt{}, domain.ErrAlreadyLocked
	}

	// Draw outside the lock; the state is re-checked before committing so a
	// concurrent Open that wins keeps its question.
	fellBack := false
	question, err := s.corpus.Resolve(ctx, req.Song)
	if errors.Is(err, domain.ErrSongNotFound) && req.Song != "" {
		s.logger.Info("requested song not found, drawing at random",
			zap.String("channel_id", s.channelID), zap.String("song", req.Song))
		fellBack = true
		question, err = s.corpus.Resolve(ctx, "")
	}
	if err != nil {
		return domain.Prompt{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == SessionLocked {
		return domain.Prompt{}, domain.ErrAlreadyLocked
	}
	s.state = SessionLocked
	s.question = &question
	s.guesses = make(map[string]domain.GuessRecord)
	s.lastActivity = s.now()

	prompt := domain.Prompt{LyricLine: question.LyricLine, Hard: req.Hard, FellBack: fellBack}
	if !req.Hard {
		prompt.SongTitle = question.SongTitle
		prompt.Artist = question.Artist
	}
	return prompt, nil
}

// SubmitGuess scores an identity's single guess on the open question.
// Scoring runs outside the lock; the guess is committed only if the same
// question is still open and the identity has not guessed meanwhile.
func (s *QuestionSession) SubmitGuess(identity, displayName, text string) (float64, error) {
	if err := domain.CheckGuess(text); err != nil {
		return 0, err
	}

	s.mu.Lock()
	question, err := s.guessableLocked(identity)
	s.mu.Unlock()
	if err != nil {
		return 0, err
	}

	score := scoring.Score(question.CorrectAnswer, text)

	s.mu.Lock()
	defer s.mu.Unlock()
	current, err := s.guessableLocked(identity)
	if err != nil {
		return 0, err
	}
	if current != question {
		return 0, domain.ErrNoActiveQuestion
	}
	now := s.now()
	s.guesses[identity] = domain.GuessRecord{
		Identity:    identity,
		DisplayName: displayName,
		Guess:       text,
		Score:       score,
		SubmittedAt: now,
		Seq:         len(s.guesses),
	}
	s.lastActivity = now
	return score, nil
}

func (s *QuestionSession) guessableLocked(identity string) (*domain.Question, error) {
	if s.state != SessionLocked || s.question == nil {
		return nil, domain.ErrNoActiveQuestion
	}
	if _, ok := s.guesses[identity]; ok {
		return nil, domain.ErrDuplicateGuess
	}
	return s.question, nil
}

// Reveal ranks the guesses, publishes the answer and unlocks the session.
func (s *QuestionSession) Reveal() (domain.Reveal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != SessionLocked || s.question == nil {
		return domain.Reveal{}, domain.ErrNoActiveQuestion
	}
	if len(s.guesses) == 0 {
		return domain.Reveal{}, domain.ErrNoGuesses
	}

	entries := make([]domain.GuessRecord, 0, len(s.guesses))
	for _, g := range s.guesses {
		entries = append(entries, g)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Seq < entries[j].Seq
	})
	reveal := domain.Reveal{Question: *s.question, Entries: entries}

	s.resetLocked()
	s.lastActivity = s.now()
	return reveal, nil
}

// ExpireIdle resets a locked session whose last activity is older than the
// idle timeout. It reports whether a reset happened.
func (s *QuestionSession) ExpireIdle(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != SessionLocked || now.Sub(s.lastActivity) <= s.idleTimeout {
		return false
	}
	s.resetLocked()
	s.lastActivity = time.Time{}
	return true
}

// Locked reports whether a question is outstanding.
func (s *QuestionSession) Locked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == SessionLocked
}

// State reports the session state.
func (s *QuestionSession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *QuestionSession) resetLocked() {
	s.state = SessionIdle
	s.question = nil
	s.guesses = make(map[string]domain.GuessRecord)
}
