package app

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lyric-quiz-service/internal/domain"
	"lyric-quiz-service/internal/scoring"
)

// TournamentState is the phase of a channel's tournament.
type TournamentState int

const (
	TournamentIdle TournamentState = iota
	RoundAnnounced
	AcceptingGuesses
	RoundClosed
	TournamentFinished
)

var tournamentStateNames = map[TournamentState]string{
	TournamentIdle:     "idle",
	RoundAnnounced:     "round_announced",
	AcceptingGuesses:   "accepting_guesses",
	RoundClosed:        "round_closed",
	TournamentFinished: "finished",
}

func (s TournamentState) String() string { return tournamentStateNames[s] }

// Tournament runs a fixed number of timed rounds with a cumulative leaderboard.
type Tournament struct {
	channelID    string
	corpus       *Corpus
	events       *eventHub
	logger       *zap.Logger
	now          func() time.Time
	after        func(time.Duration) <-chan time.Time
	window       time.Duration
	intermission time.Duration

	mu           sync.Mutex
	id           string
	state        TournamentState
	round        int
	total        int
	points       int
	deadline     time.Time
	question     *domain.Question
	participants map[string]*domain.Participant
	done         chan struct{}
}

func newTournament(channelID string, corpus *Corpus, events *eventHub, settings Settings, now func() time.Time, after func(time.Duration) <-chan time.Time, logger *zap.Logger) *Tournament {
	return &Tournament{
		channelID:    channelID,
		corpus:       corpus,
		events:       events,
		logger:       logger,
		now:          now,
		after:        after,
		window:       settings.RoundWindow,
		intermission: settings.Intermission,
		participants: make(map[string]*domain.Participant),
	}
}

// Start launches a tournament of total rounds. The round loop runs until
// the last round is scored or ctx is cancelled; it does not inherit any
// request lifetime, so pass a long-lived context.
func (t *Tournament) Start(ctx context.Context, total int) (string, error) {
	if !domain.ValidRounds(total) {
		return "", domain.ErrInvalidRounds
	}

	t.mu.Lock()
	if t.runningLocked() {
		t.mu.Unlock()
		return "", domain.ErrAlreadyRunning
	}
	t.id = uuid.NewString()
	t.state = RoundAnnounced
	t.round = 0
	t.total = total
	t.points = 0
	t.deadline = time.Time{}
	t.question = nil
	t.participants = make(map[string]*domain.Participant)
	t.done = make(chan struct{})
	id, done := t.id, t.done
	t.mu.Unlock()

	t.logger.Info("tournament started",
		zap.String("channel_id", t.channelID), zap.String("tournament_id", id), zap.Int("rounds", total))
	t.publish(domain.Event{Type: domain.EventTournamentStarted, TournamentID: id})

	go t.run(ctx, id, total, done)
	return id, nil
}

// SubmitGuess scores a guess for the open round. Only an identity's best
// guess in a round counts; lower scores are accepted but not kept. The
// window is checked both before and after scoring, which runs unlocked.
func (t *Tournament) SubmitGuess(identity, displayName, text string) (domain.TournamentGuess, error) {
	if err := domain.CheckGuess(text); err != nil {
		return domain.TournamentGuess{}, err
	}

	t.mu.Lock()
	question, err := t.guessableLocked()
	t.mu.Unlock()
	if err != nil {
		return domain.TournamentGuess{}, err
	}

	score := scoring.Score(question.CorrectAnswer, text)

	t.mu.Lock()
	current, err := t.guessableLocked()
	if err == nil && current != question {
		err = domain.ErrGuessingClosed
	}
	if err != nil {
		t.mu.Unlock()
		return domain.TournamentGuess{}, err
	}
	p, ok := t.participants[identity]
	if !ok {
		p = &domain.Participant{Identity: identity, Seq: len(t.participants)}
		t.participants[identity] = p
	}
	if displayName != "" {
		p.DisplayName = displayName
	}
	if score > p.BestScore {
		p.BestScore = score
	}
	result := domain.TournamentGuess{Round: t.round, Score: score, Best: p.BestScore}
	id, name := t.id, p.DisplayName
	t.mu.Unlock()

	t.publish(domain.Event{
		Type:         domain.EventGuessMade,
		TournamentID: id,
		Guess:        &domain.GuessNotice{Identity: identity, DisplayName: name, Score: score},
	})
	return result, nil
}

// guessableLocked returns the open round's question. Guesses racing the
// window's close lose: the deadline is checked here even if the round loop
// has not yet taken the lock to close it.
func (t *Tournament) guessableLocked() (*domain.Question, error) {
	if !t.runningLocked() {
		return nil, domain.ErrNoActiveTournament
	}
	if t.state != AcceptingGuesses || t.question == nil || t.now().After(t.deadline) {
		return nil, domain.ErrGuessingClosed
	}
	return t.question, nil
}

// Running reports whether a tournament is in progress.
func (t *Tournament) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.runningLocked()
}

// State reports the tournament phase.
func (t *Tournament) State() TournamentState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Leaderboard is a snapshot of cumulative scores.
func (t *Tournament) Leaderboard() domain.Leaderboard {
	t.mu.Lock()
	defer t.mu.Unlock()
	return domain.Leaderboard{TournamentID: t.id, Entries: rankLeaderboard(t.participants), UpdatedAt: t.now()}
}

// Done is closed when the current (or last) tournament's loop exits.
func (t *Tournament) Done() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return t.done
}

func (t *Tournament) runningLocked() bool {
	return t.state != TournamentIdle && t.state != TournamentFinished
}

func (t *Tournament) run(ctx context.Context, id string, total int, done chan struct{}) {
	defer close(done)

	for n := 1; n <= total; n++ {
		if !t.playRound(ctx, id, total, n) {
			return
		}
		// Cancelling the last intermission still finishes: every round is scored.
		if !t.wait(ctx, t.intermission) && n < total {
			t.abort(id, "cancelled")
			return
		}
	}

	t.mu.Lock()
	t.state = TournamentFinished
	t.question = nil
	final := domain.Leaderboard{TournamentID: id, Entries: rankLeaderboard(t.participants), UpdatedAt: t.now()}
	t.mu.Unlock()

	t.logger.Info("tournament finished",
		zap.String("channel_id", t.channelID), zap.String("tournament_id", id), zap.Int("participants", len(final.Entries)))
	t.publish(domain.Event{Type: domain.EventTournamentFinished, TournamentID: id, Final: &final})
}

// playRound announces round n, collects guesses for the window and scores
// it. It reports false when the tournament had to stop.
func (t *Tournament) playRound(ctx context.Context, id string, total, n int) bool {
	points, err := domain.PointPool(total, n)
	if err != nil {
		t.abort(id, err.Error())
		return false
	}

	t.mu.Lock()
	t.state = RoundAnnounced
	t.round = n
	t.points = points
	t.mu.Unlock()

	question, err := t.corpus.Resolve(ctx, "")
	if err != nil {
		t.logger.Error("tournament draw failed", zap.String("channel_id", t.channelID), zap.Error(err))
		t.abort(id, err.Error())
		return false
	}

	t.mu.Lock()
	t.question = &question
	t.deadline = t.now().Add(t.window)
	t.state = AcceptingGuesses
	announcement := domain.RoundAnnouncement{
		Round:       n,
		TotalRounds: total,
		Points:      points,
		Prompt:      domain.Prompt{LyricLine: question.LyricLine, SongTitle: question.SongTitle, Artist: question.Artist},
		Deadline:    t.deadline,
	}
	t.mu.Unlock()
	t.publish(domain.Event{Type: domain.EventRoundAnnounced, TournamentID: id, Round: &announcement})

	if !t.wait(ctx, t.window) {
		t.abort(id, "cancelled")
		return false
	}

	t.mu.Lock()
	t.state = RoundClosed
	results := domain.RoundResults{
		Round:         n,
		TotalRounds:   total,
		Points:        points,
		CorrectAnswer: question.CorrectAnswer,
		Entries:       ScoreRound(t.participants, points),
	}
	t.mu.Unlock()
	t.publish(domain.Event{Type: domain.EventRoundResults, TournamentID: id, Results: &results})
	return true
}

func (t *Tournament) wait(ctx context.Context, d time.Duration) bool {
	select {
	case <-t.after(d):
		return true
	case <-ctx.Done():
		return false
	}
}

func (t *Tournament) abort(id, reason string) {
	t.mu.Lock()
	t.state = TournamentIdle
	t.question = nil
	t.mu.Unlock()

	t.logger.Warn("tournament aborted",
		zap.String("channel_id", t.channelID), zap.String("tournament_id", id), zap.String("reason", reason))
	t.publish(domain.Event{Type: domain.EventTournamentAborted, TournamentID: id, Reason: reason})
}

func (t *Tournament) publish(ev domain.Event) {
	ev.ChannelID = t.channelID
	ev.At = t.now()
	t.events.publish(ev)
}
