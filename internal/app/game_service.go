package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"lyric-quiz-service/internal/domain"
)

// GameService contains the lyric game use cases, one game per channel.
type GameService struct {
	games    GameRepository
	corpus   *Corpus
	settings Settings
	logger   *zap.Logger
	now      func() time.Time
	after    func(time.Duration) <-chan time.Time

	// Tournaments run on this context so they outlive the request that started them.
	ctx    context.Context
	cancel context.CancelFunc
}

// Option customizes a GameService.
type Option func(*GameService)

// WithClock replaces time.Now, e.g. for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(s *GameService) { s.now = now }
}

// WithTimer replaces time.After for round windows and intermissions.
func WithTimer(after func(time.Duration) <-chan time.Time) Option {
	return func(s *GameService) { s.after = after }
}

func NewGameService(games GameRepository, corpus *Corpus, settings Settings, logger *zap.Logger, opts ...Option) *GameService {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &GameService{
		games:    games,
		corpus:   corpus,
		settings: settings,
		logger:   logger,
		now:      time.Now,
		after:    time.After,
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OpenQuestion draws a new question for the channel.
func (s *GameService) OpenQuestion(ctx context.Context, channelID string, req OpenRequest) (domain.Prompt, error) {
	return s.game(channelID).Session.Open(ctx, req)
}

// SubmitAnswer records an identity's single guess on the channel's open question.
func (s *GameService) SubmitAnswer(_ context.Context, channelID, identity, displayName, text string) (float64, error) {
	game, ok := s.lookup(channelID)
	if !ok {
		return 0, domain.ErrNoActiveQuestion
	}
	return game.Session.SubmitGuess(identity, displayName, text)
}

// Reveal closes the channel's question and returns the ranking.
func (s *GameService) Reveal(_ context.Context, channelID string) (domain.Reveal, error) {
	game, ok := s.lookup(channelID)
	if !ok {
		return domain.Reveal{}, domain.ErrNoActiveQuestion
	}
	return game.Session.Reveal()
}

// StartTournament launches a tournament in the channel and returns its ID.
func (s *GameService) StartTournament(_ context.Context, channelID string, rounds int) (string, error) {
	return s.game(channelID).Tournament.Start(s.ctx, rounds)
}

// SubmitTournamentGuess scores a guess for the channel's open round.
func (s *GameService) SubmitTournamentGuess(_ context.Context, channelID, identity, displayName, text string) (domain.TournamentGuess, error) {
	game, ok := s.lookup(channelID)
	if !ok {
		return domain.TournamentGuess{}, domain.ErrNoActiveTournament
	}
	return game.Tournament.SubmitGuess(identity, displayName, text)
}

// Leaderboard returns the channel's current or last tournament standings.
func (s *GameService) Leaderboard(_ context.Context, channelID string) (domain.Leaderboard, error) {
	game, ok := s.lookup(channelID)
	if !ok {
		return domain.Leaderboard{}, domain.ErrNoActiveTournament
	}
	return game.Tournament.Leaderboard(), nil
}

// Subscribe returns a channel that receives the channel's tournament events.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *GameService) Subscribe(_ context.Context, channelID string) (<-chan domain.Event, func(), error) {
	ch, cancel := s.game(channelID).events.subscribe()
	return ch, cancel, nil
}

// Status reports the phase of the channel's question session and tournament.
func (s *GameService) Status(_ context.Context, channelID string) domain.ChannelStatus {
	status := domain.ChannelStatus{
		ChannelID:  channelID,
		Question:   SessionIdle.String(),
		Tournament: TournamentIdle.String(),
	}
	if game, ok := s.lookup(channelID); ok {
		status.Question = game.Session.State().String()
		status.Tournament = game.Tournament.State().String()
	}
	return status
}

// Catalog lists the songs available to play.
func (s *GameService) Catalog(ctx context.Context) ([]domain.CatalogEntry, error) {
	return s.corpus.Catalog(ctx)
}

// Lyrics returns a song's lyric lines unless a game is in progress in the channel.
func (s *GameService) Lyrics(ctx context.Context, channelID, song string) (domain.Song, error) {
	if game, ok := s.lookup(channelID); ok {
		if game.Session.Locked() || game.Tournament.Running() {
			return domain.Song{}, domain.ErrNoCheating
		}
	}
	return s.corpus.Song(ctx, song)
}

// ExpireIdle resets every question session idle past the timeout and drops
// games that hold nothing. It returns the number of sessions reset.
func (s *GameService) ExpireIdle(now time.Time) int {
	expired := 0
	cutoff := now.Add(-s.settings.IdleTimeout)
	s.games.Range(func(channelID string, game *Game) bool {
		if game.Session.ExpireIdle(now) {
			expired++
			s.logger.Info("question session ended due to inactivity", zap.String("channel_id", channelID))
		}
		s.games.DeleteIfIdle(channelID, cutoff)
		return true
	})
	return expired
}

// Close stops every running tournament and waits for their loops to exit.
func (s *GameService) Close() {
	s.cancel()
	s.games.Range(func(_ string, game *Game) bool {
		<-game.Tournament.Done()
		return true
	})
}

func (s *GameService) game(channelID string) *Game {
	return s.games.GetOrCreate(channelID, s.now(), func() *Game {
		return NewGameWithClock(channelID, s.corpus, s.settings, s.now, s.after, s.logger)
	})
}

func (s *GameService) lookup(channelID string) (*Game, bool) {
	return s.games.Get(channelID, s.now())
}
