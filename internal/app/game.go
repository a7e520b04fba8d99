package app

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Settings holds the game's timing policy.
type Settings struct {
	IdleTimeout    time.Duration
	ReaperInterval time.Duration
	RoundWindow    time.Duration
	Intermission   time.Duration
}

// DefaultSettings mirrors the bot's fixed timings.
func DefaultSettings() Settings {
	return Settings{
		IdleTimeout:    10 * time.Minute,
		ReaperInterval: 5 * time.Minute,
		RoundWindow:    60 * time.Second,
		Intermission:   10 * time.Second,
	}
}

// Game is the state of one channel: a question session, a tournament and
// the subscribers to the channel's events.
type Game struct {
	ChannelID  string
	Session    *QuestionSession
	Tournament *Tournament
	events     *eventHub
	touched    atomic.Int64 // unix nanos of the last lookup through the service
}

// NewGameWithClock allows deterministic clocks and hand-driven round timers in tests.
func NewGameWithClock(channelID string, corpus *Corpus, settings Settings, now func() time.Time, after func(time.Duration) <-chan time.Time, logger *zap.Logger) *Game {
	if logger == nil {
		logger = zap.NewNop()
	}
	events := newEventHub()
	return &Game{
		ChannelID:  channelID,
		Session:    newQuestionSession(channelID, corpus, settings.IdleTimeout, now, logger),
		Tournament: newTournament(channelID, corpus, events, settings, now, after, logger),
		events:     events,
	}
}

// Idle reports whether the game holds nothing worth keeping: no open
// question, no running tournament, no subscribers and no lookup since cutoff.
func (g *Game) Idle(cutoff time.Time) bool {
	if g.touched.Load() >= cutoff.UnixNano() {
		return false
	}
	return !g.Session.Locked() && !g.Tournament.Running() && g.events.empty()
}

// Touch records a lookup at now. Repositories call it under the same lock
// DeleteIfIdle takes, so a game handed out is never evicted before use.
func (g *Game) Touch(now time.Time) {
	g.touched.Store(now.UnixNano())
}
