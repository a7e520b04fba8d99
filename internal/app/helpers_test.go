package app_test

import (
	"math/rand"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"lyric-quiz-service/internal/app"
	"lyric-quiz-service/internal/domain"
	"lyric-quiz-service/internal/infra/memory"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 11, 22, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// manualTimer hands every requested wait to the test, which fires it.
type manualTimer struct {
	requests chan timerRequest
}

type timerRequest struct {
	d    time.Duration
	fire chan time.Time
}

func newManualTimer() *manualTimer {
	return &manualTimer{requests: make(chan timerRequest, 4)}
}

func (m *manualTimer) After(d time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	m.requests <- timerRequest{d: d, fire: ch}
	return ch
}

func (m *manualTimer) next(t *testing.T) timerRequest {
	t.Helper()
	select {
	case req := <-m.requests:
		return req
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for a timer request")
		return timerRequest{}
	}
}

func (r timerRequest) Fire() { r.fire <- time.Now() }

// nextEvent waits for an event of type typ, or any event when typ is empty.
func nextEvent(t *testing.T, events <-chan domain.Event, typ domain.EventType) domain.Event {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				t.Fatalf("event channel closed waiting for %s", typ)
			}
			if typ == "" || ev.Type == typ {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", typ)
		}
	}
}

// Songs with two lyric lines always draw the same question.
func testSongs() map[string]domain.Song {
	return map[string]domain.Song{
		"blue": {
			Key:    "blue",
			Title:  "Blue",
			Artist: "Artist",
			Lines:  []string{"second line", "third line"},
		},
		"hello_world": {
			Key:    "hello_world",
			Title:  "Hello World",
			Artist: "Other Artist",
			Lines:  []string{"say hello", "to the world"},
		},
	}
}

type testEnv struct {
	service *app.GameService
	clock   *fakeClock
	timer   *manualTimer
}

func newTestEnv(t *testing.T, songs map[string]domain.Song) testEnv {
	t.Helper()
	return newTestEnvWithStore(t, songs, memory.NewGameStore())
}

func newTestEnvWithStore(t *testing.T, songs map[string]domain.Song, games app.GameRepository) testEnv {
	t.Helper()
	clock := newFakeClock()
	timer := newManualTimer()
	repo := memory.NewSongRepository(memory.NewStaticSongLoader(songs), time.Minute)
	corpus := app.NewCorpusWithRand(repo, rand.New(rand.NewSource(1)))
	service := app.NewGameService(games, corpus, app.DefaultSettings(), zaptest.NewLogger(t),
		app.WithClock(clock.Now), app.WithTimer(timer.After))
	t.Cleanup(service.Close)
	return testEnv{service: service, clock: clock, timer: timer}
}
