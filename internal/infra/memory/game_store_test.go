package memory

import (
	"sync"
	"testing"
	"time"

	"lyric-quiz-service/internal/app"
)

func newTestGame(channelID string) *app.Game {
	return app.NewGameWithClock(channelID, nil, app.DefaultSettings(), time.Now, time.After, nil)
}

func TestGameStoreLifecycle(t *testing.T) {
	store := NewGameStore()
	now := time.Now()
	created := 0
	create := func() *app.Game {
		created++
		return newTestGame("chan-1")
	}

	game := store.GetOrCreate("chan-1", now, create)
	if game == nil {
		t.Fatalf("expected game")
	}
	if again := store.GetOrCreate("chan-1", now, create); again != game || created != 1 {
		t.Fatalf("expected the same game to be reused")
	}
	if _, ok := store.Get("chan-1", now); !ok {
		t.Fatalf("expected game present")
	}

	seen := 0
	store.Range(func(channelID string, _ *app.Game) bool {
		seen++
		return true
	})
	if seen != 1 {
		t.Fatalf("expected one game in range, got %d", seen)
	}

	store.DeleteIfIdle("chan-1", now.Add(time.Minute))
	if _, ok := store.Get("chan-1", now); ok {
		t.Fatalf("expected game removed when idle")
	}
}

func TestGameStoreKeepsGameTouchedSinceCutoff(t *testing.T) {
	store := NewGameStore()
	old := time.Now().Add(-time.Hour)
	game := store.GetOrCreate("chan-1", old, func() *app.Game { return newTestGame("chan-1") })

	// A lookup hands the game out already touched, so an expiry pass with a
	// cutoff before the lookup cannot evict it.
	now := time.Now()
	if got := store.GetOrCreate("chan-1", now, nil); got != game {
		t.Fatalf("expected the existing game")
	}
	store.DeleteIfIdle("chan-1", now.Add(-10*time.Minute))
	if got, ok := store.Get("chan-1", now); !ok || got != game {
		t.Fatalf("game fetched after the cutoff was evicted")
	}
}

func TestGameStoreConcurrentLookupsSurviveExpiry(t *testing.T) {
	store := NewGameStore()
	base := time.Now()
	store.GetOrCreate("chan-1", base.Add(-time.Hour), func() *app.Game { return newTestGame("chan-1") })

	var wg sync.WaitGroup
	orphaned := make(chan struct{}, 100)
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			game := store.GetOrCreate("chan-1", base, func() *app.Game { return newTestGame("chan-1") })
			if current, ok := store.Get("chan-1", base); !ok || current != game {
				orphaned <- struct{}{}
			}
		}()
		go func() {
			defer wg.Done()
			store.DeleteIfIdle("chan-1", base.Add(-10*time.Minute))
		}()
	}
	wg.Wait()
	if len(orphaned) != 0 {
		t.Fatalf("%d lookups received a game that was then evicted", len(orphaned))
	}
}
