package app_test

import (
	"math"
	"testing"

	"lyric-quiz-service/internal/app"
	"lyric-quiz-service/internal/domain"
)

func TestScoreRoundProportionalSplit(t *testing.T) {
	participants := map[string]*domain.Participant{
		"u1": {Identity: "u1", BestScore: 80, Seq: 0},
		"u2": {Identity: "u2", BestScore: 20, Seq: 1},
	}

	entries := app.ScoreRound(participants, 20)
	if len(entries) != 2 || entries[0].Contribution != 16 || entries[1].Contribution != 4 {
		t.Fatalf("expected 16/4 split, got %+v", entries)
	}
	if entries[0].BestScore != 80 {
		t.Fatalf("entries should report the pre-reset best, got %+v", entries[0])
	}
	if participants["u1"].CumulativeScore != 16 || participants["u2"].CumulativeScore != 4 {
		t.Fatalf("cumulative scores not updated: %+v %+v", participants["u1"], participants["u2"])
	}
	for id, p := range participants {
		if p.BestScore != 0 {
			t.Fatalf("best score for %s not reset", id)
		}
	}
}

func TestScoreRoundAllZero(t *testing.T) {
	participants := map[string]*domain.Participant{
		"u1": {Identity: "u1", CumulativeScore: 7},
		"u2": {Identity: "u2", Seq: 1},
	}
	for _, e := range app.ScoreRound(participants, 25) {
		if e.Contribution != 0 {
			t.Fatalf("zero scores must earn nothing, got %+v", e)
		}
	}
	if participants["u1"].CumulativeScore != 7 {
		t.Fatalf("cumulative score changed: %v", participants["u1"].CumulativeScore)
	}
}

func TestScoreRoundNeverExceedsPool(t *testing.T) {
	cases := [][]float64{
		{33.33, 33.33, 33.33},
		{100, 0.01},
		{12.5, 99.99, 47.2, 3.1, 0},
	}
	for _, scores := range cases {
		participants := make(map[string]*domain.Participant)
		for i, s := range scores {
			id := string(rune('a' + i))
			participants[id] = &domain.Participant{Identity: id, BestScore: s, Seq: i}
		}
		sum := 0.0
		for _, e := range app.ScoreRound(participants, 15) {
			if e.Contribution < 0 {
				t.Fatalf("negative award %+v", e)
			}
			sum += e.Contribution
		}
		// Each share rounds to 2 decimals, so allow half a cent per participant.
		if sum > 15+0.005*float64(len(scores)) || math.Abs(sum-15) > 0.005*float64(len(scores)) {
			t.Fatalf("awards %v do not add up to the pool for %v", sum, scores)
		}
	}
}

func TestScoreRoundTiesKeepArrivalOrder(t *testing.T) {
	participants := map[string]*domain.Participant{
		"late":  {Identity: "late", BestScore: 50, Seq: 2},
		"early": {Identity: "early", BestScore: 50, Seq: 0},
		"mid":   {Identity: "mid", BestScore: 50, Seq: 1},
	}
	entries := app.ScoreRound(participants, 10)
	if entries[0].Identity != "early" || entries[1].Identity != "mid" || entries[2].Identity != "late" {
		t.Fatalf("ties should keep arrival order, got %+v", entries)
	}
}
