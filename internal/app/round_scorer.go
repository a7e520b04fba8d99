package app

import (
	"sort"

	"lyric-quiz-service/internal/domain"
	"lyric-quiz-service/internal/scoring"
)

// ScoreRound splits pool among participants in proportion to their best
// score this round, adds each share to the cumulative score and resets the
// round's best. Entries are ordered by the pre-reset best score, ties by
// first appearance in the tournament.
func ScoreRound(participants map[string]*domain.Participant, pool int) []domain.RoundEntry {
	ordered := orderedParticipants(participants, func(p *domain.Participant) float64 {
		return p.BestScore
	})

	total := 0.0
	for _, p := range ordered {
		if p.BestScore > 0 {
			total += p.BestScore
		}
	}

	entries := make([]domain.RoundEntry, 0, len(ordered))
	for _, p := range ordered {
		contribution := 0.0
		if total > 0 && p.BestScore > 0 {
			contribution = scoring.RoundTo(p.BestScore/total*float64(pool), 2)
		}
		p.CumulativeScore += contribution
		entries = append(entries, domain.RoundEntry{
			Identity:     p.Identity,
			DisplayName:  p.DisplayName,
			BestScore:    p.BestScore,
			Contribution: contribution,
			TotalScore:   p.CumulativeScore,
		})
		p.BestScore = 0
	}
	return entries
}

// rankLeaderboard orders participants by cumulative score.
func rankLeaderboard(participants map[string]*domain.Participant) []domain.LeaderboardEntry {
	ordered := orderedParticipants(participants, func(p *domain.Participant) float64 {
		return p.CumulativeScore
	})
	entries := make([]domain.LeaderboardEntry, 0, len(ordered))
	for _, p := range ordered {
		entries = append(entries, domain.LeaderboardEntry{
			Identity:    p.Identity,
			DisplayName: p.DisplayName,
			Score:       scoring.RoundTo(p.CumulativeScore, 2),
		})
	}
	return entries
}

func orderedParticipants(participants map[string]*domain.Participant, key func(*domain.Participant) float64) []*domain.Participant {
	ordered := make([]*domain.Participant, 0, len(participants))
	for _, p := range participants {
		ordered = append(ordered, p)
	}
	sort.Slice(ordered, func(i, j int) bool {
		ki, kj := key(ordered[i]), key(ordered[j])
		if ki != kj {
			return ki > kj
		}
		return ordered[i].Seq < ordered[j].Seq
	})
	return ordered
}
