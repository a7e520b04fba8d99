package domain

import "time"

// Song is a single corpus entry: title, artist and the non-empty lyric lines.
type Song struct {
	Key    string   `json:"key"`
	Title  string   `json:"title"`
	Artist string   `json:"artist"`
	Lines  []string `json:"lines"`
}

// Question pairs a lyric line with the line that follows it.
type Question struct {
	SongKey       string `json:"songKey"`
	SongTitle     string `json:"songTitle"`
	Artist        string `json:"artist"`
	LyricLine     string `json:"lyricLine"`
	CorrectAnswer string `json:"correctAnswer"`
}

// Prompt is what players see when a question opens. Song and Artist are
// empty in hard mode.
type Prompt struct {
	LyricLine string `json:"lyricLine"`
	SongTitle string `json:"songTitle,omitempty"`
	Artist    string `json:"artist,omitempty"`
	Hard      bool   `json:"hard"`
	// FellBack is set when an explicitly requested song was not found and a
	// random one was drawn instead.
	FellBack bool `json:"fellBack"`
}

// GuessRecord is one identity's guess on an open question.
type GuessRecord struct {
	Identity    string    `json:"identity"`
	DisplayName string    `json:"displayName"`
	Guess       string    `json:"guess"`
	Score       float64   `json:"score"`
	SubmittedAt time.Time `json:"submittedAt"`
	Seq         int       `json:"-"` // submission order, breaks score ties
}

// Reveal is the outcome of closing a question: the answer and the ranked guesses.
type Reveal struct {
	Question Question      `json:"question"`
	Entries  []GuessRecord `json:"entries"`
}

// Participant tracks one identity across a tournament.
type Participant struct {
	Identity        string
	DisplayName     string
	BestScore       float64
	CumulativeScore float64
	Seq             int
}

// TournamentGuess summarizes a tournament guess for the guesser.
type TournamentGuess struct {
	Round int     `json:"round"`
	Score float64 `json:"score"`
	Best  float64 `json:"best"`
}

// RoundEntry is one participant's line in a round's results.
type RoundEntry struct {
	Identity     string  `json:"identity"`
	DisplayName  string  `json:"displayName"`
	BestScore    float64 `json:"bestScore"`
	Contribution float64 `json:"contribution"`
	TotalScore   float64 `json:"totalScore"`
}

// RoundAnnouncement is published when a round opens for guesses.
type RoundAnnouncement struct {
	Round       int       `json:"round"`
	TotalRounds int       `json:"totalRounds"`
	Points      int       `json:"points"`
	Prompt      Prompt    `json:"prompt"`
	Deadline    time.Time `json:"deadline"`
}

// RoundResults is published once a round's window has closed and points are split.
type RoundResults struct {
	Round         int          `json:"round"`
	TotalRounds   int          `json:"totalRounds"`
	Points        int          `json:"points"`
	CorrectAnswer string       `json:"correctAnswer"`
	Entries       []RoundEntry `json:"entries"`
}

// LeaderboardEntry is a snapshot-friendly view of a participant.
type LeaderboardEntry struct {
	Identity    string  `json:"identity"`
	DisplayName string  `json:"displayName"`
	Score       float64 `json:"score"`
}

// Leaderboard captures the ordered cumulative scores of a tournament.
type Leaderboard struct {
	TournamentID string             `json:"tournamentId"`
	Entries      []LeaderboardEntry `json:"entries"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

// GuessNotice tells the channel someone guessed, without revealing the text.
type GuessNotice struct {
	Identity    string  `json:"identity"`
	DisplayName string  `json:"displayName"`
	Score       float64 `json:"score"`
}

// EventType names the events a channel's subscribers receive.
type EventType string

const (
	EventTournamentStarted  EventType = "tournament_started"
	EventRoundAnnounced     EventType = "round_announced"
	EventGuessMade          EventType = "guess_made"
	EventRoundResults       EventType = "round_results"
	EventTournamentFinished EventType = "tournament_finished"
	EventTournamentAborted  EventType = "tournament_aborted"
)

// Event is a channel-level notification. Exactly one payload field is set,
// matching Type; started and aborted events carry none.
type Event struct {
	Type         EventType          `json:"type"`
	ChannelID    string             `json:"channelId"`
	TournamentID string             `json:"tournamentId"`
	Round        *RoundAnnouncement `json:"round,omitempty"`
	Guess        *GuessNotice       `json:"guess,omitempty"`
	Results      *RoundResults      `json:"results,omitempty"`
	Final        *Leaderboard       `json:"final,omitempty"`
	Reason       string             `json:"reason,omitempty"`
	At           time.Time          `json:"at"`
}

// CatalogEntry is a song as listed to players.
type CatalogEntry struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// ChannelStatus reports what a channel is currently playing.
type ChannelStatus struct {
	ChannelID  string `json:"channelId"`
	Question   string `json:"question"`
	Tournament string `json:"tournament"`
}
