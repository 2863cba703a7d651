package raceflow

import "time"

// MatchState is the top-level phase of a match.
type MatchState int

const (
	Playing MatchState = iota
	Won
	Lost
)

func (s MatchState) String() string {
	switch s {
	case Playing:
		return "playing"
	case Won:
		return "won"
	case Lost:
		return "lost"
	default:
		return "unknown"
	}
}

// Terminal reports whether the match has ended.
func (s MatchState) Terminal() bool {
	return s == Won || s == Lost
}

// EndGameSequence is fixed at the moment the match becomes terminal.
// LoadDeadline > FadeStartDeadline > StartedAt.
type EndGameSequence struct {
	Outcome           MatchState
	SceneToLoad       string
	StartedAt         time.Duration
	FadeStartDeadline time.Duration
	LoadDeadline      time.Duration
}
