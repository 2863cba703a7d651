package raceflow

import (
	"fmt"
	"time"
)

// Config holds the race flow timings and end scene names. Fields are read
// once at construction.
type Config struct {
	// Duration of the fade to black at the end of the match. The fade does
	// not begin until this much time has passed since the match ended.
	EndSceneLoadDelay time.Duration `env:"KARTING_END_SCENE_LOAD_DELAY" envDefault:"3s"`
	// Extra wait between the end of the match and the end scene load.
	DelayBeforeFadeToBlack time.Duration `env:"KARTING_DELAY_BEFORE_FADE" envDefault:"4s"`
	// Delay before the win or lose message (and the victory sound).
	DelayBeforeWinMessage time.Duration `env:"KARTING_DELAY_BEFORE_WIN_MESSAGE" envDefault:"2s"`

	WinSceneName  string `env:"KARTING_WIN_SCENE" envDefault:"WinScene"`
	LoseSceneName string `env:"KARTING_LOSE_SCENE" envDefault:"LoseScene"`

	CountdownDelay time.Duration `env:"KARTING_COUNTDOWN_DELAY" envDefault:"3s"`
	RevealDelay    time.Duration `env:"KARTING_REVEAL_DELAY" envDefault:"200ms"`
	RevealInterval time.Duration `env:"KARTING_REVEAL_INTERVAL" envDefault:"1s"`
}

// DefaultConfig mirrors the envDefault tags for callers that do not parse
// the environment.
func DefaultConfig() Config {
	return Config{
		EndSceneLoadDelay:      3 * time.Second,
		DelayBeforeFadeToBlack: 4 * time.Second,
		DelayBeforeWinMessage:  2 * time.Second,
		WinSceneName:           "WinScene",
		LoseSceneName:          "LoseScene",
		CountdownDelay:         3 * time.Second,
		RevealDelay:            200 * time.Millisecond,
		RevealInterval:         1 * time.Second,
	}
}

// Validate checks the values the end-of-match deadlines depend on.
func (c Config) Validate() error {
	switch {
	case c.EndSceneLoadDelay <= 0:
		return fmt.Errorf("%w: end scene load delay must be positive, got %s", ErrInvalidConfig, c.EndSceneLoadDelay)
	case c.DelayBeforeFadeToBlack <= 0:
		return fmt.Errorf("%w: delay before fade must be positive, got %s", ErrInvalidConfig, c.DelayBeforeFadeToBlack)
	case c.DelayBeforeWinMessage < 0, c.CountdownDelay < 0, c.RevealDelay < 0, c.RevealInterval < 0:
		return fmt.Errorf("%w: negative delay", ErrInvalidConfig)
	case c.WinSceneName == "" || c.LoseSceneName == "":
		return fmt.Errorf("%w: end scene names must be set", ErrInvalidConfig)
	}
	return nil
}
