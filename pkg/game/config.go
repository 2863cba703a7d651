package game

import (
	"fmt"
	"time"

	"github.com/mpihlak/ebiten-karting/pkg/raceflow"
)

// Config is everything the game reads from the environment.
type Config struct {
	RaceFlow raceflow.Config

	// TimeLimit is the time allowed to finish; 0 races without a limit.
	TimeLimit   time.Duration `env:"KARTING_TIME_LIMIT" envDefault:"90s"`
	Checkpoints int           `env:"KARTING_CHECKPOINTS" envDefault:"6"`
	Opponents   int           `env:"KARTING_OPPONENTS" envDefault:"3"`
	Mute        bool          `env:"KARTING_MUTE" envDefault:"false"`
	Title       string        `env:"KARTING_TITLE" envDefault:"Ebiten Karting"`
}

func DefaultConfig() Config {
	return Config{
		RaceFlow:    raceflow.DefaultConfig(),
		TimeLimit:   90 * time.Second,
		Checkpoints: 6,
		Opponents:   3,
		Title:       "Ebiten Karting",
	}
}

func (c Config) Validate() error {
	if err := c.RaceFlow.Validate(); err != nil {
		return err
	}
	switch {
	case c.TimeLimit < 0:
		return fmt.Errorf("time limit must not be negative, got %s", c.TimeLimit)
	case c.Checkpoints < 2:
		return fmt.Errorf("need at least 2 checkpoints, got %d", c.Checkpoints)
	case c.Opponents < 0 || c.Opponents > maxOpponents:
		return fmt.Errorf("opponents must be between 0 and %d, got %d", maxOpponents, c.Opponents)
	case c.RaceFlow.WinSceneName == RaceSceneName || c.RaceFlow.LoseSceneName == RaceSceneName:
		return fmt.Errorf("end scenes cannot be named %q", RaceSceneName)
	}
	return nil
}
