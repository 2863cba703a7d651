package game

import (
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/mpihlak/ebiten-karting/pkg/raceflow"
)

const (
	ScreenWidth  = 1280
	ScreenHeight = 720
	// Real world scale: 1 pixel = 1 meter for easier calculations
	WorldWidth  = 2000 // World is larger than screen
	WorldHeight = 1500

	RaceSceneName = "Race"
)

// RaceResult is the outcome of the last race, shown on the end screen.
type RaceResult struct {
	Outcome     raceflow.MatchState
	Time        time.Duration
	Checkpoints int
	Total       int
}

// Game is the ebiten.Game. It only routes frames to the active scene.
type Game struct {
	cfg    Config
	scenes *SceneManager
	audio  *audio.Context
	logger *log.Logger

	last RaceResult
}

func NewGame(cfg Config, logger *log.Logger) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}

	g := &Game{
		cfg:    cfg,
		scenes: NewSceneManager(logger),
		logger: logger,
	}
	if !cfg.Mute {
		g.audio = audio.NewContext(sampleRate)
	}

	g.scenes.Register(RaceSceneName, func() (Scene, error) {
		return NewRaceScene(g)
	})
	g.scenes.Register(cfg.RaceFlow.WinSceneName, func() (Scene, error) {
		return NewEndScene(g), nil
	})
	g.scenes.Register(cfg.RaceFlow.LoseSceneName, func() (Scene, error) {
		return NewEndScene(g), nil
	})
	g.scenes.LoadScene(RaceSceneName)

	return g, nil
}

func (g *Game) Update() error {
	// Handle quit key - in WASM the race scene pauses instead
	if ebiten.IsKeyPressed(ebiten.KeyQ) && !IsWASM() {
		g.scenes.Close()
		return ebiten.Termination
	}
	return g.scenes.Update()
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.scenes.Draw(screen)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ScreenWidth, ScreenHeight
}
