package game

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/mpihlak/ebiten-karting/pkg/dashboard"
	"github.com/mpihlak/ebiten-karting/pkg/raceflow"
)

// EndScene shows the result of the last race until the player asks for a
// new one.
type EndScene struct {
	game   *Game
	result RaceResult
}

func NewEndScene(g *Game) *EndScene {
	return &EndScene{game: g, result: g.last}
}

func (s *EndScene) Title() string {
	if s.result.Outcome == raceflow.Won {
		return "YOU WIN!"
	}
	return "TIME'S UP!"
}

func (s *EndScene) Summary() string {
	return fmt.Sprintf("Time %s   Checkpoints %d/%d",
		dashboard.FormatRaceTime(s.result.Time), s.result.Checkpoints, s.result.Total)
}

func (s *EndScene) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) ||
		inpututil.IsKeyJustPressed(ebiten.KeySpace) ||
		inpututil.IsKeyJustPressed(ebiten.KeyR) ||
		len(inpututil.AppendJustPressedTouchIDs(nil)) > 0 {
		s.game.scenes.LoadScene(RaceSceneName)
	}
	return nil
}

func (s *EndScene) Draw(screen *ebiten.Image) {
	bg := color.RGBA{60, 10, 10, 255}
	fg := color.RGBA{255, 60, 60, 255}
	if s.result.Outcome == raceflow.Won {
		bg = color.RGBA{10, 50, 20, 255}
		fg = color.RGBA{0, 255, 0, 255}
	}
	screen.Fill(bg)

	h := float64(screen.Bounds().Dy())
	drawCenteredText(screen, s.Title(), h/3, 6, fg)
	drawCenteredText(screen, s.Summary(), h/2, 2, color.White)
	drawCenteredText(screen, "Press ENTER or tap to race again", h*2/3, 2, color.RGBA{200, 200, 200, 255})
}

func (s *EndScene) Close() {}
