package dashboard

import (
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/mpihlak/ebiten-karting/pkg/game/objects"
	"github.com/mpihlak/ebiten-karting/pkg/race"
)

// KmhPerPixelPerFrame converts kart speed to the km/h shown on the HUD.
// At 60 TPS a top speed of 4 px/frame reads as 80 km/h.
const KmhPerPixelPerFrame = 20.0

// Dashboard is the race HUD in the top right corner.
type Dashboard struct {
	Kart       *objects.Kart
	Timer      *race.Timer
	Objectives *race.Objectives
}

// SpeedKmh returns the player kart's speed in km/h.
func (d *Dashboard) SpeedKmh() float64 {
	return d.Kart.Speed * KmhPerPixelPerFrame
}

// FormatRaceTime renders a duration as mm:ss.t
func FormatRaceTime(t time.Duration) string {
	if t < 0 {
		t = 0
	}
	minutes := int(t.Minutes())
	seconds := t.Seconds() - float64(minutes*60)
	return fmt.Sprintf("%02d:%04.1f", minutes, seconds)
}

// TimeText is the time left for a timed race, or the time raced so far.
func (d *Dashboard) TimeText() string {
	if d.Timer.IsFinite() {
		return "Time left: " + FormatRaceTime(d.Timer.Remaining())
	}
	return "Time: " + FormatRaceTime(d.Timer.Elapsed())
}

// ProgressText shows how many checkpoints are done and the next one.
func (d *Dashboard) ProgressText() string {
	done, total := d.Objectives.Completed(), d.Objectives.Len()
	if total == 0 {
		return "Checkpoints: -"
	}
	if next := d.Objectives.Next(); next != nil {
		return fmt.Sprintf("Checkpoints: %d/%d\nNext: %s", done, total, next.Title)
	}
	return fmt.Sprintf("Checkpoints: %d/%d", done, total)
}

// lowTime is when the remaining time turns red.
const lowTime = 10 * time.Second

func (d *Dashboard) Draw(screen *ebiten.Image) {
	x := screen.Bounds().Dx() - 170

	vector.DrawFilledRect(screen, float32(x-10), 5, 170, 80, color.RGBA{0, 0, 0, 120}, false)

	msg := fmt.Sprintf("Speed: %.0f km/h\n%s\n%s", d.SpeedKmh(), d.TimeText(), d.ProgressText())
	ebitenutil.DebugPrintAt(screen, msg, x, 10)

	// Low time warning
	if d.Timer.IsFinite() && d.Timer.Running() && d.Timer.Remaining() < lowTime {
		vector.DrawFilledRect(screen, float32(x-10), 90, 170, 16, color.RGBA{255, 0, 0, 255}, false)
		ebitenutil.DebugPrintAt(screen, "*** HURRY UP ***", x, 90)
	}
}
