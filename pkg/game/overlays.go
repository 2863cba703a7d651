package game

import (
	"image/color"
	"strconv"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/mpihlak/ebiten-karting/pkg/raceflow"
)

// Message is an on-screen banner. Once made visible (or displayed) it waits
// for its delay, then shows for Duration, or until hidden if Duration is 0.
// Timing uses the unscaled clock so messages still appear while paused.
type Message struct {
	Text     string
	Color    color.RGBA
	Scale    float64
	Duration time.Duration

	clock   raceflow.Clock
	delay   time.Duration
	visible bool
	shownAt time.Duration
}

func NewMessage(clock raceflow.Clock, text string, c color.RGBA, duration time.Duration) *Message {
	return &Message{
		Text:     text,
		Color:    c,
		Scale:    2,
		Duration: duration,
		clock:    clock,
	}
}

// Display shows the message again from the start of its delay.
func (m *Message) Display() {
	m.visible = true
	m.shownAt = m.clock.RealNow()
}

func (m *Message) SetDelayBeforeShowing(d time.Duration) {
	m.delay = d
}

func (m *Message) SetVisible(visible bool) {
	if visible && !m.visible {
		m.shownAt = m.clock.RealNow()
	}
	m.visible = visible
}

// Showing reports whether the message is on screen right now.
func (m *Message) Showing() bool {
	if !m.visible {
		return false
	}
	since := m.clock.RealNow() - m.shownAt
	if since < m.delay {
		return false
	}
	return m.Duration == 0 || since < m.delay+m.Duration
}

func (m *Message) Draw(screen *ebiten.Image, y float64) {
	if !m.Showing() {
		return
	}
	h := 16 * m.Scale
	vector.DrawFilledRect(screen, 0, float32(y-h/2), float32(screen.Bounds().Dx()), float32(h*2), color.RGBA{0, 0, 0, 140}, false)
	drawCenteredText(screen, m.Text, y, m.Scale, m.Color)
}

// Fade is the full-screen fade-to-black overlay.
type Fade struct {
	visible bool
	alpha   float64
}

func (f *Fade) SetVisible(v bool) { f.visible = v }

// SetAlpha accepts any value; it is clamped to [0, 1] when drawn.
func (f *Fade) SetAlpha(a float64) { f.alpha = a }

// Opacity is the alpha actually drawn.
func (f *Fade) Opacity() float64 {
	if !f.visible {
		return 0
	}
	return min(1, max(0, f.alpha))
}

func (f *Fade) Draw(screen *ebiten.Image) {
	a := f.Opacity()
	if a == 0 {
		return
	}
	b := screen.Bounds()
	vector.DrawFilledRect(screen, 0, 0, float32(b.Dx()), float32(b.Dy()), color.RGBA{0, 0, 0, uint8(a * 255)}, false)
}

// CountdownCue shows "3", "2", "1" and then "GO!" on the game clock.
type CountdownCue struct {
	From  int           // first number shown
	Step  time.Duration // time per number
	clock raceflow.Clock

	playing   bool
	startedAt time.Duration
}

func NewCountdownCue(clock raceflow.Clock, from int, step time.Duration) *CountdownCue {
	return &CountdownCue{From: from, Step: step, clock: clock}
}

func (c *CountdownCue) Play() {
	c.playing = true
	c.startedAt = c.clock.Now()
}

// Label is the text to show now, or "" when nothing is shown.
func (c *CountdownCue) Label() string {
	if !c.playing || c.Step <= 0 {
		return ""
	}
	n := int((c.clock.Now() - c.startedAt) / c.Step)
	switch {
	case n < c.From:
		return strconv.Itoa(c.From - n)
	case n == c.From:
		return "GO!"
	default:
		return ""
	}
}

func (c *CountdownCue) Draw(screen *ebiten.Image) {
	label := c.Label()
	if label == "" {
		return
	}
	clr := color.RGBA{255, 220, 0, 255}
	if label == "GO!" {
		clr = color.RGBA{0, 255, 0, 255}
	}
	drawCenteredText(screen, label, float64(screen.Bounds().Dy())/2-60, 8, clr)
}
