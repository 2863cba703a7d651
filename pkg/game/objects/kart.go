package objects

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/mpihlak/ebiten-karting/pkg/geometry"
)

const (
	maxHistoryPoints = 40
	historyEvery     = 6 // frames between trail points
)

// Controls is one frame of driver input.
type Controls struct {
	Throttle bool
	Brake    bool
	Left     bool
	Right    bool
}

type Kart struct {
	Name    string
	Pos     geometry.Point
	Heading float64 // in degrees, 0 = north
	Speed   float64 // in pixels per frame
	Color   color.RGBA
	History []geometry.Point

	MaxSpeed float64
	Accel    float64
	Brake    float64
	Drag     float64
	TurnRate float64 // degrees per frame at full speed

	canMove      bool
	sinceHistory int
}

func NewKart(name string, pos geometry.Point, heading float64, c color.RGBA) *Kart {
	return &Kart{
		Name:     name,
		Pos:      pos,
		Heading:  heading,
		Color:    c,
		MaxSpeed: 4.0,
		Accel:    0.08,
		Brake:    0.2,
		Drag:     0.03,
		TurnRate: 3.0,
	}
}

// SetCanMove gates driver input. A gated kart ignores input and stops.
func (k *Kart) SetCanMove(canMove bool) {
	k.canMove = canMove
	if !canMove {
		k.Speed = 0
	}
}

func (k *Kart) CanMove() bool { return k.canMove }

// Update applies one frame of input and moves the kart.
func (k *Kart) Update(in Controls) {
	if !k.canMove {
		return
	}

	switch {
	case in.Throttle:
		k.Speed = math.Min(k.MaxSpeed, k.Speed+k.Accel)
	case in.Brake:
		k.Speed = math.Max(0, k.Speed-k.Brake)
	default:
		k.Speed = math.Max(0, k.Speed-k.Drag)
	}

	// Steering authority grows with speed so a parked kart does not spin.
	turn := k.TurnRate * math.Min(1, k.Speed/(k.MaxSpeed*0.5))
	if in.Left {
		k.Heading -= turn
	}
	if in.Right {
		k.Heading += turn
	}
	k.Heading = NormalizeHeading(k.Heading)

	headingRad := k.Heading * math.Pi / 180
	k.Pos.X += k.Speed * math.Sin(headingRad)
	k.Pos.Y -= k.Speed * math.Cos(headingRad) // Y is inverted in screen coordinates

	k.sinceHistory++
	if k.sinceHistory >= historyEvery && k.Speed > 0 {
		k.sinceHistory = 0
		k.History = append(k.History, k.Pos)
		if len(k.History) > maxHistoryPoints {
			k.History = k.History[1:]
		}
	}
}

// SteerTowards returns the input that drives the kart at target.
func (k *Kart) SteerTowards(target geometry.Point) Controls {
	bearing := math.Atan2(target.X-k.Pos.X, -(target.Y - k.Pos.Y)) * 180 / math.Pi
	diff := NormalizeHeading(bearing-k.Heading+180) - 180

	in := Controls{Throttle: math.Abs(diff) < 60}
	if !in.Throttle && k.Speed > k.MaxSpeed*0.6 {
		in.Brake = true
	}
	switch {
	case diff < -2:
		in.Left = true
	case diff > 2:
		in.Right = true
	}
	return in
}

// NormalizeHeading maps degrees into [0, 360).
func NormalizeHeading(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	return h
}

func (k *Kart) Draw(screen *ebiten.Image) {
	// Skid trail
	for _, p := range k.History {
		vector.DrawFilledCircle(screen, float32(p.X), float32(p.Y), 1.5, color.RGBA{60, 60, 60, 120}, false)
	}

	headingRad := k.Heading * math.Pi / 180
	sin, cos := math.Sin(headingRad), math.Cos(headingRad)

	// Body is a 14x8 rectangle centered on Pos, drawn as one thick stroke.
	const halfLen, bodyWidth = 7.0, 8.0
	fx, fy := k.Pos.X+halfLen*sin, k.Pos.Y-halfLen*cos
	bx, by := k.Pos.X-halfLen*sin, k.Pos.Y+halfLen*cos
	vector.StrokeLine(screen, float32(bx), float32(by), float32(fx), float32(fy), bodyWidth, k.Color, false)

	// Nose marker
	vector.DrawFilledCircle(screen, float32(fx), float32(fy), 2, color.White, false)
}
