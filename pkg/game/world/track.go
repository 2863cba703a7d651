package world

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/mpihlak/ebiten-karting/pkg/geometry"
)

const (
	coneRadius       = 3.0
	trackSegments    = 96
	checkpointRadius = 40.0
)

type Checkpoint struct {
	Name   string
	Pos    geometry.Point
	Radius float64
}

// Track is an oval circuit. Checkpoints are laid out in driving order and
// the last one sits on the start/finish line.
type Track struct {
	Center  geometry.Point
	RadiusX float64
	RadiusY float64
	Width   float64 // road width

	Checkpoints []*Checkpoint
	Cones       []geometry.Point
}

// startAngle puts the start/finish line at the bottom of the oval.
const startAngle = math.Pi / 2

// NewOvalTrack builds an oval with n checkpoints, the last of which is the
// finish line.
func NewOvalTrack(center geometry.Point, rx, ry, width float64, n int) *Track {
	t := &Track{
		Center:  center,
		RadiusX: rx,
		RadiusY: ry,
		Width:   width,
	}
	for i := 1; i <= n; i++ {
		name := fmt.Sprintf("Checkpoint %d", i)
		if i == n {
			name = "Finish"
		}
		t.Checkpoints = append(t.Checkpoints, &Checkpoint{
			Name:   name,
			Pos:    t.pointAt(startAngle+2*math.Pi*float64(i)/float64(n), 0),
			Radius: checkpointRadius,
		})
	}
	// A cone on the inside of every corner between checkpoints.
	for i := 0; i < n; i++ {
		angle := startAngle + 2*math.Pi*(float64(i)+0.5)/float64(n)
		t.Cones = append(t.Cones, t.pointAt(angle, -width/2+coneRadius*2))
	}
	return t
}

// pointAt returns the point at angle on the center line, pushed outwards by
// offset (negative is towards the infield).
func (t *Track) pointAt(angle, offset float64) geometry.Point {
	rx := t.RadiusX + offset
	ry := t.RadiusY + offset
	return geometry.Point{
		X: t.Center.X + rx*math.Cos(angle),
		Y: t.Center.Y + ry*math.Sin(angle),
	}
}

// headingAt is the driving direction at angle, in degrees (0 = north).
func (t *Track) headingAt(angle float64) float64 {
	vx := -t.RadiusX * math.Sin(angle)
	vy := t.RadiusY * math.Cos(angle)
	h := math.Atan2(vx, -vy) * 180 / math.Pi
	if h < 0 {
		h += 360
	}
	return h
}

// GridSlot returns the start position and heading of the i-th kart. Karts
// line up behind the start line in two columns.
func (t *Track) GridSlot(i int) (geometry.Point, float64) {
	row := i / 2
	lane := -t.Width / 4
	if i%2 == 1 {
		lane = t.Width / 4
	}
	// Arc length of 30 pixels per row, measured along the bottom straight.
	angle := startAngle - (float64(row)+1)*30/t.RadiusX
	return t.pointAt(angle, lane), t.headingAt(angle)
}

// OnTrack reports whether pos is on the road surface.
func (t *Track) OnTrack(pos geometry.Point) bool {
	dx := (pos.X - t.Center.X) / t.RadiusX
	dy := (pos.Y - t.Center.Y) / t.RadiusY
	r := math.Hypot(dx, dy)
	return math.Abs(r-1)*math.Min(t.RadiusX, t.RadiusY) <= t.Width/2
}

type CollisionType int

const (
	CollisionCone CollisionType = iota
)

type Collision struct {
	Type CollisionType
	Pos  geometry.Point
}

// CheckCollisions returns the cones a kart of the given radius at pos is
// touching.
func (t *Track) CheckCollisions(pos geometry.Point, radius float64) []Collision {
	var out []Collision
	for _, c := range t.Cones {
		if pos.Distance(c) < radius+coneRadius {
			out = append(out, Collision{Type: CollisionCone, Pos: c})
		}
	}
	return out
}

// drawDottedLine draws a dotted line between two points
func drawDottedLine(screen *ebiten.Image, a, b geometry.Point, lineColor color.Color) {
	distance := a.Distance(b)
	if distance == 0 {
		return
	}

	// 5 pixel segments with 2.5 pixel gaps
	segmentLength := 5.0
	gapLength := 2.5
	for d := 0.0; d < distance; d += segmentLength + gapLength {
		start := a.Lerp(b, d/distance)
		end := a.Lerp(b, math.Min(d+segmentLength, distance)/distance)
		vector.StrokeLine(screen, float32(start.X), float32(start.Y), float32(end.X), float32(end.Y), 1, lineColor, false)
	}
}

// Draw renders the road, cones and checkpoints. next is the index of the
// checkpoint the player has to reach next.
func (t *Track) Draw(screen *ebiten.Image, next int, raceStarted bool) {
	grass := color.RGBA{34, 120, 50, 255}
	asphalt := color.RGBA{70, 70, 75, 255}
	curb := color.RGBA{220, 220, 220, 255}

	screen.Fill(grass)

	// Road as a ring of thick segments, with curbs on both edges.
	for i := 0; i < trackSegments; i++ {
		a0 := 2 * math.Pi * float64(i) / trackSegments
		a1 := 2 * math.Pi * float64(i+1) / trackSegments
		for _, layer := range []struct {
			offset, width float64
			c             color.Color
		}{
			{0, t.Width + 6, curb},
			{0, t.Width, asphalt},
		} {
			p0 := t.pointAt(a0, layer.offset)
			p1 := t.pointAt(a1, layer.offset)
			vector.StrokeLine(screen, float32(p0.X), float32(p0.Y), float32(p1.X), float32(p1.Y), float32(layer.width), layer.c, true)
		}
	}

	// Start/finish line: white before the start, green after.
	lineColor := color.RGBA{255, 255, 255, 255}
	if raceStarted {
		lineColor = color.RGBA{0, 255, 0, 255}
	}
	inner := t.pointAt(startAngle, -t.Width/2)
	outer := t.pointAt(startAngle, t.Width/2)
	vector.StrokeLine(screen, float32(inner.X), float32(inner.Y), float32(outer.X), float32(outer.Y), 4, lineColor, false)

	for _, c := range t.Cones {
		vector.DrawFilledCircle(screen, float32(c.X), float32(c.Y), coneRadius, color.RGBA{255, 140, 0, 255}, false)
	}

	// Racing line to the next checkpoint
	for i, cp := range t.Checkpoints {
		c := color.RGBA{255, 255, 255, 60}
		if i == next {
			c = color.RGBA{255, 215, 0, 200}
		}
		vector.StrokeCircle(screen, float32(cp.Pos.X), float32(cp.Pos.Y), float32(cp.Radius), 2, c, true)
		ebitenutil.DebugPrintAt(screen, cp.Name, int(cp.Pos.X)-30, int(cp.Pos.Y)-int(cp.Radius)-16)
		if i == next && i > 0 {
			drawDottedLine(screen, t.Checkpoints[i-1].Pos, cp.Pos, c)
		}
	}
}
