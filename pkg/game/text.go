package game

import (
	"image/color"

	"github.com/hajimehoshi/bitmapfont/v3"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
)

var face = text.NewGoXFace(bitmapfont.Face)

// drawCenteredText draws s horizontally centered on the screen with its top
// at y, scaled up by scale.
func drawCenteredText(screen *ebiten.Image, s string, y, scale float64, c color.Color) {
	width := text.Advance(s, face) * scale
	x := float64(screen.Bounds().Dx())/2 - width/2

	op := &text.DrawOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(c)
	text.Draw(screen, s, face, op)
}
