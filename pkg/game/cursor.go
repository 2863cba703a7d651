package game

import "github.com/hajimehoshi/ebiten/v2"

// Cursor hides the mouse pointer while racing and gives it back for the end
// screens.
type Cursor struct{}

func (Cursor) Lock() {
	if !IsWASM() {
		ebiten.SetCursorMode(ebiten.CursorModeHidden)
	}
}

func (Cursor) Unlock() {
	ebiten.SetCursorMode(ebiten.CursorModeVisible)
}
