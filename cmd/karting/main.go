package main

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/mpihlak/ebiten-karting/pkg/config"
	"github.com/mpihlak/ebiten-karting/pkg/game"
)

func main() {
	cfg := game.DefaultConfig()
	if err := config.ParseEnv(&cfg); err != nil {
		log.Fatal(err)
	}

	ebiten.SetWindowSize(game.ScreenWidth, game.ScreenHeight)
	ebiten.SetWindowTitle(cfg.Title)

	g, err := game.NewGame(cfg, log.Default())
	if err != nil {
		log.Fatal(err)
	}

	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
