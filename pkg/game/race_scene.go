package game

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/mpihlak/ebiten-karting/pkg/dashboard"
	"github.com/mpihlak/ebiten-karting/pkg/game/objects"
	"github.com/mpihlak/ebiten-karting/pkg/game/world"
	"github.com/mpihlak/ebiten-karting/pkg/geometry"
	"github.com/mpihlak/ebiten-karting/pkg/race"
	"github.com/mpihlak/ebiten-karting/pkg/raceflow"
)

const (
	maxOpponents = 5

	kartRadius   = 6.0
	grassDrag    = 0.92
	coneSlowdown = 0.5
)

var opponentColors = []color.RGBA{
	{40, 120, 255, 255},
	{255, 210, 0, 255},
	{170, 60, 220, 255},
	{255, 255, 255, 255},
	{0, 200, 200, 255},
}

// opponent is an AI kart chasing the checkpoints on its own.
type opponent struct {
	kart *objects.Kart
	next int
}

// RaceScene is a single race from the grid to the end-of-race fade.
type RaceScene struct {
	game   *Game
	cancel context.CancelFunc

	clock      *raceflow.FrameClock
	flow       *raceflow.Controller
	timer      *race.Timer
	objectives *race.Objectives

	track     *world.Track
	player    *objects.Kart
	opponents []*opponent

	countdown     *CountdownCue
	winMessage    *Message
	loseMessage   *Message
	intro         []*Message
	checkpointMsg *Message
	fade          *Fade
	mixer         *Mixer
	cursor        Cursor

	hud            *dashboard.Dashboard
	mobileControls *MobileControls
	worldImage     *ebiten.Image

	cameraX, cameraY float64
	isPaused         bool
	frame            int
}

func NewRaceScene(g *Game) (*RaceScene, error) {
	cfg := g.cfg
	clock := raceflow.NewFrameClock()

	s := &RaceScene{
		game:           g,
		clock:          clock,
		timer:          race.NewTimer(cfg.TimeLimit),
		objectives:     &race.Objectives{},
		track:          world.NewOvalTrack(geometry.Point{X: WorldWidth / 2, Y: WorldHeight / 2}, 750, 520, 140, cfg.Checkpoints),
		countdown:      NewCountdownCue(clock, 3, cfg.RaceFlow.CountdownDelay/3),
		winMessage:     NewMessage(clock, "YOU WIN!", color.RGBA{0, 255, 0, 255}, 0),
		loseMessage:    NewMessage(clock, "TIME'S UP!", color.RGBA{255, 60, 60, 255}, 0),
		checkpointMsg:  NewMessage(clock, "", color.RGBA{255, 255, 255, 255}, time.Second),
		fade:           &Fade{},
		mixer:          NewMixer(g.audio, clock),
		mobileControls: NewMobileControls(ScreenWidth, ScreenHeight),
		worldImage:     ebiten.NewImage(WorldWidth, WorldHeight),
	}
	s.winMessage.Scale = 5
	s.loseMessage.Scale = 5

	pos, heading := s.track.GridSlot(0)
	s.player = objects.NewKart("Player", pos, heading, color.RGBA{230, 30, 30, 255})
	karts := []raceflow.MovementGate{s.player}
	for i := 0; i < cfg.Opponents; i++ {
		pos, heading := s.track.GridSlot(i + 1)
		k := objects.NewKart(fmt.Sprintf("CPU %d", i+1), pos, heading, opponentColors[i%len(opponentColors)])
		// Slightly slower than a perfect player so the race can be won.
		k.MaxSpeed = 3.2 + 0.15*float64(i)
		s.opponents = append(s.opponents, &opponent{kart: k})
		karts = append(karts, k)
	}

	s.hud = &dashboard.Dashboard{Kart: s.player, Timer: s.timer, Objectives: s.objectives}
	s.objectives.OnComplete = func(o *race.Objective) {
		s.checkpointMsg.Text = o.Title + "!"
		s.checkpointMsg.Display()
	}

	if err := s.mixer.Loop(engineHum(), 0.4); err != nil {
		g.logger.Printf("engine sound disabled: %v", err)
	}

	s.flow = raceflow.NewController(cfg.RaceFlow, raceflow.Deps{
		Timer:        s.timer,
		Objectives:   s.objectives,
		Karts:        karts,
		Clock:        clock,
		Countdown:    s.countdown,
		WinMessage:   s.winMessage,
		LoseMessage:  s.loseMessage,
		Fade:         s.fade,
		Volume:       s.mixer,
		VictorySound: s.mixer.NewSound(victoryJingle(), 0.8),
		Pointer:      s.cursor,
		Scenes:       g.scenes,
		OnEnd:        s.recordResult,
		Logger:       g.logger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	if err := s.flow.Activate(ctx); err != nil {
		cancel()
		s.mixer.Pause()
		return nil, fmt.Errorf("start race: %w", err)
	}
	s.cursor.Lock()
	s.updateCamera()

	return s, nil
}

// loadObjectives fills the objective list from the track's checkpoints. It
// runs on the first frame, after the race flow has started waiting for it.
func (s *RaceScene) loadObjectives() {
	for i, cp := range s.track.Checkpoints {
		o := &race.Objective{Title: cp.Name, Checkpoint: cp.Pos, Radius: cp.Radius}
		var m *Message
		switch i {
		case 0:
			m = NewMessage(s.clock, fmt.Sprintf("Drive through all %d checkpoints", len(s.track.Checkpoints)), color.RGBA{255, 255, 255, 255}, 3*time.Second)
		case len(s.track.Checkpoints) - 1:
			if s.timer.IsFinite() {
				m = NewMessage(s.clock, "Reach the finish before time runs out!", color.RGBA{255, 215, 0, 255}, 3*time.Second)
			}
		}
		if m != nil {
			o.SetMessage(m)
			s.intro = append(s.intro, m)
		}
		s.objectives.Register(o)
	}
}

func (s *RaceScene) recordResult(seq raceflow.EndGameSequence) {
	s.game.last = RaceResult{
		Outcome:     seq.Outcome,
		Time:        s.timer.Elapsed(),
		Checkpoints: s.objectives.Completed(),
		Total:       s.objectives.Len(),
	}
}

func (s *RaceScene) Update() error {
	s.mobileControls.Update()
	mobileInput := s.mobileControls.GetMobileInput()

	// In WASM, pause the game and show help screen instead of quitting
	if IsWASM() && ebiten.IsKeyPressed(ebiten.KeyQ) {
		s.isPaused = true
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyR) || mobileInput.RestartPressed {
		s.game.scenes.LoadScene(RaceSceneName)
		return nil
	}

	// Jump the race clock forward by 10 seconds
	if inpututil.IsKeyJustPressed(ebiten.KeyJ) || mobileInput.TimerJumpPressed {
		s.timer.Update(10 * time.Second)
	}

	pauseTogglePressed := inpututil.IsKeyJustPressed(ebiten.KeySpace) || mobileInput.PausePressed
	// On mobile, any touch when paused should unpause (except on buttons)
	if s.isPaused && s.mobileControls.TappedOutsideButtons() {
		pauseTogglePressed = true
	}
	if pauseTogglePressed {
		s.isPaused = !s.isPaused
	}

	s.clock.Paused = s.isPaused
	before := s.clock.Now()
	s.clock.Advance(time.Second / time.Duration(ebiten.TPS()))
	dt := s.clock.Now() - before

	if s.frame == 0 {
		s.loadObjectives()
	}
	s.frame++

	if !s.isPaused {
		s.player.Update(objects.Controls{
			Throttle: ebiten.IsKeyPressed(ebiten.KeyUp) || ebiten.IsKeyPressed(ebiten.KeyW) || mobileInput.Throttle,
			Brake:    ebiten.IsKeyPressed(ebiten.KeyDown) || ebiten.IsKeyPressed(ebiten.KeyS),
			Left:     ebiten.IsKeyPressed(ebiten.KeyLeft) || ebiten.IsKeyPressed(ebiten.KeyA) || mobileInput.TurnLeft,
			Right:    ebiten.IsKeyPressed(ebiten.KeyRight) || ebiten.IsKeyPressed(ebiten.KeyD) || mobileInput.TurnRight,
		})
		s.applyTrack(s.player)

		for _, o := range s.opponents {
			cp := s.track.Checkpoints[o.next%len(s.track.Checkpoints)]
			o.kart.Update(o.kart.SteerTowards(cp.Pos))
			s.applyTrack(o.kart)
			if o.kart.Pos.Distance(cp.Pos) <= cp.Radius {
				o.next++
			}
		}

		s.timer.Update(dt)
		s.objectives.Update(s.player.Pos)
		s.updateCamera()
	}

	s.flow.Update()
	s.mixer.Update()
	return nil
}

// applyTrack slows a kart down on the grass and when it hits a cone, and
// keeps it inside the world.
func (s *RaceScene) applyTrack(k *objects.Kart) {
	if !s.track.OnTrack(k.Pos) {
		k.Speed *= grassDrag
	}
	for _, c := range s.track.CheckCollisions(k.Pos, kartRadius) {
		if c.Type == world.CollisionCone {
			k.Speed *= coneSlowdown
		}
	}
	k.Pos.X = math.Max(0, math.Min(k.Pos.X, WorldWidth))
	k.Pos.Y = math.Max(0, math.Min(k.Pos.Y, WorldHeight))
}

// updateCamera pans the camera to keep the player kart visible
func (s *RaceScene) updateCamera() {
	kartScreenX := s.player.Pos.X - s.cameraX
	kartScreenY := s.player.Pos.Y - s.cameraY

	// Camera margins - start panning when the kart gets within this distance from edge
	margin := 250.0

	if kartScreenX < margin {
		s.cameraX = s.player.Pos.X - margin
	} else if kartScreenX > float64(ScreenWidth)-margin {
		s.cameraX = s.player.Pos.X - (float64(ScreenWidth) - margin)
	}

	if kartScreenY < margin {
		s.cameraY = s.player.Pos.Y - margin
	} else if kartScreenY > float64(ScreenHeight)-margin {
		s.cameraY = s.player.Pos.Y - (float64(ScreenHeight) - margin)
	}

	// Clamp camera to world bounds
	s.cameraX = math.Max(0, math.Min(s.cameraX, float64(WorldWidth-ScreenWidth)))
	s.cameraY = math.Max(0, math.Min(s.cameraY, float64(WorldHeight-ScreenHeight)))
}

func (s *RaceScene) Draw(screen *ebiten.Image) {
	s.track.Draw(s.worldImage, s.objectives.Completed(), s.timer.Running())
	for _, o := range s.opponents {
		o.kart.Draw(s.worldImage)
	}
	s.player.Draw(s.worldImage)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(-s.cameraX, -s.cameraY)
	screen.DrawImage(s.worldImage, op)

	s.hud.Draw(screen)

	for i, m := range s.intro {
		m.Draw(screen, float64(ScreenHeight)/4+float64(i)*60)
	}
	s.checkpointMsg.Draw(screen, float64(ScreenHeight)/4-60)
	s.countdown.Draw(screen)
	s.winMessage.Draw(screen, float64(ScreenHeight)/2-40)
	s.loseMessage.Draw(screen, float64(ScreenHeight)/2-40)

	s.mobileControls.Draw(screen, s.isPaused)

	if s.isPaused {
		s.drawHelpScreen(screen)
	}

	s.fade.Draw(screen)
}

// drawHelpScreen displays the help overlay when game is paused
func (s *RaceScene) drawHelpScreen(screen *ebiten.Image) {
	vector.DrawFilledRect(screen, 0, 0, ScreenWidth, ScreenHeight, color.RGBA{0, 0, 0, 180}, false)

	var helpText string
	if s.mobileControls.hasTouchInput {
		helpText = `KARTING - PAUSED

How to Play:
  Wait for the countdown, then go!
  Drive through the checkpoints in order
  Reach the finish before the clock runs out

Touch Controls:
  Arrow buttons - Steer the kart
  GAS button    - Accelerate
  Pause button  - Pause/Resume game
  Menu button   - Show restart & timer options

Tap anywhere to continue...`
	} else {
		quitText := "Quit Game"
		if IsWASM() {
			quitText = "Pause Game"
		}

		helpText = fmt.Sprintf(`KARTING - PAUSED

How to Play:
  Wait for the countdown, then go!
  Drive through the checkpoints in order
  Reach the finish before the clock runs out

Controls:
  Up / W          - Accelerate
  Down / S        - Brake
  Left / A        - Steer Left
  Right / D       - Steer Right
  Space           - Pause/Resume
  J               - Jump Race Clock +10 sec
  R               - Restart Race
  Q               - %s

Press SPACE to continue...`, quitText)
	}

	bounds := screen.Bounds()
	ebitenutil.DebugPrintAt(screen, helpText, bounds.Dx()/2-200, bounds.Dy()/2-150)
}

// Close stops the race flow and the race's sounds.
func (s *RaceScene) Close() {
	s.flow.Close()
	s.cancel()
	s.mixer.Pause()
}
