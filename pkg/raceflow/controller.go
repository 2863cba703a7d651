// Package raceflow drives a race from the start countdown to the end scene.
//
// A Controller is activated once per race. From then on the host calls
// Update once per frame; the controller evaluates win and lose conditions,
// runs its timed routines and, after the match ends, fades out and asks the
// SceneLoader for the end scene.
package raceflow

import (
	"context"
	"log"
	"math"
	"time"
)

const requester = "raceflow.Controller"

type Controller struct {
	cfg  Config
	deps Deps
	log  *log.Logger

	sched  *Scheduler
	ctx    context.Context
	cancel context.CancelFunc

	active  bool
	state   MatchState
	end     EndGameSequence
	elapsed time.Duration
	lastNow time.Duration
	loaded  bool
}

func NewController(cfg Config, deps Deps) *Controller {
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Controller{
		cfg:  cfg,
		deps: deps,
		log:  logger,
	}
}

// Activate resets the race and starts the countdown and objective reveal
// routines. It returns without waiting for either of them.
func (c *Controller) Activate(ctx context.Context) error {
	if c.active {
		return ErrAlreadyActive
	}
	if err := c.checkDeps(); err != nil {
		c.log.Printf("raceflow: %v", err)
		return err
	}
	if err := c.cfg.Validate(); err != nil {
		return err
	}

	c.sched = NewScheduler(c.deps.Clock)
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.active = true
	c.state = Playing
	c.lastNow = c.deps.Clock.Now()

	if c.deps.Volume != nil {
		c.deps.Volume.SetMasterVolume(1)
	}
	if c.deps.WinMessage != nil {
		c.deps.WinMessage.SetVisible(false)
	}
	if c.deps.LoseMessage != nil {
		c.deps.LoseMessage.SetVisible(false)
	}

	c.deps.Timer.StopRace()
	c.setKartsCanMove(false)

	if c.deps.Countdown != nil {
		c.deps.Countdown.Play()
	}

	c.sched.Go(c.ctx, "objective-reveal", c.revealObjectives)
	c.sched.Go(c.ctx, "countdown", c.countdownThenStart)

	c.log.Printf("raceflow: activated with %d karts", len(c.deps.Karts))
	return nil
}

func (c *Controller) checkDeps() error {
	switch {
	case c.deps.Clock == nil:
		return &MissingDependencyError{Dependency: "Clock", Requester: requester}
	case c.deps.Timer == nil:
		return &MissingDependencyError{Dependency: "RaceTimer", Requester: requester}
	case c.deps.Objectives == nil:
		return &MissingDependencyError{Dependency: "ObjectiveTracker", Requester: requester}
	case len(c.deps.Karts) == 0 || c.deps.Karts[0] == nil:
		return &MissingDependencyError{Dependency: "player kart", Requester: requester}
	}
	return nil
}

func (c *Controller) countdownThenStart(ctx context.Context, r *Routine) error {
	if err := r.WaitGame(c.cfg.CountdownDelay); err != nil {
		return err
	}
	c.setKartsCanMove(true)
	c.deps.Timer.StartRace()
	c.log.Printf("raceflow: race started")
	return nil
}

func (c *Controller) revealObjectives(ctx context.Context, r *Routine) error {
	tracker := c.deps.Objectives
	if err := r.WaitUntil(func() bool { return len(tracker.Objectives()) > 0 }); err != nil {
		return err
	}
	if err := r.WaitRealtime(c.cfg.RevealDelay); err != nil {
		return err
	}
	// Objectives without a message are skipped without spending an interval.
	for i := 0; i < len(tracker.Objectives()); i++ {
		msg := tracker.Objectives()[i].Message()
		if msg == nil {
			continue
		}
		msg.Display()
		if err := r.WaitRealtime(c.cfg.RevealInterval); err != nil {
			return err
		}
	}
	return nil
}

func (c *Controller) setKartsCanMove(canMove bool) {
	for _, k := range c.deps.Karts {
		if k != nil {
			k.SetCanMove(canMove)
		}
	}
}

// Update runs one frame of the race flow. It is a no-op before Activate and
// after the end scene has been requested.
func (c *Controller) Update() {
	if !c.active || c.loaded {
		return
	}

	now := c.deps.Clock.Now()
	dt := now - c.lastNow
	c.lastNow = now

	if c.state.Terminal() {
		c.updateEnd(now, dt)
	} else {
		switch {
		case c.deps.Objectives.AreAllObjectivesCompleted():
			c.EndGame(true)
		case c.deps.Timer.IsFinite() && c.deps.Timer.IsOver():
			c.EndGame(false)
		}
	}

	if c.sched != nil {
		c.sched.Tick()
	}
}

func (c *Controller) updateEnd(now, dt time.Duration) {
	c.elapsed += dt
	if c.elapsed < c.cfg.EndSceneLoadDelay {
		return
	}

	timeRatio := 1 - (c.end.LoadDeadline-now).Seconds()/c.cfg.EndSceneLoadDelay.Seconds()
	if c.deps.Fade != nil {
		c.deps.Fade.SetAlpha(timeRatio)
	}
	if c.deps.Volume != nil {
		c.deps.Volume.SetMasterVolume(MasterVolume(timeRatio))
	}

	if now >= c.end.LoadDeadline && !c.loaded {
		c.loaded = true
		c.log.Printf("raceflow: loading %q", c.end.SceneToLoad)
		c.Close()
		if c.deps.Scenes != nil {
			c.deps.Scenes.LoadScene(c.end.SceneToLoad)
		}
	}
}

// MasterVolume is the volume applied during the end fade for a given fade
// ratio: clamp(1-|timeRatio|, 0, 1).
//
// TODO: the absolute value makes the volume rise again while timeRatio is
// still negative; decide whether a plain 1-timeRatio fade was intended.
func MasterVolume(timeRatio float64) float64 {
	return math.Max(0, math.Min(1, 1-math.Abs(timeRatio)))
}

// EndGame ends the match. It has no effect unless the match is still being
// played.
func (c *Controller) EndGame(win bool) {
	if !c.active || c.state.Terminal() {
		return
	}

	if c.deps.Pointer != nil {
		c.deps.Pointer.Unlock()
	}
	c.deps.Timer.StopRace()

	now := c.deps.Clock.Now()
	c.state = Lost
	scene := c.cfg.LoseSceneName
	if win {
		c.state = Won
		scene = c.cfg.WinSceneName
	}
	c.elapsed = 0
	c.end = EndGameSequence{
		Outcome:           c.state,
		SceneToLoad:       scene,
		StartedAt:         now,
		FadeStartDeadline: now + c.cfg.EndSceneLoadDelay,
		LoadDeadline:      now + c.cfg.EndSceneLoadDelay + c.cfg.DelayBeforeFadeToBlack,
	}
	if c.deps.Fade != nil {
		c.deps.Fade.SetVisible(true)
	}

	msg := c.deps.LoseMessage
	if win {
		msg = c.deps.WinMessage
		if c.deps.VictorySound != nil {
			c.deps.VictorySound.PlayScheduled(c.cfg.DelayBeforeWinMessage)
		}
	}
	if msg != nil {
		msg.SetDelayBeforeShowing(c.cfg.DelayBeforeWinMessage)
		msg.SetVisible(true)
	}

	c.log.Printf("raceflow: match %s, loading %q in %s", c.state, scene, c.end.LoadDeadline-now)
	if c.deps.OnEnd != nil {
		c.deps.OnEnd(c.end)
	}
}

// Close cancels the countdown and objective reveal routines. Pending kart
// unlocks and message displays never happen after Close returns.
func (c *Controller) Close() {
	if c.cancel != nil {
		c.cancel()
	}
	if c.sched != nil {
		c.sched.Close()
	}
}

func (c *Controller) State() MatchState { return c.state }

// EndSequence returns the end-of-match sequence; ok is false while playing.
func (c *Controller) EndSequence() (EndGameSequence, bool) {
	return c.end, c.state.Terminal()
}

// Done reports whether the end scene has been requested.
func (c *Controller) Done() bool { return c.loaded }

func (c *Controller) Active() bool { return c.active }

// PlayerKart is the first kart handed to the controller.
func (c *Controller) PlayerKart() MovementGate {
	if len(c.deps.Karts) == 0 {
		return nil
	}
	return c.deps.Karts[0]
}
