package raceflow

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tick = 10 * time.Millisecond

type fakeTimer struct {
	started, stopped int
	running          bool
	finite, over     bool
}

func (t *fakeTimer) StartRace()     { t.started++; t.running = true }
func (t *fakeTimer) StopRace()      { t.stopped++; t.running = false }
func (t *fakeTimer) IsFinite() bool { return t.finite }
func (t *fakeTimer) IsOver() bool   { return t.over }

type fakeMessage struct {
	clock     Clock
	name      string
	visible   bool
	delay     time.Duration
	displayed []time.Duration
}

func (m *fakeMessage) Display()                              { m.displayed = append(m.displayed, m.clock.RealNow()) }
func (m *fakeMessage) SetDelayBeforeShowing(d time.Duration) { m.delay = d }
func (m *fakeMessage) SetVisible(v bool)                     { m.visible = v }

type fakeObjective struct {
	completed bool
	msg       *fakeMessage
}

func (o *fakeObjective) IsCompleted() bool { return o.completed }
func (o *fakeObjective) Message() DisplayMessage {
	if o.msg == nil {
		return nil
	}
	return o.msg
}

type fakeTracker struct {
	objectives []Objective
	allDone    bool
}

func (t *fakeTracker) Objectives() []Objective         { return t.objectives }
func (t *fakeTracker) AreAllObjectivesCompleted() bool { return t.allDone }

type fakeKart struct {
	canMove bool
	calls   int
}

func (k *fakeKart) SetCanMove(v bool) { k.canMove = v; k.calls++ }

type fakeScenes struct {
	clock  Clock
	loads  []string
	loadAt []time.Duration
}

func (s *fakeScenes) LoadScene(name string) {
	s.loads = append(s.loads, name)
	s.loadAt = append(s.loadAt, s.clock.Now())
}

type fakeFade struct {
	clock   Clock
	visible bool
	alphas  []float64
	alphaAt []time.Duration
}

func (f *fakeFade) SetVisible(v bool) { f.visible = v }
func (f *fakeFade) SetAlpha(a float64) {
	f.alphas = append(f.alphas, a)
	f.alphaAt = append(f.alphaAt, f.clock.Now())
}

type fakeVolume struct{ volumes []float64 }

func (v *fakeVolume) SetMasterVolume(x float64) { v.volumes = append(v.volumes, x) }

type fakeSound struct{ scheduled []time.Duration }

func (s *fakeSound) PlayScheduled(d time.Duration) { s.scheduled = append(s.scheduled, d) }

type fakeCue struct{ plays int }

func (c *fakeCue) Play() { c.plays++ }

type fakePointer struct{ unlocked int }

func (p *fakePointer) Unlock() { p.unlocked++ }

type harness struct {
	clock   *FrameClock
	timer   *fakeTimer
	tracker *fakeTracker
	karts   []*fakeKart
	win     *fakeMessage
	lose    *fakeMessage
	scenes  *fakeScenes
	fade    *fakeFade
	volume  *fakeVolume
	sound   *fakeSound
	cue     *fakeCue
	pointer *fakePointer
	ends    []EndGameSequence
	ctrl    *Controller
}

func newHarness(t *testing.T, cfg Config) *harness {
	t.Helper()
	clock := NewFrameClock()
	h := &harness{
		clock:   clock,
		timer:   &fakeTimer{},
		tracker: &fakeTracker{},
		karts:   []*fakeKart{{canMove: true}, {canMove: true}, {canMove: true}},
		win:     &fakeMessage{clock: clock, name: "win", visible: true},
		lose:    &fakeMessage{clock: clock, name: "lose", visible: true},
		scenes:  &fakeScenes{clock: clock},
		fade:    &fakeFade{clock: clock},
		volume:  &fakeVolume{},
		sound:   &fakeSound{},
		cue:     &fakeCue{},
		pointer: &fakePointer{},
	}
	gates := make([]MovementGate, len(h.karts))
	for i, k := range h.karts {
		gates[i] = k
	}
	h.ctrl = NewController(cfg, Deps{
		Timer:        h.timer,
		Objectives:   h.tracker,
		Karts:        gates,
		Clock:        clock,
		Countdown:    h.cue,
		WinMessage:   h.win,
		LoseMessage:  h.lose,
		Fade:         h.fade,
		Volume:       h.volume,
		VictorySound: h.sound,
		Pointer:      h.pointer,
		Scenes:       h.scenes,
		OnEnd:        func(e EndGameSequence) { h.ends = append(h.ends, e) },
		Logger:       log.New(io.Discard, "", 0),
	})
	t.Cleanup(h.ctrl.Close)
	return h
}

// run advances the clock by d in fixed ticks, updating the controller after
// every tick.
func (h *harness) run(d time.Duration) {
	for i := time.Duration(0); i < d; i += tick {
		h.clock.Advance(tick)
		h.ctrl.Update()
	}
}

func (h *harness) kartsCanMove() []bool {
	out := make([]bool, len(h.karts))
	for i, k := range h.karts {
		out[i] = k.canMove
	}
	return out
}

func TestActivate_MissingDependencies(t *testing.T) {
	tests := []struct {
		name string
		deps Deps
		want string
	}{
		{"no timer", Deps{Objectives: &fakeTracker{}, Karts: []MovementGate{&fakeKart{}}, Clock: NewFrameClock()}, "RaceTimer"},
		{"no objectives", Deps{Timer: &fakeTimer{}, Karts: []MovementGate{&fakeKart{}}, Clock: NewFrameClock()}, "ObjectiveTracker"},
		{"no karts", Deps{Timer: &fakeTimer{}, Objectives: &fakeTracker{}, Clock: NewFrameClock()}, "player kart"},
		{"no clock", Deps{Timer: &fakeTimer{}, Objectives: &fakeTracker{}, Karts: []MovementGate{&fakeKart{}}}, "Clock"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.deps.Logger = log.New(io.Discard, "", 0)
			c := NewController(DefaultConfig(), tt.deps)

			err := c.Activate(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMissingDependency)

			var missing *MissingDependencyError
			require.True(t, errors.As(err, &missing))
			assert.Equal(t, tt.want, missing.Dependency)
			assert.Equal(t, "raceflow.Controller", missing.Requester)
			assert.Contains(t, err.Error(), tt.want)
			assert.False(t, c.Active())

			// Update on an inactive controller must not touch anything.
			c.Update()
			assert.Equal(t, Playing, c.State())
		})
	}
}

func TestActivate_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EndSceneLoadDelay = 0
	h := newHarness(t, cfg)

	err := h.ctrl.Activate(context.Background())
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.False(t, h.ctrl.Active())
}

func TestActivate_ResetsRace(t *testing.T) {
	h := newHarness(t, DefaultConfig())

	require.NoError(t, h.ctrl.Activate(context.Background()))

	assert.Equal(t, Playing, h.ctrl.State())
	assert.Equal(t, []bool{false, false, false}, h.kartsCanMove())
	assert.Equal(t, 1, h.timer.stopped)
	assert.Equal(t, 0, h.timer.started)
	assert.Equal(t, 1, h.cue.plays)
	assert.False(t, h.win.visible)
	assert.False(t, h.lose.visible)
	assert.Equal(t, []float64{1}, h.volume.volumes)
	assert.Same(t, h.karts[0], h.ctrl.PlayerKart())

	assert.ErrorIs(t, h.ctrl.Activate(context.Background()), ErrAlreadyActive)
}

func TestCountdown_UnlocksKartsAfterDelay(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	require.NoError(t, h.ctrl.Activate(context.Background()))

	h.run(3*time.Second - tick)
	assert.Equal(t, []bool{false, false, false}, h.kartsCanMove())
	assert.Equal(t, 0, h.timer.started)

	h.run(tick)
	assert.Equal(t, []bool{true, true, true}, h.kartsCanMove())
	assert.Equal(t, 1, h.timer.started)
	assert.True(t, h.timer.running)

	h.run(10 * time.Second)
	assert.Equal(t, 1, h.timer.started, "countdown runs once")
}

func TestCountdown_FollowsGameClock(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	require.NoError(t, h.ctrl.Activate(context.Background()))

	h.clock.Paused = true
	h.run(10 * time.Second)
	assert.Equal(t, []bool{false, false, false}, h.kartsCanMove())

	h.clock.Paused = false
	h.run(3 * time.Second)
	assert.Equal(t, []bool{true, true, true}, h.kartsCanMove())
}

func TestClose_CancelsPendingCountdown(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	require.NoError(t, h.ctrl.Activate(context.Background()))

	h.run(time.Second)
	h.ctrl.Close()
	h.run(5 * time.Second)

	assert.Equal(t, []bool{false, false, false}, h.kartsCanMove())
	assert.Equal(t, 0, h.timer.started)
	assert.Equal(t, 0, h.ctrl.sched.Pending())

	h.ctrl.Close()
}

func TestClose_ParentContextCancelsRoutines(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, h.ctrl.Activate(ctx))

	cancel()
	h.run(5 * time.Second)

	assert.Equal(t, []bool{false, false, false}, h.kartsCanMove())
	assert.Equal(t, 0, h.ctrl.sched.Pending())
}

func TestRevealObjectives_DisplaysMessagesInOrder(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	require.NoError(t, h.ctrl.Activate(context.Background()))

	// Objectives arrive some time after activation.
	h.run(500 * time.Millisecond)
	a := &fakeMessage{clock: h.clock, name: "A"}
	c := &fakeMessage{clock: h.clock, name: "C"}
	h.tracker.objectives = []Objective{
		&fakeObjective{msg: a},
		&fakeObjective{},
		&fakeObjective{msg: c},
	}

	h.run(tick)
	populated := h.clock.RealNow()
	h.run(3 * time.Second)

	require.Len(t, a.displayed, 1)
	require.Len(t, c.displayed, 1)
	assert.InDelta(t, (populated + 200*time.Millisecond).Seconds(), a.displayed[0].Seconds(), tick.Seconds())
	assert.InDelta(t, (populated + 1200*time.Millisecond).Seconds(), c.displayed[0].Seconds(), tick.Seconds())
}

func TestRevealObjectives_IgnoresGamePause(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	msg := &fakeMessage{clock: h.clock}
	h.tracker.objectives = []Objective{&fakeObjective{msg: msg}}
	require.NoError(t, h.ctrl.Activate(context.Background()))

	h.clock.Paused = true
	h.run(300 * time.Millisecond)

	assert.Len(t, msg.displayed, 1)
}

func TestRevealObjectives_EmptyListNeverDisplays(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	require.NoError(t, h.ctrl.Activate(context.Background()))

	h.run(10 * time.Second)

	assert.Equal(t, 1, h.ctrl.sched.Pending(), "reveal keeps waiting for objectives")
}

func TestUpdate_WinsWhenAllObjectivesComplete(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	require.NoError(t, h.ctrl.Activate(context.Background()))
	h.run(4 * time.Second)

	h.tracker.allDone = true
	h.run(tick)

	assert.Equal(t, Won, h.ctrl.State())
	assert.Equal(t, 1, h.pointer.unlocked)
	assert.False(t, h.timer.running)
	assert.True(t, h.fade.visible)
	assert.True(t, h.win.visible)
	assert.Equal(t, 2*time.Second, h.win.delay)
	assert.False(t, h.lose.visible)
	assert.Equal(t, []time.Duration{2 * time.Second}, h.sound.scheduled)

	end, ok := h.ctrl.EndSequence()
	require.True(t, ok)
	assert.Equal(t, "WinScene", end.SceneToLoad)
	assert.Equal(t, end.StartedAt+3*time.Second, end.FadeStartDeadline)
	assert.Equal(t, end.StartedAt+7*time.Second, end.LoadDeadline)
	assert.Greater(t, end.LoadDeadline, end.FadeStartDeadline)
	assert.Greater(t, end.FadeStartDeadline, end.StartedAt)
}

func TestUpdate_LosesWhenFiniteTimerIsOver(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	require.NoError(t, h.ctrl.Activate(context.Background()))
	h.run(4 * time.Second)

	h.timer.over = true
	h.run(time.Second)
	assert.Equal(t, Playing, h.ctrl.State(), "an unlimited timer never loses")

	h.timer.finite = true
	h.run(tick)

	assert.Equal(t, Lost, h.ctrl.State())
	assert.True(t, h.lose.visible)
	assert.Equal(t, 2*time.Second, h.lose.delay)
	assert.False(t, h.win.visible)
	assert.Empty(t, h.sound.scheduled)

	end, _ := h.ctrl.EndSequence()
	assert.Equal(t, "LoseScene", end.SceneToLoad)
}

func TestUpdate_ObjectivesWinTiesWithTimeout(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	require.NoError(t, h.ctrl.Activate(context.Background()))
	h.run(4 * time.Second)

	h.tracker.allDone = true
	h.timer.finite = true
	h.timer.over = true
	h.run(tick)

	assert.Equal(t, Won, h.ctrl.State())
}

func TestUpdate_TerminalStateNeverReverts(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	require.NoError(t, h.ctrl.Activate(context.Background()))

	h.timer.finite = true
	h.timer.over = true
	h.run(tick)
	require.Equal(t, Lost, h.ctrl.State())

	h.tracker.allDone = true
	h.ctrl.EndGame(true)
	for i := 0; i < 1000; i++ {
		h.run(tick)
		require.Equal(t, Lost, h.ctrl.State())
	}

	assert.Len(t, h.ends, 1)
	assert.Equal(t, 2, h.timer.stopped, "one stop at activation, one at the end")
}

func TestEndSequence_FadeThenLoadOnce(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EndSceneLoadDelay = 3 * time.Second
	cfg.DelayBeforeFadeToBlack = 4 * time.Second
	h := newHarness(t, cfg)
	require.NoError(t, h.ctrl.Activate(context.Background()))
	h.run(5 * time.Second)

	h.tracker.allDone = true
	h.run(tick)
	end, ok := h.ctrl.EndSequence()
	require.True(t, ok)
	start := end.StartedAt

	h.run(3*time.Second - tick)
	assert.Empty(t, h.fade.alphas, "no fade before the end scene load delay")
	assert.Empty(t, h.scenes.loads)

	h.run(20 * time.Second)

	require.NotEmpty(t, h.fade.alphaAt)
	assert.GreaterOrEqual(t, h.fade.alphaAt[0], start+3*time.Second)
	require.Equal(t, []string{"WinScene"}, h.scenes.loads)
	assert.InDelta(t, (start + 7*time.Second).Seconds(), h.scenes.loadAt[0].Seconds(), tick.Seconds())
	assert.GreaterOrEqual(t, h.scenes.loadAt[0], start+7*time.Second)
	assert.True(t, h.ctrl.Done())

	last := h.fade.alphas[len(h.fade.alphas)-1]
	assert.InDelta(t, 1.0, last, 1e-9)
}

func TestEndSequence_VolumeFollowsLiteralFormula(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EndSceneLoadDelay = 3 * time.Second
	cfg.DelayBeforeFadeToBlack = 4 * time.Second
	h := newHarness(t, cfg)
	require.NoError(t, h.ctrl.Activate(context.Background()))
	h.tracker.allDone = true
	h.run(tick)
	require.Equal(t, Won, h.ctrl.State())

	h.volume.volumes = nil
	h.run(8 * time.Second)

	require.Equal(t, len(h.fade.alphas), len(h.volume.volumes))
	for i, ratio := range h.fade.alphas {
		assert.InDelta(t, MasterVolume(ratio), h.volume.volumes[i], 1e-12)
	}

	// The fade opens with timeRatio = 1 - 4/3 < 0, so the volume first
	// rises back to 1 before falling to 0.
	first := h.volume.volumes[0]
	assert.InDelta(t, 2.0/3.0, first, 0.01)
	maxVol := 0.0
	for _, v := range h.volume.volumes {
		maxVol = max(maxVol, v)
	}
	assert.InDelta(t, 1.0, maxVol, 0.01)
	assert.InDelta(t, 0.0, h.volume.volumes[len(h.volume.volumes)-1], 1e-9)
}

func TestMasterVolume(t *testing.T) {
	tests := []struct {
		ratio float64
		want  float64
	}{
		{-2, 0},
		{-1, 0},
		{-1.0 / 3.0, 2.0 / 3.0},
		{0, 1},
		{0.25, 0.75},
		{0.5, 0.5},
		{1, 0},
		{1.5, 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, MasterVolume(tt.ratio), 1e-12, "ratio %v", tt.ratio)
	}
}
