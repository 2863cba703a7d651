package game

import (
	"bytes"
	"fmt"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/mpihlak/ebiten-karting/pkg/raceflow"
)

const sampleRate = 44100

// player is the part of *audio.Player the mixer drives.
type player interface {
	Play()
	SetVolume(float64)
	IsPlaying() bool
}

type channel struct {
	p    player
	gain float64
	loop bool
}

// Mixer owns every sound of a race and applies a master volume on top of
// each sound's own gain. A Mixer without an audio context stays silent but
// still tracks volume and schedules.
type Mixer struct {
	ctx   *audio.Context
	clock raceflow.Clock

	master   float64
	channels []channel
	pending  []*Sound
}

func NewMixer(ctx *audio.Context, clock raceflow.Clock) *Mixer {
	return &Mixer{ctx: ctx, clock: clock, master: 1}
}

// SetMasterVolume clamps v to [0, 1] and applies it to every sound.
func (m *Mixer) SetMasterVolume(v float64) {
	m.master = min(1, max(0, v))
	for _, ch := range m.channels {
		ch.p.SetVolume(ch.gain * m.master)
	}
}

func (m *Mixer) MasterVolume() float64 { return m.master }

func (m *Mixer) attach(p player, gain float64, loop bool) {
	p.SetVolume(gain * m.master)
	m.channels = append(m.channels, channel{p: p, gain: gain, loop: loop})
}

// Loop starts pcm as an endless background loop.
func (m *Mixer) Loop(pcm []byte, gain float64) error {
	if m.ctx == nil {
		return nil
	}
	p, err := m.ctx.NewPlayerF32(audio.NewInfiniteLoopF32(bytes.NewReader(pcm), int64(len(pcm))))
	if err != nil {
		return fmt.Errorf("new loop player: %w", err)
	}
	m.attach(p, gain, true)
	p.Play()
	return nil
}

// Update starts scheduled sounds that are due and forgets finished ones.
func (m *Mixer) Update() {
	now := m.clock.RealNow()
	waiting := m.pending[:0]
	for _, s := range m.pending {
		if now < s.dueAt {
			waiting = append(waiting, s)
			continue
		}
		s.scheduled = false
		if p := s.newPlayer(); p != nil {
			m.attach(p, s.gain, false)
			p.Play()
		}
	}
	m.pending = waiting

	live := m.channels[:0]
	for _, ch := range m.channels {
		if ch.loop || ch.p.IsPlaying() {
			live = append(live, ch)
		}
	}
	m.channels = live
}

// Pause stops every loop, used when the race scene is torn down.
func (m *Mixer) Pause() {
	for _, ch := range m.channels {
		if pp, ok := ch.p.(interface{ Pause() }); ok {
			pp.Pause()
		}
	}
	m.pending = nil
}

// Sound is a one-shot sound that can be scheduled ahead of time.
type Sound struct {
	mixer     *Mixer
	gain      float64
	newPlayer func() player

	dueAt     time.Duration
	scheduled bool
}

func (m *Mixer) NewSound(pcm []byte, gain float64) *Sound {
	return &Sound{
		mixer: m,
		gain:  gain,
		newPlayer: func() player {
			if m.ctx == nil {
				return nil
			}
			return m.ctx.NewPlayerF32FromBytes(pcm)
		},
	}
}

// PlayScheduled plays the sound once delay has passed on the unscaled clock.
// Scheduling again before it played moves the due time.
func (s *Sound) PlayScheduled(delay time.Duration) {
	s.dueAt = s.mixer.clock.RealNow() + delay
	if !s.scheduled {
		s.scheduled = true
		s.mixer.pending = append(s.mixer.pending, s)
	}
}

func (s *Sound) Scheduled() bool { return s.scheduled }

// ---- Synthesis -----------------------------------------------------------

// putStereoF32 writes a [-1,1] sample as float32 LE to both channels of
// frame i.
func putStereoF32(buf []byte, i int, sample float64) {
	v := math.Float32bits(float32(sample))
	for ch := 0; ch < 2; ch++ {
		o := i*8 + ch*4
		buf[o] = byte(v)
		buf[o+1] = byte(v >> 8)
		buf[o+2] = byte(v >> 16)
		buf[o+3] = byte(v >> 24)
	}
}

// adsr returns an envelope at normalized progress [0,1].
// attack/decay/release are fractions of the total duration.
func adsr(progress, attack, decay, sustain, release float64) float64 {
	switch {
	case progress < attack:
		return progress / attack
	case progress < attack+decay:
		return 1.0 - (progress-attack)/decay*(1.0-sustain)
	case progress < 1.0-release:
		return sustain
	default:
		return sustain * (1.0 - (progress-(1.0-release))/release)
	}
}

// framesFor is the number of sample frames in d.
func framesFor(d time.Duration) int {
	return int(d.Seconds() * sampleRate)
}

// synthNotes renders a melody; a frequency of 0 is a rest.
func synthNotes(notes []float64, noteLen time.Duration, gain float64) []byte {
	perNote := framesFor(noteLen)
	buf := make([]byte, len(notes)*perNote*8)
	for n, freq := range notes {
		if freq == 0 {
			continue
		}
		for i := 0; i < perNote; i++ {
			t := float64(i) / sampleRate
			env := adsr(float64(i)/float64(perNote), 0.05, 0.2, 0.6, 0.3)
			s := math.Sin(2*math.Pi*freq*t)*0.7 + math.Sin(2*math.Pi*freq*2*t)*0.2
			putStereoF32(buf, n*perNote+i, s*env*gain)
		}
	}
	return buf
}

// victoryJingle is a rising C major arpeggio.
func victoryJingle() []byte {
	return synthNotes([]float64{523.25, 659.25, 783.99, 1046.50, 0, 783.99, 1046.50, 1046.50}, 140*time.Millisecond, 0.6)
}

// engineHum is one second of idling engine. 55 Hz fits the second exactly so
// the buffer loops without a click.
func engineHum() []byte {
	frames := sampleRate
	buf := make([]byte, frames*8)
	for i := 0; i < frames; i++ {
		t := float64(i) / sampleRate
		phase := math.Mod(55*t, 1)
		saw := 2*phase - 1
		wobble := 0.8 + 0.2*math.Sin(2*math.Pi*5*t)
		putStereoF32(buf, i, saw*wobble*0.15)
	}
	return buf
}
