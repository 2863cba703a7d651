package raceflow

import (
	"log"
	"time"
)

// RaceTimer is the race clock the controller starts, stops and polls.
type RaceTimer interface {
	StartRace()
	StopRace()
	IsFinite() bool
	IsOver() bool
}

// Objective is one entry of the objective list. Message may return nil.
type Objective interface {
	IsCompleted() bool
	Message() DisplayMessage
}

// ObjectiveTracker holds the ordered objective list. The list may be empty
// at activation and filled in later.
type ObjectiveTracker interface {
	Objectives() []Objective
	AreAllObjectivesCompleted() bool
}

// MovementGate lets a single kart accept or ignore movement input.
type MovementGate interface {
	SetCanMove(bool)
}

// DisplayMessage is an on-screen message surface.
type DisplayMessage interface {
	Display()
	SetDelayBeforeShowing(time.Duration)
	SetVisible(bool)
}

type SceneLoader interface {
	LoadScene(name string)
}

// Cue is a fire-and-forget presentation trigger such as the countdown
// animation.
type Cue interface {
	Play()
}

type FadeOverlay interface {
	SetVisible(bool)
	SetAlpha(float64)
}

// VolumeControl is the audio ducking capability. Volume is in [0, 1].
type VolumeControl interface {
	SetMasterVolume(float64)
}

// SoundPlayer plays a prepared sound once delay has passed.
type SoundPlayer interface {
	PlayScheduled(delay time.Duration)
}

// PointerLock releases the host's pointer so end-of-race UI is clickable.
type PointerLock interface {
	Unlock()
}

// Deps are the collaborators handed to a Controller. Timer, Objectives,
// Karts and Clock are required; the rest may be left nil.
type Deps struct {
	Timer      RaceTimer
	Objectives ObjectiveTracker
	Karts      []MovementGate
	Clock      Clock

	Countdown    Cue
	WinMessage   DisplayMessage
	LoseMessage  DisplayMessage
	Fade         FadeOverlay
	Volume       VolumeControl
	VictorySound SoundPlayer
	Pointer      PointerLock
	Scenes       SceneLoader

	// OnEnd is called once, right after the terminal transition.
	OnEnd func(EndGameSequence)

	Logger *log.Logger
}
