package game

import (
	"errors"
	"fmt"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
)

var ErrUnknownScene = errors.New("unknown scene")

// Scene is one screen of the game.
type Scene interface {
	Update() error
	Draw(screen *ebiten.Image)
	// Close releases the scene when another one replaces it.
	Close()
}

type SceneFactory func() (Scene, error)

// SceneManager owns the active scene. Scene changes requested with
// LoadScene take effect at the start of the next Update, so the scene that
// asked for the change finishes its frame first.
type SceneManager struct {
	factories map[string]SceneFactory
	current   Scene
	name      string
	pending   string
	logger    *log.Logger
}

func NewSceneManager(logger *log.Logger) *SceneManager {
	if logger == nil {
		logger = log.Default()
	}
	return &SceneManager{
		factories: make(map[string]SceneFactory),
		logger:    logger,
	}
}

func (sm *SceneManager) Register(name string, f SceneFactory) {
	sm.factories[name] = f
}

// LoadScene requests a switch to the named scene.
func (sm *SceneManager) LoadScene(name string) {
	sm.pending = name
}

// Current returns the active scene's name.
func (sm *SceneManager) Current() string { return sm.name }

func (sm *SceneManager) switchScene(name string) error {
	f, ok := sm.factories[name]
	if !ok {
		return fmt.Errorf("load scene %q: %w", name, ErrUnknownScene)
	}
	next, err := f()
	if err != nil {
		return fmt.Errorf("load scene %q: %w", name, err)
	}
	if sm.current != nil {
		sm.current.Close()
	}
	sm.current = next
	sm.name = name
	sm.logger.Printf("scene: %s", name)
	return nil
}

func (sm *SceneManager) Update() error {
	if sm.pending != "" {
		name := sm.pending
		sm.pending = ""
		if err := sm.switchScene(name); err != nil {
			return err
		}
	}
	if sm.current == nil {
		return nil
	}
	return sm.current.Update()
}

func (sm *SceneManager) Draw(screen *ebiten.Image) {
	if sm.current != nil {
		sm.current.Draw(screen)
	}
}

// Close releases the active scene.
func (sm *SceneManager) Close() {
	if sm.current != nil {
		sm.current.Close()
		sm.current = nil
	}
}
