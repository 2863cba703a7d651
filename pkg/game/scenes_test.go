package game

import (
	"errors"
	"io"
	"log"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

type fakeScene struct {
	updates int
	closed  int
}

func (s *fakeScene) Update() error            { s.updates++; return nil }
func (s *fakeScene) Draw(screen *ebiten.Image) {}
func (s *fakeScene) Close()                   { s.closed++ }

func newTestSceneManager() (*SceneManager, map[string]*fakeScene) {
	sm := NewSceneManager(log.New(io.Discard, "", 0))
	built := make(map[string]*fakeScene)
	for _, name := range []string{"Race", "WinScene"} {
		name := name
		sm.Register(name, func() (Scene, error) {
			s := &fakeScene{}
			built[name] = s
			return s, nil
		})
	}
	return sm, built
}

func TestSceneManagerLoadsOnNextUpdate(t *testing.T) {
	sm, built := newTestSceneManager()

	sm.LoadScene("Race")
	if sm.Current() != "" {
		t.Fatalf("Current() = %q before Update, want empty", sm.Current())
	}

	if err := sm.Update(); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if sm.Current() != "Race" {
		t.Errorf("Current() = %q, want Race", sm.Current())
	}
	if built["Race"].updates != 1 {
		t.Errorf("race updates = %d, want 1", built["Race"].updates)
	}
}

func TestSceneManagerClosesReplacedScene(t *testing.T) {
	sm, built := newTestSceneManager()
	sm.LoadScene("Race")
	sm.Update()

	sm.LoadScene("WinScene")
	if err := sm.Update(); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if built["Race"].closed != 1 {
		t.Errorf("race closed %d times, want 1", built["Race"].closed)
	}
	if sm.Current() != "WinScene" {
		t.Errorf("Current() = %q, want WinScene", sm.Current())
	}

	sm.Close()
	if built["WinScene"].closed != 1 {
		t.Errorf("win scene closed %d times, want 1", built["WinScene"].closed)
	}
}

func TestSceneManagerUnknownScene(t *testing.T) {
	sm, built := newTestSceneManager()
	sm.LoadScene("Race")
	sm.Update()

	sm.LoadScene("Credits")
	err := sm.Update()
	if !errors.Is(err, ErrUnknownScene) {
		t.Fatalf("Update() error = %v, want ErrUnknownScene", err)
	}
	if sm.Current() != "Race" || built["Race"].closed != 0 {
		t.Error("failed load should keep the current scene")
	}
}

func TestSceneManagerFactoryError(t *testing.T) {
	sm, built := newTestSceneManager()
	sm.LoadScene("Race")
	sm.Update()

	boom := errors.New("boom")
	sm.Register("Broken", func() (Scene, error) { return nil, boom })
	sm.LoadScene("Broken")

	if err := sm.Update(); !errors.Is(err, boom) {
		t.Fatalf("Update() error = %v, want %v", err, boom)
	}
	if built["Race"].closed != 0 {
		t.Error("failed load should not close the current scene")
	}
}
