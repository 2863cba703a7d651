package race

import (
	"github.com/mpihlak/ebiten-karting/pkg/geometry"
	"github.com/mpihlak/ebiten-karting/pkg/raceflow"
)

// Objective is a checkpoint the player kart has to pass.
type Objective struct {
	Title      string
	Checkpoint geometry.Point
	Radius     float64

	message   raceflow.DisplayMessage
	completed bool
}

func (o *Objective) IsCompleted() bool { return o.completed }

// Message returns the objective's announcement, or nil if it has none.
func (o *Objective) Message() raceflow.DisplayMessage { return o.message }

func (o *Objective) SetMessage(m raceflow.DisplayMessage) { o.message = m }

// Reached reports whether pos is inside the checkpoint.
func (o *Objective) Reached(pos geometry.Point) bool {
	return pos.Distance(o.Checkpoint) <= o.Radius
}

// Objectives is the ordered objective list. Checkpoints have to be passed
// in order; reaching a later checkpoint early does not count.
type Objectives struct {
	list []*Objective
	next int

	// OnComplete is called each time an objective is completed.
	OnComplete func(*Objective)
}

// Register appends an objective to the end of the list.
func (t *Objectives) Register(o *Objective) {
	t.list = append(t.list, o)
}

func (t *Objectives) Objectives() []raceflow.Objective {
	out := make([]raceflow.Objective, len(t.list))
	for i, o := range t.list {
		out[i] = o
	}
	return out
}

// AreAllObjectivesCompleted is false for an empty list.
func (t *Objectives) AreAllObjectivesCompleted() bool {
	return len(t.list) > 0 && t.next >= len(t.list)
}

// Update completes the next objective if pos has reached it and returns it,
// or returns nil.
func (t *Objectives) Update(pos geometry.Point) *Objective {
	o := t.Next()
	if o == nil || !o.Reached(pos) {
		return nil
	}
	o.completed = true
	t.next++
	if t.OnComplete != nil {
		t.OnComplete(o)
	}
	return o
}

// Next is the first objective not yet completed, or nil.
func (t *Objectives) Next() *Objective {
	if t.next >= len(t.list) {
		return nil
	}
	return t.list[t.next]
}

func (t *Objectives) Completed() int { return t.next }
func (t *Objectives) Len() int       { return len(t.list) }

// All returns the objectives in order.
func (t *Objectives) All() []*Objective { return t.list }
