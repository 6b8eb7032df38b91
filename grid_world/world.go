package grid_world

import (
	"math"
	"sort"
)

// FieldObject is anything contributing a scalar potential at a position: positive
// repels, negative attracts, +Inf forbids.
type FieldObject interface {
	PotentialAt(pos Position) float64
}

// Entity is a persistent, positioned field object such as a unit.
type Entity interface {
	FieldObject
	Position() Position
}

// Agent is the view of a unit needed for local step decisions.
type Agent interface {
	Position() Position
	NextPositions() []Position
	CanSeePoint(pos Position) bool
}

// ScoredPosition is a candidate cell and its aggregate potential.
type ScoredPosition struct {
	Potential float64
	Pos       Position
}

// World holds the static grid plus the live collections of field objects. Active
// entities persist across turns; mock objects are transient and are replaced wholesale
// by the turn scheduler. World is not safe for concurrent use: at most one mutation
// happens between turns, performed by the scheduler.
type World struct {
	Static  *Grid
	Active  []Entity
	Mock    []FieldObject
	Special map[string][]Position

	occupied map[Position]int
}

// NewWorld returns a world over the passed static grid.
func NewWorld(static *Grid, special map[string][]Position) *World {
	if special == nil {
		special = map[string][]Position{}
	}
	return &World{
		Static:   static,
		Special:  special,
		occupied: map[Position]int{},
	}
}

// IsValidPoint reports whether pos is in bounds, passable and not occupied by a
// blocking entity.
func (w *World) IsValidPoint(pos Position) bool {
	if !w.Static.IsPassable(pos) {
		return false
	}
	return w.occupied[pos] == 0
}

// Occupy marks pos as blocked by an entity. Occupancy is counted, so two entities
// sharing a cell must both vacate it.
func (w *World) Occupy(pos Position) {
	w.occupied[pos]++
}

// Vacate releases one occupation of pos.
func (w *World) Vacate(pos Position) {
	if n := w.occupied[pos]; n > 1 {
		w.occupied[pos] = n - 1
		return
	}
	delete(w.occupied, pos)
}

// IsOccupied reports whether any blocking entity holds pos.
func (w *World) IsOccupied(pos Position) bool {
	return w.occupied[pos] > 0
}

// AddActive adds a persistent entity.
func (w *World) AddActive(e Entity) {
	w.Active = append(w.Active, e)
}

// RemoveActive removes a persistent entity; this is how units are destroyed.
func (w *World) RemoveActive(e Entity) bool {
	for i, active := range w.Active {
		if active == e {
			w.Active = append(w.Active[:i], w.Active[i+1:]...)
			return true
		}
	}
	return false
}

// SetMock replaces the transient field objects.
func (w *World) SetMock(objects ...FieldObject) {
	w.Mock = objects
}

// ValidNextPositions applies the agent's move template to its position and keeps the
// valid cells.
func (w *World) ValidNextPositions(agent Agent) []Position {
	var valid []Position
	for _, pos := range agent.NextPositions() {
		if w.IsValidPoint(pos) {
			valid = append(valid, pos)
		}
	}
	return valid
}

// VisibleEntities returns the active entities the agent can see, excluding the agent.
func (w *World) VisibleEntities(agent Agent) []FieldObject {
	var visible []FieldObject
	for _, e := range w.Active {
		if isSelf(e, agent) {
			continue
		}
		if agent.CanSeePoint(e.Position()) {
			visible = append(visible, e)
		}
	}
	return visible
}

func isSelf(e Entity, agent Agent) bool {
	other, ok := agent.(Entity)
	return ok && other == e
}

// AggregatePotential sums the potential of every object at each candidate. +Inf is
// absorbing: a forbidden cell stays forbidden regardless of attractors on it.
func (w *World) AggregatePotential(candidates []Position, objects []FieldObject) []ScoredPosition {
	scored := make([]ScoredPosition, len(candidates))
	for i, pos := range candidates {
		scored[i] = ScoredPosition{
			Potential: SumPotential(pos, objects),
			Pos:       pos,
		}
	}
	return scored
}

// NextPositionPotential scores the candidates against the mock objects and every
// active entity visible to the agent.
func (w *World) NextPositionPotential(agent Agent, candidates []Position) []ScoredPosition {
	objects := make([]FieldObject, 0, len(w.Mock)+len(w.Active))
	objects = append(objects, w.Mock...)
	objects = append(objects, w.VisibleEntities(agent)...)
	return w.AggregatePotential(candidates, objects)
}

// FieldPotential is the potential of pos under every mock and active object, ignoring
// visibility. It is used for display.
func (w *World) FieldPotential(pos Position) float64 {
	objects := make([]FieldObject, 0, len(w.Mock)+len(w.Active))
	objects = append(objects, w.Mock...)
	for _, e := range w.Active {
		objects = append(objects, e)
	}
	return SumPotential(pos, objects)
}

// SumPotential adds up the potential of the objects at pos.
func SumPotential(pos Position, objects []FieldObject) float64 {
	total := 0.0
	for _, obj := range objects {
		p := obj.PotentialAt(pos)
		if math.IsInf(p, 1) {
			return math.Inf(1)
		}
		total += p
	}
	return total
}

// Best returns the candidate with the minimum potential, ties broken by position order.
func Best(scored []ScoredPosition) (Position, bool) {
	if len(scored) == 0 {
		return Position{}, false
	}
	sorted := make([]ScoredPosition, len(scored))
	copy(sorted, scored)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Potential != sorted[j].Potential {
			return sorted[i].Potential < sorted[j].Potential
		}
		return sorted[i].Pos.Less(sorted[j].Pos)
	})
	return sorted[0].Pos, true
}
