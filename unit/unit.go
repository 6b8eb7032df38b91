// unit is the agent of the planner: a positioned field object with its own movement
// style, sight, cost strategy and held route.
package unit

import (
	"fmt"
	"math"

	"gridpath/grid_world"
	"gridpath/movement_cost"
	"gridpath/path_finding"
	"gridpath/potential"
)

// Outcome describes what a unit did on its turn.
type Outcome int

const (
	// Arrived units have no route left and did not move.
	Arrived Outcome = iota
	// Followed units stepped onto the head of their route.
	Followed
	// Deviated units took the best potential step instead of the route head.
	Deviated
	// Blocked units had no allowed step and stayed put.
	Blocked
)

func (o Outcome) String() string {
	switch o {
	case Arrived:
		return "arrived"
	case Followed:
		return "followed"
	case Deviated:
		return "deviated"
	case Blocked:
		return "blocked"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Unit implements grid_world.Entity and grid_world.Agent. Its position only changes
// through its own MoveTo and Advance.
type Unit struct {
	ID        string
	pos       grid_world.Position
	potential potential.Func
	moves     grid_world.MoveTemplate
	moveCost  movement_cost.Strategy
	sight     grid_world.MoveTemplate
	route     grid_world.Route
	goal      grid_world.Position
}

// New returns a unit at pos. A nil potential function makes the unit inert.
func New(
	id string,
	pos grid_world.Position,
	potentialFn potential.Func,
	moves grid_world.MoveTemplate,
	moveCost movement_cost.Strategy,
	sight grid_world.MoveTemplate,
) *Unit {
	if potentialFn == nil {
		potentialFn = potential.InertRepel
	}
	return &Unit{
		ID:        id,
		pos:       pos,
		potential: potentialFn,
		moves:     moves,
		moveCost:  moveCost,
		sight:     sight,
		goal:      pos,
	}
}

// Copy returns a unit of the same kind at pos, without a route.
func (u *Unit) Copy(id string, pos grid_world.Position) *Unit {
	return New(id, pos, u.potential, u.moves, u.moveCost, u.sight)
}

func (u *Unit) Position() grid_world.Position        { return u.pos }
func (u *Unit) Moves() grid_world.MoveTemplate       { return u.moves }
func (u *Unit) Sight() grid_world.MoveTemplate       { return u.sight }
func (u *Unit) MoveCost() movement_cost.Strategy     { return u.moveCost }
func (u *Unit) Goal() grid_world.Position            { return u.goal }
func (u *Unit) Route() grid_world.Route              { return u.route.Clone() }
func (u *Unit) NextPositions() []grid_world.Position { return u.moves.Apply(u.pos) }

// CurrentSight returns the cells the unit sees from where it stands.
func (u *Unit) CurrentSight() []grid_world.Position {
	return u.sight.Apply(u.pos)
}

func (u *Unit) CanSeePoint(pos grid_world.Position) bool {
	return u.sight.Contains(pos.Sub(u.pos))
}

func (u *Unit) CanSee(other grid_world.Entity) bool {
	return u.CanSeePoint(other.Position())
}

// VisibleFrom reports whether other can see this unit.
func (u *Unit) VisibleFrom(other *Unit) bool {
	return other.CanSeePoint(u.pos)
}

func (u *Unit) PotentialAt(pos grid_world.Position) float64 {
	return u.potential(u.pos, pos)
}

// SetRoute replaces the held route. The goal becomes the last cell of the route.
func (u *Unit) SetRoute(route grid_world.Route) {
	u.route = route.Clone()
	if last, ok := route.Last(); ok {
		u.goal = last
	}
}

// PopRoute removes and returns the head of the held route.
func (u *Unit) PopRoute() (grid_world.Position, bool) {
	head, rest, ok := u.route.PopFront()
	u.route = rest
	return head, ok
}

// Plan computes the route through waypoints, which start at the unit's position.
// The route is empty when any leg is unreachable.
func (u *Unit) Plan(finder *path_finding.PathFinder, waypoints ...grid_world.Position) grid_world.Route {
	points := append([]grid_world.Position{u.pos}, waypoints...)
	route, _ := finder.FindPathWaypoints(u.moves, points)
	u.route = route
	if len(waypoints) > 0 {
		u.goal = waypoints[len(waypoints)-1]
	}
	return u.Route()
}

// MoveTo relocates the unit and its occupancy in the world.
func (u *Unit) MoveTo(world *grid_world.World, pos grid_world.Position) {
	world.Vacate(u.pos)
	u.pos = pos
	world.Occupy(pos)
}

// Advance takes one turn. The unit follows its route while the head is enterable and
// not forbidden by the field; otherwise it takes the best potential step and replans
// back onto the route: first by rejoining at the head, then by repairing up to horizon
// steps ahead, finally by planning to its goal afresh.
func (u *Unit) Advance(world *grid_world.World, finder *path_finding.PathFinder, horizon int) Outcome {
	head, ok := u.route.Head()
	if !ok {
		return Arrived
	}

	if world.IsValidPoint(head) {
		scored := world.NextPositionPotential(u, []grid_world.Position{head})
		if !math.IsInf(scored[0].Potential, 1) {
			u.PopRoute()
			u.MoveTo(world, head)
			return Followed
		}
	}

	step, ok := finder.BestPotentialStep(world, u)
	if !ok {
		return Blocked
	}
	prev := u.route
	u.MoveTo(world, step)

	if idx := prev.IndexOf(step); idx >= 0 {
		u.route = prev[idx+1:]
		return Deviated
	}
	route := finder.Rejoin(u.moves, step, prev)
	if route.Empty() {
		route = finder.RepairPath(u.moves, step, prev, horizon)
	}
	if route.Empty() && step != u.goal {
		route = finder.FindPath(u.moves, step, u.goal)
	}
	u.route = route
	return Deviated
}
