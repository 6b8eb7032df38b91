// path_finding contains the best-first search engine and the route operations built on
// it: reconstruction, waypoint chaining, repair, and the potential based local step.
package path_finding

import (
	"math"

	"gridpath/grid_world"
	"gridpath/movement_cost"
	"gridpath/priority_queue"
)

// MaxValidNodes is the default node budget of a search.
const MaxValidNodes = 10000

// Validator decides whether a position may be entered. It must reject out of bounds
// positions and positions held by blocking entities.
type Validator interface {
	IsValidPoint(pos grid_world.Position) bool
}

// ValidatorFunc adapts a plain predicate to a Validator.
type ValidatorFunc func(pos grid_world.Position) bool

func (fn ValidatorFunc) IsValidPoint(pos grid_world.Position) bool {
	return fn(pos)
}

// PathFinder owns the cost strategies and validity predicate used by every search it runs.
type PathFinder struct {
	movementCost  movement_cost.Strategy
	heuristicCost movement_cost.Strategy
	validator     Validator
	width, height int
	maxNodes      int
}

// NewPathFinder returns a finder with the default node budget and map backed stores.
func NewPathFinder(
	movementCost movement_cost.Strategy,
	heuristicCost movement_cost.Strategy,
	validator Validator,
) *PathFinder {
	return &PathFinder{
		movementCost:  movementCost,
		heuristicCost: heuristicCost,
		validator:     validator,
		maxNodes:      MaxValidNodes,
	}
}

// WithBounds makes the finder allocate flat array stores for a grid of the given size.
func (pf *PathFinder) WithBounds(width, height int) *PathFinder {
	pf.width = width
	pf.height = height
	return pf
}

// WithMaxNodes sets the node budget used by FindPath and the operations built on it.
func (pf *PathFinder) WithMaxNodes(maxNodes int) *PathFinder {
	pf.maxNodes = maxNodes
	return pf
}

func (pf *PathFinder) MaxNodes() int {
	return pf.maxNodes
}

func (pf *PathFinder) newStore() *Store {
	return NewStore(pf.width, pf.height)
}

// GenericAStar runs the best-first search from start to goal using moves as neighbor
// offsets. The frontier is keyed by movement(cur, n) + heuristic(n, goal) and a neighbor
// is only admitted when that total does not exceed cost(cur) + heuristic(cur, goal).
// This filter keeps the frontier small but can discard detours that lead away from the
// goal, so routes are not guaranteed optimal and reachable goals may be missed.
//
// The search returns the store when the goal is popped or when the budget, decremented
// by the number of valid neighbors of each expansion, runs out; in the latter case the
// store is partial. An exhausted frontier returns an empty store.
func (pf *PathFinder) GenericAStar(
	moves grid_world.MoveTemplate,
	start, goal grid_world.Position,
	maxNodes int,
) *Store {
	queue := priority_queue.NewWithTieBreak(grid_world.Position.Less)
	queue.Push(pf.heuristicCost.Cost(start, goal), start)

	store := pf.newStore()
	store.Put(start, Record{Cost: 0, Parent: start})

	for !queue.IsEmpty() {
		cur, _, _ := queue.Pop()
		if cur == goal || maxNodes <= 0 {
			return store
		}
		curRec, _ := store.Get(cur)
		bound := curRec.Cost + pf.heuristicCost.Cost(cur, goal)

		var valid []grid_world.Position
		for _, next := range moves.Apply(cur) {
			if pf.validator.IsValidPoint(next) {
				valid = append(valid, next)
			}
		}
		maxNodes -= len(valid)

		for _, next := range valid {
			step := pf.movementCost.Cost(cur, next)
			total := step + pf.heuristicCost.Cost(next, goal)
			if total > bound || store.Has(next) {
				continue
			}
			store.Put(next, Record{Cost: curRec.Cost + step, Parent: cur})
			queue.Push(total, next)
		}
	}

	return pf.newStore()
}

// PathFromStore walks the parent links back from goal. It stops at the start, which is
// its own parent, or at a position missing from the store, so an unreached goal gives
// an empty route.
func PathFromStore(goal grid_world.Position, store *Store) grid_world.Route {
	var route grid_world.Route
	cur := goal
	for {
		rec, ok := store.Get(cur)
		if !ok || rec.Parent == cur {
			break
		}
		route = append(route, cur)
		cur = rec.Parent
	}
	for i, j := 0, len(route)-1; i < j; i, j = i+1, j-1 {
		route[i], route[j] = route[j], route[i]
	}
	return route
}

// FindPath returns the route from start to goal, empty if there is none or start is goal.
func (pf *PathFinder) FindPath(moves grid_world.MoveTemplate, start, goal grid_world.Position) grid_world.Route {
	route, _ := pf.FindPathWithStore(moves, start, goal)
	return route
}

// FindPathWithStore is FindPath that also returns the search store for inspection.
func (pf *PathFinder) FindPathWithStore(
	moves grid_world.MoveTemplate,
	start, goal grid_world.Position,
) (grid_world.Route, *Store) {
	store := pf.GenericAStar(moves, start, goal, pf.maxNodes)
	if store.Len() == 0 {
		return nil, store
	}
	return PathFromStore(goal, store), store
}

// FindStep returns the first step from start towards goal. The bool is false when there
// is no route or no step is needed.
func (pf *PathFinder) FindStep(moves grid_world.MoveTemplate, start, goal grid_world.Position) (grid_world.Position, bool) {
	return pf.FindPath(moves, start, goal).Head()
}

// FindPathWaypoints plans through each consecutive pair of waypoints and concatenates
// the segments; every junction appears once. Waypoints include the start and the final
// goal. If any segment cannot reach its end the whole route is empty. The returned store
// merges the segment stores, later segments overwriting earlier ones.
func (pf *PathFinder) FindPathWaypoints(
	moves grid_world.MoveTemplate,
	waypoints []grid_world.Position,
) (grid_world.Route, *Store) {
	merged := pf.newStore()
	if len(waypoints) < 2 {
		return nil, merged
	}

	var route grid_world.Route
	failed := false
	for i := 1; i < len(waypoints); i++ {
		start, end := waypoints[i-1], waypoints[i]
		store := pf.GenericAStar(moves, start, end, pf.maxNodes)
		merged.Merge(store)
		if !store.Has(end) {
			failed = true
			continue
		}
		route = append(route, PathFromStore(end, store)...)
	}

	if failed {
		return nil, merged
	}
	return route, merged
}

// RepairPath replans the first part of prev: a fresh route from current to the cell at
// index horizon of prev (its last cell when horizon is past the end), followed by the
// untouched remainder of prev. The result is empty when prev is, or when the fresh
// route cannot be found.
func (pf *PathFinder) RepairPath(
	moves grid_world.MoveTemplate,
	current grid_world.Position,
	prev grid_world.Route,
	horizon int,
) grid_world.Route {
	if prev.Empty() {
		return nil
	}
	if horizon < 0 {
		horizon = 0
	}
	if horizon >= len(prev) {
		horizon = len(prev) - 1
	}

	target := prev[horizon]
	fresh := pf.FindPath(moves, current, target)
	if fresh.Empty() && current != target {
		return nil
	}
	return append(fresh, prev[horizon+1:]...)
}

// Rejoin plans from current back to the head of prev, after a unit left its route, and
// splices the rest of prev after it.
func (pf *PathFinder) Rejoin(
	moves grid_world.MoveTemplate,
	current grid_world.Position,
	prev grid_world.Route,
) grid_world.Route {
	head, rest, ok := prev.PopFront()
	if !ok {
		return nil
	}
	correction := pf.FindPath(moves, current, head)
	if correction.Empty() && current != head {
		return nil
	}
	return append(correction, rest...)
}

// BestPotentialStep returns the valid next cell of the agent with the minimum aggregate
// potential, ties broken by position order. The agent's current cell is not a candidate,
// so a unit can move back and forth between two equally attractive cells. The bool is
// false when the agent has no valid move or every move is forbidden.
func (pf *PathFinder) BestPotentialStep(world *grid_world.World, agent grid_world.Agent) (grid_world.Position, bool) {
	candidates := world.ValidNextPositions(agent)
	var allowed []grid_world.ScoredPosition
	for _, scored := range world.NextPositionPotential(agent, candidates) {
		if !math.IsInf(scored.Potential, 1) {
			allowed = append(allowed, scored)
		}
	}
	return grid_world.Best(allowed)
}
