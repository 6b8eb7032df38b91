package path_finding

import (
	"math"
	"testing"

	"gridpath/grid_world"
	"gridpath/movement_cost"
	"gridpath/potential"

	. "github.com/smartystreets/goconvey/convey"
)

type stepper struct {
	pos   grid_world.Position
	moves grid_world.MoveTemplate
}

func (s *stepper) Position() grid_world.Position        { return s.pos }
func (s *stepper) NextPositions() []grid_world.Position { return s.moves.Apply(s.pos) }
func (s *stepper) CanSeePoint(grid_world.Position) bool { return true }

func newFinder(grid *grid_world.Grid) *PathFinder {
	return NewPathFinder(
		movement_cost.Linear(1),
		movement_cost.Linear(1),
		ValidatorFunc(grid.IsPassable),
	).WithBounds(grid.Width(), grid.Height())
}

func isUnitStep(a, b grid_world.Position) bool {
	return grid_world.AdjacentLinear.Contains(b.Sub(a))
}

func TestStore(t *testing.T) {
	Convey("Given a bounded store", t, func() {
		store := NewStore(3, 3)
		origin := grid_world.Position{X: 0, Y: 0}
		store.Put(origin, Record{Cost: 0, Parent: origin})
		store.Put(grid_world.Position{X: 2, Y: 1}, Record{Cost: 3, Parent: origin})
		store.Put(grid_world.Position{X: -1, Y: 7}, Record{Cost: 9, Parent: origin})

		Convey("In and out of bounds keys are both kept", func() {
			So(store.Len(), ShouldEqual, 3)
			rec, ok := store.Get(grid_world.Position{X: -1, Y: 7})
			So(ok, ShouldBeTrue)
			So(rec.Cost, ShouldEqual, 9.0)
			So(store.Has(grid_world.Position{X: 1, Y: 1}), ShouldBeFalse)
		})

		Convey("Positions come back in insertion order", func() {
			store.Put(origin, Record{Cost: 1, Parent: origin})
			So(store.Positions(), ShouldResemble, []grid_world.Position{{X: 0, Y: 0}, {X: 2, Y: 1}, {X: -1, Y: 7}})
		})

		Convey("Merging overwrites with the later store", func() {
			other := NewStore(0, 0)
			other.Put(grid_world.Position{X: 2, Y: 1}, Record{Cost: 1, Parent: grid_world.Position{X: 2, Y: 2}})
			other.Put(grid_world.Position{X: 1, Y: 2}, Record{Cost: 2, Parent: origin})
			store.Merge(other)

			So(store.Len(), ShouldEqual, 4)
			rec, _ := store.Get(grid_world.Position{X: 2, Y: 1})
			So(rec.Parent, ShouldResemble, grid_world.Position{X: 2, Y: 2})
		})
	})
}

func TestFindPath(t *testing.T) {
	moves := grid_world.AdjacentLinear

	Convey("Given a fully open 5x5 grid", t, func() {
		grid := grid_world.NewGrid(5, 5)
		finder := newFinder(grid)

		Convey("A start equal to the goal needs no steps", func() {
			route, store := finder.FindPathWithStore(moves, grid_world.Position{X: 3, Y: 3}, grid_world.Position{X: 3, Y: 3})
			So(route.Empty(), ShouldBeTrue)
			So(store.Len(), ShouldEqual, 1)

			_, ok := finder.FindStep(moves, grid_world.Position{X: 3, Y: 3}, grid_world.Position{X: 3, Y: 3})
			So(ok, ShouldBeFalse)
		})

		Convey("The origin to (2,2) takes four up or right steps", func() {
			route := finder.FindPath(moves, grid_world.Position{X: 0, Y: 0}, grid_world.Position{X: 2, Y: 2})
			So(len(route), ShouldEqual, 4)
			So(route, ShouldResemble, grid_world.Route{{X: 0, Y: 1}, {X: 0, Y: 2}, {X: 1, Y: 2}, {X: 2, Y: 2}})

			prev := grid_world.Position{X: 0, Y: 0}
			for _, pos := range route {
				step := pos.Sub(prev)
				So(step == grid_world.Position{X: 0, Y: 1} || step == grid_world.Position{X: 1, Y: 0}, ShouldBeTrue)
				prev = pos
			}

			step, ok := finder.FindStep(moves, grid_world.Position{X: 0, Y: 0}, grid_world.Position{X: 2, Y: 2})
			So(ok, ShouldBeTrue)
			So(step, ShouldResemble, grid_world.Position{X: 0, Y: 1})
		})

		Convey("A walled in goal is unreachable", func() {
			walled := grid.WithWalls(
				grid_world.Position{X: 2, Y: 1},
				grid_world.Position{X: 2, Y: 3},
				grid_world.Position{X: 1, Y: 2},
				grid_world.Position{X: 3, Y: 2},
			)
			route, store := newFinder(walled).FindPathWithStore(moves, grid_world.Position{X: 0, Y: 0}, grid_world.Position{X: 2, Y: 2})
			So(route.Empty(), ShouldBeTrue)
			So(store.Len(), ShouldEqual, 0)
		})

		Convey("A three cell block is detoured around", func() {
			blocked := []grid_world.Position{{X: 1, Y: 1}, {X: 1, Y: 2}, {X: 2, Y: 1}}
			route := newFinder(grid.WithWalls(blocked...)).FindPath(moves, grid_world.Position{X: 0, Y: 0}, grid_world.Position{X: 2, Y: 2})

			So(len(route), ShouldBeGreaterThan, 4)
			So(route, ShouldResemble, grid_world.Route{
				{X: 0, Y: 1}, {X: 0, Y: 2}, {X: 0, Y: 3}, {X: 1, Y: 3}, {X: 2, Y: 3}, {X: 2, Y: 2},
			})
			for _, pos := range blocked {
				So(route.IndexOf(pos), ShouldEqual, -1)
			}
		})
	})

	Convey("Given an open grid and a map backed store", t, func() {
		grid := grid_world.NewGrid(6, 6)
		finder := NewPathFinder(movement_cost.Linear(1), movement_cost.Linear(1), ValidatorFunc(grid.IsPassable))

		Convey("Route length is the manhattan distance", func() {
			pairs := [][2]grid_world.Position{
				{{X: 0, Y: 0}, {X: 5, Y: 5}},
				{{X: 5, Y: 5}, {X: 0, Y: 0}},
				{{X: 2, Y: 3}, {X: 4, Y: 0}},
				{{X: 0, Y: 5}, {X: 5, Y: 1}},
				{{X: 3, Y: 3}, {X: 3, Y: 4}},
			}
			for _, pair := range pairs {
				start, goal := pair[0], pair[1]
				route := finder.FindPath(moves, start, goal)
				So(float64(len(route)), ShouldEqual, movement_cost.Linear(1).Cost(start, goal))

				last, _ := route.Last()
				So(last, ShouldResemble, goal)
				prev := start
				for _, pos := range route {
					So(isUnitStep(prev, pos), ShouldBeTrue)
					prev = pos
				}
			}
		})
	})
}

func TestSearchBounds(t *testing.T) {
	moves := grid_world.AdjacentLinear

	Convey("When the node budget runs out", t, func() {
		grid := grid_world.NewGrid(10, 10)
		finder := newFinder(grid).WithMaxNodes(3)
		goal := grid_world.Position{X: 9, Y: 9}

		route, store := finder.FindPathWithStore(moves, grid_world.Position{X: 0, Y: 0}, goal)

		Convey("A partial store is returned without a route", func() {
			So(store.Len(), ShouldEqual, 5)
			So(store.Has(goal), ShouldBeFalse)
			So(route.Empty(), ShouldBeTrue)
		})
	})

	Convey("When the only route first leads away from the goal", t, func() {
		// (0,1) (1,1) (2,1) (2,0) reaches the goal, but its first step raises the heuristic
		grid := grid_world.NewGrid(3, 2).WithWalls(grid_world.Position{X: 1, Y: 0})
		route, store := newFinder(grid).FindPathWithStore(moves, grid_world.Position{X: 0, Y: 0}, grid_world.Position{X: 2, Y: 0})

		Convey("The admission filter prunes it and no path is found", func() {
			So(route.Empty(), ShouldBeTrue)
			So(store.Len(), ShouldEqual, 0)
		})
	})
}

func TestWaypoints(t *testing.T) {
	moves := grid_world.AdjacentLinear

	Convey("Given an open 6x6 grid", t, func() {
		grid := grid_world.NewGrid(6, 6)
		finder := newFinder(grid)
		a := grid_world.Position{X: 0, Y: 0}
		b := grid_world.Position{X: 3, Y: 1}
		c := grid_world.Position{X: 1, Y: 4}

		Convey("Chaining equals the spliced segments with the junction once", func() {
			chained, store := finder.FindPathWaypoints(moves, []grid_world.Position{a, b, c})
			first := finder.FindPath(moves, a, b)
			second := finder.FindPath(moves, b, c)

			expected := append(first.Clone(), second...)
			So(chained, ShouldResemble, expected)
			So(len(chained), ShouldEqual, 4+5)
			So(chained.IndexOf(b), ShouldEqual, len(first)-1)
			So(store.Has(a), ShouldBeTrue)
			So(store.Has(c), ShouldBeTrue)
		})

		Convey("An unreachable waypoint empties the chain", func() {
			walled := grid.WithWalls(
				grid_world.Position{X: 3, Y: 0},
				grid_world.Position{X: 2, Y: 1},
				grid_world.Position{X: 4, Y: 1},
				grid_world.Position{X: 3, Y: 2},
			)
			chained, _ := newFinder(walled).FindPathWaypoints(moves, []grid_world.Position{a, b, c})
			So(chained.Empty(), ShouldBeTrue)
		})

		Convey("A repeated waypoint is not a failure", func() {
			chained, _ := finder.FindPathWaypoints(moves, []grid_world.Position{a, b, b, c})
			direct, _ := finder.FindPathWaypoints(moves, []grid_world.Position{a, b, c})
			So(chained, ShouldResemble, direct)
		})

		Convey("Fewer than two waypoints give no route", func() {
			chained, store := finder.FindPathWaypoints(moves, []grid_world.Position{a})
			So(chained.Empty(), ShouldBeTrue)
			So(store.Len(), ShouldEqual, 0)
		})
	})
}

func TestRepair(t *testing.T) {
	moves := grid_world.AdjacentLinear
	origin := grid_world.Position{X: 0, Y: 0}
	goal := grid_world.Position{X: 4, Y: 4}

	Convey("Given a route across an open 5x5 world", t, func() {
		world := grid_world.NewWorld(grid_world.NewGrid(5, 5), nil)
		finder := NewPathFinder(movement_cost.Linear(1), movement_cost.Linear(1), world).WithBounds(5, 5)
		prev := finder.FindPath(moves, origin, goal)
		So(prev, ShouldResemble, grid_world.Route{
			{X: 0, Y: 1}, {X: 0, Y: 2}, {X: 0, Y: 3}, {X: 0, Y: 4}, {X: 1, Y: 4}, {X: 2, Y: 4}, {X: 3, Y: 4}, {X: 4, Y: 4},
		})

		Convey("A horizon past the end keeps the endpoint", func() {
			repaired := finder.RepairPath(moves, origin, prev, 20)
			last, ok := repaired.Last()
			So(ok, ShouldBeTrue)
			So(last, ShouldResemble, goal)
		})

		Convey("An unchanged world repairs to the same route", func() {
			So(finder.RepairPath(moves, origin, prev, 2), ShouldResemble, prev)
		})

		Convey("A newly occupied cell is replanned around and the tail kept", func() {
			world.Occupy(grid_world.Position{X: 0, Y: 3})
			repaired := finder.RepairPath(moves, origin, prev, 4)

			So(repaired, ShouldResemble, grid_world.Route{
				{X: 0, Y: 1}, {X: 0, Y: 2}, {X: 1, Y: 2}, {X: 1, Y: 3}, {X: 1, Y: 4}, {X: 2, Y: 4}, {X: 3, Y: 4}, {X: 4, Y: 4},
			})
			So(prev.IndexOf(grid_world.Position{X: 0, Y: 3}), ShouldEqual, 2)
		})

		Convey("An empty route cannot be repaired", func() {
			So(finder.RepairPath(moves, origin, nil, 3).Empty(), ShouldBeTrue)
		})

		Convey("A unit off its route rejoins at the head", func() {
			rejoined := finder.Rejoin(moves, grid_world.Position{X: 1, Y: 1}, grid_world.Route{{X: 0, Y: 2}, {X: 0, Y: 3}})
			So(rejoined, ShouldResemble, grid_world.Route{{X: 0, Y: 1}, {X: 0, Y: 2}, {X: 0, Y: 3}})

			onRoute := finder.Rejoin(moves, grid_world.Position{X: 0, Y: 2}, grid_world.Route{{X: 0, Y: 2}, {X: 0, Y: 3}})
			So(onRoute, ShouldResemble, grid_world.Route{{X: 0, Y: 3}})
		})
	})
}

func TestBestPotentialStep(t *testing.T) {
	Convey("Given a wall east of the origin and a path attractor beyond it", t, func() {
		world := grid_world.NewWorld(grid_world.NewGrid(5, 5), nil)
		finder := NewPathFinder(movement_cost.Linear(1), movement_cost.Linear(1), world)
		agent := &stepper{pos: grid_world.Position{X: 0, Y: 0}, moves: grid_world.AdjacentLinear}

		world.SetMock(
			potential.NewWallObject(grid_world.Position{X: 1, Y: 0}),
			potential.NewPathObject([]grid_world.Position{{X: 2, Y: 0}}),
		)

		Convey("The wall is never chosen even though it is closer to the attractor", func() {
			scored := world.NextPositionPotential(agent, []grid_world.Position{{X: 1, Y: 0}, {X: 0, Y: 1}})
			So(math.IsInf(scored[0].Potential, 1), ShouldBeTrue)
			So(math.IsInf(scored[1].Potential, 0), ShouldBeFalse)

			step, ok := finder.BestPotentialStep(world, agent)
			So(ok, ShouldBeTrue)
			So(step, ShouldResemble, grid_world.Position{X: 0, Y: 1})
		})

		Convey("A boxed in agent has no step", func() {
			world.SetMock(potential.NewWallObject(grid_world.Position{X: 1, Y: 0}, grid_world.Position{X: 0, Y: 1}))
			_, ok := finder.BestPotentialStep(world, agent)
			So(ok, ShouldBeFalse)
		})
	})
}
