package grid_world

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

type fixedField map[Position]float64

func (f fixedField) PotentialAt(pos Position) float64 {
	return f[pos]
}

type testAgent struct {
	pos   Position
	moves MoveTemplate
	sight MoveTemplate
}

func (a *testAgent) Position() Position        { return a.pos }
func (a *testAgent) NextPositions() []Position { return a.moves.Apply(a.pos) }
func (a *testAgent) PotentialAt(Position) float64 {
	return 0
}
func (a *testAgent) CanSeePoint(pos Position) bool {
	for _, p := range a.sight.Apply(a.pos) {
		if p == pos {
			return true
		}
	}
	return false
}

type repeller struct {
	pos Position
}

func (r *repeller) Position() Position { return r.pos }
func (r *repeller) PotentialAt(pos Position) float64 {
	if pos.DistSquared(r.pos) <= 1 {
		return 10
	}
	return 0
}

func TestPosition(t *testing.T) {
	Convey("When positions are combined and ordered", t, func() {
		a := Position{1, 2}
		b := Position{3, -1}

		So(a.Add(b), ShouldResemble, Position{4, 1})
		So(b.Sub(a), ShouldResemble, Position{2, -3})
		So(a.DistSquared(b), ShouldEqual, 13.0)
		So(Position{0, 0}.Dist(Position{3, 4}), ShouldEqual, 5.0)

		Convey("Ordering is lexicographic and consistent", func() {
			So(Position{0, 5}.Less(Position{1, 0}), ShouldBeTrue)
			So(Position{1, 0}.Less(Position{0, 5}), ShouldBeFalse)
			So(Position{1, 1}.Less(Position{1, 2}), ShouldBeTrue)
			So(Position{1, 1}.Less(Position{1, 1}), ShouldBeFalse)
		})

		Convey("Equal positions share a map key", func() {
			m := map[Position]int{{2, 2}: 1}
			So(m[Position{2, 2}], ShouldEqual, 1)
		})
	})
}

func TestMoveTemplates(t *testing.T) {
	Convey("When templates are applied", t, func() {
		next := AdjacentLinear.Apply(Position{1, 1})
		So(next, ShouldResemble, []Position{{1, 2}, {2, 1}, {1, 0}, {0, 1}})
		So(len(AdjacentOctile), ShouldEqual, 8)
		So(len(Radius4), ShouldEqual, 12)
		So(len(Radius9), ShouldEqual, 28)
		So(LinearDirectional(false).Contains(Position{1, 0}), ShouldBeTrue)
		So(LinearDirectional(true).Contains(Position{1, 0}), ShouldBeFalse)
	})

	Convey("When a template is shuffled", t, func() {
		original := make(MoveTemplate, len(AdjacentOctile))
		copy(original, AdjacentOctile)
		shuffled := AdjacentOctile.Shuffled(rand.New(rand.NewSource(7)))

		So(len(shuffled), ShouldEqual, len(AdjacentOctile))
		So(AdjacentOctile, ShouldResemble, original)
		for _, move := range AdjacentOctile {
			So(shuffled.Contains(move), ShouldBeTrue)
		}
	})

	Convey("When templates are resolved by name", t, func() {
		moves, err := MovesByName("octile")
		So(err, ShouldBeNil)
		So(moves, ShouldResemble, AdjacentOctile)

		_, err = MovesByName("knight")
		So(errors.Is(err, ErrUnknownMoves), ShouldBeTrue)
	})
}

func TestConvert(t *testing.T) {
	Convey("When a track is converted", t, func() {
		grid, special, err := Convert(DebugTrack)
		So(err, ShouldBeNil)
		So(grid.Width(), ShouldEqual, 6)
		So(grid.Height(), ShouldEqual, 8)

		Convey("The bottom left cell is the origin", func() {
			So(grid.Kind(Position{0, 0}), ShouldEqual, WALL)
			So(grid.Kind(Position{1, 0}), ShouldEqual, START)
			So(grid.Kind(Position{5, 6}), ShouldEqual, FINISH)
		})

		Convey("Start and finish cells are registered as special points", func() {
			So(special[SpecialStart], ShouldResemble, []Position{{1, 0}, {2, 0}})
			So(special[SpecialFinish], ShouldResemble, []Position{{5, 5}, {5, 6}})
		})

		Convey("Out of bounds cells are never passable", func() {
			So(grid.IsPassable(Position{-1, 3}), ShouldBeFalse)
			So(grid.IsPassable(Position{6, 3}), ShouldBeFalse)
			So(grid.IsPassable(Position{1, 8}), ShouldBeFalse)
			So(grid.IsPassable(Position{1, 1}), ShouldBeTrue)
		})

		Convey("WithWalls does not modify the original", func() {
			walled := grid.WithWalls(Position{1, 1})
			So(walled.IsPassable(Position{1, 1}), ShouldBeFalse)
			So(grid.IsPassable(Position{1, 1}), ShouldBeTrue)
		})
	})

	Convey("When a track is malformed", t, func() {
		_, _, err := Convert(nil)
		So(err, ShouldEqual, ErrEmptyTrack)

		_, _, err = Convert([]string{"ooo", "oo"})
		So(errors.Is(err, ErrEmptyTrack), ShouldBeTrue)
	})
}

func TestWorld(t *testing.T) {
	Convey("Given a world with an occupant", t, func() {
		world := NewWorld(NewGrid(5, 5), nil)
		agent := &testAgent{pos: Position{2, 2}, moves: AdjacentLinear, sight: Radius9}

		world.Occupy(Position{2, 3})

		Convey("Occupied and out of bounds cells are invalid", func() {
			So(world.IsValidPoint(Position{2, 3}), ShouldBeFalse)
			So(world.IsValidPoint(Position{5, 0}), ShouldBeFalse)
			So(world.ValidNextPositions(agent), ShouldResemble, []Position{{3, 2}, {2, 1}, {1, 2}})
		})

		Convey("Occupancy is counted", func() {
			world.Occupy(Position{2, 3})
			world.Vacate(Position{2, 3})
			So(world.IsOccupied(Position{2, 3}), ShouldBeTrue)
			world.Vacate(Position{2, 3})
			So(world.IsValidPoint(Position{2, 3}), ShouldBeTrue)
		})

		Convey("Only visible active entities contribute", func() {
			near := &repeller{pos: Position{3, 2}}
			far := &repeller{pos: Position{0, 5}}
			world.AddActive(near)
			world.AddActive(far)
			world.AddActive(agent)

			visible := world.VisibleEntities(agent)
			So(len(visible), ShouldEqual, 1)
			So(visible[0], ShouldEqual, near)

			scored := world.NextPositionPotential(agent, []Position{{3, 2}, {1, 2}})
			So(scored[0].Potential, ShouldEqual, 10.0)
			So(scored[1].Potential, ShouldEqual, 0.0)

			So(world.RemoveActive(near), ShouldBeTrue)
			So(world.RemoveActive(near), ShouldBeFalse)
			So(len(world.Active), ShouldEqual, 2)
		})

		Convey("Forbidden cells stay forbidden under attraction", func() {
			world.SetMock(
				fixedField{{1, 2}: math.Inf(1)},
				fixedField{{1, 2}: math.Inf(-1), {3, 2}: -1},
			)
			scored := world.NextPositionPotential(agent, []Position{{1, 2}, {3, 2}})
			So(math.IsInf(scored[0].Potential, 1), ShouldBeTrue)
			So(scored[1].Potential, ShouldEqual, -1.0)
		})
	})

	Convey("When choosing the best scored position", t, func() {
		_, ok := Best(nil)
		So(ok, ShouldBeFalse)

		best, ok := Best([]ScoredPosition{
			{Potential: 1, Pos: Position{0, 0}},
			{Potential: -2, Pos: Position{3, 1}},
			{Potential: -2, Pos: Position{1, 4}},
		})
		So(ok, ShouldBeTrue)
		So(best, ShouldResemble, Position{1, 4})
	})
}

func TestRoute(t *testing.T) {
	Convey("When a route is consumed", t, func() {
		route := Route{{0, 1}, {0, 2}}
		head, rest, ok := route.PopFront()
		So(ok, ShouldBeTrue)
		So(head, ShouldResemble, Position{0, 1})
		So(rest, ShouldResemble, Route{{0, 2}})

		last, ok := route.Last()
		So(ok, ShouldBeTrue)
		So(last, ShouldResemble, Position{0, 2})
		So(route.IndexOf(Position{0, 2}), ShouldEqual, 1)
		So(route.IndexOf(Position{9, 9}), ShouldEqual, -1)

		set := Route{{0, 1}, {0, 2}, {0, 1}}.Set()
		So(set.Size(), ShouldEqual, 2)
		So(set.Has(Position{0, 2}), ShouldBeTrue)
		So(set.Has(Position{2, 0}), ShouldBeFalse)

		_, _, ok = Route{}.PopFront()
		So(ok, ShouldBeFalse)
		So(Route(nil).Empty(), ShouldBeTrue)
	})
}
