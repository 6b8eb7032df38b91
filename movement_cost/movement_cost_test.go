package movement_cost

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"gridpath/grid_world"

	. "github.com/smartystreets/goconvey/convey"
)

func TestStrategies(t *testing.T) {
	origin := grid_world.Position{X: 0, Y: 0}
	target := grid_world.Position{X: 3, Y: -4}

	Convey("When base metrics are evaluated", t, func() {
		So(Linear(1).Cost(origin, target), ShouldEqual, 7.0)
		So(Linear(2).Cost(origin, target), ShouldEqual, 14.0)
		So(Euclidean(1).Cost(origin, target), ShouldEqual, 5.0)
		So(Euclidean(10).Cost(origin, target), ShouldEqual, 50.0)

		Convey("Octile counts every step once", func() {
			So(Octile().Cost(origin, target), ShouldEqual, 4.0)
		})

		Convey("Triangle charges root two per diagonal step", func() {
			So(Triangle().Cost(origin, target), ShouldAlmostEqual, 1+3*math.Sqrt2, 1e-9)
		})

		Convey("Costs are symmetric", func() {
			for _, s := range []Strategy{Linear(1), Euclidean(1), Octile(), Triangle()} {
				So(s.Cost(origin, target), ShouldEqual, s.Cost(target, origin))
				So(s.Cost(target, target), ShouldEqual, 0.0)
			}
		})
	})

	Convey("When combinators wrap a strategy", t, func() {
		So(Scaled(Linear(1), 0.5).Cost(origin, target), ShouldEqual, 3.5)

		Convey("A zero deviation randomized cost equals the scaled mean", func() {
			random := Randomized(Linear(1), 2, 0, rand.New(rand.NewSource(1)))
			So(random.Cost(origin, target), ShouldEqual, 14.0)
		})

		Convey("A randomized cost never goes negative", func() {
			random := Randomized(Linear(1), 0, 5, rand.New(rand.NewSource(3)))
			for i := 0; i < 100; i++ {
				So(random.Cost(origin, target), ShouldBeGreaterThanOrEqualTo, 0.0)
			}
		})
	})

	Convey("When strategies are resolved by name", t, func() {
		s, err := ByName("euclidean")
		So(err, ShouldBeNil)
		So(s.Cost(origin, target), ShouldEqual, 5.0)

		_, err = ByName("chebyshev")
		So(errors.Is(err, ErrUnknownStrategy), ShouldBeTrue)
	})
}
