// movement_cost contains the cost and heuristic functions used by the path finder.
// The same Strategy type serves both roles: the real cost of stepping between two
// cells, and the estimated cost of reaching the goal from a cell.
package movement_cost

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gridpath/grid_world"
)

// Strategy maps two positions to a non-negative cost. Strategies must be consistent
// with the heuristic they are paired with for the search pruning to behave; the path
// finder does not check this.
type Strategy interface {
	Cost(start, end grid_world.Position) float64
}

// Func adapts a plain function to a Strategy.
type Func func(start, end grid_world.Position) float64

func (fn Func) Cost(start, end grid_world.Position) float64 {
	return fn(start, end)
}

func deltas(start, end grid_world.Position) (dx, dy float64) {
	dx = math.Abs(float64(start.X - end.X))
	dy = math.Abs(float64(start.Y - end.Y))
	return
}

// Linear is the Manhattan distance; only linear movement is allowed.
func Linear(scale float64) Strategy {
	return Func(func(start, end grid_world.Position) float64 {
		dx, dy := deltas(start, end)
		return (dx + dy) * scale
	})
}

// Euclidean is the straight-line distance, so diagonal steps cost the square root of two.
func Euclidean(scale float64) Strategy {
	return Func(func(start, end grid_world.Position) float64 {
		dx, dy := deltas(start, end)
		return math.Sqrt(dx*dx+dy*dy) * scale
	})
}

// Diagonal allows movement in eight directions, with lin the cost of one linear step
// and diag the cost of one diagonal step.
// For lin = 1 and diag = 1 this is the octile distance, for lin = 1 and diag = √2 the
// triangle distance.
func Diagonal(lin, diag float64) Strategy {
	return Func(func(start, end grid_world.Position) float64 {
		dx, dy := deltas(start, end)
		return (dx+dy)*lin + math.Min(dx, dy)*(diag-2*lin)
	})
}

func Octile() Strategy {
	return Diagonal(1, 1)
}

func Triangle() Strategy {
	return Diagonal(1, math.Sqrt2)
}

// Scaled multiplies another strategy by a fixed factor.
func Scaled(base Strategy, factor float64) Strategy {
	return Func(func(start, end grid_world.Position) float64 {
		return base.Cost(start, end) * factor
	})
}

// Randomized scales another strategy by a value drawn from a normal distribution with
// mean mu and standard deviation sigma, so that paths look less mechanical. mu = 1 and
// sigma between 0.2 and 0.3 give realistic paths. The rng belongs to the strategy and is
// not safe for concurrent use.
func Randomized(base Strategy, mu, sigma float64, rng *rand.Rand) Strategy {
	return Func(func(start, end grid_world.Position) float64 {
		factor := rng.NormFloat64()*sigma + mu
		return base.Cost(start, end) * math.Max(factor, 0)
	})
}

// ErrUnknownStrategy is returned when a cost strategy name cannot be resolved.
var ErrUnknownStrategy error = errors.New("unknown cost strategy")

// ByName resolves the strategy names used in scenario configs, with unit scale.
func ByName(name string) (Strategy, error) {
	switch name {
	case "linear", "":
		return Linear(1), nil
	case "euclidean":
		return Euclidean(1), nil
	case "octile":
		return Octile(), nil
	case "triangle":
		return Triangle(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}
