package potential

import (
	"math"

	"gridpath/grid_world"
)

// Func is the potential a unit at owner exerts on dest.
type Func func(owner, dest grid_world.Position) float64

// InertRepel forbids the owner's own cell and leaves every other cell alone, the way a
// blocking unit behaves.
func InertRepel(owner, dest grid_world.Position) float64 {
	if owner == dest {
		return math.Inf(1)
	}
	return 0
}

// LinearCutoff forbids every cell within cutoff of the owner, such as an enemy's attack
// range, and repels linearly for four cells beyond it.
func LinearCutoff(cutoff float64) Func {
	return func(owner, dest grid_world.Position) float64 {
		dist := owner.Dist(dest) - cutoff
		if dist < 0 {
			return math.Inf(1)
		}
		return math.Max(4-dist, 0)
	}
}

// Neutral exerts no potential at all.
func Neutral(owner, dest grid_world.Position) float64 {
	return 0
}
