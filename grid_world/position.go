package grid_world

import (
	"fmt"
	"math"
)

// Position is a cell coordinate on the grid. It is comparable and is used directly
// as a map key by the search store and the world's occupancy set.
type Position struct {
	X, Y int
}

// Add returns the position offset by other, e.g. a move template entry.
func (p Position) Add(other Position) Position {
	return Position{X: p.X + other.X, Y: p.Y + other.Y}
}

// Sub returns the offset from other to p.
func (p Position) Sub(other Position) Position {
	return Position{X: p.X - other.X, Y: p.Y - other.Y}
}

// Less orders positions lexicographically, by x and then by y. This is the only
// ordering defined on positions and is used for breaking ties in the search frontier
// and in local step selection.
func (p Position) Less(other Position) bool {
	if p.X != other.X {
		return p.X < other.X
	}
	return p.Y < other.Y
}

// DistSquared returns the squared euclidean distance between p and other.
func (p Position) DistSquared(other Position) float64 {
	dx := float64(p.X - other.X)
	dy := float64(p.Y - other.Y)
	return dx*dx + dy*dy
}

// Dist returns the euclidean distance between p and other.
func (p Position) Dist(other Position) float64 {
	return math.Sqrt(p.DistSquared(other))
}

func (p Position) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}
