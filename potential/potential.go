// potential contains the field objects that score candidate cells for the local step
// decision. Positive potential repels, negative attracts and +Inf forbids a cell.
package potential

import (
	"math"

	"gridpath/grid_world"

	"github.com/zyedidia/generic/mapset"
)

// Defaults of the path attractor field.
const (
	DefaultSlope  = -2.0
	DefaultCutoff = 4.0
)

// WallObject is an inert obstacle: its own points cannot be entered and no other cell
// is affected.
type WallObject struct {
	points mapset.Set[grid_world.Position]
}

func NewWallObject(points ...grid_world.Position) *WallObject {
	set := mapset.New[grid_world.Position]()
	for _, p := range points {
		set.Put(p)
	}
	return &WallObject{
		points: set,
	}
}

// Len is the number of distinct wall points.
func (w *WallObject) Len() int {
	return w.points.Size()
}

func (w *WallObject) PotentialAt(pos grid_world.Position) float64 {
	if w.points.Has(pos) {
		return math.Inf(1)
	}
	return 0
}

// PathObject attracts towards the points of a route with a field that decays up to the
// cutoff and grows stronger further along the route.
//
// For the point at index i and squared distance d the score is
// (i+1) * ((1/d - 1/cutoff) * (slope - i)), -Inf on the point itself. The potential is the
// minimum score over all points, clamped to zero. Unclamped, the score turns positive
// beyond the cutoff and a route would lightly push units that stray from it; clamping makes
// the route a pure attractor, so cells beyond the cutoff are neutral.
type PathObject struct {
	Points []grid_world.Position
	Slope  float64
	Cutoff float64
}

func NewPathObject(points []grid_world.Position) *PathObject {
	return &PathObject{
		Points: points,
		Slope:  DefaultSlope,
		Cutoff: DefaultCutoff,
	}
}

func (po *PathObject) PotentialAt(pos grid_world.Position) float64 {
	best := 0.0
	for i, point := range po.Points {
		d := pos.DistSquared(point)
		if d == 0 {
			return math.Inf(-1)
		}
		index := float64(i)
		score := (index + 1) * ((1/d - 1/po.Cutoff) * (po.Slope - index))
		best = math.Min(best, score)
	}
	return best
}

// DecidedPath is a linear variant of PathObject: a point at index i contributes
// min(-i - 4 + dist*slope, 0) at euclidean distance dist. Slope should be positive for
// the attraction to fade with distance.
type DecidedPath struct {
	Points []grid_world.Position
	Slope  float64
}

func (dp *DecidedPath) PotentialAt(pos grid_world.Position) float64 {
	best := 0.0
	for i, point := range dp.Points {
		score := math.Min(-float64(i)-4+pos.Dist(point)*dp.Slope, 0)
		best = math.Min(best, score)
	}
	return best
}

// ScentField is the external scent grid. Scent is non-negative and reads as zero for
// cells it does not cover.
type ScentField interface {
	ScentAt(pos grid_world.Position) float64
}

// ScentObject turns a scent field into potential: a positive multiplier repels from
// scented cells, a negative one attracts.
type ScentObject struct {
	Field      ScentField
	Multiplier float64
}

func (so *ScentObject) PotentialAt(pos grid_world.Position) float64 {
	if so.Field == nil {
		return 0
	}
	return so.Field.ScentAt(pos) * so.Multiplier
}

// Sources is a ScentField of fixed scent sources, each decaying linearly to zero at
// its radius. Overlapping sources add up.
type Sources []Source

type Source struct {
	Pos      grid_world.Position
	Strength float64
	Radius   float64
}

func (s Sources) ScentAt(pos grid_world.Position) float64 {
	total := 0.0
	for _, src := range s {
		if src.Radius <= 0 {
			if pos == src.Pos {
				total += src.Strength
			}
			continue
		}
		dist := pos.Dist(src.Pos)
		if dist < src.Radius {
			total += src.Strength * (1 - dist/src.Radius)
		}
	}
	return total
}
