package grid_world

import (
	"errors"
	"fmt"
	"math/rand"
)

// MoveTemplate is an ordered set of offsets relative to a current position. The order
// is significant: it is the order in which the search engine generates neighbors, and
// thus influences tie-breaking. Package level templates are shared by every unit using
// the same movement style and must not be mutated; use Shuffled for a private copy.
type MoveTemplate []Position

// Adjacent moves in linear directions:
//
//	 #
//	#x#
//	 #
var AdjacentLinear = MoveTemplate{
	{0, 1}, {1, 0}, {0, -1}, {-1, 0},
}

// Adjacent moves in octile directions:
//
//	###
//	#x#
//	###
var AdjacentOctile = MoveTemplate{
	{0, 1}, {1, 0}, {0, -1}, {-1, 0},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

// Radius4 is every offset within squared distance four of the current position.
//
//	  #
//	 ###
//	##x##
//	 ###
//	  #
var Radius4 = MoveTemplate{
	{0, 1}, {1, 0}, {0, -1}, {-1, 0},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
	{2, 0}, {0, 2}, {0, -2}, {-2, 0},
}

// Radius9 is every offset within squared distance nine of the current position. It is
// the usual sight template for units.
//
//	   #
//	  ###
//	 #####
//	###x###
//	 #####
//	  ###
//	   #
var Radius9 = MoveTemplate{
	{0, 1}, {1, 0}, {0, -1}, {-1, 0},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
	{2, 0}, {0, 2}, {0, -2}, {-2, 0},
	{0, 3}, {1, 2}, {2, 1}, {3, 0},
	{2, -1}, {1, -2}, {0, -3}, {-1, -2},
	{-2, -1}, {-3, 0}, {-2, 1}, {-1, 2},
	{2, 2}, {2, -2}, {-2, 2}, {-2, -2},
}

// LinearDirectional returns moves along a single axis: up/down when upDown is set,
// otherwise left/right.
func LinearDirectional(upDown bool) MoveTemplate {
	if upDown {
		return MoveTemplate{{0, 1}, {0, -1}}
	}
	return MoveTemplate{{1, 0}, {-1, 0}}
}

// Apply returns the positions reached from pos by each offset, in template order.
func (mt MoveTemplate) Apply(pos Position) []Position {
	next := make([]Position, len(mt))
	for i, move := range mt {
		next[i] = pos.Add(move)
	}
	return next
}

// Contains reports whether offset is part of the template.
func (mt MoveTemplate) Contains(offset Position) bool {
	for _, move := range mt {
		if move == offset {
			return true
		}
	}
	return false
}

// Shuffled returns a randomly ordered copy of the template.
func (mt MoveTemplate) Shuffled(rng *rand.Rand) MoveTemplate {
	shuffled := make(MoveTemplate, len(mt))
	copy(shuffled, mt)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}

// ErrUnknownMoves is returned when a move template name cannot be resolved.
var ErrUnknownMoves error = errors.New("unknown move template")

// MovesByName resolves the template names used in scenario configs.
func MovesByName(name string) (MoveTemplate, error) {
	switch name {
	case "linear", "":
		return AdjacentLinear, nil
	case "octile":
		return AdjacentOctile, nil
	case "radius4":
		return Radius4, nil
	case "radius9":
		return Radius9, nil
	case "updown":
		return LinearDirectional(true), nil
	case "leftright":
		return LinearDirectional(false), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMoves, name)
}
