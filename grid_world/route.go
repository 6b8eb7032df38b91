package grid_world

import "github.com/zyedidia/generic/mapset"

// Route is an ordered sequence of positions to traverse, from the cell after the start
// up to and including the goal. An empty route is the "no path" result; it is also the
// result for a start that equals the goal, since no step is needed.
type Route []Position

// Empty reports whether there are no steps left.
func (r Route) Empty() bool {
	return len(r) == 0
}

// Head returns the next step, if any.
func (r Route) Head() (Position, bool) {
	if len(r) == 0 {
		return Position{}, false
	}
	return r[0], true
}

// Last returns the final cell of the route, if any.
func (r Route) Last() (Position, bool) {
	if len(r) == 0 {
		return Position{}, false
	}
	return r[len(r)-1], true
}

// PopFront returns the head and the remaining route.
func (r Route) PopFront() (Position, Route, bool) {
	if len(r) == 0 {
		return Position{}, r, false
	}
	return r[0], r[1:], true
}

// IndexOf returns the index of pos in the route, or -1.
func (r Route) IndexOf(pos Position) int {
	for i, p := range r {
		if p == pos {
			return i
		}
	}
	return -1
}

// Clone returns a copy that does not share the backing array.
func (r Route) Clone() Route {
	if r == nil {
		return nil
	}
	cloned := make(Route, len(r))
	copy(cloned, r)
	return cloned
}

// Set returns the distinct cells of the route.
func (r Route) Set() mapset.Set[Position] {
	set := mapset.New[Position]()
	for _, pos := range r {
		set.Put(pos)
	}
	return set
}
