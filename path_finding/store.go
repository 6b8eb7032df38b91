package path_finding

import "gridpath/grid_world"

// Record is the best known cost of reaching a position and its parent on that path.
// The search start is its own parent.
type Record struct {
	Cost   float64
	Parent grid_world.Position
}

// Store is the visited-node ledger of a search. With known grid bounds records live in
// a flat array indexed by y*width+x; positions outside the bounds, or every position
// when no bounds are known, fall back to a map. Positions iterate in insertion order.
type Store struct {
	width, height int
	flat          []Record
	present       []bool
	overflow      map[grid_world.Position]Record
	keys          []grid_world.Position
}

// NewStore returns an empty store. Zero dimensions give a map backed store.
func NewStore(width, height int) *Store {
	s := &Store{
		width:    width,
		height:   height,
		overflow: map[grid_world.Position]Record{},
	}
	if width > 0 && height > 0 {
		s.flat = make([]Record, width*height)
		s.present = make([]bool, width*height)
	}
	return s
}

func (s *Store) index(pos grid_world.Position) (int, bool) {
	if s.flat == nil || pos.X < 0 || pos.Y < 0 || pos.X >= s.width || pos.Y >= s.height {
		return 0, false
	}
	return pos.Y*s.width + pos.X, true
}

// Get returns the record of pos, if visited.
func (s *Store) Get(pos grid_world.Position) (Record, bool) {
	if i, ok := s.index(pos); ok {
		return s.flat[i], s.present[i]
	}
	rec, ok := s.overflow[pos]
	return rec, ok
}

// Has reports whether pos was visited.
func (s *Store) Has(pos grid_world.Position) bool {
	_, ok := s.Get(pos)
	return ok
}

// Put sets the record of pos, replacing any previous one.
func (s *Store) Put(pos grid_world.Position, rec Record) {
	if !s.Has(pos) {
		s.keys = append(s.keys, pos)
	}
	if i, ok := s.index(pos); ok {
		s.flat[i] = rec
		s.present[i] = true
		return
	}
	s.overflow[pos] = rec
}

func (s *Store) Len() int {
	return len(s.keys)
}

// Positions returns the visited positions in insertion order.
func (s *Store) Positions() []grid_world.Position {
	positions := make([]grid_world.Position, len(s.keys))
	copy(positions, s.keys)
	return positions
}

// Merge copies every record of other into s; on collision the record of other wins.
func (s *Store) Merge(other *Store) {
	if other == nil {
		return
	}
	for _, pos := range other.keys {
		rec, _ := other.Get(pos)
		s.Put(pos, rec)
	}
}
