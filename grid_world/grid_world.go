package grid_world

import (
	"errors"
	"fmt"
)

const (
	// Track cell types
	WALL   = 'W'
	OPEN   = 'o'
	START  = '-'
	FINISH = '+'
)

// Named special points registered while converting a track.
const (
	SpecialStart  = "start"
	SpecialFinish = "finish"
)

// The classical demo map and a smaller debug map for development.
var (
	DebugTrack []string = []string{
		"WWWWWW",
		"Woooo+",
		"Woooo+",
		"WooWWW",
		"WooWWW",
		"WooWWW",
		"WooWWW",
		"W--WWW",
	}

	FullTrack []string = []string{
		"WWWWWWWWWWWWWWWWWW",
		"WWWWooooooooooooo+",
		"WWWoooooooooooooo+",
		"WWWoooooooooooooo+",
		"WWooooooooooooooo+",
		"Woooooooooooooooo+",
		"Woooooooooooooooo+",
		"WooooooooooWWWWWWW",
		"WoooooooooWWWWWWWW",
		"WoooooooooWWWWWWWW",
		"WoooWWooooWWWWWWWW",
		"WoooWWooooWWWWWWWW",
		"WoooooooooWWWWWWWW",
		"WoooooooooWWWWWWWW",
		"WoooooooooWWWWWWWW",
		"WWooooooooWWWWWWWW",
		"WWooooooooWWWWWWWW",
		"WWoooWWoooWWWWWWWW",
		"WWoooWWoooWWWWWWWW",
		"WWooooooooWWWWWWWW",
		"WWooooooooWWWWWWWW",
		"WWooooooooWWWWWWWW",
		"WWooooooooWWWWWWWW",
		"WWWoooooooWWWWWWWW",
		"WWWoooooooWWWWWWWW",
		"WWWoooooooWWWWWWWW",
		"WWWoooooooWWWWWWWW",
		"WWWoooooooWWWWWWWW",
		"WWWoooooooWWWWWWWW",
		"WWWoooooooWWWWWWWW",
		"WWWWooooooWWWWWWWW",
		"WWWWooooooWWWWWWWW",
		"WWWW------WWWWWWWW",
	}
)

// Grid is the static passability grid. It is immutable after construction and its
// dimensions bound every valid position.
type Grid struct {
	width, height int
	kinds         []rune
}

// ErrEmptyTrack is returned when a track has no rows or rows of differing widths.
var ErrEmptyTrack error = errors.New("track must be a non-empty rectangle")

// NewGrid returns a fully open grid of the given dimensions.
func NewGrid(width, height int) *Grid {
	kinds := make([]rune, width*height)
	for i := range kinds {
		kinds[i] = OPEN
	}
	return &Grid{
		width:  width,
		height: height,
		kinds:  kinds,
	}
}

// Convert builds a grid from a track input string array. The orientation is such that
// the bottom/left most cell of the track (when printed in a console) is (0,0), so +y is up.
// Start and finish cells are passable and are returned as named special points.
func Convert(track []string) (grid *Grid, special map[string][]Position, err error) {
	if len(track) == 0 || len(track[0]) == 0 {
		return nil, nil, ErrEmptyTrack
	}
	width := len(track[0])
	height := len(track)

	grid = &Grid{
		width:  width,
		height: height,
		kinds:  make([]rune, width*height),
	}
	special = map[string][]Position{}

	for y := 0; y < height; y++ {
		row := track[height-y-1]
		if len(row) != width {
			return nil, nil, fmt.Errorf("%w: row %d has width %d, expected %d", ErrEmptyTrack, height-y-1, len(row), width)
		}
		for x := 0; x < width; x++ {
			kind := rune(row[x])
			grid.kinds[grid.index(Position{x, y})] = kind
			switch kind {
			case START:
				special[SpecialStart] = append(special[SpecialStart], Position{x, y})
			case FINISH:
				special[SpecialFinish] = append(special[SpecialFinish], Position{x, y})
			}
		}
	}
	return grid, special, nil
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

func (g *Grid) index(pos Position) int {
	return pos.Y*g.width + pos.X
}

// InBounds reports whether pos lies within the grid.
func (g *Grid) InBounds(pos Position) bool {
	return pos.X >= 0 && pos.Y >= 0 && pos.X < g.width && pos.Y < g.height
}

// Kind returns the track cell type at pos; out of bounds cells read as walls.
func (g *Grid) Kind(pos Position) rune {
	if !g.InBounds(pos) {
		return WALL
	}
	return g.kinds[g.index(pos)]
}

// IsPassable reports whether pos is in bounds and not a wall.
func (g *Grid) IsPassable(pos Position) bool {
	return g.Kind(pos) != WALL
}

// WithWalls returns a copy of the grid with the passed cells turned into walls.
// Cells out of bounds are ignored.
func (g *Grid) WithWalls(walls ...Position) *Grid {
	cp := &Grid{
		width:  g.width,
		height: g.height,
		kinds:  make([]rune, len(g.kinds)),
	}
	copy(cp.kinds, g.kinds)
	for _, wall := range walls {
		if cp.InBounds(wall) {
			cp.kinds[cp.index(wall)] = WALL
		}
	}
	return cp
}

// Visit calls fn for every cell, row by row from y=0.
func (g *Grid) Visit(fn func(pos Position, kind rune)) {
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			pos := Position{x, y}
			fn(pos, g.kinds[g.index(pos)])
		}
	}
}

// ShowGrid prints the grid for visual reference, top row first, with the route
// cells marked by '*'.
func ShowGrid(g *Grid, route Route) {
	onRoute := route.Set()
	for _, y := range Rev(g.height) {
		for x := 0; x < g.width; x++ {
			pos := Position{x, y}
			if onRoute.Has(pos) {
				fmt.Print("* ")
				continue
			}
			fmt.Printf("%c ", g.Kind(pos))
		}
		fmt.Println("")
	}
}

// Rev returns reversed indices of a slice, e.g. for ranging over.
func Rev(length int) []int {
	indices := make([]int, length)
	for i := 0; i < length; i++ {
		indices[i] = length - i - 1
	}
	return indices
}
