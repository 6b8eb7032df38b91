package simulation

import (
	"fmt"
	"math"

	"gridpath/grid_world"
)

// Snapshot is a copy of the scenario state for consumers on other goroutines.
type Snapshot struct {
	Turn   int
	Width  int
	Height int
	// Cells is indexed [x][y].
	Cells [][]CellState
	Units []UnitState
	Stats StatsView
}

type CellState struct {
	Kind rune
	// Potential is the field over every mock and active object of the last turn.
	Potential float64
	Occupied  bool
}

type UnitState struct {
	ID    string
	Pos   grid_world.Position
	Goal  grid_world.Position
	Route grid_world.Route
}

// Snapshot copies the current state of the scenario.
func (s *Scenario) Snapshot() Snapshot {
	snap := Snapshot{
		Turn:   s.turn,
		Width:  s.Grid.Width(),
		Height: s.Grid.Height(),
		Cells:  make([][]CellState, s.Grid.Width()),
		Stats:  s.Stats.View(),
	}
	for x := range snap.Cells {
		snap.Cells[x] = make([]CellState, s.Grid.Height())
	}
	s.Grid.Visit(func(pos grid_world.Position, kind rune) {
		cell := CellState{
			Kind:     kind,
			Occupied: s.World.IsOccupied(pos),
		}
		if kind != grid_world.WALL {
			cell.Potential = s.World.FieldPotential(pos)
		}
		snap.Cells[pos.X][pos.Y] = cell
	})
	for _, u := range s.turns.Members() {
		snap.Units = append(snap.Units, UnitState{
			ID:    u.ID,
			Pos:   u.Position(),
			Goal:  u.Goal(),
			Route: u.Route(),
		})
	}
	return snap
}

// MaxFinitePotential returns the largest finite potential magnitude of the snapshot, at
// least one.
func (snap *Snapshot) MaxFinitePotential() float64 {
	max := 1.0
	for _, col := range snap.Cells {
		for _, cell := range col {
			if p := math.Abs(cell.Potential); !math.IsInf(p, 0) && p > max {
				max = p
			}
		}
	}
	return max
}

// ShowSnapshot prints the grid with unit positions and routes for visual reference.
func ShowSnapshot(snap Snapshot) {
	marks := map[grid_world.Position]rune{}
	for _, u := range snap.Units {
		for _, pos := range u.Route {
			marks[pos] = '*'
		}
	}
	for _, u := range snap.Units {
		marks[u.Pos] = 'U'
	}
	fmt.Printf("turn %d\n", snap.Turn)
	for _, y := range grid_world.Rev(snap.Height) {
		for x := 0; x < snap.Width; x++ {
			pos := grid_world.Position{X: x, Y: y}
			if mark, ok := marks[pos]; ok {
				fmt.Printf("%c ", mark)
				continue
			}
			fmt.Printf("%c ", snap.Cells[x][y].Kind)
		}
		fmt.Println("")
	}
}
