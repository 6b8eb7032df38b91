// cell_views contains views derived from the Cell view-model.
package cell_views

import (
	"fmt"
	"math"

	"gridpath/grid_world"
	"gridpath/simulation"
)

// Cell is a grid cell of a scenario snapshot, oriented in the svg coordinate system such
// that [0][0] is the cell that would be printed in the console at top left. As a rule of
// thumb, Cell fields should be immediately usable as view parameters.
type Cell struct {
	X, Y int
	// Potential is the field value of the cell; Height is the same value clamped to
	// the finite range of the board, for plotting.
	Potential float64
	Height    float64
	Label     string
	Fill      string
	// ArrowRotation is the svg rotation of an up arrow pointing to the next route cell;
	// ArrowOpacity hides the arrow on cells no route leaves from.
	ArrowRotation int
	ArrowOpacity  string
}

// Board is the view-model of a snapshot.
type Board struct {
	Turn  int
	Cells [][]Cell
	Stats simulation.StatsView
}

// Convert transforms a snapshot into a Board for consumption by the views.
// The y indices into the [][]Cell matrix are flipped per svg y-axis orientation, where 0 is
// the top of the coordinate system.
func Convert(snap simulation.Snapshot) Board {
	arrows := routeArrows(snap.Units)
	maxAbs := snap.MaxFinitePotential()

	cells := make([][]Cell, snap.Width)
	for x := range cells {
		cells[x] = make([]Cell, snap.Height)
		for y := range cells[x] {
			state := snap.Cells[x][y]
			cell := Cell{
				X:            x,
				Y:            snap.Height - y - 1,
				Potential:    state.Potential,
				Height:       clamp(state.Potential, maxAbs) / maxAbs,
				Label:        getLabel(state),
				Fill:         getFill(state),
				ArrowOpacity: "0",
			}
			if deg, ok := arrows[grid_world.Position{X: x, Y: y}]; ok {
				cell.ArrowRotation = deg
				cell.ArrowOpacity = "1"
			}
			cells[x][y] = cell
		}
	}

	return Board{
		Turn:  snap.Turn,
		Cells: cells,
		Stats: snap.Stats,
	}
}

func clamp(val, maxAbs float64) float64 {
	return math.Max(math.Min(val, maxAbs), -maxAbs)
}

// routeArrows maps every cell a route leaves from to the direction of its next cell.
func routeArrows(units []simulation.UnitState) map[grid_world.Position]int {
	arrows := map[grid_world.Position]int{}
	for _, u := range units {
		from := u.Pos
		for _, to := range u.Route {
			arrows[from] = getDegrees(to.Sub(from))
			from = to
		}
	}
	return arrows
}

// getDegrees converts a step in cartesian space into the degrees passed to svg's
// rotate() transform function for an upward arrow rune. Degrees are wrt vertical.
func getDegrees(step grid_world.Position) int {
	if step.X == 0 && step.Y == 0 {
		return 0
	}
	rad := math.Atan2(float64(step.Y), float64(step.X))
	deg := rad * 180 / math.Pi
	// deg is correct in cartesian space, but must be subtracted from 90 for rotation in svg coors
	return int(math.Round(90 - deg))
}

func getLabel(state simulation.CellState) string {
	switch {
	case state.Kind == grid_world.WALL:
		return ""
	case math.IsInf(state.Potential, 1):
		return "∞"
	case math.IsInf(state.Potential, -1):
		return "-∞"
	}
	return fmt.Sprintf("%.2f", state.Potential)
}

func getFill(state simulation.CellState) (fill string) {
	if state.Occupied {
		return "salmon"
	}
	switch state.Kind {
	case grid_world.WALL:
		fill = "lightgreen"
	case grid_world.OPEN:
		fill = "lightgray"
	case grid_world.START:
		fill = "lightblue"
	case grid_world.FINISH:
		fill = "lightyellow"
	}
	return
}
