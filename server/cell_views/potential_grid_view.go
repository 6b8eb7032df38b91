package cell_views

import (
	"fmt"
	"html/template"

	"gridpath/server/fastview"

	channerics "github.com/niceyeti/channerics/channels"
)

// PotentialGrid shows each cell's potential as text over its fill, with an arrow where a
// unit's route leaves the cell.
type PotentialGrid struct {
	id      string
	updates <-chan []fastview.EleUpdate
}

func NewPotentialGrid(
	done <-chan struct{},
	boards <-chan Board,
) (pg *PotentialGrid) {
	pg = &PotentialGrid{id: "potentialgrid"}
	pg.updates = channerics.Convert(done, boards, pg.onUpdate)
	return
}

func (pg *PotentialGrid) Updates() <-chan []fastview.EleUpdate {
	return pg.updates
}

// Parse adds the grid's svg template to t and returns its name.
func (pg *PotentialGrid) Parse(t *template.Template) (name string, err error) {
	name = pg.id
	_, err = t.Parse(
		`{{ define "` + name + `" }}
		<div id="` + pg.id + `-container">
			{{ $cells := .Cells }}
			{{ $x_cells := len $cells }}
			{{ $y_cells := len (index $cells 0) }}
			{{ $cell_width := 60 }}
			{{ $cell_height := $cell_width }}
			{{ $width := mult $cell_width $x_cells }}
			{{ $height := mult $cell_height $y_cells }}
			{{ $half_height := div $cell_height 2 }}
			{{ $half_width := div $cell_width 2 }}
			<svg id="` + pg.id + `"
				width="{{ add $width 1 }}px"
				height="{{ add $height 1 }}px"
				style="shape-rendering: crispEdges;">
				{{ range $row := $cells }}
					{{ range $cell := $row }}
					<g>
						<rect id="{{$cell.X}}-{{$cell.Y}}-cell-rect"
							x="{{ mult $cell.X $cell_width }}"
							y="{{ mult $cell.Y $cell_height }}"
							width="{{ $cell_width }}"
							height="{{ $cell_height }}"
							fill="{{ $cell.Fill }}"
							stroke="black"
							stroke-width="1"/>
						<text id="{{$cell.X}}-{{$cell.Y}}-potential-text"
							x="{{ add (mult $cell.X $cell_width) $half_width }}"
							y="{{ add (mult $cell.Y $cell_height) (sub $half_height 10) }}"
							font-size="11"
							dominant-baseline="text-top" text-anchor="middle"
							>{{ $cell.Label }}</text>
						<g transform="translate({{ add (mult $cell.X $cell_width) $half_width }}, {{ add (mult $cell.Y $cell_height) (add $half_height 12) }})">
							<text id="{{$cell.X}}-{{$cell.Y}}-route-arrow"
							stroke="blue" stroke-width="1"
							dominant-baseline="central" text-anchor="middle"
							opacity="{{ $cell.ArrowOpacity }}"
							transform="rotate({{ $cell.ArrowRotation }})"
							>&uarr;</text>
						</g>
					</g>
					{{ end }}
				{{ end }}
			</svg>
		</div>
		{{ end }}`)
	return
}

// Returns the set of view updates needed for the view to reflect the current board.
func (pg *PotentialGrid) onUpdate(board Board) (ops []fastview.EleUpdate) {
	for _, row := range board.Cells {
		for _, cell := range row {
			ops = append(ops,
				fastview.EleUpdate{
					EleId: fmt.Sprintf("%d-%d-cell-rect", cell.X, cell.Y),
					Ops: []fastview.Op{
						{Key: "fill", Value: cell.Fill},
					},
				},
				fastview.EleUpdate{
					EleId: fmt.Sprintf("%d-%d-potential-text", cell.X, cell.Y),
					Ops: []fastview.Op{
						{Key: "textContent", Value: cell.Label},
					},
				},
				fastview.EleUpdate{
					EleId: fmt.Sprintf("%d-%d-route-arrow", cell.X, cell.Y),
					Ops: []fastview.Op{
						{Key: "transform", Value: fmt.Sprintf("rotate(%d)", cell.ArrowRotation)},
						{Key: "opacity", Value: cell.ArrowOpacity},
					},
				})
		}
	}
	return
}
