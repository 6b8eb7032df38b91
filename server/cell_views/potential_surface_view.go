package cell_views

import (
	"fmt"
	"html/template"
	"math"

	"gridpath/server/fastview"

	channerics "github.com/niceyeti/channerics/channels"
)

const (
	cellDim = 60.0 // cell height/width in pixels
	// ang is the angle of the x and y axes in the projection (30°)
	ang = math.Pi / 6
)

var sinAng, cosAng = math.Sin(ang), math.Cos(ang)

// PotentialSurface provides a view of the potential field as a 2d isometric projection
// of the 3d function (x, y, potential).
type PotentialSurface struct {
	id      string
	updates <-chan []fastview.EleUpdate
	// canvas size in pixels, fixed by the board dimensions
	width, height float64
	xyscale       float64 // pixels per x or y unit
	zscale        float64 // pixels per z unit
}

// NewPotentialSurface returns the surface view for boards of cols by rows cells.
func NewPotentialSurface(
	done <-chan struct{},
	boards <-chan Board,
	cols, rows int,
) (ps *PotentialSurface) {
	ps = &PotentialSurface{
		id:      "potentialsurface",
		width:   float64(cols) * cellDim,
		height:  float64(rows) * cellDim,
		xyscale: cellDim,
		zscale:  cellDim * 1.5,
	}
	ps.updates = channerics.Convert(done, boards, ps.onUpdate)
	return
}

func (ps *PotentialSurface) Updates() <-chan []fastview.EleUpdate {
	return ps.updates
}

// project applies an isometric projection to the passed point.
func (ps *PotentialSurface) project(x, y, z float64) (float64, float64) {
	sx := (x - y) * cosAng * ps.xyscale
	sy := (x+y)*sinAng*ps.xyscale - z*ps.zscale
	return sx, sy
}

func (ps *PotentialSurface) getPolyPoints(cellA, cellB, cellC, cellD Cell) string {
	return ps.makePolygon("", cellA, cellB, cellC, cellD).String()
}

// makePolygon returns the projected polygon between four adjacent cells.
// Cell-A is bottom left, Cell-B is top left, Cell-C is top right, and Cell-D is bottom right.
func (ps *PotentialSurface) makePolygon(
	id string,
	cellA, cellB, cellC, cellD Cell,
) (fp *surfacePolygon) {
	fp = &surfacePolygon{Id: id}
	fp.ax, fp.ay = ps.project(float64(cellA.X), float64(cellA.Y), cellA.Height)
	fp.bx, fp.by = ps.project(float64(cellB.X), float64(cellB.Y), cellB.Height)
	fp.cx, fp.cy = ps.project(float64(cellC.X), float64(cellC.Y), cellC.Height)
	fp.dx, fp.dy = ps.project(float64(cellD.X), float64(cellD.Y), cellD.Height)
	return
}

type surfacePolygon struct {
	Id     string
	ax, ay float64
	bx, by float64
	cx, cy float64
	dx, dy float64
}

// String returns a string suitable for the svg-polygon 'points' attribute.
func (fp *surfacePolygon) String() string {
	return fmt.Sprintf("%d,%d %d,%d %d,%d %d,%d",
		int(fp.ax), int(fp.ay),
		int(fp.bx), int(fp.by),
		int(fp.cx), int(fp.cy),
		int(fp.dx), int(fp.dy),
	)
}

func (fp *surfacePolygon) bounds() (minX, minY, maxX, maxY float64) {
	minX = math.Min(math.Min(fp.ax, fp.bx), math.Min(fp.cx, fp.dx))
	minY = math.Min(math.Min(fp.ay, fp.by), math.Min(fp.cy, fp.dy))
	maxX = math.Max(math.Max(fp.ax, fp.bx), math.Max(fp.cx, fp.dx))
	maxY = math.Max(math.Max(fp.ay, fp.by), math.Max(fp.cy, fp.dy))
	return
}

// Returns the polygon updates plus a transform fitting the whole surface in the canvas.
func (ps *PotentialSurface) onUpdate(board Board) (ops []fastview.EleUpdate) {
	cells := board.Cells
	if len(cells) < 2 || len(cells[0]) < 2 {
		return nil
	}

	xmin, ymin := math.MaxFloat64, math.MaxFloat64
	xmax, ymax := -math.MaxFloat64, -math.MaxFloat64
	for ri, row := range cells[:len(cells)-1] {
		for ci, cell := range row[:len(row)-1] {
			cellA := cells[ri+1][ci]
			cellB := cells[ri][ci]
			cellC := cells[ri][ci+1]
			cellD := cells[ri+1][ci+1]
			polygon := ps.makePolygon(
				fmt.Sprintf("%d-%d-surface-polygon", cell.X, cell.Y),
				cellA, cellB, cellC, cellD,
			)

			minX, minY, maxX, maxY := polygon.bounds()
			xmin, ymin = math.Min(xmin, minX), math.Min(ymin, minY)
			xmax, ymax = math.Max(xmax, maxX), math.Max(ymax, maxY)

			avgHeight := (cellA.Height + cellB.Height + cellC.Height + cellD.Height) / 4
			ops = append(ops, fastview.EleUpdate{
				EleId: polygon.Id,
				Ops: []fastview.Op{
					{Key: "points", Value: polygon.String()},
					{Key: "fill", Value: getRGBFill(avgHeight)},
				},
			})
		}
	}

	// Scale down only when the plot does not fit.
	scaler := math.Min(
		math.Min(
			math.Abs(ps.width/(xmax-xmin)),
			math.Abs(ps.height/(ymax-ymin)),
		),
		1.0,
	)
	ops = append(ops, fastview.EleUpdate{
		EleId: ps.id + "-group",
		Ops: []fastview.Op{
			{
				Key:   "transform",
				Value: fmt.Sprintf("scale(%f) translate(%d %d)", scaler, int(-xmin), int(-ymin)),
			},
		},
	})
	return
}

// getRGBFill maps a height in [-1,1] to a color: attractive cells are blue, repulsive red.
func getRGBFill(height float64) string {
	redPct := int(math.Round(50 * (clamp(height, 1) + 1)))
	return fmt.Sprintf("rgb(%d%%,0%%,%d%%)", redPct, 100-redPct)
}

// Parse returns an svg of polygons plotting the potential surface as a 2D projection.
func (ps *PotentialSurface) Parse(t *template.Template) (name string, err error) {
	name = ps.id
	addedMap := template.FuncMap{
		"getPolyPoints": ps.getPolyPoints,
	}
	// Polygons are emitted back to front so nearer polygons obscure farther ones.
	_, err = t.Funcs(addedMap).Parse(
		`{{ define "` + name + `" }}
		<div style="padding:40px;">
			{{ $cells := .Cells }}
			{{ $x_cells := len $cells }}
			{{ $y_cells := len (index $cells 0) }}
			{{ $num_x_polys := sub $x_cells 1 }}
			{{ $num_y_polys := sub $y_cells 1 }}
			<svg id="` + ps.id + `" xmlns='http://www.w3.org/2000/svg'
				width="` + fmt.Sprintf("%d", int(ps.width*2)) + `px"
				height="` + fmt.Sprintf("%d", int(ps.height*2)) + `px"
				style="shape-rendering: crispEdges; stroke: lightgrey; stroke-opacity: 1.0; stroke-width: 2;">
				<g id="` + ps.id + `-group" transform="translate(0 0)">
				{{ range $ri, $row := $cells }}
					{{ if lt $ri $num_x_polys }}
						{{ range $j, $unused := $row }}
							{{ $ci := sub (sub (len $row) $j) 1 }}
							{{ $cell := index $row $ci }}
							{{ if lt $ci $num_y_polys }}
								{{ $cell_a := index $cells (add $ri 1) $ci }}
								{{ $cell_b := index $cells $ri $ci }}
								{{ $cell_c := index $cells $ri (add $ci 1) }}
								{{ $cell_d := index $cells (add $ri 1) (add $ci 1) }}
								<polygon id="{{$cell.X}}-{{$cell.Y}}-surface-polygon"
									fill="black" fill-opacity="1.0"
									points="{{ getPolyPoints $cell_a $cell_b $cell_c $cell_d }}" />
							{{ end }}
						{{ end }}
					{{ end }}
				{{ end }}
				</g>
			</svg>
		</div>
		{{ end }}`)
	return
}
