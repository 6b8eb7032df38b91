package root_view

import (
	"bytes"
	"context"
	"html/template"
	"testing"
	"time"

	"gridpath/grid_world"
	"gridpath/server/cell_views"
	"gridpath/server/fastview"
	"gridpath/simulation"

	. "github.com/smartystreets/goconvey/convey"
)

func openSnapshot(width, height int) simulation.Snapshot {
	snap := simulation.Snapshot{
		Width:  width,
		Height: height,
		Cells:  make([][]simulation.CellState, width),
	}
	for x := range snap.Cells {
		snap.Cells[x] = make([]simulation.CellState, height)
		for y := range snap.Cells[x] {
			snap.Cells[x][y] = simulation.CellState{Kind: grid_world.OPEN}
		}
	}
	return snap
}

func TestBatchify(t *testing.T) {
	Convey("When updates for the same element arrive within a batch", t, func() {
		done := make(chan struct{})
		defer close(done)
		source := make(chan []fastview.EleUpdate)
		output := batchify(done, source, time.Millisecond*50)

		source <- []fastview.EleUpdate{{EleId: "a", Ops: []fastview.Op{{Key: "fill", Value: "red"}}}}
		source <- []fastview.EleUpdate{{EleId: "a", Ops: []fastview.Op{{Key: "fill", Value: "blue"}}}}

		Convey("Only the latest update is sent", func() {
			batch := <-output
			So(len(batch), ShouldEqual, 1)
			So(batch[0].Ops[0].Value, ShouldEqual, "blue")
		})
	})

	Convey("When the source closes with pending updates", t, func() {
		done := make(chan struct{})
		defer close(done)
		source := make(chan []fastview.EleUpdate)
		output := batchify(done, source, time.Hour)

		go func() {
			source <- []fastview.EleUpdate{{EleId: "b"}}
			close(source)
		}()

		batch, ok := <-output
		So(ok, ShouldBeTrue)
		So(batch[0].EleId, ShouldEqual, "b")
		_, ok = <-output
		So(ok, ShouldBeFalse)
	})
}

func TestRootView(t *testing.T) {
	Convey("Given a root view over snapshots", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		initial := openSnapshot(3, 2)
		snapshots := make(chan simulation.Snapshot, 1)
		rv, err := NewRootView(ctx, initial, snapshots)
		So(err, ShouldBeNil)

		Convey("The main page renders every view", func() {
			tmpl := template.New("index")
			name, err := rv.Parse(tmpl)
			So(err, ShouldBeNil)
			So(name, ShouldEqual, "mainpage")

			var buf bytes.Buffer
			So(tmpl.ExecuteTemplate(&buf, name, cell_views.Convert(initial)), ShouldBeNil)
			page := buf.String()
			So(page, ShouldContainSubstring, `id="statspanel"`)
			So(page, ShouldContainSubstring, `id="potentialgrid"`)
			So(page, ShouldContainSubstring, `id="potentialsurface"`)
			So(page, ShouldContainSubstring, "location.host")
		})

		Convey("Snapshots reach the page as element updates", func() {
			next := openSnapshot(3, 2)
			next.Turn = 4
			snapshots <- next

			found := false
			for !found {
				for _, update := range <-rv.Updates() {
					if update.EleId == "stats-turn" {
						So(update.Ops[0].Value, ShouldEqual, "4")
						found = true
					}
				}
			}
		})
	})
}
