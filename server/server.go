package server

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"sync"

	"gridpath/server/cell_views"
	"gridpath/server/fastview"
	"gridpath/server/root_view"
	"gridpath/simulation"

	"github.com/gorilla/mux"
	channerics "github.com/niceyeti/channerics/channels"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Server serves a single page showing a running scenario, its live element updates over a
// websocket, and the unit routes as geojson.
type Server struct {
	addr     string
	rootView *root_view.RootView
	router   *mux.Router
	// published holds the latest batch of element updates for the websocket client.
	published chan []fastview.EleUpdate

	mu   sync.RWMutex
	last simulation.Snapshot
}

// NewServer initializes all of the views and returns a server. Snapshots must keep the
// dimensions of the initial snapshot.
func NewServer(
	ctx context.Context,
	addr string,
	initial simulation.Snapshot,
	snapshots <-chan simulation.Snapshot,
) (*Server, error) {
	outputs := channerics.Broadcast(ctx.Done(), snapshots, 2)

	rootView, err := root_view.NewRootView(ctx, initial, outputs[0])
	if err != nil {
		return nil, fmt.Errorf("root view: %w", err)
	}

	server := &Server{
		addr:      addr,
		rootView:  rootView,
		published: make(chan []fastview.EleUpdate, 1),
		last:      initial,
	}
	server.router = server.routes()

	go server.track(outputs[1])
	go server.drain(ctx.Done())
	return server, nil
}

func (server *Server) routes() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/", server.serveIndex).Methods(http.MethodGet)
	router.HandleFunc("/ws", server.serveWebsocket)
	router.HandleFunc("/routes.geojson", server.serveRoutes).Methods(http.MethodGet)
	router.HandleFunc("/stats", server.serveStats).Methods(http.MethodGet)
	return router
}

// Handler returns the server's router.
func (server *Server) Handler() http.Handler {
	return server.router
}

func (server *Server) Serve() (err error) {
	if err = http.ListenAndServe(server.addr, server.router); err != nil {
		err = fmt.Errorf("serve: %w", err)
	}
	return
}

// Latest returns the most recent snapshot received.
func (server *Server) Latest() simulation.Snapshot {
	server.mu.RLock()
	defer server.mu.RUnlock()
	return server.last
}

func (server *Server) track(snapshots <-chan simulation.Snapshot) {
	for snap := range snapshots {
		server.mu.Lock()
		server.last = snap
		server.mu.Unlock()
	}
}

// drain keeps the view pipeline moving when no client is connected, retaining only the
// latest batch of updates.
func (server *Server) drain(done <-chan struct{}) {
	for updates := range channerics.OrDone(done, server.rootView.Updates()) {
		select {
		case server.published <- updates:
			continue
		default:
		}
		select {
		case <-server.published:
		default:
		}
		select {
		case server.published <- updates:
		default:
		}
	}
}

// serveWebsocket publishes element updates to the client via websocket. Updates are not
// multiplexed, so only one client receives each batch.
func (server *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	cli, err := fastview.NewClient[[]fastview.EleUpdate](server.published, w, r)
	if err != nil {
		log.Println(err)
		return
	}
	if err := cli.Sync(); err != nil {
		log.Println("sync:", err)
	}
}

// Serve the index.html main page.
func (server *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	board := cell_views.Convert(server.Latest())
	if err := renderTemplate(w, server.rootView, board); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// serveRoutes writes each unit's position and remaining route as a geojson line string.
func (server *Server) serveRoutes(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/geo+json")
	if err := json.NewEncoder(w).Encode(RoutesGeoJSON(server.Latest())); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (server *Server) serveStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	snap := server.Latest()
	body := struct {
		Turn  int                  `json:"turn"`
		Stats simulation.StatsView `json:"stats"`
	}{snap.Turn, snap.Stats}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// RoutesGeoJSON converts the units of a snapshot to a feature collection of line strings in
// grid coordinates, one per unit, starting at the unit's position.
func RoutesGeoJSON(snap simulation.Snapshot) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, u := range snap.Units {
		line := orb.LineString{{float64(u.Pos.X), float64(u.Pos.Y)}}
		for _, pos := range u.Route {
			line = append(line, orb.Point{float64(pos.X), float64(pos.Y)})
		}
		feature := geojson.NewFeature(line)
		feature.Properties["id"] = u.ID
		feature.Properties["goal"] = []int{u.Goal.X, u.Goal.Y}
		feature.Properties["turn"] = snap.Turn
		fc.Append(feature)
	}
	return fc
}

func renderTemplate(
	w io.Writer,
	vc fastview.ViewComponent,
	data interface{},
) (err error) {
	t := template.New("index.html")
	var tname string
	if tname, err = vc.Parse(t); err != nil {
		return
	}
	if _, err = t.Parse(`{{ template "` + tname + `" . }}`); err != nil {
		return
	}
	return t.Execute(w, data)
}
