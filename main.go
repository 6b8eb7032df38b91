/*
Gridpath runs a scenario of units moving across a grid map: each unit plans a route with a
pruned best-first search, follows it turn by turn, and steps around obstacles it did not plan
for by descending a local potential field, repairing its route afterwards. The running scenario
is shown on a single page: the potential field as a grid and as a surface, the unit routes,
and the run counters.
*/

package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"gridpath/grid_world"
	"gridpath/server"
	"gridpath/simulation"
)

var (
	dbg        = flag.Bool("debug", false, "debug mode: use the debug track unless the config has one")
	show       = flag.Bool("show", false, "print the grid every turn")
	host       = flag.String("host", "", "The host ip")
	port       = flag.String("port", "8080", "The host port")
	configPath = flag.String("config", "./config.yaml", "The scenario config")
)

// selectTrack returns the config's track, else the debug track in debug mode. Nil selects
// the scenario's default.
func selectTrack(track []string, debug bool) []string {
	if len(track) > 0 {
		return track
	}
	if debug {
		return grid_world.DebugTrack
	}
	return nil
}

func runApp() (err error) {
	var cfg *simulation.Config
	if cfg, err = simulation.FromYaml(*configPath); err != nil {
		return
	}
	cfg.Track = selectTrack(cfg.Track, *dbg)

	var scenario *simulation.Scenario
	if scenario, err = simulation.NewScenario(cfg); err != nil {
		return
	}
	if *dbg {
		for _, u := range scenario.Units {
			fmt.Printf("unit %s\n", u.ID)
			grid_world.ShowGrid(scenario.Grid, u.Route())
		}
	}

	tick, err := cfg.TickDuration()
	if err != nil {
		return
	}

	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	runCtx, runCancel, err := cfg.WithRunDeadline(appCtx)
	if err != nil {
		return
	}
	defer runCancel()

	snapshots := make(chan simulation.Snapshot)
	var srv *server.Server
	if srv, err = server.NewServer(
		appCtx,
		*host+":"+*port,
		scenario.Snapshot(),
		snapshots,
	); err != nil {
		return
	}

	// Export a snapshot every turn; the run goroutine owns the scenario.
	exportSnapshot := func(ctx context.Context, result simulation.TurnResult) {
		if result.Done {
			log.Printf("turn %d: unit %s left the world at %v", result.Turn, result.UnitID, result.To)
		}
		snap := scenario.Snapshot()
		if *show {
			simulation.ShowSnapshot(snap)
		}
		select {
		case snapshots <- snap:
		case <-ctx.Done():
		}
	}

	finished := simulation.Run(runCtx, scenario, tick, exportSnapshot)
	go func() {
		<-finished
		stats := scenario.Stats.View()
		log.Printf("run finished: %d turns, travel %.1f, %d deviations, %d arrived, %d stranded",
			stats.Turns, stats.Travel, stats.Deviations, stats.Arrivals, stats.Stranded)
	}()

	err = srv.Serve()
	return
}

func main() {
	flag.Parse()
	if err := runApp(); err != nil {
		fmt.Println(err)
	}
}
