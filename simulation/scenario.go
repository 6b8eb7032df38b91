package simulation

import (
	"fmt"
	"log"
	"math/rand"

	"gridpath/grid_world"
	"gridpath/movement_cost"
	"gridpath/path_finding"
	"gridpath/potential"
	"gridpath/scheduler"
	"gridpath/unit"
)

// Scenario owns the world and its units and advances them one turn at a time. It is not
// safe for concurrent use; Run drives it from a single goroutine.
type Scenario struct {
	Grid  *grid_world.Grid
	World *grid_world.World
	// Units holds every unit in config order, including those that already left the world.
	Units []*unit.Unit
	Stats *Stats

	finders    map[*unit.Unit]*path_finding.PathFinder
	turns      *scheduler.RoundRobin[*unit.Unit]
	walls      []WallConfig
	scent      potential.ScentField
	scentMult  float64
	horizon    int
	sightLimit int
	pathSlope  float64
	pathCutoff float64
	// decidedSlope selects the linear route attractor when positive.
	decidedSlope float64
	turn         int
}

// TurnResult reports one unit's turn.
type TurnResult struct {
	Turn    int
	UnitID  string
	From    grid_world.Position
	To      grid_world.Position
	Outcome unit.Outcome
	// Done is set when the unit left the world after this turn.
	Done bool
}

// NewScenario builds the world from the config and plans every unit's initial route.
// Units are spawned in config order, so later units plan around the start cells of
// earlier ones.
func NewScenario(cfg *Config) (*Scenario, error) {
	track := cfg.Track
	if len(track) == 0 {
		track = grid_world.FullTrack
	}
	grid, special, err := grid_world.Convert(track)
	if err != nil {
		return nil, err
	}
	if len(cfg.Agents) == 0 {
		return nil, fmt.Errorf("%w: no agents", ErrInvalidScenario)
	}

	s := &Scenario{
		Grid:       grid,
		World:      grid_world.NewWorld(grid, special),
		Stats:      NewStats(),
		finders:    map[*unit.Unit]*path_finding.PathFinder{},
		turns:      scheduler.NewRoundRobin[*unit.Unit](),
		walls:      cfg.Walls,
		scentMult:  cfg.GetParamOrDefault("scent_multiplier", 1),
		horizon:    int(cfg.GetParamOrDefault("repair_horizon", 5)),
		sightLimit: int(cfg.GetParamOrDefault("sight_limit", 6)),
		pathSlope:  cfg.GetParamOrDefault("path_slope", potential.DefaultSlope),
		pathCutoff: cfg.GetParamOrDefault("path_cutoff", potential.DefaultCutoff),

		decidedSlope: cfg.GetParamOrDefault("decided_slope", 0),
	}
	if len(cfg.Scent) > 0 {
		sources := make(potential.Sources, len(cfg.Scent))
		for i, sc := range cfg.Scent {
			sources[i] = potential.Source{
				Pos:      grid_world.Position{X: sc.X, Y: sc.Y},
				Strength: sc.Strength,
				Radius:   sc.Radius,
			}
		}
		s.scent = sources
	}

	budget := int(cfg.GetParamOrDefault("budget", path_finding.MaxValidNodes))
	seed := int64(cfg.GetParamOrDefault("seed", 1))

	for i, agent := range cfg.Agents {
		var u *unit.Unit
		if u, err = s.spawn(i, agent, budget, seed); err != nil {
			return nil, fmt.Errorf("agent %q: %w", agent.ID, err)
		}
		s.Units = append(s.Units, u)
	}
	return s, nil
}

func (s *Scenario) spawn(i int, agent AgentConfig, budget int, seed int64) (u *unit.Unit, err error) {
	var start, goal grid_world.Position
	if start, err = s.endpoint(agent.Start, grid_world.SpecialStart, i); err != nil {
		return
	}
	if goal, err = s.endpoint(agent.Goal, grid_world.SpecialFinish, i); err != nil {
		return
	}
	if !s.World.IsValidPoint(start) {
		return nil, fmt.Errorf("%w: start %v is blocked", ErrInvalidScenario, start)
	}

	var moves, sight grid_world.MoveTemplate
	if moves, err = grid_world.MovesByName(agent.Moves); err != nil {
		return
	}
	sightName := agent.Sight
	if sightName == "" {
		sightName = "radius9"
	}
	if sight, err = grid_world.MovesByName(sightName); err != nil {
		return
	}

	var cost, heuristic movement_cost.Strategy
	if cost, err = movement_cost.ByName(agent.Cost); err != nil {
		return
	}
	if heuristic, err = movement_cost.ByName(agent.Heuristic); err != nil {
		return
	}
	if agent.CostScale > 0 && agent.CostScale != 1 {
		cost = movement_cost.Scaled(cost, agent.CostScale)
	}
	rng := rand.New(rand.NewSource(seed + int64(i)))
	if agent.RandomSigma > 0 {
		cost = movement_cost.Randomized(cost, 1, agent.RandomSigma, rng)
	}
	if agent.Shuffle {
		moves = moves.Shuffled(rng)
	}

	var potentialFn potential.Func
	switch {
	case agent.Passive:
		potentialFn = potential.Neutral
	case agent.Repel > 0:
		potentialFn = potential.LinearCutoff(agent.Repel)
	default:
		potentialFn = potential.InertRepel
	}

	u = unit.New(agent.ID, start, potentialFn, moves, cost, sight)
	finder := path_finding.NewPathFinder(cost, heuristic, path_finding.ValidatorFunc(s.isEnterable)).
		WithBounds(s.Grid.Width(), s.Grid.Height()).
		WithMaxNodes(budget)

	waypoints := make([]grid_world.Position, 0, len(agent.Waypoints)+1)
	for _, wp := range agent.Waypoints {
		waypoints = append(waypoints, wp.Position())
	}
	waypoints = append(waypoints, goal)
	if route := u.Plan(finder, waypoints...); route.Empty() && start != goal {
		log.Printf("unit %s: no route from %v to %v", agent.ID, start, goal)
	}

	s.World.Occupy(start)
	s.World.AddActive(u)
	s.finders[u] = finder
	s.turns.Add(u)
	return u, nil
}

// endpoint picks the configured point, or the i'th special point of that name.
func (s *Scenario) endpoint(p *Point, special string, i int) (grid_world.Position, error) {
	if p != nil {
		return p.Position(), nil
	}
	points := s.World.Special[special]
	if len(points) == 0 {
		return grid_world.Position{}, fmt.Errorf("%w: no %s given and the track has none", ErrInvalidScenario, special)
	}
	return points[i%len(points)], nil
}

// isEnterable is the validity predicate of every search: the world's own check plus
// the configured walls that have already appeared.
func (s *Scenario) isEnterable(pos grid_world.Position) bool {
	if !s.World.IsValidPoint(pos) {
		return false
	}
	for _, w := range s.walls {
		if w.FromTurn <= s.turn && w.X == pos.X && w.Y == pos.Y {
			return false
		}
	}
	return true
}

func (s *Scenario) activeWalls() []grid_world.Position {
	var walls []grid_world.Position
	for _, w := range s.walls {
		if w.FromTurn <= s.turn {
			walls = append(walls, grid_world.Position{X: w.X, Y: w.Y})
		}
	}
	return walls
}

// mockObjects are the transient field objects of u's turn: appeared walls, an
// attractor over the part of u's route it can see, and the scent.
func (s *Scenario) mockObjects(u *unit.Unit) []grid_world.FieldObject {
	var objects []grid_world.FieldObject
	if walls := s.activeWalls(); len(walls) > 0 {
		objects = append(objects, potential.NewWallObject(walls...))
	}

	var ahead []grid_world.Position
	for i, pos := range u.Route() {
		if i >= s.sightLimit {
			break
		}
		ahead = append(ahead, pos)
	}
	if s.decidedSlope > 0 {
		objects = append(objects, &potential.DecidedPath{Points: ahead, Slope: s.decidedSlope})
	} else {
		objects = append(objects, &potential.PathObject{
			Points: ahead,
			Slope:  s.pathSlope,
			Cutoff: s.pathCutoff,
		})
	}

	if s.scent != nil {
		objects = append(objects, &potential.ScentObject{Field: s.scent, Multiplier: s.scentMult})
	}
	return objects
}

// Turn is the number of turns taken so far.
func (s *Scenario) Turn() int {
	return s.turn
}

// Remaining is the number of units still in the world.
func (s *Scenario) Remaining() int {
	return s.turns.Len()
}

// Tick gives the next unit its turn. The bool is false when no units remain.
func (s *Scenario) Tick() (result TurnResult, ok bool) {
	u, ok := s.turns.Next()
	if !ok {
		return
	}
	s.World.SetMock(s.mockObjects(u)...)

	from := u.Position()
	outcome := u.Advance(s.World, s.finders[u], s.horizon)
	to := u.Position()
	s.turn++

	result = TurnResult{
		Turn:    s.turn,
		UnitID:  u.ID,
		From:    from,
		To:      to,
		Outcome: outcome,
	}
	s.Stats.record(result, u.MoveCost())

	if u.Route().Empty() && outcome != unit.Blocked {
		s.retire(u)
		result.Done = true
		if to == u.Goal() {
			s.Stats.Arrivals.Add(1)
		} else {
			s.Stats.Stranded.Add(1)
			log.Printf("unit %s stranded at %v, goal %v", u.ID, to, u.Goal())
		}
	}
	return result, true
}

func (s *Scenario) retire(u *unit.Unit) {
	s.turns.Remove(u)
	s.World.RemoveActive(u)
	s.World.Vacate(u.Position())
}
