package simulation

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gridpath/grid_world"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ScenarioKind is the only config kind the runner accepts.
const ScenarioKind = "scenario"

// ErrInvalidScenario is returned for configs that cannot be turned into a scenario.
var ErrInvalidScenario error = errors.New("invalid scenario")

//go:embed scenario.schema.json
var scenarioSchema string

// OuterConfig is the envelope of every config file: a kind selector and its definition.
type OuterConfig struct {
	Kind string      `mapstructure:"kind"`
	Def  interface{} `mapstructure:"def"`
}

// Config describes a scenario: the map, the agents and their goals, the transient
// obstacles, and the tuning parameters of the planner.
// Keys are snake_case since viper lowercases everything it reads.
type Config struct {
	// Params is a key-val list of tuning parameters, see GetParamOrDefault.
	Params []Param `yaml:"params"`
	// Deadline bounds the whole run, e.g. {duration: 30s}.
	Deadline map[string]string `yaml:"deadline"`
	// Tick is the wall-clock duration between turns.
	Tick string `yaml:"tick"`
	// Track is the map, one string per row, top row first. Empty selects a built-in track.
	Track  []string      `yaml:"track"`
	Agents []AgentConfig `yaml:"agents"`
	// Walls are obstacles unknown to the map that appear at a given turn.
	Walls []WallConfig  `yaml:"walls"`
	Scent []ScentConfig `yaml:"scent"`
}

type Param struct {
	Key string  `yaml:"key"`
	Val float64 `yaml:"val"`
}

type Point struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

func (p Point) Position() grid_world.Position {
	return grid_world.Position{X: p.X, Y: p.Y}
}

// AgentConfig describes one unit. A missing start or goal is taken from the track's
// start and finish cells.
type AgentConfig struct {
	ID          string  `yaml:"id"`
	Start       *Point  `yaml:"start"`
	Goal        *Point  `yaml:"goal"`
	Waypoints   []Point `yaml:"waypoints"`
	Moves       string  `yaml:"moves"`
	Sight       string  `yaml:"sight"`
	Cost        string  `yaml:"cost"`
	Heuristic   string  `yaml:"heuristic"`
	CostScale   float64 `yaml:"cost_scale"`
	RandomSigma float64 `yaml:"random_sigma"`
	// Repel is the radius within which other units may not come; zero only blocks the unit's own cell.
	Repel float64 `yaml:"repel"`
	// Passive units exert no potential on others.
	Passive bool `yaml:"passive"`
	// Shuffle randomizes the order in which the unit's moves are tried.
	Shuffle bool `yaml:"shuffle"`
}

type WallConfig struct {
	X        int `yaml:"x"`
	Y        int `yaml:"y"`
	FromTurn int `yaml:"from_turn"`
}

type ScentConfig struct {
	X        int     `yaml:"x"`
	Y        int     `yaml:"y"`
	Strength float64 `yaml:"strength"`
	Radius   float64 `yaml:"radius"`
}

func (cfg *Config) GetParamOrDefault(param string, defaultVal float64) float64 {
	for _, kvp := range cfg.Params {
		if kvp.Key == param {
			return kvp.Val
		}
	}
	return defaultVal
}

// WithRunDeadline returns a context extended by the run deadline, if one is specified.
func (cfg *Config) WithRunDeadline(
	ctx context.Context,
) (context.Context, context.CancelFunc, error) {
	if val, ok := cfg.Deadline["duration"]; ok {
		duration, err := time.ParseDuration(val)
		if err != nil {
			return nil, nil, fmt.Errorf("deadline: %w", err)
		}
		innerCtx, cancel := context.WithTimeout(ctx, duration)
		return innerCtx, cancel, nil
	}
	defaultCtx, cancel := context.WithCancel(ctx)
	return defaultCtx, cancel, nil
}

// TickDuration is the configured time between turns, 100ms by default.
func (cfg *Config) TickDuration() (time.Duration, error) {
	if cfg.Tick == "" {
		return 100 * time.Millisecond, nil
	}
	tick, err := time.ParseDuration(cfg.Tick)
	if err != nil {
		return 0, fmt.Errorf("tick: %w", err)
	}
	if tick <= 0 {
		return 0, fmt.Errorf("%w: tick must be positive, got %s", ErrInvalidScenario, tick)
	}
	return tick, nil
}

// FromYaml reads a scenario config. The def section is checked against the scenario
// schema before it is decoded.
func FromYaml(path string) (*Config, error) {
	vp := viper.New()
	// An explicit config file is read as given; viper's search paths only apply to SetConfigName.
	vp.SetConfigFile(path)
	vp.SetConfigType("yaml")
	var err error
	if err = vp.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	outerConfig := &OuterConfig{}
	if err = vp.Unmarshal(outerConfig); err != nil {
		return nil, err
	}
	if outerConfig.Kind != ScenarioKind {
		return nil, fmt.Errorf("%w: kind %q, expected %q", ErrInvalidScenario, outerConfig.Kind, ScenarioKind)
	}

	var spec []byte
	if spec, err = yaml.Marshal(outerConfig.Def); err != nil {
		return nil, err
	}
	if err = validate(spec); err != nil {
		return nil, err
	}

	innerConfig := &Config{}
	if err = yaml.Unmarshal(spec, innerConfig); err != nil {
		return nil, err
	}
	return innerConfig, nil
}

// validate checks a yaml document against the scenario schema. The document passes
// through json first so that the validator sees plain json values.
func validate(spec []byte) (err error) {
	var schema *jsonschema.Schema
	if schema, err = jsonschema.CompileString("scenario.schema.json", scenarioSchema); err != nil {
		return
	}

	var doc interface{}
	if err = yaml.Unmarshal(spec, &doc); err != nil {
		return
	}
	var raw []byte
	if raw, err = json.Marshal(doc); err != nil {
		return
	}
	var value interface{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err = dec.Decode(&value); err != nil {
		return
	}

	if err = schema.Validate(value); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}
	return nil
}
