// Package config resolves and validates construction-time configuration
// for a search: grid dimensions, search depth, per-layer widths, worker
// count, mover speed and move-down behavior, and evaluator selection. A
// Config is loaded through spf13/viper so an embedder can supply it via
// YAML file or environment variables, but construction always validates
// before returning, never panics.
package config

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/pbnjay/memory"
	"github.com/spf13/viper"

	"github.com/stackedcrooked/tetris-ai/game"
)

// Sentinel errors wrapped by New's returned error, so embedders can test
// the failure kind with errors.Is.
var (
	ErrInvalidDimensions = errors.New("tetris-ai: invalid grid dimensions")
	ErrInvalidDepth      = errors.New("tetris-ai: invalid search depth")
	ErrInvalidWidth      = errors.New("tetris-ai: invalid per-layer width")
	ErrInvalidWorkers    = errors.New("tetris-ai: invalid worker count")
	ErrInvalidSpeed      = errors.New("tetris-ai: invalid mover speed")
	ErrInvalidEvaluator  = errors.New("tetris-ai: invalid evaluator selection")
)

// MoveDownBehavior selects what BlockMover does once a tick's piece is
// already aligned on rotation and column.
type MoveDownBehavior int

const (
	// MoveDownNone applies no vertical step; the piece falls only under
	// gravity.
	MoveDownNone MoveDownBehavior = iota
	// MoveDownMove steps the piece down by one cell per tick.
	MoveDownMove
	// MoveDownDrop immediately hard-drops the piece.
	MoveDownDrop
)

func (b MoveDownBehavior) String() string {
	switch b {
	case MoveDownNone:
		return "none"
	case MoveDownMove:
		return "move"
	case MoveDownDrop:
		return "drop"
	default:
		return "unknown"
	}
}

const (
	maxDepth       = 6
	maxLayerWidth  = 256
	maxMoverSpeed  = 60
	bytesPerWorker = 64 << 20 // 64MiB of estimated per-worker search-tree overhead
)

// Config is the validated construction-time configuration of a search and
// its actuator. Values are resolved from defaults, then overridden by
// whatever viper.Viper the caller supplies to New.
type Config struct {
	GridWidth  int
	GridHeight int

	Depth   int
	Widths  []int
	Workers int

	MoverSpeed        int
	MoveDownBehavior  MoveDownBehavior
	EvaluatorSelection string
}

// defaults mirrors the way turnplayer.GameOptions.SetDefaults resolves
// unset fields against a loaded config: every field has a sane fallback,
// and New only rejects a value the caller explicitly set to something
// illegal.
func defaults() Config {
	return Config{
		GridWidth:          10,
		GridHeight:         20,
		Depth:              4,
		Widths:             []int{64, 32, 16, 8},
		Workers:            0, // resolved by WorkerCountDefault if left at 0
		MoverSpeed:         10,
		MoveDownBehavior:   MoveDownMove,
		EvaluatorSelection: "balanced",
	}
}

// New builds a Config from v (which may be nil, in which case only
// defaults apply), validates it, and returns InvalidConfiguration-style
// sentinel-wrapped errors on the first violation found.
func New(v *viper.Viper) (*Config, error) {
	cfg := defaults()
	if v != nil {
		v.SetDefault("grid_width", cfg.GridWidth)
		v.SetDefault("grid_height", cfg.GridHeight)
		v.SetDefault("depth", cfg.Depth)
		v.SetDefault("widths", cfg.Widths)
		v.SetDefault("workers", cfg.Workers)
		v.SetDefault("mover_speed", cfg.MoverSpeed)
		v.SetDefault("move_down_behavior", cfg.MoveDownBehavior.String())
		v.SetDefault("evaluator", cfg.EvaluatorSelection)

		cfg.GridWidth = v.GetInt("grid_width")
		cfg.GridHeight = v.GetInt("grid_height")
		cfg.Depth = v.GetInt("depth")
		cfg.Widths = v.GetIntSlice("widths")
		cfg.Workers = v.GetInt("workers")
		cfg.MoverSpeed = v.GetInt("mover_speed")
		cfg.EvaluatorSelection = v.GetString("evaluator")
		switch v.GetString("move_down_behavior") {
		case "none":
			cfg.MoveDownBehavior = MoveDownNone
		case "move":
			cfg.MoveDownBehavior = MoveDownMove
		case "drop":
			cfg.MoveDownBehavior = MoveDownDrop
		}
	}

	if cfg.Workers == 0 {
		cfg.Workers = WorkerCountDefault()
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg Config) validate() error {
	if cfg.GridWidth < 1 || cfg.GridHeight < 1 {
		return fmt.Errorf("%w: got %dx%d", ErrInvalidDimensions, cfg.GridWidth, cfg.GridHeight)
	}
	if cfg.Depth < 1 || cfg.Depth > maxDepth {
		return fmt.Errorf("%w: depth must be in [1,%d], got %d", ErrInvalidDepth, maxDepth, cfg.Depth)
	}
	if len(cfg.Widths) < cfg.Depth {
		return fmt.Errorf("%w: need %d per-layer widths, got %d", ErrInvalidWidth, cfg.Depth, len(cfg.Widths))
	}
	for d := 0; d < cfg.Depth; d++ {
		if cfg.Widths[d] < 1 || cfg.Widths[d] > maxLayerWidth {
			return fmt.Errorf("%w: widths[%d]=%d must be in [1,%d]", ErrInvalidWidth, d, cfg.Widths[d], maxLayerWidth)
		}
	}
	if cfg.Workers < 1 || cfg.Workers > runtime.NumCPU()*2 {
		return fmt.Errorf("%w: workers must be in [1,%d], got %d", ErrInvalidWorkers, runtime.NumCPU()*2, cfg.Workers)
	}
	if cfg.MoverSpeed < 1 || cfg.MoverSpeed > maxMoverSpeed {
		return fmt.Errorf("%w: mover speed must be in [1,%d], got %d", ErrInvalidSpeed, maxMoverSpeed, cfg.MoverSpeed)
	}
	if _, err := cfg.Evaluator(); err != nil {
		return err
	}
	return nil
}

// Evaluator resolves EvaluatorSelection to a concrete game.Evaluator.
// "scripted" is deliberately not a resolvable selection here: it needs Lua
// source text Config has no field for, so an embedder that wants it builds
// one directly with game.NewScripted and passes it wherever a Config-backed
// Evaluator would otherwise go.
func (cfg Config) Evaluator() (game.Evaluator, error) {
	switch cfg.EvaluatorSelection {
	case "", "balanced":
		return game.NewBalanced(), nil
	case "tetris-seeking":
		return game.NewTetrisSeeking(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidEvaluator, cfg.EvaluatorSelection)
	}
}

// WorkerCountDefault returns a worker count bounded both by twice the
// host's logical CPU count and by a rough memory ceiling: never spawn more
// workers than the host has room for at an estimated 64MiB of per-worker
// search-tree overhead.
func WorkerCountDefault() int {
	cpuCeiling := runtime.NumCPU() * 2
	memCeiling := int(memory.TotalMemory() / bytesPerWorker)
	if memCeiling < 1 {
		memCeiling = 1
	}
	if memCeiling < cpuCeiling {
		return memCeiling
	}
	return cpuCeiling
}
