// Package config holds the settings that are not part of a scene: solver
// backends, logging, playback and streaming.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultGridCellSize         = 4.0
	DefaultGridCells            = 4096
	DefaultProximityStrength    = 1000.0
	DefaultRestitutionThreshold = 1.0
	DefaultLinearSlop           = 0.005
	DefaultWorkers              = 1
	DefaultFrameRate            = 60
	DefaultAddr                 = ":8080"
)

var ErrInvalid = errors.New("config: invalid configuration")

type Config struct {
	Engine Engine `yaml:"engine"`
	Log    Log    `yaml:"log"`
	Runner Runner `yaml:"runner"`
	Stream Stream `yaml:"stream"`
}

// Engine configures the backends built by Engine.Initialize
type Engine struct {
	GridCellSize         float64 `yaml:"grid_cell_size"`
	GridCells            int     `yaml:"grid_cells"`
	ProximityStrength    float64 `yaml:"proximity_strength"`
	ProximityFriction    bool    `yaml:"proximity_friction"`
	RestitutionThreshold float64 `yaml:"restitution_threshold"`
	LinearSlop           float64 `yaml:"linear_slop"`
	// Workers is the number of goroutines of the narrow phase and the integration
	Workers int `yaml:"workers"`
}

type Log struct {
	// Level is debug, info, warn or error
	Level string `yaml:"level"`
	// Format is text or json
	Format string `yaml:"format"`
}

type Runner struct {
	FrameRate int `yaml:"frame_rate"`
}

type Stream struct {
	Addr string `yaml:"addr"`
}

func DefaultEngine() Engine {
	return Engine{
		GridCellSize:         DefaultGridCellSize,
		GridCells:            DefaultGridCells,
		ProximityStrength:    DefaultProximityStrength,
		ProximityFriction:    true,
		RestitutionThreshold: DefaultRestitutionThreshold,
		LinearSlop:           DefaultLinearSlop,
		Workers:              DefaultWorkers,
	}
}

func DefaultConfig() *Config {
	return &Config{
		Engine: DefaultEngine(),
		Log:    Log{Level: "info", Format: "text"},
		Runner: Runner{FrameRate: DefaultFrameRate},
		Stream: Stream{Addr: DefaultAddr},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	var errs []error
	if err := c.Engine.Validate(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Log.level(); err != nil {
		errs = append(errs, err)
	}
	if f := strings.ToLower(c.Log.Format); f != "text" && f != "json" {
		errs = append(errs, fmt.Errorf("%w: log format %q", ErrInvalid, c.Log.Format))
	}
	if c.Runner.FrameRate < 1 {
		errs = append(errs, fmt.Errorf("%w: frame rate %d", ErrInvalid, c.Runner.FrameRate))
	}
	if c.Stream.Addr == "" {
		errs = append(errs, fmt.Errorf("%w: empty stream address", ErrInvalid))
	}
	return errors.Join(errs...)
}

func (e Engine) Validate() error {
	switch {
	case !(e.GridCellSize > 0):
		return fmt.Errorf("%w: grid cell size %v", ErrInvalid, e.GridCellSize)
	case e.GridCells < 1:
		return fmt.Errorf("%w: grid cells %d", ErrInvalid, e.GridCells)
	case !(e.ProximityStrength > 0):
		return fmt.Errorf("%w: proximity strength %v", ErrInvalid, e.ProximityStrength)
	case e.RestitutionThreshold < 0:
		return fmt.Errorf("%w: restitution threshold %v", ErrInvalid, e.RestitutionThreshold)
	case e.LinearSlop < 0:
		return fmt.Errorf("%w: linear slop %v", ErrInvalid, e.LinearSlop)
	case e.Workers < 1:
		return fmt.Errorf("%w: workers %d", ErrInvalid, e.Workers)
	}
	return nil
}

func (l Log) level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("%w: log level %q", ErrInvalid, l.Level)
	}
	return level, nil
}

// Logger builds the logger described by l, writing to w
func (l Log) Logger(w io.Writer) (*slog.Logger, error) {
	level, err := l.level()
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(l.Format) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("%w: log format %q", ErrInvalid, l.Format)
}
