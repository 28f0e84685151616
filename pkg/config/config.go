// Package config loads csgkit settings from CSGKIT_* environment variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/chazu/csgkit/pkg/csg"
	"github.com/chazu/csgkit/pkg/kernel"
	"github.com/chazu/csgkit/pkg/kernel/bspkernel"
	"github.com/chazu/csgkit/pkg/kernel/sdfx"
)

// Prefix is the environment variable prefix, e.g. CSGKIT_EPSILON.
const Prefix = "CSGKIT"

// Config holds every csgkit setting. Field tags name the variable after
// the CSGKIT_ prefix and its default.
type Config struct {
	Epsilon       float32       `envconfig:"EPSILON" default:"1e-5"`
	Overflow      string        `envconfig:"OVERFLOW" default:"reject"`
	ParallelBuild bool          `envconfig:"PARALLEL_BUILD" default:"false"`
	MeshCells     int           `envconfig:"MESH_CELLS" default:"48"`
	Segments      int           `envconfig:"SEGMENTS" default:"32"`
	EvalTimeout   time.Duration `envconfig:"EVAL_TIMEOUT" default:"5s"`
	LogLevel      string        `envconfig:"LOG_LEVEL" default:"info"`
	// Kernel is "bsp" for exact polygon booleans or "sdf" for marching
	// cubes over signed distance fields.
	Kernel string `envconfig:"KERNEL" default:"bsp"`
}

// Load reads the CSGKIT_* environment and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot.
func (c *Config) Validate() error {
	if c.Epsilon < 0 {
		return fmt.Errorf("config: epsilon %g must not be negative", c.Epsilon)
	}
	if c.MeshCells < 0 {
		return fmt.Errorf("config: mesh cells %d must not be negative", c.MeshCells)
	}
	if c.Segments < 0 {
		return fmt.Errorf("config: segments %d must not be negative", c.Segments)
	}
	if _, err := csg.ParseOverflowPolicy(c.Overflow); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	switch strings.ToLower(c.Kernel) {
	case "bsp", "sdf":
	default:
		return fmt.Errorf("config: unknown kernel %q, expected bsp or sdf", c.Kernel)
	}
	return nil
}

// CSGOptions maps the settings onto the boolean operator options.
func (c *Config) CSGOptions() (csg.Options, error) {
	policy, err := csg.ParseOverflowPolicy(c.Overflow)
	if err != nil {
		return csg.Options{}, fmt.Errorf("config: %w", err)
	}
	return csg.Options{
		Epsilon:       c.Epsilon,
		Overflow:      policy,
		ParallelBuild: c.ParallelBuild,
	}, nil
}

// SlogLevel parses LogLevel (debug, info, warn or error).
func (c *Config) SlogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("config: log level: %w", err)
	}
	return l, nil
}

// NewKernel builds the configured geometry kernel.
func (c *Config) NewKernel() (kernel.Kernel, error) {
	switch strings.ToLower(c.Kernel) {
	case "sdf":
		return sdfx.New(c.MeshCells), nil
	case "bsp", "":
		opts, err := c.CSGOptions()
		if err != nil {
			return nil, err
		}
		return bspkernel.New(opts, c.MeshCells), nil
	}
	return nil, fmt.Errorf("config: unknown kernel %q, expected bsp or sdf", c.Kernel)
}
