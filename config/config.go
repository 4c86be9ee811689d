// Package config contains the build configuration for the lbvh tool.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/achilleasa/lbvh/accel/lbvh"
	"github.com/achilleasa/lbvh/log"
	"gopkg.in/yaml.v3"
)

// Supported leaf record types.
const (
	LeafTriangle = "triangle"
	LeafAABB     = "aabb"
)

var (
	ErrInvalidConfig = errors.New("config: invalid build configuration")
)

// Build holds the options used when compiling acceleration structures.
type Build struct {
	// Number of concurrent workers; 0 uses one per CPU.
	Workers int `yaml:"workers"`

	// Work items per work group; 0 lets the device decide.
	LocalWorkSize int `yaml:"local_work_size"`

	// Key sorting strategy (radix|stable).
	Sorter string `yaml:"sorter"`

	// Logger verbosity (debug|info|notice|warning|error).
	LogLevel string `yaml:"log_level"`

	// Leaf record type emitted for meshes (triangle|aabb).
	LeafType string `yaml:"leaf_type"`

	// Geometry id stored in every leaf record.
	GeometryID uint32 `yaml:"geometry_id"`

	// Opaque flags recorded in the header.
	BuildFlags uint32 `yaml:"build_flags"`
}

// Get the default build configuration.
func Default() Build {
	return Build{
		Sorter:   "radix",
		LogLevel: "notice",
		LeafType: LeafTriangle,
	}
}

// Load a YAML configuration file. Fields missing from the file keep their
// default values.
func Load(path string) (Build, error) {
	f, err := os.Open(path)
	if err != nil {
		return Build{}, err
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return Build{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode a YAML configuration from r on top of the default values.
// Unknown keys are rejected.
func Decode(r io.Reader) (Build, error) {
	cfg := Default()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Build{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Build{}, err
	}
	return cfg, nil
}

// Check that all fields hold supported values.
func (c Build) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0; got %d", ErrInvalidConfig, c.Workers)
	}
	if c.LocalWorkSize < 0 {
		return fmt.Errorf("%w: local_work_size must be >= 0; got %d", ErrInvalidConfig, c.LocalWorkSize)
	}
	if _, err := lbvh.NewSorter(c.Sorter); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, err)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, err)
	}
	switch c.LeafType {
	case LeafTriangle, LeafAABB:
	default:
		return fmt.Errorf("%w: unsupported leaf_type %q", ErrInvalidConfig, c.LeafType)
	}
	return nil
}

// Get the builder options described by this configuration.
func (c Build) Options() (lbvh.Options, error) {
	sorter, err := lbvh.NewSorter(c.Sorter)
	if err != nil {
		return lbvh.Options{}, err
	}

	return lbvh.Options{
		Sorter:        sorter,
		LocalWorkSize: c.LocalWorkSize,
		BuildFlags:    c.BuildFlags,
	}, nil
}

// Get the configured log level.
func (c Build) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.Notice
	}
	return level
}
