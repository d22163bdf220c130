package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/chazu/skeletal/pkg/engine"
	"github.com/chazu/skeletal/pkg/kernel"
	"github.com/chazu/skeletal/pkg/kernel/manifold"
	"github.com/chazu/skeletal/pkg/kernel/sdfx"
	"github.com/chazu/skeletal/pkg/meshio"
	"github.com/chazu/skeletal/pkg/tessellate"
	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by all subcommands. It is read from an
// optional YAML file; command-line flags override file values.
type Config struct {
	Kernel          string        `yaml:"kernel"`
	PLYFormat       string        `yaml:"ply_format"`
	Comment         string        `yaml:"comment"`
	MeshCells       int           `yaml:"mesh_cells"`
	WeldTolerance   float64       `yaml:"weld_tolerance"`
	RequireManifold bool          `yaml:"require_manifold"`
	Timeout         time.Duration `yaml:"timeout"`
}

// DefaultConfig returns the settings used when no file or flag says
// otherwise.
func DefaultConfig() Config {
	return Config{
		Kernel:    "sdfx",
		PLYFormat: meshio.ASCII.String(),
		MeshCells: sdfx.DefaultMeshCells,
		Timeout:   engine.EvalTimeout,
	}
}

// LoadConfig reads a YAML config file over DefaultConfig. Unknown keys are
// rejected.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks value ranges.
func (c Config) Validate() error {
	switch c.Kernel {
	case "sdfx", "manifold":
	default:
		return fmt.Errorf("config: unknown kernel %q (want sdfx or manifold)", c.Kernel)
	}
	if _, err := meshio.ParseFormat(c.PLYFormat); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.MeshCells < 1 {
		return fmt.Errorf("config: mesh_cells must be at least 1, got %d", c.MeshCells)
	}
	if c.WeldTolerance < 0 {
		return fmt.Errorf("config: weld_tolerance must not be negative, got %g", c.WeldTolerance)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("config: timeout must be positive, got %s", c.Timeout)
	}
	return nil
}

func (c Config) saveOptions(name string) meshio.SaveOptions {
	// Validate has already accepted the format.
	f, _ := meshio.ParseFormat(c.PLYFormat)
	return meshio.SaveOptions{
		PLY:  meshio.PLYOptions{Format: f, Comment: c.Comment},
		Name: name,
	}
}

// kernel builds the configured backend. mesh_cells only applies to sdfx;
// manifold fails unless the binary was built with the manifold tag.
func (c Config) kernel() (kernel.Kernel, error) {
	if c.Kernel == "manifold" {
		return manifold.New()
	}
	return sdfx.New(sdfx.WithMeshCells(c.MeshCells)), nil
}

func (c Config) tessellateOptions() tessellate.Options {
	return tessellate.Options{
		WeldTolerance:   c.WeldTolerance,
		RequireManifold: c.RequireManifold,
	}
}

// configFlags binds the Config overrides onto a subcommand's flag set.
type configFlags struct {
	path     *string
	kernel   *string
	format   *string
	comment  *string
	cells    *int
	weldTol  *float64
	manifold *bool
	timeout  *time.Duration
}

func bindConfigFlags(fs *flag.FlagSet) *configFlags {
	d := DefaultConfig()
	return &configFlags{
		path:     fs.String("config", "", "YAML config file"),
		kernel:   fs.String("kernel", d.Kernel, "solid kernel: sdfx, manifold"),
		format:   fs.String("format", d.PLYFormat, "PLY output format: ascii, binary, binary_big_endian"),
		comment:  fs.String("comment", d.Comment, "comment written to OBJ and PLY headers"),
		cells:    fs.Int("cells", d.MeshCells, "marching cubes resolution for solids"),
		weldTol:  fs.Float64("weld-tol", d.WeldTolerance, "weld tolerance (0 derives it from the bounding box)"),
		manifold: fs.Bool("require-manifold", d.RequireManifold, "fail when a tessellated solid is not a closed manifold"),
		timeout:  fs.Duration("timeout", d.Timeout, "build script evaluation limit"),
	}
}

// resolve loads the config file, if any, then applies the flags that were
// set explicitly on the command line.
func (cf *configFlags) resolve(fs *flag.FlagSet) (Config, error) {
	cfg := DefaultConfig()
	if *cf.path != "" {
		var err error
		if cfg, err = LoadConfig(*cf.path); err != nil {
			return Config{}, err
		}
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "kernel":
			cfg.Kernel = *cf.kernel
		case "format":
			cfg.PLYFormat = *cf.format
		case "comment":
			cfg.Comment = *cf.comment
		case "cells":
			cfg.MeshCells = *cf.cells
		case "weld-tol":
			cfg.WeldTolerance = *cf.weldTol
		case "require-manifold":
			cfg.RequireManifold = *cf.manifold
		case "timeout":
			cfg.Timeout = *cf.timeout
		}
	})
	return cfg, cfg.Validate()
}
