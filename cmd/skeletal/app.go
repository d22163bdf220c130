package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/chazu/skeletal/pkg/engine"
	"github.com/chazu/skeletal/pkg/meshio"
	"github.com/chazu/skeletal/pkg/scene"
)

// App ties a build-script engine to the configured output settings.
type App struct {
	cfg    Config
	engine *engine.Engine
}

// NewApp creates an App whose engine uses the configured kernel,
// tessellation options and timeout.
func NewApp(cfg Config) (*App, error) {
	k, err := cfg.kernel()
	if err != nil {
		return nil, fmt.Errorf("kernel %s: %w", cfg.Kernel, err)
	}
	return &App{
		cfg: cfg,
		engine: engine.NewEngine(
			engine.WithKernel(k),
			engine.WithTessellateOptions(cfg.tessellateOptions()),
			engine.WithTimeout(cfg.Timeout),
		),
	}, nil
}

// Build evaluates source. The scene is nil when the script failed; the
// report then carries its errors.
func (a *App) Build(source string) (*scene.Scene, *Report, error) {
	res, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		log.Printf("evaluate fatal error: %v", err)
		return nil, nil, err
	}
	return res.Scene, evalReport(res), nil
}

// Export writes every scene entry into dir: meshes as name+meshExt,
// skeletons as name+skelExt. It returns the written paths in scene order.
func (a *App) Export(sc *scene.Scene, dir, meshExt, skelExt string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	var written []string
	for _, e := range sc.Entries() {
		opts := a.cfg.saveOptions(e.Name)
		var path string
		var err error
		switch e.Kind {
		case scene.KindMesh:
			path = filepath.Join(dir, e.Name+meshExt)
			err = meshio.SaveMesh(path, e.Mesh, opts)
		case scene.KindSkeleton:
			path = filepath.Join(dir, e.Name+skelExt)
			err = meshio.SaveSkeleton(path, e.Skeleton, opts)
		}
		if err != nil {
			return written, fmt.Errorf("export %q: %w", e.Name, err)
		}
		written = append(written, path)
	}
	return written, nil
}
