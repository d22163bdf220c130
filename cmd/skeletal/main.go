// Command skeletal converts, inspects and builds triangle meshes and
// radius-annotated skeletons.
//
// Usage:
//
//	skeletal info [-json] FILE...
//	skeletal convert [flags] IN OUT
//	skeletal run [flags] SCRIPT
//
// Meshes are read from .obj, .off, .ply and .3mf files and written to
// .obj, .ply and .3mf. Skeletons are read from .ply and written to .ply
// and .dxf.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/skeletal/pkg/meshio"
	"github.com/chazu/skeletal/pkg/scene"
)

var (
	errUsage  = errors.New("usage")
	errFailed = errors.New("build failed")
)

const usage = `usage:
  skeletal info [-json] FILE...
  skeletal convert [flags] IN OUT
  skeletal run [flags] SCRIPT

Run "skeletal COMMAND -h" for the flags of a command.
`

func main() {
	log.SetFlags(0)
	log.SetPrefix("skeletal: ")

	err := run(os.Args[1:], os.Stdout, os.Stderr)
	switch {
	case err == nil:
	case errors.Is(err, flag.ErrHelp):
	case errors.Is(err, errUsage):
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	default:
		log.Fatal(err)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "info":
		return runInfo(args[1:], stdout, stderr)
	case "convert":
		return runConvert(args[1:], stdout, stderr)
	case "run":
		return runScript(args[1:], stdout, stderr)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("skeletal "+name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

// loadScene reads one file into a single-entry scene named after the file.
func loadScene(path string) (*scene.Scene, error) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	sc := scene.New()

	isSkel, err := meshio.SniffSkeletonPLY(path)
	if err != nil {
		return nil, err
	}
	if isSkel {
		s, err := meshio.LoadSkeleton(path)
		if err != nil {
			return nil, err
		}
		_, err = sc.AddSkeleton(name, s)
		return sc, err
	}

	m, err := meshio.LoadMesh(path)
	if err != nil {
		return nil, err
	}
	_, err = sc.AddMesh(name, m)
	return sc, err
}

func runInfo(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("info", stderr)
	asJSON := fs.Bool("json", false, "print the report as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("%w: info needs at least one file", errUsage)
	}

	report := newReport()
	for _, path := range fs.Args() {
		sc, err := loadScene(path)
		if err != nil {
			return err
		}
		r := sceneReport(sc)
		report.Entries = append(report.Entries, r.Entries...)
		report.Errors = append(report.Errors, r.Errors...)
		report.Warnings = append(report.Warnings, r.Warnings...)
	}

	if *asJSON {
		return report.writeJSON(stdout)
	}
	return report.writeText(stdout)
}

func runConvert(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("convert", stderr)
	cf := bindConfigFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("%w: convert needs IN and OUT", errUsage)
	}
	cfg, err := cf.resolve(fs)
	if err != nil {
		return err
	}
	in, out := fs.Arg(0), fs.Arg(1)

	sc, err := loadScene(in)
	if err != nil {
		return err
	}
	e := sc.Entries()[0]
	opts := cfg.saveOptions(e.Name)
	switch e.Kind {
	case scene.KindSkeleton:
		err = meshio.SaveSkeleton(out, e.Skeleton, opts)
	default:
		err = meshio.SaveMesh(out, e.Mesh, opts)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "wrote %s\n", out)
	return nil
}

func runScript(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("run", stderr)
	cf := bindConfigFlags(fs)
	outDir := fs.String("out", ".", "output directory")
	meshExt := fs.String("mesh-ext", ".ply", "mesh output extension: .ply, .obj, .3mf")
	skelExt := fs.String("skeleton-ext", ".ply", "skeleton output extension: .ply, .dxf")
	dryRun := fs.Bool("n", false, "evaluate and report without writing files")
	asJSON := fs.Bool("json", false, "print the report as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: run needs one SCRIPT", errUsage)
	}
	cfg, err := cf.resolve(fs)
	if err != nil {
		return err
	}

	source, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}

	app, err := NewApp(cfg)
	if err != nil {
		return err
	}
	sc, report, err := app.Build(string(source))
	if err != nil {
		return err
	}
	if *asJSON {
		err = report.writeJSON(stdout)
	} else {
		err = report.writeText(stdout)
	}
	if err != nil {
		return err
	}
	if !report.OK() {
		return fmt.Errorf("%s: %w", fs.Arg(0), errFailed)
	}
	if *dryRun {
		return nil
	}

	written, err := app.Export(sc, *outDir, dotted(*meshExt), dotted(*skelExt))
	if err != nil {
		return err
	}
	if !*asJSON {
		for _, p := range written {
			fmt.Fprintf(stdout, "wrote %s\n", p)
		}
	}
	return nil
}

func dotted(ext string) string {
	if strings.HasPrefix(ext, ".") {
		return ext
	}
	return "." + ext
}
