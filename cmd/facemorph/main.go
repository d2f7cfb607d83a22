// facemorph is a headless CLI for FLAME exports: it inspects them, runs edit
// scripts against the morph engine and exports the result.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/Faultbox/facemorph/internal/config"
	"github.com/Faultbox/facemorph/internal/logger"
	"github.com/Faultbox/facemorph/internal/mesh"
	"github.com/Faultbox/facemorph/internal/morph"
	"github.com/Faultbox/facemorph/internal/script"
	"github.com/Faultbox/facemorph/internal/session"
	"github.com/Faultbox/facemorph/pkg/flame"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "apply":
		cmdApply(args)
	case "export":
		cmdExport(args)
	case "config":
		cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`facemorph - FLAME face morph utility

Usage:
  facemorph <command> [options]

Commands:
  info <flame-dir>                          Show model and region information
  apply [options] <flame-dir> <script.yaml> Run an edit script
  export [options] <flame-dir>              Write the morphed mesh as OBJ
  config [path]                             Write the default viewer config

Options:
  -session <file>   Session to start from and save to
  -o <file.obj>     OBJ output path
  -debug            Enable debug logging

Examples:
  facemorph info models/flame/web
  facemorph apply -session face.yaml -o face.obj models/flame/web nose.yaml
  facemorph export -session face.yaml -o face.obj models/flame/web`)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func initLogger(debug bool) {
	level := "warn"
	if debug {
		level = "debug"
	}
	if err := logger.Init(level, ""); err != nil {
		fail(err)
	}
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: facemorph info <flame-dir>")
		os.Exit(1)
	}
	initLogger(false)

	model, err := flame.Load(args[0])
	if err != nil {
		fail(err)
	}

	t := model.Template
	base := model.Base()
	fmt.Printf("Model:      %s\n", args[0])
	fmt.Printf("Vertices:   %d\n", t.VertexCount)
	fmt.Printf("Triangles:  %d\n", base.TriangleCount())
	fmt.Printf("Shape:      %d components\n", t.ShapeParamCount)
	fmt.Printf("Expression: %d components\n", t.ExpressionParamCount)
	fmt.Printf("UVs:        %d\n", len(model.UV))
	fmt.Printf("Radius:     %.4f\n", base.Radius())
	fmt.Println()

	regions := model.RegionTable()
	fmt.Println("Regions:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, name := range regions.Names() {
		idx := regions.Indices(name)
		fmt.Fprintf(w, "  %s\t%d\tspread %.4f\n", name, len(idx), mesh.Spread(base.Positions(), idx))
	}
	w.Flush()
}

// engineFor loads a model into a fresh engine. When the session file exists
// it is returned alongside, not yet installed.
func engineFor(dir, sessionPath string) (*flame.Model, *morph.Engine, *session.File) {
	model, err := flame.Load(dir)
	if err != nil {
		fail(err)
	}
	e := morph.New(morph.DefaultConfig())
	e.Load(model.Base(), model.RegionTable())

	if sessionPath == "" {
		return model, e, nil
	}
	f, err := session.Load(sessionPath)
	if errors.Is(err, fs.ErrNotExist) {
		return model, e, nil
	}
	if err != nil {
		fail(err)
	}
	return model, e, f
}

// rebaser derives the base mesh from a coefficient set.
func rebaser(model *flame.Model, e *morph.Engine) func(session.Coefficients) error {
	return func(c session.Coefficients) error {
		if c.Empty() {
			return nil
		}
		if !e.Rebase(model.Derive(c.Shape, c.Expression)) {
			return errors.New("rebase rejected derived positions")
		}
		return nil
	}
}

func cmdApply(args []string) {
	flags := flag.NewFlagSet("apply", flag.ExitOnError)
	sessionPath := flags.String("session", "", "Session to start from and save to")
	out := flags.String("o", "", "OBJ output path")
	debug := flags.Bool("debug", false, "Enable debug logging")
	flags.Parse(args)

	if flags.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: facemorph apply [options] <flame-dir> <script.yaml>")
		os.Exit(1)
	}
	initLogger(*debug)

	s, err := script.Load(flags.Arg(1))
	if err != nil {
		fail(err)
	}
	model, e, f := engineFor(flags.Arg(0), *sessionPath)
	if f == nil {
		f = session.Capture(e.State(), nil)
	}

	coef := f.Coefficients
	if scripted := (session.Coefficients{Shape: s.Shape, Expression: s.Expression}); !scripted.Empty() {
		if !coef.Empty() && !coef.Equal(scripted) {
			fmt.Fprintln(os.Stderr, "Warning: script coefficients replace the session's")
		}
		coef = scripted
	}

	// The session state is installed on top of the rebased mesh.
	if err := rebaser(model, e)(coef); err != nil {
		fail(err)
	}
	if err := f.Install(e, nil); err != nil {
		fail(err)
	}

	r := s.Run(e)
	fmt.Printf("Steps: %d applied, %d without effect\n", r.Applied, r.Skipped)
	printChanges(e.Changes())

	if *sessionPath != "" {
		if err := session.SaveEngine(*sessionPath, e, coef); err != nil {
			fail(err)
		}
		fmt.Printf("Session saved to %s\n", *sessionPath)
	}
	if *out != "" {
		writeOBJ(*out, e)
	}
}

func cmdExport(args []string) {
	flags := flag.NewFlagSet("export", flag.ExitOnError)
	sessionPath := flags.String("session", "", "Session to apply")
	out := flags.String("o", "face.obj", "OBJ output path")
	flags.Parse(args)

	if flags.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: facemorph export [options] <flame-dir>")
		os.Exit(1)
	}
	initLogger(false)

	model, e, f := engineFor(flags.Arg(0), *sessionPath)
	if f != nil {
		if err := f.Install(e, rebaser(model, e)); err != nil {
			fail(err)
		}
	}
	writeOBJ(*out, e)
}

func cmdConfig(args []string) {
	cfg := config.Default()
	if len(args) > 0 {
		if err := cfg.SaveTo(args[0]); err != nil {
			fail(err)
		}
		fmt.Printf("Config written to %s\n", args[0])
		return
	}
	if err := cfg.Save(); err != nil {
		fail(err)
	}
	fmt.Printf("Config written to %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
}

func printChanges(changes []morph.Change) {
	if len(changes) == 0 {
		fmt.Println("No changes")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "REGION\tINFLATE\tTRANSLATE\tSMOOTH")
	for _, c := range changes {
		p := c.Params
		fmt.Fprintf(w, "%s\t%+.3f\t(%+.3f, %+.3f, %+.3f)\t%d\n",
			c.Region, p.Inflate, p.Translate.X, p.Translate.Y, p.Translate.Z, p.Smooth)
	}
	w.Flush()
}

func writeOBJ(path string, e *morph.Engine) {
	e.Reconcile()
	if err := mesh.SaveOBJ(path, e.Positions(), e.Normals(), e.Base().Indices()); err != nil {
		fail(err)
	}
	fmt.Printf("Mesh written to %s\n", path)
}
