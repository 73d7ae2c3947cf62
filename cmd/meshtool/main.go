// meshtool is a CLI utility for inspecting and reshading triangle meshes.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/meshgeo/internal/config"
	"github.com/Faultbox/meshgeo/internal/logger"
	"github.com/Faultbox/meshgeo/pkg/formats"
	"github.com/Faultbox/meshgeo/pkg/mesh"
)

// errUsage is returned when a command is called with the wrong arguments.
var errUsage = errors.New("usage")

func main() {
	config.ParseFlags()
	args := config.Args()
	if len(args) < 1 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger.Debug("config loaded",
		zap.String("config", config.ConfigPath()),
		zap.String("shading", cfg.Import.Shading),
		zap.Int("precision", cfg.Export.Precision),
		zap.String("object_prefix", cfg.Export.ObjectPrefix))

	a := &app{cfg: cfg, out: os.Stdout, log: logger.Named("meshtool")}
	err = a.run(args)
	switch {
	case err == nil:
	case errors.Is(err, errUsage):
		fmt.Fprintf(os.Stderr, "Usage: meshtool %s\n", strings.TrimPrefix(err.Error(), "usage: "))
	default:
		logger.Error("command failed", zap.String("command", args[0]), zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}

	logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `meshtool - triangle mesh utility

Usage:
  meshtool [global options] <command> [options]

Global options:
  -config <file>     Config file (default ./meshtool.yaml)
  -debug             Enable debug logging
  -log-file <file>   Also write logs to a rotating file
  -shading <mode>    Import shading: file, flat or smooth
  -precision <n>     Decimals written per coordinate, 1-9 (-1 for shortest)

Commands:
  info [-yaml] <file.obj>              Show objects, vertices and triangles
  shade <flat|smooth> <in.obj> <out>   Reshade every object
  combine <in.obj> <out.obj>           Merge all objects into one
  cube [-flat] <out.obj>               Write the unit cube
  config [file]                        Save the effective config

Examples:
  meshtool info model.obj
  meshtool -shading smooth info -yaml model.obj
  meshtool shade flat model.obj model_flat.obj
  meshtool -precision -1 combine scene.obj merged.obj`)
}

// app carries the loaded settings into each command.
type app struct {
	cfg *config.Config
	out io.Writer
	log *zap.Logger
}

func (a *app) run(args []string) error {
	command, rest := args[0], args[1:]

	switch command {
	case "info":
		return a.cmdInfo(rest)
	case "shade":
		return a.cmdShade(rest)
	case "combine", "merge":
		return a.cmdCombine(rest)
	case "cube":
		return a.cmdCube(rest)
	case "config":
		return a.cmdConfig(rest)
	case "help", "-h", "--help":
		printUsage(a.out)
		return nil
	default:
		printUsage(os.Stderr)
		return fmt.Errorf("unknown command: %s", command)
	}
}

func usage(line string) error {
	return fmt.Errorf("%w: %s", errUsage, line)
}

// objectSummary describes one object for the info command.
type objectSummary struct {
	Name      string `yaml:"name"`
	Shading   string `yaml:"shading"`
	Vertices  int    `yaml:"vertices"`
	Triangles int    `yaml:"triangles"`
}

// fileSummary is the -yaml output of the info command.
type fileSummary struct {
	File      string          `yaml:"file"`
	Vertices  int             `yaml:"vertices"`
	Triangles int             `yaml:"triangles"`
	Objects   []objectSummary `yaml:"objects"`
}

func (a *app) cmdInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	asYAML := fs.Bool("yaml", false, "Print as YAML")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return usage("info [-yaml] <file.obj>")
	}

	obj, err := a.loadOBJ(fs.Arg(0))
	if err != nil {
		return err
	}

	summary := fileSummary{
		File:      fs.Arg(0),
		Vertices:  obj.GetTotalVertexCount(),
		Triangles: obj.GetTotalTriangleCount(),
	}
	for _, o := range obj.Objects {
		shading := formats.ShadingFlat
		if o.Smooth {
			shading = formats.ShadingSmooth
		}
		summary.Objects = append(summary.Objects, objectSummary{
			Name:      o.Name,
			Shading:   shading.String(),
			Vertices:  len(o.Mesh.Vertices),
			Triangles: o.Mesh.TriangleCount(),
		})
	}

	if *asYAML {
		enc := yaml.NewEncoder(a.out)
		enc.SetIndent(2)
		if err := enc.Encode(summary); err != nil {
			return err
		}
		return enc.Close()
	}

	fmt.Fprintf(a.out, "File:      %s\n", summary.File)
	fmt.Fprintf(a.out, "Objects:   %d\n", len(summary.Objects))
	fmt.Fprintf(a.out, "Vertices:  %d\n", summary.Vertices)
	fmt.Fprintf(a.out, "Triangles: %d\n", summary.Triangles)
	if len(summary.Objects) == 0 {
		return nil
	}
	fmt.Fprintln(a.out)
	fmt.Fprintf(a.out, "  %-20s %-8s %10s %10s\n", "NAME", "SHADING", "VERTICES", "TRIANGLES")
	for _, o := range summary.Objects {
		name := o.Name
		if name == "" {
			name = "(unnamed)"
		}
		fmt.Fprintf(a.out, "  %-20s %-8s %10d %10d\n", name, o.Shading, o.Vertices, o.Triangles)
	}
	return nil
}

func (a *app) cmdShade(args []string) error {
	if len(args) != 3 {
		return usage("shade <flat|smooth> <in.obj> <out.obj>")
	}

	mode, err := formats.ParseShading(args[0])
	if err != nil || mode == formats.ShadingFile {
		return usage("shade <flat|smooth> <in.obj> <out.obj>")
	}

	obj, err := a.loadOBJ(args[1])
	if err != nil {
		return err
	}
	obj.Reshade(mode)

	return a.writeOBJ(args[2], obj.Objects)
}

func (a *app) cmdCombine(args []string) error {
	if len(args) != 2 {
		return usage("combine <in.obj> <out.obj>")
	}

	obj, err := a.loadOBJ(args[0])
	if err != nil {
		return err
	}

	combined, err := mesh.Combine(obj.Meshes())
	if err != nil {
		return fmt.Errorf("combining %s: %w", args[0], err)
	}

	smooth := len(obj.Objects) > 0
	for _, o := range obj.Objects {
		smooth = smooth && o.Smooth
	}

	name := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
	return a.writeOBJ(args[1], []formats.OBJObject{{Name: name, Smooth: smooth, Mesh: combined}})
}

func (a *app) cmdCube(args []string) error {
	fs := flag.NewFlagSet("cube", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	flat := fs.Bool("flat", false, "Flat shade the cube")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return usage("cube [-flat] <out.obj>")
	}

	m := mesh.Cube().RecalculateNormals()
	if *flat {
		m.FlatShade()
	}

	return a.writeOBJ(fs.Arg(0), []formats.OBJObject{{Name: "cube", Smooth: !*flat, Mesh: m}})
}

func (a *app) cmdConfig(args []string) error {
	switch len(args) {
	case 0:
		if err := a.cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Saved %s\n", filepath.Join(config.ConfigDir(), config.FileName))
		return nil
	case 1:
		if err := a.cfg.SaveTo(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Saved %s\n", args[0])
		return nil
	default:
		return usage("config [file]")
	}
}

// loadOBJ parses path and applies the configured import shading.
func (a *app) loadOBJ(path string) (*formats.OBJ, error) {
	shading, err := formats.ParseShading(a.cfg.Import.Shading)
	if err != nil {
		return nil, err
	}

	obj, err := formats.ParseOBJFile(path, formats.WithLogger(a.log))
	if err != nil {
		return nil, err
	}
	obj.Reshade(shading)

	a.log.Info("loaded mesh",
		zap.String("path", path),
		zap.Int("objects", len(obj.Objects)),
		zap.Int("triangles", obj.GetTotalTriangleCount()),
		zap.Stringer("shading", shading))
	return obj, nil
}

func (a *app) writeOBJ(path string, objects []formats.OBJObject) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	opts := formats.OBJWriteOptions{
		Precision:    a.cfg.Export.Precision,
		ObjectPrefix: a.cfg.Export.ObjectPrefix,
	}
	if err := formats.WriteOBJ(f, objects, opts); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	a.log.Info("wrote mesh", zap.String("path", path), zap.Int("objects", len(objects)))
	return nil
}
