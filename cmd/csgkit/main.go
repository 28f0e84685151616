// Command csgkit evaluates a csgkit script and writes the resulting part
// meshes as STL files and/or JSON.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/chazu/csgkit/pkg/config"
)

var (
	outDir   = flag.String("out", "", "directory to write one STL file per part")
	jsonOut  = flag.String("json", "", "file to write mesh JSON to, - for stdout")
	kernelID = flag.String("kernel", "", "geometry kernel, bsp or sdf (overrides CSGKIT_KERNEL)")
	verbose  = flag.Bool("v", false, "debug logging (overrides CSGKIT_LOG_LEVEL)")
)

func main() {
	flag.Usage = Usage
	flag.Parse()
	if flag.NArg() != 1 {
		Usage()
		os.Exit(2)
	}
	os.Exit(run(flag.Arg(0)))
}

// Usage is a replacement usage function for the flags package.
func Usage() {
	_, _ = fmt.Fprintf(os.Stderr, "csgkit evaluates a CSG script and exports its parts.\n")
	_, _ = fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
	_, _ = fmt.Fprintf(os.Stderr, "\tcsgkit [flags] script.csg\n")
	_, _ = fmt.Fprintf(os.Stderr, "\tcsgkit [flags] - < script.csg\n")
	_, _ = fmt.Fprintf(os.Stderr, "Settings are also read from CSGKIT_* environment variables.\n")
	_, _ = fmt.Fprintf(os.Stderr, "Flags:\n")
	flag.PrintDefaults()
}

func run(script string) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		return 1
	}
	if *kernelID != "" {
		cfg.Kernel = *kernelID
	}
	if *verbose {
		cfg.LogLevel = "debug"
	}
	level, err := cfg.SlogLevel()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	source, err := readScript(script)
	if err != nil {
		slog.Error("read script", "path", script, "error", err)
		return 1
	}

	app, err := NewApp(cfg, logger)
	if err != nil {
		slog.Error("create app", "error", err)
		return 1
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	result := app.Evaluate(ctx, string(source))
	for _, e := range result.Errors {
		if e.Line > 0 {
			fmt.Fprintf(os.Stderr, "%s:%d: %s\n", script, e.Line, e.Message)
		} else {
			fmt.Fprintf(os.Stderr, "%s: %s\n", script, e.Message)
		}
	}

	if *jsonOut != "" {
		if err := writeJSONFile(*jsonOut, result); err != nil {
			slog.Error("write json", "path", *jsonOut, "error", err)
			return 1
		}
	}
	if !result.OK() {
		return 1
	}

	if *outDir != "" {
		paths, err := WriteSTL(*outDir, result.Meshes)
		if err != nil {
			slog.Error("write stl", "dir", *outDir, "error", err)
			return 1
		}
		for _, p := range paths {
			slog.Info("wrote", "path", p)
		}
	}
	slog.Info("done", "parts", len(result.Meshes), "warnings", len(result.Warnings), "kernel", cfg.Kernel)
	return 0
}

func readScript(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func writeJSONFile(path string, result EvalResult) error {
	if path == "-" {
		return WriteJSON(os.Stdout, result)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteJSON(f, result); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
