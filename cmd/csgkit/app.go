package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/chazu/csgkit/pkg/config"
	"github.com/chazu/csgkit/pkg/engine"
	"github.com/chazu/csgkit/pkg/kernel"
	"github.com/chazu/csgkit/pkg/kernel/sdfx"
	"github.com/chazu/csgkit/pkg/tessellate"
)

// colorPalette is a default palette used to assign distinct colors to parts
// that do not set :color.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App runs the script → graph → mesh pipeline.
type App struct {
	engine *engine.Engine
	kernel kernel.Kernel
	log    *slog.Logger
}

// MeshData is the JSON mesh format written by -json.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
	Color    string    `json:"color"`
}

// EvalErrorData is a JSON-serializable eval error or warning.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result of one evaluation.
type EvalResult struct {
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

// OK reports whether the evaluation produced no errors.
func (r *EvalResult) OK() bool { return len(r.Errors) == 0 }

// NewApp creates an App from cfg. A nil logger discards log output.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	k, err := cfg.NewKernel()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &App{
		engine: engine.NewEngine(
			engine.WithTimeout(cfg.EvalTimeout),
			engine.WithSegments(cfg.Segments),
		),
		kernel: k,
		log:    logger,
	}, nil
}

// Evaluate takes Lisp source and returns mesh data + errors.
func (a *App) Evaluate(ctx context.Context, source string) EvalResult {
	result := EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	// Step 1: Evaluate the Lisp source into a design graph.
	res, err := a.engine.EvaluateResult(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		a.log.Error("evaluate", "error", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	for _, w := range res.Warnings {
		a.log.Warn("validation", "node", w.NodeID.Short(), "message", w.Message)
		result.Warnings = append(result.Warnings, EvalErrorData{Line: w.Line, Col: w.Col, Message: w.Message})
	}

	// Step 2: Convert eval errors to the output format.
	if !res.OK() {
		for _, e := range res.Errors {
			result.Errors = append(result.Errors, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		return result
	}
	a.log.Debug("evaluated", "nodes", res.Graph.NodeCount(), "roots", len(res.Graph.Roots))

	// Step 3: Tessellate the design graph into triangle meshes.
	meshes, err := tessellate.TessellateContext(ctx, res.Graph, a.kernel)
	if err != nil {
		a.log.Error("tessellate", "error", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: "tessellation failed: " + err.Error()})
		return result
	}

	// Step 4: Convert kernel meshes to MeshData.
	for i, m := range meshes {
		color := m.Color
		if color == "" {
			color = colorPalette[i%len(colorPalette)]
		}
		a.log.Debug("mesh", "part", m.PartName, "vertices", m.VertexCount(), "triangles", m.TriangleCount())
		result.Meshes = append(result.Meshes, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			PartName: m.PartName,
			Color:    color,
		})
	}

	return result
}

// WriteJSON writes result as indented JSON.
func WriteJSON(w io.Writer, result EvalResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// stlName turns a part name into a file name. Duplicate names get a
// numeric suffix.
func stlName(part string, seen map[string]int) string {
	base := strings.Trim(unsafeFileChars.ReplaceAllString(part, "_"), "_")
	if base == "" {
		base = "part"
	}
	seen[base]++
	if n := seen[base]; n > 1 {
		base = fmt.Sprintf("%s-%d", base, n)
	}
	return base + ".stl"
}

// WriteSTL writes one binary STL file per mesh into dir and returns the
// paths written.
func WriteSTL(dir string, meshes []MeshData) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}
	seen := make(map[string]int)
	var paths []string
	for _, m := range meshes {
		path := filepath.Join(dir, stlName(m.PartName, seen))
		km := &kernel.Mesh{Vertices: m.Vertices, Normals: m.Normals, Indices: m.Indices, PartName: m.PartName}
		if err := sdfx.SaveSTL(path, km); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
