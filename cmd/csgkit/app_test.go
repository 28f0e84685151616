package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/chazu/csgkit/pkg/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Epsilon:     1e-5,
		Overflow:    "reject",
		MeshCells:   24,
		Segments:    32,
		EvalTimeout: 5 * time.Second,
		LogLevel:    "info",
		Kernel:      "bsp",
	}
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	app, err := NewApp(testConfig(), nil)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	return app
}

func requireOK(t *testing.T, result EvalResult) {
	t.Helper()
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error (line %d): %s", e.Line, e.Message)
		}
		t.FailNow()
	}
}

func partNames(result EvalResult) []string {
	var names []string
	for _, m := range result.Meshes {
		names = append(names, m.PartName)
	}
	return names
}

// TestE2EExamples exercises the full pipeline on the bundled scripts:
// Lisp source → engine → graph → tessellate → meshes.
func TestE2EExamples(t *testing.T) {
	tests := []struct {
		file  string
		parts []string
	}{
		{"bracket.csg", []string{"bracket"}},
		{"enclosure.csg", []string{"shell", "lid", "knob"}},
		{"marbles.csg", []string{"union", "intersection", "difference"}},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			source, err := os.ReadFile(filepath.Join("..", "..", "examples", tt.file))
			if err != nil {
				t.Fatalf("failed to read %s: %v", tt.file, err)
			}

			result := newTestApp(t).Evaluate(context.Background(), string(source))
			requireOK(t, result)

			if got := partNames(result); strings.Join(got, ",") != strings.Join(tt.parts, ",") {
				t.Fatalf("parts = %v, want %v", got, tt.parts)
			}
			for _, m := range result.Meshes {
				if len(m.Vertices) == 0 || len(m.Normals) == 0 || len(m.Indices) == 0 {
					t.Errorf("part %q: empty geometry", m.PartName)
				}
				if len(m.Vertices) != len(m.Normals) {
					t.Errorf("part %q: %d vertex floats, %d normal floats", m.PartName, len(m.Vertices), len(m.Normals))
				}
				if m.Color == "" {
					t.Errorf("part %q: no color assigned", m.PartName)
				}
			}
		})
	}
}

func TestE2EPartColors(t *testing.T) {
	source, err := os.ReadFile(filepath.Join("..", "..", "examples", "enclosure.csg"))
	if err != nil {
		t.Fatal(err)
	}
	result := newTestApp(t).Evaluate(context.Background(), string(source))
	requireOK(t, result)

	// shell and lid set :color, knob falls back to the palette by position.
	want := []string{"#3a3f44", "#c9d1d9", colorPalette[2]}
	for i, m := range result.Meshes {
		if m.Color != want[i] {
			t.Errorf("part %q color = %q, want %q", m.PartName, m.Color, want[i])
		}
	}
}

// TestE2EEmptySource ensures the pipeline handles empty input gracefully.
func TestE2EEmptySource(t *testing.T) {
	for _, source := range []string{"", "   \n\t ", ";; just a comment\n; another"} {
		result := newTestApp(t).Evaluate(context.Background(), source)

		if len(result.Errors) != 0 || len(result.Meshes) != 0 || len(result.Warnings) != 0 {
			t.Errorf("source %q: got %d errors, %d meshes, %d warnings",
				source, len(result.Errors), len(result.Meshes), len(result.Warnings))
		}
		// Slices must be non-nil so JSON encodes [] rather than null.
		if result.Meshes == nil || result.Errors == nil || result.Warnings == nil {
			t.Errorf("source %q: nil slice in result", source)
		}
	}
}

// TestE2ESyntaxError ensures eval errors are reported, not fatal errors.
func TestE2ESyntaxError(t *testing.T) {
	result := newTestApp(t).Evaluate(context.Background(), "(+ 1 2)\n(defpart \"test\"")

	if len(result.Errors) == 0 {
		t.Fatal("expected eval errors for syntax error")
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes on error, got %d", len(result.Meshes))
	}
	if result.Errors[0].Message == "" {
		t.Error("syntax error should have a non-empty message")
	}
}

func TestE2EUndefinedPartReference(t *testing.T) {
	source := `
(defpart "shelf" (box 600 300 18))
(assembly "unit"
  (place (part "nonexistent") :at (vec3 0 0 0)))
`
	result := newTestApp(t).Evaluate(context.Background(), source)

	if len(result.Errors) == 0 {
		t.Fatal("expected eval error for undefined part reference")
	}
	if !strings.Contains(result.Errors[0].Message, "nonexistent") {
		t.Errorf("expected error mentioning 'nonexistent', got: %v", result.Errors)
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes on error, got %d", len(result.Meshes))
	}
}

func TestE2EInvalidDimensions(t *testing.T) {
	tests := []struct {
		name, source string
	}{
		{"zero length", `(defpart "bad" (box 0 100 19))`},
		{"negative radius", `(defpart "bad" (sphere -1))`},
		{"flat cylinder", `(defpart "bad" (cylinder 0 5))`},
		{"rounding too large", `(defpart "bad" (rounded-box 10 10 2 3))`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := newTestApp(t).Evaluate(context.Background(), tt.source)
			if len(result.Errors) == 0 {
				t.Fatal("expected a validation error")
			}
			if len(result.Meshes) != 0 {
				t.Errorf("expected 0 meshes, got %d", len(result.Meshes))
			}
		})
	}
}

func TestE2EWarningsReported(t *testing.T) {
	result := newTestApp(t).Evaluate(context.Background(), `(defpart "ball" (sphere 5 :slices 2))`)
	requireOK(t, result)

	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0].Message, "clamped") {
		t.Errorf("warnings = %v, want one clamp warning", result.Warnings)
	}
	if len(result.Meshes) != 1 {
		t.Fatalf("expected the clamped sphere to still mesh, got %d meshes", len(result.Meshes))
	}
}

func TestE2ERapidEvaluationAlternating(t *testing.T) {
	// Alternates between valid and invalid sources on the same App.
	// Ensures the engine recovers cleanly between error and success states.
	app := newTestApp(t)

	sources := []struct {
		src string
		ok  bool
	}{
		{`(defpart "ok" (cube 10))`, true},
		{`(defpart "broken"`, false},
		{``, true},
		{`(part "missing")`, false},
		{`(defpart "also-ok" (box 20 10 2))`, true},
		{`(undefined-func 1 2 3)`, false},
		{`(defpart "last" (difference (cube 10) (sphere 6)))`, true},
	}

	for i, s := range sources {
		result := app.Evaluate(context.Background(), s.src)
		if result.OK() != s.ok {
			t.Errorf("source %d (%q): OK = %v, want %v (errors %v)", i, s.src, result.OK(), s.ok, result.Errors)
		}
	}
}

func TestE2ELargeDimensions(t *testing.T) {
	result := newTestApp(t).Evaluate(context.Background(), `(defpart "huge" (box 100000 50000 100))`)
	requireOK(t, result)
	if len(result.Meshes) != 1 || result.Meshes[0].PartName != "huge" {
		t.Fatalf("meshes = %v", partNames(result))
	}
}

func TestE2EColorPaletteWrapping(t *testing.T) {
	var b strings.Builder
	n := len(colorPalette) + 2
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "(defpart \"p%d\" (translate (cube 1) (vec3 %d 0 0)))\n", i, 2*i)
	}

	result := newTestApp(t).Evaluate(context.Background(), b.String())
	requireOK(t, result)
	if len(result.Meshes) != n {
		t.Fatalf("expected %d meshes, got %d", n, len(result.Meshes))
	}
	for i, m := range result.Meshes {
		if want := colorPalette[i%len(colorPalette)]; m.Color != want {
			t.Errorf("mesh %d color = %q, want %q", i, m.Color, want)
		}
	}
}

func TestE2ESdfKernel(t *testing.T) {
	cfg := testConfig()
	cfg.Kernel = "sdf"
	app, err := NewApp(cfg, nil)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}

	result := app.Evaluate(context.Background(), `(defpart "puck" (difference (cylinder 4 10) (cylinder 6 3)))`)
	requireOK(t, result)
	if len(result.Meshes) != 1 || len(result.Meshes[0].Indices) == 0 {
		t.Fatalf("expected one non-empty mesh, got %v", partNames(result))
	}
}

func TestNewAppRejectsUnknownKernel(t *testing.T) {
	cfg := testConfig()
	cfg.Kernel = "manifold"
	if _, err := NewApp(cfg, nil); err == nil {
		t.Fatal("expected an error for an unknown kernel")
	}
}

func TestStlName(t *testing.T) {
	seen := make(map[string]int)
	tests := []struct{ part, want string }{
		{"plate", "plate.stl"},
		{"plate", "plate-2.stl"},
		{"side panel/left", "side_panel_left.stl"},
		{"", "part.stl"},
		{"***", "part-2.stl"},
	}
	for _, tt := range tests {
		if got := stlName(tt.part, seen); got != tt.want {
			t.Errorf("stlName(%q) = %q, want %q", tt.part, got, tt.want)
		}
	}
}

func TestWriteSTL(t *testing.T) {
	result := newTestApp(t).Evaluate(context.Background(), `
(defpart "a" (cube 5))
(defpart "b" (translate (sphere 2) (vec3 10 0 0)))
`)
	requireOK(t, result)

	dir := filepath.Join(t.TempDir(), "out")
	paths, err := WriteSTL(dir, result.Meshes)
	if err != nil {
		t.Fatalf("WriteSTL: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("wrote %d files, want 2", len(paths))
	}
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			t.Fatalf("stat %s: %v", p, err)
		}
		// Binary STL: 80 byte header, uint32 count, 50 bytes per triangle.
		if info.Size() <= 84 || (info.Size()-84)%50 != 0 {
			t.Errorf("%s size = %d is not a binary STL", filepath.Base(p), info.Size())
		}
	}
	if filepath.Base(paths[0]) != "a.stl" || filepath.Base(paths[1]) != "b.stl" {
		t.Errorf("paths = %v", paths)
	}
}

func TestWriteJSON(t *testing.T) {
	result := newTestApp(t).Evaluate(context.Background(), `(defpart "a" (cube 1) :color "#ffffff")`)
	requireOK(t, result)

	var buf bytes.Buffer
	if err := WriteJSON(&buf, result); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var decoded struct {
		Meshes []struct {
			Vertices []float32 `json:"vertices"`
			Indices  []uint32  `json:"indices"`
			PartName string    `json:"partName"`
			Color    string    `json:"color"`
		} `json:"meshes"`
		Errors   []EvalErrorData `json:"errors"`
		Warnings []EvalErrorData `json:"warnings"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded.Meshes) != 1 || decoded.Meshes[0].PartName != "a" || decoded.Meshes[0].Color != "#ffffff" {
		t.Fatalf("decoded = %+v", decoded.Meshes)
	}
	if len(decoded.Meshes[0].Indices) != 36 {
		t.Errorf("indices = %d, want 36", len(decoded.Meshes[0].Indices))
	}
	if !strings.Contains(buf.String(), `"errors": []`) {
		t.Errorf("empty errors should encode as []: %s", buf.String())
	}
}
