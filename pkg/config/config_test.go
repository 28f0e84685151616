package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/csgkit/pkg/csg"
	"github.com/chazu/csgkit/pkg/kernel/bspkernel"
	"github.com/chazu/csgkit/pkg/kernel/sdfx"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, float32(1e-5), cfg.Epsilon)
	assert.Equal(t, "reject", cfg.Overflow)
	assert.False(t, cfg.ParallelBuild)
	assert.Equal(t, 48, cfg.MeshCells)
	assert.Equal(t, 32, cfg.Segments)
	assert.Equal(t, 5*time.Second, cfg.EvalTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "bsp", cfg.Kernel)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CSGKIT_EPSILON", "0.001")
	t.Setenv("CSGKIT_OVERFLOW", "drop")
	t.Setenv("CSGKIT_PARALLEL_BUILD", "true")
	t.Setenv("CSGKIT_MESH_CELLS", "96")
	t.Setenv("CSGKIT_SEGMENTS", "64")
	t.Setenv("CSGKIT_EVAL_TIMEOUT", "250ms")
	t.Setenv("CSGKIT_LOG_LEVEL", "debug")
	t.Setenv("CSGKIT_KERNEL", "sdf")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, float32(0.001), cfg.Epsilon)
	assert.Equal(t, "drop", cfg.Overflow)
	assert.True(t, cfg.ParallelBuild)
	assert.Equal(t, 96, cfg.MeshCells)
	assert.Equal(t, 64, cfg.Segments)
	assert.Equal(t, 250*time.Millisecond, cfg.EvalTimeout)

	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"overflow", "CSGKIT_OVERFLOW", "wrap"},
		{"kernel", "CSGKIT_KERNEL", "manifold"},
		{"log level", "CSGKIT_LOG_LEVEL", "loud"},
		{"epsilon", "CSGKIT_EPSILON", "-1"},
		{"segments", "CSGKIT_SEGMENTS", "-3"},
		{"not a number", "CSGKIT_MESH_CELLS", "many"},
		{"not a duration", "CSGKIT_EVAL_TIMEOUT", "soon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestCSGOptions(t *testing.T) {
	cfg := &Config{Epsilon: 1e-4, Overflow: "drop", ParallelBuild: true}
	opts, err := cfg.CSGOptions()
	require.NoError(t, err)

	assert.Equal(t, float32(1e-4), opts.Epsilon)
	assert.Equal(t, csg.OverflowDrop, opts.Overflow)
	assert.True(t, opts.ParallelBuild)

	cfg.Overflow = "bogus"
	_, err = cfg.CSGOptions()
	assert.Error(t, err)
}

func TestNewKernel(t *testing.T) {
	cfg := &Config{Overflow: "drop", MeshCells: 24, Kernel: "bsp"}
	k, err := cfg.NewKernel()
	require.NoError(t, err)
	bk, ok := k.(*bspkernel.Kernel)
	require.True(t, ok, "expected a bsp kernel, got %T", k)
	assert.Equal(t, csg.OverflowDrop, bk.Options().Overflow)

	cfg.Kernel = "SDF"
	k, err = cfg.NewKernel()
	require.NoError(t, err)
	assert.IsType(t, &sdfx.SdfxKernel{}, k)

	cfg.Kernel = "nope"
	_, err = cfg.NewKernel()
	assert.Error(t, err)
}
