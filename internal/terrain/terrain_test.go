package terrain

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
terrain:
  - texture: grass
    particle: grass_step
    footstep_sound: footsteps/grass
    footstep_volume: 0.4
  - texture: metal
    footstep_sound: footsteps/metal
    footstep_volume: 0.7
`

func TestParseAndLookup(t *testing.T) {
	tbl, err := Parse([]byte(sample))
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Len())

	tt, ok := tbl.Lookup("tex_terrain/grass")
	require.True(t, ok)
	assert.Equal(t, "grass_step", tt.Particle)
	assert.Equal(t, 0.4, tt.FootstepVolume)

	tt, ok = tbl.Lookup("metal")
	require.True(t, ok)
	assert.Empty(t, tt.Particle)

	_, ok = tbl.Lookup("water")
	assert.False(t, ok)

	var none *Table
	_, ok = none.Lookup("grass")
	assert.False(t, ok)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte("terrain:\n  - particle: x\n"))
	assert.Error(t, err)
	_, err = Parse([]byte("terrain: ["))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "terrain.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))
	tbl, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Len())

	_, err = Load(filepath.Join(t.TempDir(), "нет.yaml"))
	assert.Error(t, err)
}
