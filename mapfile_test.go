package gridnav

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tilekit/gridnav/rng"
)

func TestSaveLoadGridMap(t *testing.T) {
	m, err := ParseLayout([]string{
		"#####",
		"#.=~#",
		"#%..#",
		"#####",
	}, true)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "map.json")
	require.NoError(t, SaveGridMap(m, path))

	loaded, err := LoadGridMap(path)
	require.NoError(t, err)
	assert.Equal(t, m.Width, loaded.Width)
	assert.Equal(t, m.Height, loaded.Height)
	assert.Equal(t, m.Diagonal, loaded.Diagonal)
	assert.Equal(t, m.Layout(), loaded.Layout())
}

func TestLoadGridMap_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadGridMap(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0644))
	_, err = LoadGridMap(bad)
	assert.Error(t, err)

	wrongSize := filepath.Join(dir, "size.json")
	require.NoError(t, os.WriteFile(wrongSize, []byte(`{"width":3,"height":1,"layout":[".."]}`), 0644))
	_, err = LoadGridMap(wrongSize)
	assert.ErrorIs(t, err, ErrInvalidLayout)
}

func TestGenerateScatterMap(t *testing.T) {
	a := GenerateScatterMap(20, 10, 0.3, false, rng.Seeded(8))
	b := GenerateScatterMap(20, 10, 0.3, false, rng.Seeded(8))
	assert.Equal(t, a.Layout(), b.Layout())

	for x := 0; x < a.Width; x++ {
		assert.False(t, a.IsWalkable(a.PointToIndex(Point{x, 0})))
		assert.False(t, a.IsWalkable(a.PointToIndex(Point{x, a.Height - 1})))
	}

	empty := GenerateScatterMap(6, 6, 0, true, rng.Seeded(1))
	assert.True(t, empty.IsWalkable(empty.PointToIndex(Point{2, 3})))
}
