package vox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGrid(t *testing.T, size Size) *VoxelGrid {
	t.Helper()
	doc := NewDocument()
	g, err := doc.CreateModel("test", size)
	require.NoError(t, err)
	return g
}

func TestAddOrUpdateVoxel_RejectsOutOfBoundsAndZero(t *testing.T) {
	g := newTestGrid(t, Size{4, 3, 2})
	require.True(t, g.AddOrUpdateVoxel(Coord{1, 1, 1}, 7))

	for _, c := range []Coord{
		{-1, 0, 0}, {0, -1, 0}, {0, 0, -1},
		{4, 0, 0}, {0, 3, 0}, {0, 0, 2},
	} {
		assert.False(t, g.AddOrUpdateVoxel(c, 1), "coord %v", c)
	}
	assert.False(t, g.AddOrUpdateVoxel(Coord{0, 0, 0}, 0))
	assert.False(t, g.AddOrUpdateVoxel(Coord{1, 1, 1}, 0), "index 0 must not clear an occupied voxel")

	assert.Equal(t, 1, g.Len())
	idx, ok := g.PaletteIndex(Coord{1, 1, 1})
	require.True(t, ok)
	assert.Equal(t, uint8(7), idx)
}

func TestAddOrUpdateVoxel_Overwrites(t *testing.T) {
	g := newTestGrid(t, Size{2, 2, 2})
	require.True(t, g.AddOrUpdateVoxel(Coord{0, 1, 0}, 3))
	require.True(t, g.AddOrUpdateVoxel(Coord{0, 1, 0}, 9))
	idx, ok := g.PaletteIndex(Coord{0, 1, 0})
	assert.True(t, ok)
	assert.Equal(t, uint8(9), idx)
	assert.Equal(t, 1, g.Len())
}

func TestPaletteIndex_EmptyAndOutOfBounds(t *testing.T) {
	g := newTestGrid(t, Size{2, 2, 2})
	_, ok := g.PaletteIndex(Coord{0, 0, 0})
	assert.False(t, ok)
	_, ok = g.PaletteIndex(Coord{5, 5, 5})
	assert.False(t, ok)
}

func TestMoveVoxel(t *testing.T) {
	g := newTestGrid(t, Size{4, 4, 4})
	a, b := Coord{0, 0, 0}, Coord{3, 2, 1}
	require.True(t, g.AddOrUpdateVoxel(a, 5))

	require.True(t, g.MoveVoxel(a, b))
	_, ok := g.PaletteIndex(a)
	assert.False(t, ok)
	idx, ok := g.PaletteIndex(b)
	assert.True(t, ok)
	assert.Equal(t, uint8(5), idx)

	t.Run("overwrites destination", func(t *testing.T) {
		c := Coord{1, 1, 1}
		require.True(t, g.AddOrUpdateVoxel(c, 2))
		require.True(t, g.MoveVoxel(c, b))
		idx, _ := g.PaletteIndex(b)
		assert.Equal(t, uint8(2), idx)
		assert.Equal(t, 1, g.Len())
	})

	t.Run("fails without mutation", func(t *testing.T) {
		assert.False(t, g.MoveVoxel(Coord{2, 2, 2}, Coord{0, 0, 0}), "empty source")
		assert.False(t, g.MoveVoxel(b, Coord{4, 0, 0}), "destination out of bounds")
		idx, ok := g.PaletteIndex(b)
		assert.True(t, ok)
		assert.Equal(t, uint8(2), idx)
	})

	t.Run("onto itself", func(t *testing.T) {
		require.True(t, g.MoveVoxel(b, b))
		_, ok := g.PaletteIndex(b)
		assert.True(t, ok)
	})
}

func TestSetVoxelColor(t *testing.T) {
	g := newTestGrid(t, Size{2, 2, 2})
	c := Coord{1, 0, 1}
	assert.False(t, g.SetVoxelColor(c, 4), "must not create voxels")
	assert.Equal(t, 0, g.Len())

	require.True(t, g.AddOrUpdateVoxel(c, 1))
	assert.True(t, g.SetVoxelColor(c, 4))
	assert.False(t, g.SetVoxelColor(c, 0))
	idx, _ := g.PaletteIndex(c)
	assert.Equal(t, uint8(4), idx)
}

func TestRemoveVoxel(t *testing.T) {
	g := newTestGrid(t, Size{2, 2, 2})
	c := Coord{0, 1, 1}
	assert.False(t, g.RemoveVoxel(c))
	require.True(t, g.AddOrUpdateVoxel(c, 1))
	assert.True(t, g.RemoveVoxel(c))
	assert.False(t, g.RemoveVoxel(c))
	assert.Equal(t, 0, g.Len())
}

func TestVoxels_SortedAndBounds(t *testing.T) {
	g := newTestGrid(t, Size{8, 8, 8})
	for _, c := range []Coord{{3, 0, 0}, {0, 5, 1}, {0, 5, 0}, {1, 0, 7}} {
		require.True(t, g.AddOrUpdateVoxel(c, 1))
	}
	var got []Coord
	for _, v := range g.Voxels() {
		got = append(got, v.Coord)
	}
	assert.Equal(t, []Coord{{0, 5, 0}, {0, 5, 1}, {1, 0, 7}, {3, 0, 0}}, got)

	min, max, ok := g.Bounds()
	require.True(t, ok)
	assert.Equal(t, Coord{0, 0, 0}, min)
	assert.Equal(t, Coord{3, 5, 7}, max)

	clone := g.Clone()
	g.Clear()
	_, _, ok = g.Bounds()
	assert.False(t, ok)
	assert.Equal(t, 4, clone.Len())
}

func TestCreateModel_InvalidSize(t *testing.T) {
	doc := NewDocument()
	_, err := doc.CreateModel("bad", Size{0, 1, 1})
	assert.ErrorIs(t, err, ErrInvalidSize)
	assert.Equal(t, 0, doc.Len())
}

func TestDocument_RemoveModelKeepsOrder(t *testing.T) {
	doc := NewDocument()
	for _, name := range []string{"a", "b", "c"} {
		_, err := doc.CreateModel(name, Size{1, 1, 1})
		require.NoError(t, err)
	}
	assert.False(t, doc.RemoveModel(3))
	require.True(t, doc.RemoveModel(1))
	require.Equal(t, 2, doc.Len())
	assert.Equal(t, "a", doc.Model(0).Name)
	assert.Equal(t, "c", doc.Model(1).Name)
	assert.Nil(t, doc.Model(2))
}
