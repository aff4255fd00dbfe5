package vox

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffGrids_EncodeDecodeApply(t *testing.T) {
	from := gridWith(t, Size{16, 5, 9}, map[Coord]uint8{
		{0, 0, 0}: 1, {15, 4, 8}: 2, {7, 2, 3}: 3,
	})
	to := from.Clone()
	require.True(t, to.RemoveVoxel(Coord{0, 0, 0}))
	require.True(t, to.SetVoxelColor(Coord{7, 2, 3}, 200))
	require.True(t, to.AddOrUpdateVoxel(Coord{3, 3, 3}, 9))

	edits, err := DiffGrids(from, to)
	require.NoError(t, err)
	assert.Len(t, edits, 3)
	for i := 1; i < len(edits); i++ {
		assert.Less(t, mortonKey(edits[i-1].Coord), mortonKey(edits[i].Coord))
	}

	data, err := EncodeEdits(from.Size(), edits)
	require.NoError(t, err)
	// 4 magic + 4 uvarints, then 3 edits of 4+3+4+8 bits.
	assert.Len(t, data, 8+(3*19+7)/8)

	size, decoded, err := DecodeEdits(data)
	require.NoError(t, err)
	assert.Equal(t, from.Size(), size)
	assert.Equal(t, edits, decoded)

	applied, err := ApplyEdits(from, decoded)
	require.NoError(t, err)
	assert.Equal(t, 3, applied)
	assert.Equal(t, to.Voxels(), from.Voxels())
}

func TestApplyEdits_ReportsRejections(t *testing.T) {
	g := newTestGrid(t, Size{2, 2, 2})
	applied, err := ApplyEdits(g, []Edit{
		{Coord{0, 0, 0}, 4},
		{Coord{1, 1, 1}, 0},
		{Coord{2, 0, 0}, 1},
	})
	assert.ErrorIs(t, err, ErrEditRejected)
	assert.Equal(t, 1, applied)
	assert.Equal(t, 1, g.Len())
}

func TestDiffGrids_SizeMismatch(t *testing.T) {
	_, err := DiffGrids(newTestGrid(t, Size{1, 1, 1}), newTestGrid(t, Size{2, 1, 1}))
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestEncodeEdits_OutOfRange(t *testing.T) {
	_, err := EncodeEdits(Size{2, 2, 2}, []Edit{{Coord{2, 0, 0}, 1}})
	assert.ErrorIs(t, err, ErrCoordinateRange)
}

func TestDecodeEdits_Malformed(t *testing.T) {
	data, err := EncodeEdits(Size{4, 4, 4}, []Edit{{Coord{1, 2, 3}, 7}, {Coord{3, 3, 3}, 0}})
	require.NoError(t, err)

	_, _, err = DecodeEdits([]byte("XXXX"))
	assert.ErrorIs(t, err, ErrBadMagic)
	_, _, err = DecodeEdits(data[:5])
	assert.ErrorIs(t, err, ErrTruncated)
	_, _, err = DecodeEdits(data[:len(data)-1])
	assert.ErrorIs(t, err, ErrTruncated)

	// A count whose bit total wraps uint64 must not reach the allocation.
	huge := []byte(DiffMagic)
	for _, v := range []uint64{1, 1, 1, 1 << 61} {
		huge = binary.AppendUvarint(huge, v)
	}
	require.NotPanics(t, func() {
		_, _, err = DecodeEdits(huge)
	})
	assert.ErrorIs(t, err, ErrTruncated)

	huge = append(huge, 0xff, 0xff)
	_, _, err = DecodeEdits(huge)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestMorton3D_RoundTrip(t *testing.T) {
	for _, c := range [][3]uint32{{0, 0, 0}, {1, 2, 3}, {255, 0, 255}, {1<<21 - 1, 5, 1<<20}} {
		x, y, z := MortonDecode3D(Morton3D(c[0], c[1], c[2]))
		assert.Equal(t, c, [3]uint32{x, y, z})
	}
	assert.Equal(t, uint64(0b111), Morton3D(1, 1, 1))
}
