package vox

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rawChunkView struct {
	id      string
	content []byte
}

// topChunks lists the children of MAIN.
func topChunks(t *testing.T, data []byte) []rawChunkView {
	t.Helper()
	require.GreaterOrEqual(t, len(data), fileHeaderLen+chunkHeaderLen)
	require.Equal(t, FileMagic, string(data[:4]))
	require.Equal(t, uint32(FileVersion), binary.LittleEndian.Uint32(data[4:8]))
	require.Equal(t, idMain, string(data[8:12]))
	require.Equal(t, uint32(0), binary.LittleEndian.Uint32(data[12:16]))
	require.Equal(t, uint32(len(data)-20), binary.LittleEndian.Uint32(data[16:20]))

	var out []rawChunkView
	for off := 20; off < len(data); {
		id := string(data[off : off+4])
		n := int(binary.LittleEndian.Uint32(data[off+4:]))
		require.Equal(t, uint32(0), binary.LittleEndian.Uint32(data[off+8:]), "chunk %s children", id)
		out = append(out, rawChunkView{id, data[off+12 : off+12+n]})
		off += 12 + n
	}
	return out
}

func chunkIDs(chunks []rawChunkView) []string {
	ids := make([]string, len(chunks))
	for i, c := range chunks {
		ids[i] = c.id
	}
	return ids
}

func TestToBytes_SingleModelLayout(t *testing.T) {
	doc := NewDocument()
	g, err := doc.CreateModel("only", Size{4, 4, 4})
	require.NoError(t, err)
	require.True(t, g.AddOrUpdateVoxel(Coord{0, 0, 0}, 1))

	data, err := ToBytes(doc)
	require.NoError(t, err)
	assert.Len(t, data, 1100)

	chunks := topChunks(t, data)
	assert.Equal(t, []string{"SIZE", "XYZI", "RGBA"}, chunkIDs(chunks))
	assert.Equal(t, []byte{4, 0, 0, 0, 4, 0, 0, 0, 4, 0, 0, 0}, chunks[0].content)
	assert.Equal(t, []byte{1, 0, 0, 0, 0, 0, 0, 1}, chunks[1].content)
	assert.Len(t, chunks[2].content, 1024)
}

func TestToBytes_MultiModelLayout(t *testing.T) {
	doc := NewDocument()
	a, err := doc.CreateModel("a", Size{2, 2, 2})
	require.NoError(t, err)
	b, err := doc.CreateModel("b", Size{3, 3, 3})
	require.NoError(t, err)
	b.TransformOffset = [3]float32{4, -2, 0}
	require.True(t, a.AddOrUpdateVoxel(Coord{1, 1, 1}, 2))

	data, err := ToBytes(doc)
	require.NoError(t, err)
	chunks := topChunks(t, data)
	assert.Equal(t, []string{
		"PACK", "SIZE", "XYZI", "SIZE", "XYZI",
		"nTRN", "nGRP", "nTRN", "nSHP", "nTRN", "nSHP",
		"RGBA",
	}, chunkIDs(chunks))
	assert.Equal(t, []byte{2, 0, 0, 0}, chunks[0].content)

	root := readTransform(&cursor{data: chunks[5].content})
	assert.Equal(t, int32(rootTransformID), root.id)
	assert.Equal(t, int32(rootGroupID), root.child)
	assert.Equal(t, int32(-1), root.reserved)

	group := readGroup(&cursor{data: chunks[6].content})
	assert.Equal(t, int32(rootGroupID), group.id)
	assert.Equal(t, []int32{10, 11}, group.children)

	for i, pos := range []int{7, 9} {
		tr := readTransform(&cursor{data: chunks[pos].content})
		assert.Equal(t, int32(10+i), tr.id)
		assert.Equal(t, int32(1000+i), tr.child)
		name, _ := tr.attrs.get(attrName)
		assert.Equal(t, doc.Model(i).Name, name)
		require.Len(t, tr.frames, 1)

		sh := readShape(&cursor{data: chunks[pos+1].content})
		assert.Equal(t, int32(1000+i), sh.id)
		require.Len(t, sh.models, 1)
		assert.Equal(t, int32(i), sh.models[0].model)
	}
	_, hasT := readTransform(&cursor{data: chunks[7].content}).frames[0].get(attrTranslation)
	assert.False(t, hasT, "zero offset is omitted")
	tv, _ := readTransform(&cursor{data: chunks[9].content}).frames[0].get(attrTranslation)
	assert.Equal(t, "4 -2 0", tv)
}

func TestToBytes_Deterministic(t *testing.T) {
	coords := []Coord{{3, 1, 2}, {0, 0, 1}, {0, 2, 0}, {3, 0, 0}, {0, 0, 0}, {1, 3, 3}}
	build := func(order []int) []byte {
		doc := NewDocument()
		g, err := doc.CreateModel("m", Size{4, 4, 4})
		require.NoError(t, err)
		for _, i := range order {
			require.True(t, g.AddOrUpdateVoxel(coords[i], uint8(i+1)))
		}
		data, err := ToBytes(doc)
		require.NoError(t, err)
		return data
	}
	first := build([]int{0, 1, 2, 3, 4, 5})
	second := build([]int{5, 3, 1, 4, 2, 0})
	assert.True(t, bytes.Equal(first, second))

	xyzi := topChunks(t, first)[1].content
	var prev []byte
	for off := 4; off < len(xyzi); off += 4 {
		cur := xyzi[off : off+3]
		if prev != nil {
			assert.Negative(t, bytes.Compare(prev, cur), "voxels must ascend by (x,y,z)")
		}
		prev = cur
	}
}

func TestToBytes_Preconditions(t *testing.T) {
	_, err := ToBytes(NewDocument())
	assert.ErrorIs(t, err, ErrEmptyDocument)

	_, err = ToBytes(nil)
	assert.ErrorIs(t, err, ErrEmptyDocument)

	doc := NewDocument()
	g, err := doc.CreateModel("big", Size{300, 1, 1})
	require.NoError(t, err)
	require.True(t, g.AddOrUpdateVoxel(Coord{280, 0, 0}, 1))
	data, err := ToBytes(doc)
	assert.ErrorIs(t, err, ErrCoordinateRange)
	assert.Nil(t, data)

	g.Clear()
	require.True(t, g.AddOrUpdateVoxel(Coord{10, 0, 0}, 1))
	_, err = ToBytes(doc)
	assert.ErrorIs(t, err, ErrModelTooLarge)

	doc = NewDocument()
	_, err = doc.CreateModel("nopal", Size{1, 1, 1})
	require.NoError(t, err)
	doc.Palette = nil
	_, err = ToBytes(doc)
	assert.ErrorIs(t, err, ErrPalette)
}

func TestWrite(t *testing.T) {
	doc := NewDocument()
	_, err := doc.CreateModel("m", Size{1, 1, 1})
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, doc))
	want, err := ToBytes(doc)
	require.NoError(t, err)
	assert.Equal(t, want, buf.Bytes())
}

func TestShapeBase(t *testing.T) {
	assert.Equal(t, int32(1000), shapeBase(1))
	assert.Equal(t, int32(1000), shapeBase(990))
	assert.Equal(t, int32(1001), shapeBase(991))
}

func TestFingerprint(t *testing.T) {
	build := func(idx uint8) *Document {
		doc := NewDocument()
		g, err := doc.CreateModel("m", Size{2, 2, 2})
		require.NoError(t, err)
		require.True(t, g.AddOrUpdateVoxel(Coord{1, 0, 1}, idx))
		return doc
	}
	a, err := build(3).Fingerprint()
	require.NoError(t, err)
	b, err := build(3).Fingerprint()
	require.NoError(t, err)
	c, err := build(4).Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
