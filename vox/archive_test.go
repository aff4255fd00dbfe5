package vox

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleArchive(t *testing.T) *Archive {
	t.Helper()
	a := &Archive{}
	for i := 0; i < 3; i++ {
		doc := NewDocument()
		g, err := doc.CreateModel(fmt.Sprintf("m%d", i), Size{16, 16, 16})
		require.NoError(t, err)
		for x := 0; x < 16; x++ {
			for y := 0; y <= i; y++ {
				require.True(t, g.AddOrUpdateVoxel(Coord{x, y, x}, uint8(1+x)))
			}
		}
		data, err := ToBytes(doc)
		require.NoError(t, err)
		a.Entries = append(a.Entries, ArchiveEntry{Name: fmt.Sprintf("m%d.vox", i), Data: data})
	}
	a.Entries = append(a.Entries, ArchiveEntry{Name: "empty"})
	return a
}

func TestArchive_RoundTripAllLayoutsAndCodecs(t *testing.T) {
	a := sampleArchive(t)
	for _, layout := range []ArchiveLayout{LayoutRaw, LayoutCDC} {
		for _, codec := range []ArchiveCodec{CodecNone, CodecZlib, CodecZstd, CodecS2} {
			t.Run(fmt.Sprintf("layout%d/codec%d", layout, codec), func(t *testing.T) {
				data, err := a.Marshal(layout, codec)
				require.NoError(t, err)
				got, gotLayout, gotCodec, err := UnmarshalArchive(data)
				require.NoError(t, err)
				assert.Equal(t, layout, gotLayout)
				assert.Equal(t, codec, gotCodec)
				require.Len(t, got.Entries, len(a.Entries))
				for i := range a.Entries {
					assert.Equal(t, a.Entries[i].Name, got.Entries[i].Name)
					assert.True(t, bytes.Equal(a.Entries[i].Data, got.Entries[i].Data), a.Entries[i].Name)
				}
			})
		}
	}
}

func TestArchive_CDCDeduplicates(t *testing.T) {
	blob := bytes.Repeat([]byte("voxel palette chunk "), 2000)
	a := &Archive{Entries: []ArchiveEntry{{Name: "a", Data: blob}, {Name: "b", Data: blob}}}
	raw, err := a.Marshal(LayoutRaw, CodecNone)
	require.NoError(t, err)
	cdc, err := a.Marshal(LayoutCDC, CodecNone)
	require.NoError(t, err)
	assert.Less(t, len(cdc), len(raw)*3/4)
}

func TestArchive_Errors(t *testing.T) {
	dup := &Archive{Entries: []ArchiveEntry{{Name: "x"}, {Name: "x"}}}
	_, err := dup.Marshal(LayoutRaw, CodecNone)
	assert.ErrorIs(t, err, ErrArchive)

	_, err = sampleArchive(t).Marshal(LayoutRaw, ArchiveCodec(9))
	assert.ErrorIs(t, err, ErrArchive)

	_, _, _, err = UnmarshalArchive([]byte("nope"))
	assert.ErrorIs(t, err, ErrArchive)

	data, err := sampleArchive(t).Marshal(LayoutRaw, CodecNone)
	require.NoError(t, err)
	_, _, _, err = UnmarshalArchive(data[:len(data)-3])
	assert.ErrorIs(t, err, ErrArchive)
}

func TestParseCodecAndLayout(t *testing.T) {
	c, err := ParseCodec("zstd")
	require.NoError(t, err)
	assert.Equal(t, CodecZstd, c)
	_, err = ParseCodec("lzma")
	assert.Error(t, err)

	l, err := ParseLayout("cdc")
	require.NoError(t, err)
	assert.Equal(t, LayoutCDC, l)
	_, err = ParseLayout("tar")
	assert.Error(t, err)
}
