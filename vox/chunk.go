package vox

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// chunk is one leaf chunk of a VOX file. writeChunk adds the header.
type chunk interface {
	chunkID() string
	writeContent(buf *bytes.Buffer)
}

// writeChunk emits id, content length, children length (always 0 here) and content.
func writeChunk(out *bytes.Buffer, c chunk) {
	var content bytes.Buffer
	c.writeContent(&content)
	out.WriteString(c.chunkID())
	_ = binary.Write(out, binary.LittleEndian, int32(content.Len()))
	_ = binary.Write(out, binary.LittleEndian, int32(0))
	_, _ = out.Write(content.Bytes())
}

// writeContainer emits a chunk with empty content and the given children.
func writeContainer(out *bytes.Buffer, id string, children []byte) {
	out.WriteString(id)
	_ = binary.Write(out, binary.LittleEndian, int32(0))
	_ = binary.Write(out, binary.LittleEndian, int32(len(children)))
	_, _ = out.Write(children)
}

func putInt32(buf *bytes.Buffer, v int32) {
	_ = binary.Write(buf, binary.LittleEndian, v)
}

func putString(buf *bytes.Buffer, s string) {
	putInt32(buf, int32(len(s)))
	buf.WriteString(s)
}

// cursor reads little endian fields from a chunk's content. The first
// failure sticks so callers can check err once.
type cursor struct {
	data []byte
	pos  int
	err  error
}

func (c *cursor) remaining() int { return len(c.data) - c.pos }

func (c *cursor) need(n int) bool {
	if c.err != nil {
		return false
	}
	if n < 0 || c.remaining() < n {
		c.err = fmt.Errorf("%w: need %d bytes at content offset %d, have %d", ErrChunkLength, n, c.pos, c.remaining())
		return false
	}
	return true
}

func (c *cursor) int32() int32 {
	if !c.need(4) {
		return 0
	}
	v := int32(binary.LittleEndian.Uint32(c.data[c.pos:]))
	c.pos += 4
	return v
}

func (c *cursor) bytes(n int) []byte {
	if !c.need(n) {
		return nil
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b
}

func (c *cursor) string() string {
	n := c.int32()
	if c.err == nil && n < 0 {
		c.err = fmt.Errorf("%w: negative string length %d", ErrChunkLength, n)
		return ""
	}
	return string(c.bytes(int(n)))
}

// finish reports the sticky error, or a length error when content is left over.
func (c *cursor) finish() error {
	if c.err != nil {
		return c.err
	}
	if c.remaining() != 0 {
		return fmt.Errorf("%w: %d unread content bytes", ErrChunkLength, c.remaining())
	}
	return nil
}

// packChunk holds the model count of a multi-model file.
type packChunk struct{ models int }

func (packChunk) chunkID() string { return idPack }

func (p packChunk) writeContent(buf *bytes.Buffer) { putInt32(buf, int32(p.models)) }

type sizeChunk struct{ size Size }

func (sizeChunk) chunkID() string { return idSize }

func (s sizeChunk) writeContent(buf *bytes.Buffer) {
	putInt32(buf, int32(s.size.X))
	putInt32(buf, int32(s.size.Y))
	putInt32(buf, int32(s.size.Z))
}

// xyziChunk expects voxels sorted by (x,y,z) and inside [0,255].
type xyziChunk struct{ voxels []Voxel }

func (xyziChunk) chunkID() string { return idXYZI }

func (x xyziChunk) writeContent(buf *bytes.Buffer) {
	putInt32(buf, int32(len(x.voxels)))
	for _, v := range x.voxels {
		buf.Write([]byte{uint8(v.X), uint8(v.Y), uint8(v.Z), v.Index})
	}
}

type rgbaChunk struct{ palette *Palette }

func (rgbaChunk) chunkID() string { return idRGBA }

func (r rgbaChunk) writeContent(buf *bytes.Buffer) {
	for _, c := range r.palette.Entries() {
		buf.Write([]byte{c.R, c.G, c.B, c.A})
	}
}

func readRGBA(content []byte) (*Palette, error) {
	if len(content) != PaletteSize*4 {
		return nil, fmt.Errorf("%w: RGBA content is %d bytes, want %d", ErrPalette, len(content), PaletteSize*4)
	}
	entries := make([]Color, PaletteSize)
	for i := range entries {
		b := content[i*4:]
		entries[i] = Color{b[0], b[1], b[2], b[3]}
	}
	return PaletteFromEntries(entries)
}

// roundOffset converts a translation component to the integer stored in _t.
func roundOffset(v float32) int {
	return int(math.Round(float64(v)))
}
