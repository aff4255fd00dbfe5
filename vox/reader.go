package vox

import (
	"encoding/binary"
	"fmt"
	"io"
)

// FromReader reads a whole VOX stream and decodes it.
func FromReader(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return FromBytes(data)
}

// FromBytes decodes a VOX file. Models come back in file order; names and
// offsets are taken from the scene graph when there is one.
func FromBytes(data []byte) (*Document, error) {
	if len(data) < fileHeaderLen {
		return nil, fmt.Errorf("%w: %d byte file header", ErrTruncated, len(data))
	}
	if string(data[:4]) != FileMagic {
		return nil, fmt.Errorf("%w: magic %q", ErrBadMagic, data[:4])
	}
	version := int32(binary.LittleEndian.Uint32(data[4:8]))
	if !supportedVersions[version] {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrBadMagic, version)
	}

	id, _, childStart, end, err := readChunkHeader(data, fileHeaderLen, len(data))
	if err != nil {
		return nil, err
	}
	if id != idMain {
		return nil, &ChunkError{ID: id, Offset: fileHeaderLen, Err: fmt.Errorf("%w: first chunk must be %s", ErrUnexpectedChunk, idMain)}
	}
	if end != len(data) {
		return nil, &ChunkError{ID: id, Offset: fileHeaderLen, Err: fmt.Errorf("%w: %d trailing bytes", ErrChunkLength, len(data)-end)}
	}

	p := &parser{scene: newSceneGraph(), packCount: -1}
	for off := childStart; off < end; {
		id, cStart, cEnd, after, err := readChunkHeader(data, off, end)
		if err != nil {
			return nil, err
		}
		if err := p.chunk(id, data[cStart:cEnd]); err != nil {
			return nil, &ChunkError{ID: id, Offset: off, Err: err}
		}
		off = after
	}
	return p.document()
}

// readChunkHeader parses the chunk header at off. It returns the content
// range, where children start (== cEnd) and where the next sibling starts.
func readChunkHeader(data []byte, off, limit int) (id string, cStart, cEnd, next int, err error) {
	if limit-off < chunkHeaderLen {
		return "", 0, 0, 0, &ChunkError{ID: "?", Offset: off, Err: fmt.Errorf("%w: %d bytes left for a chunk header", ErrTruncated, limit-off)}
	}
	id = string(data[off : off+4])
	contentLen := int64(int32(binary.LittleEndian.Uint32(data[off+4:])))
	childrenLen := int64(int32(binary.LittleEndian.Uint32(data[off+8:])))
	if contentLen < 0 || childrenLen < 0 {
		return id, 0, 0, 0, &ChunkError{ID: id, Offset: off, Err: fmt.Errorf("%w: negative length", ErrChunkLength)}
	}
	cStart = off + chunkHeaderLen
	if int64(limit-cStart) < contentLen+childrenLen {
		return id, 0, 0, 0, &ChunkError{ID: id, Offset: off, Err: fmt.Errorf("%w: declares %d+%d bytes, %d available", ErrTruncated, contentLen, childrenLen, limit-cStart)}
	}
	cEnd = cStart + int(contentLen)
	next = cEnd + int(childrenLen)
	return id, cStart, cEnd, next, nil
}

type parser struct {
	models      []*VoxelGrid
	pendingSize *Size
	palette     *Palette
	packCount   int
	scene       *sceneGraph
}

func (p *parser) chunk(id string, content []byte) error {
	c := &cursor{data: content}
	switch id {
	case idPack:
		if p.packCount >= 0 || len(p.models) > 0 || p.pendingSize != nil {
			return fmt.Errorf("%w: %s must come once before models", ErrUnexpectedChunk, id)
		}
		n := c.int32()
		if c.err == nil && n < 1 {
			return fmt.Errorf("%w: model count %d", ErrChunkLength, n)
		}
		p.packCount = int(n)
		return c.finish()
	case idSize:
		if p.pendingSize != nil {
			return fmt.Errorf("%w: %s without %s", ErrMissingChunk, idSize, idXYZI)
		}
		s := Size{int(c.int32()), int(c.int32()), int(c.int32())}
		if err := c.finish(); err != nil {
			return err
		}
		if !s.valid() {
			return fmt.Errorf("%w: %dx%dx%d", ErrInvalidSize, s.X, s.Y, s.Z)
		}
		if s.X > MaxModelSize || s.Y > MaxModelSize || s.Z > MaxModelSize {
			return fmt.Errorf("%w: %dx%dx%d", ErrModelTooLarge, s.X, s.Y, s.Z)
		}
		p.pendingSize = &s
		return nil
	case idXYZI:
		if p.pendingSize == nil {
			return fmt.Errorf("%w: %s without preceding %s", ErrUnexpectedChunk, idXYZI, idSize)
		}
		g, err := readXYZI(c, *p.pendingSize)
		if err != nil {
			return err
		}
		p.models = append(p.models, g)
		p.pendingSize = nil
		return nil
	case idRGBA:
		if p.palette != nil {
			return fmt.Errorf("%w: second %s", ErrUnexpectedChunk, idRGBA)
		}
		pal, err := readRGBA(content)
		if err != nil {
			return err
		}
		p.palette = pal
		return nil
	case idTransform:
		n := readTransform(c)
		if err := c.finish(); err != nil {
			return err
		}
		return p.scene.addTransform(n)
	case idGroup:
		n := readGroup(c)
		if err := c.finish(); err != nil {
			return err
		}
		return p.scene.addGroup(n)
	case idShape:
		n := readShape(c)
		if err := c.finish(); err != nil {
			return err
		}
		return p.scene.addShape(n)
	}
	// Materials, layers, cameras and notes are not part of the document.
	return nil
}

func readXYZI(c *cursor, size Size) (*VoxelGrid, error) {
	n := c.int32()
	if c.err != nil {
		return nil, c.err
	}
	if n < 0 || int64(c.remaining()) != int64(n)*4 {
		return nil, fmt.Errorf("%w: %d voxels declared, %d content bytes follow", ErrChunkLength, n, c.remaining())
	}
	g := newVoxelGrid("", size)
	for i := int32(0); i < n; i++ {
		b := c.bytes(4)
		pos := Coord{int(b[0]), int(b[1]), int(b[2])}
		if b[3] == 0 {
			return nil, fmt.Errorf("%w: voxel %d at (%d,%d,%d) uses palette index 0", ErrPaletteIndex, i, pos.X, pos.Y, pos.Z)
		}
		if _, dup := g.voxels[pos]; dup {
			return nil, fmt.Errorf("%w: voxel %d at (%d,%d,%d)", ErrDuplicateVoxel, i, pos.X, pos.Y, pos.Z)
		}
		if !g.AddOrUpdateVoxel(pos, b[3]) {
			return nil, fmt.Errorf("%w: voxel %d at (%d,%d,%d) is outside %dx%dx%d",
				ErrCoordinateRange, i, pos.X, pos.Y, pos.Z, size.X, size.Y, size.Z)
		}
	}
	return g, c.finish()
}

func (p *parser) document() (*Document, error) {
	if p.pendingSize != nil {
		return nil, fmt.Errorf("%w: %s without %s", ErrMissingChunk, idSize, idXYZI)
	}
	if len(p.models) == 0 {
		return nil, fmt.Errorf("%w: no %s/%s pair", ErrMissingChunk, idSize, idXYZI)
	}
	if p.palette == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingChunk, idRGBA)
	}
	if p.packCount >= 0 && p.packCount != len(p.models) {
		return nil, fmt.Errorf("%w: %s declares %d models, found %d", ErrMissingChunk, idPack, p.packCount, len(p.models))
	}
	if err := p.scene.apply(p.models); err != nil {
		return nil, err
	}
	return &Document{Palette: p.palette, models: p.models}, nil
}
