package vox

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/bits"
)

// Edit sets the voxel at Coord to Index. Index 0 removes the voxel.
type Edit struct {
	Coord
	Index uint8
}

// DiffMagic opens every edit stream.
const DiffMagic = "VXD1"

// ErrEditRejected is returned by ApplyEdits when the grid refused some edits.
var ErrEditRejected = errors.New("vox: edit rejected")

// DiffGrids returns the edits that turn from into to, in Morton order.
// Both grids must have the same size.
func DiffGrids(from, to *VoxelGrid) ([]Edit, error) {
	if from.Size() != to.Size() {
		return nil, fmt.Errorf("%w: cannot diff %v against %v", ErrInvalidSize, from.Size(), to.Size())
	}
	var edits []Edit
	for c := range from.voxels {
		if _, ok := to.voxels[c]; !ok {
			edits = append(edits, Edit{c, 0})
		}
	}
	for c, idx := range to.voxels {
		if old, ok := from.voxels[c]; !ok || old != idx {
			edits = append(edits, Edit{c, idx})
		}
	}
	sortMorton(edits)
	return edits, nil
}

// ApplyEdits applies every edit it can. Removing an empty voxel, or writing
// outside the grid, counts as a rejection; the remaining edits still apply.
func ApplyEdits(grid *VoxelGrid, edits []Edit) (applied int, err error) {
	rejected := 0
	for _, e := range edits {
		var ok bool
		if e.Index == 0 {
			ok = grid.RemoveVoxel(e.Coord)
		} else {
			ok = grid.AddOrUpdateVoxel(e.Coord, e.Index)
		}
		if ok {
			applied++
		} else {
			rejected++
		}
	}
	if rejected > 0 {
		return applied, fmt.Errorf("%w: %d of %d edits", ErrEditRejected, rejected, len(edits))
	}
	return applied, nil
}

func axisBits(n int) uint8 {
	return uint8(bits.Len(uint(n - 1)))
}

// EncodeEdits writes edits for a grid of the given size. Each edit takes
// just enough bits per axis for size, plus 8 bits of palette index.
func EncodeEdits(size Size, edits []Edit) ([]byte, error) {
	if !size.valid() {
		return nil, fmt.Errorf("%w: %dx%dx%d", ErrInvalidSize, size.X, size.Y, size.Z)
	}
	out := []byte(DiffMagic)
	out = binary.AppendUvarint(out, uint64(size.X))
	out = binary.AppendUvarint(out, uint64(size.Y))
	out = binary.AppendUvarint(out, uint64(size.Z))
	out = binary.AppendUvarint(out, uint64(len(edits)))

	bx, by, bz := axisBits(size.X), axisBits(size.Y), axisBits(size.Z)
	bw := newBitWriter(out)
	for i, e := range edits {
		if e.X < 0 || e.X >= size.X || e.Y < 0 || e.Y >= size.Y || e.Z < 0 || e.Z >= size.Z {
			return nil, fmt.Errorf("%w: edit %d at (%d,%d,%d)", ErrCoordinateRange, i, e.X, e.Y, e.Z)
		}
		bw.writeBits(uint64(e.X), bx)
		bw.writeBits(uint64(e.Y), by)
		bw.writeBits(uint64(e.Z), bz)
		bw.writeBits(uint64(e.Index), 8)
	}
	return bw.bytes(), nil
}

// DecodeEdits parses a stream written by EncodeEdits.
func DecodeEdits(data []byte) (Size, []Edit, error) {
	if len(data) < len(DiffMagic) || string(data[:len(DiffMagic)]) != DiffMagic {
		return Size{}, nil, fmt.Errorf("%w: not an edit stream", ErrBadMagic)
	}
	r := bytes.NewReader(data[len(DiffMagic):])
	var hdr [4]uint64
	for i := range hdr {
		v, err := binary.ReadUvarint(r)
		if err != nil {
			return Size{}, nil, fmt.Errorf("%w: edit stream header: %v", ErrTruncated, err)
		}
		hdr[i] = v
	}
	if hdr[0] == 0 || hdr[1] == 0 || hdr[2] == 0 || hdr[0] > 1<<21 || hdr[1] > 1<<21 || hdr[2] > 1<<21 {
		return Size{}, nil, fmt.Errorf("%w: %dx%dx%d", ErrInvalidSize, hdr[0], hdr[1], hdr[2])
	}
	size := Size{int(hdr[0]), int(hdr[1]), int(hdr[2])}
	count := hdr[3]

	bx, by, bz := axisBits(size.X), axisBits(size.Y), axisBits(size.Z)
	perEdit := uint64(bx) + uint64(by) + uint64(bz) + 8
	payload := data[len(data)-r.Len():]
	// Divide rather than multiply: count comes from the stream and may be huge.
	if count > uint64(len(payload))*8/perEdit {
		return Size{}, nil, fmt.Errorf("%w: %d edits of %d bits, have %d bits", ErrTruncated, count, perEdit, len(payload)*8)
	}

	br := newBitReader(payload)
	edits := make([]Edit, 0, count)
	for i := uint64(0); i < count; i++ {
		var v [4]uint64
		for j, n := range [4]uint8{bx, by, bz, 8} {
			x, err := br.readBits(n)
			if err != nil {
				if err == io.ErrUnexpectedEOF {
					err = ErrTruncated
				}
				return Size{}, nil, fmt.Errorf("edit %d: %w", i, err)
			}
			v[j] = x
		}
		e := Edit{Coord{int(v[0]), int(v[1]), int(v[2])}, uint8(v[3])}
		if e.X >= size.X || e.Y >= size.Y || e.Z >= size.Z {
			return Size{}, nil, fmt.Errorf("%w: edit %d at (%d,%d,%d)", ErrCoordinateRange, i, e.X, e.Y, e.Z)
		}
		edits = append(edits, e)
	}
	return size, edits, nil
}
