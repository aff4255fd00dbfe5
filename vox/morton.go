package vox

import "sort"

// Morton3D interleaves the low 21 bits of x, y and z, x in the lowest bit.
func Morton3D(x, y, z uint32) uint64 {
	return part1By2(uint64(x)) |
		(part1By2(uint64(y)) << 1) |
		(part1By2(uint64(z)) << 2)
}

// MortonDecode3D is the inverse of Morton3D.
func MortonDecode3D(index uint64) (x, y, z uint32) {
	x = uint32(compact1By2(index))
	y = uint32(compact1By2(index >> 1))
	z = uint32(compact1By2(index >> 2))
	return
}

func part1By2(x uint64) uint64 {
	x &= 0x1fffff
	x = (x | (x << 32)) & 0x1f00000000ffff
	x = (x | (x << 16)) & 0x1f0000ff0000ff
	x = (x | (x << 8)) & 0x100f00f00f00f00f
	x = (x | (x << 4)) & 0x10c30c30c30c30c3
	x = (x | (x << 2)) & 0x1249249249249249
	return x
}

func compact1By2(x uint64) uint64 {
	x &= 0x1249249249249249
	x = (x ^ (x >> 2)) & 0x10c30c30c30c30c3
	x = (x ^ (x >> 4)) & 0x100f00f00f00f00f
	x = (x ^ (x >> 8)) & 0x1f0000ff0000ff
	x = (x ^ (x >> 16)) & 0x1f00000000ffff
	x = (x ^ (x >> 32)) & 0x1fffff
	return x
}

func mortonKey(c Coord) uint64 {
	return Morton3D(uint32(c.X), uint32(c.Y), uint32(c.Z))
}

// sortMorton orders edits along the Z-order curve so nearby edits stay
// nearby in the stream.
func sortMorton(edits []Edit) {
	sort.Slice(edits, func(i, j int) bool { return mortonKey(edits[i].Coord) < mortonKey(edits[j].Coord) })
}
