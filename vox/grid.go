package vox

import "sort"

// Coord is an integer voxel position.
type Coord struct {
	X, Y, Z int
}

// Add returns c translated by d.
func (c Coord) Add(d Coord) Coord { return Coord{c.X + d.X, c.Y + d.Y, c.Z + d.Z} }

func (c Coord) less(o Coord) bool {
	if c.X != o.X {
		return c.X < o.X
	}
	if c.Y != o.Y {
		return c.Y < o.Y
	}
	return c.Z < o.Z
}

// Size is the extent of a model along each axis.
type Size struct {
	X, Y, Z int
}

func (s Size) valid() bool { return s.X > 0 && s.Y > 0 && s.Z > 0 }

// Voxel is an occupied position and its palette index.
type Voxel struct {
	Coord
	Index uint8
}

// VoxelGrid is a named, bounded, sparse model. Only occupied positions are stored
// and every stored index is in [1,255].
type VoxelGrid struct {
	Name string
	// TransformOffset places the model inside a multi-model scene.
	TransformOffset [3]float32

	size   Size
	voxels map[Coord]uint8
}

func newVoxelGrid(name string, size Size) *VoxelGrid {
	return &VoxelGrid{Name: name, size: size, voxels: make(map[Coord]uint8)}
}

// Size returns the fixed bounds of the grid.
func (g *VoxelGrid) Size() Size { return g.size }

// Len returns the number of occupied voxels.
func (g *VoxelGrid) Len() int { return len(g.voxels) }

// InBounds reports whether c lies inside [0,Size).
func (g *VoxelGrid) InBounds(c Coord) bool {
	return c.X >= 0 && c.X < g.size.X &&
		c.Y >= 0 && c.Y < g.size.Y &&
		c.Z >= 0 && c.Z < g.size.Z
}

// AddOrUpdateVoxel writes index at c, creating the voxel if needed.
// It fails without touching the grid when c is out of bounds or index is 0.
func (g *VoxelGrid) AddOrUpdateVoxel(c Coord, index uint8) bool {
	if index == 0 || !g.InBounds(c) {
		return false
	}
	g.voxels[c] = index
	return true
}

// PaletteIndex returns the index stored at c and whether c is occupied.
func (g *VoxelGrid) PaletteIndex(c Coord) (uint8, bool) {
	idx, ok := g.voxels[c]
	return idx, ok
}

// MoveVoxel moves the voxel at from to to, overwriting whatever was at to.
func (g *VoxelGrid) MoveVoxel(from, to Coord) bool {
	idx, ok := g.voxels[from]
	if !ok || !g.InBounds(to) {
		return false
	}
	delete(g.voxels, from)
	g.voxels[to] = idx
	return true
}

// SetVoxelColor changes the index of an already occupied voxel.
func (g *VoxelGrid) SetVoxelColor(c Coord, index uint8) bool {
	if index == 0 {
		return false
	}
	if _, ok := g.voxels[c]; !ok {
		return false
	}
	g.voxels[c] = index
	return true
}

// RemoveVoxel empties c. It reports false when c was not occupied.
func (g *VoxelGrid) RemoveVoxel(c Coord) bool {
	if _, ok := g.voxels[c]; !ok {
		return false
	}
	delete(g.voxels, c)
	return true
}

// Clear removes every voxel.
func (g *VoxelGrid) Clear() {
	clear(g.voxels)
}

// Voxels returns the occupied voxels sorted ascending by (x,y,z).
func (g *VoxelGrid) Voxels() []Voxel {
	out := make([]Voxel, 0, len(g.voxels))
	for c, idx := range g.voxels {
		out = append(out, Voxel{c, idx})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Coord.less(out[j].Coord) })
	return out
}

// Each calls fn for every occupied voxel in (x,y,z) order until fn returns false.
func (g *VoxelGrid) Each(fn func(c Coord, index uint8) bool) {
	for _, v := range g.Voxels() {
		if !fn(v.Coord, v.Index) {
			return
		}
	}
}

// Bounds returns the inclusive min and max occupied coordinates.
// ok is false for an empty grid.
func (g *VoxelGrid) Bounds() (min, max Coord, ok bool) {
	for c := range g.voxels {
		if !ok {
			min, max, ok = c, c, true
			continue
		}
		min = Coord{minInt(min.X, c.X), minInt(min.Y, c.Y), minInt(min.Z, c.Z)}
		max = Coord{maxInt(max.X, c.X), maxInt(max.Y, c.Y), maxInt(max.Z, c.Z)}
	}
	return min, max, ok
}

// Clone returns a deep copy of the grid.
func (g *VoxelGrid) Clone() *VoxelGrid {
	out := newVoxelGrid(g.Name, g.size)
	out.TransformOffset = g.TransformOffset
	for c, idx := range g.voxels {
		out.voxels[c] = idx
	}
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
