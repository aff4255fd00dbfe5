package vox

// dirSpec describes one face direction: the outward normal, the two in-plane
// axes u and v, and the unit steps along them.
type dirSpec struct {
	normal [3]float32
	u, v   int
	du, dv [3]int
}

var directions = []dirSpec{
	{[3]float32{1, 0, 0}, 1, 2, [3]int{0, 1, 0}, [3]int{0, 0, 1}},
	{[3]float32{-1, 0, 0}, 1, 2, [3]int{0, 1, 0}, [3]int{0, 0, 1}},
	{[3]float32{0, 1, 0}, 0, 2, [3]int{1, 0, 0}, [3]int{0, 0, 1}},
	{[3]float32{0, -1, 0}, 0, 2, [3]int{1, 0, 0}, [3]int{0, 0, 1}},
	{[3]float32{0, 0, 1}, 0, 1, [3]int{1, 0, 0}, [3]int{0, 1, 0}},
	{[3]float32{0, 0, -1}, 0, 1, [3]int{1, 0, 0}, [3]int{0, 1, 0}},
}

func (d dirSpec) perp() int { return 3 - d.u - d.v }

// neighbor returns the position one step along the normal.
func (d dirSpec) neighbor(c Coord) Coord {
	p := d.perp()
	step := 1
	if d.normal[p] < 0 {
		step = -1
	}
	switch p {
	case 0:
		c.X += step
	case 1:
		c.Y += step
	default:
		c.Z += step
	}
	return c
}

func axes(c Coord) [3]int { return [3]int{c.X, c.Y, c.Z} }

// addQuad appends a w (along v) by h (along u) face whose lowest corner in
// the plane is start, where start is indexed {perp, u, v}.
func addQuad(mesh *Mesh, dir dirSpec, start [3]int, w, h int, color Color, index uint8) {
	perp := dir.perp()
	base := [3]float32{}
	base[perp] = float32(start[0])
	if dir.normal[perp] > 0 {
		base[perp] += 1
	}
	base[dir.u] = float32(start[1])
	base[dir.v] = float32(start[2])

	corner := func(su, sv int) Vertex {
		var p [3]float32
		for a := 0; a < 3; a++ {
			p[a] = base[a] + float32(dir.du[a]*su) + float32(dir.dv[a]*sv)
		}
		return Vertex{Position: p, Normal: dir.normal, Color: color, Index: index}
	}
	verts := [4]Vertex{corner(0, 0), corner(h, 0), corner(h, w), corner(0, w)}

	// u x v points along +normal except for the Y faces.
	swap := (dir.normal[perp] < 0) != (perp == 1)
	if swap {
		verts[1], verts[3] = verts[3], verts[1]
	}

	baseIdx := uint32(len(mesh.Vertices))
	mesh.Vertices = append(mesh.Vertices, verts[:]...)
	mesh.Indices = append(mesh.Indices, baseIdx, baseIdx+1, baseIdx+2, baseIdx, baseIdx+2, baseIdx+3)
}

func voxelQuad(mesh *Mesh, dir dirSpec, v Voxel, pal *Palette) {
	a := axes(v.Coord)
	addQuad(mesh, dir, [3]int{a[dir.perp()], a[dir.u], a[dir.v]}, 1, 1, pal.At(v.Index), v.Index)
}

// GenerateSeparateCubesMesh emits a full unit cube (24 vertices, 12 triangles)
// for every occupied voxel, with no culling between neighbours.
func GenerateSeparateCubesMesh(grid *VoxelGrid, pal *Palette) *Mesh {
	voxels := grid.Voxels()
	mesh := &Mesh{
		Vertices: make([]Vertex, 0, len(voxels)*24),
		Indices:  make([]uint32, 0, len(voxels)*36),
	}
	for _, v := range voxels {
		for _, dir := range directions {
			voxelQuad(mesh, dir, v, pal)
		}
	}
	return mesh
}

// GenerateCulledMesh emits one unit quad per exposed voxel face. A face is
// exposed when the neighbour along its normal is empty or outside the grid,
// so faces between two occupied voxels are dropped whatever their colours.
func GenerateCulledMesh(grid *VoxelGrid, pal *Palette) *Mesh {
	voxels := grid.Voxels()
	mesh := &Mesh{}
	for _, dir := range directions {
		for _, v := range voxels {
			if _, solid := grid.voxels[dir.neighbor(v.Coord)]; solid {
				continue
			}
			voxelQuad(mesh, dir, v, pal)
		}
	}
	return mesh
}

// GenerateOptimizedMesh drops every face shared by two occupied voxels and
// merges the remaining coplanar faces of the same palette index into
// rectangles, so two touching voxels of one colour give a single box.
// The sweep is limited to the occupied bounding box.
func GenerateOptimizedMesh(grid *VoxelGrid, pal *Palette) *Mesh {
	mesh := &Mesh{}
	lo, hi, ok := grid.Bounds()
	if !ok {
		return mesh
	}
	min, max := axes(lo), axes(hi)

	for _, dir := range directions {
		perp := dir.perp()
		nu := max[dir.u] - min[dir.u] + 1
		nv := max[dir.v] - min[dir.v] + 1
		mask := make([]uint8, nu*nv)
		visited := make([]bool, nu*nv)

		for p := min[perp]; p <= max[perp]; p++ {
			for i := range mask {
				mask[i] = 0
				visited[i] = false
			}
			for u := 0; u < nu; u++ {
				for v := 0; v < nv; v++ {
					var pos [3]int
					pos[perp] = p
					pos[dir.u] = min[dir.u] + u
					pos[dir.v] = min[dir.v] + v
					c := Coord{pos[0], pos[1], pos[2]}
					idx, solid := grid.voxels[c]
					if !solid {
						continue
					}
					if _, covered := grid.voxels[dir.neighbor(c)]; !covered {
						mask[u*nv+v] = idx
					}
				}
			}

			for u := 0; u < nu; u++ {
				for v := 0; v < nv; {
					idx := mask[u*nv+v]
					if idx == 0 || visited[u*nv+v] {
						v++
						continue
					}
					width := 1
					for w := v + 1; w < nv && mask[u*nv+w] == idx && !visited[u*nv+w]; w++ {
						width++
					}
					height := 1
				grow:
					for h := u + 1; h < nu; h++ {
						for w := v; w < v+width; w++ {
							if mask[h*nv+w] != idx || visited[h*nv+w] {
								break grow
							}
						}
						height++
					}
					for hu := u; hu < u+height; hu++ {
						for hv := v; hv < v+width; hv++ {
							visited[hu*nv+hv] = true
						}
					}
					addQuad(mesh, dir, [3]int{p, min[dir.u] + u, min[dir.v] + v}, width, height, pal.At(idx), idx)
					v += width
				}
			}
		}
	}
	return mesh
}
