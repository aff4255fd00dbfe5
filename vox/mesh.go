package vox

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Vertex is one mesh corner with a flat face normal and the palette colour
// of the voxel it belongs to.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	Color    Color
	Index    uint8
}

// Mesh is an indexed triangle list. Triangles wind counter-clockwise when
// seen from outside the solid.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
}

// TriangleCount returns len(Indices)/3.
func (m *Mesh) TriangleCount() int { return len(m.Indices) / 3 }

// Bounds returns the axis aligned bounding box of all vertices.
func (m *Mesh) Bounds() (min, max [3]float32, ok bool) {
	for i, v := range m.Vertices {
		if i == 0 {
			min, max = v.Position, v.Position
			continue
		}
		for a := 0; a < 3; a++ {
			if v.Position[a] < min[a] {
				min[a] = v.Position[a]
			}
			if v.Position[a] > max[a] {
				max[a] = v.Position[a]
			}
		}
	}
	return min, max, len(m.Vertices) > 0
}

// BoundsSize returns the extent of Bounds, zero for an empty mesh.
func (m *Mesh) BoundsSize() [3]float32 {
	min, max, ok := m.Bounds()
	if !ok {
		return [3]float32{}
	}
	return [3]float32{max[0] - min[0], max[1] - min[1], max[2] - min[2]}
}

// Positions, Normals and Colors split the vertices into renderer buffers.
func (m *Mesh) Positions() [][3]float32 {
	out := make([][3]float32, len(m.Vertices))
	for i, v := range m.Vertices {
		out[i] = v.Position
	}
	return out
}

func (m *Mesh) Normals() [][3]float32 {
	out := make([][3]float32, len(m.Vertices))
	for i, v := range m.Vertices {
		out[i] = v.Normal
	}
	return out
}

func (m *Mesh) Colors() [][4]uint8 {
	out := make([][4]uint8, len(m.Vertices))
	for i, v := range m.Vertices {
		out[i] = [4]uint8{v.Color.R, v.Color.G, v.Color.B, v.Color.A}
	}
	return out
}

// MeshBuilder turns one model into geometry.
type MeshBuilder func(*VoxelGrid, *Palette) *Mesh

// Mesh modes accepted by BuilderFor.
const (
	MeshOptimized = "optimized"
	MeshCulled    = "culled"
	MeshCubes     = "cubes"
)

// BuilderFor returns the builder registered under mode.
func BuilderFor(mode string) (MeshBuilder, error) {
	switch mode {
	case MeshOptimized, "":
		return GenerateOptimizedMesh, nil
	case MeshCulled:
		return GenerateCulledMesh, nil
	case MeshCubes:
		return GenerateSeparateCubesMesh, nil
	}
	return nil, fmt.Errorf("unknown mesh mode %q", mode)
}

// MeshDocument meshes every model of doc with at most workers goroutines
// (GOMAXPROCS when workers <= 0). The result is index aligned with doc.Models().
// Models share no mutable state, so each one is meshed independently.
func MeshDocument(ctx context.Context, doc *Document, build MeshBuilder, workers int) ([]*Mesh, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	pal := doc.Palette
	if pal == nil {
		return nil, fmt.Errorf("%w: document has no palette", ErrPalette)
	}
	models := doc.Models()
	out := make([]*Mesh, len(models))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, m := range models {
		i, m := i, m
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = build(m, pal)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
