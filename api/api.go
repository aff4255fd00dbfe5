package api

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/voxelsplace/voxdoc/vox"
)

// Options selects how documents are meshed for export.
type Options struct {
	MeshMode string
	Workers  int
}

// VoxToGLB converts .vox bytes to a binary glTF with one node per model.
func VoxToGLB(ctx context.Context, voxBytes []byte, opts Options) ([]byte, error) {
	doc, err := vox.FromBytes(voxBytes)
	if err != nil {
		return nil, err
	}
	return DocumentToGLB(ctx, doc, opts)
}

// DocumentToGLB meshes every model and writes them as glTF nodes named after
// the model and translated by its TransformOffset. Empty models become nodes
// without a mesh.
func DocumentToGLB(ctx context.Context, doc *vox.Document, opts Options) ([]byte, error) {
	build, err := vox.BuilderFor(opts.MeshMode)
	if err != nil {
		return nil, err
	}
	meshes, err := vox.MeshDocument(ctx, doc, build, opts.Workers)
	if err != nil {
		return nil, err
	}

	out := gltf.NewDocument()
	out.Asset.Generator = "voxdoc VOX -> GLB"

	hasAlpha := false
	for _, m := range meshes {
		for _, v := range m.Vertices {
			if v.Color.A < 255 {
				hasAlpha = true
			}
		}
	}
	material := &gltf.Material{
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{MetallicFactor: gltf.Float(0), RoughnessFactor: gltf.Float(1)},
		AlphaMode:            gltf.AlphaOpaque,
	}
	if hasAlpha {
		material.AlphaMode = gltf.AlphaBlend
	}
	out.Materials = []*gltf.Material{material}

	for i, model := range doc.Models() {
		name := model.Name
		if name == "" {
			name = fmt.Sprintf("model%d", i)
		}
		node := &gltf.Node{Name: name}
		off := model.TransformOffset
		node.Translation = [3]float64{float64(off[0]), float64(off[1]), float64(off[2])}

		if m := meshes[i]; len(m.Vertices) > 0 {
			prim := &gltf.Primitive{
				Attributes: map[string]int{
					gltf.POSITION: modeler.WritePosition(out, m.Positions()),
					gltf.NORMAL:   modeler.WriteNormal(out, m.Normals()),
					gltf.COLOR_0:  modeler.WriteColor(out, m.Colors()),
				},
				Indices:  gltf.Index(modeler.WriteIndices(out, m.Indices)),
				Material: gltf.Index(0),
			}
			out.Meshes = append(out.Meshes, &gltf.Mesh{Name: name, Primitives: []*gltf.Primitive{prim}})
			node.Mesh = gltf.Index(len(out.Meshes) - 1)
		}
		out.Nodes = append(out.Nodes, node)
		out.Scenes[0].Nodes = append(out.Scenes[0].Nodes, len(out.Nodes)-1)
	}

	var buf bytes.Buffer
	enc := gltf.NewEncoder(&buf)
	enc.AsBinary = true
	if err := enc.Encode(out); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ArchiveVox bundles .vox files into an archive. Every file must decode as a
// document; entries are stored sorted by name.
func ArchiveVox(files map[string][]byte, layout vox.ArchiveLayout, codec vox.ArchiveCodec) ([]byte, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files")
	}
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	a := &vox.Archive{Entries: make([]vox.ArchiveEntry, 0, len(names))}
	for _, name := range names {
		if _, err := vox.FromBytes(files[name]); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		a.Entries = append(a.Entries, vox.ArchiveEntry{Name: name, Data: files[name]})
	}
	return a.Marshal(layout, codec)
}

// UnarchiveVox returns a map of entry name -> .vox bytes.
func UnarchiveVox(data []byte) (map[string][]byte, error) {
	a, _, _, err := vox.UnmarshalArchive(data)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(a.Entries))
	for _, e := range a.Entries {
		out[e.Name] = e.Data
	}
	return out, nil
}

// DiffVox encodes the edits turning model index of oldBytes into the same
// model of newBytes.
func DiffVox(oldBytes, newBytes []byte, model int) ([]byte, error) {
	from, err := modelAt(oldBytes, model)
	if err != nil {
		return nil, fmt.Errorf("old: %w", err)
	}
	to, err := modelAt(newBytes, model)
	if err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}
	edits, err := vox.DiffGrids(from, to)
	if err != nil {
		return nil, err
	}
	return vox.EncodeEdits(from.Size(), edits)
}

// PatchVox applies an edit stream to one model and returns the new .vox bytes
// and the number of edits applied. Rejected edits fail the whole patch.
func PatchVox(voxBytes, diff []byte, model int) ([]byte, int, error) {
	doc, err := vox.FromBytes(voxBytes)
	if err != nil {
		return nil, 0, err
	}
	grid := doc.Model(model)
	if grid == nil {
		return nil, 0, fmt.Errorf("model %d out of range (%d models)", model, doc.Len())
	}
	size, edits, err := vox.DecodeEdits(diff)
	if err != nil {
		return nil, 0, err
	}
	if size != grid.Size() {
		return nil, 0, fmt.Errorf("edit stream is for %v, model %d is %v", size, model, grid.Size())
	}
	applied, err := vox.ApplyEdits(grid, edits)
	if err != nil {
		return nil, applied, err
	}
	out, err := vox.ToBytes(doc)
	return out, applied, err
}

func modelAt(data []byte, i int) (*vox.VoxelGrid, error) {
	doc, err := vox.FromBytes(data)
	if err != nil {
		return nil, err
	}
	g := doc.Model(i)
	if g == nil {
		return nil, fmt.Errorf("model %d out of range (%d models)", i, doc.Len())
	}
	return g, nil
}

// ModelInfo summarises one model.
type ModelInfo struct {
	Name   string
	Size   vox.Size
	Voxels int
	Offset [3]float32
}

// Summary describes a .vox file.
type Summary struct {
	Models      []ModelInfo
	Fingerprint uint64
}

// Inspect decodes voxBytes and summarises it.
func Inspect(voxBytes []byte) (*Summary, error) {
	doc, err := vox.FromBytes(voxBytes)
	if err != nil {
		return nil, err
	}
	fp, err := doc.Fingerprint()
	if err != nil {
		return nil, err
	}
	s := &Summary{Fingerprint: fp}
	for _, m := range doc.Models() {
		s.Models = append(s.Models, ModelInfo{Name: m.Name, Size: m.Size(), Voxels: m.Len(), Offset: m.TransformOffset})
	}
	return s, nil
}
