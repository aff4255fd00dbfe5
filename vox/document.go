package vox

import (
	"fmt"

	xxhash "github.com/cespare/xxhash/v2"
)

// Document is an ordered list of models sharing one palette. Model order is
// the serialization order and the scene graph node order.
type Document struct {
	Palette *Palette
	models  []*VoxelGrid
}

// NewDocument returns an empty document using the default palette.
func NewDocument() *Document {
	return &Document{Palette: DefaultPalette()}
}

// CreateModel appends a new empty model with the given name and size.
func (d *Document) CreateModel(name string, size Size) (*VoxelGrid, error) {
	if !size.valid() {
		return nil, fmt.Errorf("%w: %dx%dx%d", ErrInvalidSize, size.X, size.Y, size.Z)
	}
	g := newVoxelGrid(name, size)
	d.models = append(d.models, g)
	return g, nil
}

// AddModel appends an existing grid, e.g. a clone from another document.
func (d *Document) AddModel(g *VoxelGrid) {
	d.models = append(d.models, g)
}

// RemoveModel drops the model at index i, keeping the order of the rest.
func (d *Document) RemoveModel(i int) bool {
	if i < 0 || i >= len(d.models) {
		return false
	}
	d.models = append(d.models[:i], d.models[i+1:]...)
	return true
}

// Models returns the models in document order. The slice must not be modified.
func (d *Document) Models() []*VoxelGrid { return d.models }

// Model returns the model at index i or nil.
func (d *Document) Model(i int) *VoxelGrid {
	if i < 0 || i >= len(d.models) {
		return nil
	}
	return d.models[i]
}

// Len returns the number of models.
func (d *Document) Len() int { return len(d.models) }

// ReplacePaletteEntry changes slot index for every model of the document.
func (d *Document) ReplacePaletteEntry(index uint8, c Color) {
	d.palette().Set(index, c)
}

func (d *Document) palette() *Palette {
	if d.Palette == nil {
		d.Palette = DefaultPalette()
	}
	return d.Palette
}

// Fingerprint hashes the canonical serialization of the document. Documents
// that serialize identically share a fingerprint.
func (d *Document) Fingerprint() (uint64, error) {
	b, err := ToBytes(d)
	if err != nil {
		return 0, err
	}
	return xxhash.Sum64(b), nil
}
