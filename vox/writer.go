package vox

import (
	"bytes"
	"fmt"
	"io"
)

// ToBytes serializes the document as a VOX file. Single-model documents are
// written without PACK and without a scene graph. Nothing is produced when
// validation fails.
func ToBytes(doc *Document) ([]byte, error) {
	if err := validate(doc); err != nil {
		return nil, err
	}
	models := doc.Models()

	var children bytes.Buffer
	if len(models) > 1 {
		writeChunk(&children, packChunk{models: len(models)})
	}
	for _, m := range models {
		writeChunk(&children, sizeChunk{size: m.Size()})
		writeChunk(&children, xyziChunk{voxels: m.Voxels()})
	}
	if len(models) > 1 {
		for _, c := range sceneChunks(models) {
			writeChunk(&children, c)
		}
	}
	writeChunk(&children, rgbaChunk{palette: doc.Palette})

	var out bytes.Buffer
	out.Grow(fileHeaderLen + chunkHeaderLen + children.Len())
	out.WriteString(FileMagic)
	putInt32(&out, FileVersion)
	writeContainer(&out, idMain, children.Bytes())
	return out.Bytes(), nil
}

// Write serializes doc to w.
func Write(w io.Writer, doc *Document) error {
	b, err := ToBytes(doc)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

func validate(doc *Document) error {
	if doc == nil || doc.Len() == 0 {
		return ErrEmptyDocument
	}
	if doc.Palette == nil {
		return fmt.Errorf("%w: document has no palette", ErrPalette)
	}
	for i, m := range doc.Models() {
		for c := range m.voxels {
			if c.X < 0 || c.X > 255 || c.Y < 0 || c.Y > 255 || c.Z < 0 || c.Z > 255 {
				return fmt.Errorf("model %d (%q): %w: (%d,%d,%d)", i, m.Name, ErrCoordinateRange, c.X, c.Y, c.Z)
			}
		}
		if s := m.Size(); s.X > MaxModelSize || s.Y > MaxModelSize || s.Z > MaxModelSize {
			return fmt.Errorf("model %d (%q): %w: %dx%dx%d", i, m.Name, ErrModelTooLarge, s.X, s.Y, s.Z)
		}
	}
	return nil
}
