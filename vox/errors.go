package vox

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSize     = errors.New("vox: model size must be positive")
	ErrEmptyDocument   = errors.New("vox: document has no models")
	ErrModelTooLarge   = errors.New("vox: model size exceeds 256")
	ErrCoordinateRange = errors.New("vox: voxel coordinate outside [0,255]")
	ErrPalette         = errors.New("vox: palette must have 256 entries")
	ErrPaletteIndex    = errors.New("vox: palette index 0 is reserved")
	ErrDuplicateVoxel  = errors.New("vox: voxel listed twice")
	ErrBadMagic        = errors.New("vox: not a VOX file")
	ErrTruncated       = errors.New("vox: truncated data")
	ErrChunkLength     = errors.New("vox: chunk length mismatch")
	ErrMissingChunk    = errors.New("vox: missing required chunk")
	ErrUnexpectedChunk = errors.New("vox: unexpected chunk")
	ErrSceneGraph      = errors.New("vox: invalid scene graph")
)

// ChunkError reports a malformed chunk in a VOX stream.
type ChunkError struct {
	ID     string
	Offset int
	Err    error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("chunk %q at offset %d: %v", e.ID, e.Offset, e.Err)
}

func (e *ChunkError) Unwrap() error { return e.Err }
