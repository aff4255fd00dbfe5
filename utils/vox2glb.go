package utils

import (
	"context"
	"os"
	"time"

	"github.com/voxelsplace/voxdoc/api"
)

// RunVox2GLB converts a .vox file to a binary glTF using the configured mesh mode.
func (t *Tool) RunVox2GLB(ctx context.Context, inPath, outPath string) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	start := time.Now()
	glb, err := api.VoxToGLB(ctx, data, t.meshOptions())
	if err != nil {
		return err
	}
	t.Log.Debug("meshed", "input", inPath, "mode", t.Config.Mesh.Mode, "took", time.Since(start))
	return t.writeOutput(outPath, glb, "glb written")
}
