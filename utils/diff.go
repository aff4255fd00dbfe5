package utils

import (
	"os"

	"github.com/voxelsplace/voxdoc/api"
)

// RunDiff writes the edit stream turning model of oldPath into model of newPath.
func (t *Tool) RunDiff(oldPath, newPath, outPath string, model int) error {
	oldBytes, err := os.ReadFile(oldPath)
	if err != nil {
		return err
	}
	newBytes, err := os.ReadFile(newPath)
	if err != nil {
		return err
	}
	diff, err := api.DiffVox(oldBytes, newBytes, model)
	if err != nil {
		return err
	}
	return t.writeOutput(outPath, diff, "edit stream written")
}

// RunPatch applies an edit stream to model of inPath and writes the result.
func (t *Tool) RunPatch(inPath, diffPath, outPath string, model int) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	diff, err := os.ReadFile(diffPath)
	if err != nil {
		return err
	}
	out, applied, err := api.PatchVox(data, diff, model)
	if err != nil {
		return err
	}
	t.Log.Info("patched", "model", model, "edits", applied)
	return t.writeOutput(outPath, out, "vox written")
}
