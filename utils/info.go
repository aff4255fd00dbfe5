package utils

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/voxelsplace/voxdoc/api"
)

// RunInfo prints a summary of a .vox file to w.
func (t *Tool) RunInfo(inPath string, w io.Writer) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	s, err := api.Inspect(data)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s: %s, %d model(s), fingerprint %016x\n", inPath, humanize.Bytes(uint64(len(data))), len(s.Models), s.Fingerprint)
	for i, m := range s.Models {
		fmt.Fprintf(w, "  [%d] %q %dx%dx%d, %s voxels, offset (%g, %g, %g)\n",
			i, m.Name, m.Size.X, m.Size.Y, m.Size.Z, humanize.Comma(int64(m.Voxels)), m.Offset[0], m.Offset[1], m.Offset[2])
	}
	return nil
}
