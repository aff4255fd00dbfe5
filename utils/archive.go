package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/voxelsplace/voxdoc/api"
	"github.com/voxelsplace/voxdoc/vox"
	"golang.org/x/sync/errgroup"
)

// RunArchive bundles .vox files into an archive using the configured codec
// and layout. Entries are named after the input file's base name.
func (t *Tool) RunArchive(inputFiles []string, outputFile string) error {
	if len(inputFiles) == 0 {
		return fmt.Errorf("no .vox files provided")
	}
	codec, err := vox.ParseCodec(t.Config.Archive.Codec)
	if err != nil {
		return err
	}
	layout, err := vox.ParseLayout(t.Config.Archive.Layout)
	if err != nil {
		return err
	}

	blobs := make([][]byte, len(inputFiles))
	var g errgroup.Group
	for i, path := range inputFiles {
		i, path := i, path
		g.Go(func() error {
			b, err := os.ReadFile(path)
			blobs[i] = b
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	files := make(map[string][]byte, len(inputFiles))
	var rawSize uint64
	for i, path := range inputFiles {
		name := filepath.Base(path)
		if _, dup := files[name]; dup {
			return fmt.Errorf("duplicate entry name %q (%s)", name, path)
		}
		files[name] = blobs[i]
		rawSize += uint64(len(blobs[i]))
	}

	start := time.Now()
	data, err := api.ArchiveVox(files, layout, codec)
	if err != nil {
		return err
	}
	t.Log.Info("archived", "entries", len(files), "input", humanize.Bytes(rawSize),
		"codec", t.Config.Archive.Codec, "layout", t.Config.Archive.Layout, "took", time.Since(start))
	return t.writeOutput(outputFile, data, "archive written")
}

// RunUnarchive writes every entry of an archive into outputDir.
func (t *Tool) RunUnarchive(archiveFile, outputDir string) error {
	data, err := os.ReadFile(archiveFile)
	if err != nil {
		return err
	}
	files, err := api.UnarchiveVox(data)
	if err != nil {
		return err
	}
	for name := range files {
		if name != filepath.Base(name) || name == "." || name == ".." {
			return fmt.Errorf("refusing to write entry %q outside %s", name, outputDir)
		}
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return err
	}
	var g errgroup.Group
	for name, b := range files {
		name, b := name, b
		g.Go(func() error {
			return os.WriteFile(filepath.Join(outputDir, name), b, 0o644)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	t.Log.Info("unarchived", "entries", len(files), "dir", outputDir)
	return nil
}
