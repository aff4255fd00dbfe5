package utils

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/voxelsplace/voxdoc/vox"
)

// generateNoiseGrid fills a size^3 model with percentage of its voxels set to
// random palette indices in [1..255].
func generateNoiseGrid(percentage float64, size int, r *rand.Rand) (*vox.Document, error) {
	doc := vox.NewDocument()
	grid, err := doc.CreateModel("noise", vox.Size{X: size, Y: size, Z: size})
	if err != nil {
		return nil, err
	}
	percentage = min(max(percentage, 0), 100)
	total := size * size * size
	want := min(int(float64(total)*(percentage/100.0)+0.5), total)

	// Fisher-Yates over the first want positions only.
	idx := make([]int, total)
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < want; i++ {
		j := i + r.Intn(total-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	for _, i := range idx[:want] {
		c := vox.Coord{X: i % size, Y: (i / size) % size, Z: i / (size * size)}
		grid.AddOrUpdateVoxel(c, uint8(1+r.Intn(255)))
	}
	return doc, nil
}

// RunGenerateNoise writes amount .vox files named 0.vox..(amount-1).vox into
// outDir, each a size^3 model with the given fill percentage.
func (t *Tool) RunGenerateNoise(percentage float64, amount, size int, outDir string) error {
	return t.RunGenerateNoiseRange(percentage, percentage, amount, size, outDir, time.Now().UnixNano())
}

// RunGenerateNoiseRange is RunGenerateNoise with a per-file fill percentage
// drawn uniformly from [percentageMin, percentageMax]. Equal seeds give equal files.
func (t *Tool) RunGenerateNoiseRange(percentageMin, percentageMax float64, amount, size int, outDir string, seed int64) error {
	if size < 1 || size > vox.MaxModelSize {
		return fmt.Errorf("%w: noise size %d not in [1,%d]", vox.ErrInvalidSize, size, vox.MaxModelSize)
	}
	if outDir == "" {
		outDir = "."
	}
	percentageMin = max(percentageMin, 0)
	percentageMax = min(percentageMax, 100)
	if percentageMax < percentageMin {
		percentageMin, percentageMax = percentageMax, percentageMin
	}

	for i := 0; i < amount; i++ {
		// Weyl-sequence seed per file.
		const weyl = uint64(0x9e3779b97f4a7c15)
		fileSeed := uint64(seed) ^ (uint64(i)+1)*weyl
		r := rand.New(rand.NewSource(int64(fileSeed & 0x7fffffffffffffff)))

		perc := percentageMin
		if percentageMax > percentageMin {
			perc = percentageMin + r.Float64()*(percentageMax-percentageMin)
		}
		doc, err := generateNoiseGrid(perc, size, r)
		if err != nil {
			return err
		}
		data, err := vox.ToBytes(doc)
		if err != nil {
			return err
		}
		path := filepath.Join(outDir, fmt.Sprintf("%d.vox", i))
		if err := t.writeOutput(path, data, "noise written"); err != nil {
			return err
		}
	}
	return nil
}
