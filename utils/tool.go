package utils

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/voxelsplace/voxdoc/api"
	"github.com/voxelsplace/voxdoc/config"
)

// Tool runs file-level commands with one configuration and logger.
type Tool struct {
	Config *config.Config
	Log    *slog.Logger
}

// New returns a Tool. A nil cfg means config.Default(); a nil log discards.
func New(cfg *config.Config, log *slog.Logger) *Tool {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Tool{Config: cfg, Log: log}
}

func (t *Tool) meshOptions() api.Options {
	return api.Options{MeshMode: t.Config.Mesh.Mode, Workers: t.Config.Mesh.Workers}
}

// writeOutput writes data to path, creating parent directories, and logs its size.
func (t *Tool) writeOutput(path string, data []byte, msg string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	t.Log.Info(msg, "path", path, "size", humanize.Bytes(uint64(len(data))))
	return nil
}
