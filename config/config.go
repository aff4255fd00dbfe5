package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/voxelsplace/voxdoc/vox"
	"gopkg.in/yaml.v3"
)

// EnvPath names the environment variable consulted when no config path is given.
const EnvPath = "VOXTOOL_CONFIG"

// Config is the voxtool configuration. Files may be TOML or YAML.
type Config struct {
	Mesh    MeshConfig    `toml:"mesh" yaml:"mesh"`
	Archive ArchiveConfig `toml:"archive" yaml:"archive"`
	Log     LogConfig     `toml:"log" yaml:"log"`
}

type MeshConfig struct {
	Mode    string `toml:"mode" yaml:"mode"`
	Workers int    `toml:"workers" yaml:"workers"`
}

type ArchiveConfig struct {
	Codec  string `toml:"codec" yaml:"codec"`
	Layout string `toml:"layout" yaml:"layout"`
}

// LogConfig selects the log level and, when File is set, a rotating log file.
type LogConfig struct {
	Level      string `toml:"level" yaml:"level"`
	File       string `toml:"file" yaml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups" yaml:"max_backups"`
}

// Default returns the settings used when no file is given.
func Default() *Config {
	return &Config{
		Mesh:    MeshConfig{Mode: vox.MeshOptimized, Workers: 4},
		Archive: ArchiveConfig{Codec: "zstd", Layout: "cdc"},
		Log:     LogConfig{Level: "info", MaxSizeMB: 10, MaxBackups: 3},
	}
}

// Load reads path, or the file named by VOXTOOL_CONFIG when path is empty.
// With neither set it returns Default(). Missing keys keep their defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvPath)
		if path == "" {
			return Default(), nil
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, fmt.Errorf("could not decode TOML config %s: %w", path, err)
		}
		if keys := md.Undecoded(); len(keys) > 0 {
			return nil, fmt.Errorf("unknown keys in %s: %v", path, keys)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("could not decode YAML config %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q (want .toml, .yaml or .yml)", filepath.Ext(path))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every enumerated setting.
func (c *Config) Validate() error {
	if _, err := vox.BuilderFor(c.Mesh.Mode); err != nil {
		return err
	}
	if c.Mesh.Workers < 0 {
		return fmt.Errorf("mesh.workers must be >= 0, got %d", c.Mesh.Workers)
	}
	if _, err := vox.ParseCodec(c.Archive.Codec); err != nil {
		return err
	}
	if _, err := vox.ParseLayout(c.Archive.Layout); err != nil {
		return err
	}
	if _, err := c.Log.level(); err != nil {
		return err
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 {
		return fmt.Errorf("log.max_size_mb and log.max_backups must be >= 0")
	}
	return nil
}

func (l LogConfig) level() (slog.Level, error) {
	var lvl slog.Level
	if l.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return lvl, nil
}
