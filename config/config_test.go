package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(EnvPath, "")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	require.NoError(t, cfg.Validate())
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "voxtool.toml", `
[mesh]
mode = "cubes"
workers = 2

[archive]
codec = "s2"

[log]
level = "debug"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "cubes", cfg.Mesh.Mode)
	assert.Equal(t, 2, cfg.Mesh.Workers)
	assert.Equal(t, "s2", cfg.Archive.Codec)
	assert.Equal(t, "cdc", cfg.Archive.Layout, "unset keys keep defaults")
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadYAMLFromEnv(t *testing.T) {
	path := writeFile(t, "voxtool.yml", "mesh:\n  mode: culled\narchive:\n  layout: raw\n  codec: none\n")
	t.Setenv(EnvPath, path)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "culled", cfg.Mesh.Mode)
	assert.Equal(t, "raw", cfg.Archive.Layout)
	assert.Equal(t, "none", cfg.Archive.Codec)
}

func TestLoadEmptyYAML(t *testing.T) {
	cfg, err := Load(writeFile(t, "empty.yaml", ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadRejects(t *testing.T) {
	cases := map[string]string{
		"unknown.toml":  "[mesh]\nmode = \"cubes\"\ncolour = 3\n",
		"unknown.yaml":  "mesh:\n  speed: 3\n",
		"badmode.toml":  "[mesh]\nmode = \"wireframe\"\n",
		"badcodec.yaml": "archive:\n  codec: lz4\n",
		"badlevel.toml": "[log]\nlevel = \"loud\"\n",
		"workers.toml":  "[mesh]\nworkers = -1\n",
		"config.json":   "{}",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, name, body))
			assert.Error(t, err)
		})
	}
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestNewLoggerFile(t *testing.T) {
	cfg := Default()
	cfg.Log.File = filepath.Join(t.TempDir(), "voxtool.log")
	cfg.Log.Level = "warn"

	log, closer, err := cfg.NewLogger()
	require.NoError(t, err)
	log.Info("hidden")
	log.Warn("shown", "file", "a.vox")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(cfg.Log.File)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "msg=shown")
	assert.Contains(t, string(data), "file=a.vox")
}
