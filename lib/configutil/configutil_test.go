package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Url      string `json:"url"`
	Passfile string `json:"passfile"`
	Debug    bool   `json:"debug"`
}

func TestReadConfigMergesLocalOverlay(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "trac.json5")

	err := os.WriteFile(name, []byte(`{url: "https://trac.example.org", passfile: "pass.txt"}`), 0o600)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(dir, "trac.local.json5"), []byte(`{debug: true, passfile: "local.txt"}`), 0o600)
	require.NoError(t, err)

	cfg, err := ReadConfig[testConfig](name)
	require.NoError(t, err)
	require.Equal(t, "https://trac.example.org", cfg.Url)
	require.Equal(t, "local.txt", cfg.Passfile)
	require.True(t, cfg.Debug)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "nope.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
