package scaffold

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/dyluth/holdcheck/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize(t *testing.T) {
	dir := t.TempDir()

	path, err := Initialize(dir, false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "holdcheck.yml"), path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultChipUnit, cfg.ChipUnit())
	assert.Equal(t, config.DefaultMaxDecompressedBytes, cfg.MaxDecompressedBytes())
	assert.Equal(t, "default", cfg.Redis.Namespace)
	assert.Empty(t, cfg.Redis.URL)
	assert.False(t, cfg.Verify.StrictRoster)
}

func TestInitialize_RefusesToOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "holdcheck.yml")
	require.NoError(t, os.WriteFile(path, []byte("version: \"1.0\"\n# mine\n"), 0644))

	_, err := Initialize(dir, false)
	require.Error(t, err)
	assert.True(t, IsExistingError(err))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# mine")
}

func TestInitialize_Force(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "holdcheck.yml")
	require.NoError(t, os.WriteFile(path, []byte("garbage: ["), 0644))

	_, err := Initialize(dir, true)
	require.NoError(t, err)

	_, err = config.Load(path)
	require.NoError(t, err)
}

func TestCheckExisting(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, CheckExisting(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "holdcheck.yml"), nil, 0644))
	err := CheckExisting(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestPrintSuccess(t *testing.T) {
	var buf bytes.Buffer
	PrintSuccess(&buf, "holdcheck.yml")
	assert.Contains(t, buf.String(), "✓ holdcheck.yml")
	assert.Contains(t, buf.String(), "holdcheck verify")
}
