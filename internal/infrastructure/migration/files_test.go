package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add stock alerts", "add_stock_alerts"},
		{"Add-Sync-Logs", "add_sync_logs"},
		{"products__sku  index", "products_sku_index"},
		{"  padded  ", "padded"},
		{"special!@#chars", "special_chars"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Slug(tt.input))
		})
	}
}

func TestCreate_NumbersSequentially(t *testing.T) {
	dir := t.TempDir()

	first, err := Create(dir, "init")
	require.NoError(t, err)
	assert.Equal(t, uint(1), first.Version)
	assert.Equal(t, "000001_init", first.Name)
	assert.FileExists(t, first.UpPath)
	assert.FileExists(t, first.DownPath)

	second, err := Create(dir, "Add renotify index")
	require.NoError(t, err)
	assert.Equal(t, uint(2), second.Version)
	assert.Equal(t, "000002_add_renotify_index", second.Name)

	_, err = Create(dir, "???")
	assert.Error(t, err)
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"000010_later.up.sql", "000010_later.down.sql",
		"000002_early.up.sql", "000002_early.down.sql",
		"README.md", "bad_name.up.sql",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "000003_dir.up.sql"), 0o755))

	files, err := List(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, uint(2), files[0].Version)
	assert.Equal(t, "000002_early", files[0].Name)
	assert.Equal(t, filepath.Join(dir, "000010_later.down.sql"), files[1].DownPath)

	missing, err := List(filepath.Join(dir, "nope"))
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestList_RepositoryMigrations(t *testing.T) {
	files, err := List(filepath.Join("..", "..", "..", "migrations"))
	require.NoError(t, err)
	require.NotEmpty(t, files)
	assert.Equal(t, "000001_init", files[0].Name)
	for _, f := range files {
		assert.FileExists(t, f.DownPath)
	}
}
