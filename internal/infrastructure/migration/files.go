package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	fileNamePattern = regexp.MustCompile(`^(\d+)_([a-z0-9_]+)\.up\.sql$`)
	unsafeChars     = regexp.MustCompile(`[^a-z0-9]+`)
)

// File is one versioned up/down pair on disk
type File struct {
	Version  uint
	Name     string
	UpPath   string
	DownPath string
}

// List returns the migrations found in dir ordered by version.
// A missing directory yields an empty list.
func List(dir string) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []File{}, nil
		}
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	files := make([]File, 0, len(entries)/2)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		match := fileNamePattern.FindStringSubmatch(e.Name())
		if match == nil {
			continue
		}
		v, err := strconv.ParseUint(match[1], 10, 64)
		if err != nil {
			continue
		}
		base := strings.TrimSuffix(e.Name(), ".up.sql")
		files = append(files, File{
			Version:  uint(v),
			Name:     base,
			UpPath:   filepath.Join(dir, e.Name()),
			DownPath: filepath.Join(dir, base+".down.sql"),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Version < files[j].Version })
	return files, nil
}

// Create writes an empty up/down pair numbered one past the highest existing version
func Create(dir, name string) (*File, error) {
	slug := Slug(name)
	if slug == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	existing, err := List(dir)
	if err != nil {
		return nil, err
	}
	var next uint = 1
	if n := len(existing); n > 0 {
		next = existing[n-1].Version + 1
	}

	base := fmt.Sprintf("%06d_%s", next, slug)
	f := &File{
		Version:  next,
		Name:     base,
		UpPath:   filepath.Join(dir, base+".up.sql"),
		DownPath: filepath.Join(dir, base+".down.sql"),
	}

	if err := os.WriteFile(f.UpPath, []byte("-- "+base+" (up)\n"), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write up migration: %w", err)
	}
	if err := os.WriteFile(f.DownPath, []byte("-- "+base+" (down)\n"), 0o644); err != nil {
		_ = os.Remove(f.UpPath)
		return nil, fmt.Errorf("failed to write down migration: %w", err)
	}
	return f, nil
}

// Slug lowercases name and collapses every run of other characters into one underscore
func Slug(name string) string {
	return strings.Trim(unsafeChars.ReplaceAllString(strings.ToLower(name), "_"), "_")
}
