package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

/*
DirectoryStore is a simple storage provider that stores objects in a local
directory. Slashes in object ids map to subdirectories.
*/

////////////////////////////////////////////////////////////////////////////////

type DirectoryStore struct {
	root string
}

// NewDirectoryStore creates a new DirectoryStore, creating the root directory
// if necessary.
func NewDirectoryStore(root string) (*DirectoryStore, error) {
	if err := os.MkdirAll(root, 0750); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", root, err)
	}
	return &DirectoryStore{root: root}, nil
}

func (d *DirectoryStore) path(id string) string {
	return filepath.Join(d.root, filepath.FromSlash(id))
}

// Put stores an object in the directory.
func (d *DirectoryStore) Put(_ context.Context, id string, data []byte) error {
	path := d.path(id)
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write failure: %w", err)
	}
	return nil
}

// Get retrieves an object from the directory.
func (d *DirectoryStore) Get(_ context.Context, id string) ([]byte, error) {
	data, err := os.ReadFile(d.path(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// List returns the ids of objects beginning with prefix.
func (d *DirectoryStore) List(_ context.Context, prefix string) ([]string, error) {
	fsys := os.DirFS(d.root)
	matches, err := doublestar.Glob(fsys, "**")
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", d.root, err)
	}
	ids := []string{}
	for _, match := range matches {
		if !strings.HasPrefix(match, prefix) {
			continue
		}
		info, err := fs.Stat(fsys, match)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", match, err)
		}
		if info.IsDir() {
			continue
		}
		ids = append(ids, match)
	}
	sort.Strings(ids)
	return ids, nil
}

// Delete removes an object from the directory.
func (d *DirectoryStore) Delete(_ context.Context, id string) error {
	err := os.Remove(d.path(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) { // For conformance to S3 API
			return nil
		}
		return fmt.Errorf("deletion failure: %w", err)
	}
	return nil
}

func (d *DirectoryStore) String() string {
	return fmt.Sprintf("directory(%s)", d.root)
}
