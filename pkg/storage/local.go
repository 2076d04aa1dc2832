package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sdejongh/sidediff/internal/platform"
)

// Local reads texts from a directory on the local filesystem
type Local struct {
	rootPath string
}

// NewLocal creates a local fetcher rooted at rootPath
func NewLocal(rootPath string) (*Local, error) {
	absPath, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to access path: %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", absPath)
	}

	return &Local{rootPath: absPath}, nil
}

// Root returns the absolute root directory
func (l *Local) Root() string {
	return l.rootPath
}

// Name identifies the fetcher by its root
func (l *Local) Name() string {
	return l.rootPath
}

// Fetch reads the file at path verbatim
func (l *Local) Fetch(ctx context.Context, path string) ([]byte, error) {
	rel, err := platform.CleanRelative(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Reads go through an os.Root so symlinks cannot leave the root
	root, err := os.OpenRoot(l.rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open root: %w", err)
	}
	defer root.Close()

	f, err := root.Open(filepath.FromSlash(rel))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%s: %w", rel, ErrNotFound)
	case errors.Is(err, fs.ErrPermission):
		return nil, fmt.Errorf("failed to open file: %w", err)
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrInvalidPath, rel)
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// List returns every regular file below dir ("" for the root), in lexical order
func (l *Local) List(ctx context.Context, dir string) ([]FileInfo, error) {
	start := l.rootPath
	if dir != "" && dir != "." {
		rel, err := platform.CleanRelative(dir)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPath, err)
		}
		start = platform.Join(l.rootPath, rel)
	}

	var files []FileInfo
	err := filepath.WalkDir(start, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !d.Type().IsRegular() {
			return nil
		}

		relPath, err := filepath.Rel(l.rootPath, p)
		if err != nil {
			return err
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		files = append(files, FileInfo{
			Path:    filepath.ToSlash(relPath),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	return files, nil
}

// Close does nothing for the local filesystem
func (l *Local) Close() error {
	return nil
}
