package exportstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalArchive keeps export files on the local filesystem.
type LocalArchive struct {
	baseDir string
}

// NewLocalArchive creates a LocalArchive instance. The directory is created
// if it does not exist.
func NewLocalArchive(baseDir string) (*LocalArchive, error) {
	baseDir = strings.TrimSpace(baseDir)
	if baseDir == "" {
		baseDir = "datas/exports"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	return &LocalArchive{baseDir: baseDir}, nil
}

// LocalBaseDir returns the root directory used for export files.
func (a *LocalArchive) LocalBaseDir() string {
	return a.baseDir
}

// Store writes the export bytes to disk and returns the relative path.
func (a *LocalArchive) Store(ctx context.Context, data []byte, opts StoreOptions) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty payload")
	}
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	relativePath := buildExportPath(opts.Collection, opts.BaseName, opts.Extension)

	absPath := filepath.Join(a.baseDir, filepath.FromSlash(relativePath))
	if opts.SkipIfExists {
		if _, err := os.Stat(absPath); err == nil {
			return relativePath, nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return "", fmt.Errorf("create dir: %w", err)
	}
	if err := os.WriteFile(absPath, data, 0o644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	return relativePath, nil
}

var _ Archive = (*LocalArchive)(nil)
var _ LocalBaseDirProvider = (*LocalArchive)(nil)
