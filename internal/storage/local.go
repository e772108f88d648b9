package storage

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/velotrend/velotrend/internal/support/logger"
)

// LocalType identifies the local file system backend.
const LocalType = "local"

// localConnection maps buckets to directories under a configured base
// directory.
type localConnection struct {
	settings Settings
	name     string
}

var _ Connection = (*localConnection)(nil)

// NewLocalConnection creates a local file system connection rooted at
// settings.BaseDir, creating the directory if needed.
func NewLocalConnection(settings Settings, name string) (Connection, error) {
	if settings.BaseDir == "" {
		return nil, fmt.Errorf("local storage connection '%s': base_dir must be specified", name)
	}
	info, err := os.Stat(settings.BaseDir)
	switch {
	case os.IsNotExist(err):
		if err := os.MkdirAll(settings.BaseDir, 0755); err != nil {
			return nil, fmt.Errorf("local storage connection '%s': failed to create base_dir '%s': %w", name, settings.BaseDir, err)
		}
	case err != nil:
		return nil, fmt.Errorf("local storage connection '%s': failed to stat base_dir '%s': %w", name, settings.BaseDir, err)
	case !info.IsDir():
		return nil, fmt.Errorf("local storage connection '%s': base_dir '%s' is not a directory", name, settings.BaseDir)
	}
	return &localConnection{settings: settings, name: name}, nil
}

func (c *localConnection) Close() error { return nil }

func (c *localConnection) Type() string { return LocalType }

func (c *localConnection) Name() string { return c.name }

func (c *localConnection) Upload(ctx context.Context, bucket, objectName string, data io.Reader, contentType string) error {
	fullPath, err := c.resolvePath(bucket, objectName)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory for '%s': %w", fullPath, err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file '%s': %w", fullPath, err)
	}
	defer file.Close()

	if _, err := io.Copy(file, data); err != nil {
		return fmt.Errorf("failed to write data to file '%s': %w", fullPath, err)
	}
	logger.Debugf("Uploaded '%s' (local connection '%s').", fullPath, c.name)
	return nil
}

func (c *localConnection) Download(ctx context.Context, bucket, objectName string) (io.ReadCloser, error) {
	fullPath, err := c.resolvePath(bucket, objectName)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file '%s': %w", fullPath, err)
	}
	return file, nil
}

func (c *localConnection) ListObjects(ctx context.Context, bucket, prefix string, fn func(objectName string) error) error {
	basePath, err := c.resolvePath(bucket, "")
	if err != nil {
		return err
	}

	err = filepath.WalkDir(basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == basePath {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		objectName, err := filepath.Rel(basePath, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path for '%s': %w", path, err)
		}
		objectName = filepath.ToSlash(objectName)
		if prefix != "" && !strings.HasPrefix(objectName, prefix) {
			return nil
		}
		return fn(objectName)
	})
	if err != nil {
		return fmt.Errorf("failed to list objects under '%s' with prefix '%s': %w", basePath, prefix, err)
	}
	return nil
}

func (c *localConnection) DeleteObject(ctx context.Context, bucket, objectName string) error {
	fullPath, err := c.resolvePath(bucket, objectName)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			logger.Warnf("Attempted to delete non-existent object '%s' (local connection '%s').", fullPath, c.name)
			return nil
		}
		return fmt.Errorf("failed to delete file '%s': %w", fullPath, err)
	}
	return nil
}

// resolvePath joins base_dir, bucket and object name and rejects paths that
// escape base_dir.
func (c *localConnection) resolvePath(bucket, objectName string) (string, error) {
	if bucket == "" {
		bucket = c.settings.BucketName
	}
	fullPath := filepath.Join(c.settings.BaseDir, bucket, objectName)

	absBase, err := filepath.Abs(c.settings.BaseDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base_dir '%s': %w", c.settings.BaseDir, err)
	}
	absFull, err := filepath.Abs(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path '%s': %w", fullPath, err)
	}
	if absFull != absBase && !strings.HasPrefix(absFull, absBase+string(os.PathSeparator)) {
		return "", fmt.Errorf("resolved path '%s' is outside of base_dir '%s'", fullPath, c.settings.BaseDir)
	}
	return fullPath, nil
}
