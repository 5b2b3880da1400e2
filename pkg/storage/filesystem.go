package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrOutsideBase is returned for paths that would escape the storage directory.
var ErrOutsideBase = errors.New("path escapes storage directory")

// LocalStorage persists export files on disk under a base directory.
type LocalStorage struct {
	baseDir string
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./exports"
	}
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("resolve exports directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create exports directory: %w", err)
	}
	return &LocalStorage{baseDir: abs}, nil
}

// Save writes data to relPath atomically: the bytes land in a scoped temp file
// that is renamed into place, and the temp file is released on every failure path.
func (s *LocalStorage) Save(relPath string, data []byte) (string, error) {
	target, err := s.resolve(relPath)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("prepare export directory: %w", err)
	}
	err = s.WithTempFile(filepath.Dir(relPath), func(f *os.File) error {
		if _, err := f.Write(data); err != nil {
			return fmt.Errorf("write export file: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close export file: %w", err)
		}
		if err := os.Rename(f.Name(), target); err != nil {
			return fmt.Errorf("publish export file: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return relPath, nil
}

// WithTempFile allocates a temporary file under dir, hands it to use, and
// always removes whatever is left at the temp path afterwards, including when
// use returns an error or panics. A file renamed away by use is untouched.
func (s *LocalStorage) WithTempFile(dir string, use func(f *os.File) error) (err error) {
	parent, err := s.resolve(dir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("prepare temp directory: %w", err)
	}
	f, err := os.CreateTemp(parent, ".tmp-export-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	name := f.Name()
	defer func() {
		_ = f.Close()
		if rmErr := os.Remove(name); rmErr != nil && !os.IsNotExist(rmErr) && err == nil {
			err = fmt.Errorf("release temp file: %w", rmErr)
		}
	}()
	return use(f)
}

// Open returns a read-only handle for the stored file.
func (s *LocalStorage) Open(relPath string) (*os.File, error) {
	path, err := s.resolve(relPath)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open export file: %w", err)
	}
	return file, nil
}

// Copy streams a stored file into w.
func (s *LocalStorage) Copy(relPath string, w io.Writer) (int64, error) {
	file, err := s.Open(relPath)
	if err != nil {
		return 0, err
	}
	defer file.Close() //nolint:errcheck
	n, err := io.Copy(w, file)
	if err != nil {
		return n, fmt.Errorf("stream export file: %w", err)
	}
	return n, nil
}

// Delete removes a stored file if present.
func (s *LocalStorage) Delete(relPath string) error {
	path, err := s.resolve(relPath)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete export file: %w", err)
	}
	return nil
}

// CleanupOlderThan removes files older than ttl and returns their relative paths.
func (s *LocalStorage) CleanupOlderThan(ttl time.Duration) ([]string, error) {
	cutoff := time.Now().Add(-ttl)
	deleted := make([]string, 0)
	err := filepath.WalkDir(s.baseDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.ModTime().After(cutoff) {
			return nil
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		rel, err := filepath.Rel(s.baseDir, path)
		if err != nil {
			rel = path
		}
		deleted = append(deleted, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cleanup exports: %w", err)
	}
	return deleted, nil
}

// Path exposes the absolute location of a stored file.
func (s *LocalStorage) Path(relPath string) string {
	path, err := s.resolve(relPath)
	if err != nil {
		return ""
	}
	return path
}

func (s *LocalStorage) resolve(relPath string) (string, error) {
	if filepath.IsAbs(relPath) {
		return "", fmt.Errorf("%w: %s", ErrOutsideBase, relPath)
	}
	joined := filepath.Join(s.baseDir, relPath)
	if joined != s.baseDir && !strings.HasPrefix(joined, s.baseDir+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideBase, relPath)
	}
	return joined, nil
}
