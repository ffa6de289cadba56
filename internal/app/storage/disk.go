package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// diskStore keeps uploads as plain files in one flat directory.
type diskStore struct {
	dir string
}

// newDiskStore ensures the upload directory exists and returns the store.
func newDiskStore(dir string) (*diskStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("upload directory is not configured")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %q: %w", dir, err)
	}

	return &diskStore{dir: dir}, nil
}

// resolve maps a stored name onto a path inside the upload directory. Names
// carrying path separators or traversal elements are rejected so a crafted
// name can never escape the directory.
func (d *diskStore) resolve(storedName string) (string, error) {
	if storedName == "" ||
		storedName != filepath.Base(storedName) ||
		strings.ContainsAny(storedName, `/\`) {
		return "", ErrObjectNotFound
	}

	return filepath.Join(d.dir, storedName), nil
}

func (d *diskStore) Save(ctx context.Context, storedName string, contentType string, size int64, content io.Reader) error {
	path, err := d.resolve(storedName)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create upload file: %w", err)
	}

	if _, err := io.Copy(f, content); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("failed to write upload file: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to finalize upload file: %w", err)
	}

	return nil
}

func (d *diskStore) Open(ctx context.Context, storedName string) (io.ReadCloser, int64, error) {
	path, err := d.resolve(storedName)
	if err != nil {
		return nil, 0, err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, ErrObjectNotFound
		}
		return nil, 0, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}

	return f, info.Size(), nil
}

func (d *diskStore) Delete(ctx context.Context, storedName string) error {
	path, err := d.resolve(storedName)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return ErrObjectNotFound
		}
		return err
	}

	return nil
}

func (d *diskStore) Kind() string { return "disk" }
