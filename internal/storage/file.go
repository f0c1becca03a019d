package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/peterbourgon/diskv/v3"

	"github.com/promptdeck/promptdeck/internal/errors"
)

// FileBackend stores each key as its own file under a fixed data directory.
// It is the preferred backend: no quota applies and documents survive as
// plain files the user can inspect or back up.
type FileBackend struct {
	d    *diskv.Diskv
	base string
}

// NewFileBackend creates the filesystem backend rooted at basePath,
// creating the directory if needed.
func NewFileBackend(basePath string) (*FileBackend, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	d := diskv.New(diskv.Options{
		BasePath:     basePath,
		CacheSizeMax: 1024 * 1024, // 1MB
	})
	return &FileBackend{d: d, base: basePath}, nil
}

// Name implements Backend.
func (b *FileBackend) Name() string { return "filesystem" }

// Get implements Backend.
func (b *FileBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if !b.d.Has(key) {
		return nil, false, nil
	}
	val, err := b.d.Read(key)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, errors.StorageIOf("read document %q", key).WithCause(err)
	}
	return val, true, nil
}

// Set implements Backend.
func (b *FileBackend) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := b.d.Write(key, value); err != nil {
		return errors.StorageIOf("write document %q", key).WithCause(err)
	}
	return nil
}

// Usage implements Backend. The filesystem backend is unbounded, so the
// quota is reported as zero.
func (b *FileBackend) Usage(ctx context.Context) (int64, int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	var used int64
	err := filepath.WalkDir(b.base, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		used += info.Size()
		return nil
	})
	if err != nil {
		return 0, 0, errors.StorageIO("measure data directory").WithCause(err)
	}
	return used, 0, nil
}

// Close implements Backend. Plain files need no teardown.
func (b *FileBackend) Close() error { return nil }
