package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"github.com/promptdeck/promptdeck/internal/errors"
)

// BadgerBackend is the flat key-value fallback of last resort. Values are
// opaque strings pre-serialized by the caller; no structure is imposed.
type BadgerBackend struct {
	db    *badger.DB
	quota int64

	mu   sync.Mutex
	used map[string]int64 // per-key value sizes for quota accounting
}

// NewBadgerBackend opens a Badger database at path.
func NewBadgerBackend(path string, logger *slog.Logger) (*BadgerBackend, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}

	b := &BadgerBackend{db: db, quota: DefaultQuota, used: make(map[string]int64)}
	if err := b.scanSizes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("scan existing keys: %w", err)
	}

	if logger != nil {
		logger.Info("badger database opened", "path", path)
	}
	return b, nil
}

// scanSizes seeds the quota accounting from the keys already on disk.
func (b *BadgerBackend) scanSizes() error {
	return b.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			b.used[string(item.Key())] = item.ValueSize()
		}
		return nil
	})
}

// Name implements Backend.
func (b *BadgerBackend) Name() string { return "badger" }

// Get implements Backend.
func (b *BadgerBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.StorageIOf("read document %q", key).WithCause(err)
	}
	return value, true, nil
}

// Set implements Backend. Writes that would push total stored bytes past the
// quota are rejected with ErrQuotaExceeded.
func (b *BadgerBackend) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	var total int64
	for k, n := range b.used {
		if k != key {
			total += n
		}
	}
	if total+int64(len(value)) > b.quota {
		b.mu.Unlock()
		return errors.QuotaExceeded("storage quota exceeded").WithCause(fmt.Errorf("writing %d bytes to %q over %d byte quota", len(value), key, b.quota))
	}
	b.mu.Unlock()

	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return errors.StorageIOf("write document %q", key).WithCause(err)
	}

	b.mu.Lock()
	b.used[key] = int64(len(value))
	b.mu.Unlock()
	return nil
}

// Usage implements Backend.
func (b *BadgerBackend) Usage(ctx context.Context) (int64, int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	var total int64
	for _, n := range b.used {
		total += n
	}
	return total, b.quota, nil
}

// Close implements Backend.
func (b *BadgerBackend) Close() error {
	return b.db.Close()
}
