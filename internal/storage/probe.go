package storage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Kind selects a backend implementation explicitly, bypassing the probe.
type Kind string

// Backend kinds.
const (
	KindAuto       Kind = ""
	KindFilesystem Kind = "filesystem"
	KindSQLite     Kind = "sqlite"
	KindBadger     Kind = "badger"
)

// Select chooses the storage backend for this process. With KindAuto it
// probes capabilities in preference order:
//
//  1. filesystem documents, if the data directory is writable
//  2. the structured SQLite store
//  3. the flat Badger store, as the fallback of last resort
//
// A SQLite initialization failure is logged and silently falls through to
// Badger. The choice is made once; backends are never mixed at runtime.
func Select(kind Kind, dataDir string, logger *slog.Logger) (Backend, error) {
	switch kind {
	case KindFilesystem:
		return NewFileBackend(filepath.Join(dataDir, "documents"))
	case KindSQLite:
		return NewSQLiteBackend(filepath.Join(dataDir, "promptdeck.db"))
	case KindBadger:
		return NewBadgerBackend(filepath.Join(dataDir, "kv"), logger)
	case KindAuto:
		// Probed below.
	default:
		return nil, fmt.Errorf("unknown storage backend %q", kind)
	}

	if dirWritable(dataDir) {
		b, err := NewFileBackend(filepath.Join(dataDir, "documents"))
		if err == nil {
			logger.Info("selected storage backend", "backend", b.Name(), "dir", dataDir)
			return b, nil
		}
		logger.Warn("filesystem backend unavailable", "error", err)
	}

	sb, err := NewSQLiteBackend(filepath.Join(dataDir, "promptdeck.db"))
	if err == nil {
		logger.Info("selected storage backend", "backend", sb.Name())
		return sb, nil
	}
	logger.Warn("sqlite backend failed to initialize, falling back", "error", err)

	bb, err := NewBadgerBackend(filepath.Join(dataDir, "kv"), logger)
	if err != nil {
		return nil, fmt.Errorf("no storage backend available: %w", err)
	}
	logger.Info("selected storage backend", "backend", bb.Name())
	return bb, nil
}

// dirWritable probes whether we can create and remove a file under dir.
func dirWritable(dir string) bool {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return false
	}
	probe := filepath.Join(dir, ".write-probe")
	if err := os.WriteFile(probe, []byte("ok"), 0644); err != nil {
		return false
	}
	os.Remove(probe)
	return true
}
