package storage

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptdeck/promptdeck/internal/errors"
)

// backendUnderTest builds each backend implementation rooted in a temp dir.
var backendUnderTest = []struct {
	name string
	open func(t *testing.T) Backend
}{
	{
		name: "filesystem",
		open: func(t *testing.T) Backend {
			b, err := NewFileBackend(filepath.Join(t.TempDir(), "documents"))
			require.NoError(t, err)
			return b
		},
	},
	{
		name: "sqlite",
		open: func(t *testing.T) Backend {
			b, err := NewSQLiteBackend(filepath.Join(t.TempDir(), "test.db"))
			require.NoError(t, err)
			return b
		},
	},
	{
		name: "badger",
		open: func(t *testing.T) Backend {
			b, err := NewBadgerBackend(filepath.Join(t.TempDir(), "kv"), slog.New(slog.DiscardHandler))
			require.NoError(t, err)
			return b
		},
	},
}

func TestBackend_RoundTrip(t *testing.T) {
	for _, tc := range backendUnderTest {
		t.Run(tc.name, func(t *testing.T) {
			b := tc.open(t)
			defer b.Close()
			ctx := context.Background()

			_, ok, err := b.Get(ctx, "channels")
			require.NoError(t, err)
			assert.False(t, ok, "missing key reports absent, not error")

			require.NoError(t, b.Set(ctx, "channels", []byte(`[{"id":"ch-1"}]`)))

			got, ok, err := b.Get(ctx, "channels")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, []byte(`[{"id":"ch-1"}]`), got)
		})
	}
}

func TestBackend_Overwrite(t *testing.T) {
	for _, tc := range backendUnderTest {
		t.Run(tc.name, func(t *testing.T) {
			b := tc.open(t)
			defer b.Close()
			ctx := context.Background()

			require.NoError(t, b.Set(ctx, "theme", []byte("dark")))
			require.NoError(t, b.Set(ctx, "theme", []byte("light")))

			got, ok, err := b.Get(ctx, "theme")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, []byte("light"), got)
		})
	}
}

func TestBackend_UsageGrowsWithWrites(t *testing.T) {
	for _, tc := range backendUnderTest {
		t.Run(tc.name, func(t *testing.T) {
			b := tc.open(t)
			defer b.Close()
			ctx := context.Background()

			require.NoError(t, b.Set(ctx, "tags", make([]byte, 4096)))

			used, _, err := b.Usage(ctx)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, used, int64(4096))
		})
	}
}

func TestBackend_QuotaEnforcement(t *testing.T) {
	ctx := context.Background()

	t.Run("sqlite rejects oversized writes", func(t *testing.T) {
		b, err := NewSQLiteBackend(filepath.Join(t.TempDir(), "test.db"))
		require.NoError(t, err)
		defer b.Close()

		err = b.Set(ctx, "channels", make([]byte, DefaultQuota+1))
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrQuotaExceeded))

		_, ok, err := b.Get(ctx, "channels")
		require.NoError(t, err)
		assert.False(t, ok, "rejected write leaves nothing behind")
	})

	t.Run("badger rejects oversized writes", func(t *testing.T) {
		b, err := NewBadgerBackend(filepath.Join(t.TempDir(), "kv"), slog.New(slog.DiscardHandler))
		require.NoError(t, err)
		defer b.Close()

		err = b.Set(ctx, "channels", make([]byte, DefaultQuota+1))
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrQuotaExceeded))
	})

	t.Run("filesystem is unbounded", func(t *testing.T) {
		b, err := NewFileBackend(filepath.Join(t.TempDir(), "documents"))
		require.NoError(t, err)
		defer b.Close()

		_, quota, err := b.Usage(ctx)
		require.NoError(t, err)
		assert.Zero(t, quota)
	})
}

func TestBadgerBackend_QuotaSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "kv")
	logger := slog.New(slog.DiscardHandler)

	b, err := NewBadgerBackend(dir, logger)
	require.NoError(t, err)
	require.NoError(t, b.Set(ctx, "channels", make([]byte, 1024)))
	require.NoError(t, b.Close())

	// Reopen: the usage accounting is rebuilt from the store.
	b2, err := NewBadgerBackend(dir, logger)
	require.NoError(t, err)
	defer b2.Close()

	used, quota, err := b2.Usage(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, used, int64(1024))
	assert.Equal(t, int64(DefaultQuota), quota)
}

func TestSelect(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	t.Run("auto prefers the filesystem backend", func(t *testing.T) {
		b, err := Select(KindAuto, t.TempDir(), logger)
		require.NoError(t, err)
		defer b.Close()
		assert.Equal(t, "filesystem", b.Name())
	})

	t.Run("forced kinds are honored", func(t *testing.T) {
		for _, kind := range []Kind{KindFilesystem, KindSQLite, KindBadger} {
			b, err := Select(kind, t.TempDir(), logger)
			require.NoError(t, err)
			assert.Equal(t, string(kind), b.Name())
			require.NoError(t, b.Close())
		}
	})

	t.Run("unknown kind is rejected", func(t *testing.T) {
		_, err := Select(Kind("papyrus"), t.TempDir(), logger)
		require.Error(t, err)
	})
}
