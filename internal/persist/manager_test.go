package persist

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptdeck/promptdeck/internal/domain"
	"github.com/promptdeck/promptdeck/internal/errors"
	"github.com/promptdeck/promptdeck/internal/sched"
)

// memBackend is an in-memory storage backend that records every write.
type memBackend struct {
	mu     sync.Mutex
	data   map[string][]byte
	writes map[string]int
	quota  int64
	// failKey makes writes to one key fail with failErr.
	failKey string
	failErr error
}

func newMemBackend() *memBackend {
	return &memBackend{
		data:   make(map[string][]byte),
		writes: make(map[string]int),
	}
}

func (b *memBackend) Name() string { return "memory" }

func (b *memBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.data[key]
	return v, ok, nil
}

func (b *memBackend) Set(_ context.Context, key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if key == b.failKey && b.failErr != nil {
		return b.failErr
	}
	b.data[key] = value
	b.writes[key]++
	return nil
}

func (b *memBackend) Usage(context.Context) (int64, int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var used int64
	for _, v := range b.data {
		used += int64(len(v))
	}
	return used, b.quota, nil
}

func (b *memBackend) Close() error { return nil }

func (b *memBackend) writeCount(key string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.writes[key]
}

// recordingNotifier captures notifications by level.
type recordingNotifier struct {
	infos, warns, errs []string
}

func (n *recordingNotifier) Info(msg string)  { n.infos = append(n.infos, msg) }
func (n *recordingNotifier) Warn(msg string)  { n.warns = append(n.warns, msg) }
func (n *recordingNotifier) Error(msg string) { n.errs = append(n.errs, msg) }

func newTestManager(t *testing.T, backend *memBackend) (*Manager, *domain.AppState, *sched.FakeClock, *recordingNotifier) {
	t.Helper()
	state := domain.NewAppState()
	clock := sched.NewFakeClock()
	notifier := &recordingNotifier{}
	m := NewManager(Options{
		Backend:  backend,
		State:    state,
		Notifier: notifier,
		Clock:    clock,
	})
	return m, state, clock, notifier
}

func TestManager_SaveWritesFiveDocuments(t *testing.T) {
	backend := newMemBackend()
	m, state, _, _ := newTestManager(t, backend)

	state.Channels = []*domain.Channel{{ID: "ch-1", Name: "one", CreatedAt: 1}}
	state.Tags = []string{"portrait"}

	require.NoError(t, m.SaveNow(context.Background()))

	for _, key := range []string{DocChannels, DocTags, DocTheme, DocLanguage, DocCustomTags} {
		assert.Equal(t, 1, backend.writeCount(key), "document %q", key)
	}
	assert.Equal(t, []byte(domain.DefaultTheme), backend.data[DocTheme], "theme is a scalar string, not JSON")
}

func TestManager_ThrottleCoalescesRapidSaves(t *testing.T) {
	backend := newMemBackend()
	m, state, clock, _ := newTestManager(t, backend)

	// A burst of edits inside the window: each one mutates and saves.
	for i := range 10 {
		state.Channels = append(state.Channels, &domain.Channel{
			ID: "ch", Name: "edit", CreatedAt: int64(i),
		})
		m.Save()
		clock.Advance(50 * time.Millisecond)
	}
	assert.Equal(t, 0, backend.writeCount(DocChannels), "nothing written inside the window")

	clock.Advance(time.Second)

	assert.Equal(t, 1, backend.writeCount(DocChannels), "exactly one physical write per document")
	assert.Equal(t, 1, backend.writeCount(DocTags))

	// The write reflects the state at the time the window closed.
	var channels []*domain.Channel
	require.NoError(t, json.Unmarshal(backend.data[DocChannels], &channels))
	assert.Len(t, channels, 10)
}

func TestManager_EditsRaceNoThrottleGoroutineReads(t *testing.T) {
	// Real clock, tiny window: the timer goroutine fires mid-edit-stream.
	// Save captures the serialization on this goroutine, so the timer only
	// ever writes bytes; run under -race this would flag any state read
	// from the timer.
	backend := newMemBackend()
	state := domain.NewAppState()
	m := NewManager(Options{
		Backend:        backend,
		State:          state,
		ThrottleWindow: 2 * time.Millisecond,
	})

	const edits = 200
	for i := range edits {
		state.Channels = append(state.Channels, &domain.Channel{
			ID:        fmt.Sprintf("ch-%d", i),
			Name:      "edit",
			CreatedAt: int64(i),
		})
		m.Save()
		if i%25 == 0 {
			time.Sleep(3 * time.Millisecond)
		}
	}
	m.Flush()

	data, ok, err := backend.Get(context.Background(), DocChannels)
	require.NoError(t, err)
	require.True(t, ok)
	var channels []*domain.Channel
	require.NoError(t, json.Unmarshal(data, &channels))
	assert.Len(t, channels, edits, "final write reflects the last edit")
}

func TestManager_StatusTransitions(t *testing.T) {
	t.Run("successful save signals saving then saved", func(t *testing.T) {
		backend := newMemBackend()
		var statuses []Status
		m := NewManager(Options{
			Backend: backend,
			State:   domain.NewAppState(),
			Status:  func(s Status) { statuses = append(statuses, s) },
			Clock:   sched.NewFakeClock(),
		})
		require.NoError(t, m.SaveNow(context.Background()))
		assert.Equal(t, []Status{StatusSaving, StatusSaved}, statuses)
	})

	t.Run("failed save signals error", func(t *testing.T) {
		backend := newMemBackend()
		backend.failKey = DocTags
		backend.failErr = errors.StorageIO("disk gone")
		var statuses []Status
		m := NewManager(Options{
			Backend: backend,
			State:   domain.NewAppState(),
			Status:  func(s Status) { statuses = append(statuses, s) },
			Clock:   sched.NewFakeClock(),
		})
		require.Error(t, m.SaveNow(context.Background()))
		assert.Equal(t, []Status{StatusSaving, StatusError}, statuses)
	})
}

func TestManager_QuotaExceededIsDistinct(t *testing.T) {
	backend := newMemBackend()
	backend.failKey = DocChannels
	backend.failErr = errors.QuotaExceeded("storage quota exceeded")
	m, _, _, notifier := newTestManager(t, backend)

	err := m.SaveNow(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrQuotaExceeded))
	require.Len(t, notifier.errs, 1)
	assert.Contains(t, notifier.errs[0], "Export", "quota message carries export-and-clear guidance")
}

func TestManager_GenericFailureMessage(t *testing.T) {
	backend := newMemBackend()
	backend.failKey = DocChannels
	backend.failErr = errors.StorageIO("io failure")
	m, _, _, notifier := newTestManager(t, backend)

	require.Error(t, m.SaveNow(context.Background()))
	require.Len(t, notifier.errs, 1)
	assert.Contains(t, notifier.errs[0], "retried", "generic message carries retry-next-mutation guidance")
}

func TestManager_QuotaWarning(t *testing.T) {
	t.Run("warns between 80 and 95 percent", func(t *testing.T) {
		backend := newMemBackend()
		backend.quota = 1000
		backend.data["ballast"] = make([]byte, 850)
		m, _, _, notifier := newTestManager(t, backend)

		require.NoError(t, m.SaveNow(context.Background()))
		assert.NotEmpty(t, notifier.warns)
	})

	t.Run("silent on an unbounded backend", func(t *testing.T) {
		backend := newMemBackend() // quota 0
		backend.data["ballast"] = make([]byte, 1<<20)
		m, _, _, notifier := newTestManager(t, backend)

		require.NoError(t, m.SaveNow(context.Background()))
		assert.Empty(t, notifier.warns)
		assert.Empty(t, notifier.errs)
	})
}

func TestManager_LoadIsolatesCorruption(t *testing.T) {
	backend := newMemBackend()
	m, state, _, _ := newTestManager(t, backend)

	state.Channels = []*domain.Channel{{ID: "ch-1", Name: "keep", CreatedAt: 1}}
	state.Tags = []string{"portrait", "sketch"}
	require.NoError(t, m.SaveNow(context.Background()))

	// Corrupt only the channels document.
	backend.data[DocChannels] = []byte("{not json")

	fresh := domain.NewAppState()
	notifier := &recordingNotifier{}
	m2 := NewManager(Options{
		Backend:  backend,
		State:    fresh,
		Notifier: notifier,
		Clock:    sched.NewFakeClock(),
	})
	require.NoError(t, m2.Load(context.Background()))

	assert.Empty(t, fresh.Channels, "corrupt channels reset to empty")
	assert.Equal(t, []string{"portrait", "sketch"}, fresh.Tags, "tags unaffected by channels corruption")
	assert.NotEmpty(t, notifier.errs, "user is told about the reset")
}

func TestManager_LoadCanonicalizesChannels(t *testing.T) {
	backend := newMemBackend()
	backend.data[DocChannels] = []byte(
		`[{"id":"ch-1","name":"stale","promptVariants":["alt"],"activeVariantIndex":7,"createdAt":1}]`,
	)

	m, state, _, _ := newTestManager(t, backend)
	require.NoError(t, m.Load(context.Background()))

	require.Len(t, state.Channels, 1)
	ch := state.Channels[0]
	assert.Zero(t, ch.ActiveVariantIndex, "out-of-range persisted index is clamped")
	assert.NotNil(t, ch.Tags, "absent slice fields load as empty, never nil")
	assert.NotNil(t, ch.Images)
}

func TestManager_LoadRoundTrip(t *testing.T) {
	backend := newMemBackend()
	m, state, _, _ := newTestManager(t, backend)

	order := 3
	state.Channels = []*domain.Channel{{
		ID:        "ch-1",
		Name:      "landscape study",
		Prompt:    "rolling hills",
		Tags:      []string{"landscape"},
		Images:    []domain.Image{{URL: "data:image/jpeg;base64,AAAA", BlurHash: "LEHV6"}},
		Starred:   true,
		Order:     &order,
		CreatedAt: 42,
	}}
	state.Tags = []string{"landscape"}
	state.CustomTags = []domain.DanbooruTag{{Name: "my_style", Category: domain.CategoryArtist}}
	state.Theme = "light"
	state.Language = "de"
	require.NoError(t, m.SaveNow(context.Background()))

	fresh := domain.NewAppState()
	m2 := NewManager(Options{Backend: backend, State: fresh, Clock: sched.NewFakeClock()})
	require.NoError(t, m2.Load(context.Background()))

	assert.Equal(t, state.Channels, fresh.Channels)
	assert.Equal(t, state.Tags, fresh.Tags)
	assert.Equal(t, state.CustomTags, fresh.CustomTags)
	assert.Equal(t, "light", fresh.Theme)
	assert.Equal(t, "de", fresh.Language)
}
