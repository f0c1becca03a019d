// Package persist publishes the in-memory AppState to a storage backend as a
// set of independently keyed documents, behind a trailing-edge throttle that
// bounds write amplification from rapid interactive edits.
//
// Serialization always happens on the goroutine that calls Save, which is the
// goroutine that owns the state; the throttle timer only ever sees the
// captured bytes. State is therefore never read concurrently with mutation.
//
// The save path writes the five documents sequentially with no transaction or
// rollback: a failure partway leaves some documents updated and others stale.
// This mirrors the per-key independence of the backend contract and is an
// accepted limitation, not a bug.
package persist

import (
	"context"
	"encoding/json/v2"
	"log/slog"
	"sync"
	"time"

	"github.com/promptdeck/promptdeck/internal/domain"
	"github.com/promptdeck/promptdeck/internal/errors"
	"github.com/promptdeck/promptdeck/internal/sched"
	"github.com/promptdeck/promptdeck/internal/storage"
)

// Document keys. Each document is serialized and written independently.
const (
	DocChannels   = "channels"
	DocTags       = "tags"
	DocTheme      = "theme"
	DocLanguage   = "language"
	DocCustomTags = "custom-tags"
)

// DefaultThrottleWindow is the coalescing window for Save calls.
const DefaultThrottleWindow = 1000 * time.Millisecond

// Quota thresholds on the bounded backends. Usage above warnThreshold (but
// below critThreshold) produces a warning notification; above critThreshold
// the user is told to export and clear.
const (
	warnThreshold = 0.80
	critThreshold = 0.95
)

// Status is the tri-state save indicator surfaced to the UI.
type Status int

// Save states.
const (
	StatusSaving Status = iota
	StatusSaved
	StatusError
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusSaving:
		return "saving"
	case StatusSaved:
		return "saved"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// StatusFunc receives save status transitions. Called synchronously from the
// save path.
type StatusFunc func(Status)

// Notifier delivers user-facing notifications. The UI layer implements this;
// the core never renders anything itself.
type Notifier interface {
	Info(msg string)
	Warn(msg string)
	Error(msg string)
}

// NoopNotifier is a no-op implementation of Notifier for testing.
type NoopNotifier struct{}

// Info implements Notifier as a no-op.
func (NoopNotifier) Info(string) {}

// Warn implements Notifier as a no-op.
func (NoopNotifier) Warn(string) {}

// Error implements Notifier as a no-op.
func (NoopNotifier) Error(string) {}

// document is one serialized key/value pair ready to write.
type document struct {
	key  string
	data []byte
}

// Manager serializes the working set into named documents and writes them
// through the storage backend.
type Manager struct {
	backend  storage.Backend
	state    *domain.AppState
	logger   *slog.Logger
	status   StatusFunc
	notifier Notifier
	throttle *sched.Throttle

	// pending holds the most recently captured serialization, waiting for
	// the throttle window to close. Guarded by mu because the throttle
	// timer drains it from its own goroutine.
	mu      sync.Mutex
	pending []document
}

// Options configures a Manager. Backend and State are required; everything
// else has a sensible default.
type Options struct {
	Backend storage.Backend
	State   *domain.AppState
	Logger  *slog.Logger
	// Status receives saving/saved/error transitions. Optional.
	Status StatusFunc
	// Notifier receives user-facing warnings. Optional.
	Notifier Notifier
	// Clock drives the throttle. Tests inject a sched.FakeClock.
	Clock sched.Clock
	// ThrottleWindow overrides DefaultThrottleWindow when positive.
	ThrottleWindow time.Duration
}

// NewManager creates a persistence manager for the given state and backend.
func NewManager(opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	status := opts.Status
	if status == nil {
		status = func(Status) {}
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	window := opts.ThrottleWindow
	if window <= 0 {
		window = DefaultThrottleWindow
	}

	m := &Manager{
		backend:  opts.Backend,
		state:    opts.State,
		logger:   logger,
		status:   status,
		notifier: notifier,
	}
	m.throttle = sched.NewThrottle(opts.Clock, window, m.savePending)
	return m
}

// Save captures a serialization of the working set and requests a
// persistence pass. Calls within the throttle window collapse into a single
// physical write of the most recently captured snapshot; since every
// mutation calls Save, that snapshot reflects the state at the time the
// window closes. Errors are surfaced via the status signal and notifier,
// never returned: the next user mutation triggers the next attempt.
//
// Save must be called from the goroutine that owns the state.
func (m *Manager) Save() {
	docs, err := m.serialize()
	if err != nil {
		m.status(StatusError)
		m.logger.Error("save failed", "error", err)
		m.notifier.Error("Saving failed. Your latest change will be retried on the next edit.")
		return
	}
	m.mu.Lock()
	m.pending = docs
	m.mu.Unlock()
	m.throttle.Call()
}

// savePending writes the captured snapshot, if any. Runs on the throttle
// timer goroutine, which never touches the live state.
func (m *Manager) savePending() {
	m.mu.Lock()
	docs := m.pending
	m.pending = nil
	m.mu.Unlock()
	if docs == nil {
		return
	}
	//nolint:errcheck // Write errors are surfaced via status and notifier.
	m.write(context.Background(), docs)
}

// Flush forces any pending throttled save to run immediately. Used on
// shutdown so an in-flight edit is not lost to the window.
func (m *Manager) Flush() {
	m.throttle.Flush()
}

// SaveNow serializes the working set and writes all five documents in
// sequence, bypassing the throttle. Like Save, it must be called from the
// goroutine that owns the state.
func (m *Manager) SaveNow(ctx context.Context) error {
	docs, err := m.serialize()
	if err != nil {
		m.status(StatusError)
		m.logger.Error("save failed", "error", err)
		m.notifier.Error("Saving failed. Your latest change will be retried on the next edit.")
		return err
	}
	return m.write(ctx, docs)
}

// serialize renders the five documents from the working set. Channels, tags,
// and the custom vocabulary are JSON-encoded; theme and language are scalar
// strings.
func (m *Manager) serialize() ([]document, error) {
	specs := []struct {
		key   string
		value func() ([]byte, error)
	}{
		{DocChannels, func() ([]byte, error) { return json.Marshal(m.state.Channels) }},
		{DocTags, func() ([]byte, error) { return json.Marshal(m.state.Tags) }},
		{DocTheme, func() ([]byte, error) { return []byte(m.state.Theme), nil }},
		{DocLanguage, func() ([]byte, error) { return []byte(m.state.Language), nil }},
		{DocCustomTags, func() ([]byte, error) { return json.Marshal(m.state.CustomTags) }},
	}

	docs := make([]document, 0, len(specs))
	for _, spec := range specs {
		data, err := spec.value()
		if err != nil {
			return nil, errors.StorageIOf("serialize document %q", spec.key).WithCause(err)
		}
		docs = append(docs, document{key: spec.key, data: data})
	}
	return docs, nil
}

// write pushes serialized documents through the backend, driving the status
// signal and failure notifications.
func (m *Manager) write(ctx context.Context, docs []document) error {
	m.status(StatusSaving)

	for _, doc := range docs {
		if err := m.backend.Set(ctx, doc.key, doc.data); err != nil {
			m.status(StatusError)
			if errors.Is(err, errors.ErrQuotaExceeded) {
				m.logger.Error("save failed: storage quota exceeded", "error", err)
				m.notifier.Error("Storage is full. Export your channels, then delete old ones to free space.")
			} else {
				m.logger.Error("save failed", "error", err)
				m.notifier.Error("Saving failed. Your latest change will be retried on the next edit.")
			}
			return err
		}
	}

	m.status(StatusSaved)
	m.checkQuota(ctx)
	return nil
}

// checkQuota warns when a bounded backend is nearly full. The filesystem
// backend reports a zero quota and is exempt.
func (m *Manager) checkQuota(ctx context.Context) {
	used, quota, err := m.backend.Usage(ctx)
	if err != nil {
		m.logger.Warn("failed to measure storage usage", "error", err)
		return
	}
	if quota <= 0 {
		return
	}

	ratio := float64(used) / float64(quota)
	switch {
	case ratio >= critThreshold:
		m.logger.Warn("storage critically full", "used", used, "quota", quota)
		m.notifier.Error("Storage is almost full. Export your channels and clear old data now.")
	case ratio > warnThreshold:
		m.logger.Warn("storage nearly full", "used", used, "quota", quota)
		m.notifier.Warn("Storage is over 80% full. Consider exporting and removing unused channels.")
	}
}

// Load reads all five documents into the working set. Corruption is isolated
// per document: a document that fails to parse is reset to its zero value and
// reported, and the remaining documents load normally.
func (m *Manager) Load(ctx context.Context) error {
	if data, ok, err := m.backend.Get(ctx, DocChannels); err != nil {
		return err
	} else if ok {
		var channels []*domain.Channel
		if err := json.Unmarshal(data, &channels); err != nil {
			m.logger.Error("channels document is corrupt, resetting", "error", err)
			m.notifier.Error("Saved channels could not be read and were reset.")
			m.state.Channels = nil
		} else {
			for _, ch := range channels {
				ch.Canonicalize()
			}
			m.state.Channels = channels
		}
	}

	if data, ok, err := m.backend.Get(ctx, DocTags); err != nil {
		return err
	} else if ok {
		var tags []string
		if err := json.Unmarshal(data, &tags); err != nil {
			m.logger.Error("tags document is corrupt, resetting", "error", err)
			m.notifier.Error("Saved tags could not be read and were reset.")
			m.state.Tags = nil
		} else {
			m.state.Tags = tags
		}
	}

	if data, ok, err := m.backend.Get(ctx, DocTheme); err != nil {
		return err
	} else if ok && len(data) > 0 {
		m.state.Theme = string(data)
	}

	if data, ok, err := m.backend.Get(ctx, DocLanguage); err != nil {
		return err
	} else if ok && len(data) > 0 {
		m.state.Language = string(data)
	}

	if data, ok, err := m.backend.Get(ctx, DocCustomTags); err != nil {
		return err
	} else if ok {
		var custom []domain.DanbooruTag
		if err := json.Unmarshal(data, &custom); err != nil {
			m.logger.Error("custom tags document is corrupt, resetting", "error", err)
			m.notifier.Error("Saved custom tags could not be read and were reset.")
			m.state.CustomTags = nil
		} else {
			m.state.CustomTags = custom
		}
	}

	m.logger.Info("state loaded",
		"backend", m.backend.Name(),
		"channels", len(m.state.Channels),
		"tags", len(m.state.Tags),
		"custom_tags", len(m.state.CustomTags),
	)
	return nil
}
