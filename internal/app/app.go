// Package app owns the in-memory working set and is the single mutation
// path: UI handlers call into it, it mutates AppState in place, pushes undo
// records for destructive edits, requests a throttled save, and asks the
// rendering layer to refresh.
//
// All mutation happens on one goroutine. Background work is limited to the
// tag-search worker and the save timer, and neither touches AppState: the
// worker holds its own corpus copy, the timer only writes bytes captured at
// Save time.
package app

import (
	"context"
	"log/slog"

	"github.com/promptdeck/promptdeck/internal/domain"
	"github.com/promptdeck/promptdeck/internal/gallery"
	"github.com/promptdeck/promptdeck/internal/ingest"
	"github.com/promptdeck/promptdeck/internal/persist"
	"github.com/promptdeck/promptdeck/internal/sched"
	"github.com/promptdeck/promptdeck/internal/search"
	"github.com/promptdeck/promptdeck/internal/undo"
	"github.com/promptdeck/promptdeck/internal/view"
)

// Renderer is the rendering layer's refresh surface. The core calls it after
// mutations; implementations re-read AppState and redraw.
type Renderer interface {
	RenderChannels()
	RenderGallery(channelID string)
}

// NoopRenderer is a no-op implementation of Renderer for testing.
type NoopRenderer struct{}

// RenderChannels implements Renderer as a no-op.
func (NoopRenderer) RenderChannels() {}

// RenderGallery implements Renderer as a no-op.
func (NoopRenderer) RenderGallery(string) {}

// App wires the working set to persistence, caching, undo, search, and
// ingest. Construct one per process with New.
type App struct {
	state    *domain.AppState
	persist  *persist.Manager
	cache    *view.Cache
	undo     *undo.Stack
	index    *search.Index
	ac       *search.Autocompleter
	pipeline *ingest.Pipeline
	logger   *slog.Logger
	notifier persist.Notifier
	renderer Renderer

	// Per-channel gallery windows, keyed by channel id.
	paginators     map[string]*gallery.Paginator
	galleryInitial int
	galleryBatch   int
}

// Options configures an App. State, Persist, Index, and Pipeline are
// required; the rest default to no-ops.
type Options struct {
	State    *domain.AppState
	Persist  *persist.Manager
	Index    *search.Index
	Pipeline *ingest.Pipeline
	Logger   *slog.Logger
	Notifier persist.Notifier
	Renderer Renderer
	// Clock drives the autocomplete debounce. Tests inject a fake.
	Clock sched.Clock
	// GalleryInitial and GalleryBatch size new gallery windows. Zero
	// means the gallery package defaults.
	GalleryInitial int
	GalleryBatch   int
}

// New creates the application aggregate and seeds the search index with the
// combined built-in and custom corpus.
func New(opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = persist.NoopNotifier{}
	}
	renderer := opts.Renderer
	if renderer == nil {
		renderer = NoopRenderer{}
	}

	a := &App{
		state:      opts.State,
		persist:    opts.Persist,
		cache:      view.NewCache(),
		undo:       undo.NewStack(),
		index:      opts.Index,
		ac:         search.NewAutocompleter(opts.Index, opts.Clock),
		pipeline:   opts.Pipeline,
		logger:     logger,
		notifier:   notifier,
		renderer:   renderer,
		paginators: make(map[string]*gallery.Paginator),

		galleryInitial: opts.GalleryInitial,
		galleryBatch:   opts.GalleryBatch,
	}
	a.index.Init(a.corpus())
	return a
}

// Load populates the working set from storage and brings the dependent
// components up to date: persisted custom tags are folded into the search
// corpus and any memoized view is dropped.
func (a *App) Load(ctx context.Context) error {
	if err := a.persist.Load(ctx); err != nil {
		return err
	}
	a.index.Update(a.corpus())
	a.cache.Invalidate()
	return nil
}

// State exposes the working set for read paths (render functions).
func (a *App) State() *domain.AppState {
	return a.state
}

// UndoDepth reports how many undoable actions are retained, for the UI's
// undo affordance.
func (a *App) UndoDepth() int {
	return a.undo.Len()
}

// VisibleChannels returns the sorted, filtered channel list for rendering,
// served from the view cache when inputs are unchanged.
func (a *App) VisibleChannels() []*domain.Channel {
	return a.cache.Channels(a.state.Channels, a.state.ActiveFilters, a.state.SearchQuery)
}

// SetFilters replaces the active filter tag set.
func (a *App) SetFilters(tags []string) {
	a.state.ActiveFilters = append([]string(nil), tags...)
	a.renderer.RenderChannels()
}

// SetSearchQuery updates the channel-list search query.
func (a *App) SetSearchQuery(query string) {
	a.state.SearchQuery = query
	a.renderer.RenderChannels()
}

// SetActiveChannel selects a channel and resets its gallery window.
func (a *App) SetActiveChannel(id string) {
	a.state.ActiveChannelID = id
	a.Paginator(id).Reset()
	a.renderer.RenderGallery(id)
}

// Paginator returns (creating on first use) the gallery window for a channel.
func (a *App) Paginator(channelID string) *gallery.Paginator {
	p, ok := a.paginators[channelID]
	if !ok {
		p = gallery.New(a.galleryInitial, a.galleryBatch)
		a.paginators[channelID] = p
	}
	return p
}

// Autocomplete schedules a debounced ranked tag lookup; fn receives the
// results off the UI goroutine.
func (a *App) Autocomplete(query string, limit int, fn func([]domain.DanbooruTag)) {
	a.ac.Query(query, limit, fn)
}

// SetTheme persists the theme selection.
func (a *App) SetTheme(theme string) {
	a.state.Theme = theme
	a.persist.Save()
}

// SetLanguage persists the language selection.
func (a *App) SetLanguage(lang string) {
	a.state.Language = lang
	a.persist.Save()
}

// Flush forces any pending throttled save, for orderly shutdown.
func (a *App) Flush() {
	a.persist.Flush()
}

// Close stops background work. An in-flight save that has not fired is
// flushed first.
func (a *App) Close() {
	a.Flush()
	a.index.Close()
}

// corpus builds the full search corpus: built-in vocabulary first, then the
// user's custom tags.
func (a *App) corpus() []domain.DanbooruTag {
	corpus := make([]domain.DanbooruTag, 0, len(search.BuiltinCorpus)+len(a.state.CustomTags))
	corpus = append(corpus, search.BuiltinCorpus...)
	corpus = append(corpus, a.state.CustomTags...)
	return corpus
}
