package search

import (
	"context"
	"time"

	"github.com/promptdeck/promptdeck/internal/domain"
	"github.com/promptdeck/promptdeck/internal/sched"
)

// DebounceWindow is the quiet period applied to keystroke-driven queries so
// the index is not flooded with a request per keypress.
const DebounceWindow = 150 * time.Millisecond

// searchTimeout bounds a single ranked lookup.
const searchTimeout = 5 * time.Second

// Autocompleter debounces keystroke queries against the index and delivers
// ranked results to a callback. Only the last query of a burst runs.
type Autocompleter struct {
	index *Index
	deb   *sched.Debouncer
}

// NewAutocompleter wraps an index with the standard keystroke debounce.
// A nil clock defaults to the real clock.
func NewAutocompleter(index *Index, clock sched.Clock) *Autocompleter {
	return &Autocompleter{
		index: index,
		deb:   sched.NewDebouncer(clock, DebounceWindow),
	}
}

// Query schedules a ranked lookup after the debounce window; earlier
// not-yet-run queries are dropped. The callback receives the results on the
// debounce goroutine and is responsible for hopping back to the UI.
func (a *Autocompleter) Query(query string, limit int, fn func([]domain.DanbooruTag)) {
	a.deb.Call(func() {
		ctx, cancel := context.WithTimeout(context.Background(), searchTimeout)
		defer cancel()
		results, err := a.index.Search(ctx, query, limit)
		if err != nil {
			a.index.logger.Warn("autocomplete search failed", "query", query, "error", err)
			return
		}
		fn(results)
	})
}

// Cancel drops any pending query.
func (a *Autocompleter) Cancel() {
	a.deb.Cancel()
}
