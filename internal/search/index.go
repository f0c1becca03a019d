package search

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/promptdeck/promptdeck/internal/domain"
)

// reqKind tags a request sent to the worker.
type reqKind int

// Worker request variants.
const (
	reqInit reqKind = iota
	reqUpdate
	reqSearch
)

// request is the typed task sent to the worker goroutine. Init and Update
// carry a corpus; Search carries a query and a reply channel.
type request struct {
	kind  reqKind
	tags  []domain.DanbooruTag
	query string
	limit int
	reply chan []domain.DanbooruTag
}

// readyTimeout bounds the wait for the worker's ready handshake before the
// index gives up and serves searches synchronously.
const readyTimeout = 2 * time.Second

// Index ranks queries against the tag corpus. Work is dispatched to a
// dedicated worker goroutine that owns its own copy of the corpus; when the
// worker is unavailable the identical ranking runs synchronously on the
// calling goroutine behind the same interface. Results never mutate shared
// state; callers apply them on their own goroutine.
type Index struct {
	logger *slog.Logger

	// reqs is the worker task queue; nil means the synchronous fallback.
	reqs chan request

	// Fallback-path corpus, replaced wholesale by Init/Update.
	mu     sync.RWMutex
	corpus []domain.DanbooruTag
}

// Options configures an Index.
type Options struct {
	Logger *slog.Logger
	// DisableWorker forces the synchronous fallback path.
	DisableWorker bool
}

// New creates an index and starts its worker. If the worker does not come up
// the index silently degrades to synchronous ranking; the caller cannot tell
// the difference except by latency.
func New(opts Options) *Index {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	idx := &Index{logger: logger}

	if opts.DisableWorker {
		logger.Debug("tag search worker disabled, using synchronous ranking")
		return idx
	}

	reqs := make(chan request, 16)
	ready := make(chan struct{})
	go worker(reqs, ready)

	select {
	case <-ready:
		idx.reqs = reqs
		logger.Debug("tag search worker started")
	case <-time.After(readyTimeout):
		close(reqs)
		logger.Warn("tag search worker did not become ready, using synchronous ranking")
	}
	return idx
}

// worker owns a private corpus copy and serves ranking requests until its
// queue closes.
func worker(reqs <-chan request, ready chan<- struct{}) {
	var corpus []domain.DanbooruTag
	close(ready)
	for req := range reqs {
		switch req.kind {
		case reqInit, reqUpdate:
			corpus = req.tags
		case reqSearch:
			req.reply <- Rank(corpus, req.query, req.limit)
		}
	}
}

// Init builds the index from the full corpus (built-in plus custom tags).
func (x *Index) Init(tags []domain.DanbooruTag) {
	x.replaceCorpus(reqInit, tags)
}

// Update rebuilds the index after the custom vocabulary changes. The corpus
// is replaced wholesale; there is no incremental diffing.
func (x *Index) Update(tags []domain.DanbooruTag) {
	x.replaceCorpus(reqUpdate, tags)
}

func (x *Index) replaceCorpus(kind reqKind, tags []domain.DanbooruTag) {
	// The worker keeps the slice past this call, so hand it a private copy.
	own := append([]domain.DanbooruTag(nil), tags...)
	if x.reqs != nil {
		x.reqs <- request{kind: kind, tags: own}
		return
	}
	x.mu.Lock()
	x.corpus = own
	x.mu.Unlock()
}

// Search returns up to limit ranked matches for the query. Queries shorter
// than MinQueryLen return no results.
func (x *Index) Search(ctx context.Context, query string, limit int) ([]domain.DanbooruTag, error) {
	if x.reqs == nil {
		x.mu.RLock()
		corpus := x.corpus
		x.mu.RUnlock()
		return Rank(corpus, query, limit), nil
	}

	reply := make(chan []domain.DanbooruTag, 1)
	select {
	case x.reqs <- request{kind: reqSearch, query: query, limit: limit, reply: reply}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case results := <-reply:
		return results, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops the worker goroutine. Searches after Close fall back to
// synchronous ranking over an empty corpus.
func (x *Index) Close() {
	if x.reqs != nil {
		close(x.reqs)
		x.reqs = nil
	}
}
