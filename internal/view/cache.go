// Package view derives the sorted, filtered channel list for rendering and
// memoizes the most recent result so unrelated re-renders are O(1).
package view

import (
	"sort"
	"strings"

	"github.com/promptdeck/promptdeck/internal/domain"
)

// cacheKey fingerprints the inputs of a derivation. Renders are sequential,
// never concurrent, so one most-recent slot is enough — this is not an LRU.
type cacheKey struct {
	count   int
	firstID string
	lastID  string
	filters string
	query   string
}

// Cache memoizes the last derived channel list.
type Cache struct {
	key    cacheKey
	result []*domain.Channel
	valid  bool
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

// Channels returns the channels matching the active filters and query, in
// display order. When the inputs are unchanged since the previous call, the
// previously computed slice is returned by reference with no recomputation.
func (c *Cache) Channels(channels []*domain.Channel, filters []string, query string) []*domain.Channel {
	key := cacheKey{
		count:   len(channels),
		filters: strings.Join(filters, ","),
		query:   query,
	}
	if len(channels) > 0 {
		key.firstID = channels[0].ID
		key.lastID = channels[len(channels)-1].ID
	}

	if c.valid && key == c.key {
		return c.result
	}

	c.key = key
	c.result = derive(channels, filters, query)
	c.valid = true
	return c.result
}

// Invalidate drops the memoized result. Mutations that change channel
// contents without changing the cache key (star toggle, manual reorder,
// rename) must call this or the next render would serve a stale list.
func (c *Cache) Invalidate() {
	c.valid = false
	c.result = nil
}

// derive filters and sorts the collection: keep channels carrying every
// active filter tag and matching the query, then order starred first, then
// by explicit manual order, then by recency.
func derive(channels []*domain.Channel, filters []string, query string) []*domain.Channel {
	result := make([]*domain.Channel, 0, len(channels))
	for _, ch := range channels {
		if !hasAllTags(ch, filters) {
			continue
		}
		if !ch.MatchesQuery(query) {
			continue
		}
		result = append(result, ch)
	}

	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.Starred != b.Starred {
			return a.Starred
		}
		// A side with an explicit order sorts before one without; when both
		// define it, lower order wins.
		switch {
		case a.Order != nil && b.Order != nil:
			return *a.Order < *b.Order
		case a.Order != nil:
			return true
		case b.Order != nil:
			return false
		}
		return a.CreatedAt > b.CreatedAt
	})
	return result
}

func hasAllTags(ch *domain.Channel, filters []string) bool {
	for _, f := range filters {
		if !ch.HasTag(f) {
			return false
		}
	}
	return true
}
