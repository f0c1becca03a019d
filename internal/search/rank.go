// Package search ranks tag-autocomplete queries against the combined
// built-in and custom vocabularies without blocking the caller's goroutine.
package search

import (
	"strings"
	"unicode/utf8"

	"github.com/promptdeck/promptdeck/internal/domain"
)

// MinQueryLen is the shortest query that produces results. Shorter queries
// would match most of the corpus and drown the autocomplete list.
const MinQueryLen = 2

// Rank returns up to limit tags matching the query, case-insensitive:
// every tag whose name starts with the query, in corpus order, precedes
// every tag that merely contains it elsewhere, also in corpus order.
// The ordering is stable; ties keep corpus order.
//
// Both the worker and the synchronous fallback call this same function, so
// the two execution paths are observably identical.
func Rank(corpus []domain.DanbooruTag, query string, limit int) []domain.DanbooruTag {
	if limit <= 0 {
		return nil
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if utf8.RuneCountInString(q) < MinQueryLen {
		return nil
	}

	var prefix, contains []domain.DanbooruTag
	for _, t := range corpus {
		name := strings.ToLower(t.Name)
		switch {
		case strings.HasPrefix(name, q):
			prefix = append(prefix, t)
		case strings.Contains(name, q):
			contains = append(contains, t)
		}
		if len(prefix) >= limit {
			break
		}
	}

	out := prefix
	for _, t := range contains {
		if len(out) >= limit {
			break
		}
		out = append(out, t)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
