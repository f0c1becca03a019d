package view

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/promptdeck/promptdeck/internal/domain"
)

// genChannels draws an arbitrary channel collection with random tags, stars,
// orders, and timestamps.
func genChannels(t *rapid.T) []*domain.Channel {
	tagPool := []string{"a", "b", "c"}
	n := rapid.IntRange(0, 12).Draw(t, "n")
	channels := make([]*domain.Channel, 0, n)
	for range n {
		ch := &domain.Channel{
			ID:        rapid.StringMatching(`ch-[a-z]{4}`).Draw(t, "id"),
			Name:      rapid.StringMatching(`[a-z ]{1,8}`).Draw(t, "name"),
			Starred:   rapid.Bool().Draw(t, "starred"),
			CreatedAt: int64(rapid.IntRange(0, 1000).Draw(t, "createdAt")),
		}
		for _, tag := range tagPool {
			if rapid.Bool().Draw(t, "has_"+tag) {
				ch.Tags = append(ch.Tags, tag)
			}
		}
		if rapid.Bool().Draw(t, "hasOrder") {
			order := rapid.IntRange(0, 5).Draw(t, "order")
			ch.Order = &order
		}
		channels = append(channels, ch)
	}
	return channels
}

func TestDerive_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		channels := genChannels(t)
		filters := rapid.SliceOfN(rapid.SampledFrom([]string{"a", "b", "c"}), 0, 2).Draw(t, "filters")

		got := derive(channels, filters, "")

		// Every output channel comes from the input and satisfies the filter.
		seen := make(map[*domain.Channel]bool, len(channels))
		for _, ch := range channels {
			seen[ch] = true
		}
		for _, ch := range got {
			require.True(t, seen[ch], "derive invented a channel")
			require.True(t, hasAllTags(ch, filters))
		}

		// Every input channel satisfying the filter appears exactly once.
		want := 0
		for _, ch := range channels {
			if hasAllTags(ch, filters) {
				want++
			}
		}
		require.Len(t, got, want)

		// Display order invariants hold between every adjacent pair.
		for i := 1; i < len(got); i++ {
			a, b := got[i-1], got[i]
			require.False(t, !a.Starred && b.Starred, "starred channel sorted below unstarred")
			if a.Starred == b.Starred {
				switch {
				case a.Order != nil && b.Order != nil:
					require.LessOrEqual(t, *a.Order, *b.Order)
				case a.Order == nil && b.Order != nil:
					require.Fail(t, "explicitly ordered channel sorted below unordered")
				case a.Order == nil && b.Order == nil:
					require.GreaterOrEqual(t, a.CreatedAt, b.CreatedAt)
				}
			}
		}
	})
}
