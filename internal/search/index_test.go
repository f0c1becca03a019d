package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptdeck/promptdeck/internal/domain"
	"github.com/promptdeck/promptdeck/internal/sched"
)

var corpus = []domain.DanbooruTag{
	{Name: "cat_ears", Category: domain.CategoryGeneral},
	{Name: "dog_ears", Category: domain.CategoryGeneral},
	{Name: "category_test", Category: domain.CategoryMeta},
	{Name: "black_cat", Category: domain.CategoryGeneral},
	{Name: "caterpillar", Category: domain.CategoryGeneral},
	{Name: "copycat", Category: domain.CategoryGeneral},
}

func TestRank(t *testing.T) {
	t.Run("prefix matches precede contains matches, both in corpus order", func(t *testing.T) {
		got := Rank(corpus, "cat", 10)
		names := tagNames(got)
		assert.Equal(t, []string{"cat_ears", "category_test", "caterpillar", "black_cat", "copycat"}, names)
	})

	t.Run("matching is case-insensitive", func(t *testing.T) {
		got := Rank(corpus, "CAT", 10)
		require.NotEmpty(t, got)
		assert.Equal(t, "cat_ears", got[0].Name)
	})

	t.Run("limit truncates after ranking", func(t *testing.T) {
		got := Rank(corpus, "cat", 2)
		assert.Equal(t, []string{"cat_ears", "category_test"}, tagNames(got))
	})

	t.Run("short and empty queries return nothing", func(t *testing.T) {
		assert.Empty(t, Rank(corpus, "c", 10))
		assert.Empty(t, Rank(corpus, "", 10))
		assert.Empty(t, Rank(corpus, " ", 10))
	})
}

func TestIndex_WorkerAndFallbackAgree(t *testing.T) {
	ctx := context.Background()

	worker := New(Options{})
	defer worker.Close()
	fallback := New(Options{DisableWorker: true})

	worker.Init(corpus)
	fallback.Init(corpus)

	for _, query := range []string{"cat", "ears", "dog", "zzz", "c", ""} {
		fromWorker, err := worker.Search(ctx, query, 10)
		require.NoError(t, err)
		fromFallback, err := fallback.Search(ctx, query, 10)
		require.NoError(t, err)
		assert.Equal(t, tagNames(fromFallback), tagNames(fromWorker), "query %q", query)
	}
}

func TestIndex_UpdateReplacesCorpus(t *testing.T) {
	ctx := context.Background()
	idx := New(Options{})
	defer idx.Close()

	idx.Init(corpus)
	got, err := idx.Search(ctx, "cat", 10)
	require.NoError(t, err)
	require.NotEmpty(t, got)

	idx.Update([]domain.DanbooruTag{{Name: "wholly_new"}})
	got, err = idx.Search(ctx, "cat", 10)
	require.NoError(t, err)
	assert.Empty(t, got, "old corpus entries must be gone after wholesale update")

	got, err = idx.Search(ctx, "wholly", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"wholly_new"}, tagNames(got))
}

func TestAutocompleter_DebouncesBursts(t *testing.T) {
	clock := sched.NewFakeClock()
	idx := New(Options{DisableWorker: true})
	idx.Init(corpus)
	ac := NewAutocompleter(idx, clock)

	var results [][]string
	for _, q := range []string{"ca", "cat", "cat_"} {
		ac.Query(q, 10, func(tags []domain.DanbooruTag) {
			results = append(results, tagNames(tags))
		})
		clock.Advance(50 * time.Millisecond)
	}
	clock.Advance(DebounceWindow)

	require.Len(t, results, 1, "only the last keystroke should reach the index")
	assert.Equal(t, []string{"cat_ears"}, results[0])
}

func tagNames(tags []domain.DanbooruTag) []string {
	if len(tags) == 0 {
		return nil
	}
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return names
}
