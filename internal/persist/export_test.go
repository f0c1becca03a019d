package persist

import (
	"context"
	"encoding/json/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptdeck/promptdeck/internal/domain"
	"github.com/promptdeck/promptdeck/internal/errors"
)

func TestExportAll_EmptyStateHasEmptyArrays(t *testing.T) {
	m, _, _, _ := newTestManager(t, newMemBackend())

	data, err := m.ExportAll()
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, []any{}, raw["channels"], "empty, never null")
	assert.Equal(t, []any{}, raw["tags"])
	assert.Equal(t, ExportVersion, raw["version"])
	assert.NotEmpty(t, raw["exportedAt"])
}

func TestExportImport_RoundTrip(t *testing.T) {
	m, state, _, _ := newTestManager(t, newMemBackend())

	order := 1
	state.Channels = []*domain.Channel{
		{
			ID:        "ch-a",
			Name:      "character sheet",
			Prompt:    "1girl, white hair",
			NegativePrompt: "lowres",
			Tags:      []string{"character"},
			Images:    []domain.Image{{URL: "data:image/jpeg;base64,QUJD", BlurHash: "L6Pj0^"}},
			Starred:   true,
			Order:     &order,
			CreatedAt: 100,
		},
		{ID: "ch-b", Name: "backgrounds", Tags: []string{}, Images: []domain.Image{}, CreatedAt: 200},
	}
	state.Tags = []string{"character", "background"}
	state.CustomTags = []domain.DanbooruTag{{Name: "house_style", Category: domain.CategoryMeta}}

	data, err := m.ExportAll()
	require.NoError(t, err)

	target := newMemBackend()
	m2, state2, _, _ := newTestManager(t, target)
	state2.Channels = []*domain.Channel{{ID: "ch-old", Name: "stale"}}
	state2.Tags = []string{"stale"}

	require.NoError(t, m2.Import(context.Background(), data))

	assert.Equal(t, state.Channels, state2.Channels, "import is a full overwrite")
	assert.Equal(t, state.Tags, state2.Tags)
	assert.Equal(t, state.CustomTags, state2.CustomTags)
	assert.Empty(t, state2.ActiveChannelID)
	assert.Equal(t, 1, target.writeCount(DocChannels), "import persists immediately")
}

func TestImport_RejectsMalformedPayloads(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{channels`},
		{"missing channels", `{"tags":[]}`},
		{"missing tags", `{"channels":[]}`},
		{"null channels", `{"channels":null,"tags":[]}`},
		{"null channel entry", `{"channels":[null],"tags":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := newMemBackend()
			m, state, _, _ := newTestManager(t, backend)
			state.Channels = []*domain.Channel{{ID: "ch-keep", Name: "keep"}}

			err := m.Import(context.Background(), []byte(tt.data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrValidation))
			assert.Len(t, state.Channels, 1, "rejected import leaves state untouched")
			assert.Equal(t, 0, backend.writeCount(DocChannels))
		})
	}
}

func TestExportImport_CanonicalizesSparseChannels(t *testing.T) {
	m, state, _, _ := newTestManager(t, newMemBackend())
	state.Channels = []*domain.Channel{{ID: "ch-bare", Name: "bare", CreatedAt: 1}}

	data, err := m.ExportAll()
	require.NoError(t, err)

	m2, state2, _, _ := newTestManager(t, newMemBackend())
	require.NoError(t, m2.Import(context.Background(), data))

	require.Len(t, state2.Channels, 1)
	ch := state2.Channels[0]
	assert.NotNil(t, ch.Tags, "slice fields come back empty, never nil")
	assert.Empty(t, ch.Tags)
	assert.NotNil(t, ch.Images)
	assert.Empty(t, ch.Images)
}

func TestImport_AcceptsEmptyArrays(t *testing.T) {
	m, state, _, _ := newTestManager(t, newMemBackend())
	state.Channels = []*domain.Channel{{ID: "ch-old", Name: "old"}}

	require.NoError(t, m.Import(context.Background(), []byte(`{"channels":[],"tags":[]}`)))
	assert.Empty(t, state.Channels)
	assert.Empty(t, state.Tags)
}

func TestExportChannel(t *testing.T) {
	m, state, _, _ := newTestManager(t, newMemBackend())
	state.Channels = []*domain.Channel{{ID: "ch-1", Name: "solo", CreatedAt: 7}}

	t.Run("known channel", func(t *testing.T) {
		data, err := m.ExportChannel("ch-1")
		require.NoError(t, err)

		var export ChannelExport
		require.NoError(t, json.Unmarshal(data, &export))
		assert.Equal(t, "ch-1", export.Channel.ID)
		assert.Equal(t, ExportVersion, export.Version)
	})

	t.Run("unknown channel", func(t *testing.T) {
		_, err := m.ExportChannel("ch-missing")
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrNotFound))
	})
}
