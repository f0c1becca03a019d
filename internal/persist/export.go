package persist

import (
	"context"
	"encoding/json/v2"
	"time"

	"github.com/promptdeck/promptdeck/internal/domain"
	"github.com/promptdeck/promptdeck/internal/errors"
	"github.com/promptdeck/promptdeck/internal/validation"
)

// ExportVersion is written into every export envelope.
const ExportVersion = "1.0.0"

// ExportPayload is the full-state export file shape.
type ExportPayload struct {
	Channels           []*domain.Channel    `json:"channels"`
	Tags               []string             `json:"tags"`
	CustomDanbooruTags []domain.DanbooruTag `json:"customDanbooruTags"`
	Version            string               `json:"version"`
	ExportedAt         time.Time            `json:"exportedAt"`
}

// ChannelExport is the single-channel export file shape.
type ChannelExport struct {
	Channel    *domain.Channel `json:"channel"`
	Version    string          `json:"version"`
	ExportedAt time.Time       `json:"exportedAt"`
}

// importEnvelope mirrors ExportPayload with pointer slices so that a missing
// or non-array field is distinguishable from an empty one. Import requires
// channels and tags to be present; an empty array is valid.
type importEnvelope struct {
	Channels           *[]*domain.Channel   `json:"channels" validate:"required,dive,required"`
	Tags               *[]string            `json:"tags" validate:"required"`
	CustomDanbooruTags []domain.DanbooruTag `json:"customDanbooruTags"`
}

var importValidator = validation.New()

// ExportAll serializes the entire working set into the export envelope.
func (m *Manager) ExportAll() ([]byte, error) {
	payload := ExportPayload{
		Channels:           m.state.Channels,
		Tags:               m.state.Tags,
		CustomDanbooruTags: m.state.CustomTags,
		Version:            ExportVersion,
		ExportedAt:         time.Now().UTC(),
	}
	if payload.Channels == nil {
		payload.Channels = []*domain.Channel{}
	}
	if payload.Tags == nil {
		payload.Tags = []string{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Internal("serialize export").WithCause(err)
	}
	return data, nil
}

// ExportChannel serializes a single channel into its export envelope.
func (m *Manager) ExportChannel(channelID string) ([]byte, error) {
	ch := m.state.Channel(channelID)
	if ch == nil {
		return nil, errors.NotFoundf("channel %q not found", channelID)
	}
	data, err := json.Marshal(ChannelExport{
		Channel:    ch,
		Version:    ExportVersion,
		ExportedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, errors.Internal("serialize channel export").WithCause(err)
	}
	return data, nil
}

// Import replaces the working set wholesale with the contents of an export
// payload (full overwrite, not merge), then persists immediately. The payload
// must carry array-typed channels and tags fields, and every channel entry
// must be a well-formed object, or the import is rejected without touching
// current state. Imported channels are canonicalized on the way in.
func (m *Manager) Import(ctx context.Context, data []byte) error {
	var envelope importEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return errors.Validation("import file is not valid JSON").WithCause(err)
	}
	if err := importValidator.Validate(&envelope); err != nil {
		return err
	}

	m.state.Channels = *envelope.Channels
	m.state.Tags = *envelope.Tags
	m.state.CustomTags = envelope.CustomDanbooruTags
	m.state.ActiveChannelID = ""
	for _, ch := range m.state.Channels {
		ch.Canonicalize()
	}

	m.logger.Info("state imported",
		"channels", len(m.state.Channels),
		"tags", len(m.state.Tags),
		"custom_tags", len(m.state.CustomTags),
	)
	return m.SaveNow(ctx)
}
