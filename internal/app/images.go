package app

import (
	"context"
	"fmt"
	"slices"

	"github.com/promptdeck/promptdeck/internal/domain"
	"github.com/promptdeck/promptdeck/internal/errors"
	"github.com/promptdeck/promptdeck/internal/ingest"
)

// AddImages runs a batch of files through the ingest pipeline and appends
// the resulting payloads to the channel. Per-file failures are tolerated and
// reported in aggregate; the state is persisted once and the gallery
// re-rendered once, after the whole batch completes — never mid-batch.
func (a *App) AddImages(ctx context.Context, channelID string, files []ingest.File) (*ingest.Result, error) {
	ch := a.state.Channel(channelID)
	if ch == nil {
		return nil, errors.NotFoundf("channel %q not found", channelID)
	}

	result, err := a.pipeline.IngestBatch(ctx, files)
	if err != nil {
		// Whole-batch rejection: state untouched, nothing to save. The
		// user-facing message only fits validation failures; cancellation
		// and I/O errors pass through undressed.
		if errors.Is(err, errors.ErrValidation) {
			a.notifier.Error("Selected files must all be images.")
		}
		return nil, err
	}

	ch.Images = append(ch.Images, result.Images...)
	a.Paginator(channelID).Reset()

	a.persist.Save()
	a.renderer.RenderGallery(channelID)

	switch {
	case result.Failed == 0:
		a.notifier.Info(fmt.Sprintf("Added %d images.", result.Processed))
	case result.Processed == 0:
		a.notifier.Error(fmt.Sprintf("All %d images failed to process.", result.Failed))
	default:
		a.notifier.Warn(fmt.Sprintf("Added %d images, %d failed.", result.Processed, result.Failed))
	}
	return result, nil
}

// DeleteImage removes one image from a channel after snapshotting it for
// undo.
func (a *App) DeleteImage(channelID string, index int) error {
	ch := a.state.Channel(channelID)
	if ch == nil {
		return errors.NotFoundf("channel %q not found", channelID)
	}
	if index < 0 || index >= len(ch.Images) {
		return errors.Validationf("image index %d out of range", index)
	}

	a.undo.Push(domain.DeleteImage{
		ChannelID: channelID,
		Image:     ch.Images[index],
		Index:     index,
	})
	ch.Images = slices.Delete(ch.Images, index, index+1)

	a.persist.Save()
	a.renderer.RenderGallery(channelID)
	return nil
}

// MoveImage reorders a channel's images; order is user-meaningful and
// preserved on export.
func (a *App) MoveImage(channelID string, from, to int) error {
	ch := a.state.Channel(channelID)
	if ch == nil {
		return errors.NotFoundf("channel %q not found", channelID)
	}
	if from < 0 || from >= len(ch.Images) || to < 0 || to >= len(ch.Images) {
		return errors.Validationf("image move %d -> %d out of range", from, to)
	}
	if from == to {
		return nil
	}

	img := ch.Images[from]
	ch.Images = slices.Delete(ch.Images, from, from+1)
	ch.Images = slices.Insert(ch.Images, to, img)

	a.persist.Save()
	a.renderer.RenderGallery(channelID)
	return nil
}
