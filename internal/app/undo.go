package app

import (
	"slices"

	"github.com/promptdeck/promptdeck/internal/domain"
	"github.com/promptdeck/promptdeck/internal/errors"
)

// Undo pops the most recent destructive action and restores its snapshot
// into the working set, then persists and re-renders. Returns ErrNotFound
// when there is nothing to undo.
func (a *App) Undo() error {
	action, ok := a.undo.Pop()
	if !ok {
		return errors.NotFound("nothing to undo")
	}

	switch act := action.(type) {
	case domain.DeleteChannel:
		a.undoDeleteChannel(act)
	case domain.DeleteImage:
		a.undoDeleteImage(act)
	case domain.DeleteTag:
		a.undoDeleteTag(act)
	default:
		return errors.Internal("unknown undo action " + action.Kind())
	}

	a.logger.Info("undo applied", "action", action.Kind())
	a.cache.Invalidate()
	a.persist.Save()
	a.renderer.RenderChannels()
	return nil
}

// undoDeleteChannel reinserts the snapshot at its original position, or at
// the end when the collection has shrunk past it.
func (a *App) undoDeleteChannel(act domain.DeleteChannel) {
	idx := act.Index
	if idx < 0 || idx > len(a.state.Channels) {
		idx = len(a.state.Channels)
	}
	a.state.Channels = slices.Insert(a.state.Channels, idx, act.Channel)
	a.renderer.RenderGallery(act.Channel.ID)
}

// undoDeleteImage reinserts the image into its channel. If the channel was
// itself deleted since, the record is silently dropped.
func (a *App) undoDeleteImage(act domain.DeleteImage) {
	ch := a.state.Channel(act.ChannelID)
	if ch == nil {
		a.logger.Warn("undo target channel no longer exists", "channel_id", act.ChannelID)
		return
	}
	idx := act.Index
	if idx < 0 || idx > len(ch.Images) {
		idx = len(ch.Images)
	}
	ch.Images = slices.Insert(ch.Images, idx, act.Image)
	a.renderer.RenderGallery(act.ChannelID)
}

// undoDeleteTag restores the vocabulary entry and every affected channel's
// prior tag list from the snapshot, without consulting current state.
func (a *App) undoDeleteTag(act domain.DeleteTag) {
	if !a.state.HasTag(act.TagName) {
		a.state.Tags = append(a.state.Tags, act.TagName)
	}
	for _, snap := range act.Affected {
		if ch := a.state.Channel(snap.ChannelID); ch != nil {
			ch.Tags = append([]string(nil), snap.Tags...)
		}
	}
}
