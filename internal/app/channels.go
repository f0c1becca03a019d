package app

import (
	"slices"

	"github.com/promptdeck/promptdeck/internal/domain"
	"github.com/promptdeck/promptdeck/internal/errors"
	"github.com/promptdeck/promptdeck/internal/id"
)

// AddChannel creates a channel with a fresh id and prepends nothing — new
// channels join the end of the collection and surface by recency in views.
func (a *App) AddChannel(name string) (*domain.Channel, error) {
	if name == "" {
		return nil, errors.Validation("channel name cannot be empty")
	}
	ch := &domain.Channel{
		ID:        id.MustGenerate("ch"),
		Name:      name,
		CreatedAt: domain.NowMillis(),
	}
	a.state.Channels = append(a.state.Channels, ch)
	a.persist.Save()
	a.renderer.RenderChannels()
	return ch, nil
}

// DuplicateChannel copies a channel under a fresh id and creation time.
func (a *App) DuplicateChannel(channelID string) (*domain.Channel, error) {
	src := a.state.Channel(channelID)
	if src == nil {
		return nil, errors.NotFoundf("channel %q not found", channelID)
	}
	cp := src.Clone()
	cp.ID = id.MustGenerate("ch")
	cp.Name = src.Name + " (copy)"
	cp.CreatedAt = domain.NowMillis()
	cp.Order = nil
	a.state.Channels = append(a.state.Channels, cp)
	a.persist.Save()
	a.renderer.RenderChannels()
	return cp, nil
}

// RenameChannel updates a channel's display name.
func (a *App) RenameChannel(channelID, name string) error {
	if name == "" {
		return errors.Validation("channel name cannot be empty")
	}
	ch := a.state.Channel(channelID)
	if ch == nil {
		return errors.NotFoundf("channel %q not found", channelID)
	}
	ch.Name = name
	a.cache.Invalidate()
	a.persist.Save()
	a.renderer.RenderChannels()
	return nil
}

// SetPrompt updates the primary prompt text.
func (a *App) SetPrompt(channelID, prompt string) error {
	ch := a.state.Channel(channelID)
	if ch == nil {
		return errors.NotFoundf("channel %q not found", channelID)
	}
	ch.Prompt = prompt
	a.cache.Invalidate()
	a.persist.Save()
	return nil
}

// SetNegativePrompt updates the primary negative prompt text.
func (a *App) SetNegativePrompt(channelID, prompt string) error {
	ch := a.state.Channel(channelID)
	if ch == nil {
		return errors.NotFoundf("channel %q not found", channelID)
	}
	ch.NegativePrompt = prompt
	a.persist.Save()
	return nil
}

// AddVariant appends an alternate text body to the prompt (or negative
// prompt) variant list. Variants are append/delete only; no reorder.
func (a *App) AddVariant(channelID string, negative bool, text string) error {
	ch := a.state.Channel(channelID)
	if ch == nil {
		return errors.NotFoundf("channel %q not found", channelID)
	}
	if negative {
		ch.NegativePromptVariants = append(ch.NegativePromptVariants, text)
	} else {
		ch.PromptVariants = append(ch.PromptVariants, text)
	}
	a.persist.Save()
	return nil
}

// DeleteVariant removes the variant at index (0-based within the variant
// list) and clamps the active indexes back into range.
func (a *App) DeleteVariant(channelID string, negative bool, index int) error {
	ch := a.state.Channel(channelID)
	if ch == nil {
		return errors.NotFoundf("channel %q not found", channelID)
	}
	variants := ch.PromptVariants
	if negative {
		variants = ch.NegativePromptVariants
	}
	if index < 0 || index >= len(variants) {
		return errors.Validationf("variant index %d out of range", index)
	}
	if negative {
		ch.NegativePromptVariants = slices.Delete(ch.NegativePromptVariants, index, index+1)
	} else {
		ch.PromptVariants = slices.Delete(ch.PromptVariants, index, index+1)
	}
	ch.ClampVariantIndexes()
	a.persist.Save()
	return nil
}

// SetActiveVariant selects which text body is active: 0 is the primary
// text, 1..N the variant at index-1.
func (a *App) SetActiveVariant(channelID string, negative bool, index int) error {
	ch := a.state.Channel(channelID)
	if ch == nil {
		return errors.NotFoundf("channel %q not found", channelID)
	}
	variants := ch.PromptVariants
	if negative {
		variants = ch.NegativePromptVariants
	}
	if index < 0 || index > len(variants) {
		return errors.Validationf("active variant index %d out of range [0, %d]", index, len(variants))
	}
	if negative {
		ch.ActiveNegativeVariantIndex = index
	} else {
		ch.ActiveVariantIndex = index
	}
	a.persist.Save()
	return nil
}

// ToggleStar flips a channel's star, which also changes its sort priority.
func (a *App) ToggleStar(channelID string) error {
	ch := a.state.Channel(channelID)
	if ch == nil {
		return errors.NotFoundf("channel %q not found", channelID)
	}
	ch.Starred = !ch.Starred
	a.cache.Invalidate()
	a.persist.Save()
	a.renderer.RenderChannels()
	return nil
}

// SetOrder assigns (or clears, with nil) a channel's explicit manual sort
// position.
func (a *App) SetOrder(channelID string, order *int) error {
	ch := a.state.Channel(channelID)
	if ch == nil {
		return errors.NotFoundf("channel %q not found", channelID)
	}
	ch.Order = order
	a.cache.Invalidate()
	a.persist.Save()
	a.renderer.RenderChannels()
	return nil
}

// DeleteChannel removes a channel after snapshotting it for undo.
func (a *App) DeleteChannel(channelID string) error {
	idx := a.state.ChannelIndex(channelID)
	if idx < 0 {
		return errors.NotFoundf("channel %q not found", channelID)
	}
	snapshot := a.state.Channels[idx].Clone()
	a.undo.Push(domain.DeleteChannel{Channel: snapshot, Index: idx})

	a.state.Channels = slices.Delete(a.state.Channels, idx, idx+1)
	if a.state.ActiveChannelID == channelID {
		a.state.ActiveChannelID = ""
	}
	delete(a.paginators, channelID)

	a.logger.Info("channel deleted", "channel_id", channelID, "name", snapshot.Name)
	a.persist.Save()
	a.renderer.RenderChannels()
	return nil
}
