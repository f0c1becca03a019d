package app

import (
	"slices"

	"github.com/promptdeck/promptdeck/internal/domain"
	"github.com/promptdeck/promptdeck/internal/errors"
	"github.com/promptdeck/promptdeck/internal/search"
)

// AddTag appends a tag to the global vocabulary if not already present.
func (a *App) AddTag(tag string) error {
	if tag == "" {
		return errors.Validation("tag cannot be empty")
	}
	if a.state.HasTag(tag) {
		return nil
	}
	a.state.Tags = append(a.state.Tags, tag)
	a.persist.Save()
	return nil
}

// AssignTag attaches a vocabulary tag to a channel, adding it to the
// vocabulary first when new. A channel's tags are copies of vocabulary
// entries, not references.
func (a *App) AssignTag(channelID, tag string) error {
	ch := a.state.Channel(channelID)
	if ch == nil {
		return errors.NotFoundf("channel %q not found", channelID)
	}
	if err := a.AddTag(tag); err != nil {
		return err
	}
	if ch.HasTag(tag) {
		return nil
	}
	ch.Tags = append(ch.Tags, tag)
	a.cache.Invalidate()
	a.persist.Save()
	a.renderer.RenderChannels()
	return nil
}

// UnassignTag detaches a tag from one channel without touching the
// vocabulary.
func (a *App) UnassignTag(channelID, tag string) error {
	ch := a.state.Channel(channelID)
	if ch == nil {
		return errors.NotFoundf("channel %q not found", channelID)
	}
	i := slices.Index(ch.Tags, tag)
	if i < 0 {
		return nil
	}
	ch.Tags = slices.Delete(ch.Tags, i, i+1)
	a.cache.Invalidate()
	a.persist.Save()
	a.renderer.RenderChannels()
	return nil
}

// DeleteTag removes a tag from the vocabulary and from every channel that
// carried it, pushing a single undo entry with each affected channel's
// prior tag list.
func (a *App) DeleteTag(tag string) error {
	i := slices.Index(a.state.Tags, tag)
	if i < 0 {
		return errors.NotFoundf("tag %q not found", tag)
	}

	var affected []domain.ChannelTags
	for _, ch := range a.state.Channels {
		if ch.HasTag(tag) {
			affected = append(affected, domain.ChannelTags{
				ChannelID: ch.ID,
				Tags:      append([]string(nil), ch.Tags...),
			})
		}
	}
	a.undo.Push(domain.DeleteTag{TagName: tag, Affected: affected})

	a.state.Tags = slices.Delete(a.state.Tags, i, i+1)
	a.state.ActiveFilters = slices.DeleteFunc(a.state.ActiveFilters, func(t string) bool { return t == tag })
	for _, ch := range a.state.Channels {
		if j := slices.Index(ch.Tags, tag); j >= 0 {
			ch.Tags = slices.Delete(ch.Tags, j, j+1)
		}
	}

	a.logger.Info("tag deleted", "tag", tag, "affected_channels", len(affected))
	a.cache.Invalidate()
	a.persist.Save()
	a.renderer.RenderChannels()
	return nil
}

// RenameTag rewrites a vocabulary entry and the copy held by every channel
// that used it.
func (a *App) RenameTag(oldName, newName string) error {
	if newName == "" {
		return errors.Validation("tag cannot be empty")
	}
	i := slices.Index(a.state.Tags, oldName)
	if i < 0 {
		return errors.NotFoundf("tag %q not found", oldName)
	}
	if a.state.HasTag(newName) {
		return errors.AlreadyExistsf("tag %q already exists", newName)
	}

	a.state.Tags[i] = newName
	for _, ch := range a.state.Channels {
		if j := slices.Index(ch.Tags, oldName); j >= 0 {
			ch.Tags[j] = newName
		}
	}
	if j := slices.Index(a.state.ActiveFilters, oldName); j >= 0 {
		a.state.ActiveFilters[j] = newName
	}

	a.cache.Invalidate()
	a.persist.Save()
	a.renderer.RenderChannels()
	return nil
}

// AddCustomTag adds an autocomplete vocabulary entry. Names colliding with
// either the built-in corpus or an existing custom tag are rejected.
func (a *App) AddCustomTag(name string, category domain.TagCategory) error {
	if name == "" {
		return errors.Validation("tag name cannot be empty")
	}
	if search.IsBuiltin(name) {
		return errors.AlreadyExistsf("tag %q is part of the built-in vocabulary", name)
	}
	if a.state.HasCustomTag(name) {
		return errors.AlreadyExistsf("custom tag %q already exists", name)
	}

	a.state.CustomTags = append(a.state.CustomTags, domain.DanbooruTag{Name: name, Category: category})
	a.index.Update(a.corpus())
	a.persist.Save()
	return nil
}

// RemoveCustomTag deletes an autocomplete vocabulary entry and rebuilds the
// search corpus.
func (a *App) RemoveCustomTag(name string) error {
	i := slices.IndexFunc(a.state.CustomTags, func(t domain.DanbooruTag) bool { return t.Name == name })
	if i < 0 {
		return errors.NotFoundf("custom tag %q not found", name)
	}
	a.state.CustomTags = slices.Delete(a.state.CustomTags, i, i+1)
	a.index.Update(a.corpus())
	a.persist.Save()
	return nil
}
