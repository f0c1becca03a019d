package domain

// UndoAction is a reversible record of a destructive mutation. Each variant
// carries a full pre-deletion snapshot sufficient to reconstruct prior state
// without consulting current (already-mutated) state.
type UndoAction interface {
	// Kind returns a stable name for the action variant.
	Kind() string
}

// DeleteChannel records the removal of an entire channel.
type DeleteChannel struct {
	// Channel is a deep snapshot taken before the deletion.
	Channel *Channel
	// Index is the position the channel occupied in the collection.
	Index int
}

// Kind implements UndoAction.
func (DeleteChannel) Kind() string { return "delete-channel" }

// DeleteImage records the removal of a single image from a channel.
type DeleteImage struct {
	ChannelID string
	Image     Image
	Index     int
}

// Kind implements UndoAction.
func (DeleteImage) Kind() string { return "delete-image" }

// ChannelTags captures one channel's full tag list before a tag deletion.
type ChannelTags struct {
	ChannelID string
	Tags      []string
}

// DeleteTag records the removal of a vocabulary tag, including the prior tag
// lists of every channel that carried it.
type DeleteTag struct {
	TagName  string
	Affected []ChannelTags
}

// Kind implements UndoAction.
func (DeleteTag) Kind() string { return "delete-tag" }
