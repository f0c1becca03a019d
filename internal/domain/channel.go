package domain

import (
	"strings"
	"time"
)

// Channel is one prompt/tag/image bundle. JSON field names match the export
// file format, which is shared with other tooling.
type Channel struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"required"`

	Prompt         string `json:"prompt"`
	NegativePrompt string `json:"negativePrompt"`

	// Alternate text bodies. Index 0 of the active index selects the
	// primary Prompt/NegativePrompt; 1..N selects the variant at index-1.
	PromptVariants             []string `json:"promptVariants,omitempty"`
	NegativePromptVariants     []string `json:"negativePromptVariants,omitempty"`
	ActiveVariantIndex         int      `json:"activeVariantIndex,omitempty"`
	ActiveNegativeVariantIndex int      `json:"activeNegativeVariantIndex,omitempty"`

	Tags   []string `json:"tags"`
	Images []Image  `json:"images"`

	Starred bool `json:"starred,omitempty"`
	// Order is the explicit manual sort position; nil means unordered.
	Order *int `json:"order,omitempty"`

	// CreatedAt is a unix millisecond timestamp.
	CreatedAt int64 `json:"createdAt"`
}

// Image is one stored gallery entry: a self-contained data URL plus a
// BlurHash placeholder string.
type Image struct {
	URL      string `json:"url"`
	BlurHash string `json:"blurHash,omitempty"`
}

// NowMillis returns the current time as a unix millisecond timestamp, the
// resolution CreatedAt is stored in.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}

// Clone returns a deep copy. Undo snapshots rely on the copy being fully
// detached from the original's slices.
func (c *Channel) Clone() *Channel {
	cp := *c
	cp.PromptVariants = append([]string(nil), c.PromptVariants...)
	cp.NegativePromptVariants = append([]string(nil), c.NegativePromptVariants...)
	cp.Tags = append([]string(nil), c.Tags...)
	cp.Images = append([]Image(nil), c.Images...)
	if c.Order != nil {
		order := *c.Order
		cp.Order = &order
	}
	return &cp
}

// ActivePrompt returns the prompt text body the active variant index selects.
func (c *Channel) ActivePrompt() string {
	if c.ActiveVariantIndex > 0 && c.ActiveVariantIndex <= len(c.PromptVariants) {
		return c.PromptVariants[c.ActiveVariantIndex-1]
	}
	return c.Prompt
}

// ActiveNegative returns the negative prompt text body the active variant
// index selects.
func (c *Channel) ActiveNegative() string {
	if c.ActiveNegativeVariantIndex > 0 && c.ActiveNegativeVariantIndex <= len(c.NegativePromptVariants) {
		return c.NegativePromptVariants[c.ActiveNegativeVariantIndex-1]
	}
	return c.NegativePrompt
}

// Canonicalize brings a channel read from storage or an import payload into
// the stable in-memory form: slice fields are non-nil regardless of how the
// JSON spelled an empty list, and variant indexes are in range.
func (c *Channel) Canonicalize() {
	if c.Tags == nil {
		c.Tags = []string{}
	}
	if c.Images == nil {
		c.Images = []Image{}
	}
	c.ClampVariantIndexes()
}

// ClampVariantIndexes pulls both active variant indexes back into the valid
// range [0, len(variants)]. Called after variant deletion and after loading
// persisted data.
func (c *Channel) ClampVariantIndexes() {
	if c.ActiveVariantIndex < 0 || c.ActiveVariantIndex > len(c.PromptVariants) {
		c.ActiveVariantIndex = 0
	}
	if c.ActiveNegativeVariantIndex < 0 || c.ActiveNegativeVariantIndex > len(c.NegativePromptVariants) {
		c.ActiveNegativeVariantIndex = 0
	}
}

// HasTag reports whether the channel carries the tag.
func (c *Channel) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// MatchesQuery reports whether the channel matches a free-text search query:
// a case-insensitive substring match against the name, prompt, and tags. An
// empty query matches everything.
func (c *Channel) MatchesQuery(query string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	if strings.Contains(strings.ToLower(c.Name), query) {
		return true
	}
	if strings.Contains(strings.ToLower(c.Prompt), query) {
		return true
	}
	for _, t := range c.Tags {
		if strings.Contains(strings.ToLower(t), query) {
			return true
		}
	}
	return false
}
