package domain

// Default presentation settings used when no persisted value exists.
const (
	DefaultTheme    = "dark"
	DefaultLanguage = "en"
)

// AppState is the in-memory working set for the whole application. It is
// constructed once at startup from storage reads (or empty defaults), mutated
// in place by the single mutation path, and persisted asynchronously.
//
// There is no locking: all mutation happens on one goroutine, and background
// workers only ever read private copies of the data they need.
type AppState struct {
	Channels   []*Channel
	Tags       []string
	CustomTags []DanbooruTag

	ActiveChannelID string
	ActiveFilters   []string
	SearchQuery     string

	Theme    string
	Language string
}

// NewAppState returns an empty state with default presentation settings.
func NewAppState() *AppState {
	return &AppState{
		Theme:    DefaultTheme,
		Language: DefaultLanguage,
	}
}

// Channel returns the channel with the given id, or nil.
func (s *AppState) Channel(id string) *Channel {
	for _, c := range s.Channels {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// ChannelIndex returns the position of the channel with the given id,
// or -1 when absent.
func (s *AppState) ChannelIndex(id string) int {
	for i, c := range s.Channels {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// ActiveChannel returns the currently selected channel, or nil.
func (s *AppState) ActiveChannel() *Channel {
	return s.Channel(s.ActiveChannelID)
}

// HasTag reports whether the global vocabulary contains the tag.
func (s *AppState) HasTag(tag string) bool {
	for _, t := range s.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// HasCustomTag reports whether the custom autocomplete vocabulary contains
// a tag with the given name.
func (s *AppState) HasCustomTag(name string) bool {
	for _, t := range s.CustomTags {
		if t.Name == name {
			return true
		}
	}
	return false
}
