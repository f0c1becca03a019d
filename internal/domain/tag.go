package domain

import "fmt"

// TagCategory classifies a DanbooruTag for autocomplete display.
// Values follow the Danbooru category numbering.
type TagCategory int

// Tag categories.
const (
	CategoryGeneral   TagCategory = 0
	CategoryArtist    TagCategory = 1
	CategoryCopyright TagCategory = 3
	CategoryCharacter TagCategory = 4
	CategoryMeta      TagCategory = 5
)

// String returns a human-readable category name.
func (c TagCategory) String() string {
	switch c {
	case CategoryGeneral:
		return "general"
	case CategoryArtist:
		return "artist"
	case CategoryCopyright:
		return "copyright"
	case CategoryCharacter:
		return "character"
	case CategoryMeta:
		return "meta"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// DanbooruTag is an autocomplete vocabulary entry. Name is unique within the
// custom vocabulary and must not collide with the built-in corpus.
//
// JSON field names match the persisted "custom-tags" document format.
type DanbooruTag struct {
	Name     string      `json:"name"`
	Category TagCategory `json:"category"`
}
