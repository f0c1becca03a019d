package search

import "github.com/promptdeck/promptdeck/internal/domain"

// BuiltinCorpus is the fixed tag vocabulary shipped with the application.
// Custom tags are appended after it when building the index corpus, so
// built-in entries always rank first among equal matches.
var BuiltinCorpus = []domain.DanbooruTag{
	{Name: "1girl", Category: domain.CategoryGeneral},
	{Name: "1boy", Category: domain.CategoryGeneral},
	{Name: "solo", Category: domain.CategoryGeneral},
	{Name: "long_hair", Category: domain.CategoryGeneral},
	{Name: "short_hair", Category: domain.CategoryGeneral},
	{Name: "blonde_hair", Category: domain.CategoryGeneral},
	{Name: "black_hair", Category: domain.CategoryGeneral},
	{Name: "brown_hair", Category: domain.CategoryGeneral},
	{Name: "blue_eyes", Category: domain.CategoryGeneral},
	{Name: "red_eyes", Category: domain.CategoryGeneral},
	{Name: "green_eyes", Category: domain.CategoryGeneral},
	{Name: "smile", Category: domain.CategoryGeneral},
	{Name: "open_mouth", Category: domain.CategoryGeneral},
	{Name: "looking_at_viewer", Category: domain.CategoryGeneral},
	{Name: "school_uniform", Category: domain.CategoryGeneral},
	{Name: "dress", Category: domain.CategoryGeneral},
	{Name: "hat", Category: domain.CategoryGeneral},
	{Name: "gloves", Category: domain.CategoryGeneral},
	{Name: "twintails", Category: domain.CategoryGeneral},
	{Name: "ponytail", Category: domain.CategoryGeneral},
	{Name: "cat_ears", Category: domain.CategoryGeneral},
	{Name: "cat_tail", Category: domain.CategoryGeneral},
	{Name: "animal_ears", Category: domain.CategoryGeneral},
	{Name: "full_body", Category: domain.CategoryGeneral},
	{Name: "upper_body", Category: domain.CategoryGeneral},
	{Name: "outdoors", Category: domain.CategoryGeneral},
	{Name: "indoors", Category: domain.CategoryGeneral},
	{Name: "night", Category: domain.CategoryGeneral},
	{Name: "day", Category: domain.CategoryGeneral},
	{Name: "sky", Category: domain.CategoryGeneral},
	{Name: "cloud", Category: domain.CategoryGeneral},
	{Name: "water", Category: domain.CategoryGeneral},
	{Name: "flower", Category: domain.CategoryGeneral},
	{Name: "cherry_blossoms", Category: domain.CategoryGeneral},
	{Name: "masterpiece", Category: domain.CategoryMeta},
	{Name: "best_quality", Category: domain.CategoryMeta},
	{Name: "highres", Category: domain.CategoryMeta},
	{Name: "absurdres", Category: domain.CategoryMeta},
	{Name: "official_art", Category: domain.CategoryMeta},
	{Name: "original", Category: domain.CategoryCopyright},
	{Name: "hatsune_miku", Category: domain.CategoryCharacter},
	{Name: "hakurei_reimu", Category: domain.CategoryCharacter},
	{Name: "touhou", Category: domain.CategoryCopyright},
	{Name: "vocaloid", Category: domain.CategoryCopyright},
}

// IsBuiltin reports whether name collides with a built-in corpus entry.
func IsBuiltin(name string) bool {
	for _, t := range BuiltinCorpus {
		if t.Name == name {
			return true
		}
	}
	return false
}
