package storage

import "strings"

// Category is the closed set of activity kinds a record can carry.
type Category string

const (
	CategoryWork     Category = "work"
	CategoryStudy    Category = "study"
	CategoryLeisure  Category = "leisure"
	CategoryExercise Category = "exercise"
	CategorySocial   Category = "social"
	CategoryLife     Category = "life"
	CategoryOther    Category = "other"
)

// Categories lists every valid category in display order.
func Categories() []Category {
	return []Category{
		CategoryWork, CategoryStudy, CategoryLeisure, CategoryExercise,
		CategorySocial, CategoryLife, CategoryOther,
	}
}

// categoryAliases maps the classifier's localized labels onto the set.
var categoryAliases = map[string]Category{
	"工作": CategoryWork,
	"学习": CategoryStudy,
	"娱乐": CategoryLeisure,
	"运动": CategoryExercise,
	"社交": CategorySocial,
	"生活": CategoryLife,
	"其他": CategoryOther,
}

// ParseCategory resolves a category name or localized alias. Matching
// ignores case and surrounding space.
func ParseCategory(s string) (Category, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	if c := Category(key); c.Valid() {
		return c, true
	}
	c, ok := categoryAliases[key]
	return c, ok
}

// NormalizeCategory maps s into the closed set; anything unrecognized
// becomes CategoryOther.
func NormalizeCategory(s string) Category {
	if c, ok := ParseCategory(s); ok {
		return c
	}
	return CategoryOther
}

// Valid reports whether c is a member of the closed set.
func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}
