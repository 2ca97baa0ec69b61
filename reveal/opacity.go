package reveal

import "github.com/TFMV/neongraph/models"

// DimOpacity is applied to enabled elements that do not match the
// highlighted legend category.
const DimOpacity = 0.2

// Categories is a set of enabled categories. Central is always a member.
type Categories map[models.Category]bool

// NewCategories returns the set holding only Central.
func NewCategories() Categories {
	return Categories{models.CategoryCentral: true}
}

// Has reports whether c is enabled.
func (cs Categories) Has(c models.Category) bool {
	return c == models.CategoryCentral || cs[c]
}

// Visible reports whether an element of category c is drawn at all.
// Tracks follow their parent degree category.
func (cs Categories) Visible(c models.Category) bool {
	switch c {
	case models.CategoryCentral:
		return true
	case models.CategoryTrack:
		return cs.Has(models.CategoryDegree)
	default:
		return cs.Has(c)
	}
}

// Sorted returns the enabled categories in enum order.
func (cs Categories) Sorted() []models.Category {
	var out []models.Category
	for _, c := range []models.Category{
		models.CategoryCentral,
		models.CategoryDegree,
		models.CategoryInternal,
		models.CategoryExternal,
	} {
		if cs.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// Opacity computes the draw opacity of a node (one category) or a link
// (two categories) given the enabled set and the hover-highlighted legend
// category, if any.
//
// A disabled category yields 0 regardless of hover. With no highlight
// every enabled element is opaque. With a highlight, central nodes stay
// opaque, elements of the highlighted category (tracks count as degree)
// are opaque, links are opaque when either endpoint matches, and the rest
// are dimmed.
func Opacity(enabled Categories, hovered *models.Category, cats ...models.Category) float64 {
	if len(cats) == 0 {
		return 0
	}
	for _, c := range cats {
		if !enabled.Visible(c) {
			return 0
		}
	}
	if hovered == nil {
		return 1
	}
	if len(cats) == 1 && cats[0] == models.CategoryCentral {
		return 1
	}
	for _, c := range cats {
		if matches(c, *hovered) {
			return 1
		}
	}
	return DimOpacity
}

func matches(c, hovered models.Category) bool {
	if c == hovered {
		return true
	}
	return c == models.CategoryTrack && hovered == models.CategoryDegree
}
