package catalog

import "strings"

// Tags holds the tags derived from a product title.
type Tags struct {
	Category CategoryTag `json:"category"`
	Color    ColorTag    `json:"color,omitempty"`
	Style    StyleTag    `json:"style"`
}

type keywordRule[T any] struct {
	tag      T
	keywords []string
}

// Rules are checked in order; the first rule with a matching keyword wins.
var categoryRules = []keywordRule[CategoryTag]{
	{CategoryDress, []string{"dress", "gown", "maxi", "mini dress"}},
	{CategoryTop, []string{"blouse", "shirt", "top", "tee", "t-shirt", "sweater", "cardigan"}},
	{CategoryBottom, []string{"pants", "jeans", "skirt", "shorts", "trousers"}},
	{CategoryShoes, []string{"shoes", "heels", "boots", "sneakers", "sandals", "flats", "pumps"}},
	{CategoryBag, []string{"bag", "purse", "handbag", "clutch", "tote", "backpack"}},
	{CategoryJewelry, []string{"necklace", "earrings", "bracelet", "ring", "jewelry"}},
	{CategoryAccessories, []string{"scarf", "belt", "hat", "sunglasses", "watch"}},
}

var colorTerms = []ColorTag{
	"black", "white", "red", "blue", "navy", "green", "yellow", "orange",
	"purple", "pink", "brown", "beige", "grey", "gray", "gold", "silver",
	"burgundy", "teal", "coral", "cream", "ivory", "nude", "tan",
}

var styleRules = []keywordRule[StyleTag]{
	{StyleCasual, []string{"casual", "everyday", "relaxed", "comfortable"}},
	{StyleFormal, []string{"formal", "elegant", "evening", "cocktail", "gala"}},
	{StyleSporty, []string{"athletic", "sport", "workout", "gym", "running"}},
	{StyleBohemian, []string{"boho", "bohemian", "hippie", "festival"}},
	{StyleClassic, []string{"classic", "timeless", "traditional"}},
	{StyleModern, []string{"modern", "contemporary", "minimalist"}},
	{StyleVintage, []string{"vintage", "retro", "antique"}},
}

// Classify derives category, colour and style tags from a product title using
// case-insensitive substring matching. It never fails: unmatched titles yield
// CategoryClothing, no colour and StyleCasual.
func Classify(title string) Tags {
	lower := strings.ToLower(title)
	return Tags{
		Category: firstMatch(lower, categoryRules, CategoryClothing),
		Color:    ClassifyColor(lower),
		Style:    firstMatch(lower, styleRules, StyleCasual),
	}
}

// ClassifyCategory returns the category for title.
func ClassifyCategory(title string) CategoryTag {
	return firstMatch(strings.ToLower(title), categoryRules, CategoryClothing)
}

// ClassifyColor returns the first palette colour mentioned in title, or "".
func ClassifyColor(title string) ColorTag {
	lower := strings.ToLower(title)
	for _, c := range colorTerms {
		if strings.Contains(lower, string(c)) {
			return c
		}
	}
	return ""
}

// ClassifyStyle returns the style for title.
func ClassifyStyle(title string) StyleTag {
	return firstMatch(strings.ToLower(title), styleRules, StyleCasual)
}

func firstMatch[T any](lower string, rules []keywordRule[T], def T) T {
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return r.tag
			}
		}
	}
	return def
}
