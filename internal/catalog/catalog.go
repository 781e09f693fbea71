// Package catalog defines the product model shared by search providers, the stylist
// and the wardrobe, along with the keyword classifier that derives category, colour
// and style tags from free-text product titles.
package catalog

import "strings"

// CategoryTag identifies the garment category of a product.
type CategoryTag string

// Garment categories.
const (
	CategoryDress       CategoryTag = "dress"
	CategoryTop         CategoryTag = "top"
	CategoryBottom      CategoryTag = "bottom"
	CategoryShoes       CategoryTag = "shoes"
	CategoryBag         CategoryTag = "bag"
	CategoryJewelry     CategoryTag = "jewelry"
	CategoryAccessories CategoryTag = "accessories"
	CategoryClothing    CategoryTag = "clothing"
)

// Categories returns every category tag in classifier priority order, followed by the default.
func Categories() []CategoryTag {
	return []CategoryTag{
		CategoryDress, CategoryTop, CategoryBottom, CategoryShoes,
		CategoryBag, CategoryJewelry, CategoryAccessories, CategoryClothing,
	}
}

// ParseCategory normalises s into a CategoryTag. Unknown values are returned as-is in
// lower case so that callers can still pass them to lookups that degrade gracefully.
func ParseCategory(s string) CategoryTag {
	return CategoryTag(strings.ToLower(strings.TrimSpace(s)))
}

// Known reports whether c is one of the defined categories.
func (c CategoryTag) Known() bool {
	for _, k := range Categories() {
		if c == k {
			return true
		}
	}
	return false
}

// StyleTag identifies the style of a product.
type StyleTag string

// Styles.
const (
	StyleCasual   StyleTag = "casual"
	StyleFormal   StyleTag = "formal"
	StyleSporty   StyleTag = "sporty"
	StyleBohemian StyleTag = "bohemian"
	StyleClassic  StyleTag = "classic"
	StyleModern   StyleTag = "modern"
	StyleVintage  StyleTag = "vintage"
)

// Styles returns every style tag in classifier priority order.
func Styles() []StyleTag {
	return []StyleTag{
		StyleCasual, StyleFormal, StyleSporty, StyleBohemian,
		StyleClassic, StyleModern, StyleVintage,
	}
}

// ParseStyle normalises s into a StyleTag.
func ParseStyle(s string) StyleTag {
	return StyleTag(strings.ToLower(strings.TrimSpace(s)))
}

// ColorTag is a lower-case colour name. The empty string means no colour is known.
type ColorTag string

// ParseColor normalises s into a ColorTag.
func ParseColor(s string) ColorTag {
	return ColorTag(strings.ToLower(strings.TrimSpace(s)))
}

// Palette returns the named colours the classifier recognises, in match order.
func Palette() []ColorTag {
	out := make([]ColorTag, len(colorTerms))
	copy(out, colorTerms)
	return out
}

// Product is a single catalog entry. Category, Color and Style are derived from the
// title unless the upstream feed supplied them, so they are hints rather than facts.
type Product struct {
	ID            string      `json:"id"`
	Title         string      `json:"title"`
	Price         string      `json:"price"`
	OriginalPrice string      `json:"originalPrice,omitempty"`
	ImageURL      string      `json:"image"`
	ImageURLs     []string    `json:"images,omitempty"`
	Rating        float64     `json:"rating,omitempty"`
	ReviewCount   int         `json:"reviewCount,omitempty"`
	PurchaseURL   string      `json:"url"`
	Category      CategoryTag `json:"category"`
	Color         ColorTag    `json:"color,omitempty"`
	Style         StyleTag    `json:"style"`
}

// Analyze returns a copy of p with any missing derived tags filled from its title.
// Tags already present are left untouched.
func Analyze(p Product) Product {
	tags := Classify(p.Title)
	if p.Category == "" {
		p.Category = tags.Category
	}
	if p.Color == "" {
		p.Color = tags.Color
	}
	if p.Style == "" {
		p.Style = tags.Style
	}
	return p
}
