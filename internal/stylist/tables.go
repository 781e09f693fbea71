// Package stylist turns a single garment into a complete outfit: companion colours from
// a colour wheel, companion garment categories, compatible styles and, through a
// product searcher, concrete product suggestions for each companion category.
package stylist

import (
	"strings"

	"github.com/jmylchreest/drape/internal/catalog"
)

type wheelEntry struct {
	complementary []catalog.ColorTag
	analogous     []catalog.ColorTag
	neutral       []catalog.ColorTag
}

// Tables are never written after init.
var (
	colorWheel = map[catalog.ColorTag]wheelEntry{
		"red":    {tags("green", "teal"), tags("orange", "pink", "burgundy"), tags("black", "white", "grey")},
		"blue":   {tags("orange", "coral"), tags("purple", "teal", "navy"), tags("black", "white", "grey")},
		"green":  {tags("red", "pink"), tags("teal", "yellow"), tags("black", "white", "beige")},
		"yellow": {tags("purple"), tags("orange", "green"), tags("black", "white", "navy")},
		"purple": {tags("yellow", "gold"), tags("pink", "blue"), tags("black", "white", "grey")},
		"orange": {tags("blue", "navy"), tags("red", "yellow"), tags("black", "white", "brown")},
		"pink":   {tags("green"), tags("purple", "red", "coral"), tags("black", "white", "grey")},
		"black":  {tags("white", "gold", "silver"), tags("grey", "navy"), tags("white", "beige", "red")},
		"white":  {tags("black"), tags("cream", "ivory", "beige"), tags("black", "navy", "grey")},
		"brown":  {tags("blue", "teal"), tags("tan", "beige", "orange"), tags("white", "cream", "gold")},
		"beige":  {tags("navy", "brown"), tags("cream", "tan", "ivory"), tags("white", "black", "brown")},
		"navy":   {tags("coral", "orange"), tags("blue", "grey"), tags("white", "beige", "gold")},
		"grey":   {tags("yellow", "pink"), tags("black", "white", "navy"), tags("black", "white", "red")},
	}

	categoryAdjacency = map[catalog.CategoryTag][]catalog.CategoryTag{
		catalog.CategoryShoes:   {catalog.CategoryDress, catalog.CategoryBottom, catalog.CategoryTop, catalog.CategoryBag, catalog.CategoryJewelry},
		catalog.CategoryDress:   {catalog.CategoryShoes, catalog.CategoryBag, catalog.CategoryJewelry, catalog.CategoryAccessories},
		catalog.CategoryTop:     {catalog.CategoryBottom, catalog.CategoryShoes, catalog.CategoryBag, catalog.CategoryJewelry},
		catalog.CategoryBottom:  {catalog.CategoryTop, catalog.CategoryShoes, catalog.CategoryBag, catalog.CategoryJewelry},
		catalog.CategoryBag:     {catalog.CategoryDress, catalog.CategoryShoes, catalog.CategoryTop, catalog.CategoryJewelry},
		catalog.CategoryJewelry: {catalog.CategoryDress, catalog.CategoryTop, catalog.CategoryBag, catalog.CategoryShoes},
	}

	styleCompatibility = map[catalog.StyleTag][]catalog.StyleTag{
		catalog.StyleCasual:   {catalog.StyleCasual, catalog.StyleSporty, catalog.StyleBohemian},
		catalog.StyleFormal:   {catalog.StyleFormal, catalog.StyleClassic, catalog.StyleModern},
		catalog.StyleSporty:   {catalog.StyleSporty, catalog.StyleCasual},
		catalog.StyleBohemian: {catalog.StyleBohemian, catalog.StyleCasual, catalog.StyleVintage},
		catalog.StyleClassic:  {catalog.StyleClassic, catalog.StyleFormal, catalog.StyleModern},
		catalog.StyleModern:   {catalog.StyleModern, catalog.StyleClassic, catalog.StyleFormal},
		catalog.StyleVintage:  {catalog.StyleVintage, catalog.StyleBohemian, catalog.StyleClassic},
	}

	defaultPalette    = tags("black", "white", "beige")
	defaultCategories = []catalog.CategoryTag{catalog.CategoryDress, catalog.CategoryShoes, catalog.CategoryBag, catalog.CategoryJewelry}
	defaultStyles     = []catalog.StyleTag{catalog.StyleCasual}
)

func tags(names ...string) []catalog.ColorTag {
	out := make([]catalog.ColorTag, len(names))
	for i, n := range names {
		out[i] = catalog.ColorTag(n)
	}
	return out
}

// CompanionColors returns the outfit palette for base:
// [base, first complementary, first analogous, first two neutrals].
// An empty base yields [black white beige]; a colour missing from the wheel yields
// [base black white]. The base colour is kept as given; lookup is case-insensitive.
func CompanionColors(base catalog.ColorTag) []catalog.ColorTag {
	if strings.TrimSpace(string(base)) == "" {
		return append([]catalog.ColorTag(nil), defaultPalette...)
	}

	entry, ok := colorWheel[catalog.ParseColor(string(base))]
	if !ok {
		return []catalog.ColorTag{base, "black", "white"}
	}

	out := make([]catalog.ColorTag, 0, 5)
	out = append(out, base)
	out = append(out, firstN(entry.complementary, 1)...)
	out = append(out, firstN(entry.analogous, 1)...)
	out = append(out, firstN(entry.neutral, 2)...)
	return out
}

// CompanionCategories returns the categories that complete an outfit built around cat,
// or nil when cat has no adjacency entry.
func CompanionCategories(cat catalog.CategoryTag) []catalog.CategoryTag {
	c, ok := categoryAdjacency[cat]
	if !ok {
		return nil
	}
	return append([]catalog.CategoryTag(nil), c...)
}

// CompatibleStyles returns styles that pair with style, defaulting to [casual].
func CompatibleStyles(style catalog.StyleTag) []catalog.StyleTag {
	s, ok := styleCompatibility[style]
	if !ok {
		return append([]catalog.StyleTag(nil), defaultStyles...)
	}
	return append([]catalog.StyleTag(nil), s...)
}

// KnownColor reports whether c has an entry on the colour wheel.
func KnownColor(c catalog.ColorTag) bool {
	_, ok := colorWheel[catalog.ParseColor(string(c))]
	return ok
}

func firstN[T any](s []T, n int) []T {
	if len(s) < n {
		n = len(s)
	}
	return s[:n]
}
