package stylist

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/drape/internal/catalog"
	"github.com/jmylchreest/drape/internal/search"
)

const (
	// DefaultSearchTimeout bounds each per-category search.
	DefaultSearchTimeout = 10 * time.Second
	// DefaultMaxCategories is the number of companion categories searched.
	DefaultMaxCategories = 4
	// DefaultPerCategory caps suggestions kept per category.
	DefaultPerCategory = 3
)

// OutfitSuggestion is the result of matching one base item.
type OutfitSuggestion struct {
	BaseItem     catalog.Product                           `json:"baseItem"`
	Suggestions  map[catalog.CategoryTag][]catalog.Product `json:"suggestions"`
	ColorPalette []catalog.ColorTag                        `json:"colorPalette"`
	StyleGuide   []catalog.StyleTag                        `json:"styleGuide"`
}

// Matcher builds outfit suggestions around a base item.
type Matcher struct {
	searcher      search.Searcher
	logger        hclog.Logger
	rng           *rand.Rand
	timeout       time.Duration
	maxCategories int
	perCategory   int
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithLogger sets the logger used to report per-category failures.
func WithLogger(l hclog.Logger) Option {
	return func(m *Matcher) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithRand sets the random source used to pick the query colour.
func WithRand(r *rand.Rand) Option {
	return func(m *Matcher) {
		if r != nil {
			m.rng = r
		}
	}
}

// WithSearchTimeout bounds each category search. Zero disables the bound.
func WithSearchTimeout(d time.Duration) Option {
	return func(m *Matcher) { m.timeout = d }
}

// WithMaxCategories sets how many companion categories are searched.
func WithMaxCategories(n int) Option {
	return func(m *Matcher) {
		if n > 0 {
			m.maxCategories = n
		}
	}
}

// WithPerCategory sets how many products are kept per category.
func WithPerCategory(n int) Option {
	return func(m *Matcher) {
		if n > 0 {
			m.perCategory = n
		}
	}
}

// NewMatcher returns a Matcher that finds candidates through s.
func NewMatcher(s search.Searcher, opts ...Option) *Matcher {
	now := uint64(time.Now().UnixNano()) // #nosec G115 - seed only
	m := &Matcher{
		searcher:      s,
		logger:        hclog.NewNullLogger(),
		rng:           rand.New(rand.NewPCG(now, now>>1)),
		timeout:       DefaultSearchTimeout,
		maxCategories: DefaultMaxCategories,
		perCategory:   DefaultPerCategory,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.Named("matcher")
	return m
}

// TargetCategories returns the categories searched for base, capped at the configured maximum.
func (m *Matcher) TargetCategories(base catalog.CategoryTag) []catalog.CategoryTag {
	targets := CompanionCategories(base)
	if targets == nil {
		targets = append([]catalog.CategoryTag(nil), defaultCategories...)
	}
	return firstN(targets, m.maxCategories)
}

type categoryQuery struct {
	category catalog.CategoryTag
	query    string
}

// Queries returns the search query for each target category of base. The colour term
// is drawn from the matcher's random source, so successive calls may differ.
func (m *Matcher) Queries(base catalog.Product) map[catalog.CategoryTag]string {
	out := map[catalog.CategoryTag]string{}
	for _, q := range m.plan(base, CompanionColors(base.Color), CompatibleStyles(base.Style)) {
		out[q.category] = q.query
	}
	return out
}

// plan draws all random picks up front; rand.Rand is not safe for concurrent use.
func (m *Matcher) plan(base catalog.Product, palette []catalog.ColorTag, styles []catalog.StyleTag) []categoryQuery {
	targets := m.TargetCategories(base.Category)
	plans := make([]categoryQuery, 0, len(targets))
	for _, target := range targets {
		plans = append(plans, categoryQuery{
			category: target,
			query:    buildQuery(target, m.pickColor(palette), base.Style, styles),
		})
	}
	return plans
}

func (m *Matcher) pickColor(palette []catalog.ColorTag) catalog.ColorTag {
	n := min(len(palette), 3)
	if n == 0 {
		return ""
	}
	return palette[m.rng.IntN(n)]
}

// Match resolves palette, style guide and per-category suggestions for base. It never
// fails: a category whose search errors, times out or returns nothing is omitted.
func (m *Matcher) Match(ctx context.Context, base catalog.Product) OutfitSuggestion {
	palette := CompanionColors(base.Color)
	styles := CompatibleStyles(base.Style)
	plans := m.plan(base, palette, styles)

	results := make([][]catalog.Product, len(plans))
	var wg sync.WaitGroup
	for i, p := range plans {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = m.searchCategory(ctx, p)
		}()
	}
	wg.Wait()

	suggestions := make(map[catalog.CategoryTag][]catalog.Product, len(plans))
	for i, p := range plans {
		if len(results[i]) > 0 {
			suggestions[p.category] = results[i]
		}
	}

	return OutfitSuggestion{
		BaseItem:     base,
		Suggestions:  suggestions,
		ColorPalette: palette,
		StyleGuide:   styles,
	}
}

func (m *Matcher) searchCategory(ctx context.Context, p categoryQuery) (out []catalog.Product) {
	logger := m.logger.With("category", p.category, "query", p.query)
	defer func() {
		if r := recover(); r != nil {
			logger.Error("search panicked", "panic", fmt.Sprint(r))
			out = nil
		}
	}()

	products, err := search.WithTimeout(m.searcher, m.timeout).Search(ctx, p.query, "")
	if err != nil {
		logger.Warn("failed to find products", "error", err)
		return nil
	}
	logger.Debug("search complete", "results", len(products))
	return rankCandidates(products, p.category, m.perCategory)
}

// rankCandidates keeps products that belong to target, up to limit. When none do, it
// falls back to the first limit raw results so a non-empty search always shows something.
func rankCandidates(products []catalog.Product, target catalog.CategoryTag, limit int) []catalog.Product {
	var matched []catalog.Product
	for _, p := range products {
		if len(matched) == limit {
			break
		}
		if p.Category == target || titleMatches(p.Title, target) {
			matched = append(matched, p)
		}
	}
	if len(matched) > 0 {
		return matched
	}
	return append([]catalog.Product(nil), firstN(products, limit)...)
}

var matchKeywords = map[catalog.CategoryTag][]string{
	catalog.CategoryDress:       {"dress", "gown", "maxi", "mini"},
	catalog.CategoryTop:         {"blouse", "shirt", "top", "sweater", "cardigan"},
	catalog.CategoryBottom:      {"pants", "jeans", "skirt", "shorts", "trousers"},
	catalog.CategoryShoes:       {"shoes", "heels", "boots", "sneakers", "sandals", "pumps"},
	catalog.CategoryBag:         {"bag", "purse", "handbag", "clutch", "tote"},
	catalog.CategoryJewelry:     {"necklace", "earrings", "bracelet", "ring", "jewelry"},
	catalog.CategoryAccessories: {"scarf", "belt", "hat", "sunglasses"},
}

func titleMatches(title string, target catalog.CategoryTag) bool {
	keywords, ok := matchKeywords[target]
	if !ok {
		keywords = []string{string(target)}
	}
	lower := strings.ToLower(title)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

var queryPhrases = map[catalog.CategoryTag]string{
	catalog.CategoryDress:       "women dress",
	catalog.CategoryTop:         "women blouse top",
	catalog.CategoryBottom:      "women pants skirt",
	catalog.CategoryShoes:       "women shoes heels",
	catalog.CategoryBag:         "women handbag purse",
	catalog.CategoryJewelry:     "women jewelry necklace",
	catalog.CategoryAccessories: "women accessories scarf",
}

// buildQuery renders "<colour> <style> <category phrase>", skipping empty terms.
func buildQuery(target catalog.CategoryTag, color catalog.ColorTag, baseStyle catalog.StyleTag, styles []catalog.StyleTag) string {
	phrase, ok := queryPhrases[target]
	if !ok {
		phrase = "women " + string(target)
	}
	style := baseStyle
	if style == "" && len(styles) > 0 {
		style = styles[0]
	}

	parts := make([]string, 0, 3)
	for _, s := range []string{string(color), string(style), phrase} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}
