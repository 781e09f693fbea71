package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/drape/internal/catalog"
	"github.com/jmylchreest/drape/internal/colour"
	"github.com/jmylchreest/drape/internal/stylist"
)

var (
	// Search command flags
	searchCategory string
	searchPlugin   string
	searchCatalog  string
	searchLimit    int
	searchRaw      bool
	searchJSON     bool

	// Outfit command flags
	outfitJSON        bool
	outfitWear        bool
	outfitCategories  int
	outfitPerCategory int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search for products",
	Long: `Search for products with the configured provider.

Style words in the query are expanded ("elegant" also searches "sophisticated
classy") and designer references are rewritten ("inspired by gucci" becomes
"gucci style"). Use --raw to send the query unchanged.

Examples:
  drape search "elegant black dress"
  drape search --category shoes "silver heels"
  drape search --catalog ./catalog.json --json boots
  drape search --plugin ./drape-catalog "linen shirt"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

var classifyCmd = &cobra.Command{
	Use:   "classify <title>",
	Short: "Derive category, colour and style tags from a product title",
	Long: `Classify a product title the way search results are tagged, and list the
companion colours, categories and styles an outfit would be built from.

Examples:
  drape classify "Navy High Waist Jeans"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClassify,
}

var outfitCmd = &cobra.Command{
	Use:   "outfit <title>",
	Short: "Build a complete outfit around an item",
	Long: `Search for pieces that complete an outfit around a base item. Companion
categories, colours and styles are chosen from the item's tags, and each
category is searched in parallel.

Examples:
  drape outfit "Black Elegant Cocktail Dress"
  drape outfit --wear "White Linen Shirt"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runOutfit,
}

func init() {
	for _, cmd := range []*cobra.Command{searchCmd, outfitCmd} {
		cmd.Flags().StringVar(&searchPlugin, "plugin", "", "search provider plugin executable")
		cmd.Flags().StringVar(&searchCatalog, "catalog", "", "search a local JSON catalog")
		cmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum results per search (0: provider default)")
	}
	searchCmd.Flags().StringVarP(&searchCategory, "category", "c", "", "restrict results to a category")
	searchCmd.Flags().BoolVar(&searchRaw, "raw", false, "send the query without enhancement")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output JSON")

	outfitCmd.Flags().BoolVar(&outfitJSON, "json", false, "output JSON")
	outfitCmd.Flags().BoolVar(&outfitWear, "wear", false, "put the base item and first suggestions on the avatar")
	outfitCmd.Flags().IntVar(&outfitCategories, "categories", stylist.DefaultMaxCategories, "companion categories to search")
	outfitCmd.Flags().IntVar(&outfitPerCategory, "per-category", stylist.DefaultPerCategory, "suggestions kept per category")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	query := strings.Join(args, " ")
	if !searchRaw {
		query = stylist.EnhanceQuery(query)
	}
	logger.Debug("searching", "query", query, "category", searchCategory)

	backend, err := openSearch(ctx, searchPlugin, searchCatalog, searchLimit)
	if err != nil {
		return err
	}
	defer backend.close()

	products, err := backend.searcher.Search(ctx, query, searchCategory)
	if err != nil {
		return fmt.Errorf("failed to search products: %w", err)
	}
	if products == nil {
		products = []catalog.Product{}
	}

	out := cmd.OutOrStdout()
	if searchJSON {
		return writeJSON(out, map[string]any{
			"products":      products,
			"originalQuery": strings.Join(args, " "),
			"searchQuery":   query,
		})
	}
	if len(products) == 0 {
		info(cmd, "No products found for %q", query)
		return nil
	}
	fmt.Fprint(out, productTable(products).Render())
	return nil
}

func runClassify(cmd *cobra.Command, args []string) error {
	item := catalog.Analyze(catalog.Product{Title: strings.Join(args, " ")})

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Category: %s\n", item.Category)
	if hex, ok := colour.SwatchHex(item.Color); ok {
		fmt.Fprintf(out, "Colour:   %s (%s)\n", item.Color, hex)
	} else {
		fmt.Fprintf(out, "Colour:   %s\n", orDash(string(item.Color)))
	}
	fmt.Fprintf(out, "Style:    %s\n", item.Style)
	companions := joinTags(stylist.CompanionColors(item.Color))
	if item.Color != "" && !stylist.KnownColor(item.Color) {
		companions += " (not on the colour wheel)"
	}
	fmt.Fprintf(out, "\nCompanion colours:    %s\n", companions)
	fmt.Fprintf(out, "Companion categories: %s\n", joinTags(stylist.CompanionCategories(item.Category)))
	fmt.Fprintf(out, "Compatible styles:    %s\n", joinTags(stylist.CompatibleStyles(item.Style)))
	return nil
}

func runOutfit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	base := catalog.Analyze(catalog.Product{Title: strings.Join(args, " ")})

	backend, err := openSearch(ctx, searchPlugin, searchCatalog, searchLimit)
	if err != nil {
		return err
	}
	defer backend.close()

	matcher := stylist.NewMatcher(backend.searcher,
		stylist.WithLogger(logger.Named("matcher")),
		stylist.WithMaxCategories(outfitCategories),
		stylist.WithPerCategory(outfitPerCategory),
	)
	suggestion := matcher.Match(ctx, base)

	if outfitWear {
		if err := wearOutfit(cmd, suggestion); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if outfitJSON {
		return writeJSON(out, suggestion)
	}

	fmt.Fprintf(out, "Base item: %s (%s, %s, %s)\n", base.Title, base.Category, orDash(string(base.Color)), base.Style)
	fmt.Fprintf(out, "Palette:   %s\n", joinTags(suggestion.ColorPalette))
	fmt.Fprintf(out, "Styles:    %s\n", joinTags(suggestion.StyleGuide))
	if len(suggestion.Suggestions) == 0 {
		info(cmd, "\nNo suggestions found.")
		return nil
	}
	for _, category := range matcher.TargetCategories(base.Category) {
		products, ok := suggestion.Suggestions[category]
		if !ok {
			continue
		}
		fmt.Fprintf(out, "\n%s\n", strings.ToUpper(string(category)))
		fmt.Fprint(out, productTable(products).Render())
	}
	return nil
}

func productTable(products []catalog.Product) *Table {
	t := NewTable([]string{"ID", "TITLE", "PRICE", "CATEGORY", "COLOUR", "STYLE"})
	t.SetColumnMaxWidth(1, 50)
	for _, p := range products {
		t.AddRow([]string{p.ID, p.Title, orDash(p.Price), string(p.Category), orDash(string(p.Color)), string(p.Style)})
	}
	return t
}

func joinTags[T ~string](tags []T) string {
	if len(tags) == 0 {
		return "-"
	}
	parts := make([]string, len(tags))
	for i, t := range tags {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
