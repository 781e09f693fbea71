package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/drape/internal/colour"
	imageutil "github.com/jmylchreest/drape/internal/image"
	"github.com/jmylchreest/drape/internal/util/imagecache"
)

var (
	// Extract command flags
	extractColours   int
	extractAlgorithm string
	extractJSON      bool
	extractCache     bool

	layoutJSON bool
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <image>",
	Short: "Extract a colour palette from an inspiration image",
	Long: `Extract the dominant colours of an image, with the nearest named colour for
each. The first colour is the suggested pin background.

The image may be a local file, an http(s) URL or a data URL. Images that cannot
be decoded produce a neutral fallback palette.

Supported image formats: JPEG, PNG, GIF, WebP

Examples:
  drape extract inspiration.jpg
  drape extract --algorithm kmeans --colours 8 inspiration.png
  drape extract --cache --json https://example.com/look.jpg`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

var layoutCmd = &cobra.Command{
	Use:   "layout <image>",
	Short: "Suggest a pin layout from an image's shape",
	Long: `Classify an image as horizontal, vertical or centred from its aspect ratio.

Examples:
  drape layout inspiration.jpg`,
	Args: cobra.ExactArgs(1),
	RunE: runLayout,
}

func init() {
	extractCmd.Flags().IntVarP(&extractColours, "colours", "c", colour.MaxDistinct, "maximum number of colours")
	extractCmd.Flags().StringVarP(&extractAlgorithm, "algorithm", "a", string(colour.AlgorithmQuantize), "extraction algorithm (quantize, kmeans)")
	extractCmd.Flags().BoolVar(&extractJSON, "json", false, "output JSON")
	extractCmd.Flags().BoolVar(&extractCache, "cache", false, "keep downloaded images in the cache directory")

	layoutCmd.Flags().BoolVar(&layoutJSON, "json", false, "output JSON")
}

func newLoader(cache bool) (*imageutil.SmartLoader, error) {
	loader := imageutil.NewSmartLoader()
	loader.Timeout = 30 * time.Second
	if cache {
		dir, err := imagecache.DefaultCacheDir()
		if err != nil {
			return nil, err
		}
		loader.CacheDir = dir
	}
	return loader, nil
}

// runExtract executes the extract command.
func runExtract(cmd *cobra.Command, args []string) error {
	config := colour.ExtractorConfig{
		Algorithm:  colour.Algorithm(extractAlgorithm),
		ColorCount: extractColours,
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	extractor, err := colour.NewExtractor(config.Algorithm)
	if err != nil {
		return fmt.Errorf("failed to create extractor: %w", err)
	}
	loader, err := newLoader(extractCache)
	if err != nil {
		return err
	}

	palette := colour.PaletteFromHex(colour.FallbackPalette())
	layout := colour.DefaultLayout()
	img, err := loader.Decode(cmd.Context(), args[0])
	if err != nil {
		logger.Warn("image could not be decoded, using fallback palette", "image", args[0], "error", err)
	} else {
		b := img.Bounds()
		logger.Debug("image loaded", "width", b.Dx(), "height", b.Dy(), "algorithm", config.Algorithm)
		if p, err := extractor.Extract(img, config.ColorCount); err != nil {
			logger.Warn("extraction failed, using fallback palette", "error", err)
		} else {
			palette = p
		}
		layout = colour.LayoutOf(img)
	}
	logger.Debug("palette ready", "colours", palette.Len())

	hexes := palette.ToHex()
	bg := colour.BackgroundChoice(hexes)
	out := cmd.OutOrStdout()
	if extractJSON {
		detail, err := palette.ToJSON()
		if err != nil {
			return fmt.Errorf("failed to encode palette: %w", err)
		}
		return writeJSON(out, map[string]any{
			"colors":     hexes,
			"names":      colour.NearestNames(hexes),
			"palette":    json.RawMessage(detail),
			"background": bg,
			"textColor":  colour.TextColourFor(bg),
			"layout":     layout,
		})
	}
	for i, c := range palette.All() {
		line := colour.FormatSwatch(out, colour.ToRGB(c).Hex())
		if i < len(palette.Weights) {
			line += fmt.Sprintf("  %3.0f%%", palette.Weights[i]*100)
		}
		fmt.Fprintln(out, line)
	}
	info(cmd, "\nBackground: %s (text %s)", bg, colour.TextColourFor(bg))
	if rgb, err := colour.ParseHex(bg); err == nil && colour.IsTerminal(out) {
		fmt.Fprintln(out, colour.ColourPreviewWithText(rgb, " Aa", 12))
	}
	return nil
}

func runLayout(cmd *cobra.Command, args []string) error {
	loader, err := newLoader(false)
	if err != nil {
		return err
	}
	layout := colour.AnalyzeLayout(cmd.Context(), loader, args[0])

	out := cmd.OutOrStdout()
	if layoutJSON {
		return writeJSON(out, layout)
	}
	fmt.Fprintf(out, "Layout:       %s\n", layout.Layout)
	fmt.Fprintf(out, "Aspect ratio: %.2f\n", layout.AspectRatio)
	return nil
}
