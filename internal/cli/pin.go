package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/drape/internal/colour"
	imageutil "github.com/jmylchreest/drape/internal/image"
	"github.com/jmylchreest/drape/internal/pin"
)

var (
	pinScenePath string

	// pin new
	pinNewBackground string
	pinNewImages     []string
	pinNewText       string

	// pin add-image
	pinRemoveBG bool

	// pin select
	pinSelectNone bool

	// pin style
	pinFont     string
	pinFontSize float64
	pinColor    string
	pinAlign    string
	pinText     string

	// pin transform
	pinX      float64
	pinY      float64
	pinScale  float64
	pinRotate float64

	// pin background
	pinFromImage string

	// pin render
	pinOutput    string
	pinAesthetic string
	pinPublish   string

	// pin caption / ideas / generate
	pinJSON    bool
	pinContext string
	pinOffline bool
	pinAdd     bool
)

var pinCmd = &cobra.Command{
	Use:   "pin",
	Short: "Compose a 2:3 pin from images, text and shapes",
	Long: `Compose a Pinterest-style pin one step at a time. The pin being edited is
kept in scene.json in the data directory (or --scene) between commands.

New elements are selected when added; style, transform, forward, backward
and delete act on the selected element.

Examples:
  drape pin new --background cream --image look.jpg --text "Golden hour"
  drape pin add-shape circle
  drape pin style --color '#c026d3'
  drape pin render -o pin.png`,
}

var pinNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Start a new pin, discarding the current one",
	Args:  cobra.NoArgs,
	RunE:  runPinNew,
}

var pinShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List the elements of the pin, bottom to top",
	Args:  cobra.NoArgs,
	RunE:  runPinShow,
}

var pinAddImageCmd = &cobra.Command{
	Use:   "add-image <image>",
	Short: "Add an image, scaled to fit 200x200 in the centre",
	Long: `Add an image from a file, URL or data URL. With --remove-bg the background is
removed first (requires CLOUDINARY_URL) and the cut-out is stored in the data
directory.`,
	Args: cobra.ExactArgs(1),
	RunE: runPinAddImage,
}

var pinAddTextCmd = &cobra.Command{
	Use:   "add-text [text]",
	Short: "Add a text box",
	RunE: func(cmd *cobra.Command, args []string) error {
		return editPin(cmd, pin.AddElement{Kind: pin.KindText, Content: strings.Join(args, " ")})
	},
}

var pinAddShapeCmd = &cobra.Command{
	Use:       "add-shape <rect|circle|triangle|line>",
	Short:     "Add a shape",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"rect", "circle", "triangle", "line"},
	RunE: func(cmd *cobra.Command, args []string) error {
		shape, err := pin.ParseShape(args[0])
		if err != nil {
			return err
		}
		return editPin(cmd, pin.AddElement{Kind: pin.KindShape, Shape: shape})
	},
}

var pinSelectCmd = &cobra.Command{
	Use:   "select [id]",
	Short: "Select an element by id or unique id prefix",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPinSelect,
}

var pinStyleCmd = &cobra.Command{
	Use:   "style",
	Short: "Change the selected element's style",
	Long: `Change the selected element's style. Text takes font, size, colour, alignment
and content; shapes take a colour, which is the stroke of a line and the fill
of anything else. Images take no style.`,
	Args: cobra.NoArgs,
	RunE: runPinStyle,
}

var pinTransformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Move, resize or rotate the selected element",
	Args:  cobra.NoArgs,
	RunE:  runPinTransform,
}

var pinForwardCmd = &cobra.Command{
	Use:   "forward",
	Short: "Bring the selected element one step forward",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return editPin(cmd, pin.Reorder{Direction: pin.Forward})
	},
}

var pinBackwardCmd = &cobra.Command{
	Use:   "backward",
	Short: "Send the selected element one step backward",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return editPin(cmd, pin.Reorder{Direction: pin.Backward})
	},
}

var pinDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the selected element",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return editPin(cmd, pin.Delete{})
	},
}

var pinBackgroundCmd = &cobra.Command{
	Use:   "background [colour]",
	Short: "Set the canvas colour",
	Long: `Set the canvas colour to a hex value or a preset name (white, cream, blush,
lavender, sage, sky, peach, mint, sand, coral, navy, charcoal, burgundy,
forest, mustard, black). With --from-image the dominant colour of an
inspiration image is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPinBackground,
}

var pinRenderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the pin to PNG at 2x",
	Long: `Render the pin to a 1000x1500 PNG. With --publish the file is also uploaded
to Cloudinary or a Google Cloud Storage bucket and the public URL printed.`,
	Args: cobra.NoArgs,
	RunE: runPinRender,
}

var pinCaptionCmd = &cobra.Command{
	Use:   "caption [aesthetic]",
	Short: "Write a title, description and hashtags for the pin",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPinCaption,
}

var pinIdeasCmd = &cobra.Command{
	Use:   "ideas <aesthetic>",
	Short: "Suggest short overlay text for an aesthetic",
	Long: `Suggest short overlay text. Ideas are generated when GOOGLE_API_KEY is set,
otherwise (or with --offline) they come from a built-in list.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPinIdeas,
}

var pinGenerateCmd = &cobra.Command{
	Use:   "generate <aesthetic>",
	Short: "Generate an aesthetic background image",
	Long: `Generate a 2:3 background image for an aesthetic (requires GOOGLE_API_KEY).
Known aesthetics: ` + strings.Join(pin.Aesthetics(), ", ") + `.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPinGenerate,
}

func init() {
	pinCmd.PersistentFlags().StringVar(&pinScenePath, "scene", "", "scene file (default: <data-dir>/scene.json)")

	pinNewCmd.Flags().StringVarP(&pinNewBackground, "background", "b", "", "canvas colour (hex or preset)")
	pinNewCmd.Flags().StringArrayVarP(&pinNewImages, "image", "i", nil, "image to place (repeatable)")
	pinNewCmd.Flags().StringVarP(&pinNewText, "text", "t", "", "caption line near the bottom")

	pinAddImageCmd.Flags().BoolVar(&pinRemoveBG, "remove-bg", false, "remove the image background first")

	pinSelectCmd.Flags().BoolVar(&pinSelectNone, "none", false, "clear the selection")

	f := pinStyleCmd.Flags()
	f.StringVar(&pinFont, "font", "", "font family ("+strings.Join(pin.FontOptions, ", ")+")")
	f.Float64Var(&pinFontSize, "size", pin.DefaultFontSize, fmt.Sprintf("font size (%d-%d)", pin.MinFontSize, pin.MaxFontSize))
	f.StringVar(&pinColor, "color", "", "text, fill or stroke colour")
	f.StringVar(&pinAlign, "align", "", "text alignment (left, center, right)")
	f.StringVar(&pinText, "text", "", "replace the text content")

	f = pinTransformCmd.Flags()
	f.Float64Var(&pinX, "x", 0, "centre x")
	f.Float64Var(&pinY, "y", 0, "centre y")
	f.Float64Var(&pinScale, "scale", 1, "multiply the size")
	f.Float64Var(&pinRotate, "rotate", 0, "rotation in degrees")

	pinBackgroundCmd.Flags().StringVar(&pinFromImage, "from-image", "", "use the dominant colour of an image")

	pinRenderCmd.Flags().StringVarP(&pinOutput, "output", "o", "", "output file (default: pin-<aesthetic>-<time>.png)")
	pinRenderCmd.Flags().StringVar(&pinAesthetic, "aesthetic", "", "aesthetic used in the default file name")
	pinRenderCmd.Flags().StringVar(&pinPublish, "publish", "", "upload the rendered pin (cloudinary, gcs)")

	pinCaptionCmd.Flags().BoolVar(&pinJSON, "json", false, "output JSON")

	pinIdeasCmd.Flags().StringVar(&pinContext, "context", "", "what the pin is for")
	pinIdeasCmd.Flags().BoolVar(&pinOffline, "offline", false, "use the built-in suggestions")

	pinGenerateCmd.Flags().StringVarP(&pinOutput, "output", "o", "", "output file (default: <data-dir>/backgrounds/<aesthetic>-<time>.png)")
	pinGenerateCmd.Flags().BoolVar(&pinAdd, "add", false, "add the image to the bottom of the pin")

	pinCmd.AddCommand(pinNewCmd, pinShowCmd, pinAddImageCmd, pinAddTextCmd, pinAddShapeCmd,
		pinSelectCmd, pinStyleCmd, pinTransformCmd, pinForwardCmd, pinBackwardCmd, pinDeleteCmd,
		pinBackgroundCmd, pinRenderCmd, pinCaptionCmd, pinIdeasCmd, pinGenerateCmd)
}

func scenePath() (string, error) {
	if pinScenePath != "" {
		return pinScenePath, nil
	}
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, pin.SceneFilename), nil
}

// loadComposer opens the saved scene, or an empty one when none exists yet.
func loadComposer() (*pin.Composer, string, error) {
	path, err := scenePath()
	if err != nil {
		return nil, "", err
	}
	scene, err := pin.ReadScene(path)
	if errors.Is(err, fs.ErrNotExist) {
		scene = pin.NewScene()
	} else if err != nil {
		return nil, "", err
	}
	loader, err := newLoader(false)
	if err != nil {
		return nil, "", err
	}
	return pin.NewComposer(pin.WithScene(scene), pin.WithDecoder(loader)), path, nil
}

// editPin applies commands to the saved scene and writes it back.
func editPin(cmd *cobra.Command, cmds ...pin.Command) error {
	return withComposer(cmd, func(ctx context.Context, c *pin.Composer) error {
		return c.Apply(ctx, cmds...)
	})
}

func withComposer(cmd *cobra.Command, fn func(context.Context, *pin.Composer) error) error {
	c, path, err := loadComposer()
	if err != nil {
		return err
	}
	if err := fn(cmd.Context(), c); err != nil {
		return err
	}
	if err := pin.WriteScene(path, c.Scene()); err != nil {
		return err
	}
	if sel := c.Selected(); sel != nil {
		info(cmd, "Selected %s %s", sel.Kind, sel.ID)
	}
	return nil
}

// resolveColour accepts a hex colour or a preset name.
func resolveColour(s string) string {
	if c, ok := pin.PresetColor(strings.ToLower(s)); ok {
		return c
	}
	return s
}

func runPinNew(cmd *cobra.Command, _ []string) error {
	path, err := scenePath()
	if err != nil {
		return err
	}
	loader, err := newLoader(false)
	if err != nil {
		return err
	}
	bg := resolveColour(pinNewBackground)
	if bg != "" && !colour.IsHex(bg) {
		return fmt.Errorf("invalid background %q: use a hex colour or a preset name", pinNewBackground)
	}

	c := pin.NewComposer(pin.WithDecoder(loader))
	populateErr := c.Populate(cmd.Context(), bg, pinNewImages, pinNewText)
	if err := pin.WriteScene(path, c.Scene()); err != nil {
		return err
	}
	info(cmd, "Started a new pin with %d elements (%s)", len(c.Scene().Elements), path)
	if populateErr != nil {
		return fmt.Errorf("some images were not added: %w", populateErr)
	}
	return nil
}

func runPinShow(cmd *cobra.Command, _ []string) error {
	c, _, err := loadComposer()
	if err != nil {
		return err
	}
	scene := c.Scene()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Background: %s\n\n", scene.Background)
	if len(scene.Elements) == 0 {
		info(cmd, "No elements.")
		return nil
	}
	t := NewTable([]string{"", "ID", "KIND", "DETAIL", "POSITION", "SIZE"})
	t.SetColumnMaxWidth(3, 40)
	for _, e := range scene.Elements {
		marker := ""
		if e.ID == scene.Selected {
			marker = "*"
		}
		t.AddRow([]string{
			marker,
			e.ID,
			string(e.Kind),
			elementDetail(e),
			fmt.Sprintf("%.0f,%.0f", e.Transform.X, e.Transform.Y),
			fmt.Sprintf("%.0fx%.0f", e.Transform.Width, e.Transform.Height),
		})
	}
	fmt.Fprint(out, t.Render())
	return nil
}

func elementDetail(e pin.Element) string {
	switch e.Kind {
	case pin.KindImage:
		if imageutil.IsDataURL(e.Source) {
			return "data URL"
		}
		return e.Source
	case pin.KindText:
		return fmt.Sprintf("%q %s %.0fpx %s", e.Content, e.Font, e.FontSize, e.Fill)
	case pin.KindShape:
		if e.Shape == pin.ShapeLine {
			return fmt.Sprintf("%s %s", e.Shape, e.Stroke)
		}
		return fmt.Sprintf("%s %s", e.Shape, e.Fill)
	}
	return ""
}

func runPinAddImage(cmd *cobra.Command, args []string) error {
	src := args[0]
	if pinRemoveBG {
		cutout, err := removeBackground(cmd.Context(), src)
		if err != nil {
			return err
		}
		src = cutout
	}
	return editPin(cmd, pin.AddElement{Kind: pin.KindImage, Source: src})
}

// removeBackground sends src to the background remover and stores the cut-out
// PNG under the data directory, returning its path.
func removeBackground(ctx context.Context, src string) (string, error) {
	remover, err := openCloudinary()
	if err != nil {
		return "", fmt.Errorf("background removal: %w", err)
	}

	var data []byte
	if imageutil.IsDataURL(src) {
		data = []byte(src)
	} else {
		data, err = os.ReadFile(src) // #nosec G304 - image path is chosen by the user
		if err != nil {
			return "", fmt.Errorf("failed to read image: %w", err)
		}
	}

	png, err := remover.RemoveBackground(ctx, data)
	if err != nil {
		return "", err
	}
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return writeAsset(filepath.Join(dir, "cutouts"), uuid.NewString()+".png", png)
}

func writeAsset(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil { // #nosec G301
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil { // #nosec G306
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

func runPinSelect(cmd *cobra.Command, args []string) error {
	if pinSelectNone || len(args) == 0 {
		return editPin(cmd, pin.Select{})
	}
	c, _, err := loadComposer()
	if err != nil {
		return err
	}
	id, err := resolveElement(c.Scene(), args[0])
	if err != nil {
		return err
	}
	return editPin(cmd, pin.Select{ID: id})
}

// resolveElement expands a unique id prefix to the full element id.
func resolveElement(scene *pin.Scene, prefix string) (string, error) {
	var matches []string
	for _, id := range scene.Order() {
		if id == prefix {
			return id, nil
		}
		if strings.HasPrefix(id, prefix) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", pin.ErrUnknownElement, prefix)
	case 1:
		return matches[0], nil
	}
	return "", fmt.Errorf("id prefix %q matches %d elements", prefix, len(matches))
}

func runPinStyle(cmd *cobra.Command, _ []string) error {
	var style pin.Style
	flags := cmd.Flags()
	if flags.Changed("font") {
		style.Font = &pinFont
	}
	if flags.Changed("size") {
		style.FontSize = &pinFontSize
	}
	if flags.Changed("color") {
		c := resolveColour(pinColor)
		style.Color = &c
	}
	if flags.Changed("align") {
		align := pin.Alignment(pinAlign)
		style.Align = &align
	}

	return withComposer(cmd, func(ctx context.Context, c *pin.Composer) error {
		if c.Selected() == nil {
			return errors.New("nothing is selected")
		}
		if err := c.Apply(ctx, pin.UpdateStyle{Style: style}); err != nil {
			return err
		}
		if flags.Changed("text") && !c.SetSelectedText(pinText) {
			return errors.New("only text elements have text")
		}
		return nil
	})
}

func runPinTransform(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	return withComposer(cmd, func(_ context.Context, c *pin.Composer) error {
		sel := c.Selected()
		if sel == nil {
			return errors.New("nothing is selected")
		}
		if flags.Changed("x") || flags.Changed("y") {
			x, y := sel.Transform.X, sel.Transform.Y
			if flags.Changed("x") {
				x = pinX
			}
			if flags.Changed("y") {
				y = pinY
			}
			c.MoveSelected(x, y)
		}
		if flags.Changed("scale") {
			if _, err := c.ScaleSelected(pinScale); err != nil {
				return err
			}
		}
		if flags.Changed("rotate") {
			c.RotateSelected(pinRotate)
		}
		return nil
	})
}

func runPinBackground(cmd *cobra.Command, args []string) error {
	var bg string
	switch {
	case pinFromImage != "":
		loader, err := newLoader(false)
		if err != nil {
			return err
		}
		bg = colour.BackgroundChoice(colour.ExtractPalette(cmd.Context(), loader, pinFromImage))
	case len(args) == 1:
		bg = resolveColour(args[0])
	default:
		return errors.New("give a colour or --from-image")
	}
	if err := editPin(cmd, pin.SetBackground{Color: bg}); err != nil {
		return err
	}
	info(cmd, "Background set to %s", bg)
	return nil
}

func runPinRender(cmd *cobra.Command, _ []string) error {
	c, path, err := loadComposer()
	if err != nil {
		return err
	}
	loader, err := newLoader(false)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := c.Apply(cmd.Context(), pin.Export{Exporter: pin.NewPNGExporter(loader), Output: &buf}); err != nil {
		return err
	}
	if err := pin.WriteScene(path, c.Scene()); err != nil {
		return err
	}

	name := pin.ExportFilename(pinAesthetic, time.Now())
	output := pinOutput
	if output == "" {
		output = name
	}
	if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil { // #nosec G306
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	info(cmd, "Wrote %s", output)

	if pinPublish == "" {
		return nil
	}
	publisher, closeFn, err := openPublisher(cmd.Context(), pinPublish)
	if err != nil {
		return err
	}
	defer closeFn()
	url, err := publisher.Publish(cmd.Context(), filepath.Base(output), buf.Bytes(), "image/png")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), url)
	return nil
}

func runPinCaption(cmd *cobra.Command, args []string) error {
	var aesthetic string
	if len(args) == 1 {
		aesthetic = args[0]
	}
	caption := pin.NewCaptioner(nil).Caption(aesthetic)

	out := cmd.OutOrStdout()
	if pinJSON {
		return writeJSON(out, caption)
	}
	fmt.Fprintf(out, "%s\n\n%s\n", caption.Title, caption.Description)
	return nil
}

func runPinIdeas(cmd *cobra.Command, args []string) error {
	aesthetic := strings.Join(args, " ")
	out := cmd.OutOrStdout()

	var ideas []string
	gen, err := openGenerator(cmd.Context())
	if err == nil && !pinOffline {
		if ideas, err = gen.TextIdeas(cmd.Context(), aesthetic, pinContext); err != nil {
			return err
		}
	} else {
		logger.Debug("using built-in text ideas", "offline", pinOffline, "error", err)
		seed := uint64(time.Now().UnixNano())
		ideas = pin.TextSuggestions(aesthetic)
		pin.ShuffleIdeas(rand.New(rand.NewPCG(seed, seed>>1)), ideas)
	}
	for _, idea := range ideas {
		fmt.Fprintln(out, idea)
	}
	return nil
}

func runPinGenerate(cmd *cobra.Command, args []string) error {
	aesthetic := strings.Join(args, " ")
	gen, err := openGenerator(cmd.Context())
	if err != nil {
		return fmt.Errorf("image generation: %w", err)
	}
	logger.Info("generating background", "aesthetic", aesthetic)
	data, err := gen.GenerateBackground(cmd.Context(), aesthetic)
	if err != nil {
		return err
	}

	output := pinOutput
	if output == "" {
		dir, err := dataDir()
		if err != nil {
			return err
		}
		if output, err = writeAsset(filepath.Join(dir, "backgrounds"), pin.ExportFilename(aesthetic, time.Now()), data); err != nil {
			return err
		}
	} else if err := os.WriteFile(output, data, 0o644); err != nil { // #nosec G306
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	info(cmd, "Wrote %s", output)

	if !pinAdd {
		return nil
	}
	return withComposer(cmd, func(ctx context.Context, c *pin.Composer) error {
		if _, err := c.AddImage(ctx, output); err != nil {
			return err
		}
		for c.SendBackward() {
		}
		return nil
	})
}
