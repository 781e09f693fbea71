package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/drape/internal/wardrobe"
)

var (
	linkImage       string
	linkURL         string
	linkPrice       string
	linkFromAvatar  bool
	linkJSON        bool
	linkSettings    wardrobe.LinktreeSettings
	linkExportPath  string
	linkUpdateTitle string
)

var linktreeCmd = &cobra.Command{
	Use:   "linktree",
	Short: "Build a shoppable product page",
	Long: `Collect products on a single shareable page and export it as a standalone
HTML file.`,
}

var linktreeListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List page products in display order",
	Args:    cobra.NoArgs,
	RunE:    runLinktreeList,
}

var linktreeAddCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a product to the top of the page",
	Long: `Add a product to the top of the page. Products need an image and a purchase
URL. With --from-avatar every item the avatar is wearing that has both is
added.

Examples:
  drape linktree add --image https://example.com/a.jpg --url https://amazon.com/dp/B0 "Silk Scarf"
  drape linktree add --from-avatar`,
	RunE: runLinktreeAdd,
}

var linktreeRemoveCmd = &cobra.Command{
	Use:     "remove <id>",
	Aliases: []string{"rm"},
	Short:   "Remove a product",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLinktree(func(l *wardrobe.Linktree) error {
			if err := l.Remove(args[0]); err != nil {
				return err
			}
			info(cmd, "Removed %s", args[0])
			return nil
		})
	},
}

var linktreeUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change a product's title, image, link or price",
	Args:  cobra.ExactArgs(1),
	RunE:  runLinktreeUpdate,
}

var linktreeMoveCmd = &cobra.Command{
	Use:   "move <from> <to>",
	Short: "Move a product to another position",
	Long: `Move a product to another position. Positions start at 1, as shown by
'drape linktree list'.`,
	Args: cobra.ExactArgs(2),
	RunE: runLinktreeMove,
}

var linktreeSettingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change the page title, bio and colours",
	Args:  cobra.NoArgs,
	RunE:  runLinktreeSettings,
}

var linktreeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the page as HTML",
	Args:  cobra.NoArgs,
	RunE:  runLinktreeExport,
}

var linktreeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every product, keeping the settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withLinktree(func(l *wardrobe.Linktree) error {
			if err := l.Clear(); err != nil {
				return err
			}
			info(cmd, "Linktree cleared")
			return nil
		})
	},
}

func init() {
	linktreeListCmd.Flags().BoolVar(&linkJSON, "json", false, "output JSON")

	linktreeAddCmd.Flags().StringVar(&linkImage, "image", "", "product image URL")
	linktreeAddCmd.Flags().StringVar(&linkURL, "url", "", "product purchase URL")
	linktreeAddCmd.Flags().StringVar(&linkPrice, "price", "", "product price")
	linktreeAddCmd.Flags().BoolVar(&linkFromAvatar, "from-avatar", false, "add the items the avatar is wearing")

	linktreeUpdateCmd.Flags().StringVar(&linkUpdateTitle, "title", "", "new title")
	linktreeUpdateCmd.Flags().StringVar(&linkImage, "image", "", "new image URL")
	linktreeUpdateCmd.Flags().StringVar(&linkURL, "url", "", "new purchase URL")
	linktreeUpdateCmd.Flags().StringVar(&linkPrice, "price", "", "new price")

	f := linktreeSettingsCmd.Flags()
	f.StringVar(&linkSettings.Title, "title", "", "page title")
	f.StringVar(&linkSettings.Bio, "bio", "", "text under the title")
	f.StringVar(&linkSettings.BackgroundColor, "background", "", "page background as a hex colour")
	f.StringVar(&linkSettings.AccentColor, "accent", "", "accent colour as a hex colour")

	linktreeExportCmd.Flags().StringVarP(&linkExportPath, "output", "o", wardrobe.PageFilename, "output file (- for stdout)")

	linktreeCmd.AddCommand(linktreeListCmd, linktreeAddCmd, linktreeRemoveCmd, linktreeUpdateCmd,
		linktreeMoveCmd, linktreeSettingsCmd, linktreeExportCmd, linktreeClearCmd)
}

func withLinktree(fn func(*wardrobe.Linktree) error) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	return fn(wardrobe.NewLinktree(store))
}

func runLinktreeList(cmd *cobra.Command, _ []string) error {
	return withLinktree(func(l *wardrobe.Linktree) error {
		doc, err := l.Load()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if linkJSON {
			return writeJSON(out, doc)
		}
		fmt.Fprintf(out, "%s\n%s\n\n", doc.Settings.Title, doc.Settings.Bio)
		if len(doc.Products) == 0 {
			info(cmd, "No products yet.")
			return nil
		}
		t := NewTable([]string{"#", "ID", "TITLE", "PRICE"})
		t.SetColumnMaxWidth(2, 50)
		for i, p := range doc.Products {
			t.AddRow([]string{strconv.Itoa(i + 1), p.ID, p.Title, orDash(p.Price)})
		}
		fmt.Fprint(out, t.Render())
		return nil
	})
}

func runLinktreeAdd(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	l := wardrobe.NewLinktree(store)

	if !linkFromAvatar {
		p, err := l.Add(strings.Join(args, " "), linkImage, linkURL, linkPrice)
		if err != nil {
			return err
		}
		info(cmd, "Added %q (%s)", p.Title, p.ID)
		return nil
	}

	a, err := wardrobe.LoadAvatar(store)
	if err != nil {
		return err
	}
	added := 0
	for _, slot := range wardrobe.SlotNames {
		item := a.Slots.Get(slot)
		if item == nil || item.ImageURL == "" || item.PurchaseURL == "" {
			continue
		}
		if _, err := l.Add(item.Title, item.ImageURL, item.PurchaseURL, item.Price); err != nil {
			return err
		}
		added++
	}
	info(cmd, "Added %d products from the avatar", added)
	return nil
}

func runLinktreeUpdate(cmd *cobra.Command, args []string) error {
	var u wardrobe.LinkUpdate
	flags := cmd.Flags()
	if flags.Changed("title") {
		u.Title = &linkUpdateTitle
	}
	if flags.Changed("image") {
		u.ImageURL = &linkImage
	}
	if flags.Changed("url") {
		u.PurchaseURL = &linkURL
	}
	if flags.Changed("price") {
		u.Price = &linkPrice
	}
	return withLinktree(func(l *wardrobe.Linktree) error {
		if err := l.Update(args[0], u); err != nil {
			return err
		}
		info(cmd, "Updated %s", args[0])
		return nil
	})
}

func runLinktreeMove(cmd *cobra.Command, args []string) error {
	from, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid position %q: %w", args[0], err)
	}
	to, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid position %q: %w", args[1], err)
	}
	return withLinktree(func(l *wardrobe.Linktree) error {
		if err := l.Reorder(from-1, to-1); err != nil {
			return err
		}
		info(cmd, "Moved product %d to %d", from, to)
		return nil
	})
}

func runLinktreeSettings(cmd *cobra.Command, _ []string) error {
	return withLinktree(func(l *wardrobe.Linktree) error {
		if err := l.UpdateSettings(linkSettings); err != nil {
			return err
		}
		doc, err := l.Load()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Title:      %s\n", doc.Settings.Title)
		fmt.Fprintf(out, "Bio:        %s\n", doc.Settings.Bio)
		fmt.Fprintf(out, "Background: %s\n", doc.Settings.BackgroundColor)
		fmt.Fprintf(out, "Accent:     %s\n", doc.Settings.AccentColor)
		return nil
	})
}

func runLinktreeExport(cmd *cobra.Command, _ []string) error {
	return withLinktree(func(l *wardrobe.Linktree) error {
		if linkExportPath == "-" {
			return l.RenderPage(cmd.OutOrStdout())
		}
		f, err := os.Create(linkExportPath) // #nosec G304 - output path is chosen by the user
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", linkExportPath, err)
		}
		if err := l.RenderPage(f); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to write %s: %w", linkExportPath, err)
		}
		info(cmd, "Wrote %s", linkExportPath)
		return nil
	})
}
