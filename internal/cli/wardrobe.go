package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/drape/internal/catalog"
	"github.com/jmylchreest/drape/internal/stylist"
	"github.com/jmylchreest/drape/internal/wardrobe"
)

var (
	wardrobeJSON bool

	// Avatar add flags
	avatarCategory string
	avatarPrice    string
	avatarImage    string
	avatarURL      string

	// Avatar appearance flags
	avatarAppearance wardrobe.Appearance
	avatarReset      bool
)

var wardrobeCmd = &cobra.Command{
	Use:   "wardrobe",
	Short: "Manage saved outfits",
	Long: `Save the avatar's current outfit and manage saved outfits. Outfits are kept
newest first in the data directory.`,
}

var wardrobeListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List saved outfits",
	Args:    cobra.NoArgs,
	RunE:    runWardrobeList,
}

var wardrobeSaveCmd = &cobra.Command{
	Use:   "save [name]",
	Short: "Save the avatar's current outfit",
	Long: `Save the items the avatar is wearing. Without a name the outfit is called
"Outfit N".`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWardrobeSave,
}

var wardrobeRemoveCmd = &cobra.Command{
	Use:     "remove <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a saved outfit",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWardrobe(func(w *wardrobe.Wardrobe) error {
			if err := w.Remove(args[0]); err != nil {
				return err
			}
			info(cmd, "Removed outfit %s", args[0])
			return nil
		})
	},
}

var wardrobeRenameCmd = &cobra.Command{
	Use:   "rename <id> <name>",
	Short: "Rename a saved outfit",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.Join(args[1:], " ")
		return withWardrobe(func(w *wardrobe.Wardrobe) error {
			if err := w.Rename(args[0], name); err != nil {
				return err
			}
			info(cmd, "Renamed outfit %s to %q", args[0], name)
			return nil
		})
	},
}

var wardrobeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every saved outfit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withWardrobe(func(w *wardrobe.Wardrobe) error {
			if err := w.Clear(); err != nil {
				return err
			}
			info(cmd, "Wardrobe cleared")
			return nil
		})
	},
}

var avatarCmd = &cobra.Command{
	Use:   "avatar",
	Short: "Dress the avatar",
	Long: `Put products on the avatar and change how it looks. The avatar has six
slots: top, bottom, dress, shoes, bag and jewelry. A dress replaces top and
bottom, and a top or bottom replaces a dress.`,
}

var avatarShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show what the avatar is wearing",
	Args:  cobra.NoArgs,
	RunE:  runAvatarShow,
}

var avatarAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Put a product on the avatar",
	Long: `Put a product on the avatar. The slot is taken from --category, or derived
from the title.

Examples:
  drape avatar add "Silver Strappy Heels"
  drape avatar add --category bag --price '$45.00' "Chain Clutch"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAvatarAdd,
}

var avatarRemoveCmd = &cobra.Command{
	Use:     "remove <slot>",
	Aliases: []string{"rm"},
	Short:   "Empty one slot",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAvatar(func(a *wardrobe.Avatar) error {
			if err := a.Remove(catalog.ParseCategory(args[0])); err != nil {
				return err
			}
			info(cmd, "Removed %s", args[0])
			return nil
		})
	},
}

var avatarClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty every slot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withAvatar(func(a *wardrobe.Avatar) error {
			a.Clear()
			info(cmd, "Avatar cleared")
			return nil
		})
	},
}

var avatarWearCmd = &cobra.Command{
	Use:   "wear <outfit-id>",
	Short: "Dress the avatar in a saved outfit",
	Args:  cobra.ExactArgs(1),
	RunE:  runAvatarWear,
}

var avatarAppearanceCmd = &cobra.Command{
	Use:   "appearance",
	Short: "Change how the avatar looks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withAvatar(func(a *wardrobe.Avatar) error {
			if avatarReset {
				a.ResetAppearance()
			}
			a.UpdateAppearance(avatarAppearance)
			printAppearance(cmd, a.Appearance)
			return nil
		})
	},
}

func init() {
	wardrobeListCmd.Flags().BoolVar(&wardrobeJSON, "json", false, "output JSON")
	wardrobeCmd.AddCommand(wardrobeListCmd, wardrobeSaveCmd, wardrobeRemoveCmd, wardrobeRenameCmd, wardrobeClearCmd)

	avatarAddCmd.Flags().StringVarP(&avatarCategory, "category", "c", "", "slot to fill (default: derived from the title)")
	avatarAddCmd.Flags().StringVar(&avatarPrice, "price", "", "product price")
	avatarAddCmd.Flags().StringVar(&avatarImage, "image", "", "product image URL")
	avatarAddCmd.Flags().StringVar(&avatarURL, "url", "", "product purchase URL")

	f := avatarAppearanceCmd.Flags()
	f.StringVar(&avatarAppearance.BodyType, "body-type", "", "body type (slim, average, curvy, athletic)")
	f.StringVar(&avatarAppearance.SkinTone, "skin-tone", "", "skin tone as a hex colour")
	f.StringVar(&avatarAppearance.Height, "height", "", "height (short, medium, tall)")
	f.StringVar(&avatarAppearance.HairColor, "hair-color", "", "hair colour as a hex colour")
	f.StringVar(&avatarAppearance.HairStyle, "hair-style", "", "hair style (short, medium, long, bun)")
	f.BoolVar(&avatarReset, "reset", false, "restore the default appearance first")

	avatarCmd.AddCommand(avatarShowCmd, avatarAddCmd, avatarRemoveCmd, avatarClearCmd, avatarWearCmd, avatarAppearanceCmd)
}

func withWardrobe(fn func(*wardrobe.Wardrobe) error) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	return fn(wardrobe.NewWardrobe(store))
}

// withAvatar loads the avatar, applies fn and saves the result.
func withAvatar(fn func(*wardrobe.Avatar) error) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	a, err := wardrobe.LoadAvatar(store)
	if err != nil {
		return err
	}
	if err := fn(a); err != nil {
		return err
	}
	return wardrobe.SaveAvatar(store, a)
}

func runWardrobeList(cmd *cobra.Command, _ []string) error {
	return withWardrobe(func(w *wardrobe.Wardrobe) error {
		outfits, err := w.List()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if wardrobeJSON {
			return writeJSON(out, outfits)
		}
		if len(outfits) == 0 {
			info(cmd, "No saved outfits.")
			return nil
		}
		t := NewTable([]string{"ID", "NAME", "SAVED", "ITEMS"})
		t.SetColumnMaxWidth(3, 60)
		for _, o := range outfits {
			t.AddRow([]string{o.ID, o.Name, o.CreatedAt.Local().Format("2006-01-02 15:04"), itemTitles(o.Items)})
		}
		fmt.Fprint(out, t.Render())
		return nil
	})
}

func runWardrobeSave(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	a, err := wardrobe.LoadAvatar(store)
	if err != nil {
		return err
	}
	var name string
	if len(args) == 1 {
		name = args[0]
	}
	saved, err := wardrobe.NewWardrobe(store).Save(name, a)
	if errors.Is(err, wardrobe.ErrEmptyOutfit) {
		return fmt.Errorf("nothing to save: add items with 'drape avatar add' first")
	}
	if err != nil {
		return err
	}
	info(cmd, "Saved %q (%s)", saved.Name, saved.ID)
	return nil
}

func runAvatarShow(cmd *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	a, err := wardrobe.LoadAvatar(store)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	t := NewTable([]string{"SLOT", "ITEM", "PRICE"})
	t.SetColumnMaxWidth(1, 50)
	for _, slot := range wardrobe.SlotNames {
		p := a.Slots.Get(slot)
		if p == nil {
			t.AddRow([]string{string(slot), "-", ""})
			continue
		}
		t.AddRow([]string{string(slot), p.Title, p.Price})
	}
	fmt.Fprint(out, t.Render())
	fmt.Fprintln(out)
	printAppearance(cmd, a.Appearance)
	return nil
}

func runAvatarAdd(cmd *cobra.Command, args []string) error {
	p := catalog.Analyze(catalog.Product{
		Title:       strings.Join(args, " "),
		Price:       avatarPrice,
		ImageURL:    avatarImage,
		PurchaseURL: avatarURL,
		Category:    catalog.ParseCategory(avatarCategory),
	})
	return withAvatar(func(a *wardrobe.Avatar) error {
		if err := a.Add(p.Category, p); err != nil {
			return err
		}
		info(cmd, "Added %q as %s", p.Title, p.Category)
		return nil
	})
}

func runAvatarWear(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	outfit, err := wardrobe.NewWardrobe(store).Get(args[0])
	if err != nil {
		return err
	}
	a, err := wardrobe.LoadAvatar(store)
	if err != nil {
		return err
	}
	if err := a.Load(outfit.Items); err != nil {
		return err
	}
	a.Appearance = outfit.Avatar
	if err := wardrobe.SaveAvatar(store, a); err != nil {
		return err
	}
	info(cmd, "Wearing %q", outfit.Name)
	return nil
}

// wearOutfit dresses the avatar in the base item and the first suggestion of
// each wearable category.
func wearOutfit(cmd *cobra.Command, s stylist.OutfitSuggestion) error {
	return withAvatar(func(a *wardrobe.Avatar) error {
		if err := a.Add(s.BaseItem.Category, s.BaseItem); err != nil {
			logger.Debug("base item not wearable", "category", s.BaseItem.Category)
		}
		for _, slot := range wardrobe.SlotNames {
			products := s.Suggestions[slot]
			if len(products) == 0 || displaces(slot, s.BaseItem.Category) {
				continue
			}
			if err := a.Add(slot, products[0]); err != nil {
				return err
			}
		}
		info(cmd, "Avatar is wearing %d items", len(a.Current()))
		return nil
	})
}

// displaces reports whether wearing slot would take off the base item.
func displaces(slot, base catalog.CategoryTag) bool {
	switch base {
	case catalog.CategoryDress:
		return slot == catalog.CategoryTop || slot == catalog.CategoryBottom
	case catalog.CategoryTop, catalog.CategoryBottom:
		return slot == catalog.CategoryDress
	}
	return false
}

func printAppearance(cmd *cobra.Command, ap wardrobe.Appearance) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Body type:  %s\n", ap.BodyType)
	fmt.Fprintf(out, "Skin tone:  %s\n", ap.SkinTone)
	fmt.Fprintf(out, "Height:     %s\n", ap.Height)
	fmt.Fprintf(out, "Hair:       %s %s\n", ap.HairStyle, ap.HairColor)
}

func itemTitles(items map[catalog.CategoryTag]catalog.Product) string {
	var titles []string
	for _, slot := range wardrobe.SlotNames {
		if p, ok := items[slot]; ok {
			titles = append(titles, p.Title)
		}
	}
	return strings.Join(titles, "; ")
}
