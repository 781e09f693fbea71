package wardrobe

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jmylchreest/drape/internal/catalog"
	"github.com/jmylchreest/drape/internal/storage"
)

// WardrobeKey is the storage key of the saved outfit list.
const WardrobeKey = "outfit-finder-wardrobe"

// ErrEmptyOutfit is returned when saving an avatar that wears nothing.
var ErrEmptyOutfit = errors.New("avatar has no items to save")

// ErrOutfitNotFound is returned for an unknown outfit id.
var ErrOutfitNotFound = errors.New("outfit not found")

// SavedOutfit is a snapshot of the avatar's clothing.
type SavedOutfit struct {
	ID        string                                  `json:"id"`
	Name      string                                  `json:"name"`
	CreatedAt time.Time                               `json:"createdAt"`
	Items     map[catalog.CategoryTag]catalog.Product `json:"items"`
	Avatar    Appearance                              `json:"avatar"`
}

// Wardrobe stores saved outfits, newest first.
type Wardrobe struct {
	store storage.Provider
	now   func() time.Time
}

// NewWardrobe returns a Wardrobe persisted in store.
func NewWardrobe(store storage.Provider) *Wardrobe {
	return &Wardrobe{store: store, now: time.Now}
}

// List returns the saved outfits, newest first.
func (w *Wardrobe) List() ([]SavedOutfit, error) {
	data, err := w.store.Get(WardrobeKey)
	if errors.Is(err, storage.ErrNotFound) {
		return []SavedOutfit{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read wardrobe: %w", err)
	}
	return decodeOutfits(data)
}

// Get returns one outfit by id.
func (w *Wardrobe) Get(id string) (SavedOutfit, error) {
	outfits, err := w.List()
	if err != nil {
		return SavedOutfit{}, err
	}
	for _, o := range outfits {
		if o.ID == id {
			return o, nil
		}
	}
	return SavedOutfit{}, fmt.Errorf("%w: %s", ErrOutfitNotFound, id)
}

// Save snapshots the avatar's occupied slots. An empty name becomes "Outfit N"
// where N is one more than the number of saved outfits.
func (w *Wardrobe) Save(name string, avatar *Avatar) (SavedOutfit, error) {
	items := avatar.Current()
	if len(items) == 0 {
		return SavedOutfit{}, ErrEmptyOutfit
	}
	saved := SavedOutfit{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: w.now().UTC(),
		Items:     items,
		Avatar:    avatar.Appearance,
	}
	err := w.update(func(outfits []SavedOutfit) ([]SavedOutfit, error) {
		if saved.Name == "" {
			saved.Name = fmt.Sprintf("Outfit %d", len(outfits)+1)
		}
		return append([]SavedOutfit{saved}, outfits...), nil
	})
	if err != nil {
		return SavedOutfit{}, err
	}
	return saved, nil
}

// Remove deletes an outfit. Removing an unknown id is not an error.
func (w *Wardrobe) Remove(id string) error {
	return w.update(func(outfits []SavedOutfit) ([]SavedOutfit, error) {
		kept := outfits[:0]
		for _, o := range outfits {
			if o.ID != id {
				kept = append(kept, o)
			}
		}
		return kept, nil
	})
}

// Rename changes an outfit's name.
func (w *Wardrobe) Rename(id, name string) error {
	if name == "" {
		return errors.New("outfit name cannot be empty")
	}
	return w.update(func(outfits []SavedOutfit) ([]SavedOutfit, error) {
		for i := range outfits {
			if outfits[i].ID == id {
				outfits[i].Name = name
				return outfits, nil
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrOutfitNotFound, id)
	})
}

// Clear removes every saved outfit.
func (w *Wardrobe) Clear() error {
	return w.update(func([]SavedOutfit) ([]SavedOutfit, error) {
		return []SavedOutfit{}, nil
	})
}

func (w *Wardrobe) update(fn func([]SavedOutfit) ([]SavedOutfit, error)) error {
	err := storage.Update(w.store, WardrobeKey, func(current []byte) ([]byte, error) {
		outfits := []SavedOutfit{}
		if current != nil {
			var err error
			if outfits, err = decodeOutfits(current); err != nil {
				return nil, err
			}
		}
		next, err := fn(outfits)
		if err != nil {
			return nil, err
		}
		return json.Marshal(next)
	})
	if err != nil {
		return fmt.Errorf("failed to update wardrobe: %w", err)
	}
	return nil
}

func decodeOutfits(data []byte) ([]SavedOutfit, error) {
	outfits := []SavedOutfit{}
	if err := json.Unmarshal(data, &outfits); err != nil {
		return nil, fmt.Errorf("failed to parse wardrobe: %w", err)
	}
	if outfits == nil {
		outfits = []SavedOutfit{}
	}
	return outfits, nil
}
