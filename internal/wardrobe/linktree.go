package wardrobe

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jmylchreest/drape/internal/storage"
)

// LinktreeKey is the storage key of the linktree document.
const LinktreeKey = "outfit-linktree-products"

// ErrLinkNotFound is returned for an unknown linktree product id.
var ErrLinkNotFound = errors.New("linktree product not found")

// LinktreeProduct is one tile on the shoppable page.
type LinktreeProduct struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	ImageURL    string    `json:"image"`
	PurchaseURL string    `json:"url"`
	Price       string    `json:"price"`
	AddedAt     time.Time `json:"addedAt"`
}

// LinktreeSettings controls the page header and colours.
type LinktreeSettings struct {
	Title           string `json:"title"`
	Bio             string `json:"bio"`
	BackgroundColor string `json:"backgroundColor"`
	AccentColor     string `json:"accentColor"`
}

// DefaultLinktreeSettings returns the settings of a new page.
func DefaultLinktreeSettings() LinktreeSettings {
	return LinktreeSettings{
		Title:           "Shop My Looks",
		Bio:             "Tap any product to shop on Amazon!",
		BackgroundColor: "#ffffff",
		AccentColor:     "#c026d3",
	}
}

// LinktreeDocument is the persisted form of the page.
type LinktreeDocument struct {
	Products []LinktreeProduct `json:"products"`
	Settings LinktreeSettings  `json:"settings"`
}

// LinkUpdate carries optional field changes for Update. Nil fields are left alone.
type LinkUpdate struct {
	Title       *string `json:"title,omitempty"`
	ImageURL    *string `json:"image,omitempty"`
	PurchaseURL *string `json:"url,omitempty"`
	Price       *string `json:"price,omitempty"`
}

// Linktree stores the shoppable page.
type Linktree struct {
	store storage.Provider
	now   func() time.Time
}

// NewLinktree returns a Linktree persisted in store.
func NewLinktree(store storage.Provider) *Linktree {
	return &Linktree{store: store, now: time.Now}
}

// Load returns the current document, with default settings when nothing is stored.
func (l *Linktree) Load() (LinktreeDocument, error) {
	data, err := l.store.Get(LinktreeKey)
	if errors.Is(err, storage.ErrNotFound) {
		return newLinktreeDocument(), nil
	}
	if err != nil {
		return LinktreeDocument{}, fmt.Errorf("failed to read linktree: %w", err)
	}
	return decodeLinktree(data)
}

// Add prepends a product. Image and purchase URLs are required; an empty title
// becomes "Product".
func (l *Linktree) Add(title, imageURL, purchaseURL, price string) (LinktreeProduct, error) {
	if imageURL == "" || purchaseURL == "" {
		return LinktreeProduct{}, errors.New("linktree product needs an image and a url")
	}
	if title == "" {
		title = "Product"
	}
	p := LinktreeProduct{
		ID:          uuid.NewString(),
		Title:       title,
		ImageURL:    imageURL,
		PurchaseURL: purchaseURL,
		Price:       price,
		AddedAt:     l.now().UTC(),
	}
	err := l.update(func(doc *LinktreeDocument) error {
		doc.Products = append([]LinktreeProduct{p}, doc.Products...)
		return nil
	})
	if err != nil {
		return LinktreeProduct{}, err
	}
	return p, nil
}

// Remove deletes a product. Removing an unknown id is not an error.
func (l *Linktree) Remove(id string) error {
	return l.update(func(doc *LinktreeDocument) error {
		kept := doc.Products[:0]
		for _, p := range doc.Products {
			if p.ID != id {
				kept = append(kept, p)
			}
		}
		doc.Products = kept
		return nil
	})
}

// Update applies the set fields of u to one product.
func (l *Linktree) Update(id string, u LinkUpdate) error {
	return l.update(func(doc *LinktreeDocument) error {
		for i := range doc.Products {
			p := &doc.Products[i]
			if p.ID != id {
				continue
			}
			if u.Title != nil {
				p.Title = *u.Title
			}
			if u.ImageURL != nil {
				p.ImageURL = *u.ImageURL
			}
			if u.PurchaseURL != nil {
				p.PurchaseURL = *u.PurchaseURL
			}
			if u.Price != nil {
				p.Price = *u.Price
			}
			return nil
		}
		return fmt.Errorf("%w: %s", ErrLinkNotFound, id)
	})
}

// Reorder moves the product at index from to index to.
func (l *Linktree) Reorder(from, to int) error {
	return l.update(func(doc *LinktreeDocument) error {
		n := len(doc.Products)
		if from < 0 || from >= n || to < 0 || to >= n {
			return fmt.Errorf("reorder index out of range: %d -> %d (have %d)", from, to, n)
		}
		doc.Products = move(doc.Products, from, to)
		return nil
	})
}

// UpdateSettings merges the non-empty fields of s into the page settings.
func (l *Linktree) UpdateSettings(s LinktreeSettings) error {
	return l.update(func(doc *LinktreeDocument) error {
		if s.Title != "" {
			doc.Settings.Title = s.Title
		}
		if s.Bio != "" {
			doc.Settings.Bio = s.Bio
		}
		if s.BackgroundColor != "" {
			doc.Settings.BackgroundColor = s.BackgroundColor
		}
		if s.AccentColor != "" {
			doc.Settings.AccentColor = s.AccentColor
		}
		return nil
	})
}

// Clear removes every product and keeps the settings.
func (l *Linktree) Clear() error {
	return l.update(func(doc *LinktreeDocument) error {
		doc.Products = []LinktreeProduct{}
		return nil
	})
}

func (l *Linktree) update(fn func(*LinktreeDocument) error) error {
	err := storage.Update(l.store, LinktreeKey, func(current []byte) ([]byte, error) {
		doc := newLinktreeDocument()
		if current != nil {
			var err error
			if doc, err = decodeLinktree(current); err != nil {
				return nil, err
			}
		}
		if err := fn(&doc); err != nil {
			return nil, err
		}
		return json.Marshal(doc)
	})
	if err != nil {
		return fmt.Errorf("failed to update linktree: %w", err)
	}
	return nil
}

func newLinktreeDocument() LinktreeDocument {
	return LinktreeDocument{Products: []LinktreeProduct{}, Settings: DefaultLinktreeSettings()}
}

func decodeLinktree(data []byte) (LinktreeDocument, error) {
	doc := newLinktreeDocument()
	if err := json.Unmarshal(data, &doc); err != nil {
		return LinktreeDocument{}, fmt.Errorf("failed to parse linktree: %w", err)
	}
	if doc.Products == nil {
		doc.Products = []LinktreeProduct{}
	}
	return doc, nil
}

func move(items []LinktreeProduct, from, to int) []LinktreeProduct {
	item := items[from]
	out := make([]LinktreeProduct, 0, len(items))
	out = append(out, items[:from]...)
	out = append(out, items[from+1:]...)
	out = append(out[:to], append([]LinktreeProduct{item}, out[to:]...)...)
	return out
}
