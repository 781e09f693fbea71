// Package wardrobe holds the user's dressing state: the avatar with its clothing
// slots, saved outfits and the shoppable linktree page.
package wardrobe

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmylchreest/drape/internal/catalog"
	"github.com/jmylchreest/drape/internal/storage"
)

// AvatarKey is the storage key of the persisted avatar.
const AvatarKey = "drape-avatar"

// ErrUnknownSlot is returned when a category has no avatar slot.
var ErrUnknownSlot = errors.New("category has no avatar slot")

// SlotNames lists the six avatar slots in display order.
var SlotNames = []catalog.CategoryTag{
	catalog.CategoryTop,
	catalog.CategoryBottom,
	catalog.CategoryDress,
	catalog.CategoryShoes,
	catalog.CategoryBag,
	catalog.CategoryJewelry,
}

// Slots holds at most one product per wearable category.
type Slots struct {
	Top     *catalog.Product `json:"top"`
	Bottom  *catalog.Product `json:"bottom"`
	Dress   *catalog.Product `json:"dress"`
	Shoes   *catalog.Product `json:"shoes"`
	Bag     *catalog.Product `json:"bag"`
	Jewelry *catalog.Product `json:"jewelry"`
}

func (s *Slots) slot(category catalog.CategoryTag) (**catalog.Product, error) {
	switch category {
	case catalog.CategoryTop:
		return &s.Top, nil
	case catalog.CategoryBottom:
		return &s.Bottom, nil
	case catalog.CategoryDress:
		return &s.Dress, nil
	case catalog.CategoryShoes:
		return &s.Shoes, nil
	case catalog.CategoryBag:
		return &s.Bag, nil
	case catalog.CategoryJewelry:
		return &s.Jewelry, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSlot, category)
}

// Get returns the product in a slot, or nil.
func (s Slots) Get(category catalog.CategoryTag) *catalog.Product {
	p, err := s.slot(category)
	if err != nil {
		return nil
	}
	return *p
}

// Items returns the occupied slots only.
func (s Slots) Items() map[catalog.CategoryTag]catalog.Product {
	items := make(map[catalog.CategoryTag]catalog.Product)
	for _, name := range SlotNames {
		if p := s.Get(name); p != nil {
			items[name] = *p
		}
	}
	return items
}

// Empty reports whether no slot is occupied.
func (s Slots) Empty() bool {
	return len(s.Items()) == 0
}

// Appearance describes how the avatar looks.
type Appearance struct {
	BodyType  string `json:"bodyType"`
	SkinTone  string `json:"skinTone"`
	Height    string `json:"height"`
	HairColor string `json:"hairColor"`
	HairStyle string `json:"hairStyle"`
}

// DefaultAppearance returns the appearance a new avatar starts with.
func DefaultAppearance() Appearance {
	return Appearance{
		BodyType:  "average",
		SkinTone:  "#e0b8a0",
		Height:    "medium",
		HairColor: "#2c1810",
		HairStyle: "long",
	}
}

// merge overlays the non-empty fields of u.
func (a Appearance) merge(u Appearance) Appearance {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&a.BodyType, u.BodyType)
	set(&a.SkinTone, u.SkinTone)
	set(&a.Height, u.Height)
	set(&a.HairColor, u.HairColor)
	set(&a.HairStyle, u.HairStyle)
	return a
}

// Avatar is the dressable figure. It is owned by one editing session.
type Avatar struct {
	Appearance Appearance `json:"appearance"`
	Slots      Slots      `json:"clothing"`
}

// NewAvatar returns an undressed avatar with the default appearance.
func NewAvatar() *Avatar {
	return &Avatar{Appearance: DefaultAppearance()}
}

// Add puts product into the slot for category. A dress clears top and bottom;
// a top or bottom clears the dress.
func (a *Avatar) Add(category catalog.CategoryTag, product catalog.Product) error {
	slot, err := a.Slots.slot(category)
	if err != nil {
		return err
	}
	switch category {
	case catalog.CategoryDress:
		a.Slots.Top, a.Slots.Bottom = nil, nil
	case catalog.CategoryTop, catalog.CategoryBottom:
		a.Slots.Dress = nil
	}
	p := product
	*slot = &p
	return nil
}

// Remove empties one slot.
func (a *Avatar) Remove(category catalog.CategoryTag) error {
	slot, err := a.Slots.slot(category)
	if err != nil {
		return err
	}
	*slot = nil
	return nil
}

// Clear empties every slot.
func (a *Avatar) Clear() {
	a.Slots = Slots{}
}

// Current returns the occupied slots.
func (a *Avatar) Current() map[catalog.CategoryTag]catalog.Product {
	return a.Slots.Items()
}

// UpdateAppearance merges the non-empty fields of u into the appearance.
func (a *Avatar) UpdateAppearance(u Appearance) {
	a.Appearance = a.Appearance.merge(u)
}

// ResetAppearance restores the default appearance.
func (a *Avatar) ResetAppearance() {
	a.Appearance = DefaultAppearance()
}

// Load replaces the avatar's slots with items. Unknown categories are rejected
// before anything changes.
func (a *Avatar) Load(items map[catalog.CategoryTag]catalog.Product) error {
	var next Avatar
	for name := range items {
		if _, err := next.Slots.slot(name); err != nil {
			return err
		}
	}
	for _, name := range SlotNames {
		if p, ok := items[name]; ok {
			_ = next.Add(name, p)
		}
	}
	a.Slots = next.Slots
	return nil
}

// LoadAvatar reads the persisted avatar, returning a fresh one when none is stored.
func LoadAvatar(p storage.Provider) (*Avatar, error) {
	data, err := p.Get(AvatarKey)
	if errors.Is(err, storage.ErrNotFound) {
		return NewAvatar(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read avatar: %w", err)
	}
	var stored Avatar
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("failed to parse avatar: %w", err)
	}
	a := NewAvatar()
	a.UpdateAppearance(stored.Appearance)
	if err := a.Load(stored.Slots.Items()); err != nil {
		return nil, fmt.Errorf("failed to load avatar clothing: %w", err)
	}
	return a, nil
}

// SaveAvatar persists a.
func SaveAvatar(p storage.Provider, a *Avatar) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to encode avatar: %w", err)
	}
	if err := p.Set(AvatarKey, data); err != nil {
		return fmt.Errorf("failed to write avatar: %w", err)
	}
	return nil
}
