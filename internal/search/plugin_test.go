package search

import (
	"context"
	"errors"
	"testing"

	"github.com/jmylchreest/drape/internal/catalog"
	"github.com/jmylchreest/drape/pkg/plugin"
)

type fakeProvider struct {
	products []plugin.Product
	err      error
	lastReq  plugin.SearchRequest
}

func (f *fakeProvider) Search(_ context.Context, req plugin.SearchRequest) ([]plugin.Product, error) {
	f.lastReq = req
	return f.products, f.err
}

func TestPluginSearcher(t *testing.T) {
	provider := &fakeProvider{products: []plugin.Product{
		{ID: "1", Title: "Red Leather Ankle Boots", Price: "$79.00", Images: []string{"https://img/1a.jpg", "https://img/1b.jpg"}},
		{ID: "2", Title: "Gold Hoop Earrings", Category: "Jewelry", Color: "Silver", URL: "https://shop/2"},
		{ID: "3"},
	}}
	s := NewPluginSearcher(provider, "catalog", 12, nil)

	got, err := s.Search(context.Background(), "boots", "shoes")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if provider.lastReq != (plugin.SearchRequest{Query: "boots", Category: "shoes", Limit: 12}) {
		t.Errorf("provider request = %+v", provider.lastReq)
	}
	if len(got) != 2 {
		t.Fatalf("Search() returned %d products, want 2 (untitled dropped)", len(got))
	}

	boots := got[0]
	if boots.Category != catalog.CategoryShoes || boots.Color != "red" {
		t.Errorf("derived tags = %s/%s", boots.Category, boots.Color)
	}
	if boots.ImageURL != "https://img/1a.jpg" {
		t.Errorf("ImageURL = %q, want first image", boots.ImageURL)
	}

	earrings := got[1]
	if earrings.Category != catalog.CategoryJewelry || earrings.Color != "silver" {
		t.Errorf("provider tags should win, got %s/%s", earrings.Category, earrings.Color)
	}
	if earrings.PurchaseURL != "https://shop/2" {
		t.Errorf("PurchaseURL = %q", earrings.PurchaseURL)
	}
}

func TestPluginSearcherErrors(t *testing.T) {
	s := NewPluginSearcher(&fakeProvider{err: errors.New("connection reset")}, "catalog", 0, nil)
	_, err := s.Search(context.Background(), "dress", "")
	if !IsProviderError(err) {
		t.Fatalf("Search() error = %v, want ProviderError", err)
	}

	empty := NewPluginSearcher(&fakeProvider{}, "catalog", 0, nil)
	got, err := empty.Search(context.Background(), "nothing", "")
	if err != nil || got == nil || len(got) != 0 {
		t.Errorf("empty provider = %#v, %v; want empty slice", got, err)
	}
}

func TestWireConversion(t *testing.T) {
	p := catalog.Product{
		ID: "x", Title: "Navy Blazer", Price: "$120", ImageURL: "https://img/x.jpg",
		PurchaseURL: "https://shop/x", Category: catalog.CategoryTop, Color: "navy", Style: catalog.StyleFormal,
	}
	back := FromWire(ToWire(p))
	if back.ID != p.ID || back.Category != p.Category || back.Style != p.Style || back.PurchaseURL != p.PurchaseURL {
		t.Errorf("FromWire(ToWire(p)) = %+v, want %+v", back, p)
	}
	if len(back.ImageURLs) != 1 || back.ImageURLs[0] != p.ImageURL {
		t.Errorf("ImageURLs = %v", back.ImageURLs)
	}
}
