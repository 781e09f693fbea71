package stylist

import (
	"reflect"
	"testing"

	"github.com/jmylchreest/drape/internal/catalog"
)

func TestCompanionColors(t *testing.T) {
	tests := []struct {
		name string
		base catalog.ColorTag
		want []catalog.ColorTag
	}{
		{"no colour", "", tags("black", "white", "beige")},
		{"red", "red", tags("red", "green", "orange", "black", "white")},
		{"case insensitive keeps input", "Navy", tags("Navy", "coral", "blue", "white", "beige")},
		{"single complementary", "yellow", tags("yellow", "purple", "orange", "black", "white")},
		{"unknown", "mauve", tags("mauve", "black", "white")},
		{"palette colour not on wheel", "teal", tags("teal", "black", "white")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CompanionColors(tt.base); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("CompanionColors(%q) = %v, want %v", tt.base, got, tt.want)
			}
		})
	}
}

func TestCompanionColorsUnknownProperty(t *testing.T) {
	// Every palette colour missing from the wheel degrades the same way.
	for _, c := range catalog.Palette() {
		if KnownColor(c) {
			continue
		}
		got := CompanionColors(c)
		want := []catalog.ColorTag{c, "black", "white"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("CompanionColors(%q) = %v, want %v", c, got, want)
		}
	}
}

func TestCompanionCategories(t *testing.T) {
	want := []catalog.CategoryTag{"dress", "bottom", "top", "bag", "jewelry"}
	if got := CompanionCategories(catalog.CategoryShoes); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
	if got := CompanionCategories(catalog.CategoryClothing); got != nil {
		t.Errorf("Expected nil for clothing, got %v", got)
	}

	// Callers must not be able to corrupt the table.
	got := CompanionCategories(catalog.CategoryShoes)
	got[0] = "hat"
	if CompanionCategories(catalog.CategoryShoes)[0] != catalog.CategoryDress {
		t.Error("CompanionCategories returned shared backing array")
	}
}

func TestCompatibleStyles(t *testing.T) {
	tests := []struct {
		style catalog.StyleTag
		want  []catalog.StyleTag
	}{
		{catalog.StyleFormal, []catalog.StyleTag{"formal", "classic", "modern"}},
		{catalog.StyleSporty, []catalog.StyleTag{"sporty", "casual"}},
		{"", []catalog.StyleTag{"casual"}},
		{"grunge", []catalog.StyleTag{"casual"}},
	}
	for _, tt := range tests {
		if got := CompatibleStyles(tt.style); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("CompatibleStyles(%q) = %v, want %v", tt.style, got, tt.want)
		}
	}
}
