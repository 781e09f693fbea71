package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmylchreest/drape/internal/search"
	"github.com/jmylchreest/drape/pkg/plugin"
)

func TestCatalogProvider(t *testing.T) {
	static, err := search.LoadStatic(filepath.Join("testdata", "catalog.json"))
	if err != nil {
		t.Fatal(err)
	}
	p := &catalogProvider{static: static}

	tests := []struct {
		name      string
		req       plugin.SearchRequest
		wantFirst string
		wantCount int
	}{
		{"query", plugin.SearchRequest{Query: "linen"}, "Linen Wrap Midi Dress", 2},
		{"category filter", plugin.SearchRequest{Query: "linen", Category: "top"}, "White Linen Button Shirt", 1},
		{"limit", plugin.SearchRequest{Query: "", Limit: 2}, "Linen Wrap Midi Dress", 2},
		{"no match", plugin.SearchRequest{Query: "tuxedo"}, "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Search(context.Background(), tt.req)
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			if len(got) != tt.wantCount {
				t.Fatalf("Search() returned %d products, want %d", len(got), tt.wantCount)
			}
			if tt.wantCount > 0 && got[0].Title != tt.wantFirst {
				t.Errorf("first = %q, want %q", got[0].Title, tt.wantFirst)
			}
		})
	}

	if static.Limit != 0 {
		t.Error("request limit leaked into the shared catalog")
	}
}

func TestCatalogPath(t *testing.T) {
	t.Setenv("DRAPE_CATALOG", "/srv/catalog.json")
	if got := catalogPath(); got != "/srv/catalog.json" {
		t.Errorf("catalogPath() = %q", got)
	}

	t.Setenv("DRAPE_CATALOG", "")
	exe, _ := os.Executable()
	if got := catalogPath(); got != filepath.Join(filepath.Dir(exe), "catalog.json") {
		t.Errorf("catalogPath() = %q", got)
	}
}
