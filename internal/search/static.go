package search

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/jmylchreest/drape/internal/catalog"
)

// Static searches an in-memory product list. Products are ranked by how many query
// words appear in their title; products matching no word are dropped unless the query
// is empty.
type Static struct {
	Products []catalog.Product
	// Limit caps the number of results. Zero means no cap.
	Limit int
}

// LoadStatic reads a JSON array of products from path and fills missing tags.
func LoadStatic(path string) (*Static, error) {
	data, err := os.ReadFile(path) // #nosec G304 - user supplied catalog path
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	var products []catalog.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	for i := range products {
		products[i] = catalog.Analyze(products[i])
	}
	return &Static{Products: products}, nil
}

// Search implements Searcher.
func (s *Static) Search(ctx context.Context, query, category string) ([]catalog.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	words := strings.Fields(strings.ToLower(query))
	type scored struct {
		p     catalog.Product
		score int
	}
	var hits []scored
	for _, p := range s.Products {
		if category != "" && string(p.Category) != strings.ToLower(category) {
			continue
		}
		title := strings.ToLower(p.Title)
		score := 0
		for _, w := range words {
			if strings.Contains(title, w) {
				score++
			}
		}
		if len(words) > 0 && score == 0 {
			continue
		}
		hits = append(hits, scored{p, score})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })

	out := make([]catalog.Product, 0, len(hits))
	for _, h := range hits {
		if s.Limit > 0 && len(out) == s.Limit {
			break
		}
		out = append(out, h.p)
	}
	return out, nil
}

// Details implements DetailsProvider.
func (s *Static) Details(_ context.Context, id string) (*catalog.Product, error) {
	for i := range s.Products {
		if s.Products[i].ID == id {
			p := s.Products[i]
			return &p, nil
		}
	}
	return nil, ErrProductNotFound
}
