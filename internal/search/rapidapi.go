package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/drape/internal/catalog"
	httputil "github.com/jmylchreest/drape/internal/util/http"
)

// RapidAPI defaults for the real-time Amazon data provider.
const (
	DefaultRapidAPIHost     = "real-time-amazon-data.p.rapidapi.com"
	DefaultCountry          = "US"
	DefaultSortBy           = "RELEVANCE"
	DefaultProductCondition = "ALL"
)

// RapidAPIConfig configures the RapidAPI provider.
type RapidAPIConfig struct {
	APIKey           string
	Host             string
	Country          string
	SortBy           string
	ProductCondition string
	// BaseURL overrides "https://<Host>".
	BaseURL string
	Timeout time.Duration
	Client  *http.Client
	Logger  hclog.Logger
}

// RapidAPI searches the real-time Amazon data API hosted on RapidAPI.
type RapidAPI struct {
	cfg    RapidAPIConfig
	logger hclog.Logger
}

// NewRapidAPI returns a RapidAPI provider with defaults applied.
func NewRapidAPI(cfg RapidAPIConfig) *RapidAPI {
	if cfg.Host == "" {
		cfg.Host = DefaultRapidAPIHost
	}
	if cfg.Country == "" {
		cfg.Country = DefaultCountry
	}
	if cfg.SortBy == "" {
		cfg.SortBy = DefaultSortBy
	}
	if cfg.ProductCondition == "" {
		cfg.ProductCondition = DefaultProductCondition
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://" + cfg.Host
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	logger := cfg.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &RapidAPI{cfg: cfg, logger: logger.Named("rapidapi")}
}

// Search implements Searcher.
func (r *RapidAPI) Search(ctx context.Context, query, category string) ([]catalog.Product, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("country", r.cfg.Country)
	params.Set("sort_by", r.cfg.SortBy)
	params.Set("product_condition", r.cfg.ProductCondition)
	if category != "" {
		params.Set("category_id", category)
	}

	var resp struct {
		Data *struct {
			Products []rawProduct `json:"products"`
		} `json:"data"`
	}
	if err := r.get(ctx, "/search", params, &resp); err != nil {
		return nil, err
	}

	products := []catalog.Product{}
	if resp.Data == nil {
		return products, nil
	}
	for _, raw := range resp.Data.Products {
		products = append(products, raw.toProduct())
	}
	r.logger.Debug("search complete", "query", query, "results", len(products))
	return products, nil
}

// Details implements DetailsProvider.
func (r *RapidAPI) Details(ctx context.Context, id string) (*catalog.Product, error) {
	params := url.Values{}
	params.Set("asin", id)
	params.Set("country", r.cfg.Country)

	var resp struct {
		Data *rawProduct `json:"data"`
	}
	if err := r.get(ctx, "/product-details", params, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil || (resp.Data.ASIN == "" && resp.Data.title() == "") {
		return nil, ErrProductNotFound
	}
	p := resp.Data.toProduct()
	if p.ID == "" {
		p.ID = id
	}
	return &p, nil
}

func (r *RapidAPI) get(ctx context.Context, path string, params url.Values, v any) error {
	opts := httputil.FetchOptions{
		Timeout: r.cfg.Timeout,
		Client:  r.cfg.Client,
		Headers: map[string]string{
			"x-rapidapi-key":  r.cfg.APIKey,
			"x-rapidapi-host": r.cfg.Host,
		},
	}
	err := httputil.FetchJSON(ctx, r.cfg.BaseURL+path+"?"+params.Encode(), opts, v)
	if err == nil {
		return nil
	}

	pe := &ProviderError{Provider: "rapidapi", Err: err}
	var se *httputil.StatusError
	if errors.As(err, &se) {
		pe.StatusCode = se.StatusCode
	}
	r.logger.Warn("request failed", "path", path, "error", err)
	return pe
}

// rawProduct is the subset of the upstream product schema that drape reads.
type rawProduct struct {
	ASIN                string          `json:"asin"`
	ProductTitle        string          `json:"product_title"`
	Title               string          `json:"title"`
	ProductPrice        flexString      `json:"product_price"`
	Price               flexString      `json:"price"`
	ProductOrigPrice    flexString      `json:"product_original_price"`
	ProductPhoto        string          `json:"product_photo"`
	ProductMainImageURL string          `json:"product_main_image_url"`
	Thumbnail           string          `json:"thumbnail"`
	ProductPhotos       []string        `json:"product_photos"`
	StarRating          flexString      `json:"product_star_rating"`
	NumRatings          flexString      `json:"product_num_ratings"`
	ProductURL          string          `json:"product_url"`
	Category            json.RawMessage `json:"category"`
}

func (p rawProduct) title() string {
	if p.ProductTitle != "" {
		return p.ProductTitle
	}
	return p.Title
}

func (p rawProduct) toProduct() catalog.Product {
	// Tags derive from product_title only; the fallback title is display text.
	tags := catalog.Classify(p.ProductTitle)

	out := catalog.Product{
		ID:            p.ASIN,
		Title:         p.title(),
		Price:         firstNonEmpty(string(p.ProductPrice), string(p.Price)),
		OriginalPrice: string(p.ProductOrigPrice),
		ImageURL:      firstNonEmpty(p.ProductPhoto, p.ProductMainImageURL, p.Thumbnail),
		ImageURLs:     p.ProductPhotos,
		PurchaseURL:   p.ProductURL,
		Category:      tags.Category,
		Color:         tags.Color,
		Style:         tags.Style,
	}
	if len(out.ImageURLs) == 0 && p.ProductPhoto != "" {
		out.ImageURLs = []string{p.ProductPhoto}
	}
	if out.PurchaseURL == "" {
		out.PurchaseURL = "https://www.amazon.com/dp/" + p.ASIN
	}
	if cat := feedCategory(p.Category); cat != "" {
		out.Category = catalog.ParseCategory(cat)
	}
	if f, err := strconv.ParseFloat(string(p.StarRating), 64); err == nil {
		out.Rating = f
	}
	if n, err := strconv.Atoi(strings.ReplaceAll(string(p.NumRatings), ",", "")); err == nil {
		out.ReviewCount = n
	}
	return out
}

// feedCategory returns the upstream category when it is a plain string.
func feedCategory(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", string(b))
	}
	*f = flexString(n.String())
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
