package plugin

// SearchRequest is sent to a provider for every query.
type SearchRequest struct {
	Query    string `json:"query"`
	Category string `json:"category,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

// Product is the wire form of a catalog product. Providers may leave Category,
// Color and Style empty; the host derives them from the title.
type Product struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Price         string   `json:"price,omitempty"`
	OriginalPrice string   `json:"originalPrice,omitempty"`
	Image         string   `json:"image,omitempty"`
	Images        []string `json:"images,omitempty"`
	Rating        float64  `json:"rating,omitempty"`
	ReviewCount   int      `json:"reviewCount,omitempty"`
	URL           string   `json:"url,omitempty"`
	Category      string   `json:"category,omitempty"`
	Color         string   `json:"color,omitempty"`
	Style         string   `json:"style,omitempty"`
}

// SearchResponse is what a json-stdio provider writes to stdout.
type SearchResponse struct {
	Products []Product `json:"products"`
	Error    string    `json:"error,omitempty"`
}
