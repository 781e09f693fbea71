package wardrobe

import (
	"fmt"
	"html/template"
	"io"

	"github.com/jmylchreest/drape/internal/colour"
)

// PageFilename is the suggested file name for an exported page.
const PageFilename = "my-shop-links.html"

var pageTemplate = template.Must(template.New("linktree").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Settings.Title}}</title>
  <style>
    * { box-sizing: border-box; margin: 0; padding: 0; }
    body {
      font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
      background: {{.Settings.BackgroundColor}};
      min-height: 100vh;
      padding: 20px;
    }
    .container { max-width: 600px; margin: 0 auto; }
    .header { text-align: center; padding: 30px 20px; }
    .header h1 { font-size: 28px; color: {{.Settings.AccentColor}}; margin-bottom: 10px; }
    .header p { color: #666; font-size: 16px; }
    .products {
      display: grid;
      grid-template-columns: repeat(2, 1fr);
      gap: 16px;
      padding: 20px 0;
    }
    .product {
      background: white;
      border-radius: 16px;
      overflow: hidden;
      box-shadow: 0 2px 8px rgba(0,0,0,0.1);
      transition: transform 0.2s, box-shadow 0.2s;
      text-decoration: none;
      color: inherit;
    }
    .product:hover { transform: translateY(-4px); box-shadow: 0 8px 24px rgba(0,0,0,0.15); }
    .product img { width: 100%; aspect-ratio: 1; object-fit: cover; }
    .product-info { padding: 12px; }
    .product-title {
      font-size: 14px;
      font-weight: 500;
      color: #333;
      display: -webkit-box;
      -webkit-line-clamp: 2;
      -webkit-box-orient: vertical;
      overflow: hidden;
    }
    .product-price { color: {{.Settings.AccentColor}}; font-weight: 600; margin-top: 4px; }
    .footer { text-align: center; padding: 30px; color: #999; font-size: 12px; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>{{.Settings.Title}}</h1>
      <p>{{.Settings.Bio}}</p>
    </div>
    <div class="products">
{{- range .Products}}
      <a href="{{.PurchaseURL}}" target="_blank" rel="noopener" class="product">
        <img src="{{.ImageURL}}" alt="{{.Title}}">
        <div class="product-info">
          <div class="product-title">{{.Title}}</div>
          {{- if .Price}}
          <div class="product-price">{{.Price}}</div>
          {{- end}}
        </div>
      </a>
{{- end}}
    </div>
    <div class="footer">
      Powered by drape
    </div>
  </div>
</body>
</html>
`))

// RenderPage writes the shoppable page as a standalone HTML document.
func (l *Linktree) RenderPage(w io.Writer) error {
	doc, err := l.Load()
	if err != nil {
		return err
	}
	return RenderDocument(w, doc)
}

// RenderDocument writes doc as HTML. Colours that are not hex values fall back
// to the defaults so they cannot break out of the style sheet.
func RenderDocument(w io.Writer, doc LinktreeDocument) error {
	defaults := DefaultLinktreeSettings()
	doc.Settings.BackgroundColor = safeColour(doc.Settings.BackgroundColor, defaults.BackgroundColor)
	doc.Settings.AccentColor = safeColour(doc.Settings.AccentColor, defaults.AccentColor)
	if err := pageTemplate.Execute(w, doc); err != nil {
		return fmt.Errorf("failed to render linktree page: %w", err)
	}
	return nil
}

func safeColour(s, fallback string) string {
	c, err := colour.ParseHex(s)
	if err != nil {
		return fallback
	}
	return c.Hex()
}
