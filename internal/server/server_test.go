package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	ps "github.com/mitchellh/go-ps"

	"github.com/jmylchreest/drape/internal/catalog"
	"github.com/jmylchreest/drape/internal/genai"
	imageutil "github.com/jmylchreest/drape/internal/image"
	"github.com/jmylchreest/drape/internal/search"
	"github.com/jmylchreest/drape/internal/stylist"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testCatalog = []catalog.Product{
	{ID: "d1", Title: "Black Elegant Cocktail Dress", Price: "$89.00", Category: catalog.CategoryDress, Color: "black", Style: catalog.StyleFormal},
	{ID: "s1", Title: "Silver Strappy Heels", Price: "$65.00", Category: catalog.CategoryShoes, Color: "silver", Style: catalog.StyleFormal},
	{ID: "b1", Title: "Gold Chain Clutch Bag", Price: "$45.00", Category: catalog.CategoryBag, Color: "gold", Style: catalog.StyleFormal},
	{ID: "j1", Title: "Pearl Drop Earrings", Price: "$30.00", Category: catalog.CategoryJewelry, Style: catalog.StyleClassic},
}

type fakeGenerator struct {
	image []byte
	ideas []string
	err   error
}

func (f *fakeGenerator) GenerateBackground(context.Context, string) ([]byte, error) {
	return f.image, f.err
}

func (f *fakeGenerator) TextIdeas(context.Context, string, string) ([]string, error) {
	return f.ideas, f.err
}

type fakeRemover struct {
	got []byte
	out []byte
	err error
}

func (f *fakeRemover) RemoveBackground(_ context.Context, img []byte) ([]byte, error) {
	f.got = img
	return f.out, f.err
}

func newTestServer(deps Deps) *Server {
	if deps.Searcher == nil {
		static := &search.Static{Products: testCatalog}
		deps.Searcher = static
		deps.Details = static
	}
	if deps.Matcher == nil {
		deps.Matcher = stylist.NewMatcher(deps.Searcher, stylist.WithRand(rand.New(rand.NewPCG(1, 2))))
	}
	return New(deps)
}

func do(t *testing.T, s *Server, method, target string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("%s %s: response is not JSON: %s", method, target, rec.Body.String())
		}
	}
	return rec, out
}

func TestHealth(t *testing.T) {
	rec, body := do(t, newTestServer(Deps{}), http.MethodGet, "/api/health", nil)
	if rec.Code != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("health = %d %v", rec.Code, body)
	}
	if v, ok := body["version"].(map[string]any); !ok || v["version"] == "" {
		t.Errorf("version = %v", body["version"])
	}
	services := body["services"].(map[string]any)
	if services["search"] != true || services["generation"] != false {
		t.Errorf("services = %v", services)
	}
}

func TestSearchProducts(t *testing.T) {
	s := newTestServer(Deps{})

	rec, body := do(t, s, http.MethodGet, "/api/products/search?q=elegant+dress", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %v", rec.Code, body)
	}
	if body["originalQuery"] != "elegant dress" {
		t.Errorf("originalQuery = %v", body["originalQuery"])
	}
	if body["searchQuery"] != "elegant sophisticated classy dress" {
		t.Errorf("searchQuery = %v", body["searchQuery"])
	}
	if got := body["products"].([]any); len(got) == 0 {
		t.Error("expected products")
	}

	rec, body = do(t, s, http.MethodGet, "/api/products/search?q=++", nil)
	if rec.Code != http.StatusBadRequest || body["error"] != "Search query is required" {
		t.Errorf("blank query = %d %v", rec.Code, body)
	}
}

func TestSearchProviderFailure(t *testing.T) {
	failing := search.SearcherFunc(func(context.Context, string, string) ([]catalog.Product, error) {
		return nil, &search.ProviderError{Provider: "rapidapi", StatusCode: 429, Err: errors.New("too many requests")}
	})
	s := newTestServer(Deps{Searcher: failing})

	rec, body := do(t, s, http.MethodGet, "/api/products/search?q=boots", nil)
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
	if body["error"] != "Failed to search products" || !strings.Contains(body["details"].(string), "429") {
		t.Errorf("body = %v", body)
	}
}

func TestProductDetails(t *testing.T) {
	s := newTestServer(Deps{})

	rec, body := do(t, s, http.MethodGet, "/api/products/s1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if p := body["product"].(map[string]any); p["title"] != "Silver Strappy Heels" {
		t.Errorf("product = %v", p)
	}

	rec, _ = do(t, s, http.MethodGet, "/api/products/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing product status = %d", rec.Code)
	}

	noDetails := New(Deps{Searcher: search.SearcherFunc(func(context.Context, string, string) ([]catalog.Product, error) { return nil, nil })})
	rec, _ = do(t, noDetails, http.MethodGet, "/api/products/s1", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("no details provider status = %d", rec.Code)
	}
}

func TestCompleteOutfit(t *testing.T) {
	s := newTestServer(Deps{})

	item := catalog.Product{ID: "d1", Title: "Black Elegant Cocktail Dress"}
	rec, body := do(t, s, http.MethodPost, "/api/styling/complete-outfit", map[string]any{"item": item})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %v", rec.Code, body)
	}
	base := body["baseItem"].(map[string]any)
	if base["category"] != "dress" || base["color"] != "black" {
		t.Errorf("base item was not analysed: %v", base)
	}
	if _, ok := body["suggestions"].(map[string]any); !ok {
		t.Errorf("suggestions = %v", body["suggestions"])
	}
	if palette := body["colorPalette"].([]any); len(palette) == 0 {
		t.Error("expected a colour palette")
	}

	// Pre-tagged items need no title.
	tagged := map[string]any{"category": "shoes", "color": "red", "style": "formal"}
	rec, body = do(t, s, http.MethodPost, "/api/styling/complete-outfit", map[string]any{"item": tagged})
	if rec.Code != http.StatusOK {
		t.Fatalf("tagged item status = %d: %v", rec.Code, body)
	}
	base = body["baseItem"].(map[string]any)
	if base["category"] != "shoes" || base["color"] != "red" || base["style"] != "formal" {
		t.Errorf("tagged base item = %v", base)
	}
}

func TestValidation(t *testing.T) {
	s := newTestServer(Deps{Generator: &fakeGenerator{}, Remover: &fakeRemover{}})

	tests := []struct {
		name    string
		path    string
		body    any
		wantMsg string
	}{
		{"outfit without item", "/api/styling/complete-outfit", map[string]any{}, "Item is required"},
		{"outfit null item", "/api/styling/complete-outfit", `{"item": null}`, "Item is required"},
		{"analyze malformed", "/api/styling/analyze", `{"item":`, "Invalid request body"},
		{"aesthetic missing", "/api/pins/generate-aesthetic", map[string]any{"aesthetic": " "}, "Aesthetic is required"},
		{"text ideas missing", "/api/pins/generate-text-ideas", map[string]any{"context": "sale"}, "Aesthetic is required"},
		{"remove bg missing", "/api/pins/remove-background", map[string]any{}, "Image is required"},
		{"remove bg bad base64", "/api/pins/remove-background", map[string]any{"imageBase64": "%%%"}, "Image must be base64 or a data URL"},
		{"palette missing", "/api/pins/palette", map[string]any{}, "Image is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := do(t, s, http.MethodPost, tt.path, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			if body["error"] != tt.wantMsg {
				t.Errorf("error = %v, want %q", body["error"], tt.wantMsg)
			}
		})
	}
}

func TestAnalyzeItem(t *testing.T) {
	rec, body := do(t, newTestServer(Deps{}), http.MethodPost, "/api/styling/analyze",
		map[string]any{"item": map[string]any{"title": "Navy Vintage Denim Jeans"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	item := body["item"].(map[string]any)
	if item["category"] != "bottom" || item["color"] != "navy" || item["style"] != "vintage" {
		t.Errorf("item = %v", item)
	}
}

func TestPinGeneration(t *testing.T) {
	gen := &fakeGenerator{image: []byte("PNG"), ideas: []string{"Ocean soul", "Salty air"}}
	s := newTestServer(Deps{Generator: gen})

	rec, body := do(t, s, http.MethodPost, "/api/pins/generate-aesthetic", map[string]any{"aesthetic": "coastal"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["imageUrl"] != "data:image/png;base64,"+base64.StdEncoding.EncodeToString([]byte("PNG")) {
		t.Errorf("imageUrl = %v", body["imageUrl"])
	}

	rec, body = do(t, s, http.MethodPost, "/api/pins/generate-text-ideas", map[string]any{"aesthetic": "coastal", "context": "summer"})
	if rec.Code != http.StatusOK || len(body["textIdeas"].([]any)) != 2 {
		t.Errorf("text ideas = %d %v", rec.Code, body)
	}

	gen.err = &genai.ServiceError{Op: "generate background", Err: errors.New("quota")}
	rec, _ = do(t, s, http.MethodPost, "/api/pins/generate-aesthetic", map[string]any{"aesthetic": "coastal"})
	if rec.Code != http.StatusBadGateway {
		t.Errorf("service failure status = %d, want 502", rec.Code)
	}

	unconfigured := newTestServer(Deps{})
	rec, _ = do(t, unconfigured, http.MethodPost, "/api/pins/generate-text-ideas", map[string]any{"aesthetic": "coastal"})
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("unconfigured status = %d, want 503", rec.Code)
	}
}

func TestRemoveBackground(t *testing.T) {
	remover := &fakeRemover{out: []byte("CUTOUT")}
	s := newTestServer(Deps{Remover: remover})

	raw := base64.StdEncoding.EncodeToString([]byte("JPEGDATA"))
	rec, body := do(t, s, http.MethodPost, "/api/pins/remove-background", map[string]any{"imageBase64": raw})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %v", rec.Code, body)
	}
	if string(remover.got) != "JPEGDATA" {
		t.Errorf("remover got %q", remover.got)
	}
	if !strings.HasPrefix(body["imageUrl"].(string), "data:image/png;base64,") {
		t.Errorf("imageUrl = %v", body["imageUrl"])
	}

	dataURL := "data:image/jpeg;base64," + raw
	do(t, s, http.MethodPost, "/api/pins/remove-background", map[string]any{"imageBase64": dataURL})
	if string(remover.got) != dataURL {
		t.Errorf("data URLs should pass through, got %q", remover.got)
	}
}

func TestPalette(t *testing.T) {
	dec := imageutil.DecoderFunc(func(_ context.Context, src string) (image.Image, error) {
		if src != "tall-red" {
			return nil, errors.New("not found")
		}
		img := image.NewRGBA(image.Rect(0, 0, 20, 40))
		for y := 0; y < 40; y++ {
			for x := 0; x < 20; x++ {
				img.Set(x, y, color.RGBA{R: 255, A: 255})
			}
		}
		return img, nil
	})
	s := newTestServer(Deps{Decoder: dec})

	rec, body := do(t, s, http.MethodPost, "/api/pins/palette", map[string]any{"image": "tall-red"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["background"] != "#ff0000" || body["textColor"] != "#000000" {
		t.Errorf("background = %v, textColor = %v", body["background"], body["textColor"])
	}
	if layout := body["layout"].(map[string]any); layout["layout"] != "vertical" {
		t.Errorf("layout = %v", layout)
	}

	rec, body = do(t, s, http.MethodPost, "/api/pins/palette", map[string]any{"image": "missing"})
	if rec.Code != http.StatusOK {
		t.Fatalf("undecodable image should degrade, got %d", rec.Code)
	}
	if colors := body["colors"].([]any); len(colors) != 4 || colors[0] != "#ffffff" {
		t.Errorf("fallback colors = %v", colors)
	}
}

func TestAesthetics(t *testing.T) {
	rec, body := do(t, newTestServer(Deps{}), http.MethodGet, "/api/pins/aesthetics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	names := body["suggestions"].([]any)
	if !slices.Contains(names, any("dark academia")) {
		t.Errorf("suggestions = %v", names)
	}
}

type fakeProc struct {
	pid, ppid int
	exe       string
}

func (p fakeProc) Pid() int           { return p.pid }
func (p fakeProc) PPid() int          { return p.ppid }
func (p fakeProc) Executable() string { return p.exe }

func TestPeers(t *testing.T) {
	procs := []ps.Process{
		fakeProc{pid: 10, ppid: 1, exe: "drape"},
		fakeProc{pid: 11, ppid: 1, exe: "drape"},
		fakeProc{pid: 12, ppid: 10, exe: "drape"},
		fakeProc{pid: 13, ppid: 1, exe: "bash"},
	}
	if got := peers(procs, 10, "drape"); !slices.Equal(got, []int{11}) {
		t.Errorf("peers = %v, want [11]", got)
	}
}
