package server

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jmylchreest/drape/internal/catalog"
	"github.com/jmylchreest/drape/internal/colour"
	imageutil "github.com/jmylchreest/drape/internal/image"
	"github.com/jmylchreest/drape/internal/pin"
	"github.com/jmylchreest/drape/internal/stylist"
	"github.com/jmylchreest/drape/internal/version"
)

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": version.GetInfo(),
		"services": gin.H{
			"search":            s.deps.Searcher != nil,
			"generation":        s.deps.Generator != nil,
			"backgroundRemoval": s.deps.Remover != nil,
		},
	})
}

func (s *Server) searchProducts(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		badRequest(c, "Search query is required")
		return
	}
	if s.deps.Searcher == nil {
		unavailable(c, "Product search")
		return
	}

	enhanced := stylist.EnhanceQuery(q)
	products, err := s.deps.Searcher.Search(c.Request.Context(), enhanced, c.Query("category"))
	if err != nil {
		s.fail(c, "Failed to search products", err)
		return
	}
	if products == nil {
		products = []catalog.Product{}
	}
	c.JSON(http.StatusOK, gin.H{
		"products":      products,
		"originalQuery": q,
		"searchQuery":   enhanced,
	})
}

func (s *Server) productDetails(c *gin.Context) {
	if s.deps.Details == nil {
		unavailable(c, "Product details")
		return
	}
	p, err := s.deps.Details.Details(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, "Failed to get product details", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": p})
}

type itemRequest struct {
	Item *catalog.Product `json:"item"`
}

// problem returns a client-facing validation message, or "".
func (r itemRequest) problem() string {
	if r.Item == nil {
		return "Item is required"
	}
	return ""
}

func bindItem(c *gin.Context) (catalog.Product, bool) {
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return catalog.Product{}, false
	}
	if msg := req.problem(); msg != "" {
		badRequest(c, msg)
		return catalog.Product{}, false
	}
	return catalog.Analyze(*req.Item), true
}

func (s *Server) completeOutfit(c *gin.Context) {
	item, ok := bindItem(c)
	if !ok {
		return
	}
	if s.deps.Matcher == nil {
		unavailable(c, "Product search")
		return
	}
	c.JSON(http.StatusOK, s.deps.Matcher.Match(c.Request.Context(), item))
}

func (s *Server) analyzeItem(c *gin.Context) {
	item, ok := bindItem(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"item":       item,
		"colors":     stylist.CompanionColors(item.Color),
		"categories": stylist.CompanionCategories(item.Category),
		"styles":     stylist.CompatibleStyles(item.Style),
	})
}

func (s *Server) aesthetics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"suggestions":  pin.Aesthetics(),
		"colorPresets": pin.ColorPresets,
	})
}

type aestheticRequest struct {
	Aesthetic string `json:"aesthetic"`
	Context   string `json:"context"`
}

func bindAesthetic(c *gin.Context) (aestheticRequest, bool) {
	var req aestheticRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return req, false
	}
	if strings.TrimSpace(req.Aesthetic) == "" {
		badRequest(c, "Aesthetic is required")
		return req, false
	}
	return req, true
}

func (s *Server) generateAesthetic(c *gin.Context) {
	req, ok := bindAesthetic(c)
	if !ok {
		return
	}
	if s.deps.Generator == nil {
		unavailable(c, "Image generation")
		return
	}
	data, err := s.deps.Generator.GenerateBackground(c.Request.Context(), req.Aesthetic)
	if err != nil {
		s.fail(c, "Failed to generate aesthetic background", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"imageUrl":  dataURL("image/png", data),
		"aesthetic": req.Aesthetic,
	})
}

func (s *Server) generateTextIdeas(c *gin.Context) {
	req, ok := bindAesthetic(c)
	if !ok {
		return
	}
	if s.deps.Generator == nil {
		unavailable(c, "Text generation")
		return
	}
	ideas, err := s.deps.Generator.TextIdeas(c.Request.Context(), req.Aesthetic, req.Context)
	if err != nil {
		s.fail(c, "Failed to generate text ideas", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"textIdeas": ideas})
}

type imageRequest struct {
	ImageBase64 string `json:"imageBase64"`
	Image       string `json:"image"`
}

// decodeImagePayload accepts a data URL or bare base64.
func decodeImagePayload(payload string) ([]byte, error) {
	if imageutil.IsDataURL(payload) {
		return []byte(payload), nil
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, errors.New("image must be base64 or a data URL")
	}
	return data, nil
}

func (s *Server) removeBackground(c *gin.Context) {
	var req imageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	if req.ImageBase64 == "" {
		badRequest(c, "Image is required")
		return
	}
	data, err := decodeImagePayload(req.ImageBase64)
	if err != nil {
		badRequest(c, "Image must be base64 or a data URL")
		return
	}
	if s.deps.Remover == nil {
		unavailable(c, "Background removal")
		return
	}

	png, err := s.deps.Remover.RemoveBackground(c.Request.Context(), data)
	if err != nil {
		s.fail(c, "Failed to remove background", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imageUrl": dataURL("image/png", png)})
}

func (s *Server) palette(c *gin.Context) {
	var req imageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	src := req.Image
	if src == "" {
		badRequest(c, "Image is required")
		return
	}

	colors, layout := colour.FallbackPalette(), colour.DefaultLayout()
	if img, err := s.deps.Decoder.Decode(c.Request.Context(), src); err != nil {
		s.logger.Debug("palette image not decoded", "error", err)
	} else {
		colors, layout = colour.QuantizedPalette(img), colour.LayoutOf(img)
	}
	bg := colour.BackgroundChoice(colors)
	c.JSON(http.StatusOK, gin.H{
		"colors":     colors,
		"background": bg,
		"textColor":  colour.TextColourFor(bg),
		"names":      colour.NearestNames(colors),
		"layout":     layout,
	})
}

func dataURL(mediaType string, data []byte) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
