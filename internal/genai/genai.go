// Package genai generates pin backgrounds and overlay text ideas with Google's
// Gen AI models.
package genai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"mime"
	"strings"

	"github.com/hashicorp/go-hclog"
	googlegenai "google.golang.org/genai"

	imageutil "github.com/jmylchreest/drape/internal/image"
	"github.com/jmylchreest/drape/internal/pin"
)

const (
	// DefaultImageModel generates backgrounds through GenerateContent.
	DefaultImageModel = "gemini-2.5-flash-image"

	// DefaultTextModel generates text ideas.
	DefaultTextModel = "gemini-2.5-flash"

	// BackendGeminiAPI and BackendVertexAI select the Gen AI backend.
	BackendGeminiAPI = "gemini-api"
	BackendVertexAI  = "vertex-ai"

	pinAspectRatio = "2:3"

	// textTemperature matches the loose, creative register wanted for captions.
	textTemperature float32 = 0.9
)

// ErrNotConfigured is returned when no API key or backend is available.
var ErrNotConfigured = errors.New("image generation is not configured: set GOOGLE_API_KEY")

// ServiceError reports a failed call to the generation service.
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Config selects models and credentials.
type Config struct {
	APIKey     string
	Backend    string
	ImageModel string
	TextModel  string
}

// models is the subset of *googlegenai.Models the client calls.
type models interface {
	GenerateContent(ctx context.Context, model string, contents []*googlegenai.Content, config *googlegenai.GenerateContentConfig) (*googlegenai.GenerateContentResponse, error)
	GenerateImages(ctx context.Context, model, prompt string, config *googlegenai.GenerateImagesConfig) (*googlegenai.GenerateImagesResponse, error)
}

// Client generates pin assets.
type Client struct {
	models     models
	imageModel string
	textModel  string
	logger     hclog.Logger
}

// New creates a client. Without an API key on the Gemini API backend it
// returns ErrNotConfigured.
func New(ctx context.Context, cfg Config, logger hclog.Logger) (*Client, error) {
	clientConfig := &googlegenai.ClientConfig{Backend: googlegenai.BackendGeminiAPI}
	if cfg.Backend == BackendVertexAI {
		clientConfig.Backend = googlegenai.BackendVertexAI
	}
	if clientConfig.Backend == googlegenai.BackendGeminiAPI {
		if cfg.APIKey == "" {
			return nil, ErrNotConfigured
		}
		clientConfig.APIKey = cfg.APIKey
	}

	gc, err := googlegenai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gen AI client: %w", err)
	}
	return newClient(gc.Models, cfg, logger), nil
}

func newClient(m models, cfg Config, logger hclog.Logger) *Client {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	c := &Client{
		models:     m,
		imageModel: cfg.ImageModel,
		textModel:  cfg.TextModel,
		logger:     logger,
	}
	if c.imageModel == "" {
		c.imageModel = DefaultImageModel
	}
	if c.textModel == "" {
		c.textModel = DefaultTextModel
	}
	return c
}

// isImagenModel reports whether model uses GenerateImages rather than GenerateContent.
func isImagenModel(model string) bool {
	return strings.HasPrefix(strings.TrimPrefix(model, "models/"), "imagen-")
}

// GenerateBackground returns PNG bytes for a portrait pin background.
func (c *Client) GenerateBackground(ctx context.Context, aesthetic string) ([]byte, error) {
	if strings.TrimSpace(aesthetic) == "" {
		return nil, errors.New("aesthetic is required")
	}
	prompt := pin.BackgroundPrompt(aesthetic)
	c.logger.Debug("generating background", "model", c.imageModel, "aesthetic", aesthetic)

	if isImagenModel(c.imageModel) {
		return c.generateWithImagen(ctx, prompt)
	}
	return c.generateWithGemini(ctx, prompt)
}

func (c *Client) generateWithImagen(ctx context.Context, prompt string) ([]byte, error) {
	resp, err := c.models.GenerateImages(ctx, c.imageModel, prompt, &googlegenai.GenerateImagesConfig{
		NumberOfImages: 1,
		AspectRatio:    pinAspectRatio,
		OutputMIMEType: "image/png",
	})
	if err != nil {
		return nil, &ServiceError{Op: "generate background", Err: err}
	}
	if len(resp.GeneratedImages) == 0 {
		return nil, &ServiceError{Op: "generate background", Err: errors.New("no images generated in response")}
	}

	img := resp.GeneratedImages[0]
	if img.RAIFilteredReason != "" {
		return nil, &ServiceError{Op: "generate background", Err: fmt.Errorf("image was filtered by safety system: %s", img.RAIFilteredReason)}
	}
	if img.Image == nil || len(img.Image.ImageBytes) == 0 {
		return nil, &ServiceError{Op: "generate background", Err: errors.New("generated image has no image data")}
	}
	return img.Image.ImageBytes, nil
}

func (c *Client) generateWithGemini(ctx context.Context, prompt string) ([]byte, error) {
	contents := googlegenai.Text(fmt.Sprintf("Generate an image with aspect ratio %s: %s", pinAspectRatio, prompt))
	resp, err := c.models.GenerateContent(ctx, c.imageModel, contents, &googlegenai.GenerateContentConfig{
		ResponseModalities: []string{"Image"},
	})
	if err != nil {
		return nil, &ServiceError{Op: "generate background", Err: err}
	}

	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				c.logger.Debug("received background", "bytes", len(part.InlineData.Data), "mime", part.InlineData.MIMEType)
				data, err := asPNG(part.InlineData.Data, part.InlineData.MIMEType)
				if err != nil {
					return nil, &ServiceError{Op: "generate background", Err: err}
				}
				return data, nil
			}
		}
	}
	return nil, &ServiceError{Op: "generate background", Err: errors.New("no inline image data found in response")}
}

// asPNG returns data unchanged when it is PNG and re-encodes any other decodable
// image as PNG.
func asPNG(data []byte, mimeType string) ([]byte, error) {
	if mt, _, err := mime.ParseMediaType(mimeType); err == nil && mt == "image/png" {
		return data, nil
	}
	img, err := imageutil.DecodeBytes(data)
	if err != nil {
		return nil, fmt.Errorf("unusable %q image data: %w", mimeType, err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// TextIdeas returns up to pin.MaxTextIdeas short overlay lines.
func (c *Client) TextIdeas(ctx context.Context, aesthetic, extra string) ([]string, error) {
	if strings.TrimSpace(aesthetic) == "" {
		return nil, errors.New("aesthetic is required")
	}
	temp := textTemperature
	resp, err := c.models.GenerateContent(ctx, c.textModel,
		googlegenai.Text(pin.TextIdeasPrompt(aesthetic, extra)),
		&googlegenai.GenerateContentConfig{
			SystemInstruction: googlegenai.NewContentFromText(pin.TextIdeasSystemPrompt, googlegenai.RoleUser),
			Temperature:       &temp,
		})
	if err != nil {
		return nil, &ServiceError{Op: "generate text ideas", Err: err}
	}
	return pin.ParseTextIdeas(resp.Text()), nil
}
