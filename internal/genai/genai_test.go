package genai

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"slices"
	"strings"
	"testing"

	googlegenai "google.golang.org/genai"
)

type fakeModels struct {
	contentResp *googlegenai.GenerateContentResponse
	imagesResp  *googlegenai.GenerateImagesResponse
	err         error

	lastModel  string
	lastPrompt string
	lastConfig *googlegenai.GenerateContentConfig
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*googlegenai.Content, config *googlegenai.GenerateContentConfig) (*googlegenai.GenerateContentResponse, error) {
	f.lastModel = model
	f.lastConfig = config
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.lastPrompt = contents[0].Parts[0].Text
	}
	return f.contentResp, f.err
}

func (f *fakeModels) GenerateImages(_ context.Context, model, prompt string, _ *googlegenai.GenerateImagesConfig) (*googlegenai.GenerateImagesResponse, error) {
	f.lastModel = model
	f.lastPrompt = prompt
	return f.imagesResp, f.err
}

func contentWith(parts ...*googlegenai.Part) *googlegenai.GenerateContentResponse {
	return &googlegenai.GenerateContentResponse{
		Candidates: []*googlegenai.Candidate{{Content: &googlegenai.Content{Parts: parts}}},
	}
}

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func TestNewRequiresKey(t *testing.T) {
	if _, err := New(context.Background(), Config{}, nil); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("New() error = %v, want ErrNotConfigured", err)
	}
}

func TestGenerateBackgroundGemini(t *testing.T) {
	fake := &fakeModels{contentResp: contentWith(
		&googlegenai.Part{Text: "Here is your background"},
		&googlegenai.Part{InlineData: &googlegenai.Blob{MIMEType: "image/png", Data: pngMagic}},
	)}
	c := newClient(fake, Config{}, nil)

	data, err := c.GenerateBackground(context.Background(), "coastal")
	if err != nil {
		t.Fatalf("GenerateBackground() error = %v", err)
	}
	if !bytes.Equal(data, pngMagic) {
		t.Errorf("data = %q", data)
	}
	if fake.lastModel != DefaultImageModel {
		t.Errorf("model = %q", fake.lastModel)
	}
	if !strings.Contains(fake.lastPrompt, "aspect ratio 2:3") || !strings.Contains(fake.lastPrompt, "beach vibes") {
		t.Errorf("prompt = %q", fake.lastPrompt)
	}
	if !slices.Equal(fake.lastConfig.ResponseModalities, []string{"Image"}) {
		t.Errorf("modalities = %v", fake.lastConfig.ResponseModalities)
	}
}

func TestGenerateBackgroundConvertsToPNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 6, 9))
	for i := range img.Pix {
		img.Pix[i] = 0x80
	}
	img.Set(0, 0, color.Black)
	var jpg bytes.Buffer
	if err := jpeg.Encode(&jpg, img, nil); err != nil {
		t.Fatal(err)
	}

	fake := &fakeModels{contentResp: contentWith(
		&googlegenai.Part{InlineData: &googlegenai.Blob{MIMEType: "image/jpeg", Data: jpg.Bytes()}},
	)}
	data, err := newClient(fake, Config{}, nil).GenerateBackground(context.Background(), "boho")
	if err != nil {
		t.Fatalf("GenerateBackground() error = %v", err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("background is not PNG: %v", err)
	}
	if cfg.Width != 6 || cfg.Height != 9 {
		t.Errorf("size = %dx%d, want 6x9", cfg.Width, cfg.Height)
	}

	fake.contentResp = contentWith(&googlegenai.Part{InlineData: &googlegenai.Blob{MIMEType: "image/heic", Data: []byte("ftypheic")}})
	_, err = newClient(fake, Config{}, nil).GenerateBackground(context.Background(), "boho")
	var se *ServiceError
	if !errors.As(err, &se) || !strings.Contains(err.Error(), "image/heic") {
		t.Errorf("undecodable image error = %v", err)
	}
}

func TestGenerateBackgroundImagen(t *testing.T) {
	fake := &fakeModels{imagesResp: &googlegenai.GenerateImagesResponse{
		GeneratedImages: []*googlegenai.GeneratedImage{{Image: &googlegenai.Image{ImageBytes: pngMagic}}},
	}}
	c := newClient(fake, Config{ImageModel: "imagen-4.0-generate-001"}, nil)

	data, err := c.GenerateBackground(context.Background(), "grunge")
	if err != nil {
		t.Fatalf("GenerateBackground() error = %v", err)
	}
	if !bytes.Equal(data, pngMagic) || fake.lastModel != "imagen-4.0-generate-001" {
		t.Errorf("data = %q model = %q", data, fake.lastModel)
	}
}

func TestGenerateBackgroundFailures(t *testing.T) {
	tests := []struct {
		name  string
		model string
		fake  *fakeModels
		want  string
	}{
		{"transport", "", &fakeModels{err: errors.New("503 unavailable")}, "503 unavailable"},
		{"no image part", "", &fakeModels{contentResp: contentWith(&googlegenai.Part{Text: "sorry"})}, "no inline image data"},
		{"no candidates", "", &fakeModels{contentResp: &googlegenai.GenerateContentResponse{}}, "no inline image data"},
		{"filtered", "imagen-3.0-generate-002", &fakeModels{imagesResp: &googlegenai.GenerateImagesResponse{
			GeneratedImages: []*googlegenai.GeneratedImage{{RAIFilteredReason: "blocked"}},
		}}, "safety system"},
		{"imagen empty", "imagen-3.0-generate-002", &fakeModels{imagesResp: &googlegenai.GenerateImagesResponse{}}, "no images generated"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClient(tt.fake, Config{ImageModel: tt.model}, nil)
			_, err := c.GenerateBackground(context.Background(), "modern")
			var se *ServiceError
			if !errors.As(err, &se) {
				t.Fatalf("error = %v, want *ServiceError", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want %q", err, tt.want)
			}
		})
	}

	c := newClient(&fakeModels{}, Config{}, nil)
	if _, err := c.GenerateBackground(context.Background(), "  "); err == nil {
		t.Error("blank aesthetic should fail")
	}
}

func TestTextIdeas(t *testing.T) {
	fake := &fakeModels{contentResp: contentWith(&googlegenai.Part{
		Text: "Salt in the air\nTide & time\n\nSea glass days\nOcean hush\nDrift\nShoreline\nExtra line",
	})}
	c := newClient(fake, Config{}, nil)

	ideas, err := c.TextIdeas(context.Background(), "coastal", "summer launch")
	if err != nil {
		t.Fatalf("TextIdeas() error = %v", err)
	}
	if len(ideas) != 6 || ideas[0] != "Salt in the air" || ideas[5] != "Shoreline" {
		t.Errorf("ideas = %q", ideas)
	}
	if fake.lastModel != DefaultTextModel {
		t.Errorf("model = %q", fake.lastModel)
	}
	if !strings.Contains(fake.lastPrompt, "Context: summer launch") {
		t.Errorf("prompt = %q", fake.lastPrompt)
	}
	if fake.lastConfig.SystemInstruction == nil || fake.lastConfig.Temperature == nil {
		t.Error("system instruction and temperature should be set")
	}
}

func TestIsImagenModel(t *testing.T) {
	for model, want := range map[string]bool{
		"imagen-4.0-generate-001":        true,
		"models/imagen-3.0-generate-002": true,
		"gemini-2.5-flash-image":         false,
	} {
		if got := isImagenModel(model); got != want {
			t.Errorf("isImagenModel(%q) = %v, want %v", model, got, want)
		}
	}
}
