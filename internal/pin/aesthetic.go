package pin

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"
	"time"
)

type aestheticHint struct {
	name  string
	hints string
}

// aestheticHints are the style cues used when asking a generator for a
// background, in the order they are offered.
var aestheticHints = []aestheticHint{
	{"minimalist", "clean, simple, white space, muted colors, elegant simplicity"},
	{"cottagecore", "pastoral, floral, soft colors, vintage countryside, cozy warmth"},
	{"dark academia", "moody, scholarly, rich browns and deep greens, vintage books, classical art"},
	{"bohemian", "eclectic, colorful patterns, natural textures, free-spirited, warm earth tones"},
	{"vintage", "retro, nostalgic, aged textures, sepia tones, classic elegance"},
	{"modern", "sleek, contemporary, bold geometry, clean lines, sophisticated"},
	{"romantic", "soft pinks, florals, dreamy, delicate, whimsical"},
	{"grunge", "edgy, distressed textures, dark colors, urban, raw"},
	{"coastal", "beach vibes, blues and whites, sandy textures, nautical, serene"},
	{"ethereal", "dreamy, soft light, pastels, magical, otherworldly glow"},
}

// Aesthetics lists the named aesthetics with generator hints.
func Aesthetics() []string {
	names := make([]string, len(aestheticHints))
	for i, a := range aestheticHints {
		names[i] = a.name
	}
	return names
}

// StyleHints returns the generator cues for an aesthetic. Unknown aesthetics are
// passed through as their own hint.
func StyleHints(aesthetic string) string {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(aesthetic)), "-", " ")
	for _, a := range aestheticHints {
		if a.name == key {
			return a.hints
		}
	}
	return aesthetic
}

// BackgroundPrompt is the image generation prompt for a pin background.
func BackgroundPrompt(aesthetic string) string {
	return fmt.Sprintf("Create a beautiful Pinterest-worthy aesthetic background image. Style: %s. "+
		"The image should be visually stunning, suitable as a background for a collage or mood board. "+
		"No text, no people, just decorative aesthetic elements and textures. "+
		"Vertical orientation suitable for Pinterest (2:3 aspect ratio).", StyleHints(aesthetic))
}

// TextIdeasSystemPrompt frames text idea generation.
const TextIdeasSystemPrompt = "You are a creative social media content expert specializing in Pinterest aesthetics."

// MaxTextIdeas is the number of text ideas requested and kept.
const MaxTextIdeas = 6

// TextIdeasPrompt asks for short overlay text ideas.
func TextIdeasPrompt(aesthetic, context string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d short, creative text ideas for a Pinterest pin with a %q aesthetic.", MaxTextIdeas, aesthetic)
	if context != "" {
		fmt.Fprintf(&b, " Context: %s", context)
	}
	b.WriteString(`

The text should be:
- Short and punchy (1-5 words each)
- Aesthetic and on-brand for the style
- Could be quotes, single words, or short phrases
- Instagram/Pinterest caption worthy

Return only the 6 text options, one per line, no numbering or bullets.`)
	return b.String()
}

// ParseTextIdeas splits generated text into at most MaxTextIdeas trimmed lines.
func ParseTextIdeas(text string) []string {
	ideas := []string{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ideas = append(ideas, line)
		if len(ideas) == MaxTextIdeas {
			break
		}
	}
	return ideas
}

var textSuggestions = map[string][]string{
	"minimalist":    {"Less is more", "Simplicity", "Clean & calm", "Breathe", "Space to think", "Pure"},
	"cottagecore":   {"Wildflower soul", "Slow living", "Bloom where planted", "Cozy days", "Simple pleasures", "Homemade happiness"},
	"dark-academia": {"Dead poets society", "Knowledge is power", "Carpe diem", "Lost in literature", "Ink & coffee", "Autumn leaves & old books"},
	"bohemian":      {"Free spirit", "Wild & free", "Wanderlust", "Good vibes only", "Live in the moment", "Follow the sun"},
	"vintage":       {"Timeless", "Old soul", "Classic never dies", "Nostalgia", "Golden days", "Retro vibes"},
	"modern":        {"Bold moves", "Forward thinking", "Create the future", "Innovate", "Level up", "New era"},
	"romantic":      {"Love always", "Dream big", "Soft heart", "Forever & always", "Sweet moments", "Follow your heart"},
	"grunge":        {"Stay weird", "No rules", "Chaos & art", "Unfiltered", "Raw & real", "Against the grain"},
	"coastal":       {"Ocean soul", "Salty air", "Sea breeze", "Vitamin sea", "Beach state of mind", "Waves & wonder"},
	"ethereal":      {"Dreaming awake", "Magic exists", "Soft glow", "Beyond the stars", "Otherworldly", "Light being"},
	"sunset":        {"Golden hour", "Chase the sun", "Sky on fire", "Dusk dreams", "Until tomorrow", "Paint the sky"},
	"forest":        {"Into the wild", "Nature heals", "Deep roots", "Forest bathing", "Wild at heart", "Green therapy"},
	"custom":        {"Make it yours", "Your story", "Unique vibes", "One of a kind", "Express yourself", "Create magic"},
}

// TextSuggestions returns offline text ideas for an aesthetic, falling back to
// the custom set. The result is a copy.
func TextSuggestions(aesthetic string) []string {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(aesthetic)), " ", "-")
	ideas, ok := textSuggestions[key]
	if !ok {
		ideas = textSuggestions["custom"]
	}
	return append([]string(nil), ideas...)
}

// ShuffleIdeas shuffles ideas in place using rng.
func ShuffleIdeas(rng *rand.Rand, ideas []string) {
	rng.Shuffle(len(ideas), func(i, j int) { ideas[i], ideas[j] = ideas[j], ideas[i] })
}

// ColorPreset is a named solid background.
type ColorPreset struct {
	ID    string `json:"id"`
	Color string `json:"color"`
	Label string `json:"label"`
}

// ColorPresets are the solid backgrounds offered when no image is generated.
var ColorPresets = []ColorPreset{
	{"white", "#ffffff", "White"},
	{"cream", "#f5f5dc", "Cream"},
	{"blush", "#ffb6c1", "Blush"},
	{"lavender", "#e6e6fa", "Lavender"},
	{"sage", "#9dc183", "Sage"},
	{"sky", "#87ceeb", "Sky"},
	{"peach", "#ffcba4", "Peach"},
	{"mint", "#98fb98", "Mint"},
	{"sand", "#c2b280", "Sand"},
	{"coral", "#ff7f50", "Coral"},
	{"navy", "#1a1a40", "Navy"},
	{"charcoal", "#36454f", "Charcoal"},
	{"burgundy", "#722f37", "Burgundy"},
	{"forest", "#228b22", "Forest"},
	{"mustard", "#ffdb58", "Mustard"},
	{"black", "#1a1a1a", "Black"},
}

// PresetColor resolves a preset id to its colour.
func PresetColor(id string) (string, bool) {
	for _, p := range ColorPresets {
		if p.ID == id {
			return p.Color, true
		}
	}
	return "", false
}

var unsafeName = regexp.MustCompile(`[^a-z0-9-]+`)

// ExportFilename names an exported pin, e.g. pin-coastal-1700000000000.png.
func ExportFilename(aesthetic string, t time.Time) string {
	name := unsafeName.ReplaceAllString(strings.ReplaceAll(strings.ToLower(aesthetic), " ", "-"), "")
	if name == "" {
		name = "custom"
	}
	return fmt.Sprintf("pin-%s-%d.png", name, t.UnixMilli())
}
