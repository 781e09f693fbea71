// Package config loads drape settings from the environment and an optional
// .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every externally supplied setting.
type Config struct {
	DataDir  string
	LogLevel string

	// Search.
	RapidAPIKey      string
	RapidAPIHost     string
	Country          string
	SortBy           string
	ProductCondition string
	SearchPlugin     string
	CatalogPath      string
	SearchTimeout    time.Duration

	// Generation and image services.
	GoogleAPIKey   string
	GenAIBackend   string
	ImageModel     string
	TextModel      string
	CloudinaryURL  string
	GCSBucket      string
	GCSPrefix      string
	GCSCredentials string

	// HTTP server.
	Port string
}

// Load reads .env files (missing files are ignored) and then the process
// environment. Variables already set in the environment win over .env.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (Config, error) {
	timeout, err := getDuration("DRAPE_SEARCH_TIMEOUT", 10*time.Second)
	if err != nil {
		return Config{}, err
	}

	return Config{
		DataDir:  get("DRAPE_DATA_DIR", ""),
		LogLevel: get("DRAPE_LOG_LEVEL", ""),

		RapidAPIKey:      get("RAPIDAPI_KEY", ""),
		RapidAPIHost:     get("RAPIDAPI_HOST", ""),
		Country:          get("RAPID_AMAZON_COUNTRY", ""),
		SortBy:           get("RAPID_AMAZON_SORT_BY", ""),
		ProductCondition: get("RAPID_AMAZON_PRODUCT_CONDITION", ""),
		SearchPlugin:     get("DRAPE_SEARCH_PLUGIN", ""),
		CatalogPath:      get("DRAPE_CATALOG", ""),
		SearchTimeout:    timeout,

		GoogleAPIKey:   get("GOOGLE_API_KEY", ""),
		GenAIBackend:   get("DRAPE_GENAI_BACKEND", "gemini-api"),
		ImageModel:     get("DRAPE_IMAGE_MODEL", ""),
		TextModel:      get("DRAPE_TEXT_MODEL", ""),
		CloudinaryURL:  get("CLOUDINARY_URL", ""),
		GCSBucket:      get("DRAPE_GCS_BUCKET", ""),
		GCSPrefix:      get("DRAPE_GCS_PREFIX", "pins"),
		GCSCredentials: get("DRAPE_GCS_CREDENTIALS", ""),

		Port: get("PORT", "3001"),
	}, nil
}

// Addr is the HTTP listen address.
func (c Config) Addr() string {
	if _, err := strconv.Atoi(c.Port); err == nil {
		return ":" + c.Port
	}
	return c.Port
}

func get(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getDuration(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", k, v, err)
	}
	return d, nil
}
