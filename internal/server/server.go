// Package server exposes drape over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"

	imageutil "github.com/jmylchreest/drape/internal/image"
	"github.com/jmylchreest/drape/internal/search"
	"github.com/jmylchreest/drape/internal/stylist"
)

// MaxBodyBytes caps request bodies. Base64 images dominate the size.
const MaxBodyBytes = 20 << 20

// Generator produces pin backgrounds and text ideas.
type Generator interface {
	GenerateBackground(ctx context.Context, aesthetic string) ([]byte, error)
	TextIdeas(ctx context.Context, aesthetic, context string) ([]string, error)
}

// BackgroundRemover strips the background from an image.
type BackgroundRemover interface {
	RemoveBackground(ctx context.Context, image []byte) ([]byte, error)
}

// Deps are the services behind the API. Nil Generator, Remover or Details
// make their routes answer 503.
type Deps struct {
	Searcher  search.Searcher
	Details   search.DetailsProvider
	Matcher   *stylist.Matcher
	Generator Generator
	Remover   BackgroundRemover
	Decoder   imageutil.Decoder
	Logger    hclog.Logger
}

// Server is the drape HTTP API.
type Server struct {
	deps   Deps
	logger hclog.Logger
	engine *gin.Engine
}

// New builds the router.
func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if deps.Matcher == nil && deps.Searcher != nil {
		deps.Matcher = stylist.NewMatcher(deps.Searcher, stylist.WithLogger(logger))
	}
	if deps.Decoder == nil {
		loader := imageutil.NewSmartLoader()
		loader.Restricted = true
		deps.Decoder = loader
	}

	s := &Server{deps: deps, logger: logger.Named("server")}
	s.engine = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger(), limitBody(MaxBodyBytes))

	api := r.Group("/api")
	api.GET("/health", s.health)

	products := api.Group("/products")
	products.GET("/search", s.searchProducts)
	products.GET("/:id", s.productDetails)

	styling := api.Group("/styling")
	styling.POST("/complete-outfit", s.completeOutfit)
	styling.POST("/analyze", s.analyzeItem)

	pins := api.Group("/pins")
	pins.GET("/aesthetics", s.aesthetics)
	pins.POST("/generate-aesthetic", s.generateAesthetic)
	pins.POST("/generate-text-ideas", s.generateTextIdeas)
	pins.POST("/remove-background", s.removeBackground)
	pins.POST("/palette", s.palette)

	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func limitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}
