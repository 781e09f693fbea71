package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jmylchreest/drape/internal/cloud"
	"github.com/jmylchreest/drape/internal/genai"
	"github.com/jmylchreest/drape/internal/search"
)

var errUnavailable = errors.New("service unavailable")

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func unavailable(c *gin.Context, what string) {
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": what + " is not configured"})
}

// fail maps a service error to a status and a human-readable message.
func (s *Server) fail(c *gin.Context, msg string, err error) {
	status := http.StatusInternalServerError
	var (
		gerr *genai.ServiceError
		cerr *cloud.ServiceError
	)
	switch {
	case errors.Is(err, errUnavailable), errors.Is(err, genai.ErrNotConfigured), errors.Is(err, cloud.ErrNotConfigured):
		status = http.StatusServiceUnavailable
	case errors.Is(err, search.ErrProductNotFound):
		status = http.StatusNotFound
	case search.IsProviderError(err), errors.As(err, &gerr), errors.As(err, &cerr):
		status = http.StatusBadGateway
	}
	s.logger.Warn(msg, "path", c.FullPath(), "status", status, "error", err)
	c.JSON(status, gin.H{"error": msg, "details": err.Error()})
}
