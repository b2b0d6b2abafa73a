// Package server exposes the resolution engine over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/fheinonen/stopfinder/internal/resolver"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Client-facing error messages. Upstream failure detail is logged server-side
// only and never returned to the client.
const (
	msgInvalidText   = "Invalid text"
	msgInvalidCoords = "Invalid lat/lon"
	msgUpstream      = "Could not approximate location. Please try again."
)

// Handler serves the geocode endpoint.
type Handler struct {
	log      *slog.Logger
	resolver *resolver.Resolver
}

// NewHandler creates a Handler around the given resolver.
func NewHandler(log *slog.Logger, res *resolver.Resolver) *Handler {
	return &Handler{log: log, resolver: res}
}

// NewRouter wires the HTTP surface: the geocode endpoint plus health and
// metrics, with 405 for wrong methods.
func NewRouter(handler *Handler, reg *prometheus.Registry) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})

	router.GET("/geocode", handler.Geocode)
	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	return router
}

// Geocode handles GET /geocode?text=<string>&lat=<float>&lon=<float>&lang=<tag>.
func (h *Handler) Geocode(c *gin.Context) {
	ctx := c.Request.Context()

	res, err := h.resolver.Resolve(ctx, resolver.RawQuery{
		Text: c.Query("text"),
		Lat:  c.Query("lat"),
		Lon:  c.Query("lon"),
		Lang: c.Query("lang"),
	})

	switch {
	case err == nil:
		c.JSON(http.StatusOK, res)
	case errors.Is(err, resolver.ErrInvalidText):
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidText})
	case errors.Is(err, resolver.ErrInvalidCoords):
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidCoords})
	case errors.Is(err, context.Canceled):
		c.Status(http.StatusRequestTimeout)
	default:
		h.log.ErrorContext(ctx, "Resolution failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgUpstream})
	}
}
