package handler

import (
	"net/http"
	"strings"

	"github.com/nodlAndHodl/btc-tray/internal/state"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// Handler serves the read-only local status API. Every response is built
// from the shared-state snapshot; no request ever triggers a network fetch.
type Handler struct {
	tracer trace.Tracer
	store  *state.Store
}

func New(tracer trace.Tracer, store *state.Store) *Handler {
	return &Handler{tracer: tracer, store: store}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/api/ticker", h.GetTicker)
	r.GET("/api/network", h.GetNetwork)
	r.GET("/api/history", h.GetHistory)
}

// APIKeyAuth enforces X-API-Key validation when a key is configured; an
// empty key disables the check.
func APIKeyAuth(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.Next()
			return
		}
		provided := strings.TrimSpace(c.GetHeader("X-API-Key"))
		switch {
		case provided == "":
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing X-API-Key header"})
		case provided != key:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid API key"})
		default:
			c.Next()
		}
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
