package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Provider  string    `json:"provider,omitempty"`
}

type HealthHandler struct {
	serviceName string
	version     string
	provider    string
}

func NewHealthHandler(serviceName, version, provider string) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		provider:    provider,
	}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Service:   h.serviceName,
		Version:   h.version,
		Provider:  h.provider,
	})
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}
