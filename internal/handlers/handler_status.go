package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// getStatus godoc
// @Summary Service liveness
// @Description Reports whether the backend is up. Carries no tenant data and requires no auth.
// @Tags status
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func getStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "erp_backend"})
}

// registerStatusRoutes registers the unauthenticated liveness route.
func registerStatusRoutes(r *gin.Engine) {
	r.GET("/health", getStatus)
}
