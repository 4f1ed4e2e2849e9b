package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type SystemController struct{}

// @Summary Health check
// @Tags System
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (ctrl *SystemController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC().Format(time.RFC3339)})
}

// @Summary API info
// @Tags System
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (ctrl *SystemController) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Mini Shop API",
		"version": "1.0.0",
		"endpoints": gin.H{
			"auth":     "/api/auth",
			"products": "/api/products",
			"cart":     "/api/cart",
			"orders":   "/api/orders",
			"docs":     "/swagger/index.html",
		},
	})
}
