package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthController struct{}

func NewHealthController() *HealthController {
	return &HealthController{}
}

// Health is the liveness probe
// GET /api/health
func (ctrl *HealthController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "API Trouve ton artisan opérationnelle",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
