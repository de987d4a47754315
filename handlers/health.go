package handlers

import (
	"net/http"

	"github.com/KowsickReddy/TravelGo/utils"

	"github.com/gin-gonic/gin"
)

// NewHealthHandler reports the latest dependency snapshot. A degraded
// dependency answers 503 so load balancers can take the instance out.
func NewHealthHandler(monitor *utils.HealthMonitor) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := monitor.Status()
		code := http.StatusOK
		state := "ok"
		if !status.Healthy() {
			code = http.StatusServiceUnavailable
			state = "degraded"
		}
		c.JSON(code, gin.H{
			"status":       state,
			"message":      "Hi, I'm TravelGo",
			"dependencies": status.Dependencies,
			"checkedAt":    status.CheckedAt,
		})
	}
}
