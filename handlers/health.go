package handlers

import (
	"net/http"

	"github.com/Hiteshmehtaa/yann-app-sub003/utils"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports the last dependency health snapshot.
func HealthHandler(c *gin.Context) {
	status := utils.GetHealthStatus()
	code := http.StatusOK
	if !status.Healthy() {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{"status": statusText(status.Healthy()), "health": status})
}

func statusText(ok bool) string {
	if ok {
		return "ok"
	}
	return "degraded"
}
