package handlers

import (
	"github.com/Hiteshmehtaa/yann-app-sub003/middleware"
	"github.com/Hiteshmehtaa/yann-app-sub003/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// getLogger retrieves a Zap logger from the Gin context or falls back to the
// application logger, tagged with the route and the acting identity.
func getLogger(c *gin.Context) *zap.Logger {
	if l, exists := c.Get("logger"); exists {
		if logger, ok := l.(*zap.Logger); ok {
			return logger
		}
	}
	return utils.GetLogger().With(
		zap.String("route", c.FullPath()),
		zap.String("actorId", c.GetString(middleware.ActorIDKey)),
	)
}
