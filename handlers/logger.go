package handlers

import (
	"sparkathon/middleware"
	"sparkathon/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// getLogger returns the request logger set by middleware.RequestLogger,
// tagged with the signed-in user when there is one.
func getLogger(c *gin.Context) *zap.Logger {
	logger := utils.GetLogger()
	if l, ok := c.Get("logger"); ok {
		if rl, ok := l.(*zap.Logger); ok {
			logger = rl
		}
	}
	if user, ok := middleware.CurrentUser(c); ok {
		logger = logger.With(zap.String("uid", user.UID))
	}
	return logger
}
