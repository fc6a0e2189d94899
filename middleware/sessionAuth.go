package middleware

import (
	"context"
	"net/http"
	"strings"

	"sparkathon/models"
	"sparkathon/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Authenticator resolves an app session token to its signed-in session.
// *identity.Service satisfies it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.AuthSession, error)
}

// SessionAuthMiddleware validates the Bearer token and stores the signed-in
// user and session id on the context. With optional set, requests without a
// valid token continue anonymously.
func SessionAuthMiddleware(auth Authenticator, optional bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		reject := func(reason string) {
			if optional {
				c.Next()
				return
			}
			zap.L().Debug("request rejected by session auth", zap.String("reason", reason), zap.String("path", c.FullPath()))
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{
				Message: "Insufficient authorization",
			})
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			// EventSource cannot set headers.
			if q := c.Query("token"); q != "" {
				authHeader = "Bearer " + q
			}
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			reject("missing bearer token")
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" {
			reject("empty bearer token")
			return
		}

		session, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			reject(err.Error())
			return
		}

		user := session.User()
		c.Set(utils.ContextUserKey, &user)
		c.Set(utils.ContextSessionKey, session.ID)
		c.Next()
	}
}

// CurrentUser returns the user stored by SessionAuthMiddleware, if any.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(utils.ContextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}

// CurrentSessionID returns the identity session id stored by SessionAuthMiddleware.
func CurrentSessionID(c *gin.Context) string {
	return c.GetString(utils.ContextSessionKey)
}
