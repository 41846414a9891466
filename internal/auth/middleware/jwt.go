package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/vehicle-discovery/internal/auth"
	apperrors "github.com/lk2023060901/vehicle-discovery/internal/pkg/errors"
	"github.com/lk2023060901/vehicle-discovery/internal/pkg/logger"
	"github.com/lk2023060901/vehicle-discovery/internal/pkg/response"
	"go.uber.org/zap"
)

// ContextKeyUserID is the gin context key holding the principal id
const ContextKeyUserID = "user_id"

// JWTAuth rejects requests without a valid bearer token
func JWTAuth(jwtManager *auth.JWTManager, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractTokenFromHeader(c.GetHeader("Authorization"))
		if err != nil {
			response.ErrorWithCode(c, apperrors.ErrUnauthorized, err.Error())
			c.Abort()
			return
		}

		claims, err := jwtManager.VerifyToken(token)
		if err != nil {
			log.Warn("invalid access token",
				zap.Error(err),
				zap.String("ip", c.ClientIP()))
			response.ErrorWithCode(c, apperrors.ErrAuthInvalidToken)
			c.Abort()
			return
		}

		setPrincipal(c, claims.UserID)
		c.Next()
	}
}

// OptionalJWTAuth sets the principal when a valid token is present and never blocks
func OptionalJWTAuth(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractTokenFromHeader(c.GetHeader("Authorization"))
		if err != nil {
			c.Next()
			return
		}

		claims, err := jwtManager.VerifyToken(token)
		if err != nil {
			c.Next()
			return
		}

		setPrincipal(c, claims.UserID)
		c.Next()
	}
}

// CurrentPrincipal returns the authenticated principal, if any
func CurrentPrincipal(c *gin.Context) (string, bool) {
	id := c.GetString(ContextKeyUserID)
	return id, id != ""
}

func setPrincipal(c *gin.Context, principalID string) {
	c.Set(ContextKeyUserID, principalID)
	c.Request = c.Request.WithContext(logger.WithPrincipalID(c.Request.Context(), principalID))
}
