// internal/middleware/auth.go
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"

	"github.com/sapmusicgroup/sap-backend/internal/i18n"
	"github.com/sapmusicgroup/sap-backend/internal/models"
	"github.com/sapmusicgroup/sap-backend/internal/services"
	"github.com/sapmusicgroup/sap-backend/internal/utils"
)

const actorKey = "actor"

// Authenticator resolves an access token to its caller.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (services.Actor, error)
}

// bearerToken reads the Authorization header, or the token query parameter
// used by websocket clients.
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if tok := c.Query("token"); tok != "" {
			return tok, true
		}
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func setActor(c *gin.Context, actor services.Actor) {
	c.Set(actorKey, actor)
	c.Set("user_id", actor.ID.String())
	c.Set("email", actor.Email)
	c.Set("name", actor.Name)
	c.Set("role", string(actor.Role))
}

// GetActor returns the caller set by AuthRequired.
func GetActor(c *gin.Context) (services.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return services.Actor{}, false
	}
	actor, ok := v.(services.Actor)
	return actor, ok
}

func AuthRequired(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := utils.GetLangFromContext(c)

		token, ok := bearerToken(c)
		if !ok {
			if c.GetHeader("Authorization") == "" {
				utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
			} else {
				utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidToken))
			}
			c.Abort()
			return
		}

		actor, err := auth.Authenticate(c.Request.Context(), token)
		switch {
		case err == nil:
		case errors.Is(err, services.ErrAccountDeactivated):
			utils.ErrorResponse(c, http.StatusForbidden, "FORBIDDEN", i18n.T(lang, i18n.KeyAuthDeactivated), nil)
			c.Abort()
			return
		case errors.Is(err, jwt.ErrTokenExpired):
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthTokenExpired))
			c.Abort()
			return
		default:
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidToken))
			c.Abort()
			return
		}

		setActor(c, actor)
		c.Next()
	}
}

func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := utils.GetRoleFromContext(c)
		if !exists || role != string(models.RoleAdmin) {
			utils.ForbiddenResponse(c, "")
			c.Abort()
			return
		}
		c.Next()
	}
}

// OptionalAuth sets the caller when a valid token is present and lets the
// request through either way.
func OptionalAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if actor, err := auth.Authenticate(c.Request.Context(), token); err == nil {
				setActor(c, actor)
			}
		}
		c.Next()
	}
}
