package middleware

import (
	"net/http"
	"strings"

	"accessapi/internal/auth"
	"accessapi/internal/logging"
	"accessapi/pkg/response"

	"github.com/gin-gonic/gin"
)

// ContextUserID is the gin context key RequireAuth stores the caller's id under.
const ContextUserID = "userID"

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(c *gin.Context) (string, string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", "Authorization is missing"
	}

	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", "Invalid authorization format. Expected 'Bearer <token>'"
	}
	return parts[1], ""
}

// RequireAuth validates a Bearer access token. Refresh tokens are rejected.
func RequireAuth(tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, problem := bearerToken(c)
		if problem != "" {
			response.Abort(c, http.StatusUnauthorized, problem)
			return
		}

		claims, err := tokens.VerifyAccess(tokenString)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		c.Set(ContextUserID, claims.UserID)
		l := logging.FromContext(c.Request.Context()).With("user_id", claims.UserID, "username", claims.Subject)
		c.Request = c.Request.WithContext(logging.IntoContext(c.Request.Context(), l))

		c.Next()
	}
}

// UserID returns the id stored by RequireAuth.
func UserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
