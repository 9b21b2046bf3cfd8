package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"campus_shuttle/internal/auth"
	"campus_shuttle/internal/models"
	"campus_shuttle/internal/services"
)

const (
	userIDKey       = "user_id"
	universityIDKey = "university_id"
	roleKey         = "role"
)

// UserLoader resolves the caller behind a token.
type UserLoader interface {
	Get(ctx context.Context, id uint) (*models.User, error)
}

// ErrorBody is the JSON shape of every error response.
func ErrorBody(c *gin.Context, msg string) gin.H {
	return gin.H{"error": msg, "message": msg, "request_id": RequestIDFrom(c)}
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, ErrorBody(c, msg))
}

// authenticate validates the bearer token and stores the caller identity in
// the context. It aborts and reports false on a missing or bad token.
func authenticate(c *gin.Context, tokens *auth.TokenManager) (*auth.Claims, bool) {
	header := c.GetHeader("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		abort(c, http.StatusUnauthorized, "No token, authorization denied")
		return nil, false
	}

	claims, err := tokens.Validate(strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")))
	if err != nil {
		logrus.WithError(err).WithField("request_id", RequestIDFrom(c)).Debug("authenticate: rejected token")
		abort(c, http.StatusUnauthorized, "Token is not valid")
		return nil, false
	}

	c.Set(userIDKey, claims.UserID)
	c.Set(universityIDKey, claims.UniversityID)
	c.Set(roleKey, claims.Role)
	return claims, true
}

// RequireAuth ensures a valid bearer token is present.
func RequireAuth(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := authenticate(c, tokens); !ok {
			return
		}
		c.Next()
	}
}

// RequireAdmin authenticates the caller, loads them and insists on the admin
// role. The university id is taken from the stored user.
func RequireAdmin(tokens *auth.TokenManager, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := authenticate(c, tokens)
		if !ok {
			return
		}

		user, err := users.Get(c.Request.Context(), claims.UserID)
		if err != nil {
			if services.IsNotFound(err) {
				abort(c, http.StatusUnauthorized, "Token is not valid")
				return
			}
			logrus.WithError(err).WithField("request_id", RequestIDFrom(c)).Error("RequireAdmin: loading user failed")
			abort(c, http.StatusInternalServerError, "Server Error")
			return
		}
		if !user.IsAdmin() {
			abort(c, http.StatusForbidden, "Access denied: Admins only")
			return
		}

		c.Set(universityIDKey, user.UniversityID)
		c.Set(roleKey, user.Role)
		c.Next()
	}
}

// CurrentUserID returns the authenticated caller, or 0.
func CurrentUserID(c *gin.Context) uint {
	return c.GetUint(userIDKey)
}

// CurrentUniversityID returns the caller's university, or 0.
func CurrentUniversityID(c *gin.Context) uint {
	return c.GetUint(universityIDKey)
}
