package middleware

import (
	"net/http"
	"strings"

	"golang-civic-backend/internal/policy"
	"golang-civic-backend/pkg/auth"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthMiddleware struct {
	jwtManager *auth.JWTManager
}

func NewAuthMiddleware(jwtManager *auth.JWTManager) *AuthMiddleware {
	return &AuthMiddleware{jwtManager: jwtManager}
}

// AuthRequired middleware validates JWT token
func (a *AuthMiddleware) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := a.jwtManager.ValidateToken(tokenParts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		if claims.TokenType != auth.AccessToken {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)
		c.Set("email", claims.Email)
		c.Next()
	}
}

// AdminRequired middleware ensures user is an admin
func (a *AuthMiddleware) AdminRequired() gin.HandlerFunc {
	return a.RoleRequired("admin")
}

// AuthorityRequired middleware allows authorities and admins
func (a *AuthMiddleware) AuthorityRequired() gin.HandlerFunc {
	return a.RoleRequired("authority", "admin")
}

// RoleRequired middleware checks if user has required role
func (a *AuthMiddleware) RoleRequired(requiredRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			c.JSON(http.StatusForbidden, gin.H{"error": "Role information missing"})
			c.Abort()
			return
		}

		userRole := role.(string)
		for _, requiredRole := range requiredRoles {
			if userRole == requiredRole {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
		c.Abort()
	}
}

// Caller builds the policy caller from the authenticated request context.
// The bool result is false when the request carries no valid identity.
func Caller(c *gin.Context) (policy.Caller, bool) {
	rawID, exists := c.Get("user_id")
	if !exists {
		return policy.Caller{}, false
	}
	userID, err := uuid.Parse(rawID.(string))
	if err != nil {
		return policy.Caller{}, false
	}
	role, _ := c.Get("role")
	roleStr, _ := role.(string)
	return policy.Caller{UserID: userID, Role: roleStr}, true
}
