package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

// SuperAdminRole passes every role check
const SuperAdminRole = "super_admin"

// Claims represents the JWT claims. SellerID scopes the seller catalog routes.
type Claims struct {
	UserID   string   `json:"user_id"`
	Email    string   `json:"email"`
	SellerID string   `json:"seller_id"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// AuthMiddleware validates HMAC-signed bearer tokens. Used when AUTH_MODE=jwt.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip auth for health check endpoints
		if c.Request.URL.Path == "/health" || c.Request.URL.Path == "/ready" {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, http.StatusUnauthorized, "MISSING_TOKEN", "Authorization header is required")
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			abortWithError(c, http.StatusUnauthorized, "INVALID_TOKEN_FORMAT", "Authorization header must be in format: Bearer <token>")
			return
		}

		token, err := jwt.ParseWithClaims(tokenParts[1], &Claims{}, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(jwtSecret), nil
		})
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
			return
		}

		claims, ok := token.Claims.(*Claims)
		if !ok || !token.Valid {
			abortWithError(c, http.StatusUnauthorized, "INVALID_CLAIMS", "Invalid token claims")
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)
		c.Set("user_roles", claims.Roles)
		if claims.SellerID != "" {
			c.Set(SellerIDKey, claims.SellerID)
		}
		c.Next()
	}
}

// userRoles reads the roles set by AuthMiddleware, aborting the request when they are missing
func userRoles(c *gin.Context) ([]string, bool) {
	roles, exists := c.Get("user_roles")
	if !exists {
		abortWithError(c, http.StatusForbidden, "NO_ROLES", "User roles not found")
		return nil, false
	}
	list, ok := roles.([]string)
	if !ok {
		abortWithError(c, http.StatusForbidden, "INVALID_ROLES", "Invalid user roles format")
		return nil, false
	}
	return list, true
}

// RequireAnyRole middleware checks if user has any of the required roles
func RequireAnyRole(requiredRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		roles, ok := userRoles(c)
		if !ok {
			return
		}
		for _, role := range roles {
			if role == SuperAdminRole {
				c.Next()
				return
			}
			for _, required := range requiredRoles {
				if role == required {
					c.Next()
					return
				}
			}
		}
		abortWithError(c, http.StatusForbidden, "INSUFFICIENT_PERMISSIONS", fmt.Sprintf("Required one of roles: %v", requiredRoles))
	}
}
