package main

import (
	"net/http"

	"munlink/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func jwtAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if len(authHeader) < 8 || authHeader[:7] != "Bearer " {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid Authorization header"})
			c.Abort()
			return
		}
		tokenString := authHeader[7:]
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrInvalidKeyType
			}
			return jwtSecret, nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid claims"})
			c.Abort()
			return
		}
		uidVal, ok := claims["uid"].(float64)
		if !ok || uidVal <= 0 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid session", "details": "Please log in again."})
			c.Abort()
			return
		}
		c.Set("user_id", uint(uidVal))
		if role, _ := claims["role"].(string); role != "" {
			c.Set("role", role)
		}
		c.Next()
	}
}

// getUserFromContext fetches the currently authenticated user using the id set by jwtAuthMiddleware.
func getUserFromContext(c *gin.Context) (*models.User, bool) {
	idVal, exists := c.Get("user_id")
	if !exists {
		return nil, false
	}
	var user models.User
	if err := db.First(&user, idVal.(uint)).Error; err != nil {
		return nil, false
	}
	return &user, true
}

// fullyVerifiedRequired gates resident operations behind a fully verified,
// active account. Runs after jwtAuthMiddleware.
func fullyVerifiedRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := getUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			c.Abort()
			return
		}
		if !user.FullyVerified() {
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "Account verification required",
				"details": "Your account must be fully verified before using this feature.",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// adminRequired restricts a route group to municipal admin accounts and
// resolves the municipality they administer. Runs after jwtAuthMiddleware.
func adminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := getUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			c.Abort()
			return
		}
		if user.Role != models.RoleMunicipalAdmin || user.AdminMunicipalityID == nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}
		c.Set("admin", user)
		c.Set("admin_municipality_id", *user.AdminMunicipalityID)
		c.Next()
	}
}

// adminFromContext returns the admin user and municipality scope set by adminRequired.
func adminFromContext(c *gin.Context) (*models.User, uint) {
	admin := c.MustGet("admin").(*models.User)
	muniID := c.MustGet("admin_municipality_id").(uint)
	return admin, muniID
}
