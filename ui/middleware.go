package ui

import (
	"net/http"
	"strings"

	"worklens/models"

	"github.com/gin-gonic/gin"
)

const userContextKey = "ui.user"

// requireAuth resolves the Authorization bearer token to a user row and
// stores it on the request context. Token issuance lives outside this
// service; an unknown token is simply unauthorized.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		user, err := s.users.GetByToken(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// requireAdmin guards the review surface.
func (s *Server) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !currentUser(c).IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

// currentUser returns the authenticated user. Only valid behind requireAuth.
func currentUser(c *gin.Context) *models.User {
	return c.MustGet(userContextKey).(*models.User)
}
