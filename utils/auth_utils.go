package utils

import (
	"github.com/gin-gonic/gin"
)

// UserClaims is the caller identity extracted from a bearer token.
type UserClaims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
}

type contextKey string

const (
	UserContextKey      contextKey = "user"
	RequestIDContextKey contextKey = "request_id"
)

// GetUser returns the authenticated caller, or nil for anonymous requests.
func GetUser(c *gin.Context) *UserClaims {
	user, exists := c.Get(string(UserContextKey))
	if !exists {
		return nil
	}
	if userClaims, ok := user.(*UserClaims); ok {
		return userClaims
	}
	return nil
}

// GetRequestID returns the id assigned by the request logger, if any.
func GetRequestID(c *gin.Context) string {
	return c.GetString(string(RequestIDContextKey))
}
