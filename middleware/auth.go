package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/travel-point/api-go/utils"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
)

const roleAdmin = "admin"

// OptionalAuth attaches the caller's claims when a bearer token is sent.
// Requests without an Authorization header continue anonymously; a header
// that does not carry a valid token is rejected.
func OptionalAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		bearerToken := strings.Split(authHeader, " ")
		if len(bearerToken) != 2 || !strings.EqualFold(bearerToken[0], "Bearer") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format"})
			c.Abort()
			return
		}

		claims, err := parseToken(bearerToken[1], secret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		c.Set(string(utils.UserContextKey), claims)
		c.Next()
	}
}

func parseToken(token, secret string) (*utils.UserClaims, error) {
	claims := jwt.MapClaims{}
	parsedToken, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !parsedToken.Valid {
		return nil, errors.New("invalid token")
	}

	rawID, ok := claims["user_id"].(float64)
	if !ok || rawID < 1 {
		return nil, fmt.Errorf("invalid token claims")
	}
	role, _ := claims["role"].(string)

	return &utils.UserClaims{UserID: uint(rawID), Role: role}, nil
}

// RequireSameUser rejects authenticated callers asking for another user's
// data unless they are admins. Anonymous callers pass through.
func RequireSameUser(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := utils.GetUser(c)
		if user == nil || user.Role == roleAdmin {
			c.Next()
			return
		}

		id, err := strconv.ParseUint(c.Param(param), 10, 64)
		if err == nil && uint(id) != user.UserID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access to another user's recommendations is not allowed"})
			c.Abort()
			return
		}
		c.Next()
	}
}
