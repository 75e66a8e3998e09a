// Package gateway implements the auth and middleware logic used across
// shortcast's HTTP surface.
package gateway

import (
	"crypto/rand"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/shortcast/shortcast/apperr"
)

const RequestIDHeader = "X-Request-ID"

// AdminKeyHeader carries the static operator key, the non-JWT way in.
const AdminKeyHeader = "X-Admin-Key"

// GenerateSecretKey generates secret key for jwt signing
func GenerateSecretKey(n int) ([]byte, error) {
	key := make([]byte, n)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}

// AdminAuth compares a header-supplied key against a bcrypt hash computed
// at startup, so the plaintext key never sits in memory longer than boot.
type AdminAuth struct {
	hash []byte
}

func NewAdminAuth(adminKey string) (*AdminAuth, error) {
	if adminKey == "" {
		return &AdminAuth{}, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(adminKey), 8)
	if err != nil {
		return nil, err
	}
	return &AdminAuth{hash: hash}, nil
}

// Check reports whether the supplied key matches.
func (a *AdminAuth) Check(key string) bool {
	if len(a.hash) == 0 || key == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword(a.hash, []byte(key)) == nil
}

// Middleware rejects requests without a valid admin key.
func (a *AdminAuth) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.Check(c.GetHeader(AdminKeyHeader)) {
			c.AbortWithStatusJSON(apperr.Status(apperr.ErrUnauthorized), apperr.Payload(apperr.ErrUnauthorized))
			return
		}
		c.Next()
	}
}

// RequestID tags every request, echoing a caller-supplied id when present.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}

// OptionsMiddleware for cors headers
func OptionsMiddleware(c *gin.Context) {
	if c.Request.Method != "OPTIONS" {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Next()
	} else {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
		c.Header("Access-Control-Allow-Headers", "authorization, origin, content-type, accept, X-Admin-Key")
		c.Header("Allow", "HEAD,GET,POST,PUT,PATCH,DELETE,OPTIONS")
		c.Header("Content-Type", "application/json")
		c.AbortWithStatus(http.StatusOK)
	}
}
