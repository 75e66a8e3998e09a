package gateway

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"

	"github.com/shortcast/shortcast/apperr"
)

// JWTAuth provides an encapsulation for jwt auth on the trigger endpoint.
type JWTAuth struct {
	Key []byte
}

// Init seeds the signing key. With no configured secret a random key is
// generated, which means tokens do not survive a restart.
func (j *JWTAuth) Init(secret string) {
	if secret != "" {
		j.Key = []byte(secret)
		return
	}
	key, _ := GenerateSecretKey(50)
	j.Key = key
}

// TokenClaims is the shortcast standard claim: which caller may trigger runs.
type TokenClaims struct {
	Service string `json:"service"`
	jwt.StandardClaims
}

// GenerateJWT issues a trigger token for a named caller.
func (j *JWTAuth) GenerateJWT(serviceID string) (string, error) {
	expiresAt := time.Now().Add(72 * time.Hour).UTC().Unix()

	claims := TokenClaims{
		serviceID,
		jwt.StandardClaims{
			ExpiresAt: expiresAt,
			Issuer:    "shortcast",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	if j.Key == nil {
		return "", errors.New("empty jwt key")
	}
	return token.SignedString(j.Key)
}

// VerifyJWT validates a token string against the signing key.
func (j *JWTAuth) VerifyJWT(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.Key, nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*TokenClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// AuthMiddleware guards the trigger endpoint. It accepts a JWT in the
// Authorization header, with or without the Bearer prefix.
func (j *JWTAuth) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" {
			c.AbortWithStatusJSON(apperr.Status(apperr.ErrUnauthorized), apperr.Payload(apperr.ErrUnauthorized))
			return
		}
		h = strings.TrimPrefix(h, "Bearer ")

		claims, err := j.VerifyJWT(h)
		if e, ok := err.(*jwt.ValidationError); ok {
			if e.Errors&jwt.ValidationErrorExpired != 0 {
				c.AbortWithStatusJSON(apperr.Status(apperr.ErrTokenExpired), apperr.Payload(apperr.ErrTokenExpired))
			} else {
				c.AbortWithStatusJSON(apperr.Status(apperr.ErrTokenMalformed), apperr.Payload(apperr.ErrTokenMalformed))
			}
			return
		} else if err != nil {
			c.AbortWithStatusJSON(apperr.Status(apperr.ErrUnauthorized), apperr.Payload(apperr.ErrUnauthorized))
			return
		}
		c.Set("service", claims.Service)
		c.Next()
	}
}
