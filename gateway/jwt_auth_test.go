package gateway

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
)

func TestJWTAuth_RoundTrip(t *testing.T) {
	auth := JWTAuth{}
	auth.Init("test-secret")

	token, err := auth.GenerateJWT("cron")
	if err != nil {
		t.Fatalf("GenerateJWT() error = %v", err)
	}

	claims, err := auth.VerifyJWT(token)
	if err != nil {
		t.Fatalf("VerifyJWT() error = %v", err)
	}
	if claims.Service != "cron" {
		t.Errorf("service claim = %q, want cron", claims.Service)
	}
	if claims.Issuer != "shortcast" {
		t.Errorf("issuer = %q", claims.Issuer)
	}
}

func TestJWTAuth_RejectsWrongKey(t *testing.T) {
	issuer := JWTAuth{}
	issuer.Init("secret-one")
	verifier := JWTAuth{}
	verifier.Init("secret-two")

	token, err := issuer.GenerateJWT("cron")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := verifier.VerifyJWT(token); err == nil {
		t.Error("VerifyJWT() accepted a token signed with another key")
	}
}

func TestJWTAuth_RejectsExpired(t *testing.T) {
	auth := JWTAuth{}
	auth.Init("test-secret")

	claims := TokenClaims{
		"cron",
		jwt.StandardClaims{ExpiresAt: time.Now().Add(-time.Hour).Unix(), Issuer: "shortcast"},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(auth.Key)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := auth.VerifyJWT(signed); err == nil {
		t.Error("VerifyJWT() accepted an expired token")
	}
}

func middlewareResponse(t *testing.T, auth *JWTAuth, header string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.POST("/run", auth.AuthMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": true})
	})

	request := httptest.NewRequest(http.MethodPost, "/run", nil)
	if header != "" {
		request.Header.Set("Authorization", header)
	}
	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, request)
	return recorder
}

func TestJWTAuth_AuthMiddleware(t *testing.T) {
	auth := JWTAuth{}
	auth.Init("test-secret")
	token, err := auth.GenerateJWT("cron")
	if err != nil {
		t.Fatal(err)
	}

	expiredClaims := TokenClaims{
		"cron",
		jwt.StandardClaims{ExpiresAt: time.Now().Add(-time.Hour).Unix(), Issuer: "shortcast"},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, expiredClaims).SignedString(auth.Key)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		header   string
		want     int
		wantCode string
	}{
		{"no_header", "", http.StatusUnauthorized, "unauthorized"},
		{"garbage", "not-a-token", http.StatusUnauthorized, "jwt_malformed"},
		{"expired", "Bearer " + expired, http.StatusUnauthorized, "jwt_expired"},
		{"valid", token, http.StatusOK, ""},
		{"valid_bearer", "Bearer " + token, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := middlewareResponse(t, &auth, tt.header)
			if recorder.Code != tt.want {
				t.Errorf("status = %d, want %d", recorder.Code, tt.want)
			}
			if tt.wantCode != "" && !strings.Contains(recorder.Body.String(), tt.wantCode) {
				t.Errorf("body = %s, want code %q", recorder.Body.String(), tt.wantCode)
			}
		})
	}
}

func TestAdminAuth(t *testing.T) {
	auth, err := NewAdminAuth("super-secret")
	if err != nil {
		t.Fatal(err)
	}
	if !auth.Check("super-secret") {
		t.Error("Check() rejected the right key")
	}
	if auth.Check("wrong") {
		t.Error("Check() accepted a wrong key")
	}
	if auth.Check("") {
		t.Error("Check() accepted an empty key")
	}

	unset, err := NewAdminAuth("")
	if err != nil {
		t.Fatal(err)
	}
	if unset.Check("anything") {
		t.Error("Check() accepted a key with no admin key configured")
	}
}

func TestAdminAuth_Middleware(t *testing.T) {
	auth, err := NewAdminAuth("super-secret")
	if err != nil {
		t.Fatal(err)
	}
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.POST("/generate_token", auth.Middleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": true})
	})

	tests := []struct {
		name string
		key  string
		want int
	}{
		{"right_key", "super-secret", http.StatusOK},
		{"wrong_key", "nope", http.StatusUnauthorized},
		{"no_key", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodPost, "/generate_token", nil)
			if tt.key != "" {
				request.Header.Set(AdminKeyHeader, tt.key)
			}
			recorder := httptest.NewRecorder()
			engine.ServeHTTP(recorder, request)
			if recorder.Code != tt.want {
				t.Errorf("status = %d, want %d", recorder.Code, tt.want)
			}
			if tt.want == http.StatusUnauthorized && !strings.Contains(recorder.Body.String(), "unauthorized") {
				t.Errorf("body = %s, want unauthorized code", recorder.Body.String())
			}
		})
	}
}
