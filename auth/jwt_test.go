package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const testSecret = "test-secret"

func newTestRouter(secret string) (*gin.Engine, *Claims) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(JWTMiddleware(secret, zerolog.Nop()))

	captured := &Claims{}
	router.GET("/protected", func(c *gin.Context) {
		if claims, ok := GetClaims(c); ok {
			*captured = *claims
		}
		playerID, _ := GetPlayerID(c)
		asset, _ := GetAsset(c)
		c.JSON(http.StatusOK, gin.H{"player_id": playerID, "asset": asset})
	})
	return router, captured
}

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateTokenWithAsset(testSecret, "player-1", "alice", "gems", time.Hour)
	if err != nil {
		t.Fatalf("GenerateTokenWithAsset failed: %v", err)
	}

	router, captured := newTestRouter(testSecret)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if captured.PlayerID != "player-1" {
		t.Errorf("expected player-1, got %q", captured.PlayerID)
	}
	if captured.Asset != "gems" {
		t.Errorf("expected asset gems, got %q", captured.Asset)
	}
}

func TestJWTDefaultAsset(t *testing.T) {
	// Tokens without an asset claim fall back to the default.
	token, err := GenerateToken(testSecret, "player-1", "alice", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(JWTMiddleware(testSecret, zerolog.Nop()))

	var gotAsset string
	router.GET("/protected", func(c *gin.Context) {
		gotAsset, _ = GetAsset(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if gotAsset != "gold" {
		t.Errorf("expected default asset gold, got %q", gotAsset)
	}
}

func TestJWTRejections(t *testing.T) {
	expired, err := GenerateToken(testSecret, "player-1", "alice", -time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	wrongSecret, err := GenerateToken("other-secret", "player-1", "alice", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"malformed header", "nonsense"},
		{"wrong prefix", "Basic abc123"},
		{"garbage token", "Bearer not.a.jwt"},
		{"expired token", "Bearer " + expired},
		{"wrong secret", "Bearer " + wrongSecret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := newTestRouter(testSecret)

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", w.Code)
			}
		})
	}
}

func TestJWTSkipPaths(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(JWTMiddleware(testSecret, zerolog.Nop()))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("health must skip authentication, got %d", w.Code)
	}
}
