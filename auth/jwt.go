package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/oddsforge/wager-engine/types"
)

// Context keys for player information
const (
	PlayerIDKey = "player_id"
	UsernameKey = "username"
	AssetKey    = "asset"
	ClaimsKey   = "claims"
)

// Claims represents the JWT claims structure
type Claims struct {
	PlayerID string `json:"player_id"`
	Username string `json:"username"`
	Asset    string `json:"asset,omitempty"`
	jwt.RegisteredClaims
}

// JWTConfig holds JWT middleware configuration
type JWTConfig struct {
	Secret       string
	TokenPrefix  string // "Bearer"
	SkipPaths    []string
	DefaultAsset string
}

// DefaultJWTConfig returns default JWT configuration
func DefaultJWTConfig(secret string) JWTConfig {
	return JWTConfig{
		Secret:       secret,
		TokenPrefix:  "Bearer",
		SkipPaths:    []string{"/health", "/api/health"},
		DefaultAsset: "gold",
	}
}

// JWTMiddleware creates a JWT authentication middleware
func JWTMiddleware(secret string, logger zerolog.Logger) gin.HandlerFunc {
	return JWTMiddlewareWithConfig(DefaultJWTConfig(secret), logger)
}

// JWTMiddlewareWithConfig creates a JWT middleware with custom configuration
func JWTMiddlewareWithConfig(config JWTConfig, logger zerolog.Logger) gin.HandlerFunc {
	skipPaths := make(map[string]bool)
	for _, path := range config.SkipPaths {
		skipPaths[path] = true
	}

	return func(c *gin.Context) {
		// Skip authentication for specified paths
		if skipPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Warn().Msg("Missing Authorization header")
			abortUnauthorized(c, "Missing Authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != config.TokenPrefix {
			logger.Warn().Str("auth_header", authHeader).Msg("Invalid Authorization header format")
			abortUnauthorized(c, "Invalid Authorization header format. Expected: Bearer <token>")
			return
		}

		tokenString := parts[1]

		token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(config.Secret), nil
		})

		if err != nil {
			logger.Warn().Err(err).Msg("Failed to parse JWT token")
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		claims, ok := token.Claims.(*Claims)
		if !ok || !token.Valid {
			logger.Warn().Msg("Invalid token claims")
			abortUnauthorized(c, "Invalid token claims")
			return
		}

		c.Set(PlayerIDKey, claims.PlayerID)
		c.Set(UsernameKey, claims.Username)
		c.Set(ClaimsKey, claims)

		asset := claims.Asset
		if asset == "" {
			asset = config.DefaultAsset
		}
		c.Set(AssetKey, asset)

		logger.Debug().
			Str("player_id", claims.PlayerID).
			Str("username", claims.Username).
			Msg("JWT authentication successful")

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	errorResp := types.ErrorResponse{
		StatusCode: http.StatusUnauthorized,
		IsSuccess:  false,
		Error: types.ErrorDetail{
			Timestamp:    time.Now().Format(time.RFC3339),
			Path:         c.Request.URL.Path,
			ErrorMessage: message,
		},
	}
	c.JSON(http.StatusUnauthorized, errorResp)
	c.Abort()
}

// GetPlayerID extracts player ID from context
func GetPlayerID(c *gin.Context) (string, bool) {
	playerID, exists := c.Get(PlayerIDKey)
	if !exists {
		return "", false
	}
	playerIDStr, ok := playerID.(string)
	return playerIDStr, ok
}

// GetUsername extracts username from context
func GetUsername(c *gin.Context) (string, bool) {
	username, exists := c.Get(UsernameKey)
	if !exists {
		return "", false
	}
	usernameStr, ok := username.(string)
	return usernameStr, ok
}

// GetAsset extracts the settlement asset from context
func GetAsset(c *gin.Context) (string, bool) {
	asset, exists := c.Get(AssetKey)
	if !exists {
		return "", false
	}
	assetStr, ok := asset.(string)
	return assetStr, ok
}

// GetClaims extracts full claims from context
func GetClaims(c *gin.Context) (*Claims, bool) {
	claims, exists := c.Get(ClaimsKey)
	if !exists {
		return nil, false
	}
	claimsObj, ok := claims.(*Claims)
	return claimsObj, ok
}

// GenerateToken generates a new JWT token
func GenerateToken(secret string, playerID, username string, expiration time.Duration) (string, error) {
	return GenerateTokenWithAsset(secret, playerID, username, "", expiration)
}

// GenerateTokenWithAsset generates a new JWT token carrying the
// settlement asset
func GenerateTokenWithAsset(secret string, playerID, username, asset string, expiration time.Duration) (string, error) {
	claims := &Claims{
		PlayerID: playerID,
		Username: username,
		Asset:    asset,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
