package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenValidator resolves a bearer token into a user id. Authentication is an
// external collaborator; this service never issues tokens.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (uuid.UUID, error)
}

// AuthServiceValidator validates against the auth service, falling back to
// local JWT verification when it is unreachable.
type AuthServiceValidator struct {
	authServiceURL string
	secretKey      string
	httpClient     *http.Client
	logger         *zap.Logger
}

func NewAuthServiceValidator(authServiceURL, secretKey string, logger *zap.Logger) *AuthServiceValidator {
	return &AuthServiceValidator{
		authServiceURL: authServiceURL,
		secretKey:      secretKey,
		httpClient:     &http.Client{Timeout: 5 * time.Second},
		logger:         logger,
	}
}

func (v *AuthServiceValidator) ValidateToken(ctx context.Context, tokenString string) (uuid.UUID, error) {
	if v.authServiceURL != "" {
		userID, err := v.validateRemote(ctx, tokenString)
		if err == nil {
			return userID, nil
		}
		v.logger.Debug("Auth service validation failed, falling back to local", zap.Error(err))
	}
	return v.validateLocal(tokenString)
}

func (v *AuthServiceValidator) validateRemote(ctx context.Context, token string) (uuid.UUID, error) {
	payload, _ := json.Marshal(map[string]string{"token": token})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		v.authServiceURL+"/api/auth/validate", bytes.NewReader(payload))
	if err != nil {
		return uuid.Nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return uuid.Nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return uuid.Nil, fmt.Errorf("auth service returned %d", resp.StatusCode)
	}

	var result struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(result.UserID)
}

func (v *AuthServiceValidator) validateLocal(tokenString string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenString, func(*jwt.Token) (interface{}, error) {
		return []byte(v.secretKey), nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, jwt.ErrTokenInvalidClaims
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, jwt.ErrTokenInvalidClaims
	}

	// Issuers in the wild disagree on the claim name
	for _, key := range []string{"sub", "userId", "user_id"} {
		if s, ok := claims[key].(string); ok && s != "" {
			return uuid.Parse(s)
		}
	}
	return uuid.Nil, jwt.ErrTokenInvalidClaims
}

// bearerToken extracts the token from the Authorization header, or from the
// token query parameter for clients that cannot set headers.
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
		return ""
	}
	return c.Query("token")
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error":   gin.H{"code": "UNAUTHORIZED", "message": message},
	})
}

// AuthMiddleware resolves the caller's identity and stores it on the context
// as "user_id" (uuid.UUID) and "token".
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			unauthorized(c, "Missing or malformed credentials")
			return
		}

		userID, err := validator.ValidateToken(c.Request.Context(), token)
		if err != nil {
			unauthorized(c, "Invalid token")
			return
		}

		c.Set("user_id", userID)
		c.Set("token", token)
		c.Next()
	}
}
