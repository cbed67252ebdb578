package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pkgerrors "coderun/pkg/errors"
	"coderun/pkg/utils/contextkey"
	"coderun/pkg/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const userIDContextKey = "user_id"

// AuthConfig configures bearer-token checks. An empty secret disables them.
type AuthConfig struct {
	JWTSecret string `yaml:"jwtSecret"`
	JWTIssuer string `yaml:"jwtIssuer"`
}

// Enabled reports whether requests must carry a token.
func (c AuthConfig) Enabled() bool {
	return c.JWTSecret != ""
}

// TokenVerifier validates HS256 access tokens.
type TokenVerifier struct {
	secret []byte
	issuer string
}

// NewTokenVerifier creates a verifier from config.
func NewTokenVerifier(cfg AuthConfig) *TokenVerifier {
	return &TokenVerifier{secret: []byte(cfg.JWTSecret), issuer: cfg.JWTIssuer}
}

// Verify checks the token and returns its subject.
func (v *TokenVerifier) Verify(raw string) (string, error) {
	if raw == "" {
		return "", pkgerrors.New(pkgerrors.Unauthorized).WithMessage("missing bearer token")
	}
	if len(v.secret) == 0 {
		return "", pkgerrors.New(pkgerrors.TokenInvalid)
	}
	parsed, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", pkgerrors.New(pkgerrors.TokenExpired)
		}
		return "", pkgerrors.New(pkgerrors.TokenInvalid)
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid {
		return "", pkgerrors.New(pkgerrors.TokenInvalid)
	}
	if v.issuer != "" && claims.Issuer != v.issuer {
		return "", pkgerrors.New(pkgerrors.TokenInvalid)
	}
	if claims.Subject == "" {
		return "", pkgerrors.New(pkgerrors.TokenInvalid)
	}
	return claims.Subject, nil
}

// Auth rejects requests without a valid bearer token.
// It is a pass-through when cfg has no secret.
func Auth(cfg AuthConfig) gin.HandlerFunc {
	if !cfg.Enabled() {
		return func(c *gin.Context) { c.Next() }
	}
	verifier := NewTokenVerifier(cfg)
	return func(c *gin.Context) {
		subject, err := verifier.Verify(extractBearerToken(c.GetHeader("Authorization")))
		if err != nil {
			response.AbortWithError(c, err)
			return
		}
		c.Set(userIDContextKey, subject)
		ctx := context.WithValue(c.Request.Context(), contextkey.UserID, subject)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func extractBearerToken(authHeader string) string {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
