package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/CesarOsorioP/StateView-sub000/internal/domain"
	"github.com/CesarOsorioP/StateView-sub000/internal/platform/logger"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

const (
	// UserIDCtxKey holds the authenticated user id.
	UserIDCtxKey = ContextKey("user_id")
	// UserRoleCtxKey holds the authenticated user's role.
	UserRoleCtxKey = ContextKey("user_role")
	// UserNameCtxKey holds the display name carried by the token, if any.
	UserNameCtxKey = ContextKey("user_name")
)

// Claims defines the structure of the JWT claims expected from the token.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	Name   string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID string
	Role   domain.Role
	Name   string
}

// IdentityFromContext returns the caller stored by JWTAuth.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	userID, ok := ctx.Value(UserIDCtxKey).(string)
	if !ok || userID == "" {
		return Identity{}, false
	}
	role, _ := ctx.Value(UserRoleCtxKey).(domain.Role)
	name, _ := ctx.Value(UserNameCtxKey).(string)
	return Identity{UserID: userID, Role: role, Name: name}, true
}

// WithIdentity stores id in ctx the way JWTAuth does.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	ctx = context.WithValue(ctx, UserIDCtxKey, id.UserID)
	ctx = context.WithValue(ctx, UserRoleCtxKey, id.Role)
	return context.WithValue(ctx, UserNameCtxKey, id.Name)
}

// GenerateToken signs an HS256 token for userID. Used by the seed command and tests.
func GenerateToken(secret, userID string, role domain.Role, name string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Role:   string(role),
		Name:   name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// JWTAuth requires a valid "Bearer <token>" Authorization header and stores the caller in the request context.
func JWTAuth(jwtSecret string, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				log.Debug("JWTAuth: authorization header not found", zap.String("path", r.URL.Path))
				writeAuthError(w, http.StatusUnauthorized, "authorization token is not provided")
				return
			}
			parts := strings.Fields(authHeader)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				log.Warn("JWTAuth: invalid authorization header format", zap.String("path", r.URL.Path))
				writeAuthError(w, http.StatusUnauthorized, "authorization token format is invalid, expected 'Bearer <token>'")
				return
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return []byte(jwtSecret), nil
			})
			if err != nil {
				log.Warn("JWTAuth: token parsing/validation failed", zap.String("path", r.URL.Path), zap.Error(err))
				if errors.Is(err, jwt.ErrTokenExpired) {
					writeAuthError(w, http.StatusUnauthorized, "token has expired")
					return
				}
				writeAuthError(w, http.StatusUnauthorized, "token is invalid")
				return
			}
			if !token.Valid || claims.UserID == "" {
				log.Warn("JWTAuth: token without user id", zap.String("path", r.URL.Path))
				writeAuthError(w, http.StatusUnauthorized, "token is not valid")
				return
			}

			role := domain.Role(claims.Role)
			if !role.IsValid() {
				role = domain.RoleUser
			}
			ctx := WithIdentity(r.Context(), Identity{UserID: claims.UserID, Role: role, Name: claims.Name})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects callers whose role ranks below min. It must run after JWTAuth.
func RequireRole(min domain.Role, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if !id.Role.AtLeast(min) {
				log.Warn("RequireRole: user does not have required role",
					zap.String("path", r.URL.Path),
					zap.String("user_id", id.UserID),
					zap.String("user_role", string(id.Role)),
					zap.String("required_role", string(min)))
				writeAuthError(w, http.StatusForbidden, fmt.Sprintf("role '%s' not authorized for this action", id.Role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
