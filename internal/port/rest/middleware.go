package rest

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cardtienda/backend/internal/platform/logger"
)

// ContextKey is a private key type so request-scoped values cannot collide
// with keys set by other packages.
type ContextKey string

const (
	UserIDCtxKey    = ContextKey("user_id")
	UserEmailCtxKey = ContextKey("user_email")
	UserRoleCtxKey  = ContextKey("user_role")
)

const RoleAdmin = "admin"

// Claims is the JWT payload issued by the identity provider.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(UserIDCtxKey).(string)
	return id
}

func UserEmailFromContext(ctx context.Context) string {
	email, _ := ctx.Value(UserEmailCtxKey).(string)
	return email
}

func IsAdmin(ctx context.Context) bool {
	role, _ := ctx.Value(UserRoleCtxKey).(string)
	return role == RoleAdmin
}

// JWTAuth validates the Bearer token and stores the caller's identity in the
// request context. Tokens must be HMAC-signed with the shared secret.
func JWTAuth(jwtSecret string, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondError(w, http.StatusUnauthorized, "authorization token is not provided")
				return
			}

			parts := strings.Fields(authHeader)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				respondError(w, http.StatusUnauthorized, "authorization header format must be 'Bearer <token>'")
				return
			}
			tokenString := parts[1]

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil {
				log.Warnf("JWTAuth: token validation failed: %v", err)
				if errors.Is(err, jwt.ErrTokenExpired) {
					respondError(w, http.StatusUnauthorized, "token has expired")
					return
				}
				respondError(w, http.StatusUnauthorized, "token is invalid")
				return
			}
			if !token.Valid || claims.UserID == "" {
				log.Warn("JWTAuth: token valid=false or missing user_id claim")
				respondError(w, http.StatusUnauthorized, "token is invalid")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDCtxKey, claims.UserID)
			ctx = context.WithValue(ctx, UserEmailCtxKey, claims.Email)
			ctx = context.WithValue(ctx, UserRoleCtxKey, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminOnly must run after JWTAuth on the same chain.
func AdminOnly(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsAdmin(r.Context()) {
				log.Warnf("AdminOnly: user %s denied access to %s", UserIDFromContext(r.Context()), r.URL.Path)
				respondError(w, http.StatusForbidden, "admin role required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestLogger logs method, path, status and latency for each request.
func RequestLogger(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			log.Infof("%s %s -> %d (%s)", r.Method, r.URL.Path, rec.status, time.Since(start))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
