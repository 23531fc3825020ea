package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the authenticated caller as asserted by the external identity
// provider. Accounts are provisioned lazily on first authenticated request;
// there is no local credential store.
type Identity struct {
	UserID    string
	Email     string
	FirstName string
	LastName  string
}

type contextKey string

const identityContextKey contextKey = "identity"

// AuthService verifies bearer tokens and resolves the caller's identity.
// When no signing secret is configured (local development), identity is
// taken from the X-User-ID and X-User-Email headers instead.
type AuthService struct {
	secret []byte
}

func NewAuthService(secret string) *AuthService {
	return &AuthService{secret: []byte(secret)}
}

// Middleware authenticates the request and stores the caller's Identity in
// the request context. Requests without a valid identity get a 401.
func (a *AuthService) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := a.authenticate(r)
		if err != nil {
			slog.Warn("Authentication failed", "path", r.URL.Path, "error", err)
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		ctx := context.WithValue(r.Context(), identityContextKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *AuthService) authenticate(r *http.Request) (Identity, error) {
	if len(a.secret) == 0 {
		return devIdentity(r)
	}

	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return Identity{}, fmt.Errorf("missing bearer token")
	}
	tokenString := strings.TrimPrefix(header, "Bearer ")

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return Identity{}, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Identity{}, fmt.Errorf("invalid token claims")
	}

	identity := Identity{
		UserID:    claimString(claims, "sub"),
		Email:     claimString(claims, "email"),
		FirstName: claimString(claims, "first_name"),
		LastName:  claimString(claims, "last_name"),
	}
	if identity.UserID == "" {
		return Identity{}, fmt.Errorf("token missing subject")
	}
	return identity, nil
}

func devIdentity(r *http.Request) (Identity, error) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		return Identity{}, fmt.Errorf("missing X-User-ID header")
	}
	return Identity{
		UserID: userID,
		Email:  r.Header.Get("X-User-Email"),
	}, nil
}

// IdentityFromContext returns the authenticated caller placed by Middleware.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(Identity)
	return identity, ok
}

func claimString(claims jwt.MapClaims, key string) string {
	value, _ := claims[key].(string)
	return value
}
