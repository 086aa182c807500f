package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pumpstation/pumpstation/pkg/log"
)

type contextKey string

const userEmailContextKey contextKey = "userEmail"

// authMiddleware attaches a request logger and, when an audience is
// configured, requires a Google ID token for every request that changes
// stored scenarios. Evaluation endpoints never touch storage and stay open.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ctx = log.With(ctx, log.Ctx(ctx).With(slog.String("reqPath", r.URL.Path)))

		if s.oidcVerifier == nil || !changesScenarios(r) {
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeJSONError(w, "authorization required", http.StatusUnauthorized)
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			log.Ctx(ctx).WarnContext(ctx, "invalid auth header")
			writeJSONError(w, "invalid auth header", http.StatusBadRequest)
			return
		}
		email, err := s.authenticateToken(ctx, strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			log.Ctx(ctx).WarnContext(ctx, "token validation failed", slog.Any("error", err))
			writeJSONError(w, "invalid token", http.StatusUnauthorized)
			return
		}

		ctx = log.With(ctx, log.Ctx(ctx).With(slog.String("email", email)))
		ctx = context.WithValue(ctx, userEmailContextKey, email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func changesScenarios(r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return false
	}
	return r.URL.Path == "/api/scenarios" || strings.HasPrefix(r.URL.Path, "/api/scenarios/")
}

// authenticateToken verifies the ID token and returns its email claim.
func (s *Server) authenticateToken(ctx context.Context, token string) (string, error) {
	if s.oidcVerifier == nil {
		return "", errors.New("no valid audiences configured")
	}
	idToken, err := s.oidcVerifier(ctx, token)
	if err != nil {
		return "", fmt.Errorf("verifier failed: %w", err)
	}
	var claims struct {
		Email string `json:"email"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return "", fmt.Errorf("failed to read claims: %w", err)
	}
	if claims.Email == "" {
		return idToken.Subject, nil
	}
	return claims.Email, nil
}

func (s *Server) getUserEmail(r *http.Request) string {
	if email, ok := r.Context().Value(userEmailContextKey).(string); ok {
		return email
	}
	return ""
}
