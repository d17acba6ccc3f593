package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tagmark/tagmark/internal/auth"
	"github.com/tagmark/tagmark/internal/model"
	"github.com/tagmark/tagmark/internal/repository"
)

// TokenVerifier verifies a bearer token and returns its subject.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// UserSource resolves a subject username to a stored user.
type UserSource interface {
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
}

// IdentityCache is an optional cache in front of UserSource lookups.
type IdentityCache interface {
	GetIdentity(ctx context.Context, username string) (*auth.Identity, error)
	SetIdentity(ctx context.Context, id *auth.Identity) error
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger *slog.Logger
	Tokens TokenVerifier
	Users  UserSource
	// Cache may be nil; lookups then always hit the UserSource.
	Cache IdentityCache
}

// Auth returns a middleware that resolves the request's identity.
// The resolution is a terminal-on-first-failure sequence: extract the
// bearer token, verify it, look up the subject's user record, bind the
// identity into the request context. Every failure branch produces the
// identical 401 response; the real reason is only logged. Clients must
// not be able to tell a bad signature from a since-deleted user.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				logAuthFailure(cfg.Logger, r, "missing_token")
				writeAuthError(w)
				return
			}

			subject, err := cfg.Tokens.Verify(token)
			if err != nil {
				logAuthFailure(cfg.Logger, r, "token_rejected", slog.String("error", err.Error()))
				writeAuthError(w)
				return
			}

			identity, cacheHit, err := resolveIdentity(r.Context(), cfg, subject)
			if err != nil {
				// An unknown subject is an auth failure; a storage outage is
				// not, and must not tell the client its token is bad.
				if errors.Is(err, repository.ErrUserNotFound) {
					logAuthFailure(cfg.Logger, r, "unknown_subject")
					writeAuthError(w)
					return
				}
				cfg.Logger.Error("identity lookup failed",
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeServiceUnavailable(w)
				return
			}

			cfg.Logger.Debug("authentication successful",
				slog.String("user_id", identity.UserID),
				slog.Bool("cache_hit", cacheHit),
				slog.String("request_id", GetRequestID(r.Context())),
			)

			ctx := auth.ContextWithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// resolveIdentity looks up the subject, cache first. A missing user
// surfaces as repository.ErrUserNotFound; any other error is a storage
// failure. Cache read and write failures are ignored; the database
// remains the source of truth.
func resolveIdentity(ctx context.Context, cfg AuthConfig, subject string) (*auth.Identity, bool, error) {
	if cfg.Cache != nil {
		if id, _ := cfg.Cache.GetIdentity(ctx, subject); id != nil {
			return id, true, nil
		}
	}

	user, err := cfg.Users.GetUserByUsername(ctx, subject)
	if err != nil {
		return nil, false, fmt.Errorf("resolve subject: %w", err)
	}

	identity := &auth.Identity{
		UserID:   user.ID,
		Username: user.Username,
	}

	if cfg.Cache != nil {
		_ = cfg.Cache.SetIdentity(ctx, identity)
	}

	return identity, false, nil
}

// extractBearerToken pulls the token from the Authorization header.
// Returns empty string if the header is absent or not a Bearer scheme.
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

func logAuthFailure(logger *slog.Logger, r *http.Request, reason string, extra ...any) {
	args := []any{
		slog.String("reason", reason),
		slog.String("ip", r.RemoteAddr),
		slog.String("endpoint", r.Method + " " + r.URL.Path),
		slog.String("request_id", GetRequestID(r.Context())),
	}
	args = append(args, extra...)
	logger.Warn("authentication failed", args...)
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same body for all auth failures to prevent enumeration, and
// carries the Bearer challenge per RFC 6750.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"Invalid or missing credentials"}}`))
}

// writeServiceUnavailable writes a 503 for identity lookups that failed
// on storage rather than on credentials.
func writeServiceUnavailable(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusServiceUnavailable)
	_, _ = w.Write([]byte(`{"error":{"code":"SERVICE_UNAVAILABLE","message":"Service temporarily unavailable"}}`))
}
