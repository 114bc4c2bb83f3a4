package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"coursecritic-backend/internal/apperrors"
	"coursecritic-backend/internal/auth"
	"coursecritic-backend/internal/models"
	"coursecritic-backend/internal/service"

	"github.com/rs/zerolog/log"
)

type contextKey string

const (
	claimsKey contextKey = "claims"
	callerKey contextKey = "caller"
)

// SessionResolver checks verified claims against stored state: the token must
// not be logged out and its user must still exist.
type SessionResolver interface {
	ResolveSession(ctx context.Context, claims *auth.Claims) (*service.Caller, error)
}

// JWTAuth rejects requests without a valid bearer token for a live session and
// stores the claims and the resolved caller in the request context.
func JWTAuth(tokens *auth.TokenManager, sessions SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, status, message := verify(r, tokens, sessions)
			if ctx == nil {
				writeMessage(w, status, message)
				return
			}
			noteUser(ctx, GetUserID(ctx))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalJWTAuth attaches the caller when a valid token is present and lets
// the request through anonymously otherwise. Public listings use it to mark the
// viewer's own reviews.
func OptionalJWTAuth(tokens *auth.TokenManager, sessions SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "" {
				if ctx, _, _ := verify(r, tokens, sessions); ctx != nil {
					r = r.WithContext(ctx)
					noteUser(ctx, GetUserID(ctx))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole must run after JWTAuth. The role checked is the stored one, not
// the one the token was issued with.
func RequireRole(role models.Role, message string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller := CallerFromContext(r.Context())
			if caller == nil {
				writeMessage(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			if caller.Role != role {
				writeMessage(w, http.StatusForbidden, message)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// verify returns the request context carrying claims and caller, or a nil
// context with the status and message to reject the request with.
func verify(r *http.Request, tokens *auth.TokenManager, sessions SessionResolver) (context.Context, int, string) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, http.StatusUnauthorized, "Authorization header required"
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return nil, http.StatusUnauthorized, "Invalid authorization format"
	}

	claims, err := tokens.Parse(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, http.StatusUnauthorized, "Invalid or expired token"
	}

	var caller *service.Caller
	if sessions != nil {
		caller, err = sessions.ResolveSession(r.Context(), claims)
		if err != nil {
			var appErr *apperrors.AppError
			if !errors.As(err, &appErr) || appErr.Type == apperrors.ErrorTypeInternal {
				log.Error().Err(err).Str("jti", claims.ID).Msg("failed to resolve session")
				return nil, http.StatusInternalServerError, "Server error"
			}
			return nil, apperrors.HTTPStatus(err), appErr.Message
		}
	} else {
		id, err := claims.UserObjectID()
		if err != nil {
			return nil, http.StatusUnauthorized, "Invalid or expired token"
		}
		caller = &service.Caller{ID: id, Role: claims.Role}
	}

	ctx := context.WithValue(r.Context(), claimsKey, claims)
	return context.WithValue(ctx, callerKey, caller), 0, ""
}

// GetClaims returns the verified claims, or nil on unauthenticated requests.
func GetClaims(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}

// GetUserID extracts the authenticated user id hex from context.
func GetUserID(ctx context.Context) string {
	if claims := GetClaims(ctx); claims != nil {
		return claims.UserID
	}
	return ""
}

// CallerFromContext returns the caller resolved by JWTAuth, or nil on
// unauthenticated requests.
func CallerFromContext(ctx context.Context) *service.Caller {
	caller, _ := ctx.Value(callerKey).(*service.Caller)
	return caller
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
