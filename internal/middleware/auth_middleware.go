package middleware

import (
	"context"
	"crypto/rsa"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fastapi1403/building-management/internal/utils"
)

type contextKey string

const (
	// ContextKeyUserID holds the actor recorded in deleted_by, created_by and the audit log.
	ContextKeyUserID = contextKey("userID")
)

// AuthMiddleware requires a valid RS-signed bearer token and stores its
// subject as the acting user.
func AuthMiddleware(pub *rsa.PublicKey, issuer string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, err := extractAccessToken(r)
			if err != nil {
				utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, err.Error(), nil)
				return
			}

			sub, vErr := ValidateToken(tokenStr, pub, issuer)
			if vErr != nil {
				if errors.Is(vErr, jwt.ErrTokenExpired) {
					utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeTokenExpired, "Token expired", nil, vErr)
					return
				}
				utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid token", nil, vErr)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUserID, sub)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// StaticActorMiddleware attributes every request to one configured actor.
// It stands in for AuthMiddleware when no public key is configured.
func StaticActorMiddleware(actor string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), ContextKeyUserID, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorFromContext returns the acting user set by one of the auth middlewares.
func ActorFromContext(ctx context.Context) (string, bool) {
	actor, ok := ctx.Value(ContextKeyUserID).(string)
	return actor, ok && actor != ""
}

func extractAccessToken(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return "", errors.New("missing Authorization header")
	}
	return strings.TrimPrefix(h, "Bearer "), nil
}
