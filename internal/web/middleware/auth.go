package middleware

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/shindakun/campuslogin/internal/auth"
	"github.com/shindakun/campuslogin/internal/storage"
)

// RequireToken is a middleware that requires a valid bearer token.
// Unauthenticated requests get 401 {"message":"Unauthenticated."}.
func RequireToken(db *sql.DB, tokens *auth.TokenService, logger zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractBearerToken(r)
			if token == "" {
				WriteJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthenticated."})
				return
			}

			owner, err := tokens.Verify(r.Context(), token)
			if err != nil {
				if !errors.Is(err, auth.ErrInvalidToken) {
					logger.Error().Err(err).Msg("token verification failed")
				}
				WriteJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthenticated."})
				return
			}

			account, err := storage.GetUserByID(r.Context(), db, owner.UserID)
			if err != nil {
				logger.Error().Err(err).Int64("user_id", owner.UserID).Msg("token owner lookup failed")
				WriteJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthenticated."})
				return
			}

			principal := &auth.Principal{Account: account, Token: token, Owner: owner}
			notePrincipal(r, principal)

			ctx := auth.SetPrincipalInContext(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ExtractBearerToken returns the token of an "Authorization: Bearer" header
func ExtractBearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
