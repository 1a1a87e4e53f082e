package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/openlims/lims-backend/api/responses"
	pkgauth "github.com/openlims/lims-backend/pkg/auth"
	"github.com/openlims/lims-backend/pkg/config"
	pkgerrors "github.com/openlims/lims-backend/pkg/errors"
	"github.com/openlims/lims-backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the claims.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "Missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "Missing credentials"))
				return
			}

			claims, err := pkgauth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "Invalid token"))
				return
			}

			ctx := WithUser(r.Context(), claims.UserID, claims.Username, claims.Role)
			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"user_id":  strconv.FormatUint(uint64(claims.UserID), 10),
					"username": claims.Username,
					"role":     claims.Role,
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
