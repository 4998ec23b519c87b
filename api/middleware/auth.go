package middleware

import (
	"context"
	"net/http"
	"syntech_importer/lib"
	"syntech_importer/structs"

	"github.com/MonkyMars/gecho"
	"golang.org/x/crypto/bcrypt"
)

// Context keys for storing auth data in request context
type contextKey string

const ClaimsContextKey contextKey = "claims"

// AdminAuthMiddleware protects the trigger surface. Two ways in: an admin
// JWT (interactive UI), or the automation service token checked against its
// configured bcrypt hash (scheduled jobs, CI).
func (mw *Middleware) AdminAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := r.Header.Get("X-Service-Token"); token != "" {
			if mw.verifyServiceToken(token) {
				next.ServeHTTP(w, r)
				return
			}
			mw.logger.Warn("Invalid service token on trigger surface")
			gecho.Unauthorized(w, gecho.WithMessage("Invalid service token"), gecho.Send())
			return
		}

		claims, err := lib.ExtractClaims(r, mw.cfg.Auth.AccessTokenSecret)
		if err != nil {
			mw.logger.Warn("Failed to extract claims from request", gecho.Field("error", err))
			gecho.Unauthorized(w, gecho.WithMessage("Invalid or missing access token"), gecho.Send())
			return
		}

		if claims.Role != "admin" {
			mw.logger.Warn("Non-admin user attempted to access import routes",
				gecho.Field("user_id", claims.Sub),
				gecho.Field("role", claims.Role),
			)
			gecho.Forbidden(w, gecho.WithMessage("Admin access required"), gecho.Send())
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (mw *Middleware) verifyServiceToken(token string) bool {
	hash := mw.cfg.Auth.ServiceTokenHash
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)) == nil
}

// GetClaimsFromContext is a helper function to extract the claims from request context
func GetClaimsFromContext(ctx context.Context) (*structs.AuthClaims, bool) {
	claims, ok := ctx.Value(ClaimsContextKey).(*structs.AuthClaims)
	return claims, ok
}
