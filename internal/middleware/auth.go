package middleware

import (
	"context"
	"net/http"
	"strings"

	"campusdesk/internal/config"
	"campusdesk/internal/rolecache"
	"campusdesk/internal/utils"

	"github.com/rs/zerolog"
)

type ctxKey string

const (
	CtxUserID ctxKey = "uid"
	CtxRole   ctxKey = "role"
)

// WithAuth reads the JWT from the "session" cookie or the Authorization
// bearer header and puts user id + role on the context. The role comes from
// the role cache, not the token, so role changes take effect within the
// cache TTL instead of at token expiry.
func WithAuth(log zerolog.Logger, cfg config.Config, roles *rolecache.Cache) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var tok string
			if c, err := r.Cookie("session"); err == nil {
				tok = c.Value
			} else if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
				tok = strings.TrimPrefix(h, "Bearer ")
			}

			if tok == "" {
				next.ServeHTTP(w, r) // unauthenticated; handlers can decide
				return
			}

			claims, err := utils.ParseJWT(cfg.SessionSecret, tok)
			if err != nil {
				// Clear broken/expired cookie so it stops being sent.
				http.SetCookie(w, &http.Cookie{
					Name:     "session",
					Value:    "",
					Path:     "/",
					HttpOnly: true,
					MaxAge:   -1,
				})
				next.ServeHTTP(w, r)
				return
			}

			role := claims.Role
			if roles != nil {
				if fresh, err := roles.Role(r.Context(), claims.UserID); err != nil {
					log.Warn().Err(err).Str("user", claims.UserID).Msg("role lookup failed, using token role")
				} else if fresh != "" {
					role = fresh
				}
			}

			ctx := context.WithValue(r.Context(), CtxUserID, claims.UserID)
			ctx = context.WithValue(ctx, CtxRole, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
