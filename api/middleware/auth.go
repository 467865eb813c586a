package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rahulverma/medibill-gateway/api/responses"
	pkgauth "github.com/rahulverma/medibill-gateway/pkg/auth"
	"github.com/rahulverma/medibill-gateway/pkg/config"
	pkgerrors "github.com/rahulverma/medibill-gateway/pkg/errors"
	"github.com/rahulverma/medibill-gateway/pkg/logger"
	"github.com/rahulverma/medibill-gateway/pkg/session"
)

// Auth validates the operator's bearer token, checks the session is still
// live, and seeds the request context with the operator identity and the
// token forwarded on pharmacy backend calls.
func Auth(cfg config.JWTConfig, sessions session.TokenProvider, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgauth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			sessionID := claims.SessionID()
			if sessionID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
				return
			}

			if sessions != nil {
				ok, err := sessions.IsAuthenticated(r.Context(), sessionID)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
					return
				}
				if !ok {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session expired"))
					return
				}
			}

			ctx := context.WithValue(r.Context(), ctxOperatorID, claims.OperatorID.String())
			ctx = context.WithValue(ctx, ctxOperatorName, claims.OperatorName)
			ctx = context.WithValue(ctx, ctxSessionID, sessionID)
			ctx = context.WithValue(ctx, ctxUpstreamToken, token)

			if logg != nil {
				ctx = logg.WithOperatorID(ctx, claims.OperatorID.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return raw
}
