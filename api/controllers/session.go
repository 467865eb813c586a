package controllers

import (
	"context"
	"net/http"

	"github.com/rahulverma/medibill-gateway/api/middleware"
	"github.com/rahulverma/medibill-gateway/api/responses"
	"github.com/rahulverma/medibill-gateway/api/validators"
	pkgauth "github.com/rahulverma/medibill-gateway/pkg/auth"
	"github.com/rahulverma/medibill-gateway/pkg/config"
	pkgerrors "github.com/rahulverma/medibill-gateway/pkg/errors"
	"github.com/rahulverma/medibill-gateway/pkg/logger"
	"github.com/rahulverma/medibill-gateway/pkg/pharmacy"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token    string       `json:"token"`
	Operator operatorView `json:"operator"`
}

type operatorView struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

type loginClient interface {
	Login(ctx context.Context, creds pharmacy.LoginRequest) (*pharmacy.LoginResult, error)
}

type sessionLifecycle interface {
	Start(ctx context.Context, sessionID, token string) error
	Clear(ctx context.Context, sessionID string) error
}

// SessionLogin proxies operator credentials to the pharmacy backend and, on
// success, records the issued token's session so later requests can be
// checked for liveness.
func SessionLogin(client loginClient, sessions sessionLifecycle, jwtCfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload loginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := client.Login(r.Context(), pharmacy.LoginRequest{
			Email:    payload.Email,
			Password: payload.Password,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		claims, err := pkgauth.ParseAccessToken(jwtCfg, result.Token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "backend issued an unverifiable token"))
			return
		}

		sessionID := claims.SessionID()
		if sessionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "backend token missing session identity"))
			return
		}

		if err := sessions.Start(r.Context(), sessionID, result.Token); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store session"))
			return
		}

		if logg != nil {
			logg.Info(logg.WithOperatorID(r.Context(), claims.OperatorID.String()), "session.login")
		}

		responses.WriteSuccess(w, loginResponse{
			Token: result.Token,
			Operator: operatorView{
				ID:   claims.OperatorID.String(),
				Name: claims.OperatorName,
			},
		})
	}
}

// SessionLogout ends the caller's session. Idempotent: logging out twice is
// fine.
func SessionLogout(sessions sessionLifecycle, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())
		if sessionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "no active session"))
			return
		}

		if err := sessions.Clear(r.Context(), sessionID); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear session"))
			return
		}

		if logg != nil {
			logg.Info(r.Context(), "session.logout")
		}
		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}
