package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/rahulverma/medibill-gateway/pkg/auth"
	"github.com/rahulverma/medibill-gateway/pkg/config"
)

type stubSessionProvider struct {
	ok    bool
	token string
	err   error
}

func (s stubSessionProvider) Token(ctx context.Context, sessionID string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.token, nil
}

func (s stubSessionProvider) IsAuthenticated(ctx context.Context, sessionID string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.ok, nil
}

func mintTestToken(t *testing.T, cfg config.JWTConfig, operatorID uuid.UUID) string {
	t.Helper()
	token, err := auth.MintAccessToken(cfg, time.Now(), time.Hour, auth.AccessTokenPayload{
		OperatorID:   operatorID,
		OperatorName: "Rahul",
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestAuthRejectsMissingToken(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "medibill"}
	handler := Auth(cfg, stubSessionProvider{ok: true}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "medibill"}
	handler := Auth(cfg, stubSessionProvider{ok: true}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRejectsDeadSession(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "medibill"}
	token := mintTestToken(t, cfg, uuid.New())

	handler := Auth(cfg, stubSessionProvider{ok: false}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for dead session got %d", resp.Code)
	}
}

func TestAuthSeedsContextForValidToken(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "medibill"}
	operatorID := uuid.New()
	token := mintTestToken(t, cfg, operatorID)

	var captured struct {
		operator string
		name     string
		session  string
		upstream string
	}
	handler := Auth(cfg, stubSessionProvider{ok: true}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.operator = OperatorIDFromContext(r.Context())
		captured.name = OperatorNameFromContext(r.Context())
		captured.session = SessionIDFromContext(r.Context())
		captured.upstream = UpstreamTokenFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if captured.operator != operatorID.String() {
		t.Fatalf("expected operator %s got %s", operatorID, captured.operator)
	}
	if captured.name != "Rahul" {
		t.Fatalf("expected operator name in context, got %q", captured.name)
	}
	if captured.session == "" {
		t.Fatal("expected session id in context")
	}
	if captured.upstream != token {
		t.Fatal("expected bearer token forwarded in context")
	}
}
