package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/rahulverma/medibill-gateway/pkg/config"
)

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := config.JWTConfig{
		Secret: "secret",
		Issuer: "medibill",
	}
	now := time.Now().UTC()
	operatorID := uuid.New()

	payload := AccessTokenPayload{
		OperatorID:   operatorID,
		OperatorName: "Asha",
	}

	token, err := MintAccessToken(cfg, now, 30*time.Minute, payload)
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}

	if claims.OperatorID != operatorID {
		t.Fatalf("expected operator_id %s, got %s", operatorID, claims.OperatorID)
	}
	if claims.OperatorName != "Asha" {
		t.Fatalf("operator name not preserved, got %q", claims.OperatorName)
	}
	if claims.ID == "" {
		t.Fatal("expected a generated jti")
	}

	// RegisteredClaims is embedded, so access fields directly.
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("expected issuer %s, got %s", cfg.Issuer, claims.Issuer)
	}

	exp := now.Add(30 * time.Minute)
	diff := claims.ExpiresAt.Sub(exp)
	if diff < 0 {
		diff = -diff
	}
	if diff >= time.Second {
		t.Fatalf("expected exp roughly %v, got %v (diff %v)", exp.UTC(), claims.ExpiresAt.UTC(), diff)
	}
}

func TestParseAccessTokenInvalidSignature(t *testing.T) {
	cfg := config.JWTConfig{
		Secret: "secret",
		Issuer: "medibill",
	}
	token, err := MintAccessToken(cfg, time.Now(), 10*time.Minute, AccessTokenPayload{OperatorID: uuid.New()})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	_, err = ParseAccessToken(cfg, token+"x")
	if err == nil {
		t.Fatal("expected invalid signature error")
	}
}

func TestParseAccessTokenExpired(t *testing.T) {
	cfg := config.JWTConfig{
		Secret: "secret",
		Issuer: "medibill",
	}
	now := time.Now().Add(-time.Hour)
	token, err := MintAccessToken(cfg, now, 15*time.Minute, AccessTokenPayload{OperatorID: uuid.New()})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	_, err = ParseAccessToken(cfg, token)
	if err == nil {
		t.Fatal("expected expiration error")
	}
	if !strings.Contains(err.Error(), "expired") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMintAccessTokenMissingOperator(t *testing.T) {
	cfg := config.JWTConfig{
		Secret: "secret",
		Issuer: "medibill",
	}
	if _, err := MintAccessToken(cfg, time.Now(), 5*time.Minute, AccessTokenPayload{}); err == nil {
		t.Fatal("expected missing operator id error")
	}
}
