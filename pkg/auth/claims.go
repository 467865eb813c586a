package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data carried by an operator JWT.
type AccessTokenPayload struct {
	OperatorID   uuid.UUID
	OperatorName string
	JTI          string
}

// AccessTokenClaims represents the typed JWT issued by the upstream pharmacy
// backend and verified here with the shared secret.
type AccessTokenClaims struct {
	OperatorID   uuid.UUID `json:"operator_id"`
	OperatorName string    `json:"operator_name,omitempty"`
	jwt.RegisteredClaims
}

// SessionID returns the liveness key for the token: the jti when present,
// otherwise the operator id.
func (c *AccessTokenClaims) SessionID() string {
	if c == nil {
		return ""
	}
	if c.ID != "" {
		return c.ID
	}
	if c.OperatorID != uuid.Nil {
		return c.OperatorID.String()
	}
	return ""
}
