package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the validated content of an access token. UserID mirrors the
// registered subject claim and is filled in after parsing.
type Claims struct {
	UserID   uuid.UUID `json:"-"`
	DeviceID string    `json:"device_id"`
	jwt.RegisteredClaims
}

// TokenService mints and validates the credential pair: a short-lived signed
// access token and an opaque refresh token with its own expiry. The caller
// is responsible for persisting the refresh token.
type TokenService interface {
	// GenerateTokenPair creates a signed access token (subject=userID,
	// device_id claim, fresh jti) and an unrelated high-entropy refresh
	// token. refreshExpiry is the refresh token's absolute expiry.
	GenerateTokenPair(userID uuid.UUID, deviceID string) (accessToken, refreshToken string, refreshExpiry time.Time, err error)

	// ValidateAccessToken verifies signature, issuer, audience and lifetime,
	// and returns the extracted claims. Any failure yields an error; the
	// caller maps all of them to a single unauthenticated outcome.
	ValidateAccessToken(tokenString string) (*Claims, error)

	// ExtractClaimsIgnoringExpiry verifies signature, issuer and audience
	// but tolerates an elapsed lifetime. Used by the refresh flow, where the
	// access token identifies the session being rotated and is expected to
	// have expired.
	ExtractClaimsIgnoringExpiry(tokenString string) (*Claims, error)

	// RefreshTokenDuration returns the configured refresh token lifetime.
	RefreshTokenDuration() time.Duration
}
