// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"snaplearn/config"
	"snaplearn/internal/domain/service"
)

// refreshTokenBytes is the entropy of an opaque refresh token before encoding.
const refreshTokenBytes = 32

// jwtService is a concrete implementation of the TokenService interface using the JWT standard.
type jwtService struct {
	secret     []byte        // Secret key for signing access tokens.
	issuer     string        // Expected "iss" claim.
	audience   string        // Expected "aud" claim.
	accessTTL  time.Duration // Time-to-live for access tokens.
	refreshTTL time.Duration // Time-to-live for refresh tokens.
}

// NewJWTService is the constructor for jwtService.
// It takes configuration values to create a new token service instance.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg.JWT.Secret == "" {
		return nil, errors.New("jwt secret must be provided")
	}

	return &jwtService{
		secret:     []byte(cfg.JWT.Secret),
		issuer:     cfg.JWT.Issuer,
		audience:   cfg.JWT.Audience,
		accessTTL:  cfg.JWT.AccessTokenDuration(),
		refreshTTL: cfg.JWT.RefreshTokenDuration(),
	}, nil
}

// GenerateTokenPair creates a signed access token and an opaque refresh token
// for a given user and device. The two tokens are cryptographically unrelated:
// the refresh token carries no claims and is only meaningful against the
// persisted session row.
func (s *jwtService) GenerateTokenPair(userID uuid.UUID, deviceID string) (accessToken, refreshToken string, refreshExpiry time.Time, err error) {
	now := time.Now()
	claims := service.Claims{
		UserID:   userID,
		DeviceID: deviceID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	accessToken, err = token.SignedString(s.secret)
	if err != nil {
		return "", "", time.Time{}, errors.Wrap(err, "sign access token")
	}

	refreshToken, err = generateOpaqueToken()
	if err != nil {
		return "", "", time.Time{}, err
	}

	return accessToken, refreshToken, now.Add(s.refreshTTL), nil
}

// ValidateAccessToken checks signature, issuer, audience and lifetime, and
// returns the parsed claims.
func (s *jwtService) ValidateAccessToken(tokenString string) (*service.Claims, error) {
	return s.parseClaims(tokenString,
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
	)
}

// ExtractClaimsIgnoringExpiry checks signature, issuer and audience but lets
// an elapsed lifetime pass. The refresh flow needs the claims of a token that
// has usually already expired.
func (s *jwtService) ExtractClaimsIgnoringExpiry(tokenString string) (*service.Claims, error) {
	claims := new(service.Claims)
	_, err := jwt.ParseWithClaims(tokenString, claims, s.keyFunc,
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
	)
	// Expiry is the one validation failure we tolerate here. Signature,
	// issuer and audience problems still reject the token.
	if err != nil && !expiredOnly(err) {
		return nil, errors.Wrap(err, "parse access token")
	}

	claims.UserID, err = uuid.Parse(claims.Subject)
	if err != nil {
		return nil, errors.Wrap(err, "parse token subject")
	}

	return claims, nil
}

func expiredOnly(err error) bool {
	return errors.Is(err, jwt.ErrTokenExpired) &&
		!errors.Is(err, jwt.ErrTokenInvalidIssuer) &&
		!errors.Is(err, jwt.ErrTokenInvalidAudience)
}

// RefreshTokenDuration returns the configured duration for refresh tokens.
func (s *jwtService) RefreshTokenDuration() time.Duration {
	return s.refreshTTL
}

func (s *jwtService) parseClaims(tokenString string, opts ...jwt.ParserOption) (*service.Claims, error) {
	claims := new(service.Claims)
	token, err := jwt.ParseWithClaims(tokenString, claims, s.keyFunc, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "parse access token")
	}
	if !token.Valid {
		return nil, errors.New("invalid access token")
	}

	claims.UserID, err = uuid.Parse(claims.Subject)
	if err != nil {
		return nil, errors.Wrap(err, "parse token subject")
	}

	return claims, nil
}

// keyFunc rejects any signing method other than the HMAC family before
// handing back the shared secret.
func (s *jwtService) keyFunc(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, jwt.ErrSignatureInvalid
	}

	return s.secret, nil
}

// generateOpaqueToken returns a URL-safe random string. crypto/rand is the
// whole point here; the token must be unguessable.
func generateOpaqueToken() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "generate refresh token")
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}
