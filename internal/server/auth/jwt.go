// Package auth implements the credential hasher and the JWT issuer/verifier
// used by the authentication flow.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/mydutch/internal/common"
)

// TokenKind distinguishes short-lived access tokens from long-lived refresh
// tokens. The kind is embedded in the token's claims, so an access token can
// never be replayed as a refresh token or vice versa.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// Claims carries the registered JWT claims plus the token kind tag.
type Claims struct {
	jwt.RegisteredClaims
	TokenType string `json:"type"`
}

// GenerateToken signs an HS256 JWT for userID with the given kind and
// validity. The jti claim gets a fresh UUID so two tokens minted within the
// same second are still distinct strings (the session store requires token
// strings to be globally unique).
func GenerateToken(userID string, kind TokenKind, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		TokenType: string(kind),
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetUserIDFromToken verifies signature, expiry, and kind, and returns the
// subject claim. Verification is purely local: it never consults the session
// store. Failures collapse to common.ErrInvalidToken except expiry, which is
// reported as common.ErrTokenExpired for logging; callers must treat both as
// an invalid token.
func GetUserIDFromToken(tokenString string, kind TokenKind, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid {
		return "", common.ErrInvalidToken
	}

	if claims.TokenType != string(kind) {
		return "", common.ErrInvalidToken
	}

	if claims.Subject == "" {
		return "", common.ErrInvalidToken
	}

	return claims.Subject, nil
}
