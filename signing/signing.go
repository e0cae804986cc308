package signing

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"

	"clipforge/models"
)

// Signed download tokens for the local storage backend. Tokens are HS256
// JWTs carrying the object key of a rendered file; the download route
// verifies them before serving anything from the serve directory.

const Issuer = "clipforge"

var (
	ErrInvalidToken     = errors.New("invalid token format")
	ErrTokenExpired     = errors.New("token has expired")
	ErrTokenNotYetValid = errors.New("token not yet valid")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrInvalidIssuer    = errors.New("invalid issuer")
)

// CreateDownloadToken signs a token granting access to objectKey until
// now+ttl.
func CreateDownloadToken(objectKey string, secret []byte, ttl time.Duration) (string, error) {
	if objectKey == "" {
		return "", errors.New("object key cannot be empty")
	}

	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.HS256, Key: secret}, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create signer: %w", err)
	}

	now := time.Now()
	claims := models.DownloadClaims{
		Issuer:    Issuer,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(ttl).Unix(),
		ObjectKey: objectKey,
	}

	token, err := jwt.Signed(signer).Claims(claims).Serialize()
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// VerifyDownloadToken verifies signature, expiry and issuer, returning the
// embedded claims. clockSkew loosens the timestamp checks for drifting
// clients.
func VerifyDownloadToken(tokenString string, secret []byte, clockSkew time.Duration) (*models.DownloadClaims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	tok, err := jwt.ParseSigned(tokenString, []jose.SignatureAlgorithm{jose.HS256})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims := &models.DownloadClaims{}
	if err := tok.Claims(secret, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	now := time.Now().Unix()
	skew := int64(clockSkew.Seconds())

	if claims.ExpiresAt > 0 && claims.ExpiresAt < (now-skew) {
		return nil, ErrTokenExpired
	}
	if claims.IssuedAt > 0 && claims.IssuedAt > (now+skew) {
		return nil, ErrTokenNotYetValid
	}
	if claims.Issuer != Issuer {
		return nil, fmt.Errorf("%w: expected %q, got %q", ErrInvalidIssuer, Issuer, claims.Issuer)
	}

	return claims, nil
}
