// internal/common/auth/authenticator.go
package auth

import (
	"context"
	"crypto/subtle"
	"strings"

	apperrors "startup-scoring/internal/common/errors"
)

// TokenValidator is satisfied by KeycloakClient.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*TokenInfo, error)
}

// Principal is the authenticated caller of an HTTP function.
type Principal struct {
	UserID   string
	Username string
	// Service is set for the backend service token, which skips membership checks.
	Service bool
}

// Authenticator resolves an Authorization header into a Principal.
type Authenticator struct {
	validator    TokenValidator
	serviceToken string
}

func NewAuthenticator(validator TokenValidator, serviceToken string) *Authenticator {
	return &Authenticator{validator: validator, serviceToken: serviceToken}
}

func (a *Authenticator) Authenticate(ctx context.Context, authorization string) (*Principal, error) {
	token, ok := bearerToken(authorization)
	if !ok {
		return nil, apperrors.NewAuthenticationError("missing or malformed Authorization header")
	}

	if a.serviceToken != "" && subtle.ConstantTimeCompare([]byte(token), []byte(a.serviceToken)) == 1 {
		return &Principal{UserID: "service", Username: "service", Service: true}, nil
	}

	if a.validator == nil {
		return nil, apperrors.NewAuthenticationError("no token validator configured")
	}

	info, err := a.validator.ValidateToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return &Principal{UserID: info.Sub, Username: info.Username}, nil
}

func bearerToken(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
