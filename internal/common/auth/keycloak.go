// internal/common/auth/keycloak.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	apperrors "startup-scoring/internal/common/errors"
	commonhttp "startup-scoring/internal/common/http"
)

// KeycloakClient introspects access tokens against a Keycloak realm.
type KeycloakClient struct {
	baseURL      string
	realm        string
	clientID     string
	clientSecret string
	httpClient   *commonhttp.Client
}

// TokenInfo holds the information returned by the token introspection endpoint.
type TokenInfo struct {
	Active    bool   `json:"active"`
	Scope     string `json:"scope,omitempty"`
	ClientID  string `json:"client_id,omitempty"`
	Username  string `json:"username,omitempty"`
	Email     string `json:"email,omitempty"`
	TokenType string `json:"token_type,omitempty"`
	Exp       int64  `json:"exp,omitempty"`
	Iat       int64  `json:"iat,omitempty"`
	Sub       string `json:"sub,omitempty"` // user id
	Iss       string `json:"iss,omitempty"`
}

func NewKeycloakClient(baseURL, realm, clientID, clientSecret string) *KeycloakClient {
	return &KeycloakClient{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		realm:        realm,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   commonhttp.NewClient(10 * time.Second),
	}
}

// ValidateToken checks that an access token is active and returns its claims.
func (k *KeycloakClient) ValidateToken(ctx context.Context, token string) (*TokenInfo, error) {
	introspectURL := fmt.Sprintf("%s/realms/%s/protocol/openid-connect/token/introspect", k.baseURL, k.realm)

	form := url.Values{}
	form.Set("token", token)
	form.Set("token_type_hint", "access_token")
	form.Set("client_id", k.clientID)
	form.Set("client_secret", k.clientSecret)

	var info TokenInfo
	if err := k.httpClient.PostFormJSON(ctx, introspectURL, form, &info); err != nil {
		var statusErr *commonhttp.StatusError
		if errors.As(err, &statusErr) && !statusErr.Transient() {
			return nil, apperrors.NewAuthenticationError(fmt.Sprintf("introspection rejected: status %d", statusErr.StatusCode))
		}
		return nil, apperrors.NewExternalServiceError("keycloak", err)
	}

	if !info.Active {
		return nil, apperrors.NewAuthenticationError("token is expired, revoked or malformed")
	}
	if info.Sub == "" {
		return nil, apperrors.NewAuthenticationError("token has no subject")
	}

	return &info, nil
}
