package backendapi

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

var ErrNoCredentials = errors.New("backend credentials are not configured")

// CredentialProvider yields the Authorization header value for one outbound request.
type CredentialProvider interface {
	Authorization(ctx context.Context) (string, error)
}

// StaticToken sends a fixed bearer token.
type StaticToken string

func (t StaticToken) Authorization(ctx context.Context) (string, error) {
	token := strings.TrimSpace(string(t))
	if token == "" {
		return "", ErrNoCredentials
	}
	return "Bearer " + token, nil
}

// TokenSource adapts an oauth2.TokenSource; tokens are refreshed by the source.
type TokenSource struct {
	Source oauth2.TokenSource
}

func (s TokenSource) Authorization(ctx context.Context) (string, error) {
	if s.Source == nil {
		return "", ErrNoCredentials
	}
	tok, err := s.Source.Token()
	if err != nil {
		return "", fmt.Errorf("failed to obtain backend token: %w", err)
	}
	return tok.Type() + " " + tok.AccessToken, nil
}

// ClientCredentials builds a provider from the OAuth2 client credentials grant.
func ClientCredentials(ctx context.Context, clientID, clientSecret, tokenURL string, scopes ...string) CredentialProvider {
	cfg := clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
		Scopes:       scopes,
	}
	return TokenSource{Source: cfg.TokenSource(ctx)}
}
