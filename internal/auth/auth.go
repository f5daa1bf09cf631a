// Package auth loads OAuth2 settings and tokens from the config directory.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"golang.org/x/oauth2"

	"kboard/internal/config"
)

// ErrNoOAuthClient is returned when no OAuth client is configured.
var ErrNoOAuthClient = errors.New("oauth client not configured")

// OAuthConfig returns the OAuth2 client configuration. Settings from
// config.yaml or the environment win over oauth_client.json.
func OAuthConfig(cfg *config.Config) (*oauth2.Config, error) {
	settings := cfg.OAuth
	if !settings.Configured() && cfg.HasOAuthClient() {
		data, err := os.ReadFile(cfg.OAuthClientPath())
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", config.OAuthClientFile, err)
		}
		var file config.OAuth
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", config.OAuthClientFile, err)
		}
		settings = file
	}
	if !settings.Configured() {
		return nil, ErrNoOAuthClient
	}
	return &oauth2.Config{
		ClientID:     settings.ClientID,
		ClientSecret: settings.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:  settings.AuthURL,
			TokenURL: settings.TokenURL,
		},
		Scopes: settings.Scopes,
	}, nil
}

// LoadToken reads token.json.
func LoadToken(cfg *config.Config) (*oauth2.Token, error) {
	data, err := os.ReadFile(cfg.TokenPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", config.TokenFile, err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", config.TokenFile, err)
	}
	return &token, nil
}

// SaveToken writes token.json with mode 0600.
func SaveToken(cfg *config.Config, token *oauth2.Token) error {
	if err := cfg.EnsureDir(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(cfg.TokenPath(), data, 0600)
}

// TokenSource picks the bearer token source for Board Store calls:
// a static token from the configuration, else the stored login token
// (refreshed through the OAuth client when one is configured), else nil.
func TokenSource(ctx context.Context, cfg *config.Config) (oauth2.TokenSource, error) {
	if cfg.Token != "" {
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token}), nil
	}
	if !cfg.HasToken() {
		return nil, nil
	}
	token, err := LoadToken(cfg)
	if err != nil {
		return nil, err
	}
	oauthConfig, err := OAuthConfig(cfg)
	if errors.Is(err, ErrNoOAuthClient) {
		return oauth2.StaticTokenSource(token), nil
	}
	if err != nil {
		return nil, err
	}
	return oauth2.ReuseTokenSource(token, oauthConfig.TokenSource(ctx, token)), nil
}

// TokenValid reports whether the stored token is usable: parseable, and
// either unexpired or refreshable through the OAuth client.
func TokenValid(ctx context.Context, cfg *config.Config) bool {
	token, err := LoadToken(cfg)
	if err != nil {
		return false
	}
	if token.Valid() {
		return true
	}
	if token.RefreshToken == "" {
		return false
	}
	oauthConfig, err := OAuthConfig(cfg)
	if err != nil {
		return false
	}
	_, err = oauthConfig.TokenSource(ctx, token).Token()
	return err == nil
}
