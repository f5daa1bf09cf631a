package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"kboard/internal/config"
)

func newConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.New(t.TempDir())
	if err != nil {
		t.Fatalf("config.New: %v", err)
	}
	return cfg
}

func TestOAuthConfig_NotConfigured(t *testing.T) {
	cfg := newConfig(t)
	if _, err := OAuthConfig(cfg); !errors.Is(err, ErrNoOAuthClient) {
		t.Fatalf("expected ErrNoOAuthClient, got %v", err)
	}
}

func TestOAuthConfig_FromFile(t *testing.T) {
	cfg := newConfig(t)
	data := `{"client_id":"id","client_secret":"s","auth_url":"https://a/auth","token_url":"https://a/token","scopes":["board"]}`
	if err := os.WriteFile(cfg.OAuthClientPath(), []byte(data), 0600); err != nil {
		t.Fatal(err)
	}
	oc, err := OAuthConfig(cfg)
	if err != nil {
		t.Fatalf("OAuthConfig: %v", err)
	}
	if oc.ClientID != "id" || oc.Endpoint.TokenURL != "https://a/token" || len(oc.Scopes) != 1 {
		t.Errorf("unexpected config %+v", oc)
	}
}

func TestOAuthConfig_SettingsWin(t *testing.T) {
	cfg := newConfig(t)
	cfg.OAuth = config.OAuth{ClientID: "yaml", AuthURL: "https://y/auth", TokenURL: "https://y/token"}
	if err := os.WriteFile(cfg.OAuthClientPath(), []byte(`{"client_id":"file"}`), 0600); err != nil {
		t.Fatal(err)
	}
	oc, err := OAuthConfig(cfg)
	if err != nil {
		t.Fatalf("OAuthConfig: %v", err)
	}
	if oc.ClientID != "yaml" {
		t.Errorf("ClientID = %q, want yaml", oc.ClientID)
	}
}

func TestOAuthConfig_InvalidFile(t *testing.T) {
	cfg := newConfig(t)
	if err := os.WriteFile(cfg.OAuthClientPath(), []byte("not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := OAuthConfig(cfg); err == nil || errors.Is(err, ErrNoOAuthClient) {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestTokenSource_Static(t *testing.T) {
	cfg := newConfig(t)
	cfg.Token = "static"
	ts, err := TokenSource(context.Background(), cfg)
	if err != nil {
		t.Fatalf("TokenSource: %v", err)
	}
	tok, err := ts.Token()
	if err != nil || tok.AccessToken != "static" {
		t.Fatalf("token = %+v, err = %v", tok, err)
	}
}

func TestTokenSource_NoToken(t *testing.T) {
	ts, err := TokenSource(context.Background(), newConfig(t))
	if err != nil || ts != nil {
		t.Fatalf("expected nil source, got %v, %v", ts, err)
	}
}

func TestTokenSource_StoredToken(t *testing.T) {
	cfg := newConfig(t)
	stored := &oauth2.Token{AccessToken: "stored", Expiry: time.Now().Add(time.Hour)}
	if err := SaveToken(cfg, stored); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}
	info, err := os.Stat(cfg.TokenPath())
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("token mode = %v, want 0600", info.Mode().Perm())
	}

	ts, err := TokenSource(context.Background(), cfg)
	if err != nil {
		t.Fatalf("TokenSource: %v", err)
	}
	tok, err := ts.Token()
	if err != nil || tok.AccessToken != "stored" {
		t.Fatalf("token = %+v, err = %v", tok, err)
	}
}

func TestTokenValid(t *testing.T) {
	cfg := newConfig(t)
	if TokenValid(context.Background(), cfg) {
		t.Fatal("missing token should be invalid")
	}

	if err := SaveToken(cfg, &oauth2.Token{AccessToken: "x", Expiry: time.Now().Add(-time.Hour)}); err != nil {
		t.Fatal(err)
	}
	if TokenValid(context.Background(), cfg) {
		t.Error("expired token without refresh token should be invalid")
	}

	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"fresh","token_type":"Bearer","expires_in":3600}`))
	}))
	defer tokenServer.Close()
	cfg.OAuth = config.OAuth{ClientID: "id", AuthURL: tokenServer.URL + "/auth", TokenURL: tokenServer.URL + "/token"}

	if err := SaveToken(cfg, &oauth2.Token{AccessToken: "x", RefreshToken: "r", Expiry: time.Now().Add(-time.Hour)}); err != nil {
		t.Fatal(err)
	}
	if !TokenValid(context.Background(), cfg) {
		t.Error("refreshable token should be valid")
	}
}
