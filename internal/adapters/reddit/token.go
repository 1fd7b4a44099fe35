package reddit

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/selivandex/ticker-sentiment/pkg/logger"
	"github.com/selivandex/ticker-sentiment/pkg/models"
)

// TokenManager acquires short-lived access tokens via client credentials
type TokenManager struct {
	config *clientcredentials.Config
	client *http.Client
	// source is set when tokens are reused until expiry
	source oauth2.TokenSource
}

// TokenConfig represents application credentials for the token exchange
type TokenConfig struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	UserAgent    string
	Timeout      time.Duration
	// Reuse caches the token until its advertised expiry
	Reuse bool
}

// NewTokenManager creates new token manager
func NewTokenManager(cfg TokenConfig) *TokenManager {
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	m := &TokenManager{
		config: &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		client: newHTTPClient(cfg.UserAgent, cfg.Timeout),
	}

	if cfg.Reuse {
		m.source = m.config.TokenSource(context.WithValue(context.Background(), oauth2.HTTPClient, m.client))
	}

	return m
}

// AccessToken returns a bearer token or an *models.AuthError
func (m *TokenManager) AccessToken(ctx context.Context) (string, error) {
	var (
		token *oauth2.Token
		err   error
	)

	if m.source != nil {
		token, err = m.source.Token()
	} else {
		token, err = m.config.Token(context.WithValue(ctx, oauth2.HTTPClient, m.client))
	}

	if err != nil {
		logger.Error("reddit token exchange failed", zap.Error(err))
		return "", &models.AuthError{Err: err}
	}

	if token.AccessToken == "" {
		return "", &models.AuthError{Err: errors.New("response lacks access_token")}
	}

	logger.Debug("reddit access token acquired",
		zap.Time("expiry", token.Expiry),
	)

	return token.AccessToken, nil
}
