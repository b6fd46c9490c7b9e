package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/mmcahill/reeldeck/internal/domain"
)

const (
	defaultTimeout = 15 * time.Second
	tokenEndpoint  = "/oauth/token"
	tokenAttempts  = 3
)

// Provider acquires bearer tokens from the hosted identity provider.
// A fresh token is fetched for every request; nothing is cached, so an
// expired or revoked key surfaces on the very next call.
type Provider struct {
	baseURL    string
	clientKey  string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewProvider creates an identity provider client.
func NewProvider(baseURL, clientKey string, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		baseURL:   baseURL,
		clientKey: clientKey,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
}

// Token implements domain.TokenProvider. Transient failures are retried a
// few times; a rejected client key fails immediately.
func (p *Provider) Token(ctx context.Context) (string, error) {
	var token string
	err := retry.Do(
		func() error {
			tok, err := p.fetchToken(ctx)
			if errors.Is(err, domain.ErrAuthFailed) {
				return retry.Unrecoverable(err)
			}
			if err != nil {
				return err
			}
			token = tok
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(tokenAttempts),
		retry.Delay(200*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		p.logger.Error("token acquisition failed", "error", err)
		return "", err
	}
	return token, nil
}

type tokenRequest struct {
	ClientKey string `json:"client_key"`
	GrantType string `json:"grant_type"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

func (p *Provider) fetchToken(ctx context.Context) (string, error) {
	payload, err := json.Marshal(tokenRequest{ClientKey: p.clientKey, GrantType: "client_credentials"})
	if err != nil {
		return "", fmt.Errorf("failed to encode token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+tokenEndpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return "", err
		}
		return "", domain.ErrServerOffline
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", domain.ErrAuthFailed
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", fmt.Errorf("failed to parse token response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("empty access token in response")
	}
	return tr.AccessToken, nil
}
