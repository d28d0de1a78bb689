// Package client is the stateless request layer for the remote prediction
// service. Every call is single-shot; retry policy belongs to the caller.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/epilepsywatch/riskmon/internal/api"
)

// Config holds client configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration

	// HTTPClient overrides the transport, used by tests. When nil a
	// client with Timeout is constructed.
	HTTPClient *http.Client
}

// DefaultConfig returns a default client configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://localhost:8000",
		Timeout: 30 * time.Second,
	}
}

// Client talks to the prediction service. It owns no session state and
// never mutates shared state beyond issuing the network call.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a prediction service client.
func New(config Config) *Client {
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}

	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		httpClient: httpClient,
	}
}

// Login authenticates against POST /auth/login and returns the session.
// A non-2xx response maps to *AuthError carrying the server message when
// present; transport failures map to *NetworkError.
func (c *Client) Login(ctx context.Context, username, password string) (*api.Session, error) {
	body, err := json.Marshal(api.LoginRequest{Username: username, Password: password})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: "login", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := "Login failed"
		var errResp api.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Message != "" {
			message = errResp.Message
		}
		log.Debug().Int("status", resp.StatusCode).Str("username", username).Msg("login rejected")
		return nil, &AuthError{StatusCode: resp.StatusCode, Message: message}
	}

	var tokenResp api.TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return nil, &NetworkError{Op: "login", Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	if tokenResp.AccessToken == "" {
		return nil, &NetworkError{Op: "login", Err: errors.New("response missing access token")}
	}

	return &api.Session{Token: tokenResp.AccessToken, Username: tokenResp.Username}, nil
}

// Predict submits a sample to POST /api/predict with the token as a bearer
// credential. A 401 maps to ErrUnauthorized so the caller can force
// logout; every other failure maps to *NetworkError.
func (c *Client) Predict(ctx context.Context, token string, sample api.Sample) (*api.Prediction, error) {
	body, err := json.Marshal(sample)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sample: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/predict", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: "predict", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &NetworkError{Op: "predict", Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var prediction api.Prediction
	if err := json.NewDecoder(resp.Body).Decode(&prediction); err != nil {
		return nil, &NetworkError{Op: "predict", Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	return &prediction, nil
}

// Health checks GET /health. Used to probe service reachability.
func (c *Client) Health(ctx context.Context) (*api.HealthStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build health request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: "health", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &NetworkError{Op: "health", Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var status api.HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, &NetworkError{Op: "health", Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	return &status, nil
}
