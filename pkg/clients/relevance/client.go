package relevance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/MEMAtest/horizon-scanner-backend-sub011/pkg/clients"
	"github.com/MEMAtest/horizon-scanner-backend-sub011/pkg/logging"
	"github.com/MEMAtest/horizon-scanner-backend-sub011/pkg/models"
)

// Client represents a relevance scoring API client
type Client struct {
	baseURL      string
	httpClient   *http.Client
	serviceToken string
	logger       logging.Logger
	retryConfig  clients.RetryConfig
}

// Config represents the configuration for the relevance client
type Config struct {
	BaseURL              string
	ServiceToken         string
	Timeout              time.Duration
	Logger               logging.Logger
	RetryConfig          *clients.RetryConfig
	CircuitBreakerConfig *clients.CircuitBreakerConfig
}

// NewClient creates a new relevance scoring API client
func NewClient(config Config) *Client {
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}

	retryConfig := clients.DefaultRetryConfig()
	if config.RetryConfig != nil {
		retryConfig = *config.RetryConfig
	}

	// Add circuit breaker if configured
	if config.CircuitBreakerConfig != nil {
		retryConfig.CircuitBreaker = clients.NewCircuitBreaker(*config.CircuitBreakerConfig)
	}

	httpClient := &http.Client{
		Timeout:   config.Timeout,
		Transport: clients.DefaultTransport(),
	}

	return &Client{
		baseURL:      config.BaseURL,
		httpClient:   httpClient,
		serviceToken: config.ServiceToken,
		logger:       config.Logger,
		retryConfig:  retryConfig,
	}
}

// ScoreRequest is the payload for a single relevance scoring call
type ScoreRequest struct {
	Update  models.RegulatoryUpdate `json:"update"`
	Profile *models.Profile         `json:"profile,omitempty"`
}

// ScoreResponse is the upstream scoring result
type ScoreResponse struct {
	Score float64 `json:"score"`
}

// Score asks the upstream scorer to rate one update against a profile.
// Scores are on a 0-100 scale.
func (c *Client) Score(ctx context.Context, update models.RegulatoryUpdate, profile *models.Profile) (float64, error) {
	req := ScoreRequest{Update: update, Profile: profile}
	jsonBody, err := json.Marshal(req)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.baseURL + "/api/relevance/score"
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if c.serviceToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.serviceToken)
	}

	resp, err := clients.DoWithRetry(ctx, c.httpClient, httpReq, c.retryConfig)
	if err != nil {
		return 0, fmt.Errorf("failed to call relevance service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("relevance service returned %d", resp.StatusCode)
	}

	var scored ScoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&scored); err != nil {
		return 0, fmt.Errorf("failed to decode response: %w", err)
	}

	return scored.Score, nil
}
