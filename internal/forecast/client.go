// Package forecast provides a lightweight HTTP client for the external
// sleep-efficiency forecasting service. A missing or unreachable
// forecast is a degraded but valid input to the decision engine, never
// an error: the client returns nil and the engine falls back to its
// rule path. If not configured, the client operates as a no-op.
package forecast

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/restwise/insomnia-coach/internal/engine"
)

// requestTimeout bounds one forecast fetch; the engine must not wait on
// a slow collaborator.
const requestTimeout = 5 * time.Second

// Client fetches prediction signals for users.
type Client interface {
	// IsEnabled returns true if the forecast service is configured.
	IsEnabled() bool
	// Predict fetches the current prediction for a user. It returns
	// (nil, nil) when the service is disabled or the signal is
	// unavailable; callers treat that as rule-path fallback.
	Predict(ctx context.Context, userID uuid.UUID) (*engine.Prediction, error)
}

// Config holds forecast client configuration.
type Config struct {
	BaseURL string
	APIKey  string
}

type client struct {
	baseURL    string
	apiKey     string
	enabled    bool
	httpClient *http.Client
}

// NewClient creates a forecast client. If baseURL is empty, returns a
// disabled no-op client.
func NewClient(cfg Config) Client {
	enabled := cfg.BaseURL != ""
	if !enabled {
		log.Println("[forecast] disabled: FORECAST_BASE_URL is empty")
	} else {
		log.Printf("[forecast] enabled: base_url=%s", cfg.BaseURL)
	}

	return &client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		enabled: enabled,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

func (c *client) IsEnabled() bool {
	return c.enabled
}

// predictionPayload is the wire format of the forecasting service.
type predictionPayload struct {
	PointEstimate float64 `json:"point_estimate"`
	Lower95       float64 `json:"lower_95"`
	Upper95       float64 `json:"upper_95"`
	Trend         string  `json:"trend"`
	Confidence    float64 `json:"confidence"`
}

func (c *client) Predict(ctx context.Context, userID uuid.UUID) (*engine.Prediction, error) {
	if !c.enabled {
		return nil, nil
	}

	endpoint := c.baseURL + "/v1/predictions/" + url.PathEscape(userID.String())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create forecast request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Unreachable collaborator degrades to the rule path.
		log.Printf("[forecast] fetch failed for user %s: %v", userID, err)
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// No prediction yet for this user.
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		log.Printf("[forecast] service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		return nil, nil
	}

	var payload predictionPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode forecast response: %w", err)
	}

	return &engine.Prediction{
		PointEstimate: payload.PointEstimate,
		Lower95:       payload.Lower95,
		Upper95:       payload.Upper95,
		Trend:         engine.Trend(payload.Trend),
		Confidence:    payload.Confidence,
	}, nil
}
