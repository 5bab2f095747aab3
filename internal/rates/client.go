package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

// Client talks to an open.er-api.com compatible provider:
// GET {baseURL}/latest/{BASE} -> {"result":"success","rates":{"EUR":0.92,...}}.
type Client struct {
	httpClient *http.Client
	baseURL    string
	breaker    *gobreaker.CircuitBreaker
}

type latestResponse struct {
	Result    string             `json:"result"`
	ErrorType string             `json:"error-type"`
	BaseCode  string             `json:"base_code"`
	Rates     map[string]float64 `json:"rates"`
}

// NewClient creates a provider client. Consecutive failures open a circuit
// breaker so a dead provider is not hammered on every page load.
func NewClient(httpClient *http.Client, baseURL string) *Client {
	st := gobreaker.Settings{
		Name:     "exchange-rates",
		Interval: 60 * time.Second,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		breaker:    gobreaker.NewCircuitBreaker(st),
	}
}

// Fetch retrieves the latest rate table relative to base.
func (c *Client) Fetch(ctx context.Context, base string) (Table, error) {
	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetch(ctx, strings.ToUpper(base))
	})
	if err != nil {
		return nil, err
	}
	return out.(Table), nil
}

func (c *Client) fetch(ctx context.Context, base string) (Table, error) {
	url := c.baseURL + "/latest/" + base

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building rates request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rates http request for %s: %w", base, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rates request for %s: unexpected status %d", base, resp.StatusCode)
	}

	var body latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding rates response for %s: %w", base, err)
	}

	if body.Result == "error" {
		return nil, fmt.Errorf("rates provider error for %s: %s", base, body.ErrorType)
	}

	if len(body.Rates) == 0 {
		return nil, fmt.Errorf("no rates returned for %s", base)
	}

	return NewTable(body.Rates), nil
}
