package httpclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// Client is an HTTP client with retry and exponential backoff, used for
// outbound API calls (mail dispatch). Non-2xx responses count as
// failures; 429 is retried like a transport error.
type Client struct {
	httpClient *http.Client
	retries    int
	retryDelay time.Duration
	authToken  string
}

// NewClient creates a Client. authToken, when non-empty, is sent as a
// bearer token on every request.
func NewClient(authToken string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		retries:    3,
		retryDelay: 1 * time.Second,
		authToken:  authToken,
	}
}

// PostJSON sends a JSON payload and returns the response body
func (c *Client) PostJSON(targetURL string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	var lastErr error

	for attempt := 1; attempt <= c.retries; attempt++ {
		req, err := http.NewRequest(http.MethodPost, targetURL, bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		if c.authToken != "" {
			req.Header.Set("Authorization", "Bearer "+c.authToken)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			log.Warn().
				Int("attempt", attempt).
				Err(err).
				Str("url", targetURL).
				Msg("Request failed")

			c.backoff(attempt)
			continue
		}

		// Rate limited: retry with backoff
		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			lastErr = fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
			log.Warn().
				Int("attempt", attempt).
				Int("status", resp.StatusCode).
				Str("url", targetURL).
				Msg("Request rate limited")

			c.backoff(attempt)
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			resp.Body.Close()
			lastErr = fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
			continue
		}

		// Read and close immediately, no defer inside the loop.
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()

		if err != nil {
			lastErr = err
			continue
		}

		return body, nil
	}

	return nil, fmt.Errorf("all retries failed: %w", lastErr)
}

func (c *Client) backoff(attempt int) {
	if attempt < c.retries {
		waitTime := c.retryDelay * time.Duration(math.Pow(2, float64(attempt-1)))
		time.Sleep(waitTime)
	}
}
