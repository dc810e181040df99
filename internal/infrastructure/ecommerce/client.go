// Package ecommerce implements integration.StoreClient for the supported store platforms.
package ecommerce

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/stockpulse/invsync/internal/domain/integration"
)

// maxResponseSize caps a single platform response (10MB)
const maxResponseSize = 10 * 1024 * 1024

// apiClient is the throttled JSON transport shared by the platform clients
type apiClient struct {
	name       string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func newAPIClient(name string, timeout time.Duration, rps float64) *apiClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &apiClient{
		name:       name,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, 1),
	}
}

// getJSON issues a GET, maps HTTP failures onto the integration error set and
// decodes the body into out. The response headers are returned for pagination.
func (c *apiClient) getJSON(ctx context.Context, url string, headers map[string]string, out any) (http.Header, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", c.name, integration.ErrPlatformRequest, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create request: %w", c.name, err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", c.name, integration.ErrPlatformRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read response: %w", c.name, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%s: %w: HTTP %d", c.name, integration.ErrPlatformAuth, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%s: %w: retry after %q", c.name, integration.ErrPlatformRateLimited, resp.Header.Get("Retry-After"))
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("%s: %w: HTTP %d: %s", c.name, integration.ErrPlatformRequest, resp.StatusCode, truncate(string(body), 200))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", c.name, integration.ErrInvalidResponse, err)
	}
	return resp.Header, nil
}

// parseDecimal parses a platform price string, treating garbage as zero
func parseDecimal(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// truncate shortens an upstream body for an error message, keeping it valid UTF-8
func truncate(s string, n int) string {
	if len(s) <= n {
		return integration.TruncateText(s, n)
	}
	return integration.TruncateText(s, n) + "..."
}

func trimBase(u string) string {
	return strings.TrimRight(u, "/")
}
