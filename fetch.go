package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	fetchTimeout = 45 * time.Second
	maxPageBytes = 5 * 1024 * 1024
)

// newPageClient builds the HTTP client used for page fetches
func newPageClient() *http.Client {
	return &http.Client{
		Timeout: fetchTimeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("too many redirects")
			}
			return nil
		},
	}
}

// fetchPage retrieves the raw markup of the monitored search page. When a
// render API is configured, the request is routed through it with the target
// URL as a query parameter so that script-rendered layouts come back as
// finished HTML. Any failure here aborts the run before reconciliation; the
// scheduler's next invocation is the retry.
func fetchPage(ctx context.Context, client *http.Client, cfg *Config) ([]byte, error) {
	target := cfg.TargetURL
	if cfg.RenderAPIURL != "" {
		rendered, err := renderAPIURL(cfg)
		if err != nil {
			return nil, err
		}
		target = rendered
	}

	req, err := http.NewRequestWithContext(ctx, "GET", target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	slog.Debug("Fetching page", "url", cfg.TargetURL, "rendered", cfg.RenderAPIURL != "")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("page fetch failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read page body: %w", err)
	}

	slog.Debug("Fetched page", "bytes", len(body))
	return body, nil
}

// renderAPIURL wraps the target URL in a render-API request
func renderAPIURL(cfg *Config) (string, error) {
	u, err := url.Parse(strings.TrimSpace(cfg.RenderAPIURL))
	if err != nil {
		return "", fmt.Errorf("invalid render API URL: %w", err)
	}
	q := u.Query()
	q.Set("url", cfg.TargetURL)
	q.Set("render_js", "true")
	if cfg.RenderAPIKey != "" {
		q.Set("key", cfg.RenderAPIKey)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
