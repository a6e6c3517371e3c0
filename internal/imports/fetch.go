package imports

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"git.home.luguber.info/inful/litgen/internal/foundation/errors"
	"git.home.luguber.info/inful/litgen/internal/logfields"
	"git.home.luguber.info/inful/litgen/internal/retry"
	"git.home.luguber.info/inful/litgen/internal/version"
)

// Fetcher retrieves network imports.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher fetches imports with unauthenticated GET requests. Transport
// errors and 5xx or 429 responses are retried according to Retry.
type HTTPFetcher struct {
	Client    *http.Client
	UserAgent string
	Retry     retry.Policy
}

// NewHTTPFetcher returns a fetcher whose client gives up after timeout
// (no limit when zero).
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		Client:    &http.Client{Timeout: timeout},
		UserAgent: version.UserAgent(),
		Retry:     retry.DefaultPolicy(),
	}
}

// Fetch returns the body of url. Transport errors and non-2xx responses are
// network errors carrying the URL (and status when one was received). Only
// the error of the final attempt is returned.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	transient := false
	err := f.Retry.Do(ctx, func(error) bool { return transient && ctx.Err() == nil }, func(attempt int) error {
		if attempt > 0 {
			slog.Warn("Retrying import fetch", logfields.URL(url), slog.Int("attempt", attempt))
		}
		var err error
		body, transient, err = f.fetchOnce(ctx, url)
		return err
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (f *HTTPFetcher) fetchOnce(ctx context.Context, url string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, false, errors.FetchError("invalid import URL").
			WithCause(err).
			WithContext("url", url).
			Build()
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, true, errors.FetchError("failed to fetch import").
			WithCause(err).
			WithContext("url", url).
			Build()
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		retryable := resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		return nil, retryable, errors.FetchError(fmt.Sprintf("fetching %s returned %s", url, resp.Status)).
			WithContext("url", url).
			WithContext("status", resp.StatusCode).
			Build()
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, errors.FetchError("failed to read import body").
			WithCause(err).
			WithContext("url", url).
			Build()
	}
	return body, false, nil
}
