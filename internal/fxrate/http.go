package fxrate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

// DefaultURL serves {"rates": {"USD": ...}} for an INR base.
const DefaultURL = "https://open.er-api.com/v6/latest/INR"

// HTTPSource fetches the rate from a JSON endpoint whose body carries a
// rates object keyed by currency code.
type HTTPSource struct {
	httpClient  *http.Client
	url         string
	rateLimiter *rate.Limiter
	maxAttempts int
}

// HTTPOptions configures an HTTPSource. Zero values select defaults.
type HTTPOptions struct {
	URL         string
	Timeout     time.Duration
	PerMinute   int // outbound requests allowed per minute
	MaxAttempts int
}

// NewHTTPSource creates a rate-limited HTTP source.
func NewHTTPSource(opts HTTPOptions) *HTTPSource {
	if opts.URL == "" {
		opts.URL = DefaultURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.PerMinute <= 0 {
		opts.PerMinute = 30
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}

	return &HTTPSource{
		httpClient:  &http.Client{Timeout: opts.Timeout},
		url:         opts.URL,
		rateLimiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.PerMinute)), 2),
		maxAttempts: opts.MaxAttempts,
	}
}

type ratesResponse struct {
	Result string                 `json:"result"`
	Rates  map[string]json.Number `json:"rates"`
}

// INRToUSD fetches the current rate, retrying transient failures with a
// linear backoff.
func (s *HTTPSource) INRToUSD(ctx context.Context) (decimal.Decimal, error) {
	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if err := s.rateLimiter.Wait(ctx); err != nil {
			return decimal.Zero, fmt.Errorf("%w: rate limit wait: %v", ErrRateUnavailable, err)
		}

		usd, retry, err := s.fetch(ctx)
		if err == nil {
			return usd, nil
		}
		lastErr = err
		if !retry {
			break
		}

		slog.Warn("exchange rate fetch failed", "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			return decimal.Zero, fmt.Errorf("%w: %v", ErrRateUnavailable, ctx.Err())
		case <-time.After(backoff(attempt)):
		}
	}
	return decimal.Zero, lastErr
}

func backoff(attempt int) time.Duration {
	return time.Duration(attempt) * 250 * time.Millisecond
}

// fetch performs one request. retry reports whether the failure is worth
// another attempt.
func (s *HTTPSource) fetch(ctx context.Context) (decimal.Decimal, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("%w: build request: %v", ErrRateUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, ctx.Err() == nil, fmt.Errorf("%w: %v", ErrRateUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return decimal.Zero, true, fmt.Errorf("%w: read body: %v", ErrRateUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		retry := resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		return decimal.Zero, retry, fmt.Errorf("%w: status %d", ErrRateUnavailable, resp.StatusCode)
	}

	var parsed ratesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return decimal.Zero, false, fmt.Errorf("%w: decode: %v", ErrRateUnavailable, err)
	}
	if parsed.Result != "" && parsed.Result != "success" {
		return decimal.Zero, true, fmt.Errorf("%w: provider result %q", ErrRateUnavailable, parsed.Result)
	}

	usd, ok := parsed.Rates["USD"]
	if !ok {
		return decimal.Zero, false, fmt.Errorf("%w: no USD rate in response", ErrRateUnavailable)
	}
	parsedRate, err := decimal.NewFromString(usd.String())
	if err != nil || !parsedRate.IsPositive() {
		return decimal.Zero, false, fmt.Errorf("%w: invalid USD rate %q", ErrRateUnavailable, usd.String())
	}
	return parsedRate, false, nil
}
