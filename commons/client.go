// Package commons looks up image URLs on the Wikimedia Commons API.
package commons

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/travel-point/api-go/metrics"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrNotFound means Commons answered but had no usable image.
var ErrNotFound = errors.New("commons: no image found")

const (
	DefaultBaseURL = "https://commons.wikimedia.org/w/api.php"
	breakerName    = "wikimedia-commons"
	maxBodyBytes   = 1 << 20
)

type Options struct {
	BaseURL      string
	UserAgent    string
	RatePerSec   float64
	Burst        int
	BreakerTrips uint32
	BreakerOpen  time.Duration
	HTTPClient   *http.Client
	Logger       *zap.Logger
}

// Client is safe for concurrent use. Every request waits on a shared rate
// limiter and runs through a circuit breaker.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	limiter   *rate.Limiter
	cb        *gobreaker.CircuitBreaker[[]byte]
	log       *zap.Logger
}

func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.RatePerSec <= 0 {
		opts.RatePerSec = 5
	}
	if opts.Burst <= 0 {
		opts.Burst = int(opts.RatePerSec) + 1
	}
	if opts.BreakerTrips == 0 {
		opts.BreakerTrips = 5
	}
	if opts.BreakerOpen <= 0 {
		opts.BreakerOpen = 30 * time.Second
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	log := opts.Logger.With(zap.String("component", "commons"))
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     opts.BreakerOpen,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.BreakerTrips
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})

	return &Client{
		baseURL:   opts.BaseURL,
		userAgent: opts.UserAgent,
		http:      opts.HTTPClient,
		limiter:   rate.NewLimiter(rate.Limit(opts.RatePerSec), opts.Burst),
		cb:        cb,
		log:       log,
	}
}

type searchResponse struct {
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

type imageInfoResponse struct {
	Query struct {
		Pages map[string]struct {
			ImageInfo []struct {
				URL string `json:"url"`
			} `json:"imageinfo"`
		} `json:"pages"`
	} `json:"query"`
}

// Search finds the first File: page matching term and returns its image URL.
func (c *Client) Search(ctx context.Context, term string) (string, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return "", ErrNotFound
	}

	params := url.Values{
		"action":      {"query"},
		"format":      {"json"},
		"list":        {"search"},
		"srsearch":    {term},
		"srnamespace": {"6"},
		"srlimit":     {"1"},
		"srprop":      {""},
	}

	var resp searchResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return "", fmt.Errorf("search %q: %w", term, err)
	}
	if len(resp.Query.Search) == 0 || resp.Query.Search[0].Title == "" {
		return "", ErrNotFound
	}
	return c.ImageURL(ctx, resp.Query.Search[0].Title)
}

// ImageURL resolves a File: title to its direct upload URL.
func (c *Client) ImageURL(ctx context.Context, fileTitle string) (string, error) {
	params := url.Values{
		"action": {"query"},
		"format": {"json"},
		"prop":   {"imageinfo"},
		"titles": {fileTitle},
		"iiprop": {"url"},
	}

	var resp imageInfoResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return "", fmt.Errorf("imageinfo %q: %w", fileTitle, err)
	}
	for _, page := range resp.Query.Pages {
		if len(page.ImageInfo) > 0 && page.ImageInfo[0].URL != "" {
			return page.ImageInfo[0].URL, nil
		}
	}
	return "", ErrNotFound
}

func (c *Client) get(ctx context.Context, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	body, err := c.cb.Execute(func() ([]byte, error) {
		return c.do(ctx, params)
	})
	if err != nil {
		result := "failure"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			result = "rejected"
		}
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, result).Inc()
		return err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "success").Inc()

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
