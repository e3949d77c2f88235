package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Response is a raw page as returned by a Fetcher.
type Response struct {
	URL        string
	StatusCode int
	Body       []byte
}

// Fetcher issues a single GET. Implementations must not retry; a non-2xx
// status is returned as a Response, not an error.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Response, error)
}

// HTTPFetcher fetches pages with a plain HTTP client.
type HTTPFetcher struct {
	client *resty.Client
}

type HTTPOptions struct {
	UserAgent string
	// Timeout of zero leaves the transport default in place.
	Timeout time.Duration
}

func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	client := resty.New().SetRetryCount(0)
	if opts.UserAgent != "" {
		client.SetHeader("User-Agent", opts.UserAgent)
	}
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	return &HTTPFetcher{client: client}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*Response, error) {
	res, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", url, err)
	}

	return &Response{
		URL:        res.Request.URL,
		StatusCode: res.StatusCode(),
		Body:       res.Body(),
	}, nil
}
