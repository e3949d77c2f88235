package fetch

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/maltedev/marketplace-search/internal/models"
	"github.com/maltedev/marketplace-search/internal/ratelimit"
)

const bodyExcerptLimit = 512

// Client turns a fetched page into a traversable document. It is safe for
// concurrent use when its Fetcher is.
type Client struct {
	site    string
	fetcher Fetcher
	limiter ratelimit.RateLimiter
	dumpDir string
	dumpSeq atomic.Int64
	logger  *slog.Logger
}

type Option func(*Client)

// WithRateLimiter paces every fetch through limiter.
func WithRateLimiter(limiter ratelimit.RateLimiter) Option {
	return func(c *Client) {
		c.limiter = limiter
	}
}

// WithDumpDir writes each successfully fetched body into dir.
func WithDumpDir(dir string) Option {
	return func(c *Client) {
		c.dumpDir = dir
	}
}

func NewClient(site string, fetcher Fetcher, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		site:    site,
		fetcher: fetcher,
		logger:  logger.With("component", "document_client", "site", site),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Site() string {
	return c.site
}

// Document fetches url once and parses it. Any non-2xx status or transport
// failure comes back as a *models.TransportError.
func (c *Client) Document(ctx context.Context, url string) (*goquery.Document, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	res, err := c.fetcher.Fetch(ctx, url)
	if err != nil {
		c.recordOutcome(false)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &models.TransportError{Site: c.site, URL: url, Err: err}
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		c.recordOutcome(false)
		return nil, &models.TransportError{
			Site:        c.site,
			URL:         url,
			StatusCode:  res.StatusCode,
			BodyExcerpt: excerpt(res.Body),
		}
	}
	c.recordOutcome(true)

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	if title := PageTitle(doc); title != "" {
		c.logger.Debug("fetched page", "title", title, "url", url)
	}

	if c.dumpDir != "" {
		c.dump(res.Body)
	}

	return doc, nil
}

// PageTitle returns the trimmed <title> text, or "".
func PageTitle(doc *goquery.Document) string {
	return strings.TrimSpace(doc.Find("title").First().Text())
}

func (c *Client) recordOutcome(ok bool) {
	fb, isFeedback := c.limiter.(ratelimit.Feedback)
	if !isFeedback {
		return
	}
	if ok {
		fb.RecordSuccess()
	} else {
		fb.RecordError()
	}
}

func (c *Client) dump(body []byte) {
	if err := os.MkdirAll(c.dumpDir, 0755); err != nil {
		c.logger.Warn("failed to create dump directory", "dir", c.dumpDir, "error", err)
		return
	}

	name := fmt.Sprintf("%s-%04d.html", c.site, c.dumpSeq.Add(1))
	if err := os.WriteFile(filepath.Join(c.dumpDir, name), body, 0644); err != nil {
		c.logger.Warn("failed to dump page", "file", name, "error", err)
	}
}

func excerpt(body []byte) string {
	if len(body) <= bodyExcerptLimit {
		return strings.TrimSpace(string(body))
	}
	cut := body[:bodyExcerptLimit]
	for len(cut) > 0 && !utf8.Valid(cut) {
		cut = cut[:len(cut)-1]
	}
	return strings.TrimSpace(string(cut)) + "..."
}
