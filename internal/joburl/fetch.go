package joburl

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultFetchTimeout = 15 * time.Second
	maxPageBytes        = 2 << 20
	userAgent           = "Mozilla/5.0 (compatible; ResumeTailorBot/1.0; +https://resumetailor.app)"
)

// Fetcher downloads the HTML of a job posting page.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (string, error)
}

// RestyFetcher fetches pages with a bounded body size.
type RestyFetcher struct {
	Client   *resty.Client
	MaxBytes int64
}

// NewRestyFetcher returns a fetcher that refuses to connect to non-public
// addresses, including after redirects.
func NewRestyFetcher(timeout time.Duration) *RestyFetcher {
	return newRestyFetcher(timeout, false)
}

func newRestyFetcher(timeout time.Duration, allowPrivate bool) *RestyFetcher {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	client := resty.New().
		SetTimeout(timeout).
		SetRedirectPolicy(redirectGuard(allowPrivate)).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5").
		SetHeader("Accept-Language", "en-US,en;q=0.8")
	if !allowPrivate {
		client.SetTransport(guardedTransport())
	}
	return &RestyFetcher{Client: client, MaxBytes: maxPageBytes}
}

func (f *RestyFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	resp, err := f.Client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(pageURL)
	if err != nil {
		return "", fmt.Errorf("fetch page: %w", err)
	}
	body := resp.RawBody()
	if body == nil {
		return "", fmt.Errorf("fetch page: empty response")
	}
	defer body.Close()

	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return "", fmt.Errorf("fetch page: status %d", resp.StatusCode())
	}
	limit := f.MaxBytes
	if limit <= 0 {
		limit = maxPageBytes
	}
	data, err := io.ReadAll(io.LimitReader(body, limit))
	if err != nil {
		return "", fmt.Errorf("read page: %w", err)
	}
	return string(data), nil
}
