package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPFetcher fetches pages with a single GET per call
type HTTPFetcher struct {
	client *resty.Client
}

// NewHTTPFetcher creates an HTTPFetcher. A zero timeout leaves the client default.
func NewHTTPFetcher(userAgent string, timeout time.Duration) *HTTPFetcher {
	client := resty.New()
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	if userAgent != "" {
		client.SetHeader("User-Agent", userAgent)
	}
	return &HTTPFetcher{client: client}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	res, err := f.client.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	if res.IsError() {
		return nil, &StatusError{URL: url, StatusCode: res.StatusCode()}
	}
	return res.Body(), nil
}

func (f *HTTPFetcher) Close() error {
	return nil
}
