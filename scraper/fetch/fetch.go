// Package fetch retrieves page bodies for the scrapers, either over plain
// HTTP or through a headless browser.
package fetch

import (
	"context"
	"fmt"
)

// Fetcher returns the body of the page at url
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
	Close() error
}

// StatusError is returned when the server answers with a 4xx/5xx status
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}
