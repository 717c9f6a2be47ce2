package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// BrowserFetcher loads pages in one headless Chrome tab and returns the
// serialized document
type BrowserFetcher struct {
	ctx     context.Context
	cancel  context.CancelFunc
	settle  time.Duration
	timeout time.Duration
}

// NewBrowserFetcher starts a headless browser that lives until Close.
// settle is how long to let scripts run after navigation before the
// document is read. A zero timeout leaves page loads unbounded.
func NewBrowserFetcher(userAgent string, settle, timeout time.Duration) (*BrowserFetcher, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("log-level", "3"), // suppress Chrome logs
		chromedp.WindowSize(1280, 900),
	)
	if userAgent != "" {
		opts = append(opts, chromedp.UserAgent(userAgent))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	ctx, cancelCtx := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	cancel := func() {
		cancelCtx()
		cancelAlloc()
	}

	// The first Run launches Chrome and binds it to ctx, so it must not
	// happen on a per-page context.
	if err := chromedp.Run(ctx); err != nil {
		cancel()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	return &BrowserFetcher{
		ctx:     ctx,
		cancel:  cancel,
		settle:  settle,
		timeout: timeout,
	}, nil
}

func (f *BrowserFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	// the tab lives on f.ctx; ctx and the timeout only bound this call
	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if f.timeout > 0 {
		runCtx, cancel = context.WithTimeout(f.ctx, f.timeout)
	} else {
		runCtx, cancel = context.WithCancel(f.ctx)
	}
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var html string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.Sleep(f.settle),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("browser load %s: %w", url, err)
	}
	return []byte(html), nil
}

func (f *BrowserFetcher) Close() error {
	f.cancel()
	return nil
}
