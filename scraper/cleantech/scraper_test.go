package cleantech

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cleantech100-scraper/config"
	"cleantech100-scraper/models"
	"cleantech100-scraper/scraper/fetch"
	"cleantech100-scraper/storage"
	"cleantech100-scraper/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testListURL = testBaseURL + "/gct100/the-list"

// fixtureFetcher serves the testdata pages in place of i3connect.com
type fixtureFetcher struct {
	calls []string
	list  string
}

func (f *fixtureFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.calls = append(f.calls, url)
	if url == testListURL {
		list := f.list
		if list == "" {
			list = "testdata/the-list.html"
		}
		return os.ReadFile(list)
	}
	if slug, ok := strings.CutPrefix(url, testBaseURL+"/company/"); ok {
		return os.ReadFile(filepath.Join("testdata", "company", slug+".html"))
	}
	return nil, &fetch.StatusError{URL: url, StatusCode: http.StatusNotFound}
}

func (f *fixtureFetcher) Close() error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		ListURL:    testListURL,
		BaseURL:    testBaseURL,
		MaxRetries: 1,
		FetchMode:  config.FetchModeHTTP,
	}
}

// timedFetcher delays every company page and records when each fetch ran
type timedFetcher struct {
	fixtureFetcher
	latency time.Duration
	starts  []time.Time
	ends    []time.Time
}

func (f *timedFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if url == testListURL {
		return f.fixtureFetcher.Fetch(ctx, url)
	}
	f.starts = append(f.starts, time.Now())
	time.Sleep(f.latency)
	body, err := f.fixtureFetcher.Fetch(ctx, url)
	f.ends = append(f.ends, time.Now())
	return body, err
}

// writeList writes a minimal list page linking to the given fixture companies
func writeList(t *testing.T, slugs ...string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("<table><tbody>")
	for _, slug := range slugs {
		b.WriteString(`<tr><td><a href="/company/` + slug + `"></a></td></tr>`)
	}
	b.WriteString("</tbody></table>")
	path := filepath.Join(t.TempDir(), "the-list.html")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func TestScrapeAgainstGolden(t *testing.T) {
	f := &fixtureFetcher{}
	companies, err := NewScraper(testConfig(), f, utils.Discard()).Scrape(context.Background())
	require.NoError(t, err)
	require.Len(t, companies, 100)

	require.Len(t, f.calls, 101)
	require.Equal(t, testListURL, f.calls[0])
	for i, c := range companies {
		require.Equal(t, c.URL(), f.calls[i+1], "companies are fetched in list order")
	}

	assert.Equal(t, "Actility", companies[0].Name())
	assert.Equal(t, "France", companies[0].Field(models.KeyCountry))
	assert.Equal(t, testBaseURL+"/company/vulog", companies[99].URL())
	assert.Equal(t, "\n", companies[99].Field(models.KeyVideo))

	out := filepath.Join(t.TempDir(), "cleantech100_companies.csv")
	require.NoError(t, storage.NewCSVWriter(out, utils.Discard()).WriteCompanies(companies))

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	want, err := os.ReadFile("testdata/golden.csv")
	require.NoError(t, err)
	require.Equal(t, string(want), string(got))
}

func TestScrapeIsRepeatable(t *testing.T) {
	first, err := NewScraper(testConfig(), &fixtureFetcher{}, utils.Discard()).Scrape(context.Background())
	require.NoError(t, err)
	second, err := NewScraper(testConfig(), &fixtureFetcher{}, utils.Discard()).Scrape(context.Background())
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestScrapeWaitsBetweenDetails(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitDelay = 30

	f := &fixtureFetcher{list: writeList(t, "actility", "aquaporin", "sunfolding", "vulog")}
	start := time.Now()
	_, err := NewScraper(cfg, f, utils.Discard()).Scrape(context.Background())
	require.NoError(t, err)
	// four detail fetches, three gaps
	require.GreaterOrEqual(t, time.Since(start), 85*time.Millisecond)
}

func TestScrapePausesAfterSlowFetches(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitDelay = 30

	f := &timedFetcher{latency: 40 * time.Millisecond}
	f.list = writeList(t, "actility", "aquaporin", "sunfolding")
	_, err := NewScraper(cfg, f, utils.Discard()).Scrape(context.Background())
	require.NoError(t, err)

	require.Len(t, f.starts, 3)
	for i := 1; i < len(f.starts); i++ {
		assert.GreaterOrEqual(t, f.starts[i].Sub(f.ends[i-1]), 25*time.Millisecond,
			"pause before company %d", i+1)
	}
}

func TestScrapeStopsOnDetailError(t *testing.T) {
	dir := t.TempDir()
	page, err := os.ReadFile("testdata/the-list.html")
	require.NoError(t, err)
	broken := strings.Replace(string(page), "/company/sunfolding", "/company/gone", 1)
	list := filepath.Join(dir, "the-list.html")
	require.NoError(t, os.WriteFile(list, []byte(broken), 0o644))

	f := &fixtureFetcher{list: list}
	companies, err := NewScraper(testConfig(), f, utils.Discard()).Scrape(context.Background())
	require.Error(t, err)
	require.Nil(t, companies)
	require.Contains(t, err.Error(), "/company/gone")
	// nothing after the failing company is fetched
	require.Len(t, f.calls, 4)
}

func TestScrapeRowWithoutURL(t *testing.T) {
	dir := t.TempDir()
	list := filepath.Join(dir, "the-list.html")
	// an empty placeholder in the link column leaves the row without a URL
	page := `<table><tbody><tr><td><span data-video-iframe=""></span></td><td>France</td></tr></tbody></table>`
	require.NoError(t, os.WriteFile(list, []byte(page), 0o644))

	_, err := NewScraper(testConfig(), &fixtureFetcher{list: list}, utils.Discard()).Scrape(context.Background())
	require.ErrorIs(t, err, ErrMissingURL)
}

func TestScrapeListFailure(t *testing.T) {
	cfg := testConfig()
	cfg.ListURL = testBaseURL + "/gct100/moved"

	_, err := NewScraper(cfg, &fixtureFetcher{}, utils.Discard()).Scrape(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "list scrape failed")
}

func TestScrapeCancelled(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitDelay = 10_000

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	f := &fixtureFetcher{}
	_, err := NewScraper(cfg, f, utils.Discard()).Scrape(ctx)
	require.Error(t, err)
	// list plus the first, undelayed company
	require.Len(t, f.calls, 2)
}

func TestScrapeOverHTTP(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/gct100/the-list", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "testdata/the-list.html")
	})
	mux.HandleFunc("/company/", func(w http.ResponseWriter, r *http.Request) {
		slug := strings.TrimPrefix(r.URL.Path, "/company/")
		http.ServeFile(w, r, filepath.Join("testdata", "company", slug+".html"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := testConfig()
	cfg.ListURL = srv.URL + "/gct100/the-list"
	cfg.BaseURL = srv.URL

	f := fetch.NewHTTPFetcher("cleantech-test", 5*time.Second)
	companies, err := NewScraper(cfg, f, utils.Discard()).Scrape(context.Background())
	require.NoError(t, err)
	require.Len(t, companies, 100)
	assert.Equal(t, srv.URL+"/company/vulog", companies[99].URL())
	assert.Equal(t, "Vulog", companies[99].Name())
}
