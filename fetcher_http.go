package lyricwiki

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// DefaultUserAgent identifies the library to the wiki.
const DefaultUserAgent = "lyricwiki-go/1.0 (+https://github.com/gofandom/lyricwiki)"

const defaultRequestTimeout = 15 * time.Second

// HTTPFetcherConfig controls the colly-backed fetcher.
type HTTPFetcherConfig struct {
	UserAgent string        // DefaultUserAgent when empty
	Timeout   time.Duration // per request, defaultRequestTimeout when zero
	Delay     time.Duration // minimum spacing between requests, off when zero
}

// HTTPFetcher fetches pages with a colly collector. The base collector
// is cloned per fetch; revisits stay allowed because weak references
// re-resolve pages that were fetched before. Safe for concurrent use.
type HTTPFetcher struct {
	cfg    HTTPFetcherConfig
	base   *colly.Collector
	logger *zap.Logger

	mu   sync.Mutex
	last time.Time
}

// NewHTTPFetcher builds an HTTPFetcher. A nil logger disables logging.
func NewHTTPFetcher(cfg HTTPFetcherConfig, logger *zap.Logger) *HTTPFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultRequestTimeout
	}
	base := colly.NewCollector()
	base.AllowURLRevisit = true
	base.WithTransport(newHTTPTransport())
	return &HTTPFetcher{cfg: cfg, base: base, logger: logger}
}

// Fetch executes a single HTTP GET. Any HTTP response, error statuses
// included, comes back as a Page; only transport failures and
// cancellation return an error.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (Page, error) {
	if err := f.pace(ctx); err != nil {
		return Page{}, fmt.Errorf("fetch canceled: %w", err)
	}

	var (
		result   Page
		fetchErr error
	)
	collector := f.base.Clone()
	collector.UserAgent = f.cfg.UserAgent
	collector.SetRequestTimeout(f.cfg.Timeout)

	collector.OnResponse(func(r *colly.Response) {
		result = Page{
			URL:        r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Body:       string(r.Body),
		}
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode != 0 {
			result = Page{
				URL:        r.Request.URL.String(),
				StatusCode: r.StatusCode,
				Body:       string(r.Body),
			}
		}
		fetchErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return Page{}, fmt.Errorf("fetch canceled: %w", ctx.Err())
	case err := <-done:
		if result.StatusCode != 0 {
			f.logger.Debug("page fetched",
				zap.String("url", url),
				zap.Int("status", result.StatusCode),
				zap.Int("bytes", len(result.Body)))
			return result, nil
		}
		if err != nil {
			f.logger.Warn("page fetch failed", zap.String("url", url), zap.Error(err))
			return Page{}, fmt.Errorf("visit failed: %w", err)
		}
		if fetchErr != nil {
			f.logger.Warn("page fetch failed", zap.String("url", url), zap.Error(fetchErr))
			return Page{}, fmt.Errorf("response failed: %w", fetchErr)
		}
		return result, nil
	}
}

// pace reserves the next request slot so sequential and concurrent
// callers alike keep the configured spacing between requests.
func (f *HTTPFetcher) pace(ctx context.Context) error {
	if f.cfg.Delay <= 0 {
		return nil
	}
	f.mu.Lock()
	slot := time.Now()
	if earliest := f.last.Add(f.cfg.Delay); earliest.After(slot) {
		slot = earliest
	}
	f.last = slot
	f.mu.Unlock()

	wait := time.Until(slot)
	if wait <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
