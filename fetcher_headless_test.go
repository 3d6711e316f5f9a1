package lyricwiki

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/stretchr/testify/require"
)

func TestNewHeadlessFetcherLimiter(t *testing.T) {
	t.Parallel()

	_, err := NewHeadlessFetcher(HeadlessFetcherConfig{MaxParallel: -1}, nil)
	require.Error(t, err)

	f, err := NewHeadlessFetcher(HeadlessFetcherConfig{MaxParallel: 2}, nil)
	require.NoError(t, err)
	defer f.Close()
	require.Equal(t, 2, cap(f.limiter))
	require.Equal(t, 45*time.Second, f.cfg.NavTimeout)
	require.Equal(t, DefaultUserAgent, f.cfg.UserAgent)

	unbounded, err := NewHeadlessFetcher(HeadlessFetcherConfig{}, nil)
	require.NoError(t, err)
	defer unbounded.Close()
	require.Nil(t, unbounded.limiter)
}

func TestHeadlessAcquireRelease(t *testing.T) {
	t.Parallel()

	f, err := NewHeadlessFetcher(HeadlessFetcherConfig{MaxParallel: 1}, nil)
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, f.acquire(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Error(t, f.acquire(ctx))

	f.release()
	require.NoError(t, f.acquire(context.Background()))
	f.release()
}

func TestResponseMetaCapture(t *testing.T) {
	t.Parallel()

	meta := newResponseMeta()
	meta.captureEvent(&network.EventResponseReceived{
		Type: network.ResourceTypeStylesheet,
		Response: &network.Response{
			Status: 500,
			URL:    "https://lyrics.fandom.com/style.css",
		},
	})
	meta.captureEvent(&network.EventResponseReceived{
		Type: network.ResourceTypeDocument,
		Response: &network.Response{
			Status: 404,
			URL:    "https://lyrics.fandom.com/wiki/Missing",
		},
	})

	status, url := meta.snapshotWithFallbacks("https://req", "https://final")
	require.Equal(t, 404, status, "only the document response counts")
	require.Equal(t, "https://lyrics.fandom.com/wiki/Missing", url)
}

func TestResponseMetaFallbacks(t *testing.T) {
	t.Parallel()

	status, url := newResponseMeta().snapshotWithFallbacks("https://req", "https://final")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "https://final", url)

	status, url = newResponseMeta().snapshotWithFallbacks("https://req", "")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "https://req", url)
}
