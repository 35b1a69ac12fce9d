package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-koyomi/internal/calendar"
	"github.com/tartampluch/go-koyomi/internal/config"
	"github.com/tartampluch/go-koyomi/internal/engine"
	"github.com/tartampluch/go-koyomi/internal/holiday"
)

var fixedNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func newTestServer(opts Options) *Server {
	if opts.Clock == nil {
		opts.Clock = calendar.FixedClock(fixedNow)
	}
	return New(opts)
}

// -----------------------------------------------------------------------------
// Feed handler
// -----------------------------------------------------------------------------

func TestHandler_ServingContent(t *testing.T) {
	srv := newTestServer(Options{})
	expectedICS := []byte("BEGIN:VCALENDAR\r\nVERSION:2.0\r\nEND:VCALENDAR")
	srv.Update(expectedICS)

	req := httptest.NewRequest(http.MethodGet, config.RouteFeed, nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	resp := w.Result()
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, config.MimeTextCalendar, resp.Header.Get(config.HeaderContentType))
	assert.Equal(t, config.MimeNoSniff, resp.Header.Get(config.HeaderXContentType))
	assert.Contains(t, resp.Header.Get(config.HeaderCacheControl), "no-cache")
	assert.NotEmpty(t, resp.Header.Get(config.HeaderETag))
	assert.Equal(t, fixedNow.Format(http.TimeFormat), resp.Header.Get(config.HeaderLastModified))

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, expectedICS, body)
}

func TestHandler_Caching(t *testing.T) {
	srv := newTestServer(Options{})
	srv.Update([]byte("DATA_VERSION_1"))

	w1 := httptest.NewRecorder()
	srv.handleFeed(w1, httptest.NewRequest(http.MethodGet, config.RouteFeed, nil))
	etag := w1.Result().Header.Get(config.HeaderETag)
	require.NotEmpty(t, etag)

	req2 := httptest.NewRequest(http.MethodGet, config.RouteFeed, nil)
	req2.Header.Set(config.HeaderIfNoneMatch, etag)
	w2 := httptest.NewRecorder()
	srv.handleFeed(w2, req2)

	resp2 := w2.Result()
	defer func() { _ = resp2.Body.Close() }()
	assert.Equal(t, http.StatusNotModified, resp2.StatusCode)
	body, _ := io.ReadAll(resp2.Body)
	assert.Empty(t, body, "Body must be empty on 304 Not Modified")

	req3 := httptest.NewRequest(http.MethodGet, config.RouteFeed, nil)
	req3.Header.Set(config.HeaderIfModifiedSince, fixedNow.Add(time.Hour).Format(http.TimeFormat))
	w3 := httptest.NewRecorder()
	srv.handleFeed(w3, req3)
	assert.Equal(t, http.StatusNotModified, w3.Code)

	req4 := httptest.NewRequest(http.MethodGet, config.RouteFeed, nil)
	req4.Header.Set(config.HeaderIfModifiedSince, fixedNow.Add(-time.Hour).Format(http.TimeFormat))
	w4 := httptest.NewRecorder()
	srv.handleFeed(w4, req4)
	assert.Equal(t, http.StatusOK, w4.Code)
}

func TestUpdate_UnchangedContentKeepsLastModified(t *testing.T) {
	clock := &steppingClock{now: fixedNow}
	srv := newTestServer(Options{Clock: clock})

	srv.Update([]byte("SAME"))
	first := srv.cache.Load()

	clock.now = fixedNow.Add(time.Hour)
	srv.Update([]byte("SAME"))
	assert.Same(t, first, srv.cache.Load(), "Identical content is not re-installed")

	srv.Update([]byte("CHANGED"))
	item := srv.cache.Load()
	assert.NotEqual(t, first.etag, item.etag)
	assert.Equal(t, clock.now.Format(http.TimeFormat), item.lastModified)
}

type steppingClock struct{ now time.Time }

func (c *steppingClock) Now() time.Time { return c.now }

func TestHandler_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(Options{})

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, config.RouteFeed, nil))

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, config.AllowedMethods, w.Header().Get(config.HeaderAllow))
}

func TestHandler_Initializing(t *testing.T) {
	srv := newTestServer(Options{})

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, config.RouteFeed, nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, config.RetryAfterSeconds, w.Header().Get(config.HeaderRetryAfter))
}

func TestApply_InstallsSyncResult(t *testing.T) {
	srv := newTestServer(Options{})
	overlay := holiday.NewOverlay(nil, []holiday.Holiday{
		{Date: calendar.New(2025, 12, 29), Name: "年末休暇", Kind: holiday.Custom},
	})
	srv.Apply(&engine.SyncResult{ICS: []byte(config.StubVCalendar), Holidays: overlay})

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodHead, config.RouteFeed, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String(), "HEAD has no body")

	h, ok := holiday.Lookup(srv.holidays(), calendar.New(2025, 12, 29))
	require.True(t, ok, "The overlay replaces the rule table")
	assert.Equal(t, "年末休暇", h.Name)
}

// TestServer_RaceCondition runs writers and readers of the feed cache
// concurrently. Run it with -race.
func TestServer_RaceCondition(t *testing.T) {
	srv := newTestServer(Options{})
	var wg sync.WaitGroup

	end := time.Now().Add(500 * time.Millisecond)

	for w := 0; w < 5; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			i := 0
			for time.Now().Before(end) {
				srv.Update([]byte(fmt.Sprintf("VERSION:%d-%d", id, i)))
				i++
				time.Sleep(1 * time.Microsecond)
			}
		}(w)
	}

	for r := 0; r < 20; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) {
				w := httptest.NewRecorder()
				srv.handleFeed(w, httptest.NewRequest(http.MethodGet, config.RouteFeed, nil))

				if code := w.Code; code != http.StatusOK && code != http.StatusServiceUnavailable {
					t.Errorf("Unexpected status code during race test: %d", code)
				}
			}
		}()
	}

	wg.Wait()
}

// -----------------------------------------------------------------------------
// Integration (real TCP lifecycle)
// -----------------------------------------------------------------------------

func TestServer_Lifecycle(t *testing.T) {
	const port = "18099"

	srv := newTestServer(Options{Port: port})
	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)

	go func() {
		errChan <- srv.Start(ctx)
	}()

	url := "http://127.0.0.1:" + port + config.RouteFeed

	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return true
	}, 2*time.Second, 50*time.Millisecond, "Server failed to bind/listen in time")

	resp, err := http.Get(url)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	_ = resp.Body.Close()

	srv.Update([]byte("BEGIN:VCALENDAR\nEND:VCALENDAR"))

	resp, err = http.Get(url)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	assert.Contains(t, string(body), "BEGIN:VCALENDAR")

	cancel()

	select {
	case err := <-errChan:
		assert.NoError(t, err, "Server should shutdown gracefully without error")
	case <-time.After(5 * time.Second):
		t.Fatal("Server shutdown timed out")
	}
}

func TestServer_StartRejectsBadPort(t *testing.T) {
	err := newTestServer(Options{Port: "99999"}).Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrPortRange)
}
