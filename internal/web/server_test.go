package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/countrytable/internal/config"
	"github.com/JonMunkholm/countrytable/internal/core"
	"github.com/JonMunkholm/countrytable/internal/country"
	"github.com/JonMunkholm/countrytable/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Table:    config.TableConfig{DefaultPageSize: 10, MaxPageSize: 100, PageSizeOptions: []int{15, 50, 100}},
		Views:    config.ViewsConfig{MaxActive: 5, IdleTimeout: time.Minute, SweepInterval: time.Second},
		Metrics:  config.MetricsConfig{Enabled: true, Path: "/metrics"},
		Security: config.SecurityConfig{EnableCSP: true},
	}
}

func newTestServer(t *testing.T, loader *source.Loader, cfg *config.Config) *Server {
	t.Helper()
	return NewServer(core.NewService(loader, cfg), cfg)
}

func readyServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	loader := source.NewLoader(source.NewFileFetcher("../country/testdata/countries.json"), 0)
	_, err := loader.Load(context.Background())
	require.NoError(t, err)
	return newTestServer(t, loader, cfg)
}

func pendingServer(t *testing.T) *Server {
	t.Helper()
	block := make(chan struct{})
	t.Cleanup(func() { close(block) })
	loader := source.NewLoader(source.FetcherFunc(func(ctx context.Context) ([]country.Record, error) {
		<-block
		return nil, nil
	}), 0)
	loader.Start(context.Background())
	return newTestServer(t, loader, testConfig())
}

func failedServer(t *testing.T) *Server {
	t.Helper()
	loader := source.NewLoader(source.FetcherFunc(func(ctx context.Context) ([]country.Record, error) {
		return nil, errors.New("dial tcp: connection refused")
	}), 0)
	_, _ = loader.Load(context.Background())
	return newTestServer(t, loader, testConfig())
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodePage(t *testing.T, rec *httptest.ResponseRecorder) pageResponse {
	t.Helper()
	var page pageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page), rec.Body.String())
	return page
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) viewResponse {
	t.Helper()
	var v viewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e), rec.Body.String())
	return e
}

func names(rows []country.Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Name
	}
	return out
}

func TestIndex_Loading(t *testing.T) {
	s := pendingServer(t)

	rec := do(t, s, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `aria-label="Loading Spinner"`)
	assert.NotContains(t, rec.Body.String(), "<table")
}

func TestIndex_LoadFailed(t *testing.T) {
	s := failedServer(t)

	rec := do(t, s, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "Error loading data!!!")
	assert.NotContains(t, rec.Body.String(), "<table")
}

func TestIndex_Table(t *testing.T) {
	s := readyServer(t, testConfig())

	rec := do(t, s, http.MethodGet, "/?filter[region]=af&sort=population", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	html := rec.Body.String()
	assert.Contains(t, html, "Countries data")
	assert.Contains(t, html, `placeholder="search country name"`)
	assert.Contains(t, html, `placeholder="search region"`)
	assert.Contains(t, html, "<p>Page 1 of 1</p>")
	assert.Contains(t, html, " 🔽</th>")
	assert.Contains(t, html, `<td class="num">59,308,690</td>`)
	assert.Contains(t, html, "Pretoria")
	assert.NotContains(t, html, "Aruba")

	// South Africa sorts before Zambia when population is descending.
	assert.Less(t, strings.Index(html, "South Africa"), strings.Index(html, "Zambia"))

	// The next click on population flips to ascending and keeps the filter.
	assert.Contains(t, html, `href="/?dir=asc&amp;filter%5Bregion%5D=af&amp;sort=population"`)
}

func TestIndex_UnknownColumn(t *testing.T) {
	s := readyServer(t, testConfig())

	rec := do(t, s, http.MethodGet, "/?filter[bogus]=x", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "COL001")
}

func TestCountries(t *testing.T) {
	s := readyServer(t, testConfig())

	t.Run("filter and sort", func(t *testing.T) {
		rec := do(t, s, http.MethodGet, "/api/countries?filter[name]=a&sort=name", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		page := decodePage(t, rec)
		assert.Equal(t, []string{"Antarctica", "Aruba"}, names(page.Rows))
		assert.Equal(t, 2, page.FilteredCount)
		assert.Equal(t, 7, page.TotalCount)
		assert.Equal(t, 10, page.PageSize)
	})

	t.Run("paginated", func(t *testing.T) {
		rec := do(t, s, http.MethodGet, "/api/countries?sort=population&size=2&page=2", "")
		require.Equal(t, http.StatusOK, rec.Code)

		page := decodePage(t, rec)
		assert.Equal(t, []string{"Zambia", "Aruba"}, names(page.Rows))
		assert.Equal(t, 1, page.PageIndex)
		assert.Equal(t, 4, page.PageCount)
		assert.True(t, page.CanPrevious)
		assert.True(t, page.CanNext)
	})

	t.Run("page past the end is clamped", func(t *testing.T) {
		rec := do(t, s, http.MethodGet, "/api/countries?size=5&page=9", "")
		require.Equal(t, http.StatusOK, rec.Code)

		page := decodePage(t, rec)
		assert.Equal(t, 1, page.PageIndex)
		assert.Len(t, page.Rows, 2)
		assert.False(t, page.CanNext)
	})

	t.Run("rows are flattened", func(t *testing.T) {
		rec := do(t, s, http.MethodGet, "/api/countries?filter[name]=bouvet", "")
		require.Equal(t, http.StatusOK, rec.Code)

		page := decodePage(t, rec)
		require.Len(t, page.Rows, 1)
		assert.Equal(t, "", page.Rows[0].Capital)
		assert.Equal(t, int64(0), page.Rows[0].Population)
		assert.Equal(t, []string{}, page.Rows[0].Languages)
	})

	t.Run("unknown sort column", func(t *testing.T) {
		rec := do(t, s, http.MethodGet, "/api/countries?sort=bogus", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "COL001", decodeError(t, rec).Code)
	})
}

func TestCountries_DataNotReady(t *testing.T) {
	t.Run("pending", func(t *testing.T) {
		rec := do(t, pendingServer(t), http.MethodGet, "/api/countries", "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("Retry-After"))
		assert.Equal(t, "DATA001", decodeError(t, rec).Code)
	})

	t.Run("failed", func(t *testing.T) {
		rec := do(t, failedServer(t), http.MethodGet, "/api/countries", "")
		assert.Equal(t, http.StatusBadGateway, rec.Code)

		e := decodeError(t, rec)
		assert.Equal(t, "DATA002", e.Code)
		assert.NotContains(t, e.Message, "connection refused")
	})
}

func TestViews_Flow(t *testing.T) {
	s := readyServer(t, testConfig())

	rec := do(t, s, http.MethodPost, "/api/views", "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	v := decodeView(t, rec)
	require.NotEmpty(t, v.ID)
	assert.Equal(t, "/api/views/"+v.ID, rec.Header().Get("Location"))
	assert.Equal(t, 10, v.Page.PageSize)
	assert.Len(t, v.Page.Rows, 7)

	base := "/api/views/" + v.ID

	rec = do(t, s, http.MethodPut, base+"/filters/region", `{"value":"af"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []string{"Zambia", "South Africa"}, names(decodeView(t, rec).Page.Rows))

	rec = do(t, s, http.MethodPost, base+"/sort/population", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"South Africa", "Zambia"}, names(decodeView(t, rec).Page.Rows))

	rec = do(t, s, http.MethodPut, base+"/page-size", `{"pageSize":1}`)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decodeView(t, rec).Page
	assert.Equal(t, 2, page.PageCount)
	assert.Equal(t, []string{"South Africa"}, names(page.Rows))

	rec = do(t, s, http.MethodPost, base+"/next", "")
	require.Equal(t, http.StatusOK, rec.Code)
	page = decodeView(t, rec).Page
	assert.Equal(t, 1, page.PageIndex)
	assert.Equal(t, []string{"Zambia"}, names(page.Rows))

	rec = do(t, s, http.MethodPost, base+"/previous", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, decodeView(t, rec).Page.PageIndex)

	rec = do(t, s, http.MethodPut, base+"/page", `{"pageIndex":5}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decodeView(t, rec).Page.PageIndex)

	rec = do(t, s, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, v.ID, decodeView(t, rec).ID)

	rec = do(t, s, http.MethodDelete, base, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodGet, base, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "VIEW001", decodeError(t, rec).Code)
}

func TestViews_Errors(t *testing.T) {
	s := readyServer(t, testConfig())

	rec := do(t, s, http.MethodPost, "/api/views", `{"pageSize":15}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	v := decodeView(t, rec)
	assert.Equal(t, 15, v.Page.PageSize)
	base := "/api/views/" + v.ID

	tests := []struct {
		name   string
		method string
		target string
		body   string
		status int
		code   string
	}{
		{"unknown filter column", http.MethodPut, base + "/filters/bogus", `{"value":"x"}`, http.StatusBadRequest, "COL001"},
		{"unknown sort column", http.MethodPost, base + "/sort/bogus", "", http.StatusBadRequest, "COL001"},
		{"missing value", http.MethodPut, base + "/filters/name", `{}`, http.StatusBadRequest, "REQ001"},
		{"empty body", http.MethodPut, base + "/filters/name", "", http.StatusBadRequest, "REQ001"},
		{"unknown field", http.MethodPut, base + "/page", `{"page":1}`, http.StatusBadRequest, "REQ001"},
		{"zero page size", http.MethodPut, base + "/page-size", `{"pageSize":0}`, http.StatusBadRequest, "PAGE001"},
		{"negative create size", http.MethodPost, "/api/views", `{"pageSize":-1}`, http.StatusBadRequest, "PAGE001"},
		{"unknown view", http.MethodPost, "/api/views/nope/next", "", http.StatusNotFound, "VIEW001"},
		{"close unknown view", http.MethodDelete, "/api/views/nope", "", http.StatusNotFound, "VIEW001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.code, decodeError(t, rec).Code)
		})
	}
}

func TestViews_Limit(t *testing.T) {
	cfg := testConfig()
	cfg.Views.MaxActive = 1
	s := readyServer(t, cfg)

	rec := do(t, s, http.MethodPost, "/api/views", "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/views", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "VIEW002", decodeError(t, rec).Code)
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: 2}
	s := readyServer(t, cfg)

	for i := 0; i < 2; i++ {
		rec := do(t, s, http.MethodGet, "/healthz", "")
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := do(t, s, http.MethodGet, "/api/countries", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "RATE001", decodeError(t, rec).Code)

	// Another client has its own budget.
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.RemoteAddr = "198.51.100.7:4000"
	other := httptest.NewRecorder()
	s.Router().ServeHTTP(other, req)
	assert.Equal(t, http.StatusOK, other.Code)
}

func TestRateLimiter_SweepsIdleVisitors(t *testing.T) {
	rl := newRateLimiter(60, 1)
	now := time.Now()

	ok, _ := rl.reserve("192.0.2.1", now)
	require.True(t, ok)
	ok, wait := rl.reserve("192.0.2.1", now)
	require.False(t, ok)
	assert.Greater(t, wait, time.Duration(0))

	later := now.Add(visitorTTL + time.Second)
	ok, _ = rl.reserve("192.0.2.2", later)
	require.True(t, ok)

	rl.mu.Lock()
	_, kept := rl.visitors["192.0.2.1"]
	rl.mu.Unlock()
	assert.False(t, kept)
}

func TestHealth(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		rec := do(t, readyServer(t, testConfig()), http.MethodGet, "/healthz", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "ready", body["status"])
		assert.Equal(t, float64(7), body["countries"])
	})

	t.Run("pending", func(t *testing.T) {
		rec := do(t, pendingServer(t), http.MethodGet, "/healthz", "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"pending"`)
	})

	t.Run("failed", func(t *testing.T) {
		rec := do(t, failedServer(t), http.MethodGet, "/healthz", "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"failed"`)
		assert.NotContains(t, rec.Body.String(), "connection refused")
	})
}

func TestMetricsEndpoint(t *testing.T) {
	s := readyServer(t, testConfig())
	do(t, s, http.MethodGet, "/api/countries", "")

	rec := do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "countrytable_pipeline_duration_seconds")
}

func TestSecurityHeaders(t *testing.T) {
	rec := do(t, readyServer(t, testConfig()), http.MethodGet, "/healthz", "")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "script-src 'none'")
}

func TestStateURL_RoundTrip(t *testing.T) {
	s := readyServer(t, testConfig())

	q := map[string][]string{
		"filter[name]": {"s"},
		"sort":         {"population"},
		"dir":          {"asc"},
		"page":         {"2"},
		"size":         {"15"},
	}
	st, err := s.parseTableState(q)
	require.NoError(t, err)
	assert.Equal(t, "/?dir=asc&filter%5Bname%5D=s&page=2&size=15&sort=population", stateURL("/", st, 10))

	st, err = s.parseTableState(map[string][]string{"size": {"10"}})
	require.NoError(t, err)
	assert.Equal(t, "/", stateURL("/", st, 10))
}
