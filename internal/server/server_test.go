package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dshills/jaro/internal/catalog"
	"github.com/dshills/jaro/internal/config"
	"github.com/dshills/jaro/internal/fuzzy"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	cfg := config.Default().Server
	cfg.MaxInput = 32
	return New(cfg, fuzzy.NewMatcher(fuzzy.DefaultOptions()), opts...)
}

func names() *catalog.Catalog {
	return catalog.New([]fuzzy.Item{
		{Text: "martha", Data: 1},
		{Text: "marhta"},
		{Text: "marta"},
		{Text: "nietzsche"},
	})
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestCompareQuery(t *testing.T) {
	h := testServer(t).Handler()

	tests := []struct {
		target string
		metric string
		score  float64
	}{
		{"/v1/compare?a=martha&b=marhta&metric=jaro", "jaro", 0.944444},
		{"/v1/compare?a=martha&b=marhta", "winkler", 0.961111},
		{"/v1/compare?a=crate&b=trace&metric=jw", "winkler", 0.733333},
		{"/v1/compare?a=&b=", "winkler", 1},
		{"/v1/compare?a=abc&b=", "winkler", 0},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, tt.target, "")
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			resp := decode[compareResponse](t, rec)
			assert.Equal(t, tt.metric, resp.Metric)
			assert.InDelta(t, tt.score, resp.Score, 1e-6)
		})
	}
}

func TestCompareJSON(t *testing.T) {
	h := testServer(t).Handler()

	rec := do(t, h, http.MethodPost, "/v1/compare", `{"a":"dwayne","b":"duane","metric":"jaro"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[compareResponse](t, rec)
	assert.Equal(t, compareResponse{A: "dwayne", B: "duane", Metric: "jaro", Score: resp.Score}, resp)
	assert.InDelta(t, 0.822222, resp.Score, 1e-6)

	rec = do(t, h, http.MethodPost, "/v1/compare", `{"a":"x","b":"y","extra":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/v1/compare", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/v1/compare", `{"a":"`+strings.Repeat("x", 2000)+`","b":""}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestCompareErrors(t *testing.T) {
	h := testServer(t).Handler()

	rec := do(t, h, http.MethodGet, "/v1/compare?a=x&b=y&metric=levenshtein", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[errorResponse](t, rec).Error, "unknown metric")

	long := strings.Repeat("é", 33)
	rec = do(t, h, http.MethodGet, "/v1/compare?a="+url.QueryEscape(long)+"&b=x", "")
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	// 32 runes is within the limit even though it is 64 bytes.
	rec = do(t, h, http.MethodGet, "/v1/compare?a="+url.QueryEscape(long[2:])+"&b=x", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodDelete, "/v1/compare", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestMatch(t *testing.T) {
	h := testServer(t, WithCatalog(names())).Handler()

	rec := do(t, h, http.MethodGet, "/v1/match?q=Martha&limit=2", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[matchResponse](t, rec)
	assert.Equal(t, "Martha", resp.Query)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "martha", resp.Results[0].Text)
	assert.Equal(t, 1.0, resp.Results[0].Score)
	assert.Equal(t, 6, resp.Results[0].Prefix)
	assert.EqualValues(t, 1, resp.Results[0].Data)
	assert.Equal(t, "marta", resp.Results[1].Text)

	rec = do(t, h, http.MethodGet, "/v1/match?q=martha", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[matchResponse](t, rec).Results, 3)

	rec = do(t, h, http.MethodGet, "/v1/match?q=zzzzzzzz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[matchResponse](t, rec).Results)
}

func TestMatchErrors(t *testing.T) {
	rec := do(t, testServer(t).Handler(), http.MethodGet, "/v1/match?q=x", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	h := testServer(t, WithCatalog(names())).Handler()

	tests := []struct {
		target string
		code   int
	}{
		{"/v1/match", http.StatusBadRequest},
		{"/v1/match?q=x&limit=-1", http.StatusBadRequest},
		{"/v1/match?q=x&limit=ten", http.StatusBadRequest},
		{"/v1/match?q=" + strings.Repeat("a", 33), http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		rec := do(t, h, http.MethodGet, tt.target, "")
		assert.Equal(t, tt.code, rec.Code, tt.target)
	}
}

func TestMatchParallelCatalog(t *testing.T) {
	items := make([]fuzzy.Item, parallelMin)
	for i := range items {
		items[i] = fuzzy.Item{Text: fmt.Sprintf("item%05d", i)}
	}
	h := testServer(t, WithCatalog(catalog.New(items)), WithWorkers(4)).Handler()

	rec := do(t, h, http.MethodGet, "/v1/match?q=item00042&limit=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[matchResponse](t, rec)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "item00042", resp.Results[0].Text)
}

func TestHealth(t *testing.T) {
	rec := do(t, testServer(t, WithCatalog(names())).Handler(), http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[healthResponse](t, rec)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 4, resp.Items)
}

func TestRequestID(t *testing.T) {
	h := testServer(t).Handler()

	rec := do(t, h, http.MethodGet, "/healthz", "")
	_, err := uuid.Parse(rec.Header().Get(RequestIDHeader))
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/v1/compare?metric=bad", nil)
	req.Header.Set(RequestIDHeader, "client-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "client-123", rec.Header().Get(RequestIDHeader))
	assert.Equal(t, "client-123", decode[errorResponse](t, rec).RequestID)

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("x", maxRequestIDLen+1))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.NotEqual(t, strings.Repeat("x", maxRequestIDLen+1), rec.Header().Get(RequestIDHeader))
}

func TestAccessLog(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := testServer(t, WithLogger(zap.New(core))).Handler()

	do(t, h, http.MethodGet, "/v1/compare?a=a&b=b", "")

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/v1/compare", fields["path"])
	assert.EqualValues(t, http.StatusOK, fields["status"])
	assert.NotEmpty(t, fields["request_id"])
	assert.Equal(t, "server", entries[0].LoggerName)
}

func TestPanicRecovery(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := withRequestID(withAccessLog(zap.New(core), http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))

	rec := do(t, h, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal error", decode[errorResponse](t, rec).Error)
	assert.Equal(t, 1, logs.FilterMessage("panic serving request").Len())
	assert.EqualValues(t, http.StatusInternalServerError, logs.FilterMessage("request").All()[0].ContextMap()["status"])
}

func TestServeShutdown(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "names.txt")
	require.NoError(t, os.WriteFile(path, []byte("martha\n"), 0o644))
	cat, err := catalog.Open(path)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := testServer(t, WithCatalog(cat))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}, Timeout: 5 * time.Second}
	resp, err := client.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRunBadAddr(t *testing.T) {
	cfg := config.Default().Server
	cfg.Addr = "not-an-address"
	s := New(cfg, fuzzy.NewMatcher(fuzzy.DefaultOptions()))

	err := s.Run(context.Background())
	require.Error(t, err)
	var opErr *net.OpError
	assert.True(t, errors.As(err, &opErr) || strings.Contains(err.Error(), "listening"))
}
