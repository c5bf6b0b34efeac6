package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"md-article-parser/internal/models"
	"md-article-parser/internal/scraper"
)

const articleHTML = `<html lang="en"><head><title>Working with Go Modules</title></head>
<body><article>
<h2>Getting started</h2>
<p>Go modules record the exact dependency versions a build needs in go.mod and go.sum, so every machine compiles the same code without a vendored copy of the world.</p>
<p>Read the <a href="https://go.dev/ref/mod">module reference</a> for every directive.</p>
<p>Upgrading is a matter of running one command and committing the changed files, after which the whole team builds against the new versions.</p>
</article></body></html>`

func newTestHandler(fetch scraper.FetcherFunc) *HTTPHandler {
	parser := scraper.NewParser(scraper.WithFetcher(fetch))
	return NewHTTPHandler(NewService(parser, nil), 1<<20, nil)
}

func serveArticle(ctx context.Context, targetURL string) (string, error) {
	return articleHTML, nil
}

func noFetch(t *testing.T) scraper.FetcherFunc {
	return func(ctx context.Context, targetURL string) (string, error) {
		t.Errorf("unexpected fetch of %s", targetURL)
		return "", errors.New("unexpected fetch")
	}
}

func do(h http.Handler, method, target, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
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

func TestHTTPHandler_GetSuccess(t *testing.T) {
	h := newTestHandler(serveArticle)

	rec := do(h, http.MethodGet, "/?url="+url.QueryEscape("https://example.com/modules"), "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	body := decode[map[string]any](t, rec)
	assert.Equal(t, "Working with Go Modules", body["title"])
	assert.Equal(t, "https://example.com/modules", body["url"])
	assert.Contains(t, body["mdContent"], "[module reference](https://go.dev/ref/mod)")

	metadata, ok := body["metadata"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "https://example.com/modules", metadata["url"])
}

func TestHTTPHandler_GetErrors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		fetch  scraper.FetcherFunc
		status int
		error  string
	}{
		{
			name:   "missing url",
			target: "/",
			status: http.StatusBadRequest,
			error:  `Missing "url" query parameter`,
		},
		{
			name:   "invalid url",
			target: "/?url=notaurl",
			status: http.StatusBadRequest,
			error:  "Invalid URL format",
		},
		{
			name:   "timeout",
			target: "/?url=https://example.com/slow",
			fetch: func(ctx context.Context, targetURL string) (string, error) {
				return "", &models.TimeoutError{Operation: "fetch " + targetURL, Timeout: "30s", Err: context.DeadlineExceeded}
			},
			status: http.StatusGatewayTimeout,
			error:  "Parse took too long",
		},
		{
			name:   "upstream status",
			target: "/?url=https://example.com/missing",
			fetch: func(ctx context.Context, targetURL string) (string, error) {
				return "", &models.HTTPError{StatusCode: 404, URL: targetURL, Err: errors.New("HTTP 404")}
			},
			status: http.StatusBadGateway,
			error:  "Failed to fetch page",
		},
		{
			name:   "no content",
			target: "/?url=https://example.com/empty",
			fetch: func(ctx context.Context, targetURL string) (string, error) {
				return "<html><body></body></html>", nil
			},
			status: http.StatusUnprocessableEntity,
			error:  "No article content found",
		},
		{
			name:   "other failure",
			target: "/?url=https://example.com/down",
			fetch: func(ctx context.Context, targetURL string) (string, error) {
				return "", errors.New("connection refused")
			},
			status: http.StatusInternalServerError,
			error:  "Failed to parse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetch := tt.fetch
			if fetch == nil {
				fetch = noFetch(t)
			}
			rec := do(newTestHandler(fetch), http.MethodGet, tt.target, "", "")
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.error, decode[models.ErrorResponse](t, rec).Error)
		})
	}
}

func TestHTTPHandler_CloudflareBlocked(t *testing.T) {
	h := newTestHandler(func(ctx context.Context, targetURL string) (string, error) {
		return "", &models.CloudflareBlockError{Domain: "example.com", Err: errors.New("CF_BLOCKED")}
	})

	rec := do(h, http.MethodGet, "/?url=https://example.com/a", "", "")
	require.Equal(t, http.StatusUnavailableForLegalReasons, rec.Code)

	blocked := decode[models.BlockedResponse](t, rec)
	assert.Equal(t, "cloudflare", blocked.Provider)
	assert.Equal(t, "example.com", blocked.Domain)
	assert.Equal(t, "https://example.com/a", blocked.Metadata.URL)
}

func TestHTTPHandler_PostJSON(t *testing.T) {
	h := newTestHandler(noFetch(t))

	payload, err := json.Marshal(models.ParseRequest{URL: "https://example.com/modules", Markup: articleHTML})
	require.NoError(t, err)

	rec := do(h, http.MethodPost, "/", "application/json", string(payload))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	info := decode[models.ArticleInfo](t, rec)
	assert.Equal(t, "Working with Go Modules", info.Title)
	assert.Equal(t, "https://example.com/modules", info.URL)
	assert.Equal(t, len(strings.Fields(info.MDContent)), info.WordCount)
}

func TestHTTPHandler_PostRawHTML(t *testing.T) {
	h := newTestHandler(noFetch(t))

	rec := do(h, http.MethodPost, "/?url=https://example.com/raw", "text/html; charset=utf-8", articleHTML)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "https://example.com/raw", decode[models.ArticleInfo](t, rec).URL)
}

func TestHTTPHandler_PostInvalid(t *testing.T) {
	h := newTestHandler(noFetch(t))

	rec := do(h, http.MethodPost, "/", "application/json", "{broken")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", decode[models.ErrorResponse](t, rec).Error)

	rec = do(h, http.MethodPost, "/", "text/html", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing markup body", decode[models.ErrorResponse](t, rec).Error)
}

func TestHTTPHandler_PostTooLarge(t *testing.T) {
	parser := scraper.NewParser(scraper.WithFetcher(noFetch(t)))
	h := NewHTTPHandler(NewService(parser, nil), 64, nil)
	require.Greater(t, len(articleHTML), 64)

	rec := do(h, http.MethodPost, "/?url=https://example.com/raw", "text/html", articleHTML)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "Request body too large", decode[models.ErrorResponse](t, rec).Error)

	payload, err := json.Marshal(models.ParseRequest{URL: "https://example.com/raw", Markup: articleHTML})
	require.NoError(t, err)
	rec = do(h, http.MethodPost, "/", "application/json", string(payload))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	small := `<html><body><p>short</p></body></html>`
	rec = do(h, http.MethodPost, "/?url=https://example.com/raw", "text/html", small)
	assert.NotEqual(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestHTTPHandler_MethodHandling(t *testing.T) {
	h := newTestHandler(noFetch(t))

	rec := do(h, http.MethodOptions, "/", "", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "GET,POST,OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))

	rec = do(h, http.MethodDelete, "/", "", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestService_TimeoutApplied(t *testing.T) {
	parser := scraper.NewParser(scraper.WithFetcher(scraper.FetcherFunc(func(ctx context.Context, targetURL string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})))

	resp := NewService(parser, nil).Parse(context.Background(), models.ParseRequest{URL: "https://example.com/slow"}, 1)
	assert.Equal(t, http.StatusGatewayTimeout, resp.StatusCode)
}

func TestService_EmptyRequest(t *testing.T) {
	resp := NewService(scraper.NewParser(), nil).Parse(context.Background(), models.ParseRequest{}, 0)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestClampTimeout(t *testing.T) {
	assert.Equal(t, DefaultTimeoutMs, ClampTimeout(0))
	assert.Equal(t, DefaultTimeoutMs, ClampTimeout(-5))
	assert.Equal(t, MinTimeoutMs, ClampTimeout(10))
	assert.Equal(t, 5000, ClampTimeout(5000))
	assert.Equal(t, MaxTimeoutMs, ClampTimeout(300000))
}

func TestParseTimeout(t *testing.T) {
	assert.Equal(t, 0, ParseTimeout(""))
	assert.Equal(t, 0, ParseTimeout("soon"))
	assert.Equal(t, 1500, ParseTimeout("1500"))
}
