package sitemap

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	namespacedSitemap = `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>https://example.com/a</loc><lastmod>2024-01-01</lastmod></url>
  <url><loc>https://example.com/b</loc></url>
  <url><loc>https://example.com/c</loc></url>
</urlset>`

	plainSitemap = `<urlset>
  <url><loc>https://example.com/one</loc></url>
  <url><loc>https://example.com/two</loc></url>
</urlset>`
)

// setupSitemapServer serves body with the given status and content type on every path.
func setupSitemapServer(t *testing.T, status int, contentType, body string) (*httptest.Server, *int32) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.Method != http.MethodGet {
			t.Errorf("Expected GET request, got %s", r.Method)
		}
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, &hits
}

func TestExtractNamespacedSitemap(t *testing.T) {
	server, hits := setupSitemapServer(t, http.StatusOK, "application/xml", namespacedSitemap)

	urls, err := New().Extract(context.Background(), server.URL+"/sitemap.xml")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/a", "https://example.com/b", "https://example.com/c"}, urls)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
}

func TestExtractUnqualifiedLocElements(t *testing.T) {
	server, _ := setupSitemapServer(t, http.StatusOK, "text/xml; charset=utf-8", plainSitemap)

	urls, err := New().Extract(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/one", "https://example.com/two"}, urls)
}

func TestExtractNotFound(t *testing.T) {
	server, _ := setupSitemapServer(t, http.StatusNotFound, "application/xml", namespacedSitemap)

	urls, err := New().Extract(context.Background(), server.URL)
	assert.Empty(t, urls)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
	assert.Equal(t, KindFetch, KindOf(err))
	assert.Contains(t, err.Error(), "404")
}

func TestExtractTransportFailure(t *testing.T) {
	server, _ := setupSitemapServer(t, http.StatusOK, "application/xml", namespacedSitemap)
	target := server.URL
	server.Close()

	urls, err := New().Extract(context.Background(), target)
	assert.Empty(t, urls)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Zero(t, fetchErr.StatusCode)
	assert.Error(t, fetchErr.Err)
}

func TestExtractTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(server.Close)

	_, err := New(WithTimeout(50*time.Millisecond)).Extract(context.Background(), server.URL)
	assert.Equal(t, KindFetch, KindOf(err))
}

func TestExtractHTMLContentType(t *testing.T) {
	server, _ := setupSitemapServer(t, http.StatusOK, "text/html; charset=utf-8", "<html><body>Not here</body></html>")

	urls, err := New().Extract(context.Background(), server.URL)
	assert.Empty(t, urls)

	var formatErr *InvalidFormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Equal(t, "text/html; charset=utf-8", formatErr.ContentType)
	assert.Equal(t, KindInvalidFormat, KindOf(err))
}

func TestExtractLenientContentType(t *testing.T) {
	server, _ := setupSitemapServer(t, http.StatusOK, "text/plain", namespacedSitemap)

	urls, err := New(WithStrictContentType(false)).Extract(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Len(t, urls, 3)
}

func TestExtractMalformedXML(t *testing.T) {
	server, _ := setupSitemapServer(t, http.StatusOK, "application/xml",
		`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"><url><loc>https://example.com/a</loc></url>`)

	urls, err := New().Extract(context.Background(), server.URL)
	assert.Nil(t, urls)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, server.URL, parseErr.URL)
	assert.Equal(t, KindParse, KindOf(err))
}

func TestExtractEmptyBody(t *testing.T) {
	server, _ := setupSitemapServer(t, http.StatusOK, "application/xml", "")

	_, err := New().Extract(context.Background(), server.URL)
	assert.Equal(t, KindParse, KindOf(err))
}

func TestExtractZeroLocations(t *testing.T) {
	server, _ := setupSitemapServer(t, http.StatusOK, "application/xml",
		`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"></urlset>`)

	urls, err := New().Extract(context.Background(), server.URL)
	require.NoError(t, err)
	assert.NotNil(t, urls)
	assert.Empty(t, urls)
}

func TestExtractMissingContentTypeIsParsed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Suppress content sniffing so the response carries no Content-Type.
		w.Header()["Content-Type"] = nil
		w.Write([]byte(plainSitemap))
	}))
	t.Cleanup(server.Close)

	urls, err := New().Extract(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Len(t, urls, 2)
}

func TestExtractBodyTooLarge(t *testing.T) {
	server, _ := setupSitemapServer(t, http.StatusOK, "application/xml", namespacedSitemap)

	_, err := New(WithMaxBodyBytes(16)).Extract(context.Background(), server.URL)
	assert.ErrorIs(t, err, ErrBodyTooLarge)
	assert.Equal(t, KindFetch, KindOf(err))
}

func TestExtractEmptyReference(t *testing.T) {
	urls, err := New().Extract(context.Background(), "  ")
	assert.Nil(t, urls)
	assert.ErrorIs(t, err, ErrEmptyReference)
	assert.Equal(t, KindInput, KindOf(err))
}

func TestExtractIsIdempotent(t *testing.T) {
	server, hits := setupSitemapServer(t, http.StatusOK, "application/xml", namespacedSitemap)
	ex := New()

	first, err := ex.Extract(context.Background(), server.URL)
	require.NoError(t, err)
	second, err := ex.Extract(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(2), atomic.LoadInt32(hits))
}

func TestExtractSendsUserAgent(t *testing.T) {
	agents := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agents <- r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/xml")
		w.Write([]byte(plainSitemap))
	}))
	t.Cleanup(server.Close)

	_, err := New(WithUserAgent("audit-bot/2.0")).Extract(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "audit-bot/2.0", <-agents)
}

// The scheme-less reference is normalized to https before the request goes
// out; a rewriting transport lets the test observe it and answer locally.
func TestExtractEndToEndSchemelessReference(t *testing.T) {
	var requested string
	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		requested = r.URL.String()
		body := `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"><url><loc>https://example.com/a</loc></url><url><loc>https://example.com/b</loc></url></urlset>`
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": []string{"application/xml"}},
			Body:       io.NopCloser(strings.NewReader(body)),
			Request:    r,
		}, nil
	})}

	doc, err := New(WithHTTPClient(client)).ExtractDocument(context.Background(), "example.com/sitemap.xml")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/sitemap.xml", requested)
	assert.Equal(t, "https://example.com/sitemap.xml", doc.URL)
	assert.Equal(t, RootURLSet, doc.Root)
	assert.Equal(t, []string{"https://example.com/a", "https://example.com/b"}, doc.Locations)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}
