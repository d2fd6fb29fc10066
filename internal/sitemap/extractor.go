package sitemap

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultTimeout bounds the whole request, body included.
	DefaultTimeout = 10 * time.Second
	// DefaultUserAgent is sent with every sitemap request.
	DefaultUserAgent = "sitemapper/1.0"
	// DefaultMaxBodyBytes is the sitemaps.org limit for an uncompressed sitemap (50 MiB).
	DefaultMaxBodyBytes = 50 * 1024 * 1024
)

// Extractor fetches a sitemap and returns the URLs it lists.
// It holds no mutable state and is safe for concurrent use.
type Extractor struct {
	client       *http.Client
	timeout      time.Duration
	userAgent    string
	strict       bool
	maxBodyBytes int64
}

type Option func(*Extractor)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(e *Extractor) {
		e.client = client
	}
}

func WithTimeout(d time.Duration) Option {
	return func(e *Extractor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(e *Extractor) {
		if ua != "" {
			e.userAgent = ua
		}
	}
}

// WithStrictContentType controls the content-type guard. When strict (the
// default) a response that declares a non-XML content type fails with
// InvalidFormatError; when lenient the body is parsed regardless.
func WithStrictContentType(strict bool) Option {
	return func(e *Extractor) {
		e.strict = strict
	}
}

func WithMaxBodyBytes(n int64) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.maxBodyBytes = n
		}
	}
}

func New(opts ...Option) *Extractor {
	e := &Extractor{
		client:       &http.Client{},
		timeout:      DefaultTimeout,
		userAgent:    DefaultUserAgent,
		strict:       true,
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract fetches ref and returns the text of its <loc> elements in document
// order. An empty, non-nil slice with a nil error means the document was valid
// but listed nothing. On failure the slice is nil and the error is one of
// *FetchError, *InvalidFormatError, *ParseError or ErrEmptyReference.
func (e *Extractor) Extract(ctx context.Context, ref string) ([]string, error) {
	doc, err := e.ExtractDocument(ctx, ref)
	if err != nil {
		return nil, err
	}
	return doc.Locations, nil
}

// ExtractDocument is Extract but also reports the root element, which callers
// use to tell a sitemap index from a URL set. It issues exactly one request.
func (e *Extractor) ExtractDocument(ctx context.Context, ref string) (*Document, error) {
	if strings.TrimSpace(ref) == "" {
		return nil, ErrEmptyReference
	}
	target := Normalize(ref)

	body, err := e.fetch(ctx, target)
	if err != nil {
		return nil, err
	}

	doc, err := Parse(bytes.NewReader(body))
	if err != nil {
		var parseErr *ParseError
		if errors.As(err, &parseErr) {
			parseErr.URL = target
		}
		return nil, err
	}
	doc.URL = target
	return doc, nil
}

func (e *Extractor) fetch(ctx context.Context, target string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &FetchError{URL: target, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept", "application/xml, text/xml;q=0.9, */*;q=0.1")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: target, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: target, StatusCode: resp.StatusCode}
	}

	contentType := resp.Header.Get("Content-Type")
	if e.strict && contentType != "" && !strings.Contains(strings.ToLower(contentType), "xml") {
		return nil, &InvalidFormatError{URL: target, ContentType: contentType}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, e.maxBodyBytes+1))
	if err != nil {
		return nil, &FetchError{URL: target, Err: fmt.Errorf("failed to read response body: %w", err)}
	}
	if int64(len(body)) > e.maxBodyBytes {
		return nil, &FetchError{URL: target, Err: ErrBodyTooLarge}
	}
	return body, nil
}
