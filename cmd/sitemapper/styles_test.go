package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/romangod6/sitemapper/internal/audit"
	"github.com/romangod6/sitemapper/internal/sitemap"
)

func TestDescribeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"empty", sitemap.ErrEmptyReference, "Please enter a URL."},
		{"status", &sitemap.FetchError{URL: "https://x", StatusCode: 404}, "The server responded with an error: 404"},
		{"transport", &sitemap.FetchError{URL: "https://x", Err: errors.New("connection refused")}, "Could not fetch the sitemap: connection refused"},
		{"format", &sitemap.InvalidFormatError{URL: "https://x", ContentType: "text/html"}, `The URL did not return a valid XML sitemap (content type "text/html").`},
		{"parse", &sitemap.ParseError{Line: 4, Err: errors.New("unexpected EOF")}, "Error parsing the XML on line 4: unexpected EOF"},
		{"wrapped", fmt.Errorf("expand: %w", &sitemap.FetchError{StatusCode: 500}), "The server responded with an error: 500"},
		{"not html", &audit.PageError{URL: "https://x", Err: audit.ErrNotHTML}, "The URL did not return an HTML page."},
		{"page", &audit.PageError{URL: "https://x", StatusCode: 503, Err: errors.New("Service Unavailable")}, "The page responded with an error: 503"},
		{"other", errors.New("boom"), "An error occurred: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, describeError(tt.err))
		})
	}
}

func TestPresence(t *testing.T) {
	assert.Equal(t, "missing", presence(false, ""))
	assert.Equal(t, "Home", presence(true, "Home"))
}
