package sitemap

import (
	"errors"
	"fmt"
)

// ErrEmptyReference is returned when Extract is called without a sitemap location.
var ErrEmptyReference = errors.New("sitemap reference is empty")

// ErrBodyTooLarge is wrapped in a FetchError when the response exceeds the body limit.
var ErrBodyTooLarge = errors.New("response body exceeds size limit")

// Kind classifies an extraction failure so callers can pick a message without
// inspecting error strings.
type Kind string

const (
	KindUnknown       Kind = "unknown"
	KindInput         Kind = "input"
	KindFetch         Kind = "fetch"
	KindInvalidFormat Kind = "invalid_format"
	KindParse         Kind = "parse"
)

// FetchError reports a transport failure or a non-2xx response.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to fetch %s: server responded with status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// InvalidFormatError reports a response whose content type is not XML.
type InvalidFormatError struct {
	URL         string
	ContentType string
}

func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("%s is not a valid sitemap: content type %q is not XML", e.URL, e.ContentType)
}

// ParseError reports malformed XML. Line is 1-based, 0 when unknown.
type ParseError struct {
	URL  string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("failed to parse sitemap: %v", e.Err)
	}
	return fmt.Sprintf("failed to parse sitemap %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err, or KindUnknown when err is not an extraction error.
func KindOf(err error) Kind {
	var (
		fetchErr  *FetchError
		formatErr *InvalidFormatError
		parseErr  *ParseError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyReference):
		return KindInput
	case errors.As(err, &fetchErr):
		return KindFetch
	case errors.As(err, &formatErr):
		return KindInvalidFormat
	case errors.As(err, &parseErr):
		return KindParse
	default:
		return KindUnknown
	}
}
