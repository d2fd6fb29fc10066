package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/romangod6/sitemapper/internal/audit"
	"github.com/romangod6/sitemapper/internal/sitemap"
)

var (
	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder())

	successBanner = bannerStyle.BorderForeground(lipgloss.Color("42")).Foreground(lipgloss.Color("42"))
	warningBanner = bannerStyle.BorderForeground(lipgloss.Color("214")).Foreground(lipgloss.Color("214"))
	errorBanner   = bannerStyle.BorderForeground(lipgloss.Color("196")).Foreground(lipgloss.Color("196"))

	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
)

func printSuccess(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, successBanner.Render(fmt.Sprintf(format, args...)))
}

func printWarning(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, warningBanner.Render(fmt.Sprintf(format, args...)))
}

func printError(w io.Writer, err error) {
	fmt.Fprintln(w, errorBanner.Render(describeError(err)))
}

func printHeading(w io.Writer, title string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, headingStyle.Render(title))
}

// describeError turns an extraction or audit failure into the message shown to the user.
func describeError(err error) string {
	var (
		fetchErr  *sitemap.FetchError
		formatErr *sitemap.InvalidFormatError
		parseErr  *sitemap.ParseError
		pageErr   *audit.PageError
	)
	switch {
	case errors.Is(err, sitemap.ErrEmptyReference), errors.Is(err, audit.ErrEmptyURL):
		return "Please enter a URL."
	case errors.As(err, &fetchErr) && fetchErr.StatusCode != 0:
		return fmt.Sprintf("The server responded with an error: %d", fetchErr.StatusCode)
	case errors.As(err, &fetchErr):
		return fmt.Sprintf("Could not fetch the sitemap: %v", fetchErr.Err)
	case errors.As(err, &formatErr):
		return fmt.Sprintf("The URL did not return a valid XML sitemap (content type %q).", formatErr.ContentType)
	case errors.As(err, &parseErr) && parseErr.Line > 0:
		return fmt.Sprintf("Error parsing the XML on line %d: %v", parseErr.Line, parseErr.Err)
	case errors.As(err, &parseErr):
		return fmt.Sprintf("Error parsing the XML: %v", parseErr.Err)
	case errors.Is(err, audit.ErrNotHTML):
		return "The URL did not return an HTML page."
	case errors.As(err, &pageErr) && pageErr.StatusCode != 0:
		return fmt.Sprintf("The page responded with an error: %d", pageErr.StatusCode)
	case errors.As(err, &pageErr):
		return fmt.Sprintf("Could not fetch the page: %v", pageErr.Err)
	default:
		return fmt.Sprintf("An error occurred: %v", err)
	}
}
