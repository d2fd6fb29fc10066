package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/rodaine/table"

	"github.com/romangod6/sitemapper/internal/sitemap"
)

// CSVHeader is the single column written above the extracted URLs.
const CSVHeader = "URL"

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// WriteCSV writes urls as a one-column UTF-8 CSV with a header row and no BOM.
func WriteCSV(w io.Writer, urls []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{CSVHeader}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, u := range urls {
		if err := cw.Write([]string{u}); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTable renders urls as a numbered table.
func WriteTable(w io.Writer, urls []string) {
	tbl := table.New("#", "URL").WithWriter(w)
	for i, u := range urls {
		tbl.AddRow(i+1, u)
	}
	tbl.Print()
}

// Filename suggests a download name for the sitemap behind ref, e.g.
// sitemap_example.com.csv. Unparseable references fall back to sitemap.csv.
func Filename(ref string) string {
	u, err := url.Parse(sitemap.Normalize(strings.TrimSpace(ref)))
	if err != nil || u.Hostname() == "" {
		return "sitemap.csv"
	}
	host := unsafeFileChars.ReplaceAllString(strings.ToLower(u.Hostname()), "_")
	return "sitemap_" + host + ".csv"
}
