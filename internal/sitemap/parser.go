package sitemap

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

// Namespace is the sitemaps.org schema namespace.
const Namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

const (
	RootURLSet       = "urlset"
	RootSitemapIndex = "sitemapindex"
)

var (
	errNoRoot      = errors.New("document has no root element")
	errOutsideRoot = errors.New("content outside root element")
)

// Document is a parsed sitemap.
type Document struct {
	// URL is the normalized location the document was fetched from.
	URL string
	// Root is the local name of the root element, usually "urlset" or "sitemapindex".
	Root string
	// Locations holds the text of every <loc> element in document order.
	Locations []string
}

// IsIndex reports whether the document is a sitemap index.
func (d *Document) IsIndex() bool {
	return d.Root == RootSitemapIndex
}

// Parse reads a sitemap document from r. <loc> elements are matched whether they
// are unqualified or in the sitemaps.org namespace; loc elements from any other
// namespace (image:loc, video:loc) are skipped. Text is kept verbatim.
// Malformed input yields a *ParseError and no locations.
func Parse(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	doc := &Document{Locations: []string{}}

	var (
		depth    int
		locDepth int
		text     strings.Builder
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			line, _ := dec.InputPos()
			return nil, &ParseError{Line: line, Err: err}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 && doc.Root != "" {
				return nil, outsideRoot(dec)
			}
			depth++
			if doc.Root == "" {
				doc.Root = t.Name.Local
			}
			if locDepth == 0 && isLoc(t.Name) {
				locDepth = depth
				text.Reset()
			}
		case xml.EndElement:
			if locDepth != 0 && depth == locDepth {
				doc.Locations = append(doc.Locations, text.String())
				locDepth = 0
			}
			depth--
		case xml.CharData:
			if depth == 0 && len(bytes.TrimSpace(t)) > 0 {
				return nil, outsideRoot(dec)
			}
			if locDepth != 0 && depth == locDepth {
				text.Write(t)
			}
		}
	}

	if doc.Root == "" {
		line, _ := dec.InputPos()
		return nil, &ParseError{Line: line, Err: errNoRoot}
	}
	return doc, nil
}

func outsideRoot(dec *xml.Decoder) *ParseError {
	line, _ := dec.InputPos()
	return &ParseError{Line: line, Err: errOutsideRoot}
}

func isLoc(name xml.Name) bool {
	return name.Local == "loc" && (name.Space == "" || name.Space == Namespace)
}
