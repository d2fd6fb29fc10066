// internal/audit/inspect.go
package audit

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PageFacts holds what the auditor reads from a page's markup.
type PageFacts struct {
	Title              string
	MetaDescription    string
	HasMetaDescription bool
	H1                 []string
	// Links lists same-host links, resolved, fragment stripped, deduplicated in first-seen order.
	Links            []string
	Images           int
	ImagesMissingAlt []string
}

// inspect reads the audited elements from a parsed page. base resolves relative links.
func inspect(base *url.URL, root *goquery.Selection) *PageFacts {
	facts := &PageFacts{
		H1:               []string{},
		Links:            []string{},
		ImagesMissingAlt: []string{},
	}

	facts.Title = strings.TrimSpace(root.Find("title").First().Text())

	// Attribute selectors are case-sensitive, so match the name by hand.
	root.Find("meta[name]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		name, _ := s.Attr("name")
		if !strings.EqualFold(strings.TrimSpace(name), "description") {
			return true
		}
		content, _ := s.Attr("content")
		facts.MetaDescription = strings.TrimSpace(content)
		facts.HasMetaDescription = facts.MetaDescription != ""
		return false
	})

	root.Find("h1").Each(func(_ int, s *goquery.Selection) {
		facts.H1 = append(facts.H1, strings.Join(strings.Fields(s.Text()), " "))
	})

	seen := make(map[string]bool)
	root.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		link, ok := internalLink(base, href)
		if !ok || seen[link] {
			return
		}
		seen[link] = true
		facts.Links = append(facts.Links, link)
	})

	root.Find("img").Each(func(_ int, s *goquery.Selection) {
		facts.Images++
		if _, ok := s.Attr("alt"); !ok {
			src, _ := s.Attr("src")
			facts.ImagesMissingAlt = append(facts.ImagesMissingAlt, src)
		}
	})

	return facts
}

// internalLink resolves href against base and reports whether it points at the
// same network location over http(s). Fragment-only links are skipped.
func internalLink(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}

	u := base.ResolveReference(ref)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	if !strings.EqualFold(u.Host, base.Host) {
		return "", false
	}

	u.Fragment = ""
	u.RawFragment = ""
	return u.String(), true
}
