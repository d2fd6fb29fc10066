// internal/models/sitemap.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// EmptySitemapWarning is attached to extractions that found no URLs.
const EmptySitemapWarning = "sitemap is valid but lists no URLs"

// NewExtraction creates an extraction record with generated UUID and timestamp
func NewExtraction(ref, normalized, root string, urls []string) *Extraction {
	if urls == nil {
		urls = []string{}
	}
	e := &Extraction{
		ID:            uuid.New(),
		URL:           ref,
		NormalizedURL: normalized,
		Root:          root,
		Count:         len(urls),
		URLs:          urls,
		CreatedAt:     time.Now(),
	}
	if e.Count == 0 {
		e.Warning = EmptySitemapWarning
	}
	return e
}
