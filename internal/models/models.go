package models

import (
	"time"

	"github.com/google/uuid"
)

// Extraction is the result of one sitemap extraction as served to API and CLI clients.
type Extraction struct {
	ID            uuid.UUID `json:"id"`
	URL           string    `json:"url"`
	NormalizedURL string    `json:"normalized_url"`
	Root          string    `json:"root"`
	Count         int       `json:"count"`
	URLs          []string  `json:"urls"`
	Warning       string    `json:"warning,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type AuditReport struct {
	ID                 uuid.UUID    `json:"id"`
	URL                string       `json:"url"`
	StatusCode         int          `json:"status_code"`
	Title              string       `json:"title"`
	HasTitle           bool         `json:"has_title"`
	MetaDescription    string       `json:"meta_description,omitempty"`
	HasMetaDescription bool         `json:"has_meta_description"`
	H1                 []string     `json:"h1"`
	InternalLinks      []LinkStatus `json:"internal_links"`
	LinksTruncated     bool         `json:"links_truncated"`
	Images             int          `json:"images"`
	ImagesMissingAlt   []string     `json:"images_missing_alt"`
	Robots             SiteFile     `json:"robots_txt"`
	Sitemap            SiteFile     `json:"sitemap_xml"`
	CreatedAt          time.Time    `json:"created_at"`
}

// LinkStatus is the outcome of checking one internal link.
type LinkStatus struct {
	URL        string `json:"url"`
	StatusCode int    `json:"status_code,omitempty"`
	OK         bool   `json:"ok"`
	Error      string `json:"error,omitempty"`
}

// SiteFile describes a well-known file probed at the site root.
type SiteFile struct {
	URL        string `json:"url"`
	Present    bool   `json:"present"`
	StatusCode int    `json:"status_code,omitempty"`
	Error      string `json:"error,omitempty"`

	// Sitemaps and PathAllowed are only filled in for robots.txt.
	Sitemaps    []string `json:"sitemaps,omitempty"`
	PathAllowed *bool    `json:"path_allowed,omitempty"`
}
